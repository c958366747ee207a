package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateSetGet(t *testing.T) {
	state := NewState()
	assert.NotEmpty(t, state.RunID)

	require.NoError(t, state.Set("answer", 42))
	assert.True(t, state.Has("answer"))
	assert.False(t, state.Has("question"))

	raw, ok := state.Get("answer")
	require.True(t, ok)
	assert.Equal(t, "42", string(raw))
}

func TestStateRunIDsAreUnique(t *testing.T) {
	a := NewState()
	b := NewState()
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestDecode(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	state := NewState()
	require.NoError(t, state.Set("data", payload{Name: "x", Count: 3}))

	got, err := Decode[payload](state, "data")
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "x", Count: 3}, got)
}

func TestDecodeMissingKey(t *testing.T) {
	state := NewState()

	_, err := Decode[string](state, "absent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not set")
}

func TestDecodeUndecodableEqualsAbsent(t *testing.T) {
	state := NewState()
	state.SetRaw("data", []byte(`{not json`))

	_, err := Decode[map[string]string](state, "data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unusable data")
}

func TestOrchestratorRunsInOrder(t *testing.T) {
	var order []string
	mk := func(name string, key Key) Stage {
		return Stage{
			Name:   name,
			Output: key,
			Run: func(_ context.Context, state *State) error {
				order = append(order, name)
				return state.Set(key, name)
			},
		}
	}

	state := NewState()
	orch := NewOrchestrator([]Stage{mk("first", "a"), mk("second", "b"), mk("third", "c")}, nil)
	require.NoError(t, orch.Execute(context.Background(), state))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestOrchestratorFailFast(t *testing.T) {
	var ran []string
	state := NewState()
	stages := []Stage{
		{
			Name:   "ok",
			Output: "a",
			Run: func(_ context.Context, st *State) error {
				ran = append(ran, "ok")
				return st.Set("a", 1)
			},
		},
		{
			Name: "boom",
			Run: func(_ context.Context, _ *State) error {
				ran = append(ran, "boom")
				return errors.New("exploded")
			},
		},
		{
			Name: "never",
			Run: func(_ context.Context, _ *State) error {
				ran = append(ran, "never")
				return nil
			},
		},
	}

	err := NewOrchestrator(stages, nil).Execute(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage boom")
	assert.Contains(t, err.Error(), "exploded")
	assert.Equal(t, []string{"ok", "boom"}, ran, "no stage runs after the first failure")
}

func TestOrchestratorPostcondition(t *testing.T) {
	state := NewState()
	stages := []Stage{
		{
			Name:   "silent",
			Output: "result",
			Run: func(_ context.Context, _ *State) error {
				return nil // completes without committing its output
			},
		},
	}

	err := NewOrchestrator(stages, nil).Execute(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `stage silent completed without producing "result"`)
}

func TestOrchestratorNoOutputKeySkipsCheck(t *testing.T) {
	state := NewState()
	stages := []Stage{
		{
			Name: "side_effect_only",
			Run: func(_ context.Context, _ *State) error {
				return nil
			},
		},
	}
	require.NoError(t, NewOrchestrator(stages, nil).Execute(context.Background(), state))
}

func TestOrchestratorCapturesPanic(t *testing.T) {
	state := NewState()
	stages := []Stage{
		{
			Name: "wild",
			Run: func(_ context.Context, _ *State) error {
				panic("unexpected fault")
			},
		},
	}

	err := NewOrchestrator(stages, nil).Execute(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage wild panicked")
	assert.Contains(t, err.Error(), "unexpected fault")
}

func TestOrchestratorContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	stages := []Stage{
		{
			Name: "never",
			Run: func(_ context.Context, _ *State) error {
				ran = true
				return nil
			},
		},
	}

	err := NewOrchestrator(stages, nil).Execute(ctx, NewState())
	require.Error(t, err)
	assert.False(t, ran)
}

func TestOrchestratorStageErrorsAreWrapped(t *testing.T) {
	sentinel := errors.New("sentinel")
	stages := []Stage{
		{
			Name: "failing",
			Run: func(_ context.Context, _ *State) error {
				return fmt.Errorf("inner: %w", sentinel)
			},
		},
	}

	err := NewOrchestrator(stages, nil).Execute(context.Background(), NewState())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel))
}
