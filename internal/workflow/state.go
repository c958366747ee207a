package workflow

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Key identifies a slot in the hand-off state shared between stages. Keys
// are declared by the workflow that uses them; the engine itself attaches
// no meaning to any particular key.
type Key string

// State carries data between stages of a single run. Each stage reads the
// keys it needs and writes its declared output key. Values are stored as
// raw JSON so that stages remain decoupled from each other's Go types.
type State struct {
	RunID  string
	values map[Key]json.RawMessage
}

// NewState creates an empty state with a fresh run ID.
func NewState() *State {
	return &State{
		RunID:  uuid.New().String(),
		values: make(map[Key]json.RawMessage),
	}
}

// Set stores the value under the given key, replacing any previous value.
// The value is marshaled to JSON at write time.
func (s *State) Set(key Key, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	return nil
}

// SetRaw stores an already-encoded JSON value under the given key.
func (s *State) SetRaw(key Key, raw json.RawMessage) {
	s.values[key] = raw
}

// Get returns the raw JSON stored under the key, or false if absent.
func (s *State) Get(key Key) (json.RawMessage, bool) {
	raw, ok := s.values[key]
	return raw, ok
}

// Has reports whether the key is present in the state.
func (s *State) Has(key Key) bool {
	_, ok := s.values[key]
	return ok
}
