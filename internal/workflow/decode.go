package workflow

import (
	"encoding/json"
	"fmt"
)

// Decode reads the value stored under key and unmarshals it into T. A
// missing key and an undecodable value are the same failure: the stage
// that needed the data cannot proceed either way.
func Decode[T any](s *State, key Key) (T, error) {
	var out T

	raw, ok := s.Get(key)
	if !ok {
		return out, fmt.Errorf("state key %q is not set", key)
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("state key %q holds unusable data: %w", key, err)
	}
	return out, nil
}
