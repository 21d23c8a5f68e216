package domain

import (
	"encoding/json"
	"fmt"
)

// SavedStateMap holds the persisted state of one or more models, each under its own slot.
type SavedStateMap map[string]json.RawMessage

// Put encodes v as JSON under key.
func (m SavedStateMap) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode slot %q: %w", key, err)
	}
	m[key] = data
	return nil
}

// Get decodes the slot under key into v. It reports false when the slot is absent.
func (m SavedStateMap) Get(key string, v any) (bool, error) {
	raw, ok := m[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%w: slot %q: %v", ErrInvalidSnapshot, key, err)
	}
	return true, nil
}

// Clone returns a copy that shares no slices with m.
func (m SavedStateMap) Clone() SavedStateMap {
	if m == nil {
		return nil
	}
	out := make(SavedStateMap, len(m))
	for k, v := range m {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
