package navmodel

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// SavedElement is the persisted shape of one element.
type SavedElement[T any, S comparable] struct {
	Target      T         `json:"target"`
	ID          domain.ID `json:"id"`
	FromState   S         `json:"from_state"`
	TargetState S         `json:"target_state"`
}

// SaveInstanceState writes the collection under the model's slot.
// Elements are stored idle at the normalized state they were heading to; in-flight
// transitions never persist. Saving twice without a mutation in between yields identical bytes.
func (m *Model[T, S]) SaveInstanceState(saved domain.SavedStateMap) error {
	m.mu.Lock()
	elements := m.elements.Clone()
	m.mu.Unlock()

	if err := saved.Put(m.slot, Normalize(m.resolver, elements)); err != nil {
		return fmt.Errorf("failed to save %s: %w", m.name, err)
	}
	m.logger.Debug("model saved", "slot", m.slot, "elements", len(elements))
	return nil
}

// Normalize converts elements to their persisted, idle form.
func Normalize[T any, S comparable](r Resolver[S], elements Elements[T, S]) []SavedElement[T, S] {
	out := make([]SavedElement[T, S], 0, len(elements))
	for _, el := range elements {
		state, ok := r.Normalize(el.TargetState)
		if !ok {
			continue
		}
		out = append(out, SavedElement[T, S]{
			Target:      el.Key.Target,
			ID:          el.Key.ID,
			FromState:   state,
			TargetState: state,
		})
	}
	return out
}

func restore[T any, S comparable](saved domain.SavedStateMap, slot string, r Resolver[S]) (Elements[T, S], bool, error) {
	if saved == nil {
		return nil, false, nil
	}
	var stored []SavedElement[T, S]
	found, err := saved.Get(slot, &stored)
	if err != nil || !found {
		return nil, false, err
	}

	elements := make(Elements[T, S], 0, len(stored))
	seen := make(map[domain.ID]bool, len(stored))
	for _, s := range stored {
		if seen[s.ID] {
			return nil, false, fmt.Errorf("%w: duplicate id %s in slot %q", domain.ErrInvalidSnapshot, s.ID, slot)
		}
		seen[s.ID] = true

		state, ok := r.Normalize(s.TargetState)
		if !ok {
			continue
		}
		key := domain.KeyedElement[T]{Target: s.Target, ID: s.ID}
		elements = append(elements, NewIdleElement(key, state))
	}
	return elements, true, nil
}
