// internal/ferry/ferry.go

// Package ferry carries a single pending ingredient edit from a detached
// editor back to its log. The slot is overwritten on write and emptied on
// read.
package ferry

import (
	"sync"

	"macro-log/internal/models"
)

type Mailbox struct {
	mu   sync.Mutex
	slot *models.PendingComponentEdit
}

// Set replaces whatever is in the slot.
func (m *Mailbox) Set(edit models.PendingComponentEdit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := edit
	e.Component = models.CloneComponents([]models.FoodComponent{edit.Component})[0]
	m.slot = &e
}

// Consume returns and clears the pending edit for logID. An edit addressed to
// another log stays in the slot.
func (m *Mailbox) Consume(logID string) (models.PendingComponentEdit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot == nil || m.slot.LogID != logID {
		return models.PendingComponentEdit{}, false
	}
	e := *m.slot
	m.slot = nil
	return e, true
}

// Peek reports the log the pending edit is addressed to, if any.
func (m *Mailbox) Peek() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot == nil {
		return "", false
	}
	return m.slot.LogID, true
}

func (m *Mailbox) Clear() {
	m.mu.Lock()
	m.slot = nil
	m.mu.Unlock()
}

// Apply returns components with edit applied. The input is not modified.
func Apply(components []models.FoodComponent, edit models.PendingComponentEdit) ([]models.FoodComponent, error) {
	out := models.CloneComponents(components)
	switch edit.Action {
	case models.EditSave:
		if edit.Index.IsNew() {
			return append(out, edit.Component), nil
		}
		i := int(edit.Index)
		if i < 0 || i >= len(out) {
			return nil, &models.ValidationError{Field: "index", Reason: "out of range"}
		}
		out[i] = edit.Component
		return out, nil
	case models.EditDelete:
		i := int(edit.Index)
		if edit.Index.IsNew() || i < 0 || i >= len(out) {
			return nil, &models.ValidationError{Field: "index", Reason: "out of range"}
		}
		return append(out[:i], out[i+1:]...), nil
	}
	return nil, &models.ValidationError{Field: "action", Reason: "must be save or delete"}
}
