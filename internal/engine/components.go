// internal/engine/components.go
package engine

import (
	"macro-log/internal/ferry"
	"macro-log/internal/models"
	"macro-log/internal/nutrition"
	"macro-log/internal/tracker"
	"macro-log/internal/validation"
)

// AddComponent appends a validated ingredient to a log or draft.
func (s *Store) AddComponent(id string, in validation.ComponentInput) (models.FoodComponent, error) {
	c, err := s.validator.Component(in, validation.Create, nil)
	if err != nil {
		return models.FoodComponent{}, err
	}
	err = s.editComponents(id, func(comps []models.FoodComponent) ([]models.FoodComponent, error) {
		return append(comps, c), nil
	})
	return c, err
}

// UpdateComponent replaces the ingredient at index. A direct edit confirms
// the measurement, so any recommendation on the row is dropped.
func (s *Store) UpdateComponent(id string, index int, in validation.ComponentInput) (models.FoodComponent, error) {
	var out models.FoodComponent
	err := s.editComponents(id, func(comps []models.FoodComponent) ([]models.FoodComponent, error) {
		if index < 0 || index >= len(comps) {
			return nil, &models.ValidationError{Field: "index", Reason: "out of range"}
		}
		c, err := s.validator.Component(in, validation.Edit, &comps[index])
		if err != nil {
			return nil, err
		}
		comps[index] = c
		out = c
		return comps, nil
	})
	return out, err
}

// DeleteComponent removes the ingredient at index.
func (s *Store) DeleteComponent(id string, index int) error {
	return s.editComponents(id, func(comps []models.FoodComponent) ([]models.FoodComponent, error) {
		if index < 0 || index >= len(comps) {
			return nil, &models.ValidationError{Field: "index", Reason: "out of range"}
		}
		return append(comps[:index], comps[index+1:]...), nil
	})
}

// AcceptRecommendation copies the recommended measurement into the row.
func (s *Store) AcceptRecommendation(id string, index int) error {
	return s.editComponents(id, func(comps []models.FoodComponent) ([]models.FoodComponent, error) {
		if index < 0 || index >= len(comps) {
			return nil, &models.ValidationError{Field: "index", Reason: "out of range"}
		}
		rec := comps[index].RecommendedMeasurement
		if rec == nil {
			return nil, &models.ValidationError{Field: "recommended_measurement", Reason: "nothing to accept"}
		}
		comps[index].Amount = rec.Amount
		comps[index].Unit = rec.Unit
		comps[index].RecommendedMeasurement = nil
		comps[index].NeedsRefinement = false
		return comps, nil
	})
}

// SetPendingEdit places an edit in the one-slot mailbox, replacing any edit
// not yet consumed.
func (s *Store) SetPendingEdit(edit models.PendingComponentEdit) error {
	if edit.LogID == "" {
		return &models.ValidationError{Field: "log_id", Reason: "is required"}
	}
	switch edit.Action {
	case models.EditSave:
		if err := s.validator.StoredComponent(edit.Component); err != nil {
			return err
		}
	case models.EditDelete:
		if edit.Index.IsNew() {
			return &models.ValidationError{Field: "index", Reason: "delete needs a position"}
		}
	default:
		return &models.ValidationError{Field: "action", Reason: "must be save or delete"}
	}
	s.pending.Set(edit)
	return nil
}

// ApplyPendingEdit consumes the pending edit for logID, if any, and applies
// it. The slot is empty afterwards even when applying fails.
func (s *Store) ApplyPendingEdit(logID string) (bool, error) {
	edit, ok := s.pending.Consume(logID)
	if !ok {
		return false, nil
	}
	err := s.editComponents(logID, func(comps []models.FoodComponent) ([]models.FoodComponent, error) {
		return ferry.Apply(comps, edit)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// BeginEditing snapshots the current components as the change baseline. It
// is a no-op when the entry is already tracked.
func (s *Store) BeginEditing(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, _, err := s.entry(id)
	if err != nil {
		return err
	}
	s.trackerLocked(id, l)
	return nil
}

// EndEditing forgets the change state for id.
func (s *Store) EndEditing(id string) {
	s.mu.Lock()
	delete(s.trackers, id)
	s.mu.Unlock()
}

// TrackerState reports the change state for id. Untracked entries report
// the zero state.
func (s *Store) TrackerState(id string) (tracker.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, err := s.entry(id); err != nil {
		return tracker.State{}, err
	}
	if t, ok := s.trackers[id]; ok {
		return t.State(), nil
	}
	return tracker.State{}, nil
}

// ShouldWarnBeforeSave reports whether ingredients changed without a
// recalculation.
func (s *Store) ShouldWarnBeforeSave(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.trackers[id]; ok {
		return t.RecalculationRecommended()
	}
	return false
}

func (s *Store) trackerLocked(id string, l *models.FoodLog) *tracker.Tracker {
	t, ok := s.trackers[id]
	if !ok {
		t = tracker.New(l.FoodComponents)
		s.trackers[id] = t
	}
	return t
}

// editComponents runs fn on a copy of the component list and commits the
// result only if fn succeeds.
func (s *Store) editComponents(id string, fn func([]models.FoodComponent) ([]models.FoodComponent, error)) error {
	s.mu.Lock()
	isDraft, err := s.editComponentsLocked(id, fn)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if !isDraft {
		s.save()
	}
	return nil
}

func (s *Store) editComponentsLocked(id string, fn func([]models.FoodComponent) ([]models.FoodComponent, error)) (bool, error) {
	l, isDraft, err := s.entry(id)
	if err != nil {
		return false, err
	}
	t := s.trackerLocked(id, l)
	next, err := fn(models.CloneComponents(l.FoodComponents))
	if err != nil {
		return false, err
	}
	if next == nil {
		next = []models.FoodComponent{}
	}
	l.FoodComponents = next
	l.NeedsUserReview = nutrition.NeedsUserReview(next)
	s.touch(l)
	t.RecordChange()
	return isDraft, nil
}
