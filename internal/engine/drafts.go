// internal/engine/drafts.go
package engine

import (
	"context"

	"macro-log/internal/models"
)

// StartDraft creates an empty draft pinned to date.
func (s *Store) StartDraft(date string) (string, error) {
	if err := validDate(date); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	d := &models.FoodLog{
		ID:             s.newID(),
		Date:           date,
		CreatedAt:      now,
		UpdatedAt:      now,
		FoodComponents: []models.FoodComponent{},
	}
	s.drafts[d.ID] = d
	s.log.Debug("draft started", "draft_id", d.ID, "date", date)
	return d.ID, nil
}

// Draft returns a copy of the draft.
func (s *Store) Draft(id string) (models.FoodLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return models.FoodLog{}, models.ErrDraftNotFound
	}
	return d.Clone(), nil
}

// UpdateDraft merges p into the draft field by field.
func (s *Store) UpdateDraft(id string, p Patch) error {
	if err := p.validate(); err != nil {
		return err
	}
	return s.update(false, func() error {
		d, ok := s.drafts[id]
		if !ok {
			return models.ErrDraftNotFound
		}
		if p.empty() {
			return nil
		}
		p.apply(d)
		s.touch(d)
		return nil
	})
}

// DiscardDraft drops the draft. Any estimation still in flight for it will
// be discarded on arrival.
func (s *Store) DiscardDraft(id string) error {
	return s.update(false, func() error {
		if _, ok := s.drafts[id]; !ok {
			return models.ErrDraftNotFound
		}
		s.dropLocked(id)
		delete(s.drafts, id)
		s.log.Debug("draft discarded", "draft_id", id)
		return nil
	})
}

// CommitDraft promotes the draft to a persisted log with a fresh id.
func (s *Store) CommitDraft(id string) (models.FoodLog, error) {
	var out models.FoodLog
	err := s.update(true, func() error {
		d, ok := s.drafts[id]
		if !ok {
			return models.ErrDraftNotFound
		}
		l := d.Clone()
		l.ID = s.newID()
		l.IsEstimating = false
		l.Version = 0
		l.UpdatedAt = s.now()
		if l.FoodComponents == nil {
			l.FoodComponents = []models.FoodComponent{}
		}
		s.logs[l.ID] = &l
		s.dropLocked(id)
		delete(s.drafts, id)
		out = l.Clone()
		s.log.Info("draft committed", "draft_id", id, "log_id", l.ID, "date", l.Date)
		return nil
	})
	return out, err
}

// CommitDraftAndEstimate commits the draft and estimates the new log. A
// draft with nothing to estimate is rejected and stays a draft.
func (s *Store) CommitDraftAndEstimate(ctx context.Context, id string, in EstimationInput) (models.FoodLog, Outcome, error) {
	if s.estimator == nil {
		return models.FoodLog{}, "", errNoEstimator
	}
	s.mu.Lock()
	d, ok := s.drafts[id]
	var err error
	if !ok {
		err = models.ErrDraftNotFound
	} else {
		_, err = estimable(d, in)
	}
	s.mu.Unlock()
	if err != nil {
		return models.FoodLog{}, "", err
	}

	l, err := s.CommitDraft(id)
	if err != nil {
		return models.FoodLog{}, "", err
	}
	outcome, err := s.RequestEstimation(ctx, l.ID, in)
	if got, lerr := s.Log(l.ID); lerr == nil {
		l = got
	}
	return l, outcome, err
}

// dropLocked forgets per-entry transient state.
func (s *Store) dropLocked(id string) {
	delete(s.trackers, id)
	if target, ok := s.pending.Peek(); ok && target == id {
		s.pending.Clear()
	}
}
