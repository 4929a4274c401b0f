// internal/engine/logs.go
package engine

import (
	"sort"

	"macro-log/internal/models"
	"macro-log/internal/validation"
)

// AddManualLog inserts a hand-typed log without estimation.
func (s *Store) AddManualLog(date string, e validation.ManualEntry) (models.FoodLog, error) {
	if err := validDate(date); err != nil {
		return models.FoodLog{}, err
	}
	if err := s.validator.Manual(e); err != nil {
		return models.FoodLog{}, err
	}
	var out models.FoodLog
	err := s.update(true, func() error {
		now := s.now()
		l := &models.FoodLog{
			ID:             s.newID(),
			Date:           date,
			CreatedAt:      now,
			UpdatedAt:      now,
			UserTitle:      models.String(e.Title),
			UserCalories:   models.Float(*e.Calories),
			FoodComponents: []models.FoodComponent{},
		}
		if e.Description != "" {
			l.UserDescription = models.String(e.Description)
		}
		if e.Protein != nil {
			l.UserProtein = models.Float(*e.Protein)
		}
		if e.Carbs != nil {
			l.UserCarbs = models.Float(*e.Carbs)
		}
		if e.Fat != nil {
			l.UserFat = models.Float(*e.Fat)
		}
		s.logs[l.ID] = l
		out = l.Clone()
		return nil
	})
	return out, err
}

// UpdateLog merges p into a committed log field by field.
func (s *Store) UpdateLog(id string, p Patch) error {
	if err := p.validate(); err != nil {
		return err
	}
	return s.update(true, func() error {
		l, ok := s.logs[id]
		if !ok {
			return models.ErrLogNotFound
		}
		if p.empty() {
			return nil
		}
		p.apply(l)
		s.touch(l)
		return nil
	})
}

// DeleteLog removes a committed log.
func (s *Store) DeleteLog(id string) error {
	return s.update(true, func() error {
		if _, ok := s.logs[id]; !ok {
			return models.ErrLogNotFound
		}
		s.dropLocked(id)
		delete(s.logs, id)
		return nil
	})
}

// Log returns a copy of a committed log.
func (s *Store) Log(id string) (models.FoodLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[id]
	if !ok {
		return models.FoodLog{}, models.ErrLogNotFound
	}
	return l.Clone(), nil
}

// LogsForDate returns the committed logs on date, oldest first.
func (s *Store) LogsForDate(date string) []models.FoodLog {
	logs := s.collect(func(l *models.FoodLog) bool { return l.Date == date })
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].CreatedAt.Before(logs[j].CreatedAt) })
	return logs
}

// LogsInRange returns committed logs with start <= date <= end, newest
// first. An empty bound is open.
func (s *Store) LogsInRange(start, end string) []models.FoodLog {
	logs := s.collect(func(l *models.FoodLog) bool {
		return (start == "" || l.Date >= start) && (end == "" || l.Date <= end)
	})
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].Date != logs[j].Date {
			return logs[i].Date > logs[j].Date
		}
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	return logs
}

func (s *Store) collect(keep func(*models.FoodLog) bool) []models.FoodLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FoodLog, 0)
	for _, l := range s.logs {
		if keep(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}
