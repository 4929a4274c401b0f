// internal/engine/settings.go
package engine

import (
	"errors"

	"macro-log/internal/models"
	"macro-log/internal/nutrition"
)

// Progress is one day's totals measured against the targets.
type Progress struct {
	Date        string              `json:"date"`
	Totals      models.Macros       `json:"totals"`
	Targets     models.DailyTargets `json:"targets"`
	Percentages models.Macros       `json:"percentages"`
	Remaining   models.Macros       `json:"remaining"`
	Logs        int                 `json:"logs"`
}

// DaySummary is one entry of History.
type DaySummary struct {
	Date   string        `json:"date"`
	Totals models.Macros `json:"totals"`
}

// SetSettings stores the profile and recomputes targets. When the profile
// cannot satisfy its macro split the settings and clamped targets are still
// stored and the *models.ConfigurationError is returned for the caller to
// surface.
func (s *Store) SetSettings(settings models.UserSettings) (models.DailyTargets, error) {
	if err := s.validator.Settings(settings); err != nil {
		return models.DailyTargets{}, err
	}
	targets, err := nutrition.ComputeTargets(settings)
	var cfgErr *models.ConfigurationError
	if err != nil && !errors.As(err, &cfgErr) {
		return models.DailyTargets{}, err
	}
	_ = s.update(true, func() error {
		stored := settings
		s.settings = &stored
		s.targets = targets
		return nil
	})
	if cfgErr != nil {
		s.log.Warn("inconsistent macro settings", "error", cfgErr)
		return targets, cfgErr
	}
	return targets, nil
}

// Settings returns the stored profile.
func (s *Store) Settings() (models.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return models.UserSettings{}, models.ErrNoSettings
	}
	return *s.settings, nil
}

// OverrideCalories replaces the calorie target and keeps the macro targets.
func (s *Store) OverrideCalories(calories int) (models.DailyTargets, error) {
	s.mu.Lock()
	if s.settings == nil {
		s.mu.Unlock()
		return models.DailyTargets{}, models.ErrNoSettings
	}
	settings := *s.settings
	s.mu.Unlock()
	if _, err := nutrition.OverrideCalories(models.DailyTargets{}, calories); err != nil {
		return models.DailyTargets{}, err
	}
	settings.CalorieOverride = models.Int(calories)
	return s.SetSettings(settings)
}

// ClearCalorieOverride restores the computed calorie target.
func (s *Store) ClearCalorieOverride() (models.DailyTargets, error) {
	settings, err := s.Settings()
	if err != nil {
		return models.DailyTargets{}, err
	}
	settings.CalorieOverride = nil
	return s.SetSettings(settings)
}

// Targets returns the current targets, or false before settings exist.
func (s *Store) Targets() (models.DailyTargets, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targets, s.settings != nil
}

// DailyTotals sums the committed logs on date. Drafts never count.
func (s *Store) DailyTotals(date string) models.Macros {
	return nutrition.DailyTotals(s.LogsForDate(date), date)
}

// DailyProgress reports totals, percentages and what remains for date.
func (s *Store) DailyProgress(date string) Progress {
	logs := s.LogsForDate(date)
	totals := nutrition.DailyTotals(logs, date)
	targets, _ := s.Targets()
	return Progress{
		Date:        date,
		Totals:      totals,
		Targets:     targets,
		Percentages: nutrition.Percentages(totals, targets),
		Remaining:   nutrition.Remaining(totals, targets),
		Logs:        len(logs),
	}
}

// History returns per-day totals in [start, end], newest first.
func (s *Store) History(start, end string) []DaySummary {
	totals := nutrition.TotalsByDate(s.LogsInRange(start, end))
	out := make([]DaySummary, 0, len(totals))
	for _, d := range nutrition.Dates(totals) {
		out = append(out, DaySummary{Date: d, Totals: totals[d]})
	}
	return out
}
