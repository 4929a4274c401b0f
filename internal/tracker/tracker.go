// internal/tracker/tracker.go

// Package tracker watches ingredient edits made after the last estimation so
// a save can warn that totals were not recalculated.
package tracker

import (
	"macro-log/internal/models"
)

// State is a read-only view of a Tracker.
type State struct {
	ChangesCount      int  `json:"changes_count"`
	HasUnsavedChanges bool `json:"has_unsaved_changes"`
	HasReestimated    bool `json:"has_reestimated"`

	// Components as of the last estimation or the start of editing.
	Baseline []models.FoodComponent `json:"baseline,omitempty"`
}

// Tracker holds the change state of one log being edited.
type Tracker struct {
	baseline       []models.FoodComponent
	changesCount   int
	hasReestimated bool
}

// New starts tracking from the components as first loaded.
func New(components []models.FoodComponent) *Tracker {
	return &Tracker{baseline: models.CloneComponents(components)}
}

// RecordChange counts one add, edit, delete or accepted recommendation.
func (t *Tracker) RecordChange() {
	t.changesCount++
}

// Settled refreshes the baseline after a successful estimation.
func (t *Tracker) Settled(components []models.FoodComponent) {
	t.baseline = models.CloneComponents(components)
	t.changesCount = 0
	t.hasReestimated = true
}

// Baseline returns a copy of the last estimated components.
func (t *Tracker) Baseline() []models.FoodComponent {
	return models.CloneComponents(t.baseline)
}

func (t *Tracker) State() State {
	return State{
		ChangesCount:      t.changesCount,
		HasUnsavedChanges: t.changesCount > 0,
		HasReestimated:    t.hasReestimated,
		Baseline:          t.Baseline(),
	}
}

// RecalculationRecommended reports whether components changed since the
// baseline without a new estimation settling.
func (t *Tracker) RecalculationRecommended() bool {
	s := t.State()
	return s.HasUnsavedChanges && !s.HasReestimated
}
