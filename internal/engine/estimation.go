// internal/engine/estimation.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"macro-log/internal/models"
	"macro-log/internal/nutrition"
)

var errNoEstimator = errors.New("no estimator configured")

// Outcome is what became of one estimation request.
type Outcome string

const (
	// OutcomeSettled: the result was merged into the generated fields.
	OutcomeSettled Outcome = "settled"
	// OutcomeStale: the entry changed or vanished while the request was in
	// flight; the result was discarded without any write.
	OutcomeStale Outcome = "stale"
	// OutcomeFailed: the capability failed; nothing was written.
	OutcomeFailed Outcome = "failed"
)

// EstimationInput selects the request flavor. A non-empty ImageRef asks for
// an image estimate; otherwise Description is estimated as text. When both
// are empty the entry's own description and ingredients are used.
type EstimationInput struct {
	Description string `json:"description,omitempty"`
	ImageRef    string `json:"image_ref,omitempty"`
	Title       string `json:"title,omitempty"`
}

func (in EstimationInput) isImage() bool { return in.ImageRef != "" }

// Ticket identifies one in-flight request by the entry version it was
// issued against.
type Ticket struct {
	ID      string
	Version int64
	Input   EstimationInput
}

// RequestEstimation estimates an entry and merges the result if it is still
// current on arrival. Only the capability call runs without the lock.
func (s *Store) RequestEstimation(ctx context.Context, id string, in EstimationInput) (Outcome, error) {
	if s.estimator == nil {
		return "", errNoEstimator
	}
	t, err := s.BeginEstimation(id, in)
	if err != nil {
		return "", err
	}
	var res *models.EstimationResult
	if t.Input.isImage() {
		res, err = s.estimator.EstimateFromImage(ctx, models.ImageEstimationRequest{
			ImageRef:    t.Input.ImageRef,
			Title:       t.Input.Title,
			Description: t.Input.Description,
		})
	} else {
		res, err = s.estimator.EstimateFromText(ctx, models.TextEstimationRequest{Description: t.Input.Description})
	}
	return s.CompleteEstimation(t, res, err)
}

// BeginEstimation bumps the entry version, marks it estimating and returns
// the ticket the result must present on completion.
func (s *Store) BeginEstimation(id string, in EstimationInput) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, _, err := s.entry(id)
	if err != nil {
		return Ticket{}, err
	}
	in, err = estimable(l, in)
	if err != nil {
		return Ticket{}, err
	}
	l.Version++
	l.IsEstimating = true
	s.requested[id] = l.Version
	s.log.Info("estimation started", "log_id", id, "version", l.Version, "image", in.isImage())
	return Ticket{ID: id, Version: l.Version, Input: in}, nil
}

// CompleteEstimation applies the result of the request behind t. The merge
// is all-or-nothing: a stale or failed completion writes no field.
func (s *Store) CompleteEstimation(t Ticket, res *models.EstimationResult, estErr error) (Outcome, error) {
	s.mu.Lock()
	outcome, isDraft, err := s.completeLocked(t, res, estErr)
	s.mu.Unlock()
	if outcome == OutcomeSettled && !isDraft {
		s.save()
	}
	return outcome, err
}

func (s *Store) completeLocked(t Ticket, res *models.EstimationResult, estErr error) (Outcome, bool, error) {
	l, isDraft, err := s.entry(t.ID)
	if err != nil {
		if s.requested[t.ID] == t.Version {
			delete(s.requested, t.ID)
		}
		s.stats.Stale++
		s.log.Info("estimation discarded", "log_id", t.ID, "version", t.Version, "reason", "entry gone")
		return OutcomeStale, isDraft, nil
	}

	latest := s.requested[t.ID] == t.Version
	if l.Version != t.Version {
		if latest {
			l.IsEstimating = false
			delete(s.requested, t.ID)
		}
		s.stats.Stale++
		s.log.Info("estimation discarded", "log_id", t.ID, "version", t.Version, "current", l.Version)
		return OutcomeStale, isDraft, nil
	}

	l.IsEstimating = false
	delete(s.requested, t.ID)

	if estErr == nil && res == nil {
		estErr = &models.EstimationFailure{Kind: models.FailureParse, Err: errors.New("empty result")}
	}
	if estErr != nil {
		s.stats.Failed++
		var failure *models.EstimationFailure
		if !errors.As(estErr, &failure) {
			estErr = &models.EstimationFailure{Kind: models.FailureNetwork, Err: estErr}
		}
		s.log.Warn("estimation failed", "log_id", t.ID, "version", t.Version, "error", estErr)
		return OutcomeFailed, isDraft, fmt.Errorf("failed to estimate %s: %w", t.ID, estErr)
	}

	merge(l, res)
	l.UpdatedAt = s.now()
	if tr, ok := s.trackers[t.ID]; ok {
		tr.Settled(l.FoodComponents)
	}
	s.stats.Settled++
	s.log.Info("estimation settled", "log_id", t.ID, "version", t.Version,
		"confidence", res.EstimationConfidence, "components", len(res.FoodComponents))
	return OutcomeSettled, isDraft, nil
}

func merge(l *models.FoodLog, res *models.EstimationResult) {
	l.GeneratedTitle = optional(res.GeneratedTitle)
	l.GeneratedDescription = optional(res.GeneratedDescription)
	l.GeneratedCalories = models.Float(res.Calories)
	l.GeneratedProtein = models.Float(res.Protein)
	l.GeneratedCarbs = models.Float(res.Carbs)
	l.GeneratedFat = models.Float(res.Fat)
	l.EstimationConfidence = models.Int(res.EstimationConfidence)
	l.FoodComponents = models.CloneComponents(res.FoodComponents)
	if l.FoodComponents == nil {
		l.FoodComponents = []models.FoodComponent{}
	}
	l.NeedsUserReview = nutrition.NeedsUserReview(l.FoodComponents)
}

// fillInput defaults an empty request to the entry's own content.
func fillInput(l *models.FoodLog, in EstimationInput) EstimationInput {
	if in.ImageRef == "" && in.Description == "" {
		in.ImageRef = l.ImageRef
		in.Description = describe(l)
	}
	if in.isImage() && in.Description == "" {
		in.Description = nutrition.ResolveDescription(l)
	}
	if in.Title == "" {
		in.Title = nutrition.ResolveTitle(l)
	}
	return in
}

// estimable fills in in and rejects a request with nothing to estimate.
func estimable(l *models.FoodLog, in EstimationInput) (EstimationInput, error) {
	in = fillInput(l, in)
	if !in.isImage() && strings.TrimSpace(in.Description) == "" {
		return in, &models.ValidationError{Field: "description", Reason: "nothing to estimate"}
	}
	return in, nil
}

// describe renders the entry as free text for a text estimate.
func describe(l *models.FoodLog) string {
	parts := make([]string, 0, len(l.FoodComponents)+1)
	if d := nutrition.ResolveDescription(l); d != "" {
		parts = append(parts, d)
	}
	if len(l.FoodComponents) > 0 {
		items := make([]string, 0, len(l.FoodComponents))
		for _, c := range l.FoodComponents {
			items = append(items, fmt.Sprintf("%s %s %s", formatAmount(c.Amount), c.Unit, c.Name))
		}
		parts = append(parts, "Ingredients: "+strings.Join(items, ", "))
	}
	if len(parts) == 0 {
		return nutrition.ResolveTitle(l)
	}
	return strings.Join(parts, ". ")
}

func formatAmount(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return models.String(s)
}
