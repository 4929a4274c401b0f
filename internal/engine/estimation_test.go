package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"macro-log/internal/models"
)

func TestOlderResultArrivingLateIsDiscarded(t *testing.T) {
	s := newTestStore(t, &fakeEstimator{}, nil)
	id := mustDraft(t, s, "2026-06-01")

	t1, err := s.BeginEstimation(id, EstimationInput{Description: "toast"})
	if err != nil {
		t.Fatalf("BeginEstimation: %v", err)
	}
	t2, err := s.BeginEstimation(id, EstimationInput{Description: "toast with butter"})
	if err != nil {
		t.Fatalf("BeginEstimation: %v", err)
	}
	if t1.Version != 1 || t2.Version != 2 {
		t.Fatalf("versions: got t1=%d t2=%d", t1.Version, t2.Version)
	}

	out, err := s.CompleteEstimation(t2, result("buttered toast", 260), nil)
	if err != nil || out != OutcomeSettled {
		t.Fatalf("complete v2: out=%q err=%v", out, err)
	}
	out, err = s.CompleteEstimation(t1, result("toast", 150), nil)
	if err != nil || out != OutcomeStale {
		t.Fatalf("complete v1: out=%q err=%v", out, err)
	}

	d, _ := s.Draft(id)
	if *d.GeneratedTitle != "buttered toast" || *d.GeneratedCalories != 260 || *d.GeneratedProtein != 13 {
		t.Fatalf("generated fields overwritten by stale result: %+v", d)
	}
	if len(d.FoodComponents) != 1 || d.FoodComponents[0].Name != "buttered toast" {
		t.Fatalf("components: got=%+v", d.FoodComponents)
	}
	if d.IsEstimating {
		t.Fatalf("IsEstimating: want false")
	}
	if st := s.Stats(); st.Settled != 1 || st.Stale != 1 {
		t.Fatalf("Stats: got=%+v", st)
	}
}

func TestOlderResultArrivingFirstKeepsEstimating(t *testing.T) {
	s := newTestStore(t, &fakeEstimator{}, nil)
	id := mustDraft(t, s, "2026-06-01")
	t1, _ := s.BeginEstimation(id, EstimationInput{Description: "toast"})
	t2, _ := s.BeginEstimation(id, EstimationInput{Description: "toast with jam"})

	if out, _ := s.CompleteEstimation(t1, result("toast", 150), nil); out != OutcomeStale {
		t.Fatalf("complete v1: want stale, got=%q", out)
	}
	d, _ := s.Draft(id)
	if !d.IsEstimating {
		t.Fatalf("IsEstimating: want true while v2 is in flight")
	}
	if d.GeneratedTitle != nil {
		t.Fatalf("GeneratedTitle: want untouched, got=%q", *d.GeneratedTitle)
	}
	if out, _ := s.CompleteEstimation(t2, result("toast and jam", 240), nil); out != OutcomeSettled {
		t.Fatalf("complete v2: want settled, got=%q", out)
	}
	d, _ = s.Draft(id)
	if d.IsEstimating || *d.GeneratedCalories != 240 {
		t.Fatalf("after v2: %+v", d)
	}
}

func TestUserEditDuringEstimationDiscardsResult(t *testing.T) {
	s := newTestStore(t, &fakeEstimator{}, nil)
	id := mustDraft(t, s, "2026-06-01")
	tk, _ := s.BeginEstimation(id, EstimationInput{Description: "pasta"})
	if err := s.UpdateDraft(id, Patch{Title: models.String("Dinner")}); err != nil {
		t.Fatalf("UpdateDraft: %v", err)
	}
	out, err := s.CompleteEstimation(tk, result("pasta", 700), nil)
	if err != nil || out != OutcomeStale {
		t.Fatalf("CompleteEstimation: out=%q err=%v", out, err)
	}
	d, _ := s.Draft(id)
	if d.GeneratedCalories != nil || d.EstimationConfidence != nil {
		t.Fatalf("stale result wrote fields: %+v", d)
	}
	if d.IsEstimating {
		t.Fatalf("IsEstimating: want cleared when no newer request is pending")
	}
}

func TestFailureLeavesPriorValues(t *testing.T) {
	est := &fakeEstimator{}
	s := newTestStore(t, est, nil)
	id := mustDraft(t, s, "2026-06-01")
	if out, err := s.RequestEstimation(context.Background(), id, EstimationInput{Description: "chicken and rice"}); err != nil || out != OutcomeSettled {
		t.Fatalf("first estimate: out=%q err=%v", out, err)
	}

	est.text = func(ctx context.Context, req models.TextEstimationRequest) (*models.EstimationResult, error) {
		return nil, &models.EstimationFailure{Kind: models.FailureNetwork, Err: errors.New("connection refused")}
	}
	out, err := s.RequestEstimation(context.Background(), id, EstimationInput{Description: "chicken and rice"})
	if out != OutcomeFailed {
		t.Fatalf("outcome: want failed, got=%q", out)
	}
	var failure *models.EstimationFailure
	if !errors.As(err, &failure) || !failure.Retryable() {
		t.Fatalf("error: want retryable *EstimationFailure, got=%v", err)
	}
	d, _ := s.Draft(id)
	if d.IsEstimating {
		t.Fatalf("IsEstimating: want cleared after failure")
	}
	if *d.GeneratedCalories != 610 || *d.EstimationConfidence != 82 || len(d.FoodComponents) != 2 {
		t.Fatalf("prior generated values changed: %+v", d)
	}
}

func TestPlainErrorBecomesEstimationFailure(t *testing.T) {
	est := &fakeEstimator{text: func(ctx context.Context, req models.TextEstimationRequest) (*models.EstimationResult, error) {
		return nil, context.DeadlineExceeded
	}}
	s := newTestStore(t, est, nil)
	id := mustDraft(t, s, "2026-06-01")
	_, err := s.RequestEstimation(context.Background(), id, EstimationInput{Description: "soup"})
	var failure *models.EstimationFailure
	if !errors.As(err, &failure) || failure.Kind != models.FailureNetwork {
		t.Fatalf("want network EstimationFailure, got=%v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want wrapped DeadlineExceeded, got=%v", err)
	}
}

func TestDiscardedDraftResultIsStale(t *testing.T) {
	s := newTestStore(t, &fakeEstimator{}, nil)
	id := mustDraft(t, s, "2026-06-01")
	tk, _ := s.BeginEstimation(id, EstimationInput{Description: "salad"})
	if err := s.DiscardDraft(id); err != nil {
		t.Fatalf("DiscardDraft: %v", err)
	}
	out, err := s.CompleteEstimation(tk, result("salad", 200), nil)
	if err != nil || out != OutcomeStale {
		t.Fatalf("CompleteEstimation: out=%q err=%v", out, err)
	}
	out, err = s.CompleteEstimation(tk, nil, errors.New("timeout"))
	if err != nil || out != OutcomeStale {
		t.Fatalf("failed completion of discarded draft: out=%q err=%v", out, err)
	}
}

func TestRequestEstimationRaceWithEdit(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	est := &fakeEstimator{text: func(ctx context.Context, req models.TextEstimationRequest) (*models.EstimationResult, error) {
		close(started)
		<-release
		return result("burger", 800), nil
	}}
	s := newTestStore(t, est, nil)
	id := mustDraft(t, s, "2026-06-01")

	done := make(chan Outcome, 1)
	go func() {
		out, _ := s.RequestEstimation(context.Background(), id, EstimationInput{Description: "burger"})
		done <- out
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("estimator never called")
	}
	d, _ := s.Draft(id)
	if !d.IsEstimating {
		t.Fatalf("IsEstimating: want true while in flight")
	}
	if err := s.UpdateDraft(id, Patch{Description: models.String("burger, no bun")}); err != nil {
		t.Fatalf("UpdateDraft: %v", err)
	}
	close(release)

	select {
	case out := <-done:
		if out != OutcomeStale {
			t.Fatalf("outcome: want stale, got=%q", out)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("RequestEstimation never returned")
	}
	d, _ = s.Draft(id)
	if d.GeneratedCalories != nil || d.IsEstimating {
		t.Fatalf("after stale completion: %+v", d)
	}
}

func TestImageEstimationSetsReview(t *testing.T) {
	est := &fakeEstimator{image: func(ctx context.Context, req models.ImageEstimationRequest) (*models.EstimationResult, error) {
		return &models.EstimationResult{
			GeneratedTitle: "Smoothie bowl",
			FoodComponents: []models.FoodComponent{
				{Name: "banana", Amount: 1, Unit: models.UnitPiece},
				{Name: "granola", Amount: 30, Unit: models.UnitGram, NeedsRefinement: true,
					RecommendedMeasurement: &models.Measurement{Amount: 0.5, Unit: models.UnitCup}},
			},
			Calories: 420, Protein: 9, Carbs: 70, Fat: 12, EstimationConfidence: 55,
		}, nil
	}}
	s := newTestStore(t, est, nil)
	id := mustDraft(t, s, "2026-06-01")
	_ = s.UpdateDraft(id, Patch{Description: models.String("breakfast bowl")})

	out, err := s.RequestEstimation(context.Background(), id, EstimationInput{ImageRef: "file:///tmp/bowl.jpg"})
	if err != nil || out != OutcomeSettled {
		t.Fatalf("RequestEstimation: out=%q err=%v", out, err)
	}
	if len(est.imgs) != 1 || est.imgs[0].Description != "breakfast bowl" {
		t.Fatalf("image request: got=%+v", est.imgs)
	}
	d, _ := s.Draft(id)
	if !d.NeedsUserReview {
		t.Fatalf("NeedsUserReview: want true")
	}

	if err := s.AcceptRecommendation(id, 1); err != nil {
		t.Fatalf("AcceptRecommendation: %v", err)
	}
	d, _ = s.Draft(id)
	c := d.FoodComponents[1]
	if c.Amount != 0.5 || c.Unit != models.UnitCup || c.RecommendedMeasurement != nil || c.NeedsRefinement {
		t.Fatalf("accepted component: got=%+v", c)
	}
	if d.NeedsUserReview {
		t.Fatalf("NeedsUserReview: want false after accepting")
	}
	if err := s.AcceptRecommendation(id, 0); err == nil {
		t.Fatalf("AcceptRecommendation: expected error for row without recommendation")
	}
}

func TestNotFoodSentinelSettles(t *testing.T) {
	s := newTestStore(t, &fakeEstimator{}, nil)
	id := mustDraft(t, s, "2026-06-01")
	out, err := s.RequestEstimation(context.Background(), id, EstimationInput{ImageRef: "file:///tmp/cat.jpg"})
	if err != nil || out != OutcomeSettled {
		t.Fatalf("RequestEstimation: out=%q err=%v", out, err)
	}
	d, _ := s.Draft(id)
	if *d.EstimationConfidence != 0 || *d.GeneratedCalories != 0 || len(d.FoodComponents) != 0 || d.GeneratedTitle != nil {
		t.Fatalf("not-food merge: %+v", d)
	}
}

func TestReestimateFromIngredients(t *testing.T) {
	est := &fakeEstimator{}
	s := newTestStore(t, est, nil)
	id := mustDraft(t, s, "2026-06-01")
	if _, err := s.RequestEstimation(context.Background(), id, EstimationInput{Description: "chicken and rice"}); err != nil {
		t.Fatalf("RequestEstimation: %v", err)
	}
	if _, err := s.RequestEstimation(context.Background(), id, EstimationInput{}); err != nil {
		t.Fatalf("RequestEstimation(empty): %v", err)
	}
	want := "Ingredients: 150 g chicken breast, 1 cup white rice"
	if got := est.texts[1].Description; got != want {
		t.Fatalf("re-estimate description: want=%q got=%q", want, got)
	}

	empty := mustDraft(t, s, "2026-06-01")
	var vErr *models.ValidationError
	if _, err := s.RequestEstimation(context.Background(), empty, EstimationInput{}); !errors.As(err, &vErr) {
		t.Fatalf("RequestEstimation(empty draft): want ValidationError, got=%v", err)
	}
}

func TestCommitDraftAndEstimate(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, &fakeEstimator{}, p)
	id := mustDraft(t, s, "2026-06-02")
	l, out, err := s.CommitDraftAndEstimate(context.Background(), id, EstimationInput{Description: "chicken and rice"})
	if err != nil || out != OutcomeSettled {
		t.Fatalf("CommitDraftAndEstimate: out=%q err=%v", out, err)
	}
	if l.GeneratedCalories == nil || *l.GeneratedCalories != 610 {
		t.Fatalf("committed log not estimated: %+v", l)
	}
	if got := s.DailyTotals("2026-06-02"); got.Protein != 52 {
		t.Fatalf("DailyTotals: want protein 52, got=%+v", got)
	}
	if len(p.snap.Logs) != 1 || p.snap.Logs[0].IsEstimating {
		t.Fatalf("persisted snapshot: %+v", p.snap.Logs)
	}
}

func TestCommitDraftAndEstimateRejectsEmptyDraft(t *testing.T) {
	p := &memPersister{}
	est := &fakeEstimator{}
	s := newTestStore(t, est, p)
	id := mustDraft(t, s, "2026-06-02")

	_, out, err := s.CommitDraftAndEstimate(context.Background(), id, EstimationInput{})
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) || out != "" {
		t.Fatalf("CommitDraftAndEstimate(empty): out=%q err=%v", out, err)
	}
	if _, err := s.Draft(id); err != nil {
		t.Fatalf("draft must survive a rejected commit: %v", err)
	}
	if logs := s.LogsForDate("2026-06-02"); len(logs) != 0 {
		t.Fatalf("rejected commit created logs: %+v", logs)
	}
	if len(est.texts) != 0 || p.saves != 0 {
		t.Fatalf("rejected commit reached estimator or disk: texts=%d saves=%d", len(est.texts), p.saves)
	}
}
