package engine

import (
	"errors"
	"testing"

	"macro-log/internal/models"
)

func TestDraftMergesPerField(t *testing.T) {
	s := newTestStore(t, nil, nil)
	id := mustDraft(t, s, "2026-06-01")

	if err := s.UpdateDraft(id, Patch{Description: models.String("leftover curry")}); err != nil {
		t.Fatalf("UpdateDraft: %v", err)
	}
	if err := s.UpdateDraft(id, Patch{ImageRef: models.String("file:///tmp/curry.jpg")}); err != nil {
		t.Fatalf("UpdateDraft: %v", err)
	}
	if err := s.UpdateDraft(id, Patch{Description: models.String("leftover chicken curry"), Calories: models.Float(540)}); err != nil {
		t.Fatalf("UpdateDraft: %v", err)
	}

	d, err := s.Draft(id)
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if d.UserDescription == nil || *d.UserDescription != "leftover chicken curry" {
		t.Fatalf("UserDescription: got=%v", d.UserDescription)
	}
	if d.ImageRef != "file:///tmp/curry.jpg" {
		t.Fatalf("ImageRef: want it kept, got=%q", d.ImageRef)
	}
	if d.UserCalories == nil || *d.UserCalories != 540 {
		t.Fatalf("UserCalories: got=%v", d.UserCalories)
	}
	if d.Version != 3 {
		t.Fatalf("Version: want=3 got=%d", d.Version)
	}
}

func TestDraftClearOverride(t *testing.T) {
	s := newTestStore(t, nil, nil)
	id := mustDraft(t, s, "2026-06-01")
	_ = s.UpdateDraft(id, Patch{Calories: models.Float(300), Fat: models.Float(10)})
	if err := s.UpdateDraft(id, Patch{Clear: []models.Field{models.FieldCalories}}); err != nil {
		t.Fatalf("UpdateDraft: %v", err)
	}
	d, _ := s.Draft(id)
	if d.UserCalories != nil {
		t.Fatalf("UserCalories: want cleared, got=%v", *d.UserCalories)
	}
	if d.UserFat == nil || *d.UserFat != 10 {
		t.Fatalf("UserFat: want kept, got=%v", d.UserFat)
	}
}

func TestDraftRejectsBadInput(t *testing.T) {
	s := newTestStore(t, nil, nil)
	if _, err := s.StartDraft("June 1st"); err == nil {
		t.Fatalf("StartDraft: expected error for bad date")
	}
	id := mustDraft(t, s, "2026-06-01")
	var vErr *models.ValidationError
	if err := s.UpdateDraft(id, Patch{Protein: models.Float(-4)}); !errors.As(err, &vErr) {
		t.Fatalf("UpdateDraft: want ValidationError, got=%v", err)
	}
	if err := s.UpdateDraft("nope", Patch{}); !errors.Is(err, models.ErrDraftNotFound) {
		t.Fatalf("UpdateDraft: want ErrDraftNotFound, got=%v", err)
	}
}

func TestCommitDraft(t *testing.T) {
	s := newTestStore(t, nil, nil)
	id := mustDraft(t, s, "2026-06-01")
	_ = s.UpdateDraft(id, Patch{Title: models.String("Oatmeal"), Calories: models.Float(350)})

	if got := s.DailyTotals("2026-06-01"); got.Calories != 0 {
		t.Fatalf("DailyTotals: drafts must not count, got=%v", got.Calories)
	}

	l, err := s.CommitDraft(id)
	if err != nil {
		t.Fatalf("CommitDraft: %v", err)
	}
	if l.ID == id || l.ID == "" {
		t.Fatalf("CommitDraft: want fresh id, got=%q (draft %q)", l.ID, id)
	}
	if l.UserTitle == nil || *l.UserTitle != "Oatmeal" || l.Date != "2026-06-01" {
		t.Fatalf("CommitDraft: fields not copied: %+v", l)
	}
	if _, err := s.Draft(id); !errors.Is(err, models.ErrDraftNotFound) {
		t.Fatalf("Draft: want cleared after commit, got=%v", err)
	}
	if got := s.DailyTotals("2026-06-01"); got.Calories != 350 {
		t.Fatalf("DailyTotals: want=350 got=%v", got.Calories)
	}
}

func TestDiscardDraftLeavesLogsAlone(t *testing.T) {
	s := newTestStore(t, nil, nil)
	keep := mustDraft(t, s, "2026-06-01")
	_ = s.UpdateDraft(keep, Patch{Calories: models.Float(100)})
	if _, err := s.CommitDraft(keep); err != nil {
		t.Fatalf("CommitDraft: %v", err)
	}
	drop := mustDraft(t, s, "2026-06-01")
	_ = s.UpdateDraft(drop, Patch{Calories: models.Float(900)})
	if err := s.DiscardDraft(drop); err != nil {
		t.Fatalf("DiscardDraft: %v", err)
	}
	if got := s.LogsForDate("2026-06-01"); len(got) != 1 {
		t.Fatalf("LogsForDate: want 1, got=%d", len(got))
	}
	if err := s.DiscardDraft(drop); !errors.Is(err, models.ErrDraftNotFound) {
		t.Fatalf("DiscardDraft twice: want ErrDraftNotFound, got=%v", err)
	}
}
