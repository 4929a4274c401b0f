package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"macro-log/internal/engine"
	"macro-log/internal/models"
	"macro-log/internal/validation"
)

func openTemp(t *testing.T) (*SQLiteStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "macro-log.db")
	s, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestLoadEmpty(t *testing.T) {
	s, _ := openTemp(t)
	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Logs) != 0 || len(snap.Favorites) != 0 || snap.Settings != nil {
		t.Fatalf("want empty snapshot, got=%+v", snap)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	created := time.Date(2024, 6, 1, 12, 30, 0, 123, time.UTC)

	snap := &engine.Snapshot{
		Logs: []models.FoodLog{
			{
				ID: "a", Date: "2024-06-01", CreatedAt: created, UpdatedAt: created.Add(time.Minute),
				UserTitle:         models.String("Lunch"),
				GeneratedTitle:    models.String("Chicken and rice"),
				GeneratedCalories: models.Float(610),
				UserCalories:      models.Float(650),
				GeneratedProtein:  models.Float(52),
				FoodComponents: []models.FoodComponent{
					{Name: "chicken breast", Amount: 150, Unit: models.UnitGram,
						RecommendedMeasurement: &models.Measurement{Amount: 180, Unit: models.UnitGram}, NeedsRefinement: true},
					{Name: "white rice", Amount: 1, Unit: models.UnitCup},
				},
				EstimationConfidence: models.Int(82),
				NeedsUserReview:      true,
				ImageRef:             "img://1",
				IsEstimating:         true,
				Version:              7,
			},
			{ID: "b", Date: "2024-06-02", CreatedAt: created.Add(time.Hour), UpdatedAt: created.Add(time.Hour),
				UserTitle: models.String("Apple"), UserCalories: models.Float(95)},
		},
		Favorites: []models.Favorite{{ID: "f", CreatedAt: created, Title: "Apple",
			Macros: models.Macros{Calories: 95, Carbs: 25}, EstimationConfidence: 100}},
		Settings: &models.UserSettings{Sex: models.Male, Age: 30, Weight: 80, Height: 180,
			ActivityLevel: models.Moderate, CalorieGoalType: models.GoalMaintain,
			ProteinFactor: 2, FatPercentage: 25, CalorieOverride: models.Int(2400)},
	}
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	reopened, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(got.Logs) != 2 {
		t.Fatalf("logs: want=2 got=%d", len(got.Logs))
	}
	a := got.Logs[0]
	if a.ID != "a" || *a.UserTitle != "Lunch" || *a.UserCalories != 650 || *a.GeneratedCalories != 610 {
		t.Fatalf("log a: got=%+v", a)
	}
	if a.UserProtein != nil || a.GeneratedFat != nil {
		t.Fatalf("absent fields must stay nil: %+v", a)
	}
	if !a.CreatedAt.Equal(created) {
		t.Fatalf("created_at: want=%v got=%v", created, a.CreatedAt)
	}
	if a.IsEstimating || a.Version != 0 {
		t.Fatalf("transient state persisted: estimating=%v version=%d", a.IsEstimating, a.Version)
	}
	if *a.EstimationConfidence != 82 || !a.NeedsUserReview || a.ImageRef != "img://1" {
		t.Fatalf("estimate metadata: got=%+v", a)
	}
	if len(a.FoodComponents) != 2 || a.FoodComponents[1].Name != "white rice" {
		t.Fatalf("component order: got=%+v", a.FoodComponents)
	}
	rec := a.FoodComponents[0].RecommendedMeasurement
	if rec == nil || rec.Amount != 180 || !a.FoodComponents[0].NeedsRefinement {
		t.Fatalf("recommendation: got=%+v", a.FoodComponents[0])
	}
	if a.FoodComponents[1].RecommendedMeasurement != nil {
		t.Fatalf("unexpected recommendation on row 1")
	}

	b := got.Logs[1]
	if b.EstimationConfidence != nil || len(b.FoodComponents) != 0 {
		t.Fatalf("manual log: got=%+v", b)
	}

	if len(got.Favorites) != 1 || got.Favorites[0].Macros.Carbs != 25 {
		t.Fatalf("favorites: got=%+v", got.Favorites)
	}
	st := got.Settings
	if st == nil || st.ActivityLevel != models.Moderate || st.CalorieOverride == nil || *st.CalorieOverride != 2400 {
		t.Fatalf("settings: got=%+v", st)
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	now := time.Now()

	first := &engine.Snapshot{
		Logs: []models.FoodLog{
			{ID: "a", Date: "2024-06-01", CreatedAt: now, UpdatedAt: now,
				FoodComponents: []models.FoodComponent{{Name: "egg", Amount: 2, Unit: models.UnitPiece}}},
		},
		Settings: &models.UserSettings{Sex: models.Female, Age: 40, Weight: 60, Height: 165,
			ActivityLevel: models.Light, CalorieGoalType: models.GoalLose},
	}
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, &engine.Snapshot{}); err != nil {
		t.Fatalf("save empty: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Logs) != 0 || got.Settings != nil {
		t.Fatalf("want cleared snapshot, got=%+v", got)
	}
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM food_components").Scan(&n); err != nil || n != 0 {
		t.Fatalf("orphan components: n=%d err=%v", n, err)
	}
}

func TestStoreSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	store, err := engine.Open(ctx, engine.Options{Persister: s})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	cal := 320.0
	if _, err := store.AddManualLog("2024-06-01", manualEntry("Oatmeal", cal)); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Close()

	again, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	store2, err := engine.Open(ctx, engine.Options{Persister: again})
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	logs := store2.LogsForDate("2024-06-01")
	if len(logs) != 1 || *logs[0].UserCalories != cal {
		t.Fatalf("after restart: got=%+v", logs)
	}
}

func manualEntry(title string, cal float64) validation.ManualEntry {
	return validation.ManualEntry{Title: title, Calories: &cal}
}
