package favorites

import (
	"testing"
	"time"

	"macro-log/internal/models"
	"macro-log/internal/nutrition"
)

func TestRoundTripCarriesEffectiveValues(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	log := &models.FoodLog{
		ID:                   "log-1",
		Date:                 "2026-05-01",
		GeneratedTitle:       models.String("Burrito"),
		UserCalories:         models.Float(780),
		GeneratedCalories:    models.Float(700),
		GeneratedProtein:     models.Float(35),
		GeneratedCarbs:       models.Float(90),
		GeneratedFat:         models.Float(28),
		EstimationConfidence: models.Int(72),
	}

	fav := ToFavorite(log, "fav-1", now)
	got := FromFavorite(fav, "log-2", "2026-05-03", now)

	if *got.UserCalories != nutrition.Resolve(log, models.FieldCalories) {
		t.Fatalf("UserCalories: want=%v got=%v", nutrition.Resolve(log, models.FieldCalories), *got.UserCalories)
	}
	if *got.UserProtein != 35 || *got.UserCarbs != 90 || *got.UserFat != 28 {
		t.Fatalf("macros: got=%+v", nutrition.ResolveAll(&got))
	}
	if got.UserTitle == nil || *got.UserTitle != "Burrito" {
		t.Fatalf("UserTitle: got=%v", got.UserTitle)
	}
	if got.EstimationConfidence == nil || *got.EstimationConfidence != 72 {
		t.Fatalf("EstimationConfidence: got=%v", got.EstimationConfidence)
	}
	if got.Date != "2026-05-03" || got.ID != "log-2" {
		t.Fatalf("identity: got id=%q date=%q", got.ID, got.Date)
	}
	if got.GeneratedCalories != nil {
		t.Fatalf("GeneratedCalories: want nil, got=%v", *got.GeneratedCalories)
	}

	// Mutating the source changes neither the favorite nor the derived log.
	*log.UserCalories = 10
	log.GeneratedTitle = models.String("Salad")
	if fav.Macros.Calories != 780 || fav.Title != "Burrito" {
		t.Fatalf("favorite changed after source mutation: %+v", fav)
	}
	if *got.UserCalories != 780 {
		t.Fatalf("derived log changed after source mutation: %v", *got.UserCalories)
	}
}

func TestManualLogSnapshotsFullConfidence(t *testing.T) {
	log := &models.FoodLog{UserTitle: models.String("Toast"), UserCalories: models.Float(180)}
	fav := ToFavorite(log, "fav-1", time.Now())
	if fav.EstimationConfidence != 100 {
		t.Fatalf("EstimationConfidence: want=100 got=%d", fav.EstimationConfidence)
	}
}
