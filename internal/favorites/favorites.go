// internal/favorites/favorites.go

// Package favorites converts between logs and immutable favorite snapshots.
package favorites

import (
	"strings"
	"time"

	"macro-log/internal/models"
	"macro-log/internal/nutrition"
)

// fullConfidence is stored for logs that never went through estimation.
const fullConfidence = 100

// ToFavorite snapshots the effective values of log.
func ToFavorite(log *models.FoodLog, id string, now time.Time) models.Favorite {
	confidence := fullConfidence
	if log.EstimationConfidence != nil {
		confidence = *log.EstimationConfidence
	}
	return models.Favorite{
		ID:                   id,
		CreatedAt:            now,
		Title:                nutrition.ResolveTitle(log),
		Description:          nutrition.ResolveDescription(log),
		Macros:               nutrition.ResolveAll(log),
		EstimationConfidence: confidence,
	}
}

// FromFavorite builds a new log on date whose user values come straight from
// the snapshot. The log skips estimation entirely.
func FromFavorite(fav models.Favorite, id, date string, now time.Time) models.FoodLog {
	log := models.FoodLog{
		ID:                   id,
		Date:                 date,
		CreatedAt:            now,
		UpdatedAt:            now,
		UserCalories:         models.Float(fav.Macros.Calories),
		UserProtein:          models.Float(fav.Macros.Protein),
		UserCarbs:            models.Float(fav.Macros.Carbs),
		UserFat:              models.Float(fav.Macros.Fat),
		FoodComponents:       []models.FoodComponent{},
		EstimationConfidence: models.Int(fav.EstimationConfidence),
	}
	if strings.TrimSpace(fav.Title) != "" {
		log.UserTitle = models.String(fav.Title)
	}
	if strings.TrimSpace(fav.Description) != "" {
		log.UserDescription = models.String(fav.Description)
	}
	return log
}
