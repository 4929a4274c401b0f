// internal/nutrition/resolver.go

// Package nutrition holds the pure calculations behind the food log: value
// resolution, daily targets, aggregation and confidence tiers.
package nutrition

import (
	"strings"

	"macro-log/internal/models"
)

// Resolve returns the effective value of f: the user override if present,
// else the generated value, else 0.
func Resolve(log *models.FoodLog, f models.Field) float64 {
	if log == nil {
		return 0
	}
	if v := log.UserValue(f); v != nil {
		return *v
	}
	if v := log.GeneratedValue(f); v != nil {
		return *v
	}
	return 0
}

// ResolveAll resolves every nutrient independently.
func ResolveAll(log *models.FoodLog) models.Macros {
	return models.Macros{
		Calories: Resolve(log, models.FieldCalories),
		Protein:  Resolve(log, models.FieldProtein),
		Carbs:    Resolve(log, models.FieldCarbs),
		Fat:      Resolve(log, models.FieldFat),
	}
}

// ResolveTitle applies the same precedence to the title. Blank overrides
// do not count.
func ResolveTitle(log *models.FoodLog) string {
	if log == nil {
		return ""
	}
	return firstNonBlank(log.UserTitle, log.GeneratedTitle)
}

// ResolveDescription applies the same precedence to the description.
func ResolveDescription(log *models.FoodLog) string {
	if log == nil {
		return ""
	}
	return firstNonBlank(log.UserDescription, log.GeneratedDescription)
}

func firstNonBlank(vals ...*string) string {
	for _, v := range vals {
		if v != nil && strings.TrimSpace(*v) != "" {
			return *v
		}
	}
	return ""
}
