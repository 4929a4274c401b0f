// internal/nutrition/confidence.go
package nutrition

import (
	"macro-log/internal/models"
)

// Tier is the discrete confidence band used for display.
type Tier int

const (
	TierNone Tier = iota
	TierLow
	TierMedium
	TierHigh
)

// ConfidenceTier maps a raw 0-100 confidence to its tier:
// 0 none, 1-49 low, 50-89 medium, 90-100 high.
func ConfidenceTier(confidence int) Tier {
	switch {
	case confidence <= 0:
		return TierNone
	case confidence < 50:
		return TierLow
	case confidence < 90:
		return TierMedium
	default:
		return TierHigh
	}
}

// ConfidenceLevelOf labels a raw confidence.
func ConfidenceLevelOf(confidence int) models.ConfidenceLevel {
	switch ConfidenceTier(confidence) {
	case TierLow:
		return models.LowConfidence
	case TierMedium:
		return models.MediumConfidence
	case TierHigh:
		return models.HighConfidence
	}
	return models.NoConfidence
}

// NeedsUserReview reports whether any component still has an unconfirmed
// recommended measurement.
func NeedsUserReview(components []models.FoodComponent) bool {
	for _, c := range components {
		if c.PendingConfirmation() {
			return true
		}
	}
	return false
}
