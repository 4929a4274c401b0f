// internal/estimation/parse.go
package estimation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"macro-log/internal/models"
)

type wireComponent struct {
	Name              string   `json:"name"`
	Amount            float64  `json:"amount"`
	Unit              string   `json:"unit"`
	NeedsRefinement   bool     `json:"needs_refinement"`
	RecommendedAmount *float64 `json:"recommended_amount"`
	RecommendedUnit   *string  `json:"recommended_unit"`
}

type wireResult struct {
	IsFood      *bool           `json:"is_food"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Components  []wireComponent `json:"components"`
	Calories    float64         `json:"calories"`
	Protein     float64         `json:"protein"`
	Carbs       float64         `json:"carbs"`
	Fat         float64         `json:"fat"`
	Confidence  float64         `json:"confidence"`
}

// parseResult pulls the JSON object out of a completion. Recommendations are
// only honored for image estimates.
func parseResult(content string, image bool) (*models.EstimationResult, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, &models.EstimationFailure{Kind: models.FailureParse, Err: errors.New("no JSON object in completion")}
	}

	var w wireResult
	if err := json.Unmarshal([]byte(content[start:end+1]), &w); err != nil {
		return nil, &models.EstimationFailure{Kind: models.FailureParse, Err: fmt.Errorf("failed to decode completion: %w", err)}
	}
	if w.IsFood != nil && !*w.IsFood {
		return models.NotFood(), nil
	}

	res := &models.EstimationResult{
		GeneratedTitle:       strings.TrimSpace(w.Title),
		GeneratedDescription: strings.TrimSpace(w.Description),
		FoodComponents:       make([]models.FoodComponent, 0, len(w.Components)),
		Calories:             nonNegative(w.Calories),
		Protein:              nonNegative(w.Protein),
		Carbs:                nonNegative(w.Carbs),
		Fat:                  nonNegative(w.Fat),
		EstimationConfidence: clampConfidence(w.Confidence),
	}
	for _, wc := range w.Components {
		name := strings.TrimSpace(wc.Name)
		if name == "" {
			continue
		}
		c := models.FoodComponent{Name: name, Amount: wc.Amount, Unit: unitOr(wc.Unit, models.UnitServing)}
		if !(c.Amount > 0) {
			c.Amount = 1
		}
		if image {
			c.NeedsRefinement = wc.NeedsRefinement
			if wc.RecommendedAmount != nil && *wc.RecommendedAmount > 0 {
				unit := c.Unit
				if wc.RecommendedUnit != nil {
					unit = unitOr(*wc.RecommendedUnit, c.Unit)
				}
				c.RecommendedMeasurement = &models.Measurement{Amount: *wc.RecommendedAmount, Unit: unit}
			}
		}
		res.FoodComponents = append(res.FoodComponents, c)
	}
	// Only a photo can come back empty because there was no food in it.
	if image && res.EstimationConfidence == 0 && len(res.FoodComponents) == 0 {
		return models.NotFood(), nil
	}
	return res, nil
}

func unitOr(s string, fallback models.Unit) models.Unit {
	if u, ok := models.ParseUnit(s); ok {
		return u
	}
	return fallback
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampConfidence(v float64) int {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	}
	return int(math.Round(v))
}
