// internal/models/estimation.go
package models

// TextEstimationRequest asks for a breakdown of a typed meal description.
type TextEstimationRequest struct {
	Description string `json:"description"`
}

// ImageEstimationRequest asks for a breakdown of a photographed meal.
type ImageEstimationRequest struct {
	ImageRef    string `json:"image_ref"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// EstimationResult is what the estimation capability returns. Its values are
// untrusted until merged into the generated fields of a log.
type EstimationResult struct {
	GeneratedTitle       string          `json:"generated_title"`
	GeneratedDescription string          `json:"generated_description,omitempty"`
	FoodComponents       []FoodComponent `json:"food_components"`
	Calories             float64         `json:"calories"`
	Protein              float64         `json:"protein"`
	Carbs                float64         `json:"carbs"`
	Fat                  float64         `json:"fat"`
	EstimationConfidence int             `json:"estimation_confidence"`
}

// NotFood is returned for an image in which no food could be identified.
func NotFood() *EstimationResult {
	return &EstimationResult{FoodComponents: []FoodComponent{}}
}

// IsNotFood reports whether r is the not-food sentinel.
func (r *EstimationResult) IsNotFood() bool {
	return r.EstimationConfidence == 0 && len(r.FoodComponents) == 0 &&
		r.Calories == 0 && r.Protein == 0 && r.Carbs == 0 && r.Fat == 0
}
