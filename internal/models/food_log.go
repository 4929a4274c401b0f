// internal/models/food_log.go
package models

import (
	"time"
)

// Field names one of the four dual-valued nutrients.
type Field string

const (
	FieldCalories Field = "calories"
	FieldProtein  Field = "protein"
	FieldCarbs    Field = "carbs"
	FieldFat      Field = "fat"
)

// Fields lists the nutrients in display order.
var Fields = []Field{FieldCalories, FieldProtein, FieldCarbs, FieldFat}

// FoodLog is one logged meal. Every nutrient, the title and the description
// carry an optional user override next to an optional generated value.
type FoodLog struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserTitle            *string `json:"user_title,omitempty"`
	GeneratedTitle       *string `json:"generated_title,omitempty"`
	UserDescription      *string `json:"user_description,omitempty"`
	GeneratedDescription *string `json:"generated_description,omitempty"`

	UserCalories      *float64 `json:"user_calories,omitempty"`
	GeneratedCalories *float64 `json:"generated_calories,omitempty"`
	UserProtein       *float64 `json:"user_protein,omitempty"`
	GeneratedProtein  *float64 `json:"generated_protein,omitempty"`
	UserCarbs         *float64 `json:"user_carbs,omitempty"`
	GeneratedCarbs    *float64 `json:"generated_carbs,omitempty"`
	UserFat           *float64 `json:"user_fat,omitempty"`
	GeneratedFat      *float64 `json:"generated_fat,omitempty"`

	FoodComponents       []FoodComponent `json:"food_components"`
	EstimationConfidence *int            `json:"estimation_confidence,omitempty"`
	NeedsUserReview      bool            `json:"needs_user_review"`
	ImageRef             string          `json:"image_ref,omitempty"`

	// Transient: never written to durable storage.
	IsEstimating bool  `json:"is_estimating"`
	Version      int64 `json:"version"`
}

// UserValue returns the override slot for f.
func (l *FoodLog) UserValue(f Field) *float64 {
	switch f {
	case FieldCalories:
		return l.UserCalories
	case FieldProtein:
		return l.UserProtein
	case FieldCarbs:
		return l.UserCarbs
	case FieldFat:
		return l.UserFat
	}
	return nil
}

// GeneratedValue returns the generated slot for f.
func (l *FoodLog) GeneratedValue(f Field) *float64 {
	switch f {
	case FieldCalories:
		return l.GeneratedCalories
	case FieldProtein:
		return l.GeneratedProtein
	case FieldCarbs:
		return l.GeneratedCarbs
	case FieldFat:
		return l.GeneratedFat
	}
	return nil
}

// SetUserValue replaces the override for f. A nil v removes it.
func (l *FoodLog) SetUserValue(f Field, v *float64) {
	switch f {
	case FieldCalories:
		l.UserCalories = v
	case FieldProtein:
		l.UserProtein = v
	case FieldCarbs:
		l.UserCarbs = v
	case FieldFat:
		l.UserFat = v
	}
}

// Clone returns a deep copy that shares no pointers or slices with l.
func (l FoodLog) Clone() FoodLog {
	out := l
	out.UserTitle = cloneString(l.UserTitle)
	out.GeneratedTitle = cloneString(l.GeneratedTitle)
	out.UserDescription = cloneString(l.UserDescription)
	out.GeneratedDescription = cloneString(l.GeneratedDescription)
	out.UserCalories = cloneFloat(l.UserCalories)
	out.GeneratedCalories = cloneFloat(l.GeneratedCalories)
	out.UserProtein = cloneFloat(l.UserProtein)
	out.GeneratedProtein = cloneFloat(l.GeneratedProtein)
	out.UserCarbs = cloneFloat(l.UserCarbs)
	out.GeneratedCarbs = cloneFloat(l.GeneratedCarbs)
	out.UserFat = cloneFloat(l.UserFat)
	out.GeneratedFat = cloneFloat(l.GeneratedFat)
	out.FoodComponents = CloneComponents(l.FoodComponents)
	if l.EstimationConfidence != nil {
		c := *l.EstimationConfidence
		out.EstimationConfidence = &c
	}
	return out
}

// Macros is a resolved calories/protein/carbs/fat set.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Get returns the value for f.
func (m Macros) Get(f Field) float64 {
	switch f {
	case FieldCalories:
		return m.Calories
	case FieldProtein:
		return m.Protein
	case FieldCarbs:
		return m.Carbs
	case FieldFat:
		return m.Fat
	}
	return 0
}

// Add returns the element-wise sum.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// ConfidenceLevel is the coarse label shown next to an estimate.
type ConfidenceLevel string

const (
	HighConfidence   ConfidenceLevel = "high"
	MediumConfidence ConfidenceLevel = "medium"
	LowConfidence    ConfidenceLevel = "low"
	NoConfidence     ConfidenceLevel = "none"
)

// Favorite is an immutable snapshot of a log's effective values.
type Favorite struct {
	ID                   string    `json:"id"`
	CreatedAt            time.Time `json:"created_at"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Macros               Macros    `json:"macros"`
	EstimationConfidence int       `json:"estimation_confidence"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s.
func String(s string) *string { return &s }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
