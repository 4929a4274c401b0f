// internal/engine/patch.go
package engine

import (
	"macro-log/internal/models"
)

// Patch is a shallow, per-field update. Nil fields are left alone; Clear
// removes user overrides for the named nutrients.
type Patch struct {
	Date        *string        `json:"date,omitempty"`
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Calories    *float64       `json:"calories,omitempty"`
	Protein     *float64       `json:"protein,omitempty"`
	Carbs       *float64       `json:"carbs,omitempty"`
	Fat         *float64       `json:"fat,omitempty"`
	ImageRef    *string        `json:"image_ref,omitempty"`
	Clear       []models.Field `json:"clear,omitempty"`
}

func (p Patch) empty() bool {
	return p.Date == nil && p.Title == nil && p.Description == nil &&
		p.Calories == nil && p.Protein == nil && p.Carbs == nil && p.Fat == nil &&
		p.ImageRef == nil && len(p.Clear) == 0
}

func (p Patch) validate() error {
	if p.Date != nil {
		if err := validDate(*p.Date); err != nil {
			return err
		}
	}
	for f, v := range p.nutrients() {
		if v != nil && *v < 0 {
			return &models.ValidationError{Field: string(f), Reason: "must not be negative"}
		}
	}
	for _, f := range p.Clear {
		switch f {
		case models.FieldCalories, models.FieldProtein, models.FieldCarbs, models.FieldFat:
		default:
			return &models.ValidationError{Field: "clear", Reason: "unknown field " + string(f)}
		}
	}
	return nil
}

func (p Patch) nutrients() map[models.Field]*float64 {
	return map[models.Field]*float64{
		models.FieldCalories: p.Calories,
		models.FieldProtein:  p.Protein,
		models.FieldCarbs:    p.Carbs,
		models.FieldFat:      p.Fat,
	}
}

// apply writes the set fields onto l. Clear runs before the sets so a patch
// may clear and set the same field.
func (p Patch) apply(l *models.FoodLog) {
	for _, f := range p.Clear {
		l.SetUserValue(f, nil)
	}
	if p.Date != nil {
		l.Date = *p.Date
	}
	if p.Title != nil {
		l.UserTitle = models.String(*p.Title)
	}
	if p.Description != nil {
		l.UserDescription = models.String(*p.Description)
	}
	if p.ImageRef != nil {
		l.ImageRef = *p.ImageRef
	}
	for f, v := range p.nutrients() {
		if v != nil {
			l.SetUserValue(f, models.Float(*v))
		}
	}
}
