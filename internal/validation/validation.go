// internal/validation/validation.go

// Package validation rejects malformed user input before it reaches the store.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"macro-log/internal/models"
)

// Mode selects the rules for a component form.
type Mode int

const (
	Create Mode = iota
	Edit
)

// ComponentInput is the raw ingredient form as typed by the user.
type ComponentInput struct {
	Name   string `json:"name" validate:"omitempty,min=2,max=100"`
	Amount string `json:"amount" validate:"required,onedecimal,positive"`
	Unit   string `json:"unit" validate:"required,unit"`
}

// ManualEntry is a log typed in by hand, without estimation.
type ManualEntry struct {
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=1000"`
	Calories    *float64 `json:"calories" validate:"required,gte=0,lte=10000"`
	Protein     *float64 `json:"protein" validate:"omitempty,gte=0,lte=1000"`
	Carbs       *float64 `json:"carbs" validate:"omitempty,gte=0,lte=1000"`
	Fat         *float64 `json:"fat" validate:"omitempty,gte=0,lte=1000"`
}

var oneDecimal = regexp.MustCompile(`^(\d+(\.\d)?|\.\d)$`)

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("onedecimal", func(fl validator.FieldLevel) bool {
		return oneDecimal.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		n, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
		return err == nil && n > 0
	})
	_ = v.RegisterValidation("unit", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseUnit(fl.Field().String())
		return ok
	})
	return &Validator{v: v}
}

// Component validates a form and builds the resulting component. In Edit mode
// a blank name keeps the existing one.
func (v *Validator) Component(in ComponentInput, mode Mode, existing *models.FoodComponent) (models.FoodComponent, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Amount = strings.TrimSpace(in.Amount)
	if in.Name == "" {
		if mode == Create || existing == nil {
			return models.FoodComponent{}, &models.ValidationError{Field: "name", Reason: "is required"}
		}
	}
	if err := v.v.Struct(in); err != nil {
		return models.FoodComponent{}, translate(err)
	}

	amount, _ := strconv.ParseFloat(in.Amount, 64)
	unit, _ := models.ParseUnit(in.Unit)
	out := models.FoodComponent{Name: in.Name, Amount: amount, Unit: unit}
	if out.Name == "" {
		out.Name = existing.Name
	}
	return out, nil
}

// StoredComponent checks a component that was built elsewhere, such as a
// ferried edit.
func (v *Validator) StoredComponent(c models.FoodComponent) error {
	if len(strings.TrimSpace(c.Name)) < 2 {
		return &models.ValidationError{Field: "name", Reason: "must be at least 2 characters"}
	}
	if !(c.Amount > 0) || math.IsInf(c.Amount, 0) {
		return &models.ValidationError{Field: "amount", Reason: "must be greater than 0"}
	}
	if _, ok := models.ParseUnit(string(c.Unit)); !ok {
		return &models.ValidationError{Field: "unit", Reason: fmt.Sprintf("unknown unit %q", c.Unit)}
	}
	return nil
}

// Manual validates a hand-typed log.
func (v *Validator) Manual(e ManualEntry) error {
	if strings.TrimSpace(e.Title) == "" {
		return &models.ValidationError{Field: "title", Reason: "is required"}
	}
	if err := v.v.Struct(e); err != nil {
		return translate(err)
	}
	return nil
}

// Settings validates a biometric profile.
func (v *Validator) Settings(s models.UserSettings) error {
	if err := v.v.Struct(s); err != nil {
		return translate(err)
	}
	return nil
}

// translate reports the first failing field as a *models.ValidationError.
func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &models.ValidationError{Field: "input", Reason: err.Error()}
	}
	fe := verrs[0]
	return &models.ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "onedecimal":
		return "must be a number with at most one decimal place"
	case "positive":
		return "must be greater than 0"
	case "unit":
		return "unknown unit"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}
