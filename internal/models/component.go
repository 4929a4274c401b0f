// internal/models/component.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Unit is the closed set of measurement units an ingredient may use.
type Unit string

const (
	UnitGram       Unit = "g"
	UnitOunce      Unit = "oz"
	UnitMilliliter Unit = "ml"
	UnitFluidOunce Unit = "fl oz"
	UnitCup        Unit = "cup"
	UnitTablespoon Unit = "tbsp"
	UnitTeaspoon   Unit = "tsp"
	UnitScoop      Unit = "scoop"
	UnitPiece      Unit = "piece"
	UnitServing    Unit = "serving"
)

var Units = []Unit{
	UnitGram, UnitOunce, UnitMilliliter, UnitFluidOunce, UnitCup,
	UnitTablespoon, UnitTeaspoon, UnitScoop, UnitPiece, UnitServing,
}

// ParseUnit normalizes s and reports whether it names a known unit.
func ParseUnit(s string) (Unit, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, u := range Units {
		if string(u) == s {
			return u, true
		}
	}
	return "", false
}

// Measurement is an amount paired with its unit.
type Measurement struct {
	Amount float64 `json:"amount"`
	Unit   Unit    `json:"unit"`
}

// FoodComponent is one ingredient line of a log.
type FoodComponent struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   Unit    `json:"unit"`

	// Set by image estimation when amount/unit could not be confirmed.
	RecommendedMeasurement *Measurement `json:"recommended_measurement,omitempty"`
	NeedsRefinement        bool         `json:"needs_refinement,omitempty"`
}

// PendingConfirmation reports whether the row still awaits the user.
func (c FoodComponent) PendingConfirmation() bool {
	return c.RecommendedMeasurement != nil
}

// CloneComponents deep-copies a component list. A nil input stays nil.
func CloneComponents(in []FoodComponent) []FoodComponent {
	if in == nil {
		return nil
	}
	out := make([]FoodComponent, len(in))
	for i, c := range in {
		out[i] = c
		if c.RecommendedMeasurement != nil {
			m := *c.RecommendedMeasurement
			out[i].RecommendedMeasurement = &m
		}
	}
	return out
}

// EditAction is what a pending edit does to its target row.
type EditAction string

const (
	EditSave   EditAction = "save"
	EditDelete EditAction = "delete"
)

// EditIndex addresses a component position, or NewComponent for an append.
type EditIndex int

const NewComponent EditIndex = -1

func (i EditIndex) IsNew() bool { return i == NewComponent }

func (i EditIndex) MarshalJSON() ([]byte, error) {
	if i.IsNew() {
		return []byte(`"new"`), nil
	}
	return json.Marshal(int(i))
}

func (i *EditIndex) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != "new" {
			return fmt.Errorf("invalid component index %q", s)
		}
		*i = NewComponent
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid component index: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("invalid component index %d", n)
	}
	*i = EditIndex(n)
	return nil
}

// PendingComponentEdit carries one ingredient edit from a detached editor
// back to the log that owns it.
type PendingComponentEdit struct {
	LogID     string        `json:"log_id"`
	Component FoodComponent `json:"component"`
	Index     EditIndex     `json:"index"`
	Action    EditAction    `json:"action"`
}
