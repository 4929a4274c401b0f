// internal/nutrition/targets.go
package nutrition

import (
	"math"

	"macro-log/internal/models"
)

const (
	MinCalorieOverride = 1000
	MaxCalorieOverride = 5000

	goalDelta = 500.0
)

// activityMultipliers maps each activity level to its TDEE multiplier.
var activityMultipliers = map[models.ActivityLevel]float64{
	models.Sedentary:  1.2,
	models.Light:      1.375,
	models.Moderate:   1.55,
	models.Active:     1.725,
	models.VeryActive: 1.9,
}

// BMR computes basal metabolic rate via Mifflin-St Jeor.
func BMR(s models.UserSettings) (float64, error) {
	if err := checkProfile(s); err != nil {
		return 0, err
	}
	bmr := 10*s.Weight + 6.25*s.Height - 5*float64(s.Age)
	if s.Sex == models.Male {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr, nil
}

// TDEE scales BMR by the activity multiplier.
func TDEE(s models.UserSettings) (float64, error) {
	bmr, err := BMR(s)
	if err != nil {
		return 0, err
	}
	return bmr * activityMultipliers[s.ActivityLevel], nil
}

// ComputeTargets derives daily targets from the profile. When protein and fat
// settings leave no room for carbs, carbs are clamped to 0 and a
// *models.ConfigurationError is returned alongside the clamped targets.
func ComputeTargets(s models.UserSettings) (models.DailyTargets, error) {
	tdee, err := TDEE(s)
	if err != nil {
		return models.DailyTargets{}, err
	}

	calories := tdee
	switch s.CalorieGoalType {
	case models.GoalLose:
		calories -= goalDelta
	case models.GoalGain:
		calories += goalDelta
	}
	calories = math.Round(calories)

	protein := s.Weight * s.ProteinFactor
	fat := calories * s.FatPercentage / 100 / 9
	carbs := (calories - protein*4 - fat*9) / 4

	t := models.DailyTargets{
		Calories: int(calories),
		Protein:  int(math.Round(protein)),
		Carbs:    int(math.Round(carbs)),
		Fat:      int(math.Round(fat)),
	}

	if s.CalorieOverride != nil {
		if t, err = OverrideCalories(t, *s.CalorieOverride); err != nil {
			return models.DailyTargets{}, err
		}
	}

	if carbs < 0 {
		t.Carbs = 0
		return t, &models.ConfigurationError{
			Field:  "carbs",
			Value:  math.Round(carbs),
			Reason: "protein and fat settings exceed the calorie target",
		}
	}
	return t, nil
}

// OverrideCalories replaces only the calorie target.
func OverrideCalories(t models.DailyTargets, calories int) (models.DailyTargets, error) {
	if calories < MinCalorieOverride || calories > MaxCalorieOverride {
		return t, &models.ValidationError{
			Field:  "calories",
			Reason: "must be between 1000 and 5000",
		}
	}
	t.Calories = calories
	return t, nil
}

func checkProfile(s models.UserSettings) error {
	switch {
	case s.Weight <= 0:
		return &models.ValidationError{Field: "weight", Reason: "must be positive"}
	case s.Height <= 0:
		return &models.ValidationError{Field: "height", Reason: "must be positive"}
	case s.Age <= 0:
		return &models.ValidationError{Field: "age", Reason: "must be positive"}
	case s.Sex != models.Male && s.Sex != models.Female:
		return &models.ValidationError{Field: "sex", Reason: "must be male or female"}
	case s.ProteinFactor < 0:
		return &models.ValidationError{Field: "protein_factor", Reason: "must not be negative"}
	case s.FatPercentage < 0 || s.FatPercentage > 100:
		return &models.ValidationError{Field: "fat_percentage", Reason: "must be between 0 and 100"}
	}
	if _, ok := activityMultipliers[s.ActivityLevel]; !ok {
		return &models.ValidationError{Field: "activity_level", Reason: "unknown level"}
	}
	switch s.CalorieGoalType {
	case models.GoalLose, models.GoalMaintain, models.GoalGain:
	default:
		return &models.ValidationError{Field: "calorie_goal_type", Reason: "unknown goal"}
	}
	return nil
}
