// internal/models/settings.go
package models

type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "veryActive"
)

type GoalType string

const (
	GoalLose     GoalType = "lose"
	GoalMaintain GoalType = "maintain"
	GoalGain     GoalType = "gain"
)

// UserSettings is the biometric profile targets are derived from.
type UserSettings struct {
	Sex             Sex           `json:"sex" validate:"required,oneof=male female"`
	Age             int           `json:"age" validate:"required,gt=0,lte=130"`
	Weight          float64       `json:"weight" validate:"required,gt=0,lte=400"` // kg
	Height          float64       `json:"height" validate:"required,gt=0,lte=250"` // cm
	ActivityLevel   ActivityLevel `json:"activity_level" validate:"required,oneof=sedentary light moderate active veryActive"`
	CalorieGoalType GoalType      `json:"calorie_goal_type" validate:"required,oneof=lose maintain gain"`
	ProteinFactor   float64       `json:"protein_factor" validate:"gte=0,lte=5"`   // g per kg
	FatPercentage   float64       `json:"fat_percentage" validate:"gte=0,lte=100"` // share of calories

	// Replaces the computed calorie target when set.
	CalorieOverride *int `json:"calorie_override,omitempty"`
}

// DailyTargets are the per-day goals derived from UserSettings.
type DailyTargets struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// Get returns the target for f as a float.
func (t DailyTargets) Get(f Field) float64 {
	switch f {
	case FieldCalories:
		return float64(t.Calories)
	case FieldProtein:
		return float64(t.Protein)
	case FieldCarbs:
		return float64(t.Carbs)
	case FieldFat:
		return float64(t.Fat)
	}
	return 0
}
