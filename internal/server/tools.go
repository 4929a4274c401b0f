// internal/server/tools.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"macro-log/internal/engine"
	"macro-log/internal/models"
	"macro-log/internal/nutrition"
	"macro-log/internal/validation"
)

var errInvalidParams = errors.New("invalid parameters")

type IDParams struct {
	ID string `json:"id" description:"Log, draft or favorite id"`
}

type DateParams struct {
	Date string `json:"date,omitempty" description:"Day (YYYY-MM-DD, defaults to today)"`
}

type NoParams struct{}

type PatchParams struct {
	ID          string   `json:"id" description:"Log or draft id"`
	Date        *string  `json:"date,omitempty" description:"Move to this day (YYYY-MM-DD)"`
	Title       *string  `json:"title,omitempty" description:"User title"`
	Description *string  `json:"description,omitempty" description:"User description"`
	Calories    *float64 `json:"calories,omitempty" description:"User calories override"`
	Protein     *float64 `json:"protein,omitempty" description:"User protein override (g)"`
	Carbs       *float64 `json:"carbs,omitempty" description:"User carbs override (g)"`
	Fat         *float64 `json:"fat,omitempty" description:"User fat override (g)"`
	ImageRef    *string  `json:"image_ref,omitempty" description:"Photo reference"`
	Clear       []string `json:"clear,omitempty" description:"Nutrients whose user override is removed"`
}

func (p PatchParams) patch() engine.Patch {
	out := engine.Patch{
		Date: p.Date, Title: p.Title, Description: p.Description,
		Calories: p.Calories, Protein: p.Protein, Carbs: p.Carbs, Fat: p.Fat,
		ImageRef: p.ImageRef,
	}
	for _, f := range p.Clear {
		out.Clear = append(out.Clear, models.Field(f))
	}
	return out
}

type EstimateParams struct {
	ID          string `json:"id" description:"Log or draft id"`
	Description string `json:"description,omitempty" description:"Text to estimate (defaults to the entry's description and ingredients)"`
	ImageRef    string `json:"image_ref,omitempty" description:"Photo to estimate instead of text"`
	Title       string `json:"title,omitempty" description:"Title hint for photo estimates"`
}

func (p EstimateParams) input() engine.EstimationInput {
	return engine.EstimationInput{Description: p.Description, ImageRef: p.ImageRef, Title: p.Title}
}

type CommitDraftParams struct {
	ID          string `json:"id" description:"Draft id"`
	Estimate    bool   `json:"estimate,omitempty" description:"Estimate the new log before returning"`
	Description string `json:"description,omitempty" description:"Text to estimate"`
	ImageRef    string `json:"image_ref,omitempty" description:"Photo to estimate instead of text"`
	Title       string `json:"title,omitempty" description:"Title hint for photo estimates"`
}

type LogManualParams struct {
	Date        string   `json:"date,omitempty" description:"Day (YYYY-MM-DD, defaults to today)"`
	Title       string   `json:"title" description:"Meal title"`
	Description string   `json:"description,omitempty" description:"Meal description"`
	Calories    *float64 `json:"calories" description:"Calories"`
	Protein     *float64 `json:"protein,omitempty" description:"Protein (g)"`
	Carbs       *float64 `json:"carbs,omitempty" description:"Carbs (g)"`
	Fat         *float64 `json:"fat,omitempty" description:"Fat (g)"`
}

type GetLogsParams struct {
	Date      string `json:"date,omitempty" description:"Single day (YYYY-MM-DD)"`
	StartDate string `json:"start_date,omitempty" description:"Start date for range query (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date for range query (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of logs to return"`
}

type SettingsParams struct {
	Sex             string  `json:"sex" description:"male or female"`
	Age             int     `json:"age" description:"Years"`
	Weight          float64 `json:"weight" description:"Kilograms"`
	Height          float64 `json:"height" description:"Centimetres"`
	ActivityLevel   string  `json:"activity_level" description:"sedentary, light, moderate, active or veryActive"`
	CalorieGoalType string  `json:"calorie_goal_type" description:"lose, maintain or gain"`
	ProteinFactor   float64 `json:"protein_factor,omitempty" description:"Protein grams per kg of body weight"`
	FatPercentage   float64 `json:"fat_percentage,omitempty" description:"Share of calories from fat (0-100)"`
	CalorieOverride *int    `json:"calorie_override,omitempty" description:"Fixed calorie target (1000-5000)"`
}

func (p SettingsParams) settings() models.UserSettings {
	return models.UserSettings{
		Sex:             models.Sex(p.Sex),
		Age:             p.Age,
		Weight:          p.Weight,
		Height:          p.Height,
		ActivityLevel:   models.ActivityLevel(p.ActivityLevel),
		CalorieGoalType: models.GoalType(p.CalorieGoalType),
		ProteinFactor:   p.ProteinFactor,
		FatPercentage:   p.FatPercentage,
		CalorieOverride: p.CalorieOverride,
	}
}

type OverrideCaloriesParams struct {
	Calories *int `json:"calories,omitempty" description:"Calorie target (1000-5000)"`
	Clear    bool `json:"clear,omitempty" description:"Restore the computed target"`
}

// ComponentEditParams addresses one ingredient row. Index is required so a
// missing index never falls through to row 0.
type ComponentEditParams struct {
	LogID  string            `json:"log_id" description:"Owning log or draft id"`
	Index  *models.EditIndex `json:"index" description:"Row index, or \"new\" to append"`
	Action string            `json:"action" description:"save or delete"`
	Name   string            `json:"name,omitempty" description:"Ingredient name (kept when blank on edit)"`
	Amount string            `json:"amount,omitempty" description:"Amount, at most one decimal"`
	Unit   string            `json:"unit,omitempty" description:"g, oz, ml, fl oz, cup, tbsp, tsp, scoop, piece or serving"`
}

func (p ComponentEditParams) check() (models.EditIndex, models.EditAction, error) {
	if err := requireID("log_id", p.LogID); err != nil {
		return 0, "", err
	}
	if p.Index == nil {
		return 0, "", fmt.Errorf("%w: index is required", errInvalidParams)
	}
	action := models.EditAction(p.Action)
	switch action {
	case models.EditSave:
	case models.EditDelete:
		if p.Index.IsNew() {
			return 0, "", &models.ValidationError{Field: "index", Reason: "cannot delete a new row"}
		}
	default:
		return 0, "", &models.ValidationError{Field: "action", Reason: "must be save or delete"}
	}
	return *p.Index, action, nil
}

func (p ComponentEditParams) input() validation.ComponentInput {
	return validation.ComponentInput{Name: p.Name, Amount: p.Amount, Unit: p.Unit}
}

type LogIDParams struct {
	LogID string `json:"log_id" description:"Owning log or draft id"`
}

type AcceptRecommendationParams struct {
	LogID string `json:"log_id" description:"Owning log or draft id"`
	Index int    `json:"index" description:"Row index"`
}

type LogFavoriteParams struct {
	FavoriteID string `json:"favorite_id" description:"Favorite to log"`
	Date       string `json:"date,omitempty" description:"Day (YYYY-MM-DD, defaults to today)"`
}

// LogView is a log plus its resolved display values.
type LogView struct {
	models.FoodLog
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Macros          models.Macros          `json:"macros"`
	ConfidenceLevel models.ConfidenceLevel `json:"confidence_level,omitempty"`
}

func viewOf(l models.FoodLog) LogView {
	v := LogView{
		FoodLog:     l,
		Title:       nutrition.ResolveTitle(&l),
		Description: nutrition.ResolveDescription(&l),
		Macros:      nutrition.ResolveAll(&l),
	}
	if l.EstimationConfidence != nil {
		v.ConfidenceLevel = nutrition.ConfidenceLevelOf(*l.EstimationConfidence)
	}
	return v
}

func viewsOf(logs []models.FoodLog) []LogView {
	out := make([]LogView, 0, len(logs))
	for _, l := range logs {
		out = append(out, viewOf(l))
	}
	return out
}

// EstimateResult reports an estimation outcome. Failures come back here, not
// as errors, so the caller can offer a retry.
type EstimateResult struct {
	Outcome   engine.Outcome `json:"outcome"`
	Log       *LogView       `json:"log,omitempty"`
	Error     string         `json:"error,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	return nil
}

func requireID(name, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s is required", errInvalidParams, name)
	}
	return nil
}

func (s *MacroLogServer) today(date string) string {
	if date != "" {
		return date
	}
	return s.now().Format("2006-01-02")
}

func (s *MacroLogServer) handleStartDraft(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DateParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	id, err := s.store.StartDraft(s.today(params.Date))
	if err != nil {
		return nil, err
	}
	draft, err := s.store.Draft(id)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(viewOf(draft))
}

func (s *MacroLogServer) handleUpdateDraft(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params PatchParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireID("id", params.ID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateDraft(params.ID, params.patch()); err != nil {
		return nil, err
	}
	draft, err := s.store.Draft(params.ID)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(viewOf(draft))
}

func (s *MacroLogServer) handleDiscardDraft(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params IDParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := s.store.DiscardDraft(params.ID); err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]bool{"discarded": true})
}

func (s *MacroLogServer) handleCommitDraft(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params CommitDraftParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireID("id", params.ID); err != nil {
		return nil, err
	}
	if !params.Estimate {
		l, err := s.store.CommitDraft(params.ID)
		if err != nil {
			return nil, err
		}
		return s.createJSONResponse(viewOf(l))
	}

	in := engine.EstimationInput{Description: params.Description, ImageRef: params.ImageRef, Title: params.Title}
	l, outcome, err := s.store.CommitDraftAndEstimate(s.ctx, params.ID, in)
	if outcome == "" {
		// Rejected before anything was committed.
		return nil, err
	}
	return s.estimateResponse(l.ID, outcome, err)
}

func (s *MacroLogServer) handleEstimate(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params EstimateParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireID("id", params.ID); err != nil {
		return nil, err
	}
	outcome, err := s.store.RequestEstimation(s.ctx, params.ID, params.input())
	if outcome == "" {
		return nil, err
	}
	return s.estimateResponse(params.ID, outcome, err)
}

// estimateResponse reports the entry as it stands after the outcome.
func (s *MacroLogServer) estimateResponse(id string, outcome engine.Outcome, estErr error) (*protocol.CallToolResult, error) {
	result := EstimateResult{Outcome: outcome}
	if estErr != nil {
		result.Error = estErr.Error()
		var failure *models.EstimationFailure
		result.Retryable = errors.As(estErr, &failure) && failure.Retryable()
	}
	if l, err := s.lookup(id); err == nil {
		v := viewOf(l)
		result.Log = &v
	}
	return s.createJSONResponse(result)
}

// lookup finds a committed log, or the draft with that id.
func (s *MacroLogServer) lookup(id string) (models.FoodLog, error) {
	l, err := s.store.Log(id)
	if errors.Is(err, models.ErrLogNotFound) {
		return s.store.Draft(id)
	}
	return l, err
}

func (s *MacroLogServer) handleLogManual(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogManualParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	l, err := s.store.AddManualLog(s.today(params.Date), validation.ManualEntry{
		Title:       params.Title,
		Description: params.Description,
		Calories:    params.Calories,
		Protein:     params.Protein,
		Carbs:       params.Carbs,
		Fat:         params.Fat,
	})
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(viewOf(l))
}

func (s *MacroLogServer) handleUpdateLog(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params PatchParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireID("id", params.ID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateLog(params.ID, params.patch()); err != nil {
		return nil, err
	}
	l, err := s.store.Log(params.ID)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(viewOf(l))
}

func (s *MacroLogServer) handleGetLogs(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetLogsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	var logs []models.FoodLog
	if params.StartDate != "" || params.EndDate != "" {
		logs = s.store.LogsInRange(params.StartDate, params.EndDate)
	} else {
		logs = s.store.LogsForDate(s.today(params.Date))
	}
	if params.Limit > 0 && len(logs) > params.Limit {
		logs = logs[:params.Limit]
	}
	return s.createJSONResponse(viewsOf(logs))
}

func (s *MacroLogServer) handleDeleteLog(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params IDParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := s.store.DeleteLog(params.ID); err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]bool{"deleted": true})
}

func (s *MacroLogServer) handleEditComponent(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ComponentEditParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	index, action, err := params.check()
	if err != nil {
		return nil, err
	}

	switch {
	case action == models.EditDelete:
		err = s.store.DeleteComponent(params.LogID, int(index))
	case index.IsNew():
		_, err = s.store.AddComponent(params.LogID, params.input())
	default:
		_, err = s.store.UpdateComponent(params.LogID, int(index), params.input())
	}
	if err != nil {
		return nil, err
	}
	return s.entryResponse(params.LogID, nil)
}

// handleSetPendingEdit parks an edit in the one-slot mailbox for a later
// apply_pending_edit on the same log.
func (s *MacroLogServer) handleSetPendingEdit(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ComponentEditParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	index, action, err := params.check()
	if err != nil {
		return nil, err
	}

	edit := models.PendingComponentEdit{LogID: params.LogID, Index: index, Action: action}
	if action == models.EditSave {
		amount, err := strconv.ParseFloat(strings.TrimSpace(params.Amount), 64)
		if err != nil {
			return nil, &models.ValidationError{Field: "amount", Reason: "must be a number"}
		}
		unit, _ := models.ParseUnit(params.Unit)
		edit.Component = models.FoodComponent{Name: strings.TrimSpace(params.Name), Amount: amount, Unit: unit}
	}
	if err := s.store.SetPendingEdit(edit); err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]interface{}{"pending": true, "log_id": params.LogID})
}

func (s *MacroLogServer) handleApplyPendingEdit(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogIDParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireID("log_id", params.LogID); err != nil {
		return nil, err
	}
	applied, err := s.store.ApplyPendingEdit(params.LogID)
	if err != nil {
		return nil, err
	}
	return s.entryResponse(params.LogID, map[string]interface{}{"applied": applied})
}

func (s *MacroLogServer) handleBeginEditing(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params IDParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := s.store.BeginEditing(params.ID); err != nil {
		return nil, err
	}
	return s.entryResponse(params.ID, nil)
}

func (s *MacroLogServer) handleEndEditing(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params IDParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if _, err := s.lookup(params.ID); err != nil {
		return nil, err
	}
	warn := s.store.ShouldWarnBeforeSave(params.ID)
	s.store.EndEditing(params.ID)
	return s.createJSONResponse(map[string]interface{}{
		"ended":                     true,
		"recalculation_recommended": warn,
	})
}

func (s *MacroLogServer) handleAcceptRecommendation(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AcceptRecommendationParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := s.store.AcceptRecommendation(params.LogID, params.Index); err != nil {
		return nil, err
	}
	return s.entryResponse(params.LogID, nil)
}

// entryResponse returns the entry along with its edit-session state.
func (s *MacroLogServer) entryResponse(id string, extra map[string]interface{}) (*protocol.CallToolResult, error) {
	l, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	state, err := s.store.TrackerState(id)
	if err != nil {
		return nil, err
	}
	result := map[string]interface{}{
		"log":                       viewOf(l),
		"changes":                   state,
		"recalculation_recommended": s.store.ShouldWarnBeforeSave(id),
	}
	for k, v := range extra {
		result[k] = v
	}
	return s.createJSONResponse(result)
}

func (s *MacroLogServer) handleDailyProgress(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DateParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	progress := s.store.DailyProgress(s.today(params.Date))
	_, configured := s.store.Targets()
	return s.createJSONResponse(map[string]interface{}{
		"progress":   progress,
		"configured": configured,
	})
}

func (s *MacroLogServer) handleHistory(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetLogsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return s.createJSONResponse(s.store.History(params.StartDate, params.EndDate))
}

func (s *MacroLogServer) handleSetSettings(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SettingsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	targets, err := s.store.SetSettings(params.settings())
	return s.targetsResponse(targets, err)
}

func (s *MacroLogServer) handleGetSettings(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	settings, err := s.store.Settings()
	if err != nil {
		return nil, err
	}
	targets, _ := s.store.Targets()
	return s.createJSONResponse(map[string]interface{}{
		"settings": settings,
		"targets":  targets,
	})
}

func (s *MacroLogServer) handleOverrideCalories(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params OverrideCaloriesParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.Clear {
		targets, err := s.store.ClearCalorieOverride()
		return s.targetsResponse(targets, err)
	}
	if params.Calories == nil {
		return nil, fmt.Errorf("%w: calories or clear is required", errInvalidParams)
	}
	targets, err := s.store.OverrideCalories(*params.Calories)
	return s.targetsResponse(targets, err)
}

// targetsResponse returns the stored targets. An unsatisfiable macro split
// still stores the profile, so it is reported as a warning.
func (s *MacroLogServer) targetsResponse(targets models.DailyTargets, err error) (*protocol.CallToolResult, error) {
	var cfgErr *models.ConfigurationError
	if err != nil && !errors.As(err, &cfgErr) {
		return nil, err
	}
	result := map[string]interface{}{"targets": targets}
	if cfgErr != nil {
		result["warning"] = cfgErr.Error()
	}
	return s.createJSONResponse(result)
}

func (s *MacroLogServer) handleAddFavorite(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogIDParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	fav, err := s.store.AddFavorite(params.LogID)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(fav)
}

func (s *MacroLogServer) handleLogFavorite(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogFavoriteParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	l, err := s.store.LogFavorite(params.FavoriteID, s.today(params.Date))
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(viewOf(l))
}

func (s *MacroLogServer) handleListFavorites(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.createJSONResponse(s.store.Favorites())
}

func (s *MacroLogServer) handleRemoveFavorite(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params IDParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := s.store.RemoveFavorite(params.ID); err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]bool{"removed": true})
}

func (s *MacroLogServer) handleStats(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.createJSONResponse(s.store.Stats())
}

// registerTools builds each tool's schema from its params struct and hands
// dispatch to the MCP server.
func (s *MacroLogServer) registerTools() error {
	s.tools = []toolDef{
		{"start_draft", "Start an unsaved draft log for a day", DateParams{}, s.handleStartDraft},
		{"update_draft", "Merge field changes into a draft", PatchParams{}, s.handleUpdateDraft},
		{"discard_draft", "Drop a draft without saving", IDParams{}, s.handleDiscardDraft},
		{"commit_draft", "Save a draft as a log, optionally estimating it", CommitDraftParams{}, s.handleCommitDraft},
		{"estimate", "Estimate nutrition for a log or draft from text or a photo", EstimateParams{}, s.handleEstimate},
		{"log_manual", "Log a meal with user-entered values", LogManualParams{}, s.handleLogManual},
		{"update_log", "Change fields of a saved log", PatchParams{}, s.handleUpdateLog},
		{"get_logs", "List logs for a day or date range", GetLogsParams{}, s.handleGetLogs},
		{"delete_log", "Delete a saved log", IDParams{}, s.handleDeleteLog},
		{"begin_editing", "Start tracking ingredient changes for a log", IDParams{}, s.handleBeginEditing},
		{"end_editing", "Stop tracking ingredient changes for a log", IDParams{}, s.handleEndEditing},
		{"edit_component", "Add, change or delete an ingredient row", ComponentEditParams{}, s.handleEditComponent},
		{"set_pending_edit", "Park an ingredient edit for a log", ComponentEditParams{}, s.handleSetPendingEdit},
		{"apply_pending_edit", "Apply the parked ingredient edit to its log", LogIDParams{}, s.handleApplyPendingEdit},
		{"accept_recommendation", "Accept the suggested amount for an ingredient", AcceptRecommendationParams{}, s.handleAcceptRecommendation},
		{"daily_progress", "Totals, targets and remaining for a day", DateParams{}, s.handleDailyProgress},
		{"history", "Per-day totals over a date range", GetLogsParams{}, s.handleHistory},
		{"set_settings", "Store the biometric profile and recompute targets", SettingsParams{}, s.handleSetSettings},
		{"get_settings", "Show the profile and current targets", NoParams{}, s.handleGetSettings},
		{"override_calories", "Set or clear a fixed calorie target", OverrideCaloriesParams{}, s.handleOverrideCalories},
		{"add_favorite", "Save a log as a favorite", LogIDParams{}, s.handleAddFavorite},
		{"log_favorite", "Log a favorite on a day", LogFavoriteParams{}, s.handleLogFavorite},
		{"list_favorites", "List favorites, newest first", NoParams{}, s.handleListFavorites},
		{"remove_favorite", "Delete a favorite", IDParams{}, s.handleRemoveFavorite},
		{"stats", "Estimation outcome counters", NoParams{}, s.handleStats},
	}

	for _, def := range s.tools {
		tool, err := protocol.NewTool(def.name, def.description, def.params)
		if err != nil {
			return fmt.Errorf("failed to build tool %s: %w", def.name, err)
		}
		s.server.RegisterTool(tool, s.invoke(def))
	}
	return nil
}
