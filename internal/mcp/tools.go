package mcp

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/claude/setflow/internal/models"
	"github.com/claude/setflow/internal/session"
	"github.com/claude/setflow/internal/stats"
	"github.com/claude/setflow/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultHistoryLimit caps get_workout_history when no limit is given.
const defaultHistoryLimit = 20

// PlanSummary is the compact view of a plan used in listings.
type PlanSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	ExerciseCount   int       `json:"exercise_count"`
	ExerciseTimeSec int       `json:"exercise_time_sec"`
	TotalTimeSec    int       `json:"total_time_sec"`
	TotalTime       string    `json:"total_time"`
	Workouts        int       `json:"workouts"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HistoryEntry is a history record tagged with its plan.
type HistoryEntry struct {
	PlanID   string `json:"plan_id"`
	PlanName string `json:"plan_name"`
	models.HistoryRecord
}

func summarize(p models.Plan) PlanSummary {
	return PlanSummary{
		ID:              p.ID,
		Name:            p.Name,
		ExerciseCount:   len(p.Exercises),
		ExerciseTimeSec: p.ExerciseTime(),
		TotalTimeSec:    p.TotalTime(),
		TotalTime:       session.FormatDuration(p.TotalTime()),
		Workouts:        len(p.History),
		UpdatedAt:       p.UpdatedAt,
	}
}

// recentHistory flattens history across plans, newest first, capped at limit.
func recentHistory(plans []models.Plan, limit int) []HistoryEntry {
	entries := []HistoryEntry{}
	for _, p := range plans {
		for _, h := range p.History {
			entries = append(entries, HistoryEntry{PlanID: p.ID, PlanName: p.Name, HistoryRecord: h})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// --- Tool definitions ---

var toolListPlans = mcp.NewTool("list_plans",
	mcp.WithDescription("List all workout plans with exercise count, total time (exercise plus rest) and number of completed workouts."),
)

var toolGetPlan = mcp.NewTool("get_plan",
	mcp.WithDescription("Get one plan with its ordered exercises (duration and rest delay in seconds) and full history."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan ID")),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Completed workouts, newest first. Each record has the completion date, total duration in seconds and exercise count."),
	mcp.WithString("plan_id", mcp.Description("Only this plan's history. Defaults to all plans.")),
	mcp.WithNumber("limit", mcp.Description("Maximum records to return. Defaults to 20.")),
)

var toolGetDashboardStats = mcp.NewTool("get_dashboard_stats",
	mcp.WithDescription("Totals across all plans: plans, completed workouts, exercises, time trained (seconds and minutes) and the last workout date."),
)

var toolGetSessionState = mcp.NewTool("get_session_state",
	mcp.WithDescription("Current countdown session for a plan: phase (idle, resting, exercising, paused, completed), current and next exercise, seconds left and phase progress."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan ID")),
)

var toolControlSession = mcp.NewTool("control_session",
	mcp.WithDescription("Start, pause, resume or reset a plan's countdown session. Start always begins a fresh run; a run that finishes is added to the plan's history."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan ID")),
	mcp.WithString("action", mcp.Required(), mcp.Description("Session action"),
		mcp.Enum(string(session.ActionStart), string(session.ActionPause), string(session.ActionResume), string(session.ActionReset))),
)

// --- Tool handlers ---

func (h *handlers) listPlans(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := h.ds.ListPlans(ctx)
	if err != nil {
		h.log.Error("mcp list_plans", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	summaries := make([]PlanSummary, 0, len(plans))
	for _, p := range plans {
		summaries = append(summaries, summarize(p))
	}
	return jsonResult(summaries)
}

func (h *handlers) getPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("plan_id")
	if err != nil {
		return mcp.NewToolResultError("plan_id parameter is required"), nil
	}

	p, err := h.ds.GetPlan(ctx, id)
	if err != nil {
		return h.lookupError("get_plan", err), nil
	}
	p.Normalize()
	return jsonResult(map[string]any{
		"plan":    p,
		"summary": summarize(*p),
	})
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultHistoryLimit)

	var plans []models.Plan
	if id := req.GetString("plan_id", ""); id != "" {
		p, err := h.ds.GetPlan(ctx, id)
		if err != nil {
			return h.lookupError("get_workout_history", err), nil
		}
		plans = []models.Plan{*p}
	} else {
		var err error
		plans, err = h.ds.ListPlans(ctx)
		if err != nil {
			h.log.Error("mcp get_workout_history", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
	}
	return jsonResult(recentHistory(plans, limit))
}

func (h *handlers) getDashboardStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := h.ds.ListPlans(ctx)
	if err != nil {
		h.log.Error("mcp get_dashboard_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats.ComputeDashboard(plans))
}

func (h *handlers) getSessionState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("plan_id")
	if err != nil {
		return mcp.NewToolResultError("plan_id parameter is required"), nil
	}
	snap, err := h.ds.SessionState(ctx, id)
	if err != nil {
		return h.lookupError("get_session_state", err), nil
	}
	return jsonResult(snap)
}

func (h *handlers) controlSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("plan_id")
	if err != nil {
		return mcp.NewToolResultError("plan_id parameter is required"), nil
	}
	name, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action parameter is required"), nil
	}
	action, err := session.ParseAction(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snap, err := h.ds.ControlSession(ctx, id, action)
	if err != nil {
		return h.lookupError("control_session", err), nil
	}
	return jsonResult(snap)
}

func (h *handlers) lookupError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("plan not found")
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
