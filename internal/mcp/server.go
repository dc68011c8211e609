// Package mcp provides the stdio MCP server exposing task breakdown and plan tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/go-ports/focusflow/internal/buildinfo"
	"github.com/go-ports/focusflow/internal/models"
	"github.com/go-ports/focusflow/internal/service"
)

const breakdownDescription = `Break a task description into 1-6 focus-sized subtasks without storing anything. ` +
	`Returns the detected category, each subtask's minutes, difficulty (1 easy, 2 medium, 3 hard) and XP.`

const planDescription = `Break a task down and store it as a plan. Returns the plan ID and the subtask IDs ` +
	`needed for task_complete.`

const completeDescription = `Mark a stored subtask as done and award its XP. Completing a task twice awards XP once.`

const searchDescription = `Search stored plans by keyword (and semantically when embeddings are configured).`

const statsDescription = `Report progress: plans, subtasks completed, total XP, level and current streak.`

// NewServer creates and registers all focus tools on a new MCP server.
// It is separate from Serve so tests can drive the server in-process.
func NewServer(svc *service.Service) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("focusflow", buildinfo.Version)
	registerTools(s, svc)
	return s
}

// Serve starts the stdio MCP server for the focus home, blocking until stdin closes.
func Serve(_ context.Context, home string) error {
	svc, err := service.New(home)
	if err != nil {
		return fmt.Errorf("mcp: init service: %w", err)
	}
	defer svc.Close()

	return mcpserver.ServeStdio(NewServer(svc))
}

func registerTools(s *mcpserver.MCPServer, svc *service.Service) {
	categories := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		categories[i] = string(c)
	}

	taskArgs := []mcp.ToolOption{
		mcp.WithString("text",
			mcp.Description("Free-text task description, e.g. \"Write a project proposal\"."),
			mcp.Required(),
		),
		mcp.WithNumber("slot_minutes",
			mcp.Description("Preferred focus slot in minutes. Omit to use the mood suggestion or the configured default (25)."),
		),
		mcp.WithString("mood",
			mcp.Description("Current mood; picks a slot length when slot_minutes is omitted."),
			mcp.Enum(models.ValidMoods...),
		),
	}

	breakdownOpts := append([]mcp.ToolOption{mcp.WithDescription(breakdownDescription)}, taskArgs...)
	breakdownOpts = append(breakdownOpts, mcp.WithNumber("seed",
		mcp.Description("Optional seed for reproducible difficulties on generic tasks."),
	))
	s.AddTool(mcp.NewTool("task_breakdown", breakdownOpts...), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleBreakdown(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("plan_create",
		append([]mcp.ToolOption{mcp.WithDescription(planDescription)}, taskArgs...)...,
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handlePlan(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("task_complete",
		mcp.WithDescription(completeDescription),
		mcp.WithString("task_id",
			mcp.Description("Subtask ID (or unique prefix) from plan_create."),
			mcp.Required(),
		),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleComplete(svc, req)
	})

	s.AddTool(mcp.NewTool("plan_search",
		mcp.WithDescription(searchDescription),
		mcp.WithString("query",
			mcp.Description("Search terms"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default 5)"),
		),
		mcp.WithString("category",
			mcp.Description("Filter to a category."),
			mcp.Enum(categories...),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearch(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("focus_stats",
		mcp.WithDescription(statsDescription),
	), func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleStats(svc)
	})
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func planInput(req mcp.CallToolRequest) service.PlanInput {
	in := service.PlanInput{
		Text:        req.GetString("text", ""),
		SlotMinutes: req.GetInt("slot_minutes", 0),
		Mood:        req.GetString("mood", ""),
	}
	if seed := req.GetInt("seed", -1); seed >= 0 {
		v := uint64(seed)
		in.Seed = &v
	}
	return in
}

func handleBreakdown(ctx context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := svc.Breakdown(ctx, planInput(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tasks := make([]map[string]any, len(b.Tasks))
	for i, t := range b.Tasks {
		tasks[i] = map[string]any{
			"title":             t.Title,
			"estimated_minutes": t.EstimatedMinutes,
			"difficulty":        int(t.Difficulty),
			"xp":                t.XP(),
		}
	}
	return jsonResult(map[string]any{
		"category":      b.Category,
		"slot_minutes":  b.SlotMinutes,
		"tasks":         tasks,
		"total_minutes": b.TotalMinutes,
		"total_xp":      b.TotalXP,
	})
}

func handlePlan(ctx context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := planInput(req)
	in.Seed = nil
	p, err := svc.Plan(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tasks := make([]map[string]any, len(p.Tasks))
	for i, t := range p.Tasks {
		tasks[i] = map[string]any{
			"id":                t.ID,
			"position":          t.Position,
			"title":             t.Title,
			"estimated_minutes": t.EstimatedMinutes,
			"difficulty":        int(t.Difficulty),
			"xp":                t.XP,
		}
	}
	return jsonResult(map[string]any{
		"id":            p.ID,
		"category":      p.Category,
		"slot_minutes":  p.SlotMinutes,
		"tasks":         tasks,
		"total_minutes": p.TotalMinutes,
		"total_xp":      p.TotalXP,
		"file_path":     p.FilePath,
	})
}

func handleComplete(svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := svc.Complete(req.GetString("task_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"task_id":    res.TaskID,
		"title":      res.Title,
		"xp_awarded": res.XPAwarded,
		"already":    res.Already,
	})
}

func handleSearch(ctx context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}
	results, err := svc.Search(ctx, req.GetString("query", ""), limit, req.GetString("category", ""), svc.UseSemantic(ctx))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	clean := make([]map[string]any, 0, len(results))
	for _, r := range results {
		clean = append(clean, map[string]any{
			"id":            r.ID,
			"text":          r.RawText,
			"category":      r.Category,
			"total_minutes": r.TotalMinutes,
			"total_xp":      r.TotalXP,
			"date":          formatDate(r.CreatedAt),
			"score":         roundTwo(r.Score),
		})
	}
	return jsonResult(clean)
}

func handleStats(svc *service.Service) (*mcp.CallToolResult, error) {
	st, err := svc.Stats()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"plans":           st.Plans,
		"tasks_total":     st.TasksTotal,
		"tasks_completed": st.TasksCompleted,
		"total_xp":        st.TotalXP,
		"level":           st.Level,
		"streak_days":     st.StreakDays,
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// formatDate renders an RFC3339 timestamp as "Jan 02"; other input is returned
// trimmed to its date part.
func formatDate(dateStr string) string {
	if len(dateStr) >= 10 {
		dateStr = dateStr[:10]
	}
	t, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		return dateStr
	}
	return t.Format("Jan 02")
}

// roundTwo rounds f to 2 decimal places.
func roundTwo(f float64) float64 {
	return math.Round(f*100) / 100
}
