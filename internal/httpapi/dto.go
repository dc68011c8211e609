package httpapi

import (
	"time"

	"github.com/go-ports/focusflow/internal/breakdown"
	"github.com/go-ports/focusflow/internal/models"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TaskRequest is the body of POST /api/breakdown and POST /api/plans.
type TaskRequest struct {
	Text        string  `json:"text"`
	SlotMinutes int     `json:"slot_minutes"`
	Mood        string  `json:"mood"`
	Seed        *uint64 `json:"seed,omitempty"`
}

// MoodRequest is the body of POST /api/moods.
type MoodRequest struct {
	Mood string `json:"mood"`
	Note string `json:"note"`
}

// TaskResponse is one subtask, persisted or not.
type TaskResponse struct {
	ID               string     `json:"id,omitempty"`
	Position         int        `json:"position,omitempty"`
	Title            string     `json:"title"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Difficulty       int        `json:"difficulty"`
	XP               int        `json:"xp"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// BreakdownResponse is the body of POST /api/breakdown.
type BreakdownResponse struct {
	Category     models.Category `json:"category"`
	SlotMinutes  int             `json:"slot_minutes"`
	Tasks        []TaskResponse  `json:"tasks"`
	TotalMinutes int             `json:"total_minutes"`
	TotalXP      int             `json:"total_xp"`
}

// PlanResponse is a stored plan.
type PlanResponse struct {
	ID           string          `json:"id"`
	Text         string          `json:"text"`
	Category     models.Category `json:"category"`
	SlotMinutes  int             `json:"slot_minutes"`
	Mood         string          `json:"mood,omitempty"`
	Tasks        []TaskResponse  `json:"tasks"`
	TotalMinutes int             `json:"total_minutes"`
	TotalXP      int             `json:"total_xp"`
	FilePath     string          `json:"file_path"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CompleteResponse is the body of POST /api/tasks/:id/complete.
type CompleteResponse struct {
	TaskID    string `json:"task_id"`
	Title     string `json:"title"`
	XPAwarded int    `json:"xp_awarded"`
	Already   bool   `json:"already"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Plans          int `json:"plans"`
	TasksTotal     int `json:"tasks_total"`
	TasksCompleted int `json:"tasks_completed"`
	TotalXP        int `json:"total_xp"`
	Level          int `json:"level"`
	StreakDays     int `json:"streak_days"`
}

// MoodResponse is one mood check-in.
type MoodResponse struct {
	ID        string    `json:"id"`
	Mood      string    `json:"mood"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// XPResponse is the body of GET /api/xp.
type XPResponse struct {
	Minutes    int    `json:"minutes"`
	Difficulty string `json:"difficulty"`
	XP         int    `json:"xp"`
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

func toBreakdownResponse(b breakdown.Breakdown) BreakdownResponse {
	tasks := make([]TaskResponse, len(b.Tasks))
	for i, t := range b.Tasks {
		tasks[i] = TaskResponse{
			Title:            t.Title,
			EstimatedMinutes: t.EstimatedMinutes,
			Difficulty:       int(t.Difficulty),
			XP:               t.XP(),
		}
	}
	return BreakdownResponse{
		Category:     b.Category,
		SlotMinutes:  b.SlotMinutes,
		Tasks:        tasks,
		TotalMinutes: b.TotalMinutes,
		TotalXP:      b.TotalXP,
	}
}

func toPlanResponse(p *models.Plan) PlanResponse {
	tasks := make([]TaskResponse, len(p.Tasks))
	for i, t := range p.Tasks {
		tasks[i] = TaskResponse{
			ID:               t.ID,
			Position:         t.Position,
			Title:            t.Title,
			EstimatedMinutes: t.EstimatedMinutes,
			Difficulty:       int(t.Difficulty),
			XP:               t.XP,
			CompletedAt:      t.CompletedAt,
		}
	}
	return PlanResponse{
		ID:           p.ID,
		Text:         p.RawText,
		Category:     p.Category,
		SlotMinutes:  p.SlotMinutes,
		Mood:         p.Mood,
		Tasks:        tasks,
		TotalMinutes: p.TotalMinutes,
		TotalXP:      p.TotalXP,
		FilePath:     p.FilePath,
		CreatedAt:    p.CreatedAt,
	}
}
