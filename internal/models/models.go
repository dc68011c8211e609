// Package models defines the core data types for task plans.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the effort tier of a subtask. Its integer value is the XP multiplier.
type Difficulty int

// Difficulty tiers.
const (
	Easy   Difficulty = 1
	Medium Difficulty = 2
	Hard   Difficulty = 3
)

// String returns the lowercase name of the tier.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// Valid reports whether d is one of the three tiers.
func (d Difficulty) Valid() bool { return d >= Easy && d <= Hard }

// ParseDifficulty accepts either the tier name or its integer value.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "1":
		return Easy, nil
	case "medium", "2":
		return Medium, nil
	case "hard", "3":
		return Hard, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
}

// Category names the template a task description matched.
type Category string

// Template categories in match priority order, followed by the fallback.
const (
	CategoryProject      Category = "project"
	CategoryStudy        Category = "study"
	CategoryPresentation Category = "presentation"
	CategoryCode         Category = "code"
	CategoryMeeting      Category = "meeting"
	CategoryGeneral      Category = "general"
)

// Categories lists every category in match priority order; general is last.
var Categories = []Category{
	CategoryProject,
	CategoryStudy,
	CategoryPresentation,
	CategoryCode,
	CategoryMeeting,
	CategoryGeneral,
}

// CategoryHeadings maps category keys to Markdown heading text.
var CategoryHeadings = map[Category]string{
	CategoryProject:      "Projects",
	CategoryStudy:        "Study",
	CategoryPresentation: "Presentations",
	CategoryCode:         "Code",
	CategoryMeeting:      "Meetings",
	CategoryGeneral:      "General",
}

// ParseCategory returns the category named s.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == strings.ToLower(strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// ValidMoods lists the accepted mood values.
var ValidMoods = []string{"energized", "focused", "calm", "tired", "stressed"}

// IsValidMood reports whether m is one of ValidMoods.
func IsValidMood(m string) bool {
	for _, v := range ValidMoods {
		if v == m {
			return true
		}
	}
	return false
}

// DefaultSlotMinutes is the focus slot used when the caller gives none.
const DefaultSlotMinutes = 25

// TaskInput is the caller-supplied description to break down.
type TaskInput struct {
	RawText              string
	PreferredSlotMinutes int // <= 0 means DefaultSlotMinutes
}

// Task is a single generated subtask. It carries no identity; callers attach
// IDs and timestamps when they persist it.
type Task struct {
	Title            string     `json:"title"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Difficulty       Difficulty `json:"difficulty"`
}

// XP returns the experience points the task is worth.
func (t Task) XP() int { return XP(t.EstimatedMinutes, t.Difficulty) }

// XP computes floor(minutes * difficulty / 5).
func XP(minutes int, d Difficulty) int {
	if minutes <= 0 {
		return 0
	}
	return minutes * int(d) / 5
}

// PlanTask is a persisted subtask belonging to a Plan.
type PlanTask struct {
	Task
	ID          string
	PlanID      string
	Position    int
	XP          int
	CompletedAt *time.Time
}

// Done reports whether the subtask has been completed.
func (t *PlanTask) Done() bool { return t.CompletedAt != nil }

// Plan is a stored breakdown of one task description.
type Plan struct {
	ID           string
	RawText      string
	Category     Category
	SlotMinutes  int
	Mood         string
	Tasks        []PlanTask
	TotalMinutes int
	TotalXP      int
	FilePath     string
	CreatedAt    time.Time
}

// MoodEntry is one logged mood check-in.
type MoodEntry struct {
	ID        string
	Mood      string
	Note      string
	CreatedAt time.Time
}

// Stats summarises progress across all plans.
type Stats struct {
	Plans          int
	TasksTotal     int
	TasksCompleted int
	TotalXP        int
	Level          int
	StreakDays     int
}

// LevelFor returns the level reached with xp points.
func LevelFor(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return 1 + xp/100
}

// CompleteResult is returned from Service.Complete.
type CompleteResult struct {
	TaskID    string
	Title     string
	XPAwarded int // 0 when the task was already complete
	Already   bool
}

// ReindexResult is returned from Service.Reindex.
type ReindexResult struct {
	Count int
	Dim   int
	Model string
}
