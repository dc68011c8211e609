// Package breakdown turns a free-text task description into an ordered list of
// focus-slot sized subtasks using fixed category templates and a generic
// phase-based fallback.
//
// Decompose is a pure function of its input apart from the difficulty of the
// middle phases on the generic path, which is drawn at random unless the
// caller passes WithSeed. It holds no shared mutable state and is safe for
// concurrent use.
package breakdown

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-ports/focusflow/internal/models"
)

// ErrInvalidInput is returned for a blank description or an unusable slot length.
var ErrInvalidInput = errors.New("invalid input")

const (
	// MaxTasks is the largest number of subtasks a breakdown can contain.
	MaxTasks = 6

	maxGenericChunks   = 5
	minGenericChunk    = 15
	defaultEffortMins  = 45
	seedStreamSelector = 0x9e3779b97f4a7c15
)

// Breakdown is the result of decomposing one description.
type Breakdown struct {
	Category     models.Category `json:"category"`
	SlotMinutes  int             `json:"slot_minutes"`
	Tasks        []models.Task   `json:"tasks"`
	TotalMinutes int             `json:"total_minutes"`
	TotalXP      int             `json:"total_xp"`
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

type options struct {
	rng *rand.Rand
}

// Option tunes a single Decompose call.
type Option func(*options)

// WithSeed makes the generic path's difficulty choices reproducible. Each call
// that applies the option gets its own source, so a shared Option value is
// still safe across goroutines.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewPCG(seed, seed^seedStreamSelector)) // #nosec G404 -- difficulty jitter, not security sensitive
	}
}

func (o *options) intN(n int) int {
	if o.rng != nil {
		return o.rng.IntN(n)
	}
	return rand.IntN(n) // #nosec G404 -- difficulty jitter, not security sensitive
}

// ---------------------------------------------------------------------------
// Decompose
// ---------------------------------------------------------------------------

// Decompose breaks in.RawText into 1 to MaxTasks subtasks sized to the focus slot.
// A non-positive slot falls back to models.DefaultSlotMinutes.
func Decompose(in models.TaskInput, opts ...Option) (Breakdown, error) {
	text := strings.TrimSpace(in.RawText)
	if text == "" {
		return Breakdown{}, fmt.Errorf("%w: task description is empty", ErrInvalidInput)
	}
	slot := NormalizeSlot(in.PreferredSlotMinutes)
	if slot <= 0 {
		return Breakdown{}, fmt.Errorf("%w: slot length must be positive, got %d", ErrInvalidInput, slot)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	lower := strings.ToLower(text)
	var (
		category models.Category
		tasks    []models.Task
	)
	if tpl, ok := matchTemplate(lower); ok {
		category = tpl.category
		tasks = tpl.render(slot)
	} else {
		category = models.CategoryGeneral
		tasks = genericBreakdown(lower, slot, o)
	}

	b := Breakdown{Category: category, SlotMinutes: slot, Tasks: tasks}
	for _, t := range tasks {
		b.TotalMinutes += t.EstimatedMinutes
		b.TotalXP += t.XP()
	}
	return b, nil
}

// DecomposeContext waits for delay before returning Decompose's result. The
// wait is a presentation affordance only; it never changes the output.
// It returns ctx.Err() if the context ends first.
func DecomposeContext(ctx context.Context, in models.TaskInput, delay time.Duration, opts ...Option) (Breakdown, error) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Breakdown{}, ctx.Err()
		case <-timer.C:
		}
	}
	return Decompose(in, opts...)
}

// NormalizeSlot returns slot, or models.DefaultSlotMinutes when slot is not positive.
func NormalizeSlot(slot int) int {
	if slot <= 0 {
		return models.DefaultSlotMinutes
	}
	return slot
}

// Detect returns the category text would match, or CategoryGeneral.
func Detect(text string) models.Category {
	if tpl, ok := matchTemplate(strings.ToLower(text)); ok {
		return tpl.category
	}
	return models.CategoryGeneral
}

// SuggestSlot maps a mood to a focus slot length. Unknown moods return 0 so
// the caller can fall through to its own default.
func SuggestSlot(mood string) int {
	switch mood {
	case "energized":
		return 30
	case "focused":
		return 45
	case "calm":
		return 25
	case "tired", "stressed":
		return 15
	}
	return 0
}

// ---------------------------------------------------------------------------
// Generic fallback
// ---------------------------------------------------------------------------

var phaseNames = []string{
	"Planning and preparation",
	"Initial execution",
	"Main work phase",
	"Review and refinement",
	"Final completion",
}

type effort struct {
	keyword string
	minutes int
}

// effortTable is scanned in order; the first keyword found wins.
var effortTable = []effort{
	{"quick", 15},
	{"email", 15},
	{"simple", 20},
	{"review", 30},
	{"plan", 45},
	{"write", 60},
	{"organize", 60},
	{"research", 90},
	{"build", 120},
}

// EstimateMinutes returns the total effort guessed for a description on the
// generic path.
func EstimateMinutes(text string) int {
	lower := strings.ToLower(text)
	for _, e := range effortTable {
		if strings.Contains(lower, e.keyword) {
			return e.minutes
		}
	}
	return defaultEffortMins
}

func genericBreakdown(lower string, slot int, o *options) []models.Task {
	total := EstimateMinutes(lower)

	chunks := total / slot
	if total%slot != 0 {
		chunks++
	}
	if chunks > maxGenericChunks {
		chunks = maxGenericChunks
	}
	if chunks < 1 {
		chunks = 1
	}
	chunkSize := max(minGenericChunk, total/chunks)
	minutes := min(chunkSize, slot)

	tasks := make([]models.Task, chunks)
	for i := range tasks {
		diff := models.Easy
		if i != 0 && i != chunks-1 {
			diff = models.Medium + models.Difficulty(o.intN(2))
		}
		tasks[i] = models.Task{
			Title:            phaseNames[i%len(phaseNames)],
			EstimatedMinutes: minutes,
			Difficulty:       diff,
		}
	}
	return tasks
}
