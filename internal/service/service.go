// Package service implements the focus Service orchestrator that wires together
// configuration, the decomposer, database, redaction, markdown, embeddings and search.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/go-ports/focusflow/internal/breakdown"
	"github.com/go-ports/focusflow/internal/config"
	"github.com/go-ports/focusflow/internal/db"
	"github.com/go-ports/focusflow/internal/embeddings"
	"github.com/go-ports/focusflow/internal/markdown"
	"github.com/go-ports/focusflow/internal/models"
	"github.com/go-ports/focusflow/internal/redaction"
	"github.com/go-ports/focusflow/internal/search"
)

// ErrNotFound is returned when a plan or subtask ID matches nothing.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput is the decomposer's sentinel, re-exported for callers that
// only import the service.
var ErrInvalidInput = breakdown.ErrInvalidInput

// Service orchestrates all plan operations.
type Service struct {
	Home     string
	VaultDir string
	Config   *config.FocusConfig

	database    *db.DB
	embProvider embeddings.Provider
	redactor    *redaction.Redactor
	vectorsOK   *bool
	mu          sync.Mutex
	journalMu   sync.Mutex // serialises read-modify-write of journal files
	now         func() time.Time
}

// PlanInput is a request to break down (and optionally store) a description.
type PlanInput struct {
	Text        string
	SlotMinutes int     // <= 0 means mood suggestion, then config default
	Mood        string  // optional; one of models.ValidMoods
	Seed        *uint64 // optional; reproducible generic difficulties
}

// New initialises a Service rooted at home.
// If home is empty it is resolved via config.GetHome.
func New(home string) (*Service, error) {
	if home == "" {
		home = config.GetHome()
	}

	vaultDir := filepath.Join(home, "vault")
	if err := os.MkdirAll(vaultDir, 0o755); err != nil {
		return nil, fmt.Errorf("service.New: create vault dir: %w", err)
	}

	cfg, err := config.Load(filepath.Join(home, "config.yaml"))
	if err != nil {
		return nil, fmt.Errorf("service.New: load config: %w", err)
	}

	database, err := db.Open(filepath.Join(home, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("service.New: open db: %w", err)
	}

	return &Service{
		Home:     home,
		VaultDir: vaultDir,
		Config:   cfg,
		database: database,
		now:      time.Now,
	}, nil
}

// Close releases all resources held by the service.
func (s *Service) Close() error {
	return s.database.Close()
}

// ---------------------------------------------------------------------------
// Lazy helpers
// ---------------------------------------------------------------------------

// embeddingProvider returns the Provider, lazily initialising it (thread-safe).
// A nil provider with nil error means embeddings are disabled.
func (s *Service) embeddingProvider() (embeddings.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embProvider != nil {
		return s.embProvider, nil
	}
	ep, err := embeddings.NewProvider(s.Config.Embedding)
	if err != nil {
		return nil, err
	}
	s.embProvider = ep
	return ep, nil
}

// getRedactor lazily loads .focusignore. A broken file is logged and the
// built-in patterns still apply.
func (s *Service) getRedactor() *redaction.Redactor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.redactor != nil {
		return s.redactor
	}
	r, err := redaction.Load(s.Home)
	if err != nil {
		slog.Warn("failed to load "+redaction.IgnoreFile, "err", err)
		r = redaction.New(nil)
	}
	s.redactor = r
	return r
}

// vectorsAvailable checks whether the vec table exists, caching the result.
func (s *Service) vectorsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vectorsOK != nil {
		return *s.vectorsOK
	}
	ok, err := s.database.HasVecTable()
	if err != nil {
		ok = false
	}
	s.vectorsOK = &ok
	return ok
}

func (s *Service) setVectorsOK(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectorsOK = &ok
}

// ensureVectors sets up the vec table for the embedding's dimension.
// Returns false on a dimension mismatch.
func (s *Service) ensureVectors(embedding []float32) bool {
	if err := s.database.EnsureVecTable(len(embedding)); err != nil {
		if errors.Is(err, db.ErrDimensionMismatch) {
			s.setVectorsOK(false)
		} else {
			slog.Warn("ensureVectors", "err", err)
		}
		return false
	}
	s.setVectorsOK(true)
	return true
}

// ---------------------------------------------------------------------------
// Breakdown / Plan
// ---------------------------------------------------------------------------

// ResolveSlot picks the slot length: explicit > mood suggestion > config default.
func (s *Service) ResolveSlot(explicit int, mood string) int {
	if explicit > 0 {
		return explicit
	}
	if m := breakdown.SuggestSlot(mood); m > 0 {
		return m
	}
	return breakdown.NormalizeSlot(s.Config.Focus.SlotMinutes)
}

// Breakdown decomposes in.Text without storing anything.
func (s *Service) Breakdown(ctx context.Context, in PlanInput) (breakdown.Breakdown, error) {
	if in.Mood != "" && !models.IsValidMood(in.Mood) {
		return breakdown.Breakdown{}, fmt.Errorf("%w: unknown mood %q (want one of %s)",
			ErrInvalidInput, in.Mood, strings.Join(models.ValidMoods, ", "))
	}
	var opts []breakdown.Option
	if in.Seed != nil {
		opts = append(opts, breakdown.WithSeed(*in.Seed))
	}
	task := models.TaskInput{RawText: in.Text, PreferredSlotMinutes: s.ResolveSlot(in.SlotMinutes, in.Mood)}
	return breakdown.DecomposeContext(ctx, task, s.Config.Focus.ProcessingDelay, opts...)
}

// Plan decomposes in.Text and stores the result:
// decompose → redact → db → markdown → embed.
func (s *Service) Plan(ctx context.Context, in PlanInput) (*models.Plan, error) {
	b, err := s.Breakdown(ctx, in)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Plan{
		ID:           uuid.NewString(),
		RawText:      s.getRedactor().Apply(strings.TrimSpace(in.Text)),
		Category:     b.Category,
		SlotMinutes:  b.SlotMinutes,
		Mood:         in.Mood,
		TotalMinutes: b.TotalMinutes,
		TotalXP:      b.TotalXP,
		CreatedAt:    now,
	}
	p.Tasks = make([]models.PlanTask, len(b.Tasks))
	for i, t := range b.Tasks {
		p.Tasks[i] = models.PlanTask{
			Task:     t,
			ID:       uuid.NewString(),
			PlanID:   p.ID,
			Position: i + 1,
			XP:       t.XP(),
		}
	}

	dateStr := now.Format(time.DateOnly)
	p.FilePath = filepath.Join(s.VaultDir, markdown.FileName(dateStr))

	rowid, err := s.database.InsertPlan(p)
	if err != nil {
		return nil, fmt.Errorf("Plan: insert plan: %w", err)
	}

	s.journalMu.Lock()
	_, err = markdown.WritePlan(s.VaultDir, p, dateStr)
	s.journalMu.Unlock()
	if err != nil {
		if _, derr := s.database.DeletePlan(p.ID); derr != nil {
			slog.Warn("Plan: roll back plan row", "id", p.ID, "err", derr)
		}
		return nil, fmt.Errorf("Plan: write markdown: %w", err)
	}

	s.embedPlan(ctx, rowid, p.RawText, string(p.Category), taskTitles(p.Tasks))
	return p, nil
}

// embedPlan stores the plan's vector. All failures are logged and skipped.
func (s *Service) embedPlan(ctx context.Context, rowid int64, rawText, category string, titles []string) {
	ep, err := s.embeddingProvider()
	if err != nil {
		slog.Warn("embedPlan: embedding provider", "err", err)
		return
	}
	if ep == nil {
		return
	}
	embedding, err := ep.Embed(ctx, embeddings.Document(rawText, category, titles))
	if err != nil {
		slog.Warn("embedPlan: embedding failed", "err", err)
		return
	}
	if !s.ensureVectors(embedding) {
		slog.Warn("embedPlan: vector dimension mismatch, run 'focus reindex' to rebuild")
		return
	}
	if err := s.database.InsertVector(rowid, embedding); err != nil {
		slog.Warn("embedPlan: insert vector", "err", err)
	}
}

func taskTitles(tasks []models.PlanTask) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

// GetPlan fetches a plan by ID or unique prefix.
func (s *Service) GetPlan(id string) (*models.Plan, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: plan ID is required", ErrInvalidInput)
	}
	p, _, found, err := s.database.GetPlan(id)
	if err != nil {
		return nil, lookupErr("plan", id, err)
	}
	if !found {
		return nil, fmt.Errorf("plan %q: %w", id, ErrNotFound)
	}
	return p, nil
}

// History lists plans newest first, optionally filtered by category.
func (s *Service) History(limit int, category string) ([]*models.Plan, error) {
	cat, err := categoryFilter(category)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	return s.database.ListPlans(limit, cat)
}

// CountPlans returns the number of stored plans in an optional category.
func (s *Service) CountPlans(category string) (int, error) {
	cat, err := categoryFilter(category)
	if err != nil {
		return 0, err
	}
	return s.database.CountPlans(cat)
}

// DeletePlan removes a plan and its subtasks by ID or unique prefix.
func (s *Service) DeletePlan(id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, fmt.Errorf("%w: plan ID is required", ErrInvalidInput)
	}
	ok, err := s.database.DeletePlan(id)
	if err != nil {
		return false, lookupErr("plan", id, err)
	}
	return ok, nil
}

// lookupErr reports an ambiguous ID prefix as invalid input.
func lookupErr(kind, id string, err error) error {
	if errors.Is(err, db.ErrAmbiguousID) {
		return fmt.Errorf("%w: %s ID %q matches more than one %s", ErrInvalidInput, kind, id, kind)
	}
	return err
}

// Prune removes plans older than olderThanDays, optionally in one category.
func (s *Service) Prune(olderThanDays int, category string) (int, error) {
	if olderThanDays < 0 {
		return 0, fmt.Errorf("%w: older-than days must not be negative", ErrInvalidInput)
	}
	cat, err := categoryFilter(category)
	if err != nil {
		return 0, err
	}
	before := s.now().UTC().AddDate(0, 0, -olderThanDays)
	return s.database.DeleteByFilter(cat, before)
}

func categoryFilter(category string) (string, error) {
	if category == "" {
		return "", nil
	}
	cat, ok := models.ParseCategory(category)
	if !ok {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}
	return string(cat), nil
}

// ---------------------------------------------------------------------------
// Progress
// ---------------------------------------------------------------------------

// Complete marks a subtask done and awards its XP. Completing the same task
// again awards nothing.
func (s *Service) Complete(taskID string) (*models.CompleteResult, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, fmt.Errorf("%w: task ID is required", ErrInvalidInput)
	}
	task, awarded, err := s.database.CompleteTask(taskID, s.now())
	if err != nil {
		return nil, lookupErr("task", taskID, err)
	}
	if task == nil {
		return nil, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}

	res := &models.CompleteResult{TaskID: task.ID, Title: task.Title, Already: !awarded}
	if !awarded {
		return res, nil
	}
	res.XPAwarded = task.XP

	// Tick the journal checkbox (non-fatal).
	if p, _, found, err := s.database.GetPlan(task.PlanID); err == nil && found && p.FilePath != "" {
		s.journalMu.Lock()
		_, err := markdown.CheckTask(p.FilePath, p.ID, task.Position)
		s.journalMu.Unlock()
		if err != nil {
			slog.Warn("Complete: update journal", "err", err)
		}
	}
	return res, nil
}

// Stats summarises progress across all plans.
func (s *Service) Stats() (*models.Stats, error) {
	plans, err := s.database.CountPlans("")
	if err != nil {
		return nil, fmt.Errorf("Stats: %w", err)
	}
	total, completed, xp, err := s.database.TaskTotals()
	if err != nil {
		return nil, fmt.Errorf("Stats: %w", err)
	}
	days, err := s.database.CompletionDays()
	if err != nil {
		return nil, fmt.Errorf("Stats: %w", err)
	}
	return &models.Stats{
		Plans:          plans,
		TasksTotal:     total,
		TasksCompleted: completed,
		TotalXP:        xp,
		Level:          models.LevelFor(xp),
		StreakDays:     streakDays(days, s.now().UTC()),
	}, nil
}

// streakDays counts consecutive completion days ending today or yesterday.
// days holds distinct YYYY-MM-DD dates, newest first.
func streakDays(days []string, today time.Time) int {
	if len(days) == 0 {
		return 0
	}
	cursor := today.Truncate(24 * time.Hour)
	if days[0] != cursor.Format(time.DateOnly) {
		cursor = cursor.AddDate(0, 0, -1)
		if days[0] != cursor.Format(time.DateOnly) {
			return 0
		}
	}
	streak := 0
	for _, d := range days {
		if d != cursor.Format(time.DateOnly) {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// LogMood records a mood check-in.
func (s *Service) LogMood(mood, note string) (*models.MoodEntry, error) {
	mood = strings.ToLower(strings.TrimSpace(mood))
	if !models.IsValidMood(mood) {
		return nil, fmt.Errorf("%w: unknown mood %q (want one of %s)",
			ErrInvalidInput, mood, strings.Join(models.ValidMoods, ", "))
	}
	m := &models.MoodEntry{
		ID:        uuid.NewString(),
		Mood:      mood,
		Note:      s.getRedactor().Apply(strings.TrimSpace(note)),
		CreatedAt: s.now().UTC(),
	}
	if err := s.database.InsertMood(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Moods lists mood check-ins newest first.
func (s *Service) Moods(limit int) ([]models.MoodEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.database.ListMoods(limit)
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

// UseSemantic reports whether vector search should be attempted under the
// configured search.semantic mode ("auto", "always", "never").
func (s *Service) UseSemantic(ctx context.Context) bool {
	switch s.Config.Search.Semantic {
	case "never":
		return false
	case "always":
		return true
	}
	// auto: for Ollama, only when the model is already loaded.
	switch strings.ToLower(s.Config.Embedding.Provider) {
	case "", "none":
		return false
	case "ollama":
		baseURL := s.Config.Embedding.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return embeddings.OllamaModelLoaded(ctx, s.Config.Embedding.Model, baseURL)
	}
	return true
}

// Search runs tiered FTS + vector search over plans, falling back to FTS-only
// when vectors are unavailable or useVectors is false.
//
//revive:disable:flag-parameter
func (s *Service) Search(ctx context.Context, query string, limit int, category string, useVectors bool) ([]search.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is empty", ErrInvalidInput)
	}
	cat, err := categoryFilter(category)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	if useVectors && s.vectorsAvailable() {
		ep, err := s.embeddingProvider()
		if err != nil {
			slog.Warn("Search: embedding provider error", "err", err)
			ep = nil
		}
		results, err := search.TieredSearch(ctx, s.database, ep, query, limit, 0, cat)
		if err == nil {
			return results, nil
		}
		if errors.Is(err, db.ErrDimensionMismatch) {
			s.setVectorsOK(false)
		} else {
			slog.Warn("Search: tiered search error", "err", err)
		}
	}

	return search.TieredSearch(ctx, s.database, nil, query, limit, 0, cat)
}

//revive:enable:flag-parameter

// ---------------------------------------------------------------------------
// Reindex
// ---------------------------------------------------------------------------

// Reindex rebuilds the vector table using the current embedding provider.
// progress is called with (current, total) after each plan; may be nil.
func (s *Service) Reindex(ctx context.Context, progress func(current, total int)) (*models.ReindexResult, error) {
	ep, err := s.embeddingProvider()
	if err != nil {
		return nil, fmt.Errorf("Reindex: embedding provider: %w", err)
	}
	if ep == nil {
		return nil, fmt.Errorf("Reindex: no embedding provider configured")
	}

	probe, err := ep.Embed(ctx, "dimension probe")
	if err != nil {
		return nil, fmt.Errorf("Reindex: probe embed: %w", err)
	}
	dim := len(probe)

	if err := s.database.DropVecTable(); err != nil {
		return nil, fmt.Errorf("Reindex: drop vec table: %w", err)
	}
	if err := s.database.SetEmbeddingDim(dim); err != nil {
		return nil, fmt.Errorf("Reindex: set embedding dim: %w", err)
	}
	if err := s.database.CreateVecTable(dim); err != nil {
		return nil, fmt.Errorf("Reindex: create vec table: %w", err)
	}

	plans, err := s.database.ListAllForReindex()
	if err != nil {
		return nil, fmt.Errorf("Reindex: list plans: %w", err)
	}
	total := len(plans)

	for i, p := range plans {
		rawText, _ := p["raw_text"].(string)
		category, _ := p["category"].(string)
		titles, _ := p["task_titles"].(string)
		embedding, err := ep.Embed(ctx, embeddings.Document(rawText, category, strings.Split(titles, "\n")))
		if err != nil {
			return nil, fmt.Errorf("Reindex: embed plan: %w", err)
		}
		if rowid, ok := p["rowid"].(int64); ok {
			if err := s.database.InsertVector(rowid, embedding); err != nil {
				return nil, fmt.Errorf("Reindex: insert vector: %w", err)
			}
		}
		if progress != nil {
			progress(i+1, total)
		}
	}

	s.setVectorsOK(true)
	return &models.ReindexResult{
		Count: total,
		Dim:   dim,
		Model: s.Config.Embedding.Model,
	}, nil
}
