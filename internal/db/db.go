// Package db manages the SQLite database with FTS5 and sqlite-vec extensions.
package db

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql

	"github.com/go-ports/focusflow/internal/models"
)

func init() { //nolint:gochecknoinits // registers sqlite-vec extension with go-sqlite3 before any DB connection opens
	vec.Auto()
}

// ErrDimensionMismatch is returned when a new embedding dimension differs from the one stored.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ErrAmbiguousID is returned when an ID prefix matches more than one row.
var ErrAmbiguousID = errors.New("ambiguous ID prefix")

// DB wraps a *sql.DB with the path it was opened from.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the SQLite database at path and initialises the schema.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("db.Open: %w", err)
	}
	d := &DB{db: sqldb, path: path}
	if err := d.createSchema(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("db.Open createSchema: %w", err)
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func (d *DB) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS plans (
			rowid         INTEGER PRIMARY KEY AUTOINCREMENT,
			id            TEXT UNIQUE NOT NULL,
			raw_text      TEXT NOT NULL,
			category      TEXT NOT NULL,
			slot_minutes  INTEGER NOT NULL,
			mood          TEXT,
			task_titles   TEXT,
			total_minutes INTEGER NOT NULL,
			total_xp      INTEGER NOT NULL,
			file_path     TEXT,
			created_at    TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS plan_tasks (
			id                TEXT PRIMARY KEY,
			plan_id           TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
			position          INTEGER NOT NULL,
			title             TEXT NOT NULL,
			estimated_minutes INTEGER NOT NULL,
			difficulty        INTEGER NOT NULL,
			xp                INTEGER NOT NULL,
			completed_at      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS plan_tasks_plan ON plan_tasks(plan_id, position)`,
		`CREATE TABLE IF NOT EXISTS moods (
			id         TEXT PRIMARY KEY,
			mood       TEXT NOT NULL,
			note       TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS plans_fts USING fts5(
			raw_text, category, task_titles, mood,
			content='plans', content_rowid='rowid',
			tokenize='porter unicode61'
		)`,
		`CREATE TRIGGER IF NOT EXISTS plans_ai AFTER INSERT ON plans BEGIN
			INSERT INTO plans_fts(rowid, raw_text, category, task_titles, mood)
			VALUES (new.rowid, new.raw_text, new.category, new.task_titles, new.mood);
		END`,
		`CREATE TRIGGER IF NOT EXISTS plans_au AFTER UPDATE ON plans BEGIN
			INSERT INTO plans_fts(plans_fts, rowid, raw_text, category, task_titles, mood)
			VALUES ('delete', old.rowid, old.raw_text, old.category, old.task_titles, old.mood);
			INSERT INTO plans_fts(rowid, raw_text, category, task_titles, mood)
			VALUES (new.rowid, new.raw_text, new.category, new.task_titles, new.mood);
		END`,
		`CREATE TRIGGER IF NOT EXISTS plans_ad AFTER DELETE ON plans BEGIN
			INSERT INTO plans_fts(plans_fts, rowid, raw_text, category, task_titles, mood)
			VALUES ('delete', old.rowid, old.raw_text, old.category, old.task_titles, old.mood);
		END`,
	}

	for _, s := range stmts {
		if _, err := d.db.Exec(s); err != nil {
			return fmt.Errorf("createSchema exec: %w\nSQL: %s", err, s)
		}
	}

	// Recreate vec table if dimension was previously persisted.
	if dim, ok, err := d.GetEmbeddingDim(); err == nil && ok {
		if err := d.createVecTable(dim); err != nil {
			return fmt.Errorf("createSchema createVecTable: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Vector table helpers
// ---------------------------------------------------------------------------

// CreateVecTable creates the vec0 virtual table with the given embedding dimension.
// It is safe to call when the table already exists (uses IF NOT EXISTS).
func (d *DB) CreateVecTable(dim int) error { return d.createVecTable(dim) }

func (d *DB) createVecTable(dim int) error {
	_, err := d.db.Exec(fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS plans_vec USING vec0(
			rowid INTEGER PRIMARY KEY,
			embedding float[%d]
		)`, dim,
	))
	return err
}

// HasVecTable returns true if the plans_vec table exists.
func (d *DB) HasVecTable() (bool, error) {
	var name string
	err := d.db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type='table' AND name='plans_vec'`,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// DropVecTable drops the plans_vec virtual table if it exists.
func (d *DB) DropVecTable() error {
	_, err := d.db.Exec("DROP TABLE IF EXISTS plans_vec")
	return err
}

// GetEmbeddingDim reads the stored embedding dimension from the meta table.
func (d *DB) GetEmbeddingDim() (int, bool, error) {
	val, ok, err := d.GetMeta("embedding_dim")
	if !ok || err != nil {
		return 0, false, err
	}
	dim, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}
	return dim, true, nil
}

// SetEmbeddingDim persists the embedding dimension in the meta table.
func (d *DB) SetEmbeddingDim(dim int) error {
	return d.SetMeta("embedding_dim", strconv.Itoa(dim))
}

// EnsureVecTable ensures the vector table exists with the given dimension.
// Returns ErrDimensionMismatch if the stored dimension differs.
func (d *DB) EnsureVecTable(dim int) error {
	stored, ok, err := d.GetEmbeddingDim()
	if err != nil {
		return err
	}
	if !ok {
		if err := d.SetEmbeddingDim(dim); err != nil {
			return err
		}
		return d.createVecTable(dim)
	}
	if stored != dim {
		return fmt.Errorf("%w: database has %d, provider returned %d. Run 'focus reindex' to rebuild",
			ErrDimensionMismatch, stored, dim)
	}
	return nil
}

// InsertVector stores an embedding vector for the given plan rowid.
// Silently skips if the vec table does not exist.
func (d *DB) InsertVector(rowid int64, embedding []float32) error {
	ok, err := d.HasVecTable()
	if err != nil || !ok {
		return err
	}
	_, err = d.db.Exec(
		`INSERT OR REPLACE INTO plans_vec (rowid, embedding) VALUES (?, ?)`,
		rowid, float32sToBytes(embedding),
	)
	return err
}

// ---------------------------------------------------------------------------
// Plans
// ---------------------------------------------------------------------------

// InsertPlan stores a plan and its subtasks in one transaction.
// Returns the rowid of the plan row.
func (d *DB) InsertPlan(p *models.Plan) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("InsertPlan: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	titles := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		titles[i] = t.Title
	}

	res, err := tx.Exec(`
		INSERT INTO plans (
			id, raw_text, category, slot_minutes, mood, task_titles,
			total_minutes, total_xp, file_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.RawText, string(p.Category), p.SlotMinutes, p.Mood,
		strings.Join(titles, "\n"), p.TotalMinutes, p.TotalXP, p.FilePath,
		p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("InsertPlan: %w", err)
	}
	rowid, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, t := range p.Tasks {
		if _, err := tx.Exec(`
			INSERT INTO plan_tasks (
				id, plan_id, position, title, estimated_minutes, difficulty, xp, completed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, p.ID, t.Position, t.Title, t.EstimatedMinutes, int(t.Difficulty), t.XP,
			formatNullTime(t.CompletedAt),
		); err != nil {
			return 0, fmt.Errorf("InsertPlan task %d: %w", t.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("InsertPlan: commit: %w", err)
	}
	return rowid, nil
}

const planColumns = `rowid, id, raw_text, category, slot_minutes, mood,
	total_minutes, total_xp, file_path, created_at`

// GetPlan fetches a plan and its subtasks by exact ID or unique prefix.
func (d *DB) GetPlan(id string) (*models.Plan, int64, bool, error) {
	fullID, found, err := d.resolveID("plans", id)
	if err != nil || !found {
		return nil, 0, false, err
	}
	row := d.db.QueryRow(`SELECT `+planColumns+` FROM plans WHERE id = ?`, fullID)
	p, rowid, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("GetPlan: %w", err)
	}
	if p.Tasks, err = d.listTasks(p.ID); err != nil {
		return nil, 0, false, err
	}
	return p, rowid, true, nil
}

// resolveID expands an exact ID or unique prefix to the full ID in table.
// A blank id matches nothing; % and _ are matched literally.
func (d *DB) resolveID(table, id string) (string, bool, error) {
	if strings.TrimSpace(id) == "" {
		return "", false, nil
	}
	rows, err := d.db.Query(
		`SELECT id FROM `+table+` WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`, // #nosec G202 -- table is one of two hardcoded names
		escapeLike(id)+"%",
	)
	if err != nil {
		return "", false, fmt.Errorf("resolveID: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return "", false, fmt.Errorf("resolveID: scan: %w", err)
		}
		ids = append(ids, v)
	}
	if err := rows.Err(); err != nil {
		return "", false, fmt.Errorf("resolveID: %w", err)
	}
	switch {
	case len(ids) == 0:
		return "", false, nil
	case len(ids) > 1 && ids[0] != id:
		return "", false, fmt.Errorf("%w: %q", ErrAmbiguousID, id)
	}
	return ids[0], true, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// ListPlans returns plans newest first, optionally filtered by category.
func (d *DB) ListPlans(limit int, category string) ([]*models.Plan, error) {
	q := `SELECT ` + planColumns + ` FROM plans`
	var params []any
	if category != "" {
		q += ` WHERE category = ?`
		params = append(params, category)
	}
	q += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	params = append(params, limit)

	rows, err := d.db.Query(q, params...)
	if err != nil {
		return nil, fmt.Errorf("ListPlans: %w", err)
	}
	var plans []*models.Plan
	for rows.Next() {
		p, _, err := scanPlan(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("ListPlans: scan: %w", err)
		}
		plans = append(plans, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListPlans: rows: %w", err)
	}

	for _, p := range plans {
		if p.Tasks, err = d.listTasks(p.ID); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

// CountPlans returns the number of plans matching an optional category.
func (d *DB) CountPlans(category string) (int, error) {
	q := "SELECT COUNT(*) FROM plans"
	var params []any
	if category != "" {
		q += " WHERE category = ?"
		params = append(params, category)
	}
	var n int
	err := d.db.QueryRow(q, params...).Scan(&n)
	return n, err
}

// DeletePlan deletes a plan, its subtasks and its vector by exact ID or
// unique prefix. Returns true if a record was found and deleted.
func (d *DB) DeletePlan(id string) (bool, error) {
	fullID, found, err := d.resolveID("plans", id)
	if err != nil || !found {
		return false, err
	}
	var rowid int64
	err = d.db.QueryRow(`SELECT rowid FROM plans WHERE id = ?`, fullID).Scan(&rowid)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := d.deletePlanRow(fullID, rowid); err != nil {
		return false, fmt.Errorf("DeletePlan: %w", err)
	}
	return true, nil
}

func (d *DB) deletePlanRow(id string, rowid int64) error {
	if _, err := d.db.Exec(`DELETE FROM plan_tasks WHERE plan_id = ?`, id); err != nil {
		return err
	}
	// Clean up vector index before deleting the plan row (rowid is needed).
	if _, err := d.db.Exec(`DELETE FROM plans_vec WHERE rowid = ?`, rowid); err != nil {
		// Non-fatal: vec table may not exist yet.
		slog.Debug("deletePlanRow: vec cleanup skipped", "err", err)
	}
	_, err := d.db.Exec(`DELETE FROM plans WHERE id = ?`, id)
	return err
}

// ListAllForReindex returns all plans with fields needed for re-embedding.
func (d *DB) ListAllForReindex() ([]map[string]any, error) {
	rows, err := d.db.Query(
		`SELECT rowid, raw_text, category, task_titles FROM plans ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// ---------------------------------------------------------------------------
// Subtasks
// ---------------------------------------------------------------------------

func (d *DB) listTasks(planID string) ([]models.PlanTask, error) {
	rows, err := d.db.Query(`
		SELECT id, plan_id, position, title, estimated_minutes, difficulty, xp, completed_at
		FROM plan_tasks WHERE plan_id = ? ORDER BY position`, planID)
	if err != nil {
		return nil, fmt.Errorf("listTasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.PlanTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("listTasks: scan: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// GetTask fetches a subtask by exact ID or unique prefix.
func (d *DB) GetTask(id string) (*models.PlanTask, bool, error) {
	fullID, found, err := d.resolveID("plan_tasks", id)
	if err != nil || !found {
		return nil, false, err
	}
	row := d.db.QueryRow(`
		SELECT id, plan_id, position, title, estimated_minutes, difficulty, xp, completed_at
		FROM plan_tasks WHERE id = ?`, fullID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("GetTask: %w", err)
	}
	return t, true, nil
}

// CompleteTask marks a subtask (exact ID or unique prefix) complete at `at`.
// awarded is false when the task was already complete; the stored completion
// time is left untouched in that case. A nil task means no match.
func (d *DB) CompleteTask(id string, at time.Time) (task *models.PlanTask, awarded bool, err error) {
	t, found, err := d.GetTask(id)
	if err != nil || !found {
		return nil, false, err
	}

	res, err := d.db.Exec(
		`UPDATE plan_tasks SET completed_at = ? WHERE id = ? AND completed_at IS NULL`,
		at.UTC().Format(time.RFC3339), t.ID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("CompleteTask: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	t, _, err = d.GetTask(t.ID)
	if err != nil {
		return nil, false, err
	}
	return t, n == 1, nil
}

// ---------------------------------------------------------------------------
// Progress
// ---------------------------------------------------------------------------

// TaskTotals returns the number of subtasks, how many are complete, and the XP
// earned by the completed ones.
func (d *DB) TaskTotals() (total, completed, xp int, err error) {
	err = d.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN completed_at IS NOT NULL THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN completed_at IS NOT NULL THEN xp ELSE 0 END), 0)
		FROM plan_tasks`,
	).Scan(&total, &completed, &xp)
	return total, completed, xp, err
}

// CompletionDays returns the distinct UTC dates (YYYY-MM-DD) on which at least
// one subtask was completed, newest first.
func (d *DB) CompletionDays() ([]string, error) {
	rows, err := d.db.Query(`
		SELECT DISTINCT substr(completed_at, 1, 10) AS day
		FROM plan_tasks WHERE completed_at IS NOT NULL
		ORDER BY day DESC`)
	if err != nil {
		return nil, fmt.Errorf("CompletionDays: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// ---------------------------------------------------------------------------
// Moods
// ---------------------------------------------------------------------------

// InsertMood stores a mood check-in.
func (d *DB) InsertMood(m *models.MoodEntry) error {
	_, err := d.db.Exec(
		`INSERT INTO moods (id, mood, note, created_at) VALUES (?, ?, ?, ?)`,
		m.ID, m.Mood, m.Note, m.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("InsertMood: %w", err)
	}
	return nil
}

// ListMoods returns mood check-ins newest first.
func (d *DB) ListMoods(limit int) ([]models.MoodEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, mood, note, created_at FROM moods ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListMoods: %w", err)
	}
	defer rows.Close()

	var out []models.MoodEntry
	for rows.Next() {
		var (
			m       models.MoodEntry
			note    sql.NullString
			created string
		)
		if err := rows.Scan(&m.ID, &m.Mood, &note, &created); err != nil {
			return nil, err
		}
		m.Note = note.String
		m.CreatedAt = parseTime(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

// FTSSearch performs a BM25 full-text search over plans.
func (d *DB) FTSSearch(query string, limit int, category string) ([]map[string]any, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	// Build "term1"* OR "term2"* FTS5 query.
	terms := strings.Fields(query)
	ftsParts := make([]string, len(terms))
	for i, t := range terms {
		ftsParts[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"*`
	}
	params := []any{strings.Join(ftsParts, " OR ")}

	q := `
		SELECT p.id, p.raw_text, p.category, p.slot_minutes, p.mood, p.total_minutes,
		       p.total_xp, p.created_at, -fts.rank AS score
		FROM plans_fts fts
		JOIN plans p ON p.rowid = fts.rowid
		WHERE fts.plans_fts MATCH ?`
	if category != "" {
		q += " AND p.category = ?"
		params = append(params, category)
	}
	q += "\n\t\tORDER BY fts.rank\n\t\tLIMIT ?"
	params = append(params, limit)

	rows, err := d.db.Query(q, params...)
	if err != nil {
		return nil, fmt.Errorf("FTSSearch: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// VectorSearch performs approximate nearest-neighbour search using sqlite-vec.
func (d *DB) VectorSearch(queryEmbedding []float32, limit int, category string) ([]map[string]any, error) {
	ok, err := d.HasVecTable()
	if err != nil || !ok {
		return nil, err
	}

	rows, err := d.db.Query(`
		SELECT p.id, p.raw_text, p.category, p.slot_minutes, p.mood, p.total_minutes,
		       p.total_xp, p.created_at, v.distance
		FROM plans_vec v
		JOIN plans p ON p.rowid = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance`,
		float32sToBytes(queryEmbedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("VectorSearch: %w", err)
	}
	defer rows.Close()

	all, err := scanRows(rows)
	if err != nil {
		return nil, err
	}

	// Convert distance to score and post-filter by category.
	results := make([]map[string]any, 0, len(all))
	for _, r := range all {
		if category != "" {
			if c, _ := r["category"].(string); c != category {
				continue
			}
		}
		if dist, ok := r["distance"].(float64); ok {
			r["score"] = 1.0 - dist
			delete(r, "distance")
		}
		results = append(results, r)
	}
	return results, nil
}

// ---------------------------------------------------------------------------
// Meta
// ---------------------------------------------------------------------------

// GetMeta returns the value for key, or ("", false, nil) if not set.
func (d *DB) GetMeta(key string) (string, bool, error) {
	var val string
	err := d.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetMeta upserts a key-value pair in the meta table.
func (d *DB) SetMeta(key, value string) error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value,
	)
	return err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(s scanner) (*models.Plan, int64, error) {
	var (
		p        models.Plan
		rowid    int64
		category string
		mood     sql.NullString
		filePath sql.NullString
		created  string
	)
	if err := s.Scan(
		&rowid, &p.ID, &p.RawText, &category, &p.SlotMinutes, &mood,
		&p.TotalMinutes, &p.TotalXP, &filePath, &created,
	); err != nil {
		return nil, 0, err
	}
	p.Category = models.Category(category)
	p.Mood = mood.String
	p.FilePath = filePath.String
	p.CreatedAt = parseTime(created)
	return &p, rowid, nil
}

func scanTask(s scanner) (*models.PlanTask, error) {
	var (
		t         models.PlanTask
		diff      int
		completed sql.NullString
	)
	if err := s.Scan(
		&t.ID, &t.PlanID, &t.Position, &t.Title, &t.EstimatedMinutes, &diff, &t.XP, &completed,
	); err != nil {
		return nil, err
	}
	t.Difficulty = models.Difficulty(diff)
	if completed.Valid && completed.String != "" {
		at := parseTime(completed.String)
		t.CompletedAt = &at
	}
	return &t, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// float32sToBytes encodes a []float32 as little-endian bytes (sqlite-vec wire format).
func float32sToBytes(floats []float32) []byte {
	b := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

// scanRows reads all rows
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(cols))
		for i, col := range cols {
			// Convert []byte to string for TEXT columns.
			if b, ok := vals[i].([]byte); ok {
				m[col] = string(b)
			} else {
				m[col] = vals[i]
			}
		}
		results = append(results, m)
	}
	return results, rows.Err()
}
