// Package search ranks stored plans with FTS5 first and vectors when FTS is sparse.
package search

import (
	"context"
	"sort"

	"github.com/go-ports/focusflow/internal/embeddings"
)

// Default weights applied by MergeResults callers.
const (
	FTSWeight    = 0.3
	VectorWeight = 0.7
	defaultMin   = 3
)

// Store is the subset of the plan database search needs.
type Store interface {
	FTSSearch(query string, limit int, category string) ([]map[string]any, error)
	VectorSearch(embedding []float32, limit int, category string) ([]map[string]any, error)
}

// Result is a single plan hit with a combined relevance score in [0, 1].
type Result struct {
	ID           string  `json:"id"`
	Score        float64 `json:"score"`
	RawText      string  `json:"raw_text"`
	Category     string  `json:"category"`
	SlotMinutes  int     `json:"slot_minutes"`
	Mood         string  `json:"mood,omitempty"`
	TotalMinutes int     `json:"total_minutes"`
	TotalXP      int     `json:"total_xp"`
	CreatedAt    string  `json:"created_at"`
}

// MergeResults combines FTS and vector rows by plan ID, weighting each side's
// normalized score, and returns at most limit results best first.
func MergeResults(fts, vec []map[string]any, ftsWeight, vecWeight float64, limit int) []Result {
	normalizeRows(fts)
	normalizeRows(vec)

	combined := make(map[string]*Result, len(fts)+len(vec))
	for _, row := range fts {
		r := rowToResult(row)
		r.Score *= ftsWeight
		combined[r.ID] = &r
	}
	for _, row := range vec {
		r := rowToResult(row)
		if existing, ok := combined[r.ID]; ok {
			existing.Score += vecWeight * r.Score
			continue
		}
		r.Score *= vecWeight
		combined[r.ID] = &r
	}

	results := make([]Result, 0, len(combined))
	for _, r := range combined {
		results = append(results, *r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CreatedAt > results[j].CreatedAt
	})
	return results[:clamp(limit, len(results))]
}

// TieredSearch runs FTS first and only embeds the query when fewer than minFTS
// rows come back. minFTS <= 0 means 3. Embedding and vector failures fall back
// to the FTS rows.
func TieredSearch(
	ctx context.Context,
	store Store,
	ep embeddings.Provider,
	query string,
	limit, minFTS int,
	category string,
) ([]Result, error) {
	if minFTS <= 0 {
		minFTS = defaultMin
	}

	ftsRows, err := store.FTSSearch(query, limit*2, category)
	if err != nil {
		return nil, err
	}
	normalizeRows(ftsRows)
	ftsOnly := toResults(ftsRows[:clamp(limit, len(ftsRows))])

	if len(ftsRows) >= minFTS || ep == nil {
		return ftsOnly, nil
	}

	vec, err := ep.Embed(ctx, query)
	if err != nil {
		return ftsOnly, nil //nolint:nilerr // embedding failures degrade to FTS
	}
	vecRows, err := store.VectorSearch(vec, limit*2, category)
	if err != nil {
		return ftsOnly, nil //nolint:nilerr // vector failures degrade to FTS
	}
	return MergeResults(ftsRows, vecRows, FTSWeight, VectorWeight, limit), nil
}

// HybridSearch always runs both sides when ep != nil and surfaces their errors.
func HybridSearch(
	ctx context.Context,
	store Store,
	ep embeddings.Provider,
	query string,
	limit int,
	category string,
) ([]Result, error) {
	ftsRows, err := store.FTSSearch(query, limit*2, category)
	if err != nil {
		return nil, err
	}
	if ep == nil {
		normalizeRows(ftsRows)
		return toResults(ftsRows[:clamp(limit, len(ftsRows))]), nil
	}

	vec, err := ep.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	vecRows, err := store.VectorSearch(vec, limit*2, category)
	if err != nil {
		return nil, err
	}
	return MergeResults(ftsRows, vecRows, FTSWeight, VectorWeight, limit), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// normalizeRows divides each row's score by the maximum score, producing [0, 1].
func normalizeRows(rows []map[string]any) {
	if len(rows) == 0 {
		return
	}
	var maxScore float64
	for _, r := range rows {
		if s := asFloat(r["score"]); s > maxScore {
			maxScore = s
		}
	}
	if maxScore <= 0 {
		maxScore = 1.0
	}
	for _, r := range rows {
		r["score"] = asFloat(r["score"]) / maxScore
	}
}

func rowToResult(row map[string]any) Result {
	return Result{
		ID:           asString(row["id"]),
		Score:        asFloat(row["score"]),
		RawText:      asString(row["raw_text"]),
		Category:     asString(row["category"]),
		SlotMinutes:  asInt(row["slot_minutes"]),
		Mood:         asString(row["mood"]),
		TotalMinutes: asInt(row["total_minutes"]),
		TotalXP:      asInt(row["total_xp"]),
		CreatedAt:    asString(row["created_at"]),
	}
}

func toResults(rows []map[string]any) []Result {
	out := make([]Result, len(rows))
	for i, r := range rows {
		out[i] = rowToResult(r)
	}
	return out
}

func clamp(limit, n int) int {
	if limit <= 0 || limit > n {
		return n
	}
	return limit
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
