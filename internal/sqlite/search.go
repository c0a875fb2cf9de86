package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpggio/makerlog/internal/domain/catalog"
)

// Search runs a full-text query over guide titles, materials and steps,
// best matches first. Every whitespace separated term must match.
func (r *CatalogRepository) Search(ctx context.Context, query string, limit int) ([]catalog.GuideSummary, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	stmt := `
		SELECT g.id, g.title, g.difficulty, g.step_count, g.created_at
		FROM guides_fts
		JOIN guides g ON g.rowid = guides_fts.rowid
		WHERE guides_fts MATCH ?
		ORDER BY bm25(guides_fts), g.title
	`
	args := []any{match}
	if limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search guides: %w", err)
	}
	defer rows.Close()

	var results []catalog.GuideSummary
	for rows.Next() {
		var s catalog.GuideSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Difficulty, &s.StepCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}
	return results, nil
}

// ftsQuery quotes each term so user input never reaches the FTS5 query
// syntax.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}
