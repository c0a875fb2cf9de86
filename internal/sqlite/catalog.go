package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rpggio/makerlog/internal/domain/catalog"
	"github.com/rpggio/makerlog/internal/repository"
)

// CatalogRepository implements catalog.Repository for SQLite
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Save inserts a guide or replaces the content of the guide with the same title.
// The stored ID and creation time of an existing guide are kept.
func (r *CatalogRepository) Save(ctx context.Context, guide *catalog.Guide) error {
	materials, err := marshalList(guide.Materials)
	if err != nil {
		return err
	}
	steps, err := marshalList(guide.Steps)
	if err != nil {
		return err
	}
	tips, err := marshalList(guide.Tips)
	if err != nil {
		return err
	}
	warnings := []byte("{}")
	if len(guide.Warnings) > 0 {
		if warnings, err = json.Marshal(guide.Warnings); err != nil {
			return fmt.Errorf("failed to encode warnings: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO guides (id, title, materials, difficulty, time_required, steps, tips, warnings, step_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			materials = excluded.materials,
			difficulty = excluded.difficulty,
			time_required = excluded.time_required,
			steps = excluded.steps,
			tips = excluded.tips,
			warnings = excluded.warnings,
			step_count = excluded.step_count
	`

	_, err = tx.ExecContext(ctx, upsert,
		guide.ID,
		guide.Title,
		materials,
		guide.Difficulty,
		guide.TimeRequired,
		steps,
		tips,
		string(warnings),
		len(guide.Steps),
		guide.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to save guide: %w", repository.ErrInvalidInput)
		}
		return fmt.Errorf("failed to save guide: %w", err)
	}

	// Report back the identity of the row that now holds the title.
	err = tx.QueryRowContext(ctx, `SELECT id, created_at FROM guides WHERE title = ?`, guide.Title).
		Scan(&guide.ID, &guide.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to read saved guide: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByTitle retrieves a guide by title
func (r *CatalogRepository) GetByTitle(ctx context.Context, title string) (*catalog.Guide, error) {
	query := `
		SELECT id, title, materials, difficulty, time_required, steps, tips, warnings, created_at
		FROM guides
		WHERE title = ?
	`

	var (
		guide                            catalog.Guide
		materials, steps, tips, warnings string
	)
	err := r.db.QueryRowContext(ctx, query, title).Scan(
		&guide.ID,
		&guide.Title,
		&materials,
		&guide.Difficulty,
		&guide.TimeRequired,
		&steps,
		&tips,
		&warnings,
		&guide.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guide: %w", err)
	}

	if err := json.Unmarshal([]byte(materials), &guide.Materials); err != nil {
		return nil, fmt.Errorf("failed to decode materials: %w", err)
	}
	if err := json.Unmarshal([]byte(steps), &guide.Steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}
	if err := json.Unmarshal([]byte(tips), &guide.Tips); err != nil {
		return nil, fmt.Errorf("failed to decode tips: %w", err)
	}
	if err := json.Unmarshal([]byte(warnings), &guide.Warnings); err != nil {
		return nil, fmt.Errorf("failed to decode warnings: %w", err)
	}
	if len(guide.Warnings) == 0 {
		guide.Warnings = nil
	}

	return &guide, nil
}

// List returns guide summaries, newest first
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.GuideSummary, error) {
	query := `
		SELECT id, title, difficulty, step_count, created_at
		FROM guides
		ORDER BY created_at DESC, title ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list guides: %w", err)
	}
	defer rows.Close()

	var summaries []catalog.GuideSummary
	for rows.Next() {
		var summary catalog.GuideSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.Title,
			&summary.Difficulty,
			&summary.StepCount,
			&summary.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan guide summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guide rows: %w", err)
	}

	return summaries, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}
