package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	for _, table := range []string{"guides", "activity_log"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// Re-running is harmless
	require.NoError(t, db.RunMigrations())
}

// TestActivityTypeConstraint verifies unknown activity types are rejected
func TestActivityTypeConstraint(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO activity_log (project_title, activity_type, summary) VALUES (?, ?, ?)`,
		"Birdhouse", "project_added", "ok")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO activity_log (project_title, activity_type, summary) VALUES (?, ?, ?)`,
		"Birdhouse", "project_deleted", "bad")
	require.Error(t, err, "should fail with invalid activity type")
}

// TestGuideTitleUnique verifies one guide row per title
func TestGuideTitleUnique(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO guides (id, title, step_count) VALUES (?, ?, ?)`, "g1", "Lamp", 2)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO guides (id, title, step_count) VALUES (?, ?, ?)`, "g2", "Lamp", 3)
	require.Error(t, err)
	require.True(t, isUniqueViolation(err))
}
