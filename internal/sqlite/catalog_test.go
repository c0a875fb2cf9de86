package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/makerlog/internal/domain/catalog"
	"github.com/rpggio/makerlog/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepository_SaveGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	guide := &catalog.Guide{
		ID:           "g1",
		Title:        "Bottle Planter",
		Materials:    []string{"bottle", "soil"},
		Difficulty:   "Easy",
		TimeRequired: "30 minutes",
		Steps:        []string{"cut", "fill", "plant"},
		Tips:         []string{"use gloves"},
		Warnings:     map[string]string{"1": "sharp edges"},
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Save(ctx, guide))

	got, err := repo.GetByTitle(ctx, "Bottle Planter")
	require.NoError(t, err)
	require.Equal(t, "g1", got.ID)
	require.Equal(t, guide.Materials, got.Materials)
	require.Equal(t, guide.Steps, got.Steps)
	require.Equal(t, guide.Tips, got.Tips)
	require.Equal(t, guide.Warnings, got.Warnings)
	require.Equal(t, "Easy", got.Difficulty)
	require.Equal(t, "30 minutes", got.TimeRequired)
	require.WithinDuration(t, guide.CreatedAt, got.CreatedAt, time.Second)
}

func TestCatalogRepository_GetNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCatalogRepository(db)

	_, err := repo.GetByTitle(context.Background(), "nope")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestCatalogRepository_SaveReplacesContentKeepsID(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	first := &catalog.Guide{ID: "g1", Title: "Lamp", Steps: []string{"a"}, CreatedAt: time.Now()}
	require.NoError(t, repo.Save(ctx, first))

	second := &catalog.Guide{ID: "g2", Title: "Lamp", Steps: []string{"a", "b", "c"}, Difficulty: "Hard", CreatedAt: time.Now()}
	require.NoError(t, repo.Save(ctx, second))
	require.Equal(t, "g1", second.ID)

	got, err := repo.GetByTitle(ctx, "Lamp")
	require.NoError(t, err)
	require.Equal(t, "g1", got.ID)
	require.Len(t, got.Steps, 3)
	require.Equal(t, "Hard", got.Difficulty)
	require.Empty(t, got.Tips)
	require.Nil(t, got.Warnings)

	summaries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, 3, summaries[0].StepCount)
}

func TestCatalogRepository_List(t *testing.T) {
	db := NewTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, &catalog.Guide{ID: "g1", Title: "Older", Steps: []string{"a"}, CreatedAt: base}))
	require.NoError(t, repo.Save(ctx, &catalog.Guide{ID: "g2", Title: "Newer", Steps: []string{"a", "b"}, CreatedAt: base.Add(time.Hour)}))

	summaries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "Newer", summaries[0].Title)
	require.Equal(t, 2, summaries[0].StepCount)
	require.Equal(t, "Older", summaries[1].Title)
}
