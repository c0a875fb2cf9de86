package catalog_test

import (
	"context"
	"testing"

	"github.com/rpggio/makerlog/internal/domain/catalog"
	"github.com/rpggio/makerlog/internal/repository"
	"github.com/rpggio/makerlog/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_SaveAssignsID(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.CatalogRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil)

	svc := catalog.NewService(repo, nil)
	guide, err := svc.Save(ctx, &catalog.Guide{Title: "  Birdhouse ", Steps: []string{"cut", "nail"}})
	require.NoError(t, err)
	require.NotEmpty(t, guide.ID)
	require.Equal(t, "Birdhouse", guide.Title)
	require.False(t, guide.CreatedAt.IsZero())
}

func TestCatalogService_SaveValidation(t *testing.T) {
	ctx := context.Background()

	svc := catalog.NewService(&mocks.CatalogRepository{}, nil)
	_, err := svc.Save(ctx, &catalog.Guide{Title: "", Steps: []string{"a"}})
	require.ErrorIs(t, err, catalog.ErrInvalidGuide)
	_, err = svc.Save(ctx, &catalog.Guide{Title: "No steps"})
	require.ErrorIs(t, err, catalog.ErrInvalidGuide)
	_, err = svc.Save(ctx, nil)
	require.ErrorIs(t, err, catalog.ErrInvalidGuide)
}

func TestCatalogService_GetNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.CatalogRepository{}
	repo.On("GetByTitle", ctx, "Missing").Return((*catalog.Guide)(nil), repository.ErrNotFound)

	svc := catalog.NewService(repo, nil)
	_, err := svc.Get(ctx, "Missing")
	require.ErrorIs(t, err, catalog.ErrGuideNotFound)
}

func TestCatalogService_Search(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.CatalogRepository{}
	repo.On("Search", ctx, "bottle", 50).Return([]catalog.GuideSummary{{Title: "Bottle Lamp"}}, nil)
	repo.On("Search", ctx, "lamp", 5).Return([]catalog.GuideSummary(nil), nil)

	svc := catalog.NewService(repo, nil)

	results, err := svc.Search(ctx, "bottle", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = svc.Search(ctx, "lamp", 5)
	require.NoError(t, err)
	require.Empty(t, results)

	_, err = svc.Search(ctx, "   ", 10)
	require.ErrorIs(t, err, catalog.ErrEmptyQuery)

	repo.AssertExpectations(t)
}

func TestGuide_Step(t *testing.T) {
	g := catalog.Guide{Steps: []string{"one", "two"}}

	text, ok := g.Step(2)
	require.True(t, ok)
	require.Equal(t, "two", text)

	_, ok = g.Step(0)
	require.False(t, ok)
	_, ok = g.Step(3)
	require.False(t, ok)
}
