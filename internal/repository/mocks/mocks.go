package mocks

import (
	"context"

	"github.com/rpggio/makerlog/internal/analysis"
	"github.com/rpggio/makerlog/internal/domain/activity"
	"github.com/rpggio/makerlog/internal/domain/catalog"
	"github.com/stretchr/testify/mock"
)

// CatalogRepository is a mock for catalog.Repository.
type CatalogRepository struct {
	mock.Mock
}

func (m *CatalogRepository) Save(ctx context.Context, guide *catalog.Guide) error {
	args := m.Called(ctx, guide)
	return args.Error(0)
}

func (m *CatalogRepository) GetByTitle(ctx context.Context, title string) (*catalog.Guide, error) {
	args := m.Called(ctx, title)
	if guide, ok := args.Get(0).(*catalog.Guide); ok {
		return guide, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogRepository) List(ctx context.Context) ([]catalog.GuideSummary, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]catalog.GuideSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogRepository) Search(ctx context.Context, query string, limit int) ([]catalog.GuideSummary, error) {
	args := m.Called(ctx, query, limit)
	if list, ok := args.Get(0).([]catalog.GuideSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Analyzer is a mock for the analysis backend client.
type Analyzer struct {
	mock.Mock
}

func (m *Analyzer) Analyze(ctx context.Context, image []byte, contentType string) (*analysis.Result, error) {
	args := m.Called(ctx, image, contentType)
	if res, ok := args.Get(0).(*analysis.Result); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Analyzer) ClarifyStep(ctx context.Context, req analysis.ClarifyRequest) (*analysis.Clarification, error) {
	args := m.Called(ctx, req)
	if c, ok := args.Get(0).(*analysis.Clarification); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Analyzer) Leaderboard(ctx context.Context) ([]analysis.LeaderboardEntry, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]analysis.LeaderboardEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Analyzer) Achievements(ctx context.Context) ([]analysis.Achievement, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]analysis.Achievement); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
