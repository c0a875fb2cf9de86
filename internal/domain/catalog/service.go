package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/makerlog/internal/repository"
)

const maxSearchLimit = 50

// Service handles guide caching.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new catalog service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Save stores a guide, replacing any guide cached under the same title.
func (s *Service) Save(ctx context.Context, guide *Guide) (*Guide, error) {
	if guide == nil {
		return nil, ErrInvalidGuide
	}
	guide.Title = strings.TrimSpace(guide.Title)
	if guide.Title == "" || len(guide.Steps) == 0 {
		return nil, ErrInvalidGuide
	}
	if strings.TrimSpace(guide.ID) == "" {
		guide.ID = uuid.NewString()
	}
	if guide.CreatedAt.IsZero() {
		guide.CreatedAt = time.Now()
	}

	if err := s.repo.Save(ctx, guide); err != nil {
		return nil, fmt.Errorf("saving guide: %w", err)
	}
	s.logger.Debug("guide cached", "title", guide.Title, "steps", len(guide.Steps))
	return guide, nil
}

// Get fetches a guide by title.
func (s *Service) Get(ctx context.Context, title string) (*Guide, error) {
	guide, err := s.repo.GetByTitle(ctx, strings.TrimSpace(title))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGuideNotFound
		}
		return nil, fmt.Errorf("getting guide: %w", err)
	}
	return guide, nil
}

// List returns guide summaries.
func (s *Service) List(ctx context.Context) ([]GuideSummary, error) {
	return s.repo.List(ctx)
}

// Search finds guides whose title, materials or steps contain every term of
// query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]GuideSummary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	results, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching guides: %w", err)
	}
	return results, nil
}
