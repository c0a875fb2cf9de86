package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/makerlog/internal/analysis"
	"github.com/rpggio/makerlog/internal/domain/catalog"
	"github.com/rpggio/makerlog/internal/domain/progress"
)

// Service runs the capture -> guide -> progress flow. The progress store is
// only touched after a backend call has resolved.
type Service struct {
	analyzer Analyzer
	guides   Guides
	store    *progress.Store
	logger   *slog.Logger
}

// NewService creates a new discovery service.
func NewService(analyzer Analyzer, guides Guides, store *progress.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{analyzer: analyzer, guides: guides, store: store, logger: logger}
}

// Capture sends a photo for analysis and caches every returned guide.
func (s *Service) Capture(ctx context.Context, image []byte, contentType string) (*analysis.Result, error) {
	res, err := s.analyzer.Analyze(ctx, image, contentType)
	if err != nil {
		return nil, fmt.Errorf("analyzing image: %w", err)
	}

	for _, guide := range guidesFromResult(res) {
		if _, err := s.guides.Save(ctx, guide); err != nil {
			if errors.Is(err, catalog.ErrInvalidGuide) {
				s.logger.Warn("skipping unusable guide", "title", guide.Title, "steps", len(guide.Steps))
				continue
			}
			return nil, fmt.Errorf("caching guide %q: %w", guide.Title, err)
		}
	}

	s.logger.Info("capture analyzed", "titles", res.Titles())
	return res, nil
}

func guidesFromResult(res *analysis.Result) []*catalog.Guide {
	var out []*catalog.Guide
	if p := res.Project; p != nil {
		out = append(out, &catalog.Guide{
			Title:        p.Title,
			Materials:    p.Materials,
			Difficulty:   p.Difficulty,
			TimeRequired: p.TimeRequired,
			Steps:        p.Steps,
			Tips:         p.Tips,
			Warnings:     p.Warnings,
		})
	}
	for _, sg := range res.Suggestions {
		out = append(out, &catalog.Guide{
			Title:     sg.Title,
			Materials: sg.Materials,
			Steps:     sg.Steps,
		})
	}
	return out
}

// Start begins tracking the cached guide with the given title. Starting an
// already tracked project leaves it untouched.
func (s *Service) Start(ctx context.Context, title string) (progress.Project, bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return progress.Project{}, false, ErrInvalidInput
	}
	guide, err := s.guides.Get(ctx, title)
	if err != nil {
		return progress.Project{}, false, err
	}
	proj, added := s.store.AddProject(guide.Title, len(guide.Steps))
	return proj, added, nil
}

// CompleteStep marks a step done. Unknown titles are a no-op reported through
// found=false.
func (s *Service) CompleteStep(_ context.Context, title string, step int) (progress.Project, bool) {
	return s.store.MarkStepComplete(title, step)
}

// Clarify asks the backend to expand one step of a cached guide.
func (s *Service) Clarify(ctx context.Context, title string, step int) (*analysis.Clarification, error) {
	if strings.TrimSpace(title) == "" || step < 1 {
		return nil, ErrInvalidInput
	}
	guide, err := s.guides.Get(ctx, title)
	if err != nil {
		return nil, err
	}
	text, ok := guide.Step(step)
	if !ok {
		return nil, ErrStepNotFound
	}
	c, err := s.analyzer.ClarifyStep(ctx, analysis.ClarifyRequest{
		ProjectTitle: guide.Title,
		StepNumber:   step,
		StepContent:  text,
	})
	if err != nil {
		return nil, fmt.Errorf("clarifying step: %w", err)
	}
	return c, nil
}

// Leaderboard passes the backend leaderboard through.
func (s *Service) Leaderboard(ctx context.Context) ([]analysis.LeaderboardEntry, error) {
	return s.analyzer.Leaderboard(ctx)
}

// Achievements passes the backend achievements through.
func (s *Service) Achievements(ctx context.Context) ([]analysis.Achievement, error) {
	return s.analyzer.Achievements(ctx)
}
