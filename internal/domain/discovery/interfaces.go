package discovery

import (
	"context"

	"github.com/rpggio/makerlog/internal/analysis"
	"github.com/rpggio/makerlog/internal/domain/catalog"
)

// Analyzer is the external analysis backend.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, contentType string) (*analysis.Result, error)
	ClarifyStep(ctx context.Context, req analysis.ClarifyRequest) (*analysis.Clarification, error)
	Leaderboard(ctx context.Context) ([]analysis.LeaderboardEntry, error)
	Achievements(ctx context.Context) ([]analysis.Achievement, error)
}

// Guides is the guide cache.
type Guides interface {
	Save(ctx context.Context, guide *catalog.Guide) (*catalog.Guide, error)
	Get(ctx context.Context, title string) (*catalog.Guide, error)
}
