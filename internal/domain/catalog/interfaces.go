package catalog

import "context"

// Repository provides persistence for guides.
type Repository interface {
	Save(ctx context.Context, guide *Guide) error
	GetByTitle(ctx context.Context, title string) (*Guide, error)
	List(ctx context.Context) ([]GuideSummary, error)
	Search(ctx context.Context, query string, limit int) ([]GuideSummary, error)
}
