package activity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/makerlog/internal/domain/progress"
)

const (
	defaultListLimit = 50
	recordTimeout    = 5 * time.Second
)

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// LogActivity logs an activity entry with the current timestamp if missing.
func (s *Service) LogActivity(ctx context.Context, entry *ActivityEntry) error {
	if entry == nil || !entry.ActivityType.Valid() || strings.TrimSpace(entry.ProjectTitle) == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// GetRecentActivity lists activity entries with filtering, newest first.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	if opts.ActivityType != nil && !opts.ActivityType.Valid() {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, opts)
}

// Recorder returns a store listener that journals every progress event.
// Journal failures are logged and never reach the store.
func (s *Service) Recorder() progress.Listener {
	return func(ev progress.Event) {
		entry := EntryFromEvent(ev)
		if entry == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.LogActivity(ctx, entry); err != nil {
			s.logger.Error("failed to journal progress event", "title", ev.Project.Title, "type", ev.Type, "error", err)
		}
	}
}

// EntryFromEvent converts a store event into a journal entry.
func EntryFromEvent(ev progress.Event) *ActivityEntry {
	entry := &ActivityEntry{
		ProjectTitle: ev.Project.Title,
		Progress:     ev.Project.Progress,
		CreatedAt:    ev.Project.LastUpdated,
	}
	switch ev.Type {
	case progress.EventProjectAdded:
		entry.ActivityType = TypeProjectAdded
		entry.Summary = fmt.Sprintf("started %q (%d steps)", ev.Project.Title, ev.Project.TotalSteps)
	case progress.EventStepCompleted:
		step := ev.Step
		entry.Step = &step
		if ev.Repeat {
			entry.ActivityType = TypeStepRepeated
			entry.Summary = fmt.Sprintf("step %d of %q marked again", step, ev.Project.Title)
		} else {
			entry.ActivityType = TypeStepCompleted
			entry.Summary = fmt.Sprintf("step %d of %q done, %.0f%% complete", step, ev.Project.Title, ev.Project.Progress)
		}
	default:
		return nil
	}
	return entry
}
