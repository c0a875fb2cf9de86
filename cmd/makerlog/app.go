package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/makerlog/internal/analysis"
	"github.com/rpggio/makerlog/internal/config"
	"github.com/rpggio/makerlog/internal/domain/activity"
	"github.com/rpggio/makerlog/internal/domain/catalog"
	"github.com/rpggio/makerlog/internal/domain/discovery"
	"github.com/rpggio/makerlog/internal/domain/progress"
	"github.com/rpggio/makerlog/internal/mcp"
	"github.com/rpggio/makerlog/internal/metrics"
	"github.com/rpggio/makerlog/internal/sqlite"
	"github.com/rpggio/makerlog/internal/transport"
)

// app holds the wired services shared by every transport.
type app struct {
	db        *sqlite.DB
	store     *progress.Store
	guides    *catalog.Service
	activity  *activity.Service
	discovery *discovery.Service
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	m := metrics.New()
	client, err := analysis.NewClient(analysis.Config{
		BaseURL:    cfg.Analysis.BaseURL,
		Timeout:    cfg.Analysis.Timeout,
		RateLimit:  cfg.Analysis.RateLimit,
		Burst:      cfg.Analysis.Burst,
		MaxRetries: cfg.Analysis.MaxRetries,
	}, logger, m.ObserveAnalysis)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := progress.NewStore(progress.Options{Logger: logger})
	guides := catalog.NewService(sqlite.NewCatalogRepository(db), logger)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)

	store.Subscribe(activitySvc.Recorder())
	store.Subscribe(m.StoreListener())

	return &app{
		db:        db,
		store:     store,
		guides:    guides,
		activity:  activitySvc,
		discovery: discovery.NewService(client, guides, store, logger),
		metrics:   m,
		logger:    logger,
	}, nil
}

func (a *app) mcpServer(cfg config.Config) *sdkmcp.Server {
	token := ""
	if cfg.Auth.Enabled {
		token = cfg.Auth.Token
	}
	return mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects:  a.store,
			Discovery: a.discovery,
			Guides:    a.guides,
			Activity:  a.activity,
		},
		AuthToken:     token,
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        a.logger,
	})
}

func (a *app) router(cfg config.Config, mcpHandler http.Handler) http.Handler {
	opts := transport.Options{
		Logger:         a.logger,
		ObserveRequest: a.metrics.ObserveRequest,
		Metrics:        a.metrics.Handler(),
		MCP:            mcpHandler,
	}
	if cfg.Auth.Enabled {
		opts.AuthToken = cfg.Auth.Token
	}
	return transport.NewServer(transport.Services{
		Discovery: a.discovery,
		Projects:  a.store,
		Guides:    a.guides,
		Activity:  a.activity,
	}, opts)
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("closing database", "error", err)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
