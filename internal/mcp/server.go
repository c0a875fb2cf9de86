package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/makerlog/internal/domain/activity"
	"github.com/rpggio/makerlog/internal/domain/catalog"
	"github.com/rpggio/makerlog/internal/domain/progress"
)

// ProjectStore defines the progress operations needed by MCP.
type ProjectStore interface {
	AddProject(title string, totalSteps int) (progress.Project, bool)
	ListProjects() []progress.Project
	GetProject(title string) (progress.Project, bool)
}

// DiscoveryService defines the guide-driven flow needed by MCP.
type DiscoveryService interface {
	Start(ctx context.Context, title string) (progress.Project, bool, error)
	CompleteStep(ctx context.Context, title string, step int) (progress.Project, bool)
}

// GuideService defines catalog reads needed by MCP.
type GuideService interface {
	List(ctx context.Context) ([]catalog.GuideSummary, error)
	Search(ctx context.Context, query string, limit int) ([]catalog.GuideSummary, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects  ProjectStore
	Discovery DiscoveryService
	Guides    GuideService
	Activity  ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	AuthToken     string
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "makerlog",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Stdio is a local pipe; only HTTP sessions carry a bearer token.
	if cfg.TransportMode != "stdio" && cfg.AuthToken != "" {
		server.AddReceivingMiddleware(authMiddleware(cfg.AuthToken))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
