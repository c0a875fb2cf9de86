package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rpggio/makerlog/internal/analysis"
	"github.com/rpggio/makerlog/internal/domain/activity"
	"github.com/rpggio/makerlog/internal/domain/catalog"
	"github.com/rpggio/makerlog/internal/domain/progress"
)

const maxUploadBytes = 20 << 20

// Discovery is the capture and tracking flow.
type Discovery interface {
	Capture(ctx context.Context, image []byte, contentType string) (*analysis.Result, error)
	Start(ctx context.Context, title string) (progress.Project, bool, error)
	CompleteStep(ctx context.Context, title string, step int) (progress.Project, bool)
	Clarify(ctx context.Context, title string, step int) (*analysis.Clarification, error)
	Leaderboard(ctx context.Context) ([]analysis.LeaderboardEntry, error)
	Achievements(ctx context.Context) ([]analysis.Achievement, error)
}

// Projects reads and seeds the progress store.
type Projects interface {
	AddProject(title string, totalSteps int) (progress.Project, bool)
	ListProjects() []progress.Project
	GetProject(title string) (progress.Project, bool)
}

// Guides reads the guide catalog.
type Guides interface {
	List(ctx context.Context) ([]catalog.GuideSummary, error)
	Search(ctx context.Context, query string, limit int) ([]catalog.GuideSummary, error)
	Get(ctx context.Context, title string) (*catalog.Guide, error)
}

// Activity reads the activity journal.
type Activity interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services groups the handlers' dependencies.
type Services struct {
	Discovery Discovery
	Projects  Projects
	Guides    Guides
	Activity  Activity
}

// Options configures the router.
type Options struct {
	// AuthToken enables bearer auth on the REST routes. /health, /metrics and
	// /mcp are left open; the MCP server checks tokens itself.
	AuthToken      string
	Logger         *slog.Logger
	ObserveRequest RequestObserver
	Metrics        http.Handler
	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Server wires HTTP handlers.
type Server struct {
	svc    Services
	logger *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(svc Services, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(accessLog(logger, opts.ObserveRequest))
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		if opts.AuthToken != "" {
			r.Use(AuthMiddleware(opts.AuthToken))
		}

		r.Post("/analyze", srv.handleAnalyze)

		r.Get("/guides", srv.handleListGuides)
		r.Get("/guides/{title}", srv.handleGetGuide)

		r.Get("/projects", srv.handleListProjects)
		r.Post("/projects", srv.handleAddProject)
		r.Post("/projects/start", srv.handleStartProject)
		r.Get("/projects/{title}", srv.handleGetProject)
		r.Post("/projects/{title}/steps", srv.handleCompleteStep)
		r.Post("/projects/{title}/steps/{step}/clarify", srv.handleClarify)

		r.Get("/activity", srv.handleActivity)
		r.Get("/leaderboard", srv.handleLeaderboard)
		r.Get("/achievements", srv.handleAchievements)
	})

	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "expected multipart form with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "missing file field")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "read upload: "+err.Error())
		return
	}

	res, err := s.svc.Discovery.Capture(r.Context(), image, header.Header.Get("Content-Type"))
	if err != nil {
		s.logger.Warn("capture failed", "error", err)
		writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleListGuides lists the catalog, or searches it when q is given.
func (s *Server) handleListGuides(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		guides []catalog.GuideSummary
		err    error
	)
	if query := q.Get("q"); query != "" {
		limit, lerr := intQuery(q, "limit")
		if lerr != nil {
			writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, lerr.Error())
			return
		}
		guides, err = s.svc.Guides.Search(r.Context(), query, limit)
	} else {
		guides, err = s.svc.Guides.List(r.Context())
	}
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if guides == nil {
		guides = []catalog.GuideSummary{}
	}
	writeJSON(w, http.StatusOK, guideListResponse{Guides: guides})
}

func (s *Server) handleGetGuide(w http.ResponseWriter, r *http.Request) {
	guide, err := s.svc.Guides.Get(r.Context(), titleParam(r))
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, guide)
}

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, projectListResponse{Projects: s.svc.Projects.ListProjects()})
}

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) {
	var req addProjectRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "title is required")
		return
	}
	proj, added := s.svc.Projects.AddProject(title, req.TotalSteps)
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, projectResponse{Project: &proj, Added: added})
}

func (s *Server) handleStartProject(w http.ResponseWriter, r *http.Request) {
	var req startProjectRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	proj, added, err := s.svc.Discovery.Start(r.Context(), req.Title)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, projectResponse{Project: &proj, Added: added})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	proj, ok := s.svc.Projects.GetProject(title)
	if !ok {
		writeErrorCode(w, http.StatusNotFound, codeNotFound, "project not tracked: "+title)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

// handleCompleteStep answers 200 even for unknown titles; found=false tells
// the caller nothing changed.
func (s *Server) handleCompleteStep(w http.ResponseWriter, r *http.Request) {
	var req completeStepRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	proj, found := s.svc.Discovery.CompleteStep(r.Context(), titleParam(r), req.Step)
	resp := stepResponse{Found: found}
	if found {
		resp.Project = &proj
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClarify(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, "step must be an integer")
		return
	}
	c, err := s.svc.Discovery.Clarify(r.Context(), titleParam(r), step)
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.ListActivityOptions{ProjectTitle: q.Get("title")}
	if v := q.Get("type"); v != "" {
		t := activity.ActivityType(v)
		opts.ActivityType = &t
	}
	var err error
	if opts.Limit, err = intQuery(q, "limit"); err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	if opts.Offset, err = intQuery(q, "offset"); err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	entries, err := s.svc.Activity.GetRecentActivity(r.Context(), opts)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []activity.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, activityResponse{Activity: entries})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Discovery.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	if entries == nil {
		entries = []analysis.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Leaderboard: entries})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := s.svc.Discovery.Achievements(r.Context())
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	if achievements == nil {
		achievements = []analysis.Achievement{}
	}
	writeJSON(w, http.StatusOK, achievementsResponse{Achievements: achievements})
}

// titleParam returns the {title} segment decoded exactly once. chi routes on
// RawPath when the request carries escaped slashes, and on the already
// decoded Path otherwise.
func titleParam(r *http.Request) string {
	raw := chi.URLParam(r, "title")
	if r.URL.RawPath == "" {
		return raw
	}
	if title, err := url.PathUnescape(raw); err == nil {
		return title
	}
	return raw
}

func intQuery(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &queryError{key: key, value: v}
	}
	return n, nil
}

type queryError struct {
	key, value string
}

func (e *queryError) Error() string {
	return "invalid " + e.key + ": " + strconv.Quote(e.value)
}
