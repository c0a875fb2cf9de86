package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultRateLimit   = 2.0
	defaultBurst       = 4
	defaultMaxRetries  = 2
	defaultBaseBackoff = 500 * time.Millisecond
	maxErrorBody       = 4 << 10
)

// Config configures the analysis backend client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	RateLimit   float64 // requests per second
	Burst       int
	MaxRetries  int
	BaseBackoff time.Duration
}

// CallObserver receives the outcome of every backend call.
type CallObserver func(operation string, duration time.Duration, err error)

// Client talks to the external analysis backend.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	observe     CallObserver
	logger      *slog.Logger
}

// NewClient creates a client for the backend at cfg.BaseURL.
func NewClient(cfg Config, logger *slog.Logger, observe CallObserver) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("analysis base URL required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	backoff := cfg.BaseBackoff
	if backoff <= 0 {
		backoff = defaultBaseBackoff
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if observe == nil {
		observe = func(string, time.Duration, error) {}
	}

	return &Client{
		baseURL:     base,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(limit), burst),
		maxRetries:  retries,
		baseBackoff: backoff,
		observe:     observe,
		logger:      logger,
	}, nil
}

// Analyze uploads an image and returns the generated project or suggestions.
func (c *Client) Analyze(ctx context.Context, image []byte, contentType string) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="photo.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	var env analyzeEnvelope
	if err := c.call(ctx, "analyze", http.MethodPost, "/analyze", mw.FormDataContentType(), body.Bytes(), &env); err != nil {
		return nil, err
	}
	return decodeAnalysis(env)
}

func decodeAnalysis(env analyzeEnvelope) (*Result, error) {
	if env.Status != "" && env.Status != "success" {
		return nil, fmt.Errorf("%w: status %q", ErrUnexpectedResponse, env.Status)
	}
	msg := bytes.TrimSpace(env.Message)
	if len(msg) == 0 {
		return nil, fmt.Errorf("%w: empty message", ErrUnexpectedResponse)
	}

	switch msg[0] {
	case '{':
		var proj GeneratedProject
		if err := json.Unmarshal(msg, &proj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		if strings.TrimSpace(proj.Title) == "" {
			return nil, fmt.Errorf("%w: project without title", ErrUnexpectedResponse)
		}
		return &Result{Project: &proj}, nil
	case '[':
		var suggestions []Suggestion
		if err := json.Unmarshal(msg, &suggestions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		return &Result{Suggestions: suggestions}, nil
	default:
		var text string
		_ = json.Unmarshal(msg, &text)
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedResponse, text)
	}
}

// ClarifyStep asks the backend to expand one tutorial step.
func (c *Client) ClarifyStep(ctx context.Context, req ClarifyRequest) (*Clarification, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal clarify request: %w", err)
	}
	var env clarifyEnvelope
	if err := c.call(ctx, "clarify_step", http.MethodPost, "/clarify-step", "application/json", payload, &env); err != nil {
		return nil, err
	}
	if env.Clarification == nil {
		return nil, fmt.Errorf("%w: missing clarification", ErrUnexpectedResponse)
	}
	return env.Clarification, nil
}

// Leaderboard fetches the leaderboard.
func (c *Client) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var out []LeaderboardEntry
	if err := c.call(ctx, "leaderboard", http.MethodGet, "/leaderboard", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Achievements fetches the achievement list.
func (c *Client) Achievements(ctx context.Context) ([]Achievement, error) {
	var out []Achievement
	if err := c.call(ctx, "achievements", http.MethodGet, "/achievements", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// call runs one logical request with rate limiting and retries, decoding the
// JSON response into out.
func (c *Client) call(ctx context.Context, op, method, path, contentType string, body []byte, out any) error {
	start := time.Now()
	err := c.callWithRetry(ctx, op, method, path, contentType, body, out)
	c.observe(op, time.Since(start), err)
	return err
}

func (c *Client) callWithRetry(ctx context.Context, op, method, path, contentType string, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseBackoff * time.Duration(1<<(attempt-1))
			c.logger.Warn("retrying analysis call", "operation", op, "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.doRequest(ctx, method, path, contentType, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isRetryableError(err) {
			return err
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("analysis request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnexpectedResponse, err)
	}
	return nil
}
