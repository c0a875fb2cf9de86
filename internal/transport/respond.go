package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rpggio/makerlog/internal/analysis"
	"github.com/rpggio/makerlog/internal/domain/activity"
	"github.com/rpggio/makerlog/internal/domain/catalog"
	"github.com/rpggio/makerlog/internal/domain/discovery"
)

// Error codes carried in error responses.
const (
	codeInvalidRequest  = "invalid_request"
	codeUnauthorized    = "unauthorized"
	codeNotFound        = "not_found"
	codeUpstream        = "upstream_error"
	codeUpstreamTimeout = "upstream_timeout"
	codeInternal        = "internal"
)

const maxJSONBody = 1 << 20

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// writeError maps a domain error onto a status code. fallback is used for
// errors no rule matches; backend-facing handlers pass 502.
func writeError(w http.ResponseWriter, err error, fallback int) {
	status, code := classify(err, fallback)
	writeErrorCode(w, status, code, err.Error())
}

func classify(err error, fallback int) (int, string) {
	var statusErr *analysis.StatusError
	switch {
	case errors.Is(err, catalog.ErrGuideNotFound),
		errors.Is(err, discovery.ErrStepNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, discovery.ErrInvalidInput),
		errors.Is(err, catalog.ErrInvalidGuide),
		errors.Is(err, catalog.ErrEmptyQuery),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, analysis.ErrEmptyImage):
		return http.StatusBadRequest, codeInvalidRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeUpstreamTimeout
	case errors.As(err, &statusErr),
		errors.Is(err, analysis.ErrUnexpectedResponse):
		return http.StatusBadGateway, codeUpstream
	}
	if fallback == http.StatusBadGateway {
		return fallback, codeUpstream
	}
	return http.StatusInternalServerError, codeInternal
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(r, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("parse request body: %w", err)
	}
	return nil
}
