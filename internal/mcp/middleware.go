package mcp

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrUnauthorized is returned for requests without a valid bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// authMiddleware checks the bearer token on every request except the
// protocol handshake.
func authMiddleware(token string) sdkmcp.Middleware {
	want := []byte(token)
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, ErrUnauthorized
			}
			got, ok := strings.CutPrefix(extra.Header.Get("Authorization"), "Bearer ")
			got = strings.TrimSpace(got)
			if !ok || got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				return nil, ErrUnauthorized
			}
			return next(ctx, method, req)
		}
	}
}
