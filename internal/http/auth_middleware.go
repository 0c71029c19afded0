package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ws-flare/ws-flare-graphql/internal/service/auth"
)

var errNoAuthorization = errors.New("missing authorization header")

type contextSetter interface {
	SetContext(context.Context)
}

// optionalAuth resolves the bearer token when one is sent. Requests without
// an Authorization header proceed anonymously; a header that does not carry
// a valid token is rejected.
func (r *Router) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		if setter, ok := w.(contextSetter); ok {
			setter.SetContext(ctx)
		}
		next(w, req.WithContext(ctx))
	}
}

// ensureAuth validates the Authorization header and enriches the context.
func (r *Router) ensureAuth(w http.ResponseWriter, req *http.Request) (context.Context, bool) {
	token, err := bearerToken(req.Header.Get("Authorization"))
	if errors.Is(err, errNoAuthorization) {
		return req.Context(), true
	}
	if err != nil {
		r.logger.Warn("authorization header invalid", "error", err, "path", req.URL.Path)
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return req.Context(), false
	}
	id, err := r.auth.Authorize(req.Context(), token)
	if err != nil {
		r.logger.Warn("token validation failed", "error", err, "path", req.URL.Path)
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return req.Context(), false
	}
	return auth.WithIdentity(req.Context(), id), true
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errNoAuthorization
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
