package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/ws-flare/ws-flare-graphql/internal/domain"
	jwtpkg "github.com/ws-flare/ws-flare-graphql/pkg/jwt"
)

var (
	errTokenRequired  = errors.New("token required")
	errMissingUserID  = errors.New("token carries no user id")
	errMissingTaskID  = errors.New("task id required")
	errAnonymousToken = errors.New("authentication required to issue ci tokens")
)

// Identity is the caller resolved from a bearer token. TaskID is only set for
// CI tokens.
type Identity struct {
	UserID   string
	Username string
	TaskID   string
}

// Service verifies and issues gateway tokens.
type Service struct {
	secret string
	ciTTL  time.Duration
	logger *slog.Logger
}

// New constructs a Service signing with secret.
func New(secret string, ciTTL time.Duration, logger *slog.Logger) Service {
	return Service{secret: secret, ciTTL: ciTTL, logger: logger}
}

// Authorize validates a bearer token and returns the caller it identifies.
func (s Service) Authorize(ctx context.Context, token string) (*Identity, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, errTokenRequired
	}
	claims, err := jwtpkg.Parse(trimmed, s.secret)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, errMissingUserID
	}
	return &Identity{UserID: claims.UserID, Username: claims.Username, TaskID: claims.TaskID}, nil
}

// IssueCIToken mints a token for the CLI that lets userID start jobs for
// taskID.
func (s Service) IssueCIToken(ctx context.Context, userID, taskID string) (domain.CiToken, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.CiToken{}, errAnonymousToken
	}
	if strings.TrimSpace(taskID) == "" {
		return domain.CiToken{}, errMissingTaskID
	}
	token, err := jwtpkg.GenerateToken(userID, taskID, s.secret, s.ciTTL)
	if err != nil {
		return domain.CiToken{}, err
	}
	if s.logger != nil {
		s.logger.Info("ci token issued", "user_id", userID, "task_id", taskID)
	}
	return domain.CiToken{Token: token}, nil
}

type contextKey string

const identityKey contextKey = "ws-flare-identity"

// WithIdentity stores the caller on ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the caller stored on ctx, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	if !ok || id == nil || id.UserID == "" {
		return nil, false
	}
	return id, true
}
