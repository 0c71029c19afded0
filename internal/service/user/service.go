package user

import (
	"context"
	"errors"
	"strings"

	"log/slog"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

var (
	errUsernameRequired = errors.New("username is required")
	errPasswordRequired = errors.New("password is required")
	errEmailRequired    = errors.New("email is required")
)

// SignupInput carries the fields forwarded to the user service.
type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Service proxies account operations to the user backend.
type Service struct {
	users  backend.Writer
	logger *slog.Logger
}

// New returns a user service.
func New(users backend.Writer, logger *slog.Logger) Service {
	return Service{users: users, logger: logger}
}

// Signup registers an account.
func (s Service) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Username == "" {
		return nil, errUsernameRequired
	}
	if input.Email == "" {
		return nil, errEmailRequired
	}
	if input.Password == "" {
		return nil, errPasswordRequired
	}
	var user domain.User
	if err := s.users.Post(ctx, "/users", input, &user); err != nil {
		return nil, err
	}
	if user.Username == "" {
		user.Username = input.Username
	}
	s.logger.Info("user registered", "user_id", user.UserID)
	return &user, nil
}

// Login exchanges credentials for a token minted by the user service.
func (s Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errUsernameRequired
	}
	if password == "" {
		return nil, errPasswordRequired
	}
	var user domain.User
	if err := s.users.PostBasicAuth(ctx, "/login", username, password, &user); err != nil {
		return nil, err
	}
	if user.Username == "" {
		user.Username = username
	}
	s.logger.Info("user logged in", "user_id", user.UserID)
	return &user, nil
}
