package project

import (
	"context"
	"errors"
	"strings"

	"log/slog"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

var (
	errInvalidProjectName = errors.New("project name is required")
	errMissingUserID      = errors.New("user id required")
)

// Service orchestrates project management against the projects backend.
type Service struct {
	projects backend.Service
	logger   *slog.Logger
}

// New returns a project service.
func New(projects backend.Service, logger *slog.Logger) Service {
	return Service{projects: projects, logger: logger}
}

// Create registers a new project owned by userID.
func (s Service) Create(ctx context.Context, userID, name string) (*domain.Project, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errMissingUserID
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errInvalidProjectName
	}
	var project domain.Project
	body := struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
	}{UserID: userID, Name: name}
	if err := s.projects.Post(ctx, "/projects", body, &project); err != nil {
		return nil, err
	}
	s.logger.Info("project created", "project_id", project.ID, "user_id", userID)
	return &project, nil
}

// List returns the projects owned by userID.
func (s Service) List(ctx context.Context, userID string) ([]domain.Project, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errMissingUserID
	}
	projects := make([]domain.Project, 0)
	filter := backend.Filter{Where: backend.Where{"userId": userID}}
	if err := s.projects.Find(ctx, "projects", filter, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}
