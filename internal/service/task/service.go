package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"log/slog"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

var (
	errMissingUserID    = errors.New("user id required")
	errMissingProjectID = errors.New("project id required")
	errMissingTaskID    = errors.New("task id required")
	errInvalidTaskName  = errors.New("task name is required")

	// ErrInvalidScripts is returned when a task's scripts are not a JSON
	// array of script definitions.
	ErrInvalidScripts = errors.New("task scripts must be a JSON array")
)

// CreateInput holds the task attributes accepted from clients.
type CreateInput struct {
	ProjectID           string `json:"projectId"`
	Name                string `json:"name"`
	URI                 string `json:"uri,omitempty"`
	TotalSimulatedUsers *int   `json:"totalSimulatedUsers,omitempty"`
	RunTime             *int   `json:"runTime,omitempty"`
	Scripts             string `json:"scripts,omitempty"`
	SuccessThreshold    *int   `json:"successThreshold,omitempty"`
	CfAPI               string `json:"cfApi,omitempty"`
	CfUser              string `json:"cfUser,omitempty"`
	CfPass              string `json:"cfPass,omitempty"`
	CfOrg               string `json:"cfOrg,omitempty"`
	CfSpace             string `json:"cfSpace,omitempty"`
	CfApps              string `json:"cfApps,omitempty"`
}

// Service manages load-test tasks stored by the projects backend.
type Service struct {
	projects backend.Service
	logger   *slog.Logger
}

// New returns a task service.
func New(projects backend.Service, logger *slog.Logger) Service {
	return Service{projects: projects, logger: logger}
}

// Create stores a task for userID.
func (s Service) Create(ctx context.Context, userID string, input CreateInput) (*domain.Task, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errMissingUserID
	}
	if strings.TrimSpace(input.ProjectID) == "" {
		return nil, errMissingProjectID
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errInvalidTaskName
	}
	if input.Scripts != "" {
		if _, err := ParseScripts(input.Scripts); err != nil {
			return nil, err
		}
	}
	body := struct {
		UserID string `json:"userId"`
		CreateInput
	}{UserID: userID, CreateInput: input}

	var task domain.Task
	if err := s.projects.Post(ctx, "/tasks", body, &task); err != nil {
		return nil, err
	}
	s.logger.Info("task created", "task_id", task.ID, "project_id", input.ProjectID, "user_id", userID)
	return &task, nil
}

// Get fetches a single task.
func (s Service) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, errMissingTaskID
	}
	var task domain.Task
	if err := s.projects.Get(ctx, "/tasks/"+url.PathEscape(taskID), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns the tasks of a project.
func (s Service) List(ctx context.Context, projectID string) ([]domain.Task, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errMissingProjectID
	}
	tasks := make([]domain.Task, 0)
	filter := backend.Filter{Where: backend.Where{"projectId": projectID}}
	if err := s.projects.Find(ctx, "tasks", filter, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Dispatchable fetches a task exactly as the backend stores it, with the
// encoded scripts field replaced by the decoded array workers consume.
func (s Service) Dispatchable(ctx context.Context, taskID string) (map[string]json.RawMessage, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, errMissingTaskID
	}
	var raw map[string]json.RawMessage
	if err := s.projects.Get(ctx, "/tasks/"+url.PathEscape(taskID), &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("task %s: %w", taskID, backend.ErrNotFound)
	}
	encoded, ok := raw["scripts"]
	if !ok {
		return raw, nil
	}
	var scripts string
	if err := json.Unmarshal(encoded, &scripts); err != nil {
		// Already an array or null; forward unchanged.
		return raw, nil
	}
	decoded, err := decodeScriptArray(scripts)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", taskID, err)
	}
	raw["scripts"] = decoded
	return raw, nil
}

// ParseScripts decodes a task's encoded scripts field.
func ParseScripts(encoded string) ([]domain.Script, error) {
	var scripts []domain.Script
	if err := json.Unmarshal([]byte(encoded), &scripts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScripts, err)
	}
	return scripts, nil
}

func decodeScriptArray(encoded string) (json.RawMessage, error) {
	if strings.TrimSpace(encoded) == "" {
		return json.RawMessage("[]"), nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(encoded), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScripts, err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	out, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return out, nil
}
