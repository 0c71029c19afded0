package job

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
	errMissingUserID = errors.New("user id required")
	errMissingTaskID = errors.New("task id required")
	errMissingJobID  = errors.New("job id required")
	errEmptyUpdate   = errors.New("nothing to update")
)

// Publisher hands job events to the worker queue.
type Publisher interface {
	PublishJobCreated(ctx context.Context, event domain.JobEvent) error
}

// Broadcaster fans created jobs out to subscribers of a task.
type Broadcaster interface {
	Broadcast(topic string, payload []byte)
}

// TaskSource loads the task a job runs.
type TaskSource interface {
	Dispatchable(ctx context.Context, taskID string) (map[string]json.RawMessage, error)
}

// UpdateInput lists the job flags a client may change. Nil fields keep
// their stored value.
type UpdateInput struct {
	IsRunning *bool
	Passed    *bool
}

// Service manages jobs in the jobs backend and announces new ones.
type Service struct {
	jobs      backend.Service
	tasks     TaskSource
	publisher Publisher
	feed      Broadcaster
	logger    *slog.Logger
}

// New returns a job service. feed may be nil.
func New(jobs backend.Service, tasks TaskSource, publisher Publisher, feed Broadcaster, logger *slog.Logger) Service {
	return Service{jobs: jobs, tasks: tasks, publisher: publisher, feed: feed, logger: logger}
}

// Create starts a job for taskID: it is stored as running, then the job and
// its task are published for the workers.
func (s Service) Create(ctx context.Context, userID, taskID string) (*domain.Job, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errMissingUserID
	}
	if strings.TrimSpace(taskID) == "" {
		return nil, errMissingTaskID
	}
	body := map[string]any{"userId": userID, "taskId": taskID, "isRunning": true}
	var raw json.RawMessage
	if err := s.jobs.Post(ctx, "/jobs", body, &raw); err != nil {
		return nil, err
	}
	var job domain.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode created job: %w", err)
	}

	task, err := s.tasks.Dispatchable(ctx, taskID)
	if err != nil {
		return nil, err
	}
	event := domain.JobEvent{TaskID: taskID, Job: raw, Task: task}
	if err := s.publisher.PublishJobCreated(ctx, event); err != nil {
		s.logger.Error("job event publish failed", "job_id", job.ID, "task_id", taskID, "error", err)
		return nil, fmt.Errorf("publish job %s: %w", job.ID, err)
	}
	if s.feed != nil {
		s.feed.Broadcast(taskID, raw)
	}
	s.logger.Info("job created", "job_id", job.ID, "task_id", taskID, "user_id", userID)
	return &job, nil
}

// Get fetches a single job.
func (s Service) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, errMissingJobID
	}
	var job domain.Job
	if err := s.jobs.Get(ctx, "/jobs/"+url.PathEscape(jobID), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns the jobs run for a task, newest first.
func (s Service) List(ctx context.Context, taskID string) ([]domain.Job, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, errMissingTaskID
	}
	jobs := make([]domain.Job, 0)
	filter := backend.Filter{
		Where: backend.Where{"taskId": taskID},
		Order: []string{backend.Desc("createdAt")},
	}
	if err := s.jobs.Find(ctx, "jobs", filter, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Update changes the running and passed flags of a job. The stored job is
// read first because the backend replaces the whole entity on PUT.
func (s Service) Update(ctx context.Context, jobID string, input UpdateInput) (*domain.Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, errMissingJobID
	}
	if input.IsRunning == nil && input.Passed == nil {
		return nil, errEmptyUpdate
	}
	path := "/jobs/" + url.PathEscape(strings.TrimSpace(jobID))
	var stored map[string]json.RawMessage
	if err := s.jobs.Get(ctx, path, &stored); err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, backend.ErrNotFound)
	}
	if input.IsRunning != nil {
		stored["isRunning"] = boolJSON(*input.IsRunning)
	}
	if input.Passed != nil {
		stored["passed"] = boolJSON(*input.Passed)
	}
	if err := s.jobs.Put(ctx, path, stored, nil); err != nil {
		return nil, err
	}
	merged, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	var job domain.Job
	if err := json.Unmarshal(merged, &job); err != nil {
		return nil, fmt.Errorf("decode updated job: %w", err)
	}
	s.logger.Info("job updated", "job_id", job.ID)
	return &job, nil
}

func boolJSON(v bool) json.RawMessage {
	if v {
		return json.RawMessage("true")
	}
	return json.RawMessage("false")
}
