package node

import (
	"context"
	"errors"
	"strings"

	"log/slog"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

var (
	errMissingJobID = errors.New("job id required")
	errMissingName  = errors.New("node name is required")
)

// Service registers worker nodes against jobs.
type Service struct {
	jobs   backend.Service
	logger *slog.Logger
}

// New returns a node service.
func New(jobs backend.Service, logger *slog.Logger) Service {
	return Service{jobs: jobs, logger: logger}
}

// Create records a node taking part in jobID.
func (s Service) Create(ctx context.Context, jobID, name string, running bool) (*domain.Node, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, errMissingJobID
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errMissingName
	}
	body := map[string]any{"jobId": jobID, "name": name, "running": running}
	var node domain.Node
	if err := s.jobs.Post(ctx, "/nodes", body, &node); err != nil {
		return nil, err
	}
	s.logger.Info("node registered", "node_id", node.ID, "job_id", jobID)
	return &node, nil
}

// List returns the nodes of a job.
func (s Service) List(ctx context.Context, jobID string) ([]domain.Node, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, errMissingJobID
	}
	nodes := make([]domain.Node, 0)
	if err := s.jobs.Find(ctx, "nodes", backend.Filter{Where: backend.Where{"jobId": jobID}}, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}
