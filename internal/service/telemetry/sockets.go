package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

const (
	socketsResource = "sockets"
	connectionField = "connectionTime"
)

// SocketService aggregates the jobs service's socket records.
type SocketService struct {
	jobs     backend.Querier
	maxTicks int
	logger   *slog.Logger
}

// NewSocketService constructs a SocketService over the jobs backend.
func NewSocketService(jobs backend.Querier, maxTicks int, logger *slog.Logger) *SocketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocketService{
		jobs:     jobs,
		maxTicks: maxTicks,
		logger:   logger.With("component", "socket_ticks"),
	}
}

// Ticks buckets the job's socket connection times.
func (s *SocketService) Ticks(ctx context.Context, jobID string, tickSeconds int) ([]domain.Tick, error) {
	ticks, err := Generate(ctx, jobID, tickSeconds,
		boundary(s.jobs, socketsResource, connectionField, false),
		boundary(s.jobs, socketsResource, connectionField, true),
		s.maxTicks,
	)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("socket ticks generated", "job_id", jobID, "tick_seconds", tickSeconds, "ticks", len(ticks))
	return ticks, nil
}

// ConnectedCount counts sockets whose connection interval overlaps [gt, lt]:
// connected no later than lt and not disconnected before gt.
func (s *SocketService) ConnectedCount(ctx context.Context, jobID string, gt, lt time.Time) (domain.ConnectedSocketCount, error) {
	where := backend.Where{
		"jobId":         jobID,
		"connected":     true,
		connectionField: backend.AtMost(backend.Timestamp(lt)),
		"or": []backend.Where{
			{"disconnectTime": backend.After(backend.Timestamp(gt))},
			{"disconnectTime": nil},
		},
	}
	count, err := s.jobs.Count(ctx, socketsResource, where)
	if err != nil {
		return domain.ConnectedSocketCount{}, err
	}
	return domain.ConnectedSocketCount{Count: count}, nil
}

// List returns every socket recorded for a job.
func (s *SocketService) List(ctx context.Context, jobID string) ([]domain.Socket, error) {
	sockets := make([]domain.Socket, 0)
	if err := s.jobs.Find(ctx, socketsResource, backend.Filter{Where: backend.Where{"jobId": jobID}}, &sockets); err != nil {
		return nil, err
	}
	return sockets, nil
}
