package telemetry

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

const (
	usagesResource = "usages"
	createdField   = "createdAt"
)

// UsageService aggregates Cloud Foundry usage samples from the monitor
// backend.
type UsageService struct {
	monitor  backend.Querier
	maxTicks int
	logger   *slog.Logger
}

// NewUsageService constructs a UsageService over the monitor backend.
func NewUsageService(monitor backend.Querier, maxTicks int, logger *slog.Logger) *UsageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageService{
		monitor:  monitor,
		maxTicks: maxTicks,
		logger:   logger.With("component", "usage_ticks"),
	}
}

// Ticks buckets the job's usage samples by ingestion time.
func (s *UsageService) Ticks(ctx context.Context, jobID string, tickSeconds int) ([]domain.Tick, error) {
	ticks, err := Generate(ctx, jobID, tickSeconds,
		boundary(s.monitor, usagesResource, createdField, false),
		boundary(s.monitor, usagesResource, createdField, true),
		s.maxTicks,
	)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("usage ticks generated", "job_id", jobID, "tick_seconds", tickSeconds, "ticks", len(ticks))
	return ticks, nil
}

// ListApps returns the distinct apps reporting in [gt, lt], in the order the
// backend first returned them.
func (s *UsageService) ListApps(ctx context.Context, jobID string, gt, lt time.Time) ([]domain.CfApp, error) {
	filter := backend.Filter{
		Where: backend.Where{"jobId": jobID, createdField: window(gt, lt)},
	}.Select("appId", "name")
	var rows []domain.Usage
	if err := s.monitor.Find(ctx, usagesResource, filter, &rows); err != nil {
		return nil, err
	}
	apps := make([]domain.CfApp, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.AppID]; ok {
			continue
		}
		seen[row.AppID] = struct{}{}
		apps = append(apps, domain.CfApp{ID: row.AppID, JobID: jobID, Name: row.Name, GT: gt, LT: lt})
	}
	return apps, nil
}

// ListInstances returns the distinct instance indexes of an app in [gt, lt].
func (s *UsageService) ListInstances(ctx context.Context, jobID, appID string, gt, lt time.Time) ([]domain.Instance, error) {
	filter := backend.Filter{
		Where: backend.Where{"jobId": jobID, "appId": appID, createdField: window(gt, lt)},
	}.Select("instance")
	var rows []domain.Usage
	if err := s.monitor.Find(ctx, usagesResource, filter, &rows); err != nil {
		return nil, err
	}
	instances := make([]domain.Instance, 0, len(rows))
	seen := make(map[int]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.Instance]; ok {
			continue
		}
		seen[row.Instance] = struct{}{}
		instances = append(instances, domain.Instance{JobID: jobID, AppID: appID, Instance: row.Instance, GT: gt, LT: lt})
	}
	return instances, nil
}

// MaxUsageInTick returns the most recent sample of one app instance in
// [gt, lt], or nil when the instance did not report.
func (s *UsageService) MaxUsageInTick(ctx context.Context, jobID, appID string, instance int, gt, lt time.Time) (*domain.Usage, error) {
	return s.latest(ctx, backend.Where{
		"jobId":      jobID,
		"appId":      appID,
		"instance":   instance,
		createdField: window(gt, lt),
	})
}

// LatestUsageInTick returns the most recent sample of any app in [gt, lt].
func (s *UsageService) LatestUsageInTick(ctx context.Context, jobID string, gt, lt time.Time) (*domain.Usage, error) {
	return s.latest(ctx, backend.Where{"jobId": jobID, createdField: window(gt, lt)})
}

func (s *UsageService) latest(ctx context.Context, where backend.Where) (*domain.Usage, error) {
	filter := backend.Filter{Where: where, Order: []string{backend.Desc("time")}, Limit: 1}
	var rows []domain.Usage
	if err := s.monitor.Find(ctx, usagesResource, filter, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	usage := rows[0]
	return &usage, nil
}

// Stats summarises cpu and memory over every sample in [gt, lt].
func (s *UsageService) Stats(ctx context.Context, jobID string, gt, lt time.Time) (domain.UsageStats, error) {
	filter := backend.Filter{
		Where: backend.Where{"jobId": jobID, createdField: window(gt, lt)},
	}.Select("cpu", "mem")
	var rows []domain.Usage
	if err := s.monitor.Find(ctx, usagesResource, filter, &rows); err != nil {
		return domain.UsageStats{}, err
	}
	stats := domain.UsageStats{Samples: int64(len(rows))}
	if len(rows) == 0 {
		return stats, nil
	}
	cpu := make([]float64, 0, len(rows))
	mem := make([]float64, 0, len(rows))
	for _, row := range rows {
		cpu = append(cpu, row.CPU)
		mem = append(mem, row.Mem)
	}
	stats.CPUAvg, stats.CPUMax, stats.CPUP95 = summarise(cpu)
	stats.MemAvg, stats.MemMax, stats.MemP95 = summarise(mem)
	return stats, nil
}

// List returns every usage sample recorded for a job.
func (s *UsageService) List(ctx context.Context, jobID string) ([]domain.Usage, error) {
	usages := make([]domain.Usage, 0)
	if err := s.monitor.Find(ctx, usagesResource, backend.Filter{Where: backend.Where{"jobId": jobID}}, &usages); err != nil {
		return nil, err
	}
	return usages, nil
}

func summarise(values []float64) (avg, peak, p95 *float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))
	top := sorted[len(sorted)-1]
	p := percentile(sorted, 0.95)
	return &mean, &top, &p
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p <= 0 {
		return values[0]
	}
	if p >= 1 {
		return values[len(values)-1]
	}
	pos := p * float64(len(values)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return values[lower]
	}
	weight := pos - float64(lower)
	return values[lower]*(1-weight) + values[upper]*weight
}
