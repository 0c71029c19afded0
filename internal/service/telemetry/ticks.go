// Package telemetry turns a job's socket and usage records into fixed-width
// time buckets and resolves the per-bucket aggregates.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

var (
	// ErrInvalidTickSeconds is returned for a non-positive bucket width.
	ErrInvalidTickSeconds = errors.New("tick seconds must be positive")
	// ErrTooManyTicks is returned when the series would produce more buckets
	// than the configured limit.
	ErrTooManyTicks = errors.New("too many ticks for requested width")
)

// TimestampFunc reports one end of a job's telemetry series. ok is false when
// the job has no records.
type TimestampFunc func(ctx context.Context, jobID string) (ts time.Time, ok bool, err error)

// Generate fetches the earliest and latest timestamps of a series and splits
// the range into contiguous buckets of tickSeconds each.
func Generate(ctx context.Context, jobID string, tickSeconds int, earliest, latest TimestampFunc, maxTicks int) ([]domain.Tick, error) {
	if tickSeconds <= 0 {
		return nil, ErrInvalidTickSeconds
	}
	first, ok, err := earliest(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("earliest timestamp: %w", err)
	}
	if !ok {
		return []domain.Tick{}, nil
	}
	last, ok, err := latest(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("latest timestamp: %w", err)
	}
	if !ok {
		return []domain.Tick{}, nil
	}
	return span(jobID, first, last, tickSeconds, maxTicks)
}

// span slides a window of tickSeconds from first until it reaches last. A
// single point series yields one bucket starting at that point.
func span(jobID string, first, last time.Time, tickSeconds, maxTicks int) ([]domain.Tick, error) {
	step := time.Duration(tickSeconds) * time.Second
	count := 1
	if last.After(first) {
		diff := last.Sub(first)
		count = int(diff / step)
		if diff%step != 0 {
			count++
		}
	}
	if maxTicks > 0 && count > maxTicks {
		return nil, fmt.Errorf("%w: %d buckets exceeds limit of %d", ErrTooManyTicks, count, maxTicks)
	}

	ticks := make([]domain.Tick, 0, count)
	slider := first
	offset := 0
	for {
		next := slider.Add(step)
		ticks = append(ticks, domain.Tick{JobID: jobID, GT: slider, LT: next, Offset: offset})
		offset += tickSeconds
		slider = next
		if !slider.Before(last) {
			break
		}
	}
	return ticks, nil
}

// boundary returns a TimestampFunc reading the first non-null value of field
// for a job when the collection is sorted by field in the given direction.
func boundary(q backend.Querier, resource, field string, descending bool) TimestampFunc {
	order := backend.Asc(field)
	if descending {
		order = backend.Desc(field)
	}
	return func(ctx context.Context, jobID string) (time.Time, bool, error) {
		filter := backend.Filter{
			Where: backend.Where{"jobId": jobID, field: backend.NotNull()},
			Order: []string{order},
			Limit: 1,
		}.Select(field)
		var rows []map[string]any
		if err := q.Find(ctx, resource, filter, &rows); err != nil {
			return time.Time{}, false, err
		}
		if len(rows) == 0 {
			return time.Time{}, false, nil
		}
		raw, ok := rows[0][field].(string)
		if !ok || strings.TrimSpace(raw) == "" {
			return time.Time{}, false, nil
		}
		ts, err := backend.ParseTimestamp(raw)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%s.%s: %w", resource, field, err)
		}
		return ts, true, nil
	}
}

func window(gt, lt time.Time) backend.Cond {
	return backend.Between(backend.Timestamp(gt), backend.Timestamp(lt))
}
