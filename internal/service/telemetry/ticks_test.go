package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

var t0 = time.Date(2019, time.April, 7, 11, 51, 22, 0, time.UTC)

func fixed(ts time.Time, ok bool) TimestampFunc {
	return func(context.Context, string) (time.Time, bool, error) {
		return ts, ok, nil
	}
}

func TestGenerateThreeBuckets(t *testing.T) {
	ticks, err := Generate(context.Background(), "job1", 10, fixed(t0, true), fixed(t0.Add(25*time.Second), true), 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := []domain.Tick{
		{JobID: "job1", GT: t0, LT: t0.Add(10 * time.Second), Offset: 0},
		{JobID: "job1", GT: t0.Add(10 * time.Second), LT: t0.Add(20 * time.Second), Offset: 10},
		{JobID: "job1", GT: t0.Add(20 * time.Second), LT: t0.Add(30 * time.Second), Offset: 20},
	}
	if diff := cmp.Diff(want, ticks); diff != "" {
		t.Fatalf("ticks mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateBucketCount(t *testing.T) {
	cases := []struct {
		name        string
		width       time.Duration
		tickSeconds int
		want        int
	}{
		{name: "exact multiple", width: 60 * time.Second, tickSeconds: 10, want: 6},
		{name: "remainder", width: 61 * time.Second, tickSeconds: 10, want: 7},
		{name: "shorter than one tick", width: 3 * time.Second, tickSeconds: 10, want: 1},
		{name: "sub second remainder", width: 20*time.Second + time.Millisecond, tickSeconds: 5, want: 5},
		{name: "one second ticks", width: 90 * time.Second, tickSeconds: 1, want: 90},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			last := t0.Add(tc.width)
			ticks, err := Generate(context.Background(), "job1", tc.tickSeconds, fixed(t0, true), fixed(last, true), 0)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if len(ticks) != tc.want {
				t.Fatalf("expected %d ticks, got %d", tc.want, len(ticks))
			}
			for i, tick := range ticks {
				if tick.Offset != i*tc.tickSeconds {
					t.Fatalf("tick %d: expected offset %d, got %d", i, i*tc.tickSeconds, tick.Offset)
				}
				if i > 0 && !tick.GT.Equal(ticks[i-1].LT) {
					t.Fatalf("tick %d not contiguous with previous", i)
				}
			}
			if ticks[len(ticks)-1].LT.Before(last) {
				t.Fatalf("final tick ends before series maximum")
			}
		})
	}
}

func TestGenerateEmptySeries(t *testing.T) {
	ticks, err := Generate(context.Background(), "job1", 10, fixed(time.Time{}, false), fixed(time.Time{}, false), 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ticks == nil || len(ticks) != 0 {
		t.Fatalf("expected empty non-nil ticks, got %v", ticks)
	}
}

func TestGenerateSinglePoint(t *testing.T) {
	ticks, err := Generate(context.Background(), "job1", 5, fixed(t0, true), fixed(t0, true), 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := []domain.Tick{{JobID: "job1", GT: t0, LT: t0.Add(5 * time.Second), Offset: 0}}
	if diff := cmp.Diff(want, ticks); diff != "" {
		t.Fatalf("ticks mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateRejectsInvalidWidth(t *testing.T) {
	called := false
	probe := func(context.Context, string) (time.Time, bool, error) {
		called = true
		return t0, true, nil
	}
	for _, width := range []int{0, -10} {
		if _, err := Generate(context.Background(), "job1", width, probe, probe, 0); !errors.Is(err, ErrInvalidTickSeconds) {
			t.Fatalf("width %d: expected ErrInvalidTickSeconds, got %v", width, err)
		}
	}
	if called {
		t.Fatalf("did not expect backend lookups for invalid width")
	}
}

func TestGenerateTickLimit(t *testing.T) {
	_, err := Generate(context.Background(), "job1", 1, fixed(t0, true), fixed(t0.Add(time.Hour), true), 100)
	if !errors.Is(err, ErrTooManyTicks) {
		t.Fatalf("expected ErrTooManyTicks, got %v", err)
	}
	ticks, err := Generate(context.Background(), "job1", 60, fixed(t0, true), fixed(t0.Add(time.Hour), true), 100)
	if err != nil {
		t.Fatalf("generate within limit: %v", err)
	}
	if len(ticks) != 60 {
		t.Fatalf("expected 60 ticks, got %d", len(ticks))
	}
}

func TestGeneratePropagatesLookupErrors(t *testing.T) {
	boom := errors.New("backend down")
	failing := func(context.Context, string) (time.Time, bool, error) {
		return time.Time{}, false, boom
	}
	if _, err := Generate(context.Background(), "job1", 10, failing, fixed(t0, true), 0); !errors.Is(err, boom) {
		t.Fatalf("expected earliest error, got %v", err)
	}
	if _, err := Generate(context.Background(), "job1", 10, fixed(t0, true), failing, 0); !errors.Is(err, boom) {
		t.Fatalf("expected latest error, got %v", err)
	}
}
