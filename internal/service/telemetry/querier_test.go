package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ws-flare/ws-flare-graphql/internal/backend"
)

// memQuerier evaluates backend filters over in-memory records so the
// aggregators can be exercised against realistic query semantics.
type memQuerier struct {
	mu      sync.Mutex
	records map[string][]map[string]any
	finds   int
	counts  int
	lastErr error
}

func newMemQuerier() *memQuerier {
	return &memQuerier{records: make(map[string][]map[string]any)}
}

func (m *memQuerier) add(resource string, record any) {
	raw, err := json.Marshal(record)
	if err != nil {
		panic(err)
	}
	var row map[string]any
	if err := json.Unmarshal(raw, &row); err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[resource] = append(m.records[resource], row)
}

func (m *memQuerier) Find(ctx context.Context, resource string, filter backend.Filter, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if m.lastErr != nil {
		return m.lastErr
	}
	encoded, err := filter.Encode()
	if err != nil {
		return err
	}
	var wire struct {
		Where  map[string]any  `json:"where"`
		Order  []string        `json:"order"`
		Limit  int             `json:"limit"`
		Fields map[string]bool `json:"fields"`
	}
	if err := json.Unmarshal([]byte(encoded), &wire); err != nil {
		return err
	}
	rows := make([]map[string]any, 0)
	for _, row := range m.records[resource] {
		if matches(row, wire.Where) {
			rows = append(rows, row)
		}
	}
	for i := len(wire.Order) - 1; i >= 0; i-- {
		parts := strings.Fields(wire.Order[i])
		field := parts[0]
		desc := len(parts) > 1 && strings.EqualFold(parts[1], "DESC")
		sort.SliceStable(rows, func(a, b int) bool {
			cmp := compare(rows[a][field], rows[b][field])
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if wire.Limit > 0 && len(rows) > wire.Limit {
		rows = rows[:wire.Limit]
	}
	if len(wire.Fields) > 0 {
		projected := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			p := make(map[string]any, len(wire.Fields))
			for field, keep := range wire.Fields {
				if v, ok := row[field]; ok && keep {
					p[field] = v
				}
			}
			projected = append(projected, p)
		}
		rows = projected
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (m *memQuerier) Count(ctx context.Context, resource string, where backend.Where) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts++
	if m.lastErr != nil {
		return 0, m.lastErr
	}
	raw, err := json.Marshal(where)
	if err != nil {
		return 0, err
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return 0, err
	}
	var n int64
	for _, row := range m.records[resource] {
		if matches(row, decoded) {
			n++
		}
	}
	return n, nil
}

func matches(row map[string]any, where map[string]any) bool {
	for key, want := range where {
		switch key {
		case "and":
			for _, sub := range want.([]any) {
				if !matches(row, sub.(map[string]any)) {
					return false
				}
			}
		case "or":
			hit := false
			for _, sub := range want.([]any) {
				if matches(row, sub.(map[string]any)) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		default:
			got := row[key]
			cond, isCond := want.(map[string]any)
			if !isCond {
				if compare(got, want) != 0 {
					return false
				}
				continue
			}
			for op, operand := range cond {
				if !apply(op, got, operand) {
					return false
				}
			}
		}
	}
	return true
}

func apply(op string, got, operand any) bool {
	if op == "neq" {
		return compare(got, operand) != 0
	}
	if got == nil || operand == nil {
		return false
	}
	c := compare(got, operand)
	switch op {
	case "gt":
		return c > 0
	case "gte":
		return c >= 0
	case "lt":
		return c < 0
	case "lte":
		return c <= 0
	}
	panic(fmt.Sprintf("unsupported operator %q", op))
}

// compare orders nil first, then numbers, strings and booleans by value.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case float64:
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv, _ := b.(string)
		return strings.Compare(av, bv)
	case bool:
		bv, _ := b.(bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
