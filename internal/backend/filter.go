package backend

import (
	"encoding/json"
	"fmt"
	"time"
)

// Where is a condition object. Keys are field names mapped to a value for
// equality, a Cond for comparisons, or "and"/"or" mapped to []Where.
type Where map[string]any

// Cond holds comparison operators for a single field.
type Cond map[string]any

// Filter is the query object sent as the filter parameter.
type Filter struct {
	Where  Where           `json:"where,omitempty"`
	Order  []string        `json:"order,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Fields map[string]bool `json:"fields,omitempty"`
}

// Encode renders the filter as the JSON string expected in the query string.
func (f Filter) Encode() (string, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode filter: %w", err)
	}
	return string(raw), nil
}

// Select restricts the returned fields.
func (f Filter) Select(fields ...string) Filter {
	f.Fields = make(map[string]bool, len(fields))
	for _, field := range fields {
		f.Fields[field] = true
	}
	return f
}

// Asc orders by field ascending.
func Asc(field string) string { return field + " ASC" }

// Desc orders by field descending.
func Desc(field string) string { return field + " DESC" }

// And joins conditions that must all hold.
func And(conds ...Where) Where { return Where{"and": conds} }

// Or joins conditions where any may hold.
func Or(conds ...Where) Where { return Where{"or": conds} }

// Between matches values in the closed range [from, to].
func Between(from, to any) Cond { return Cond{"gte": from, "lte": to} }

// After matches values strictly greater than v.
func After(v any) Cond { return Cond{"gt": v} }

// AtMost matches values less than or equal to v.
func AtMost(v any) Cond { return Cond{"lte": v} }

// NotNull matches fields holding any non-null value.
func NotNull() Cond { return Cond{"neq": nil} }

// timestampLayout matches JavaScript's Date.prototype.toISOString output,
// which is what the backends store and compare.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t the way the backends store instants.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

// ParseTimestamp reads an instant written by a backend.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
