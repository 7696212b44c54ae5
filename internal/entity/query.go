package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Query builds the store's boolean tag-query expression from a structured
// filter. Every query opens with the kind discriminator clause; filter
// clauses are ANDed in the order they are added, which fixes the
// canonical clause order per entity kind.
type Query struct {
	parts []string
	err   error
}

// NewQuery starts an expression with the `type` discriminator clause.
func NewQuery(kind string) *Query {
	q := &Query{}
	q.Eq("type", kind)
	return q
}

// Eq appends a string equality clause; empty values are skipped (an
// absent filter field constrains nothing).
func (q *Query) Eq(field, value string) *Query {
	if value == "" {
		return q
	}
	quoted, err := Quote(value)
	if err != nil && q.err == nil {
		q.err = fmt.Errorf("field %s: %w", field, err)
	}
	q.parts = append(q.parts, field+" = "+quoted)
	return q
}

// EqNum appends a numeric equality clause.
func (q *Query) EqNum(field string, value int64) *Query {
	q.parts = append(q.parts, field+" = "+strconv.FormatInt(value, 10))
	return q
}

// EqBool appends a 0/1 equality clause for a tri-state boolean filter;
// nil constrains nothing.
func (q *Query) EqBool(field string, value *bool) *Query {
	if value == nil {
		return q
	}
	n := int64(0)
	if *value {
		n = 1
	}
	return q.EqNum(field, n)
}

// Gte appends a >= bound; nil constrains nothing.
func (q *Query) Gte(field string, value *int64) *Query {
	if value == nil {
		return q
	}
	q.parts = append(q.parts, field+" >= "+strconv.FormatInt(*value, 10))
	return q
}

// Lte appends a <= bound; nil constrains nothing.
func (q *Query) Lte(field string, value *int64) *Query {
	if value == nil {
		return q
	}
	q.parts = append(q.parts, field+" <= "+strconv.FormatInt(*value, 10))
	return q
}

// Build renders the conjunction, or the first unsafe-literal error.
func (q *Query) Build() (string, error) {
	if q.err != nil {
		return "", q.err
	}
	return strings.Join(q.parts, " && "), nil
}

// Quote renders a string as a quoted query literal. The store's parser
// has no documented escaping, so values that could break out of the
// literal are rejected outright instead of passed through.
func Quote(value string) (string, error) {
	for _, r := range value {
		if r == '"' || r < 0x20 {
			return "", ErrUnsafeQueryValue
		}
	}
	return `"` + value + `"`, nil
}
