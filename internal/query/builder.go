// Package query builds the parameterized property search statement.
//
// Filters are collected as predicate descriptors and rendered by a single
// formatter, so the statement is well formed for any subset of filters and
// every value travels as a positional argument.
package query

import (
	"fmt"
	"strings"

	"lightbnb/internal/domain"
	"lightbnb/internal/money"
)

const DefaultLimit = 10

// Format is the positional placeholder style of the target store.
type Format int

const (
	Dollar   Format = iota // $1, $2, ... (PostgreSQL)
	Question               // ?, ?, ... (MySQL)
)

func (f Format) token(n int) string {
	if f == Question {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

// Plan is a statement with its bound arguments; Args[i] binds placeholder i+1.
type Plan struct {
	SQL  string
	Args []any
}

// PropertyColumns lists the properties columns in domain.Property field order.
const PropertyColumns = `p.id, p.owner_id, p.title, p.description, p.thumbnail_photo_url, p.cover_photo_url,
  p.cost_per_night, p.parking_spaces, p.number_of_bathrooms, p.number_of_bedrooms,
  p.country, p.street, p.city, p.province, p.post_code, p.active`

const selectProperties = `SELECT
  ` + PropertyColumns + `,
  AVG(pr.rating) AS average_rating
FROM properties p
LEFT JOIN property_reviews pr ON pr.property_id = p.id`

type predicate struct {
	expr  string
	op    string
	value any
	wrap  string // applied to the placeholder, e.g. "LOWER(%s)"
}

type Builder struct {
	Placeholder Format
}

// BuildPropertyQuery builds the search plan with $N placeholders.
func BuildPropertyQuery(opts domain.FilterOptions, limit int) Plan {
	return Builder{Placeholder: Dollar}.Build(opts, limit)
}

func (b Builder) Build(opts domain.FilterOptions, limit int) Plan {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var where, having []predicate
	if opts.City != "" {
		where = append(where, predicate{expr: "LOWER(p.city)", op: "LIKE", value: "%" + opts.City + "%", wrap: "LOWER(%s)"})
	}
	if d := opts.MinimumPricePerNight; d != nil && !d.IsZero() {
		where = append(where, predicate{expr: "p.cost_per_night", op: ">=", value: money.ToMinor(*d)})
	}
	if d := opts.MaximumPricePerNight; d != nil && !d.IsZero() {
		where = append(where, predicate{expr: "p.cost_per_night", op: "<=", value: money.ToMinor(*d)})
	}
	if d := opts.MinimumRating; d != nil && !d.IsZero() {
		having = append(having, predicate{expr: "AVG(pr.rating)", op: ">=", value: d.InexactFloat64()})
	}

	r := renderer{format: b.Placeholder, args: make([]any, 0, len(where)+len(having)+1)}
	r.sb.WriteString(selectProperties)
	r.clause("WHERE", where)
	r.sb.WriteString("\nGROUP BY p.id")
	r.clause("HAVING", having)
	r.sb.WriteString("\nORDER BY p.cost_per_night, p.id")
	r.sb.WriteString("\nLIMIT ")
	r.sb.WriteString(r.bind(limit))

	return Plan{SQL: r.sb.String(), Args: r.args}
}

type renderer struct {
	sb     strings.Builder
	format Format
	args   []any
}

func (r *renderer) bind(v any) string {
	r.args = append(r.args, v)
	return r.format.token(len(r.args))
}

// clause writes keyword before the first predicate and AND before the rest.
func (r *renderer) clause(keyword string, preds []predicate) {
	for i, p := range preds {
		if i == 0 {
			r.sb.WriteString("\n" + keyword + " ")
		} else {
			r.sb.WriteString("\n  AND ")
		}
		ph := r.bind(p.value)
		if p.wrap != "" {
			ph = fmt.Sprintf(p.wrap, ph)
		}
		r.sb.WriteString(p.expr + " " + p.op + " " + ph)
	}
}
