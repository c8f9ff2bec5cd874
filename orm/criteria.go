package orm

import (
	"slices"
	"strings"

	"gorm.io/gorm"
)

// CreatedColumn is the creation timestamp column used by LastCreated.
const CreatedColumn = "created"

// Condition is one WHERE clause in GORM form.
type Condition struct {
	Query any
	Args  []any
}

// Criteria accumulates WHERE, ORDER BY, LIMIT, OFFSET and eager-load
// clauses. It is a value: every method returns a new Criteria and leaves the
// receiver untouched. The zero value is empty and ready to use.
type Criteria struct {
	conditions []Condition
	order      []string
	limit      int
	hasLimit   bool
	offset     int
	hasOffset  bool
	with       []string
}

// Where adds a condition. Conditions are joined with AND.
func (c Criteria) Where(query any, args ...any) Criteria {
	c.conditions = append(slices.Clip(c.conditions), Condition{Query: query, Args: args})
	return c
}

// Order appends an ORDER BY term.
func (c Criteria) Order(order string) Criteria {
	if order == "" {
		return c
	}
	c.order = append(slices.Clip(c.order), order)
	return c
}

// Limit sets the LIMIT.
func (c Criteria) Limit(n int) Criteria {
	c.limit, c.hasLimit = n, true
	return c
}

// Offset sets the OFFSET.
func (c Criteria) Offset(n int) Criteria {
	c.offset, c.hasOffset = n, true
	return c
}

// With adds relations to eager-load.
func (c Criteria) With(relations ...string) Criteria {
	c.with = appendUnique(slices.Clip(c.with), relations...)
	return c
}

// MergeWith combines c with other. Conditions of both apply; other's order
// terms come first; other's limit and offset replace c's when set.
func (c Criteria) MergeWith(other Criteria) Criteria {
	merged := c
	merged.conditions = append(slices.Clip(c.conditions), other.conditions...)
	if len(other.order) > 0 && !slices.Equal(c.order, other.order) {
		merged.order = append(slices.Clone(other.order), c.order...)
	}
	if other.hasLimit && other.limit > 0 {
		merged.limit, merged.hasLimit = other.limit, true
	}
	if other.hasOffset && other.offset >= 0 {
		merged.offset, merged.hasOffset = other.offset, true
	}
	merged.with = appendUnique(slices.Clip(c.with), other.with...)
	return merged
}

// LastCreated narrows c to the most recently created row: it merges
// ORDER BY <alias>.created DESC and LIMIT 1. An empty alias leaves the column
// unqualified.
func (c Criteria) LastCreated(alias string) Criteria {
	return c.MergeWith(Criteria{}.Order(qualify(alias, CreatedColumn) + " DESC").Limit(1))
}

// Conditions returns a copy of the WHERE clauses.
func (c Criteria) Conditions() []Condition {
	return slices.Clone(c.conditions)
}

// OrderBy returns the ORDER BY clause without the keyword.
func (c Criteria) OrderBy() string {
	return strings.Join(c.order, ", ")
}

// LimitValue returns the limit and whether one is set.
func (c Criteria) LimitValue() (int, bool) {
	return c.limit, c.hasLimit
}

// OffsetValue returns the offset and whether one is set.
func (c Criteria) OffsetValue() (int, bool) {
	return c.offset, c.hasOffset
}

// Relations returns the eager-loaded relations.
func (c Criteria) Relations() []string {
	return slices.Clone(c.with)
}

// Scope turns c into a GORM scope.
func (c Criteria) Scope() ScopeFunc {
	return func(db *gorm.DB) *gorm.DB {
		for _, cond := range c.conditions {
			db = db.Where(cond.Query, cond.Args...)
		}
		if len(c.order) > 0 {
			db = db.Order(c.OrderBy())
		}
		if c.hasLimit {
			db = db.Limit(c.limit)
		}
		if c.hasOffset {
			db = db.Offset(c.offset)
		}
		for _, rel := range c.with {
			db = db.Preload(rel)
		}
		return db
	}
}

func qualify(alias, column string) string {
	alias = strings.Trim(alias, ".")
	if alias == "" {
		return column
	}
	return alias + "." + column
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
