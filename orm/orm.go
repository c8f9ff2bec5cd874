package orm

import (
	"slices"

	"gorm.io/gorm"
)

// QueryBuilder provides a generic, chainable query interface wrapping GORM.
// Every chaining method returns a new builder; the receiver is left as it
// was, so a builder can be shared and refined independently.
type QueryBuilder[T any] struct {
	db       *gorm.DB
	criteria Criteria
	scopes   []ScopeFunc
	page     int
	perPage  int
	loadOpts []LoadOption
}

// Query creates a new QueryBuilder for the given model type.
func Query[T any](db *gorm.DB) *QueryBuilder[T] {
	return &QueryBuilder[T]{db: db, perPage: 25}
}

func (q *QueryBuilder[T]) clone() *QueryBuilder[T] {
	c := *q
	c.scopes = slices.Clip(q.scopes)
	return &c
}

// Where adds a WHERE clause.
func (q *QueryBuilder[T]) Where(query any, args ...any) *QueryBuilder[T] {
	c := q.clone()
	c.criteria = q.criteria.Where(query, args...)
	return c
}

// Order adds an ORDER BY term.
func (q *QueryBuilder[T]) Order(value string) *QueryBuilder[T] {
	c := q.clone()
	c.criteria = q.criteria.Order(value)
	return c
}

// Limit sets the LIMIT.
func (q *QueryBuilder[T]) Limit(limit int) *QueryBuilder[T] {
	c := q.clone()
	c.criteria = q.criteria.Limit(limit)
	return c
}

// Offset sets the OFFSET.
func (q *QueryBuilder[T]) Offset(offset int) *QueryBuilder[T] {
	c := q.clone()
	c.criteria = q.criteria.Offset(offset)
	return c
}

// Page sets the page number for pagination (1-indexed).
func (q *QueryBuilder[T]) Page(page int) *QueryBuilder[T] {
	if page < 1 {
		page = 1
	}
	c := q.clone()
	c.page = page
	return c
}

// PerPage sets the number of records per page.
func (q *QueryBuilder[T]) PerPage(perPage int) *QueryBuilder[T] {
	if perPage < 1 {
		perPage = 25
	}
	c := q.clone()
	c.perPage = perPage
	return c
}

// Scope applies one or more named scopes (functions that modify the query).
func (q *QueryBuilder[T]) Scope(funcs ...func(*gorm.DB) *gorm.DB) *QueryBuilder[T] {
	c := q.clone()
	c.scopes = append(c.scopes, funcs...)
	return c
}

// With eager-loads associations.
func (q *QueryBuilder[T]) With(relations ...string) *QueryBuilder[T] {
	c := q.clone()
	c.criteria = q.criteria.With(relations...)
	return c
}

// Merge merges criteria into the builder's criteria.
func (q *QueryBuilder[T]) Merge(criteria Criteria) *QueryBuilder[T] {
	c := q.clone()
	c.criteria = q.criteria.MergeWith(criteria)
	return c
}

// LastCreated narrows the query to the most recently created row. The alias
// defaults to the table of T.
func (q *QueryBuilder[T]) LastCreated(alias ...string) *QueryBuilder[T] {
	var table string
	if len(alias) > 0 {
		table = alias[0]
	} else {
		table = q.table()
	}
	c := q.clone()
	c.criteria = q.criteria.LastCreated(table)
	return c
}

// Criteria returns the accumulated criteria.
func (q *QueryBuilder[T]) Criteria() Criteria {
	return q.criteria
}

// DB returns the GORM query the builder would run, without pagination.
func (q *QueryBuilder[T]) DB() *gorm.DB {
	var model T
	return q.db.Model(&model).Scopes(q.criteria.Scope()).Scopes(q.scopes...)
}

func (q *QueryBuilder[T]) table() string {
	var model T
	stmt := &gorm.Statement{DB: q.db}
	if err := stmt.Parse(&model); err != nil {
		return ""
	}
	return stmt.Schema.Table
}

// applyPagination applies page/perPage to the underlying DB query.
func (q *QueryBuilder[T]) applyPagination() *gorm.DB {
	db := q.DB()
	if q.page > 0 {
		offset := (q.page - 1) * q.perPage
		db = db.Offset(offset).Limit(q.perPage)
	}
	return db
}

// All returns all matching records.
func (q *QueryBuilder[T]) All() ([]T, error) {
	var results []T
	err := q.applyPagination().Find(&results).Error
	return results, err
}

// First returns the first matching record by primary key.
func (q *QueryBuilder[T]) First() (*T, error) {
	var result T
	err := q.DB().First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Take returns one matching record in the order the criteria define.
func (q *QueryBuilder[T]) Take() (*T, error) {
	var result T
	err := q.DB().Take(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Find returns a record by primary key.
func (q *QueryBuilder[T]) Find(id any) (*T, error) {
	var result T
	err := q.DB().First(&result, id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Load is Load on the builder's query: the criteria stay in force and a
// miss becomes a 404 error.
func (q *QueryBuilder[T]) Load(id any, opts ...LoadOption) (*T, error) {
	return Load[T](q.DB(), id, append(slices.Clip(q.loadOpts), opts...)...)
}

// Create inserts a new record.
func (q *QueryBuilder[T]) Create(v *T) error {
	return q.db.Create(v).Error
}

// Update saves changes to an existing record.
func (q *QueryBuilder[T]) Update(v *T) error {
	return q.db.Save(v).Error
}

// Delete deletes a record.
func (q *QueryBuilder[T]) Delete(v *T) error {
	return q.db.Delete(v).Error
}

// Count returns the number of matching records.
func (q *QueryBuilder[T]) Count() (int64, error) {
	var count int64
	err := q.DB().Count(&count).Error
	return count, err
}

// Exists returns true if at least one matching record exists.
func (q *QueryBuilder[T]) Exists(query any, args ...any) (bool, error) {
	var count int64
	err := q.DB().Where(query, args...).Count(&count).Error
	return count > 0, err
}
