package orm

import "gorm.io/gorm"

// ScopeFunc is a named scope: a function that modifies a GORM query.
// Usage: db.Scopes(orm.LastCreated("")).First(&post)
type ScopeFunc = func(*gorm.DB) *gorm.DB

// LastCreated is the scope form of Criteria.LastCreated. With an empty alias
// the table of the queried model is used.
func LastCreated(alias string) ScopeFunc {
	return func(db *gorm.DB) *gorm.DB {
		table := alias
		if table == "" {
			table = tableOf(db)
		}
		return Criteria{}.LastCreated(table).Scope()(db)
	}
}

// tableOf returns the table the statement targets, or "" when it cannot be
// determined yet.
func tableOf(db *gorm.DB) string {
	stmt := db.Statement
	if stmt.Table != "" {
		return stmt.Table
	}
	target := stmt.Model
	if target == nil {
		target = stmt.Dest
	}
	if target == nil {
		return ""
	}
	probe := &gorm.Statement{DB: db}
	if err := probe.Parse(target); err != nil {
		return ""
	}
	return probe.Schema.Table
}
