package geo

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockingQuery adds FOR UPDATE on Postgres. SQLite serializes writers at the database level and has no row locks.
func lockingQuery(t *gorm.DB) *gorm.DB {
	if t.Dialector != nil && t.Dialector.Name() == "postgres" {
		return t.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return t
}
