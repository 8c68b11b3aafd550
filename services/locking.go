package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate adds SELECT ... FOR UPDATE to a row load so read-modify-write
// transactions serialize per row on Postgres, which runs at READ COMMITTED.
// SQLite has no FOR UPDATE syntax; its single-writer model already serializes
// whole transactions, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
