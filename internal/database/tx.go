package database

import "gorm.io/gorm"

// WithTx runs fn inside a transaction on db. fn's error rolls back.
func WithTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}
