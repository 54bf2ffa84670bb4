// Package models contains database model definitions.
package models

// Blob represents a named JSON blob persisted in the database. The
// settings repository stores its canonical records as Blob rows.
type Blob struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"unique"`
	Value []byte `gorm:"type:blob"`
}
