package models

import "time"

// Setting is a key/value venue configuration row (venue name, currency
// symbol, receipt footer and similar display concerns).
type Setting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
