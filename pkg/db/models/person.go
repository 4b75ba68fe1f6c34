package models

import (
	"time"

	"github.com/google/uuid"
)

// Person is a prepaid credit account. BalanceCents is derived state: it always
// equals the signed sum of the account's transactions and is only mutated in
// the same database transaction that appends a ledger entry.
type Person struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string        `gorm:"column:name;not null;uniqueIndex"`
	BalanceCents int           `gorm:"column:balance_cents;not null;default:0"`
	Transactions []Transaction `gorm:"polymorphic:Account;polymorphicValue:person;constraint:OnDelete:CASCADE"`
	LoyaltyCards []LoyaltyCard `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides gorm's default pluralization ("people"); the schema
// uses "persons".
func (Person) TableName() string {
	return "persons"
}
