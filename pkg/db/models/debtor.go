package models

import (
	"time"

	"github.com/google/uuid"
)

// Debtor is a debt account. DebtCents is positive while the debtor owes money
// and, like Person.BalanceCents, is kept in lock-step with the transaction log.
type Debtor struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string        `gorm:"column:name;not null;uniqueIndex"`
	DebtCents    int           `gorm:"column:debt_cents;not null;default:0"`
	Transactions []Transaction `gorm:"polymorphic:Account;polymorphicValue:debtor;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
