package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fosbar/barpos-backend/pkg/enums"
)

// Transaction is an immutable, append-only ledger entry. AmountCents is signed
// relative to the owning account: for persons a purchase is negative and a
// credit positive, for debtors a purchase is positive (debt grows) and a
// payment negative. Rows are never updated or deleted individually; they only
// disappear when their account is deleted.
type Transaction struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID   uuid.UUID             `gorm:"column:account_id;type:uuid;not null;index:idx_transactions_account"`
	AccountType string                `gorm:"column:account_type;not null;index:idx_transactions_account"`
	Type        enums.TransactionType `gorm:"column:type;type:transaction_type_enum;not null"`
	AmountCents int                   `gorm:"column:amount_cents;not null"`
	Note        *string               `gorm:"column:note"`
	ProductName *string               `gorm:"column:product_name"`
	SaleID      *uuid.UUID            `gorm:"column:sale_id;type:uuid"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
