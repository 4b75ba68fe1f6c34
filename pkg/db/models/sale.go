package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fosbar/barpos-backend/pkg/enums"
)

// Sale records one completed purchase. PriceCents is the final charged price,
// which is zero for stamp-paid sales; OriginalPriceCents then preserves the
// catalog price at the time of sale.
type Sale struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID          *uuid.UUID          `gorm:"column:product_id;type:uuid"`
	ProductName        string              `gorm:"column:product_name;not null"`
	PriceCents         int                 `gorm:"column:price_cents;not null"`
	OriginalPriceCents *int                `gorm:"column:original_price_cents"`
	PaymentMethod      enums.PaymentMethod `gorm:"column:payment_method;type:payment_method_enum;not null"`
	PaidWithStamp      bool                `gorm:"column:paid_with_stamp;not null;default:false"`
	IsFreeRedemption   bool                `gorm:"column:is_free_redemption;not null;default:false"`
	PersonID           *uuid.UUID          `gorm:"column:person_id;type:uuid"`
	DebtorID           *uuid.UUID          `gorm:"column:debtor_id;type:uuid"`
	LoyaltyCardTypeID  *uuid.UUID          `gorm:"column:loyalty_card_type_id;type:uuid"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime;index"`
}
