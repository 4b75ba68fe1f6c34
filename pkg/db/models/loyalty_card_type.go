package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fosbar/barpos-backend/pkg/enums"
)

// LoyaltyCardType is the shared template a person's card instances reference.
// Exactly one of ProductID, ProductIDs, or CategoryID is populated depending
// on Binding. For the products binding all bound products must share one
// price; this is enforced when the type is created, not re-validated later.
type LoyaltyCardType struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string            `gorm:"column:name;not null"`
	Description       *string           `gorm:"column:description"`
	Scheme            enums.CardScheme  `gorm:"column:scheme;type:card_scheme_enum;not null"`
	RequiredPurchases int               `gorm:"column:required_purchases;not null;default:0"`
	PayCount          int               `gorm:"column:pay_count;not null;default:0"`
	GetCount          int               `gorm:"column:get_count;not null;default:0"`
	Binding           enums.CardBinding `gorm:"column:binding;type:card_binding_enum;not null"`
	ProductID         *uuid.UUID        `gorm:"column:product_id;type:uuid"`
	ProductIDs        pq.StringArray    `gorm:"column:product_ids;type:text[]"`
	CategoryID        *uuid.UUID        `gorm:"column:category_id;type:uuid"`
	AllowUpgrade      bool              `gorm:"column:allow_upgrade;not null;default:false"`
	IsActive          bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// Threshold returns the stamp count at which a card instance of this type is
// full: payCount for pay_n_get_m, requiredPurchases otherwise. stamps_only
// types may be configured with either field.
func (t LoyaltyCardType) Threshold() int {
	if t.Scheme == enums.CardSchemePayNGetM {
		return t.PayCount
	}
	if t.RequiredPurchases > 0 {
		return t.RequiredPurchases
	}
	return t.PayCount
}
