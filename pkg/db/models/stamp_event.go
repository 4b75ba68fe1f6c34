package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fosbar/barpos-backend/pkg/enums"
)

// StampEvent is one entry in a card instance's history: a stamp accrual, a
// bonus redemption, or a stamps_only completion.
type StampEvent struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CardID      uuid.UUID         `gorm:"column:card_id;type:uuid;not null;index"`
	Action      enums.StampAction `gorm:"column:action;type:stamp_action_enum;not null"`
	ProductID   *uuid.UUID        `gorm:"column:product_id;type:uuid"`
	ProductName *string           `gorm:"column:product_name"`
	SaleID      *uuid.UUID        `gorm:"column:sale_id;type:uuid"`
	StampsAdded int               `gorm:"column:stamps_added;not null;default:0"`
	StampsUsed  int               `gorm:"column:stamps_used;not null;default:0"`
	Note        *string           `gorm:"column:note"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
