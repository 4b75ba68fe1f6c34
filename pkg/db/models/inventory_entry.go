package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryEntry records a stock movement for a product. The current stock
// level is the sum of all entries; restocks are positive, corrections may be
// negative.
type InventoryEntry struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	QuantityChange int       `gorm:"column:quantity_change;not null"`
	Note           *string   `gorm:"column:note"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
