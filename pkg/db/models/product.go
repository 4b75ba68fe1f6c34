package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. Prices are integer cents throughout.
type Product struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	PriceCents int       `gorm:"column:price_cents;not null"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null"`
	Category   *Category `gorm:"foreignKey:CategoryID"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
