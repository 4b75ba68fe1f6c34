package models

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyCard is one person's live progress against a card type. The instance
// is destroyed on full bonus redemption (and on completion for stamps_only
// types); further accrual requires assigning a fresh card.
type LoyaltyCard struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PersonID       uuid.UUID        `gorm:"column:person_id;type:uuid;not null;index"`
	CardTypeID     uuid.UUID        `gorm:"column:card_type_id;type:uuid;not null"`
	CardType       *LoyaltyCardType `gorm:"foreignKey:CardTypeID"`
	CurrentStamps  int              `gorm:"column:current_stamps;not null;default:0"`
	CompletedCards int              `gorm:"column:completed_cards;not null;default:0"`
	Events         []StampEvent     `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
