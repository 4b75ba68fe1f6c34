package loyalty

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db/models"
	"github.com/fosbar/barpos-backend/pkg/enums"
)

// Repository manages persistence for card types, card instances, and stamp
// events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListCardsByPerson(ctx context.Context, personID uuid.UUID) ([]models.LoyaltyCard, error)
	FindCard(ctx context.Context, id uuid.UUID) (*models.LoyaltyCard, error)
	CreateCard(ctx context.Context, card *models.LoyaltyCard) error
	UpdateCardProgress(ctx context.Context, id uuid.UUID, currentStamps, completedCards int) error
	DeleteCard(ctx context.Context, id uuid.UUID) error
	CreateStampEvent(ctx context.Context, event *models.StampEvent) error
	ListEventsByCard(ctx context.Context, cardID uuid.UUID) ([]models.StampEvent, error)

	FindCardType(ctx context.Context, id uuid.UUID) (*models.LoyaltyCardType, error)
	ListCardTypes(ctx context.Context, includeInactive bool) ([]models.LoyaltyCardType, error)
	CreateCardType(ctx context.Context, ct *models.LoyaltyCardType) error
	UpdateCardType(ctx context.Context, id uuid.UUID, updates map[string]any) error

	PersonExists(ctx context.Context, id uuid.UUID) (bool, error)
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	BasePriceCents(ctx context.Context, ct models.LoyaltyCardType) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a loyalty repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListCardsByPerson(ctx context.Context, personID uuid.UUID) ([]models.LoyaltyCard, error) {
	var cards []models.LoyaltyCard
	if err := r.db.WithContext(ctx).
		Preload("CardType").
		Where("person_id = ?", personID).
		Order("created_at ASC").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *repository) FindCard(ctx context.Context, id uuid.UUID) (*models.LoyaltyCard, error) {
	var card models.LoyaltyCard
	if err := r.db.WithContext(ctx).
		Preload("CardType").
		First(&card, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *repository) CreateCard(ctx context.Context, card *models.LoyaltyCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *repository) UpdateCardProgress(ctx context.Context, id uuid.UUID, currentStamps, completedCards int) error {
	return r.db.WithContext(ctx).
		Model(&models.LoyaltyCard{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_stamps":  currentStamps,
			"completed_cards": completedCards,
		}).Error
}

func (r *repository) DeleteCard(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.LoyaltyCard{}, "id = ?", id).Error
}

func (r *repository) CreateStampEvent(ctx context.Context, event *models.StampEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListEventsByCard(ctx context.Context, cardID uuid.UUID) ([]models.StampEvent, error) {
	var events []models.StampEvent
	if err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) FindCardType(ctx context.Context, id uuid.UUID) (*models.LoyaltyCardType, error) {
	var ct models.LoyaltyCardType
	if err := r.db.WithContext(ctx).First(&ct, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *repository) ListCardTypes(ctx context.Context, includeInactive bool) ([]models.LoyaltyCardType, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var types []models.LoyaltyCardType
	if err := query.Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *repository) CreateCardType(ctx context.Context, ct *models.LoyaltyCardType) error {
	return r.db.WithContext(ctx).Create(ct).Error
}

func (r *repository) UpdateCardType(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.LoyaltyCardType{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) PersonExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Person{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) BasePriceCents(ctx context.Context, ct models.LoyaltyCardType) (int, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	switch ct.Binding {
	case enums.CardBindingProduct:
		if ct.ProductID == nil {
			return 0, nil
		}
		query = query.Where("id = ?", *ct.ProductID)
	case enums.CardBindingProducts:
		if len(ct.ProductIDs) == 0 {
			return 0, nil
		}
		query = query.Where("id IN ?", []string(ct.ProductIDs))
	case enums.CardBindingCategory:
		if ct.CategoryID == nil {
			return 0, nil
		}
		query = query.Where("category_id = ?", *ct.CategoryID)
	default:
		return 0, nil
	}

	var min *int
	if err := query.Select("MIN(price_cents)").Scan(&min).Error; err != nil {
		return 0, err
	}
	if min == nil {
		return 0, nil
	}
	return *min, nil
}
