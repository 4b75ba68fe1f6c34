package loyalty

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fosbar/barpos-backend/pkg/db/models"
	"github.com/fosbar/barpos-backend/pkg/enums"
)

// EvalCard couples a card instance with its resolved type and the base price
// of the cheapest product the type is bound to.
type EvalCard struct {
	Card           models.LoyaltyCard
	CardType       models.LoyaltyCardType
	BasePriceCents int
}

// StampGrant adds stamps to a card instance.
type StampGrant struct {
	CardID uuid.UUID
	Stamps int
	Note   *string
}

// Redemption grants the purchased product for free and consumes the card.
type Redemption struct {
	CardID       uuid.UUID
	CardTypeID   uuid.UUID
	CardTypeName string
	StampsUsed   int
}

// Completion marks a stamps_only card as filled.
type Completion struct {
	CardID uuid.UUID
}

// Evaluation is the combined effect of one purchase on a person's cards. At
// most one redemption is granted per purchase; when several cards are full the
// first eligible one wins and the rest accrue ordinary stamps. EligibleCards
// counts the cards the product could be stamped or redeemed on at all.
type Evaluation struct {
	Redemption     *Redemption
	Grants         []StampGrant
	Completions    []Completion
	DestroyCardIDs []uuid.UUID
	EligibleCards  int
}

const completionNote = "stamp card complete"

// Evaluate computes the loyalty effect of purchasing product against the
// person's cards. It mutates nothing; callers apply the returned evaluation.
func Evaluate(product models.Product, cards []EvalCard) Evaluation {
	var eval Evaluation

	for _, ec := range cards {
		ct := ec.CardType
		if !ct.IsActive || !Eligible(product, ct) {
			continue
		}

		stamps, ok := RequiredStamps(product.PriceCents, ec.BasePriceCents)
		if !ok {
			// Price is not a whole multiple of the base price, so the
			// purchase neither stamps nor redeems on this card.
			continue
		}
		eval.EligibleCards++
		threshold := ct.Threshold()

		if ct.Scheme == enums.CardSchemeStampsOnly {
			eval.Grants = append(eval.Grants, StampGrant{CardID: ec.Card.ID, Stamps: stamps})
			if ec.Card.CurrentStamps+stamps >= threshold {
				eval.Completions = append(eval.Completions, Completion{CardID: ec.Card.ID})
				eval.DestroyCardIDs = append(eval.DestroyCardIDs, ec.Card.ID)
			}
			continue
		}

		if ec.Card.CurrentStamps >= threshold && eval.Redemption == nil {
			if stamps > 1 {
				if !ct.AllowUpgrade {
					note := "bonus applies to the base product only"
					eval.Grants = append(eval.Grants, StampGrant{CardID: ec.Card.ID, Stamps: stamps, Note: &note})
					continue
				}
				if ec.Card.CurrentStamps < stamps*threshold {
					note := fmt.Sprintf("needs %d stamps for this product", stamps*threshold)
					eval.Grants = append(eval.Grants, StampGrant{CardID: ec.Card.ID, Stamps: stamps, Note: &note})
					continue
				}
			}
			eval.Redemption = &Redemption{
				CardID:       ec.Card.ID,
				CardTypeID:   ct.ID,
				CardTypeName: ct.Name,
				StampsUsed:   stamps,
			}
			eval.DestroyCardIDs = append(eval.DestroyCardIDs, ec.Card.ID)
			continue
		}

		eval.Grants = append(eval.Grants, StampGrant{CardID: ec.Card.ID, Stamps: stamps})
	}

	return eval
}

// Eligible reports whether the product falls under the card type's binding.
func Eligible(product models.Product, ct models.LoyaltyCardType) bool {
	switch ct.Binding {
	case enums.CardBindingProduct:
		return ct.ProductID != nil && *ct.ProductID == product.ID
	case enums.CardBindingProducts:
		id := product.ID.String()
		for _, candidate := range ct.ProductIDs {
			if candidate == id {
				return true
			}
		}
		return false
	case enums.CardBindingCategory:
		return ct.CategoryID != nil && *ct.CategoryID == product.CategoryID
	default:
		return false
	}
}

// RequiredStamps returns how many stamps the product is worth on a card with
// the given base price. A product priced at a whole multiple of the base costs
// that many stamps; any other price disqualifies the card for this purchase.
// Amounts are integer cents, so exactness is a plain modulo check.
func RequiredStamps(priceCents, basePriceCents int) (int, bool) {
	if basePriceCents <= 0 {
		return 1, true
	}
	if priceCents%basePriceCents != 0 {
		return 0, false
	}
	stamps := priceCents / basePriceCents
	if stamps < 1 {
		stamps = 1
	}
	return stamps, true
}
