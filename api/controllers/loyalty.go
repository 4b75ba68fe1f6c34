package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fosbar/barpos-backend/api/responses"
	"github.com/fosbar/barpos-backend/api/validators"
	loyaltysvc "github.com/fosbar/barpos-backend/internal/loyalty"
	"github.com/fosbar/barpos-backend/pkg/enums"
	pkgerrors "github.com/fosbar/barpos-backend/pkg/errors"
	"github.com/fosbar/barpos-backend/pkg/logger"
)

type cardTypeRequest struct {
	Name              string   `json:"name" validate:"required,max=100"`
	Description       *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	Scheme            string   `json:"scheme" validate:"required,oneof=buy_n_get_1 pay_n_get_m stamps_only"`
	RequiredPurchases int      `json:"required_purchases" validate:"min=0"`
	PayCount          int      `json:"pay_count" validate:"min=0"`
	GetCount          int      `json:"get_count" validate:"min=0"`
	Binding           string   `json:"binding" validate:"required,oneof=product products category"`
	ProductID         *string  `json:"product_id,omitempty" validate:"omitempty,uuid"`
	ProductIDs        []string `json:"product_ids,omitempty" validate:"omitempty,dive,uuid"`
	CategoryID        *string  `json:"category_id,omitempty" validate:"omitempty,uuid"`
	AllowUpgrade      bool     `json:"allow_upgrade"`
}

type assignCardRequest struct {
	PersonID   string `json:"person_id" validate:"required,uuid"`
	CardTypeID string `json:"card_type_id" validate:"required,uuid"`
}

func (c cardTypeRequest) toInput() (loyaltysvc.CardTypeInput, error) {
	input := loyaltysvc.CardTypeInput{
		Name:              c.Name,
		Description:       c.Description,
		Scheme:            enums.CardScheme(c.Scheme),
		RequiredPurchases: c.RequiredPurchases,
		PayCount:          c.PayCount,
		GetCount:          c.GetCount,
		Binding:           enums.CardBinding(c.Binding),
		AllowUpgrade:      c.AllowUpgrade,
	}
	if c.ProductID != nil {
		id, err := uuid.Parse(*c.ProductID)
		if err != nil {
			return loyaltysvc.CardTypeInput{}, pkgerrors.New(pkgerrors.CodeValidation, "product_id must be a uuid")
		}
		input.ProductID = &id
	}
	for _, raw := range c.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return loyaltysvc.CardTypeInput{}, pkgerrors.New(pkgerrors.CodeValidation, "product_ids must be uuids")
		}
		input.ProductIDs = append(input.ProductIDs, id)
	}
	if c.CategoryID != nil {
		id, err := uuid.Parse(*c.CategoryID)
		if err != nil {
			return loyaltysvc.CardTypeInput{}, pkgerrors.New(pkgerrors.CodeValidation, "category_id must be a uuid")
		}
		input.CategoryID = &id
	}
	return input, nil
}

func CreateCardType(svc loyaltysvc.TypeService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cardTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cardType, err := svc.CreateCardType(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cardType)
	}
}

func UpdateCardType(svc loyaltysvc.TypeService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cardTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cardType, err := svc.UpdateCardType(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cardType)
	}
}

func GetCardType(svc loyaltysvc.TypeService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cardType, err := svc.GetCardType(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cardType)
	}
}

func ListCardTypes(svc loyaltysvc.TypeService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cardTypes, err := svc.ListCardTypes(r.Context(), validators.ParseQueryBool(r, "include_inactive"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cardTypes)
	}
}

func SetCardTypeActive(svc loyaltysvc.TypeService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload setActiveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetCardTypeActive(r.Context(), id, payload.Active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"active": payload.Active})
	}
}

func AssignCard(svc loyaltysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload assignCardRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		personID, err := uuid.Parse(payload.PersonID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "person_id must be a uuid"))
			return
		}
		cardTypeID, err := uuid.Parse(payload.CardTypeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "card_type_id must be a uuid"))
			return
		}
		card, err := svc.AssignCard(r.Context(), loyaltysvc.AssignCardInput{
			PersonID:   personID,
			CardTypeID: cardTypeID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, card)
	}
}

func RemoveCard(svc loyaltysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveCard(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}

func ListPersonCards(svc loyaltysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		personID, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cards, err := svc.ListPersonCards(r.Context(), personID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cards)
	}
}

func CardHistory(svc loyaltysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		events, err := svc.CardHistory(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}
