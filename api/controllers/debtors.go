package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fosbar/barpos-backend/api/responses"
	"github.com/fosbar/barpos-backend/api/validators"
	debtorsvc "github.com/fosbar/barpos-backend/internal/debtors"
	ledgersvc "github.com/fosbar/barpos-backend/internal/ledger"
	"github.com/fosbar/barpos-backend/pkg/logger"
)

type createDebtorRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	InitialDebtCents int    `json:"initial_debt_cents" validate:"min=0"`
}

func CreateDebtor(svc debtorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createDebtorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		debtor, err := svc.CreateDebtor(r.Context(), debtorsvc.CreateDebtorInput{
			Name:             payload.Name,
			InitialDebtCents: payload.InitialDebtCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, debtor)
	}
}

func GetDebtor(svc debtorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		debtor, err := svc.GetDebtor(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debtor)
	}
}

func ListDebtors(svc debtorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		debtors, err := svc.ListDebtors(r.Context(), validators.ParseQueryBool(r, "include_settled"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debtors)
	}
}

func RenameDebtor(svc debtorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload renameRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		debtor, err := svc.RenameDebtor(r.Context(), id, payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debtor)
	}
}

func DeleteDebtor(svc debtorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteDebtor(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func AddDebt(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload amountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txn, err := svc.AddDebt(r.Context(), ledgersvc.AddDebtInput{
			DebtorID:    id,
			AmountCents: payload.AmountCents,
			Note:        payload.Note,
			Manual:      true,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// PayDebt settles part of a debtor's debt. An amount of zero forgives the
// entire remaining debt.
func PayDebt(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload amountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txn, err := svc.PayDebt(r.Context(), ledgersvc.PayDebtInput{
			DebtorID:    id,
			AmountCents: payload.AmountCents,
			Note:        payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}
