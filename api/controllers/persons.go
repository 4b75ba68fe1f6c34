package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fosbar/barpos-backend/api/responses"
	"github.com/fosbar/barpos-backend/api/validators"
	ledgersvc "github.com/fosbar/barpos-backend/internal/ledger"
	personsvc "github.com/fosbar/barpos-backend/internal/persons"
	"github.com/fosbar/barpos-backend/pkg/enums"
	"github.com/fosbar/barpos-backend/pkg/logger"
	"github.com/fosbar/barpos-backend/pkg/pagination"
)

type createPersonRequest struct {
	Name                string `json:"name" validate:"required,max=100"`
	InitialBalanceCents int    `json:"initial_balance_cents" validate:"min=0"`
}

type renameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type amountRequest struct {
	AmountCents int     `json:"amount_cents" validate:"min=0"`
	Note        *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

func CreatePerson(svc personsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPersonRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		person, err := svc.CreatePerson(r.Context(), personsvc.CreatePersonInput{
			Name:                payload.Name,
			InitialBalanceCents: payload.InitialBalanceCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, person)
	}
}

func GetPerson(svc personsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		person, err := svc.GetPerson(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, person)
	}
}

func ListPersons(svc personsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		persons, err := svc.ListPersons(r.Context(), validators.ParseQueryBool(r, "include_zero_balance"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, persons)
	}
}

func RenamePerson(svc personsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		person, err := svc.RenamePerson(r.Context(), id, payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, person)
	}
}

func DeletePerson(svc personsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeletePerson(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func CreditPerson(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		txn, err := svc.CreditPerson(r.Context(), ledgersvc.CreditPersonInput{
			PersonID:    id,
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

func RefundPerson(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		txn, err := svc.RefundPerson(r.Context(), ledgersvc.RefundPersonInput{
			PersonID:    id,
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

func listTransactions(svc ledgersvc.Service, logg *logger.Logger, kind enums.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txns, next, err := svc.ListTransactions(r.Context(), ledgersvc.ListTransactionsInput{
			AccountID: id,
			Kind:      kind,
			Page: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"transactions": txns,
			"next_cursor":  next,
		})
	}
}

func ListPersonTransactions(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listTransactions(svc, logg, enums.AccountKindPerson)
}

func ListDebtorTransactions(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listTransactions(svc, logg, enums.AccountKindDebtor)
}

func checkBalance(svc ledgersvc.Service, logg *logger.Logger, kind enums.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		check, err := svc.CheckBalance(r.Context(), id, kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, check)
	}
}

func CheckPersonBalance(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return checkBalance(svc, logg, enums.AccountKindPerson)
}

func CheckDebtorBalance(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return checkBalance(svc, logg, enums.AccountKindDebtor)
}
