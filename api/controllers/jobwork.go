package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/api/responses"
	"github.com/shreeglass/erp-backend/api/validators"
	internaljobwork "github.com/shreeglass/erp-backend/internal/jobwork"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/logger"
)

func JobworkCreate(svc *internaljobwork.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internaljobwork.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func JobworkList(svc *internaljobwork.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := internaljobwork.ListQuery{Params: params}
		query.Search = strings.TrimSpace(r.URL.Query().Get("search"))
		if raw := strings.TrimSpace(r.URL.Query().Get("production_status")); raw != "" {
			stage, err := enums.ParseProductionStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid production_status"))
				return
			}
			query.ProductionStatus = &stage
		}

		page, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func JobworkGet(svc *internaljobwork.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "jobworkId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func JobworkAdvanceStage(svc *internaljobwork.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "jobworkId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input stageRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseProductionStatus(input.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target stage"))
			return
		}
		order, err := svc.AdvanceStage(r.Context(), id, target, actorRole(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type jobworkPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

func JobworkRecordPayment(svc *internaljobwork.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "jobworkId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input jobworkPaymentRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.RecordPayment(r.Context(), id, input.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
