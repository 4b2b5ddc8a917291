package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shreeglass/erp-backend/api/middleware"
	"github.com/shreeglass/erp-backend/api/responses"
	"github.com/shreeglass/erp-backend/api/validators"
	internalauth "github.com/shreeglass/erp-backend/internal/auth"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/logger"
)

func AuthLogin(svc *internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalauth.LoginInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Login(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AuthCreateUser(svc *internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalauth.CreateUserInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.CreateUser(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

type optInsRequest struct {
	EmailOptIn    bool `json:"email_opt_in"`
	WhatsAppOptIn bool `json:"whatsapp_opt_in"`
}

// AuthUpdateOptIns lets the authenticated user flip their own channels.
func AuthUpdateOptIns(svc *internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		var input optInsRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UpdateOptIns(r.Context(), userID, input.EmailOptIn, input.WhatsAppOptIn); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{
			"email_opt_in":    input.EmailOptIn,
			"whatsapp_opt_in": input.WhatsAppOptIn,
		})
	}
}
