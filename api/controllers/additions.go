package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/api/responses"
	"github.com/amicofritto/orders-backend/api/validators"
	additionsvc "github.com/amicofritto/orders-backend/internal/additions"
	"github.com/amicofritto/orders-backend/pkg/enums"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
	"github.com/amicofritto/orders-backend/pkg/logger"
)

// ListAdditions serves the active sauces and extras for the menu picker.
func ListAdditions(svc additionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "additions service unavailable"))
			return
		}

		rows, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type saveRuleRequest struct {
	CategoryID uuid.UUID       `json:"category_id" validate:"required"`
	SauceMode  string          `json:"sauce_mode" validate:"required,oneof=none free_single paid_multi"`
	MaxSauces  int             `json:"max_sauces" validate:"min=0,max=10"`
	SaucePrice decimal.Decimal `json:"sauce_price"`
	Active     bool            `json:"active"`
}

// AdminSaveAdditionRule stores the sauce policy for one category.
func AdminSaveAdditionRule(svc additionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "additions service unavailable"))
			return
		}

		var payload saveRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseSauceMode(payload.SauceMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sauce mode"))
			return
		}

		rule, err := svc.SaveRule(r.Context(), payload.CategoryID, mode, payload.MaxSauces, payload.SaucePrice, payload.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rule)
	}
}
