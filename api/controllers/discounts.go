package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/api/responses"
	"github.com/amicofritto/orders-backend/api/validators"
	discountsvc "github.com/amicofritto/orders-backend/internal/discounts"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
	"github.com/amicofritto/orders-backend/pkg/logger"
)

type verifyDiscountRequest struct {
	Code     string          `json:"code" validate:"required"`
	Subtotal decimal.Decimal `json:"subtotal" validate:"required"`
}

// VerifyDiscount checks a code against the current subtotal. Unlike intake,
// which silently drops stale codes, this endpoint reports why a code was
// rejected so the checkout page can tell the customer.
func VerifyDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var payload verifyDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Verify(r.Context(), payload.Code, payload.Subtotal, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, outcome)
	}
}
