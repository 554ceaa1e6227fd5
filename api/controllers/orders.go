package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/amicofritto/orders-backend/api/responses"
	"github.com/amicofritto/orders-backend/api/validators"
	ordersvc "github.com/amicofritto/orders-backend/internal/orders"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
	"github.com/amicofritto/orders-backend/pkg/logger"
)

// CreateOrder handles public order intake.
func CreateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload ordersvc.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithOrderNumber(r.Context(), order.OrderNumber)
		logg.Info(ctx, "order created")
		responses.WriteSuccessStatus(w, http.StatusCreated, ordersvc.NewOrderView(order))
	}
}

// GetOrder serves the public tracking page. ?light=true returns only the
// fields the status poller needs.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		order, err := svc.GetByNumber(r.Context(), chi.URLParam(r, "orderNumber"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if strings.EqualFold(r.URL.Query().Get("light"), "true") {
			responses.WriteSuccess(w, ordersvc.NewStatusView(order))
			return
		}
		responses.WriteSuccess(w, ordersvc.NewOrderView(order))
	}
}
