package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/amicofritto/orders-backend/api/middleware"
	"github.com/amicofritto/orders-backend/api/responses"
	"github.com/amicofritto/orders-backend/api/validators"
	ordersvc "github.com/amicofritto/orders-backend/internal/orders"
	"github.com/amicofritto/orders-backend/pkg/enums"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
	"github.com/amicofritto/orders-backend/pkg/logger"
)

// AdminListOrders serves the staff terminal's recent-orders view.
func AdminListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListRecent(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]*ordersvc.OrderView, 0, len(rows))
		for i := range rows {
			views = append(views, ordersvc.NewOrderView(&rows[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// AdminUpdateOrderStatus applies a staff state-machine transition.
func AdminUpdateOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var payload ordersvc.UpdateStatusInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithFields(r.Context(), map[string]any{
			"order_number": order.OrderNumber,
			"status":       order.Status.String(),
			"admin":        middleware.AdminSubjectFromContext(r.Context()),
		})
		logg.Info(ctx, "order status updated")
		responses.WriteSuccess(w, ordersvc.NewOrderView(order))
	}
}
