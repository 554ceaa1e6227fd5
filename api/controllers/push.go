package controllers

import (
	"net/http"

	"github.com/amicofritto/orders-backend/api/responses"
	"github.com/amicofritto/orders-backend/api/validators"
	pushsvc "github.com/amicofritto/orders-backend/internal/push"
	"github.com/amicofritto/orders-backend/pkg/enums"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
	"github.com/amicofritto/orders-backend/pkg/logger"
)

type registerTokenRequest struct {
	Token       string  `json:"token" validate:"required"`
	OrderNumber *string `json:"order_number"`
}

// RegisterPushToken stores a device token for the given audience. Customer
// routes pass enums.PushAudienceCustomer; the admin route passes
// enums.PushAudienceAdmin and ignores any order scope.
func RegisterPushToken(svc pushsvc.Service, audience enums.PushAudience, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "push service unavailable"))
			return
		}

		var payload registerTokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var userAgent *string
		if ua := r.UserAgent(); ua != "" {
			trimmed := validators.SanitizeString(ua, 255)
			userAgent = &trimmed
		}

		if err := svc.Register(r.Context(), audience, payload.OrderNumber, payload.Token, userAgent); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"registered": true})
	}
}

// UnregisterPushToken removes a device token for the given audience.
func UnregisterPushToken(svc pushsvc.Service, audience enums.PushAudience, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "push service unavailable"))
			return
		}

		var payload registerTokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Unregister(r.Context(), audience, payload.OrderNumber, payload.Token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"unregistered": true})
	}
}
