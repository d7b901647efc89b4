package middleware

import (
	"context"
	"net/http"

	apiContext "hookd/internal/api/context"
	"hookd/internal/pkg/errors"
	"hookd/internal/platform/auth"
)

// ServiceAuthMiddleware guards the internal dispatch endpoint. Producers
// (the CRM's mutation handlers) present a short-lived HS256 service token;
// end-user credentials never reach this service.
type ServiceAuthMiddleware struct {
	tokenSvc *auth.TokenService
}

func NewServiceAuthMiddleware(tokenSvc *auth.TokenService) *ServiceAuthMiddleware {
	return &ServiceAuthMiddleware{tokenSvc: tokenSvc}
}

func (m *ServiceAuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing service token", nil)
			return
		}

		claims, err := m.tokenSvc.Validate(token)
		if err != nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired service token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Service, claims)
		next(w, r.WithContext(ctx))
	}
}
