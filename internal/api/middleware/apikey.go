package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "hookd/internal/api/context"
	"hookd/internal/pkg/errors"
	"hookd/internal/platform/auth"
	"hookd/internal/platform/models"
)

// TenantContext carries the tenant resolved from a management API key.
// Every handler behind this middleware scopes its queries by TenantID.
type TenantContext struct {
	TenantID string
	KeyID    string
}

type APIKeySource interface {
	GetByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
}

type APIKeyMiddleware struct {
	keys APIKeySource
}

func NewAPIKeyMiddleware(keys APIKeySource) *APIKeyMiddleware {
	return &APIKeyMiddleware{keys: keys}
}

func (m *APIKeyMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing API key", nil)
			return
		}

		prefix := auth.KeyPrefix(raw)
		if prefix == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid API key", nil)
			return
		}

		candidates, err := m.keys.GetByPrefix(r.Context(), prefix)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to verify API key", nil)
			return
		}

		for _, key := range candidates {
			if key.Revoked() {
				continue
			}
			if auth.CompareAPIKey(key.KeyHash, raw) {
				ctx := context.WithValue(r.Context(), apiContext.Tenant, &TenantContext{
					TenantID: key.TenantID,
					KeyID:    key.ID,
				})
				next(w, r.WithContext(ctx))
				return
			}
		}

		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid API key", nil)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
