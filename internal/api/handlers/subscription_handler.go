package handlers

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "hookd/internal/api/context"
	"hookd/internal/api/middleware"
	"hookd/internal/pkg/errors"
	"hookd/internal/pkg/validator"
	"hookd/internal/platform/models"
	"hookd/internal/platform/repositories"
)

type SubscriptionHandler struct {
	repo *repositories.SubscriptionRepository
}

func NewSubscriptionHandler(repo *repositories.SubscriptionRepository) *SubscriptionHandler {
	return &SubscriptionHandler{repo: repo}
}

// subscriptionResponse carries the secret, which the model otherwise hides.
// It is only used on create, where the secret is shown exactly once.
type subscriptionResponse struct {
	*models.Subscription
	Secret string `json:"secret"`
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)

	var req struct {
		URL    string   `json:"url"`
		Events []string `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.URL == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "url is required", nil)
		return
	}
	if err := validator.ValidateEventNames(req.Events); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	secret, err := generateSecret()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate secret", nil)
		return
	}

	sub := &models.Subscription{
		TenantID: tenant.TenantID,
		URL:      req.URL,
		Events:   req.Events,
		Secret:   secret,
		IsActive: true,
	}

	if err := h.repo.Create(r.Context(), sub); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create webhook", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(subscriptionResponse{Subscription: sub, Secret: secret})
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)

	subs, err := h.repo.ListByTenant(r.Context(), tenant.TenantID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list webhooks", nil)
		return
	}
	if subs == nil {
		subs = []*models.Subscription{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(subs)
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)
	id := paramsFrom(r).ByName("webhook_id")

	sub, err := h.repo.GetByID(r.Context(), tenant.TenantID, id)
	if err != nil {
		writeRepoError(w, err, "Webhook not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)
	id := paramsFrom(r).ByName("webhook_id")

	var req struct {
		URL      *string  `json:"url"`
		Events   []string `json:"events"`
		IsActive *bool    `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	sub, err := h.repo.GetByID(r.Context(), tenant.TenantID, id)
	if err != nil {
		writeRepoError(w, err, "Webhook not found")
		return
	}

	if req.URL != nil {
		if *req.URL == "" {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "url cannot be empty", nil)
			return
		}
		sub.URL = *req.URL
	}
	if req.Events != nil {
		if err := validator.ValidateEventNames(req.Events); err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
			return
		}
		sub.Events = req.Events
	}
	if req.IsActive != nil {
		// Deactivation is immediate and total: the resolver filters on
		// is_active in the store query.
		sub.IsActive = *req.IsActive
	}

	if err := h.repo.Update(r.Context(), sub); err != nil {
		writeRepoError(w, err, "Webhook not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sub)
}

func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)
	id := paramsFrom(r).ByName("webhook_id")

	if err := h.repo.Delete(r.Context(), tenant.TenantID, id); err != nil {
		writeRepoError(w, err, "Webhook not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func tenantFrom(r *http.Request) *middleware.TenantContext {
	return r.Context().Value(apiContext.Tenant).(*middleware.TenantContext)
}

func paramsFrom(r *http.Request) httprouter.Params {
	return r.Context().Value(apiContext.Params).(httprouter.Params)
}

func writeRepoError(w http.ResponseWriter, err error, notFoundMsg string) {
	if stderrors.Is(err, sql.ErrNoRows) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, notFoundMsg, nil)
		return
	}
	errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Storage error", nil)
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(buf), nil
}
