package handlers

import (
	"encoding/json"
	"net/http"

	"hookd/internal/pkg/errors"
	"hookd/internal/platform/auth"
	"hookd/internal/platform/models"
	"hookd/internal/platform/repositories"
)

type APIKeyHandler struct {
	repo *repositories.APIKeyRepository
}

func NewAPIKeyHandler(repo *repositories.APIKeyRepository) *APIKeyHandler {
	return &APIKeyHandler{repo: repo}
}

func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "name is required", nil)
		return
	}

	raw, prefix, hash, err := auth.GenerateAPIKey()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate key", nil)
		return
	}

	key := &models.APIKey{
		TenantID:  tenant.TenantID,
		Name:      req.Name,
		KeyPrefix: prefix,
		KeyHash:   hash,
	}
	if err := h.repo.Create(r.Context(), key); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create key", nil)
		return
	}

	// The raw key is returned exactly once.
	response := struct {
		ID        string `json:"id"`
		Key       string `json:"key"`
		Name      string `json:"name"`
		CreatedAt int64  `json:"created_at"`
	}{
		ID:        key.ID,
		Key:       raw,
		Name:      key.Name,
		CreatedAt: key.CreatedAt,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)

	keys, err := h.repo.ListByTenant(r.Context(), tenant.TenantID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list keys", nil)
		return
	}
	if keys == nil {
		keys = []*models.APIKey{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(keys)
}

func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)
	id := paramsFrom(r).ByName("key_id")

	if err := h.repo.Revoke(r.Context(), tenant.TenantID, id); err != nil {
		writeRepoError(w, err, "API key not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
