package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"hookd/internal/pkg/errors"
	"hookd/internal/platform/models"
	"hookd/internal/platform/repositories"
)

// DeliveryLogHandler exposes the audit trail to tenant administrators. This
// is the only place webhook delivery failures become visible; the end user
// whose CRUD action triggered the event never sees them.
type DeliveryLogHandler struct {
	logs *repositories.DeliveryLogRepository
	subs *repositories.SubscriptionRepository
}

func NewDeliveryLogHandler(logs *repositories.DeliveryLogRepository, subs *repositories.SubscriptionRepository) *DeliveryLogHandler {
	return &DeliveryLogHandler{logs: logs, subs: subs}
}

func (h *DeliveryLogHandler) ListByWebhook(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)
	webhookID := paramsFrom(r).ByName("webhook_id")

	// Ownership check: log rows carry no tenant_id, their subscription does.
	if _, err := h.subs.GetByID(r.Context(), tenant.TenantID, webhookID); err != nil {
		writeRepoError(w, err, "Webhook not found")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.logs.ListByWebhook(r.Context(), webhookID, limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list deliveries", nil)
		return
	}
	if entries == nil {
		entries = []*models.DeliveryLog{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (h *DeliveryLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r)
	id := paramsFrom(r).ByName("delivery_id")

	entry, err := h.logs.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "Delivery not found")
		return
	}

	if _, err := h.subs.GetByID(r.Context(), tenant.TenantID, entry.WebhookID); err != nil {
		writeRepoError(w, err, "Delivery not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}
