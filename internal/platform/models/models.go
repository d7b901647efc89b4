package models

// Subscription is a tenant-registered webhook destination. The Events set
// holds literal event names; the single value "*" means all events.
type Subscription struct {
	ID        string   `json:"id"`
	TenantID  string   `json:"tenant_id"`
	URL       string   `json:"url"`
	Events    []string `json:"events"` // JSON array in DB
	Secret    string   `json:"-"`
	IsActive  bool     `json:"is_active"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

// Matches reports whether the subscription wants the given event name,
// either by literal membership or by the "*" wildcard.
func (s *Subscription) Matches(eventName string) bool {
	for _, e := range s.Events {
		if e == "*" || e == eventName {
			return true
		}
	}
	return false
}

// DeliveryLog is one append-only record per delivery attempt. Exactly one row
// exists per (event, matching subscription) pair; rows are never updated.
// ResponseBody and ErrorMessage are mutually exclusive: the former holds the
// destination's response text when the request completed, the latter the
// transport error when it did not.
type DeliveryLog struct {
	ID           string `json:"id"`
	WebhookID    string `json:"webhook_id"`
	Event        string `json:"event"`
	Payload      []byte `json:"payload"`
	StatusCode   int    `json:"status_code"` // 0 when the request never completed
	Success      bool   `json:"success"`
	ResponseBody string `json:"response_body,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}
