// Package event normalizes loosely-typed inbound domain events into the
// canonical shape the dispatch pipeline works with.
package event

import (
	"time"

	"github.com/goccy/go-json"
)

// UnknownValue is the fail-closed default for unresolvable fields. An event
// with tenant "unknown" matches no subscriptions.
const UnknownValue = "unknown"

// Event is the canonical dispatch event. It lives in memory only; the full
// snapshot sent to a subscriber is persisted on each delivery log row.
type Event struct {
	Event     string          `json:"event"`
	Entity    string          `json:"entity"`
	Data      json.RawMessage `json:"data"`
	TenantID  string          `json:"tenant_id"`
	UserID    *string         `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
}
