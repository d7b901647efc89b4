package event

import (
	"time"

	"github.com/goccy/go-json"
)

// Producer code paths evolved independently and disagree on field names.
// Each canonical field probes an ordered alias list and takes the first
// defined value; everything else falls back to a stated default. Past the
// normalizer the pipeline assumes the canonical shape.
var (
	eventAliases     = []string{"event", "event_type", "type"}
	entityAliases    = []string{"entity", "entity_type", "resource"}
	tenantAliases    = []string{"tenant_id", "tenantId", "org_id", "organization_id"}
	userAliases      = []string{"user_id", "userId", "actor_id"}
	timestampAliases = []string{"timestamp", "created_at", "occurred_at"}
	dataAliases      = []string{"data", "payload"}
)

// Normalize converts any object-shaped input into a canonical Event. It is a
// pure function of its input and never fails: missing fields get defaults.
// Deciding whether the raw request body parses at all is the endpoint's job.
func Normalize(raw map[string]interface{}) *Event {
	ev := &Event{
		Event:     stringField(raw, eventAliases, UnknownValue),
		Entity:    stringField(raw, entityAliases, UnknownValue),
		TenantID:  stringField(raw, tenantAliases, UnknownValue),
		UserID:    optionalString(raw, userAliases),
		Timestamp: timestampField(raw, timestampAliases),
		Data:      dataField(raw, dataAliases),
	}
	return ev
}

func stringField(raw map[string]interface{}, aliases []string, fallback string) string {
	for _, key := range aliases {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func optionalString(raw map[string]interface{}, aliases []string) *string {
	for _, key := range aliases {
		if s, ok := raw[key].(string); ok && s != "" {
			return &s
		}
	}
	return nil
}

func timestampField(raw map[string]interface{}, aliases []string) time.Time {
	for _, key := range aliases {
		switch v := raw[key].(type) {
		case string:
			if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
				return ts
			}
			if ts, err := time.Parse(time.RFC3339, v); err == nil {
				return ts
			}
		case float64:
			// Unix seconds from producers that send numeric timestamps.
			return time.Unix(int64(v), 0).UTC()
		case json.Number:
			if sec, err := v.Int64(); err == nil {
				return time.Unix(sec, 0).UTC()
			}
		}
	}
	return time.Now().UTC()
}

// dataField takes the first data/payload alias, or the raw input itself when
// neither is present, so nothing a producer sent is ever silently dropped.
func dataField(raw map[string]interface{}, aliases []string) json.RawMessage {
	for _, key := range aliases {
		if v, ok := raw[key]; ok && v != nil {
			return marshalData(v)
		}
	}
	return marshalData(raw)
}

func marshalData(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`null`)
	}
	return b
}
