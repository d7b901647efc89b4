package event

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestNormalize_Aliases(t *testing.T) {
	tests := []struct {
		name       string
		raw        map[string]interface{}
		wantEvent  string
		wantEntity string
		wantTenant string
		wantUser   string
	}{
		{
			name: "canonical fields",
			raw: map[string]interface{}{
				"event":     "card.moved",
				"entity":    "card",
				"tenant_id": "t1",
				"user_id":   "u1",
			},
			wantEvent:  "card.moved",
			wantEntity: "card",
			wantTenant: "t1",
			wantUser:   "u1",
		},
		{
			name: "legacy event_type and tenantId",
			raw: map[string]interface{}{
				"event_type": "contact.created",
				"tenantId":   "t2",
			},
			wantEvent:  "contact.created",
			wantEntity: UnknownValue,
			wantTenant: "t2",
		},
		{
			name: "oldest aliases type org_id actor_id",
			raw: map[string]interface{}{
				"type":     "task.deleted",
				"resource": "task",
				"org_id":   "t3",
				"actor_id": "u3",
			},
			wantEvent:  "task.deleted",
			wantEntity: "task",
			wantTenant: "t3",
			wantUser:   "u3",
		},
		{
			name: "first alias wins over later ones",
			raw: map[string]interface{}{
				"event":      "contact.updated",
				"event_type": "contact.created",
				"tenant_id":  "t4",
				"org_id":     "other",
			},
			wantEvent:  "contact.updated",
			wantEntity: UnknownValue,
			wantTenant: "t4",
		},
		{
			name:       "empty input fails closed",
			raw:        map[string]interface{}{},
			wantEvent:  UnknownValue,
			wantEntity: UnknownValue,
			wantTenant: UnknownValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Normalize(tt.raw)
			if ev.Event != tt.wantEvent {
				t.Errorf("Event = %q, want %q", ev.Event, tt.wantEvent)
			}
			if ev.Entity != tt.wantEntity {
				t.Errorf("Entity = %q, want %q", ev.Entity, tt.wantEntity)
			}
			if ev.TenantID != tt.wantTenant {
				t.Errorf("TenantID = %q, want %q", ev.TenantID, tt.wantTenant)
			}
			if tt.wantUser == "" {
				if ev.UserID != nil {
					t.Errorf("UserID = %q, want nil", *ev.UserID)
				}
			} else if ev.UserID == nil || *ev.UserID != tt.wantUser {
				t.Errorf("UserID = %v, want %q", ev.UserID, tt.wantUser)
			}
		})
	}
}

func TestNormalize_Timestamp(t *testing.T) {
	t.Run("RFC3339 string", func(t *testing.T) {
		ev := Normalize(map[string]interface{}{"timestamp": "2026-02-03T10:00:00Z"})
		want := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
		if !ev.Timestamp.Equal(want) {
			t.Errorf("Timestamp = %v, want %v", ev.Timestamp, want)
		}
	})

	t.Run("unix seconds", func(t *testing.T) {
		ev := Normalize(map[string]interface{}{"created_at": float64(1700000000)})
		if ev.Timestamp.Unix() != 1700000000 {
			t.Errorf("Timestamp = %v, want unix 1700000000", ev.Timestamp)
		}
	})

	t.Run("missing defaults to now", func(t *testing.T) {
		before := time.Now()
		ev := Normalize(map[string]interface{}{})
		after := time.Now()
		if ev.Timestamp.Before(before.Add(-time.Second)) || ev.Timestamp.After(after.Add(time.Second)) {
			t.Errorf("Timestamp = %v, want roughly now", ev.Timestamp)
		}
	})
}

func TestNormalize_Data(t *testing.T) {
	t.Run("data alias", func(t *testing.T) {
		ev := Normalize(map[string]interface{}{
			"event": "contact.created",
			"data":  map[string]interface{}{"id": "c1"},
		})
		var got map[string]string
		if err := json.Unmarshal(ev.Data, &got); err != nil {
			t.Fatalf("unmarshaling data: %v", err)
		}
		if got["id"] != "c1" {
			t.Errorf("data.id = %q, want c1", got["id"])
		}
	})

	t.Run("payload alias", func(t *testing.T) {
		ev := Normalize(map[string]interface{}{
			"payload": map[string]interface{}{"before": "a", "after": "b"},
		})
		var got map[string]string
		if err := json.Unmarshal(ev.Data, &got); err != nil {
			t.Fatalf("unmarshaling data: %v", err)
		}
		if got["before"] != "a" || got["after"] != "b" {
			t.Errorf("data = %v, want before/after", got)
		}
	})

	t.Run("no alias keeps the raw input", func(t *testing.T) {
		ev := Normalize(map[string]interface{}{
			"event": "card.moved",
			"extra": "kept",
		})
		var got map[string]interface{}
		if err := json.Unmarshal(ev.Data, &got); err != nil {
			t.Fatalf("unmarshaling data: %v", err)
		}
		if got["extra"] != "kept" {
			t.Errorf("data = %v, want raw input with extra field", got)
		}
	})
}

// Normalizing an already-canonical event must be a no-op: the canonical JSON
// round-trips through the alias probes unchanged.
func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize(map[string]interface{}{
		"event_type": "card.moved",
		"entity":     "card",
		"tenantId":   "t1",
		"user_id":    "u1",
		"timestamp":  "2026-02-03T10:00:00Z",
		"data":       map[string]interface{}{"id": "k1"},
	})

	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshaling canonical event: %v", err)
	}
	var roundTripped map[string]interface{}
	if err := json.Unmarshal(encoded, &roundTripped); err != nil {
		t.Fatalf("unmarshaling canonical event: %v", err)
	}

	second := Normalize(roundTripped)

	if second.Event != first.Event || second.Entity != first.Entity || second.TenantID != first.TenantID {
		t.Errorf("re-normalization changed identity fields: %+v vs %+v", second, first)
	}
	if (second.UserID == nil) != (first.UserID == nil) || (second.UserID != nil && *second.UserID != *first.UserID) {
		t.Errorf("re-normalization changed user id")
	}
	if !second.Timestamp.Equal(first.Timestamp) {
		t.Errorf("re-normalization changed timestamp: %v vs %v", second.Timestamp, first.Timestamp)
	}

	var firstData, secondData map[string]interface{}
	if err := json.Unmarshal(first.Data, &firstData); err != nil {
		t.Fatalf("unmarshaling first data: %v", err)
	}
	if err := json.Unmarshal(second.Data, &secondData); err != nil {
		t.Fatalf("unmarshaling second data: %v", err)
	}
	if firstData["id"] != secondData["id"] {
		t.Errorf("re-normalization changed data: %v vs %v", secondData, firstData)
	}
}
