package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"hookd/internal/engine/dispatch"
	"hookd/internal/engine/event"
	"hookd/internal/platform/config"
	"hookd/internal/platform/models"
)

type fakeSubSource struct {
	subs map[string][]*models.Subscription
	err  error
}

func (f *fakeSubSource) ActiveByTenant(_ context.Context, tenantID string) ([]*models.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.subs[tenantID], nil
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, *event.Event, dispatch.Outcome) {}

func newTestHandler(source *fakeSubSource) *DispatchHandler {
	resolver := dispatch.NewResolver(source)
	dispatcher := dispatch.NewDispatcher(nil, config.DispatchConfig{RequestTimeout: 2 * time.Second}, nil)
	svc := dispatch.NewService(resolver, dispatcher, nopRecorder{}, nil)
	return NewDispatchHandler(svc)
}

func TestDispatchHandler_InvalidBody(t *testing.T) {
	h := newTestHandler(&fakeSubSource{})

	for _, body := range []string{"not json", "", "null"} {
		req := httptest.NewRequest(http.MethodPost, "/internal/v1/dispatch", strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.Dispatch(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rr.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("body %q: decoding response: %v", body, err)
		}
		if resp["error"] != "invalid request body" {
			t.Errorf("body %q: error = %q", body, resp["error"])
		}
	}
}

func TestDispatchHandler_LookupFailure(t *testing.T) {
	h := newTestHandler(&fakeSubSource{err: errors.New("db locked")})

	req := httptest.NewRequest(http.MethodPost, "/internal/v1/dispatch",
		strings.NewReader(`{"event":"contact.created","tenant_id":"T1"}`))
	rr := httptest.NewRecorder()
	h.Dispatch(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["error"] != "failed to load webhook subscriptions" {
		t.Errorf("error = %q", resp["error"])
	}
	if resp["details"] != "db locked" {
		t.Errorf("details = %q", resp["details"])
	}
}

func TestDispatchHandler_NoSubscribers(t *testing.T) {
	h := newTestHandler(&fakeSubSource{})

	req := httptest.NewRequest(http.MethodPost, "/internal/v1/dispatch",
		strings.NewReader(`{"event":"contact.created","tenant_id":"T1"}`))
	rr := httptest.NewRecorder()
	h.Dispatch(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var summary dispatch.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if summary.Message != "no active webhooks" {
		t.Errorf("message = %q", summary.Message)
	}
	if summary.Total != 0 || summary.Successful != 0 {
		t.Errorf("totals = %d/%d, want 0/0", summary.Successful, summary.Total)
	}
	if summary.Results == nil || len(summary.Results) != 0 {
		t.Errorf("results = %v, want empty array", summary.Results)
	}
}

func TestDispatchHandler_FullPipeline(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Webhook-Event") != "deal.updated" {
			t.Errorf("X-Webhook-Event = %q", r.Header.Get("X-Webhook-Event"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	h := newTestHandler(&fakeSubSource{subs: map[string][]*models.Subscription{
		"T1": {
			{ID: "sub_1", TenantID: "T1", URL: ok.URL, Events: []string{"deal.updated"}, Secret: "whsec_a", IsActive: true},
			{ID: "sub_2", TenantID: "T1", URL: failing.URL, Events: []string{"*"}, Secret: "whsec_b", IsActive: true},
		},
	}})

	req := httptest.NewRequest(http.MethodPost, "/internal/v1/dispatch",
		strings.NewReader(`{"event_type":"deal.updated","tenantId":"T1","payload":{"id":42}}`))
	rr := httptest.NewRecorder()
	h.Dispatch(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var summary dispatch.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if summary.Total != 2 || summary.Successful != 1 {
		t.Errorf("totals = %d/%d, want 1/2", summary.Successful, summary.Total)
	}
	if summary.Message != "delivered to 1 of 2 webhooks" {
		t.Errorf("message = %q", summary.Message)
	}

	byID := make(map[string]dispatch.Result, len(summary.Results))
	for _, res := range summary.Results {
		byID[res.WebhookID] = res
	}
	if res := byID["sub_1"]; !res.Success || res.StatusCode != http.StatusOK {
		t.Errorf("sub_1 result = %+v", res)
	}
	if res := byID["sub_2"]; res.Success || res.StatusCode != http.StatusBadGateway {
		t.Errorf("sub_2 result = %+v", res)
	}
}
