package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hookd/internal/platform/models"
)

func TestService_Run_NoSubscriptions(t *testing.T) {
	resolver := NewResolver(&fakeSubscriptionSource{byTenant: map[string][]*models.Subscription{}})
	svc := NewService(resolver, newTestDispatcher(time.Second), &captureRecorder{}, nil)

	summary, err := svc.Run(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Message != "no active webhooks" {
		t.Errorf("Message = %q, want 'no active webhooks'", summary.Message)
	}
	if summary.Total != 0 || summary.Successful != 0 {
		t.Errorf("Total/Successful = %d/%d, want 0/0", summary.Total, summary.Successful)
	}
	if summary.Results == nil || len(summary.Results) != 0 {
		t.Errorf("Results = %v, want empty slice", summary.Results)
	}
}

func TestService_Run_Aggregates(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer okServer.Close()
	failServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failServer.Close()

	resolver := NewResolver(&fakeSubscriptionSource{byTenant: map[string][]*models.Subscription{
		"T1": {
			{ID: "sub_ok", TenantID: "T1", URL: okServer.URL, Events: []string{"*"}, Secret: "s", IsActive: true},
			{ID: "sub_bad", TenantID: "T1", URL: failServer.URL, Events: []string{"*"}, Secret: "s", IsActive: true},
		},
	}})
	rec := &captureRecorder{}
	svc := NewService(resolver, newTestDispatcher(time.Second), rec, nil)

	summary, err := svc.Run(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Total != 2 {
		t.Errorf("Total = %d, want 2", summary.Total)
	}
	if summary.Successful != 1 {
		t.Errorf("Successful = %d, want 1", summary.Successful)
	}
	if summary.Message != "delivered to 1 of 2 webhooks" {
		t.Errorf("Message = %q", summary.Message)
	}

	for _, res := range summary.Results {
		switch res.WebhookID {
		case "sub_ok":
			if !res.Success || res.StatusCode != http.StatusOK {
				t.Errorf("sub_ok result = %+v", res)
			}
		case "sub_bad":
			if res.Success || res.StatusCode != http.StatusBadGateway {
				t.Errorf("sub_bad result = %+v", res)
			}
		default:
			t.Errorf("unexpected result %+v", res)
		}
	}

	if rec.len() != 2 {
		t.Errorf("recorder saw %d outcomes, want one per resolved subscription", rec.len())
	}
}

func TestService_Run_StoreFailure(t *testing.T) {
	resolver := NewResolver(&fakeSubscriptionSource{err: errors.New("store down")})
	svc := NewService(resolver, newTestDispatcher(time.Second), &captureRecorder{}, nil)

	if _, err := svc.Run(context.Background(), testEvent()); err == nil {
		t.Fatal("Run() error = nil, want subscription lookup failure")
	}
}
