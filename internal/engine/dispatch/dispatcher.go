// Package dispatch implements fan-out delivery of canonical events to
// tenant-registered webhook subscriptions.
package dispatch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"hookd/internal/engine/event"
	"hookd/internal/platform/config"
	"hookd/internal/platform/metrics"
	"hookd/internal/platform/models"
)

const (
	EventHeader     = "X-Webhook-Event"
	TimestampHeader = "X-Webhook-Timestamp"
	DeliveryHeader  = "X-Webhook-Delivery"
	SignatureHeader = "X-Webhook-Signature"
)

const defaultMaxResponseBytes = 64 << 10

// Outcome is what happened to one delivery attempt. Failures are data, not
// errors: a down subscriber never propagates past its own outcome.
type Outcome struct {
	DeliveryID   string
	WebhookID    string
	Payload      []byte
	Success      bool
	StatusCode   int // 0 when the request never completed
	ResponseBody string
	ErrorMessage string
}

// Recorder consumes one outcome per attempt, immediately after that attempt
// settles and independently of its siblings.
type Recorder interface {
	Record(ctx context.Context, ev *event.Event, out Outcome)
}

type Dispatcher struct {
	client           *http.Client
	maxConcurrent    int
	maxResponseBytes int64
	metrics          *metrics.Metrics
}

// NewDispatcher builds a dispatcher around an injected HTTP client so tests
// can point it at fake transports. A nil client gets the configured request
// timeout as its deadline.
func NewDispatcher(client *http.Client, cfg config.DispatchConfig, m *metrics.Metrics) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}
	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxResponseBytes
	}
	return &Dispatcher{
		client:           client,
		maxConcurrent:    cfg.MaxConcurrent,
		maxResponseBytes: maxBytes,
		metrics:          m,
	}
}

// Dispatch delivers the event to every subscription concurrently and joins
// before returning. Each attempt is a single POST; there is no retry. One
// outcome is produced per subscription regardless of how attempts end, and
// the recorder sees each outcome as soon as its attempt settles.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *event.Event, subs []*models.Subscription, rec Recorder) []Outcome {
	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		// Canonical events always marshal; a failure here means a producer
		// smuggled something unencodable through Data.
		payload = []byte(`{}`)
	}

	limit := d.maxConcurrent
	if limit <= 0 || limit > len(subs) {
		limit = len(subs)
	}

	outcomes := make([]Outcome, len(subs))
	p := pool.New().WithMaxGoroutines(limit)
	for i, sub := range subs {
		i, sub := i, sub
		p.Go(func() {
			out := d.deliver(ctx, sub, ev, payload)
			outcomes[i] = out
			if rec != nil {
				rec.Record(ctx, ev, out)
			}
		})
	}
	p.Wait()

	return outcomes
}

func (d *Dispatcher) deliver(ctx context.Context, sub *models.Subscription, ev *event.Event, payload []byte) Outcome {
	out := Outcome{
		DeliveryID: "del_" + uuid.New().String(),
		WebhookID:  sub.ID,
		Payload:    payload,
	}

	start := time.Now()
	defer func() {
		d.metrics.ObserveDelivery(out.Success, time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(payload))
	if err != nil {
		out.ErrorMessage = err.Error()
		return out
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventHeader, ev.Event)
	req.Header.Set(TimestampHeader, ev.Timestamp.UTC().Format(time.RFC3339))
	req.Header.Set(DeliveryHeader, out.DeliveryID)
	req.Header.Set(SignatureHeader, Sign(sub.Secret, payload))

	resp, err := d.client.Do(req)
	if err != nil {
		out.ErrorMessage = err.Error()
		return out
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, d.maxResponseBytes))
	out.StatusCode = resp.StatusCode
	out.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	out.ResponseBody = string(body)

	return out
}
