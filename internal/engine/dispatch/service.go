package dispatch

import (
	"context"
	"fmt"

	"hookd/internal/engine/event"
	"hookd/internal/platform/metrics"
)

type Result struct {
	WebhookID  string `json:"webhook_id"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

type Summary struct {
	Message    string   `json:"message"`
	Results    []Result `json:"results"`
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
}

// Service wires resolver, dispatcher and recorder into the single
// synchronous dispatch pass: resolve -> fan out -> record -> aggregate.
type Service struct {
	resolver   *Resolver
	dispatcher *Dispatcher
	recorder   Recorder
	metrics    *metrics.Metrics
}

func NewService(resolver *Resolver, dispatcher *Dispatcher, recorder Recorder, m *metrics.Metrics) *Service {
	return &Service{
		resolver:   resolver,
		dispatcher: dispatcher,
		recorder:   recorder,
		metrics:    m,
	}
}

// Run executes one dispatch invocation. The only error it returns is a
// subscription lookup failure; delivery failures are folded into the summary.
func (s *Service) Run(ctx context.Context, ev *event.Event) (*Summary, error) {
	s.metrics.ObserveDispatch()

	subs, err := s.resolver.Resolve(ctx, ev.TenantID, ev.Event)
	if err != nil {
		return nil, err
	}

	if len(subs) == 0 {
		return &Summary{
			Message: "no active webhooks",
			Results: []Result{},
		}, nil
	}

	outcomes := s.dispatcher.Dispatch(ctx, ev, subs, s.recorder)

	summary := &Summary{
		Results: make([]Result, 0, len(outcomes)),
		Total:   len(outcomes),
	}
	for _, out := range outcomes {
		summary.Results = append(summary.Results, Result{
			WebhookID:  out.WebhookID,
			Success:    out.Success,
			StatusCode: out.StatusCode,
			Error:      out.ErrorMessage,
		})
		if out.Success {
			summary.Successful++
		}
	}
	summary.Message = fmt.Sprintf("delivered to %d of %d webhooks", summary.Successful, summary.Total)

	return summary, nil
}
