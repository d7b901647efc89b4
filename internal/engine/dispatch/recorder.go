package dispatch

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hookd/internal/engine/event"
	"hookd/internal/platform/models"
)

// DeliverySink is the slice of the delivery log store the recorder needs.
// *repositories.DeliveryLogRepository satisfies it.
type DeliverySink interface {
	Record(ctx context.Context, entry *models.DeliveryLog) error
}

// LogRecorder writes exactly one delivery log row per outcome. A rejected
// write is logged and swallowed: bookkeeping for one attempt must not abort
// sibling attempts or fail the invocation.
type LogRecorder struct {
	sink DeliverySink
	log  zerolog.Logger
}

func NewLogRecorder(sink DeliverySink) *LogRecorder {
	return &LogRecorder{
		sink: sink,
		log:  log.With().Str("component", "recorder").Logger(),
	}
}

func (r *LogRecorder) Record(ctx context.Context, ev *event.Event, out Outcome) {
	entry := &models.DeliveryLog{
		ID:           out.DeliveryID,
		WebhookID:    out.WebhookID,
		Event:        ev.Event,
		Payload:      out.Payload,
		StatusCode:   out.StatusCode,
		Success:      out.Success,
		ResponseBody: out.ResponseBody,
		ErrorMessage: out.ErrorMessage,
	}

	if err := r.sink.Record(ctx, entry); err != nil {
		r.log.Error().Err(err).
			Str("webhook_id", out.WebhookID).
			Str("delivery_id", out.DeliveryID).
			Msg("failed to record delivery attempt")
	}
}
