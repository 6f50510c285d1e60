package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/contract"
)

// Dispatcher separates "booking recorded" from "confirmation delivered": the
// send is attempted inline, and on failure the job moves to the retry queue
// instead of blocking or failing the booking.
type Dispatcher struct {
	notifier contractx.Notifier
	queue    RetryQueue
}

func NewDispatcher(notifier contractx.Notifier, queue RetryQueue) *Dispatcher {
	if queue == nil {
		queue = NopQueue{}
	}
	return &Dispatcher{notifier: notifier, queue: queue}
}

// Dispatch reports whether the confirmation went out inline. False means the
// delivery is pending (queued or lost); it is never an error for the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, conf contractx.Confirmation) bool {
	err := d.notifier.SendConfirmation(ctx, conf)
	if err == nil {
		return true
	}

	log.Warn().Err(err).Str("email", conf.Email).Int64("property_id", conf.PropertyID).
		Msg("confirmation send failed, enqueueing for retry")
	if qerr := d.queue.Enqueue(ctx, RetryJob{Confirmation: conf}); qerr != nil {
		log.Error().Err(qerr).Str("email", conf.Email).Msg("retry enqueue failed")
	}
	return false
}
