package dispatch

import (
	"context"
	"time"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/pkg/messaging"
)

// Runner drives the dispatcher from two sources: a periodic tick and nudge
// messages on the process-queue channel (trigger endpoints and the
// dispatcher's own continuation signal).
type Runner struct {
	dispatcher   *Dispatcher
	broker       messaging.Broker
	pollInterval time.Duration
}

func NewRunner(dispatcher *Dispatcher, broker messaging.Broker, pollInterval time.Duration) *Runner {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &Runner{
		dispatcher:   dispatcher,
		broker:       broker,
		pollInterval: pollInterval,
	}
}

// Start blocks until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	var nudges <-chan []byte
	if r.broker != nil {
		ch, err := r.broker.Subscribe(ctx, messaging.ChannelProcessQueue)
		if err != nil {
			return err
		}
		nudges = ch
	}

	r.dispatcher.logger.Info("dispatch runner started", "poll_interval", r.pollInterval.String())

	for {
		select {
		case <-ctx.Done():
			r.dispatcher.logger.Info("dispatch runner shutting down")
			return ctx.Err()
		case <-ticker.C:
			r.runOnce(ctx)
		case _, ok := <-nudges:
			if !ok {
				nudges = nil
				continue
			}
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	summary, err := r.dispatcher.ProcessQueue(ctx)
	if err != nil {
		r.dispatcher.logger.Error(err, "dispatch run failed")
		return
	}
	if summary.Processed > 0 {
		r.dispatcher.logger.Info("dispatch run finished",
			"processed", summary.Processed, "more", summary.More)
	}

	if pending, err := r.dispatcher.queue.CountByStatus(ctx, model.QueueStatusPending); err == nil {
		r.dispatcher.metrics.QueuePendingDepth.Set(float64(pending))
	}
}
