// Package dispatch drains due queue entries to the messaging provider. Each
// run is short-lived and bounded: claim a batch, send sequentially, record
// terminal statuses, and emit a continuation nudge when the batch was full.
package dispatch

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/repository"
	"github.com/pilger-eventos/rsvp-api/internal/service/appconfig"
	"github.com/pilger-eventos/rsvp-api/internal/service/phone"
	"github.com/pilger-eventos/rsvp-api/internal/whatsapp"
	apperrors "github.com/pilger-eventos/rsvp-api/pkg/errors"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
	"github.com/pilger-eventos/rsvp-api/pkg/messaging"
	"github.com/pilger-eventos/rsvp-api/pkg/metrics"
)

type Config struct {
	// BatchSize bounds one run. A full batch signals that more work may
	// remain and triggers a continuation nudge.
	BatchSize int
	// MessageDelay paces sequential sends against provider rate limits.
	MessageDelay time.Duration
}

type Dispatcher struct {
	queue   repository.QueueRepository
	guests  repository.GuestRepository
	cfg     *appconfig.Service
	sender  whatsapp.Sender
	broker  messaging.Broker
	config  Config
	logger  *logger.Logger
	metrics *metrics.Metrics

	// sleep is replaceable in tests to avoid real pacing delays.
	sleep func(time.Duration)
}

func New(
	queue repository.QueueRepository,
	guests repository.GuestRepository,
	cfg *appconfig.Service,
	sender whatsapp.Sender,
	broker messaging.Broker,
	config Config,
	log *logger.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.MessageDelay < 0 {
		config.MessageDelay = 0
	}
	return &Dispatcher{
		queue:   queue,
		guests:  guests,
		cfg:     cfg,
		sender:  sender,
		broker:  broker,
		config:  config,
		logger:  log,
		metrics: m,
		sleep:   time.Sleep,
	}
}

// ProcessQueue runs one dispatch invocation. Configuration or store failures
// abort the run before or mid-batch; per-entry failures (missing phone,
// provider rejection) mark that entry failed and never stop the batch.
func (d *Dispatcher) ProcessQueue(ctx context.Context) (*model.DispatchSummary, error) {
	timer := prometheus.NewTimer(d.metrics.DispatchLatency)
	defer timer.ObserveDuration()

	// Credentials are loaded fresh each run. Missing credentials are an
	// operational fault: nothing is claimed, entries stay pending for the
	// next tick.
	creds, err := d.cfg.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := d.queue.ClaimPendingDue(ctx, d.config.BatchSize, time.Now())
	if err != nil {
		d.metrics.DatabaseOperations.WithLabelValues("claim_pending", "error").Inc()
		return nil, apperrors.Internal(err)
	}
	d.metrics.DatabaseOperations.WithLabelValues("claim_pending", "success").Inc()

	summary := &model.DispatchSummary{Results: make([]model.DispatchResult, 0, len(entries))}
	if len(entries) == 0 {
		return summary, nil
	}

	for i, entry := range entries {
		result := d.processEntry(ctx, creds, entry)
		summary.Results = append(summary.Results, result)
		summary.Processed++

		// Pace sends; no delay after the last entry.
		if d.config.MessageDelay > 0 && i < len(entries)-1 {
			d.sleep(d.config.MessageDelay)
		}
	}

	// A full batch means more pending work may exist: nudge a follow-up
	// run instead of waiting for the next periodic tick.
	if len(entries) == d.config.BatchSize {
		summary.More = true
		d.metrics.Continuations.Inc()
		if d.broker != nil {
			if err := d.broker.Publish(ctx, messaging.ChannelProcessQueue, map[string]string{"source": "continuation"}); err != nil {
				d.logger.Error(err, "failed to publish continuation signal")
			}
		}
	}

	return summary, nil
}

func (d *Dispatcher) processEntry(ctx context.Context, creds whatsapp.Credentials, entry *model.QueueEntry) model.DispatchResult {
	number, ok := d.resolvePhone(ctx, entry)
	if !ok {
		d.fail(ctx, entry, "no phone number")
		return model.DispatchResult{ID: entry.ID, Status: model.QueueStatusFailed, Reason: "no phone number"}
	}

	if err := d.sender.SendText(ctx, creds, number, entry.Content); err != nil {
		d.logger.Error(err, "failed to send message", "entry_id", entry.ID.String())
		d.metrics.ProviderCalls.WithLabelValues("error").Inc()
		d.fail(ctx, entry, err.Error())
		return model.DispatchResult{ID: entry.ID, Status: model.QueueStatusFailed, Reason: err.Error()}
	}
	d.metrics.ProviderCalls.WithLabelValues("success").Inc()

	now := time.Now()
	if err := d.queue.UpdateStatus(ctx, entry.ID, model.QueueStatusSent, &now, nil); err != nil {
		// The message went out; the status write failing is a store fault
		// worth surfacing but not a send failure.
		d.logger.Error(err, "failed to mark entry sent", "entry_id", entry.ID.String())
	}
	d.metrics.MessagesSent.Inc()
	return model.DispatchResult{ID: entry.ID, Status: model.QueueStatusSent}
}

// resolvePhone prefers the entry's override recipient, then the referenced
// guest's own phone. The returned number is normalized.
func (d *Dispatcher) resolvePhone(ctx context.Context, entry *model.QueueEntry) (string, bool) {
	raw := ""
	if entry.TargetPhone != nil && *entry.TargetPhone != "" {
		raw = *entry.TargetPhone
	} else {
		guest, err := d.guests.Get(ctx, entry.GuestID)
		if err != nil {
			d.logger.Warn("entry references missing guest",
				"entry_id", entry.ID.String(), "guest_id", entry.GuestID.String())
			return "", false
		}
		raw = guest.Phone
	}
	if raw == "" {
		return "", false
	}
	return phone.Normalize(raw), true
}

func (d *Dispatcher) fail(ctx context.Context, entry *model.QueueEntry, reason string) {
	now := time.Now()
	if err := d.queue.UpdateStatus(ctx, entry.ID, model.QueueStatusFailed, &now, &reason); err != nil {
		d.logger.Error(err, "failed to mark entry failed", "entry_id", entry.ID.String())
	}
	d.metrics.MessagesFailed.Inc()
}
