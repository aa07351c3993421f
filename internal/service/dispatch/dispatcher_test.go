package dispatch

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/repository/memory"
	"github.com/pilger-eventos/rsvp-api/internal/service/appconfig"
	"github.com/pilger-eventos/rsvp-api/internal/whatsapp"
	apperrors "github.com/pilger-eventos/rsvp-api/pkg/errors"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
	"github.com/pilger-eventos/rsvp-api/pkg/metrics"
)

type fakeSender struct {
	mu    sync.Mutex
	calls []sentMessage
	// failFor rejects sends to specific numbers.
	failFor map[string]error
}

type sentMessage struct {
	Number string
	Text   string
}

func (f *fakeSender) SendText(_ context.Context, _ whatsapp.Credentials, number, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[number]; ok {
		return err
	}
	f.calls = append(f.calls, sentMessage{Number: number, Text: text})
	return nil
}

func (f *fakeSender) sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeBroker struct {
	mu        sync.Mutex
	published []string
}

func (f *fakeBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, channel)
	return nil
}

func (f *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	return ch, nil
}

func (f *fakeBroker) Close() error { return nil }

func (f *fakeBroker) publishCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

type fixture struct {
	dispatcher *Dispatcher
	queue      *memory.QueueRepository
	guests     *memory.GuestRepository
	configRepo *memory.AppConfigRepository
	sender     *fakeSender
	broker     *fakeBroker
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	queue := memory.NewQueueRepository()
	guests := memory.NewGuestRepository()
	configRepo := memory.NewAppConfigRepository()
	sender := &fakeSender{failFor: map[string]error{}}
	broker := &fakeBroker{}
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})

	ctx := context.Background()
	for key, value := range map[string]string{
		model.ConfigKeyAPIURL:   "https://wa.example.com",
		model.ConfigKeyAPIKey:   "secret",
		model.ConfigKeyInstance: "main",
	} {
		require.NoError(t, configRepo.Upsert(ctx, &model.ConfigEntry{Key: key, Value: value}))
	}

	d := New(queue, guests, appconfig.NewService(configRepo), sender, broker, cfg, log, metrics.New("test"))
	d.sleep = func(time.Duration) {}

	return &fixture{
		dispatcher: d,
		queue:      queue,
		guests:     guests,
		configRepo: configRepo,
		sender:     sender,
		broker:     broker,
	}
}

func (f *fixture) addGuest(t *testing.T, name, phone string) *model.Guest {
	t.Helper()
	g := &model.Guest{ID: uuid.New(), Name: name, Phone: phone, Status: model.GuestStatusConfirmed}
	require.NoError(t, f.guests.Create(context.Background(), g))
	return g
}

func (f *fixture) enqueue(t *testing.T, guestID uuid.UUID, content string, due time.Time) *model.QueueEntry {
	t.Helper()
	entry := &model.QueueEntry{GuestID: guestID, Content: content, ScheduledFor: due}
	require.NoError(t, f.queue.InsertEntries(context.Background(), []*model.QueueEntry{entry}))
	return entry
}

func TestProcessQueueSendsDueEntries(t *testing.T) {
	f := newFixture(t, Config{BatchSize: 50})
	ctx := context.Background()

	g := f.addGuest(t, "Maria", "(51) 99876-5432")
	past := time.Now().Add(-time.Minute)
	f.enqueue(t, g.ID, "primeira", past)
	f.enqueue(t, g.ID, "segunda", past)

	summary, err := f.dispatcher.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.False(t, summary.More)

	sent := f.sender.sent()
	require.Len(t, sent, 2)
	// Oldest entry goes out first, with the normalized number.
	assert.Equal(t, "5551998765432", sent[0].Number)
	assert.Equal(t, "primeira", sent[0].Text)
	assert.Equal(t, "segunda", sent[1].Text)

	for _, e := range f.queue.All() {
		assert.Equal(t, model.QueueStatusSent, e.Status)
		assert.NotNil(t, e.SentAt)
		assert.Nil(t, e.LastError)
	}
}

func TestProcessQueueIgnoresFutureEntries(t *testing.T) {
	f := newFixture(t, Config{BatchSize: 50})
	ctx := context.Background()

	g := f.addGuest(t, "Maria", "51999990000")
	f.enqueue(t, g.ID, "agora", time.Now().Add(-time.Second))
	f.enqueue(t, g.ID, "depois", time.Now().Add(time.Hour))

	summary, err := f.dispatcher.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)

	pending, err := f.queue.CountByStatus(ctx, model.QueueStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestProcessQueueUsesTargetPhoneOverride(t *testing.T) {
	f := newFixture(t, Config{BatchSize: 50})
	ctx := context.Background()

	g := f.addGuest(t, "Maria", "51999990000")
	target := "(51) 91111-2222"
	entry := &model.QueueEntry{
		GuestID:      g.ID,
		Content:      "para o acompanhante",
		ScheduledFor: time.Now().Add(-time.Minute),
		TargetPhone:  &target,
	}
	require.NoError(t, f.queue.InsertEntries(ctx, []*model.QueueEntry{entry}))

	_, err := f.dispatcher.ProcessQueue(ctx)
	require.NoError(t, err)

	sent := f.sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "5551911112222", sent[0].Number)
}

func TestProcessQueueMissingPhoneFailsWithoutProviderCall(t *testing.T) {
	f := newFixture(t, Config{BatchSize: 50})
	ctx := context.Background()

	// Entry references a guest that no longer exists.
	f.enqueue(t, uuid.New(), "órfã", time.Now().Add(-time.Minute))

	summary, err := f.dispatcher.ProcessQueue(ctx)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, model.QueueStatusFailed, summary.Results[0].Status)
	assert.Equal(t, "no phone number", summary.Results[0].Reason)
	assert.Empty(t, f.sender.sent())

	entries := f.queue.All()
	require.Len(t, entries, 1)
	assert.Equal(t, model.QueueStatusFailed, entries[0].Status)
	require.NotNil(t, entries[0].LastError)
}

func TestProcessQueueProviderErrorFailsEntryButBatchContinues(t *testing.T) {
	f := newFixture(t, Config{BatchSize: 50})
	ctx := context.Background()

	bad := f.addGuest(t, "Rui", "51900000000")
	good := f.addGuest(t, "Maria", "51911111111")
	f.sender.failFor["5551900000000"] = &whatsapp.ProviderError{StatusCode: 500, Body: "boom"}

	f.enqueue(t, bad.ID, "falha", time.Now().Add(-2*time.Minute))
	f.enqueue(t, good.ID, "sucesso", time.Now().Add(-time.Minute))

	summary, err := f.dispatcher.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)

	require.Len(t, f.sender.sent(), 1)
	assert.Equal(t, "sucesso", f.sender.sent()[0].Text)

	byContent := map[string]model.QueueStatus{}
	for _, e := range f.queue.All() {
		byContent[e.Content] = e.Status
	}
	assert.Equal(t, model.QueueStatusFailed, byContent["falha"])
	assert.Equal(t, model.QueueStatusSent, byContent["sucesso"])
}

func TestProcessQueueFullBatchEmitsContinuation(t *testing.T) {
	f := newFixture(t, Config{BatchSize: 3})
	ctx := context.Background()

	g := f.addGuest(t, "Maria", "51999990000")
	past := time.Now().Add(-time.Minute)
	for i := 0; i < 4; i++ {
		f.enqueue(t, g.ID, "msg", past)
	}

	summary, err := f.dispatcher.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.True(t, summary.More)
	assert.Equal(t, 1, f.broker.publishCount())

	// A follow-up run drains the remainder without another continuation.
	summary, err = f.dispatcher.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.False(t, summary.More)
	assert.Equal(t, 1, f.broker.publishCount())
}

func TestProcessQueueDrainedQueueIsIdempotent(t *testing.T) {
	f := newFixture(t, Config{BatchSize: 50})
	ctx := context.Background()

	g := f.addGuest(t, "Maria", "51999990000")
	f.enqueue(t, g.ID, "msg", time.Now().Add(-time.Minute))

	_, err := f.dispatcher.ProcessQueue(ctx)
	require.NoError(t, err)

	summary, err := f.dispatcher.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Processed)
	require.Len(t, f.sender.sent(), 1)
}

func TestProcessQueueAbortsWhenConfigMissing(t *testing.T) {
	f := newFixture(t, Config{BatchSize: 50})
	ctx := context.Background()

	// Blank out a required credential.
	require.NoError(t, f.configRepo.Upsert(ctx, &model.ConfigEntry{Key: model.ConfigKeyAPIKey, Value: ""}))

	g := f.addGuest(t, "Maria", "51999990000")
	f.enqueue(t, g.ID, "msg", time.Now().Add(-time.Minute))

	_, err := f.dispatcher.ProcessQueue(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))

	// Nothing was claimed; the entry stays pending for the next run.
	pending, err := f.queue.CountByStatus(ctx, model.QueueStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
	assert.Empty(t, f.sender.sent())
}

func TestProcessQueuePacesBetweenSends(t *testing.T) {
	f := newFixture(t, Config{BatchSize: 50, MessageDelay: 500 * time.Millisecond})
	ctx := context.Background()

	var slept []time.Duration
	f.dispatcher.sleep = func(d time.Duration) { slept = append(slept, d) }

	g := f.addGuest(t, "Maria", "51999990000")
	past := time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		f.enqueue(t, g.ID, "msg", past)
	}

	_, err := f.dispatcher.ProcessQueue(ctx)
	require.NoError(t, err)

	// Delay between sends only, never after the last one.
	require.Len(t, slept, 2)
	for _, d := range slept {
		assert.Equal(t, 500*time.Millisecond, d)
	}
}
