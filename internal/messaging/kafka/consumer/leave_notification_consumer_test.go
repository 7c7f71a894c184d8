package consumer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flexileave/internal/events"
	"flexileave/internal/messaging/kafka/consumer"
	notificationerrors "flexileave/internal/notification/errors"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeHandler struct {
	mu       sync.Mutex
	err      error
	failures map[string]int
	seen     []events.LeaveStatusChangedEvent
}

func (f *fakeHandler) HandleLeaveEvent(_ context.Context, e events.LeaveStatusChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, e)
	if f.failures[e.LeaveID] > 0 {
		f.failures[e.LeaveID]--
		return errors.New("smtp unavailable")
	}
	return f.err
}

func (f *fakeHandler) seenSnapshot() []events.LeaveStatusChangedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.LeaveStatusChangedEvent(nil), f.seen...)
}

type fakeReader struct {
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(f.msgs) == 0 {
		f.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func TestHandleLeaveMessage(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()
	valid := kafkago.Message{Value: []byte(`{"event_type":"leave_approved","leave_id":"l-1","owner_id":"u-1","days":3}`)}

	t.Run("handled", func(t *testing.T) {
		h := &fakeHandler{}
		assert.True(t, consumer.HandleLeaveMessage(ctx, valid, h, log))
		assert.Equal(t, events.LeaveApproved, h.seen[0].EventType)
		assert.Equal(t, 3, h.seen[0].Days)
	})

	t.Run("undecodable is skipped", func(t *testing.T) {
		h := &fakeHandler{}
		assert.True(t, consumer.HandleLeaveMessage(ctx, kafkago.Message{Value: []byte("{")}, h, log))
		assert.Empty(t, h.seen)
	})

	t.Run("malformed is skipped", func(t *testing.T) {
		assert.True(t, consumer.HandleLeaveMessage(ctx, valid, &fakeHandler{err: notificationerrors.ErrMalformedEvent}, log))
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		assert.False(t, consumer.HandleLeaveMessage(ctx, valid, &fakeHandler{err: errors.New("db down")}, log))
	})
}

func TestConsumeLeaveNotifications(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		msgs: []kafkago.Message{
			{Offset: 1, Value: []byte(`{"event_type":"leave_submitted","leave_id":"l-1","owner_id":"u-1"}`)},
			{Offset: 2, Value: []byte(`not json`)},
		},
	}
	h := &fakeHandler{}

	consumer.ConsumeLeaveNotifications(ctx, reader, h, time.Millisecond, zap.NewNop())

	assert.Equal(t, []int64{1, 2}, reader.committed)
	assert.Len(t, h.seen, 1)
}

func TestConsumeLeaveNotifications_RetriesTransientFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		msgs: []kafkago.Message{
			{Offset: 1, Value: []byte(`{"event_type":"leave_approved","leave_id":"l-1","owner_id":"u-1"}`)},
			{Offset: 2, Value: []byte(`{"event_type":"leave_rejected","leave_id":"l-2","owner_id":"u-1"}`)},
		},
	}
	h := &fakeHandler{failures: map[string]int{"l-1": 1}}

	consumer.ConsumeLeaveNotifications(ctx, reader, h, time.Millisecond, zap.NewNop())

	if assert.Len(t, h.seen, 3) {
		assert.Equal(t, "l-1", h.seen[0].LeaveID)
		assert.Equal(t, "l-1", h.seen[1].LeaveID)
		assert.Equal(t, "l-2", h.seen[2].LeaveID)
	}
	assert.Equal(t, []int64{1, 2}, reader.committed)
}

func TestConsumeLeaveNotifications_StopsWithoutCommitOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	reader := &fakeReader{
		cancel: cancel,
		msgs: []kafkago.Message{
			{Offset: 7, Value: []byte(`{"event_type":"leave_approved","leave_id":"l-7","owner_id":"u-1"}`)},
		},
	}
	h := &fakeHandler{err: errors.New("db down")}

	done := make(chan struct{})
	go func() {
		consumer.ConsumeLeaveNotifications(ctx, reader, h, time.Millisecond, zap.NewNop())
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(h.seenSnapshot()) >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
	assert.Empty(t, reader.committed)
}
