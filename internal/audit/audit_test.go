package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"frontdesk/pkg/domain"
	"frontdesk/pkg/requestcontext"
)

func TestPublisherStampsRequestMetadata(t *testing.T) {
	sink := NewMemorySink()
	pub := NewPublisher(sink)
	userID := uuid.New()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.1", "curl")
	ctx = requestcontext.WithPrincipal(ctx, requestcontext.AuthPrincipal{UserID: userID, Role: domain.RoleAdmin})

	require.NoError(t, pub.Emit(ctx, Event{Action: ActionKeyCheckedOut, Subject: "K001"}))

	events := sink.ListByUser(ctx, userID.String())
	require.Len(t, events, 1)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, "10.0.0.1", events[0].ClientIP)
	assert.Equal(t, ActionKeyCheckedOut, events[0].Action)
}

func TestPublisherKeepsExplicitUser(t *testing.T) {
	sink := NewMemorySink()
	pub := NewPublisher(sink)

	require.NoError(t, pub.Emit(context.Background(), Event{UserID: "explicit", Action: ActionLoginFailed}))

	all := sink.All()
	require.Len(t, all, 1)
	assert.Equal(t, "explicit", all[0].UserID)
	assert.False(t, all[0].Timestamp.IsZero())
}

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestKafkaSink(t *testing.T) {
	t.Run("publishes json keyed by user", func(t *testing.T) {
		producer := &fakeProducer{}
		sink := NewKafkaSink(producer, "audit")

		require.NoError(t, sink.Append(context.Background(), Event{UserID: "u1", Action: ActionLogout}))

		require.Len(t, producer.records, 1)
		rec := producer.records[0]
		assert.Equal(t, "audit", rec.Topic)
		assert.Equal(t, []byte("u1"), rec.Key)

		var decoded Event
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, ActionLogout, decoded.Action)
	})

	t.Run("surfaces produce errors", func(t *testing.T) {
		producer := &fakeProducer{err: errors.New("broker down")}
		sink := NewKafkaSink(producer, "audit")

		assert.Error(t, sink.Append(context.Background(), Event{UserID: "u1"}))
	})
}

func TestAsyncSinkWorker(t *testing.T) {
	queue := NewAsyncSink(4)
	inner := NewMemorySink()
	worker := NewWorker(inner, queue, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for i := 0; i < 3; i++ {
		require.NoError(t, queue.Append(context.Background(), Event{UserID: "u", Action: ActionLogout}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(inner.All()) == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestAsyncSinkFull(t *testing.T) {
	queue := NewAsyncSink(1)
	require.NoError(t, queue.Append(context.Background(), Event{}))
	assert.ErrorIs(t, queue.Append(context.Background(), Event{}), ErrBufferFull)
}
