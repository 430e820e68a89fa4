package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	failures int
	calls    int
	written  []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.calls++
	if w.calls <= w.failures {
		return errors.New("leader not available")
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w *fakeWriter) *Producer {
	p := newProducer(w)
	p.backoff = func() retry.Backoff {
		return retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))
	}
	return p
}

func TestNewProducer_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewProducer(Config{Topic: "t"})
	assert.Error(t, err)
	_, err = NewProducer(Config{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}, Topic: "t"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestSendReminder(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)
	sentAt := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	err := p.SendReminder(context.Background(), ReminderEvent{AssignmentID: 42, StudentID: 3, Title: "Read", SentAt: sentAt})
	require.NoError(t, err)

	require.Len(t, w.written, 1)
	msg := w.written[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, sentAt, msg.Time)

	var got ReminderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, int64(42), got.AssignmentID)
	assert.Equal(t, "Read", got.Title)
}

func TestSendReminder_RetriesTransientFailures(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := newTestProducer(w)

	require.NoError(t, p.SendReminder(context.Background(), ReminderEvent{AssignmentID: 1}))
	assert.Equal(t, 3, w.calls)
	assert.Len(t, w.written, 1)
}

func TestSendReminder_GivesUp(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := newTestProducer(w)

	err := p.SendReminder(context.Background(), ReminderEvent{AssignmentID: 1})
	assert.ErrorContains(t, err, "leader not available")
	assert.Equal(t, 3, w.calls)
	assert.Empty(t, w.written)
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newTestProducer(w).Close())
	assert.True(t, w.closed)
}
