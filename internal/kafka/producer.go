package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
)

type Config struct {
	Brokers []string
	Topic   string
}

// ReminderEvent is published once per assignment that is due soon.
type ReminderEvent struct {
	AssignmentID int64     `json:"assignment_id"`
	StudentID    int64     `json:"student_id"`
	InstructorID int64     `json:"instructor_id"`
	Title        string    `json:"title"`
	ContentType  string    `json:"content_type"`
	ContentTitle string    `json:"content_title"`
	DueDate      string    `json:"due_date"`
	Status       string    `json:"status"`
	SentAt       time.Time `json:"sent_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer  messageWriter
	backoff func() retry.Backoff
}

func NewProducer(cfg Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return newProducer(writer), nil
}

func newProducer(writer messageWriter) *Producer {
	return &Producer{
		writer: writer,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(3, retry.WithJitter(50*time.Millisecond, retry.NewExponential(200*time.Millisecond)))
		},
	}
}

// SendReminder publishes event keyed by assignment id. Write failures are
// retried with backoff until the attempts run out or ctx ends.
func (p *Producer) SendReminder(ctx context.Context, event ReminderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder event: %w", err)
	}
	message := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.AssignmentID, 10)),
		Value: data,
		Time:  event.SentAt,
	}

	err = retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		if err := p.writer.WriteMessages(ctx, message); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to send reminder event: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
