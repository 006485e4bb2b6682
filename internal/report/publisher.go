package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/workoutfines/internal/calendar"
	"github.com/2beens/workoutfines/internal/telemetry/tracing"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher pushes generated weekly reports to a kafka topic, keyed by week
// start, for the chat bot to render.
type Publisher struct {
	writer MessageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *Publisher {
	return NewPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}, topic)
}

func NewPublisher(writer MessageWriter, topic string) *Publisher {
	return &Publisher{
		writer: writer,
		topic:  topic,
	}
}

func (p *Publisher) Publish(ctx context.Context, report *WeeklyReport) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "report.publisher.publish")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	weekStart := calendar.FormatDate(report.WeekStartDate)
	span.SetAttributes(attribute.String("messaging.destination", p.topic), attribute.String("week.start", weekStart))

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(weekStart),
		Value: payload,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "report-type", Value: []byte("weekly")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write report message: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
