package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"crm/pkg/platform/circuit"
)

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher writes events to a single topic.
type Publisher struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) {
		if b != nil {
			p.breaker = b
		}
	}
}

// NewPublisher creates a publisher that produces to topic.
func NewPublisher(producer Producer, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("kafka"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish produces e and waits for the broker acknowledgement. The returned
// error is informational; callers log it and carry on.
func (p *Publisher) Publish(ctx context.Context, e Event) error {
	if !p.breaker.Allow() {
		if p.metrics != nil {
			p.metrics.IncDropped()
		}
		return fmt.Errorf("publish %s: circuit %s open", e.Action, p.breaker.Name())
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.ID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(e.Action)},
			{Key: "event-id", Value: []byte(e.EventID.String())},
		},
	}

	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		_, change := p.breaker.RecordFailure()
		if change.Opened {
			p.logWarn(ctx, "event publishing circuit opened", "topic", p.topic, "error", err)
		}
		p.observe(false)
		return fmt.Errorf("publish %s: %w", e.Action, err)
	}

	_, change := p.breaker.RecordSuccess()
	if change.Closed {
		p.logInfo(ctx, "event publishing circuit closed", "topic", p.topic)
	}
	p.observe(true)
	return nil
}

func (p *Publisher) observe(ok bool) {
	if p.metrics == nil {
		return
	}
	if ok {
		p.metrics.IncPublished()
	} else {
		p.metrics.IncFailed()
	}
	p.metrics.SetBreakerOpen(p.breaker.IsOpen())
}

func (p *Publisher) logWarn(ctx context.Context, msg string, args ...any) {
	if p.logger != nil {
		p.logger.WarnContext(ctx, msg, args...)
	}
}

func (p *Publisher) logInfo(ctx context.Context, msg string, args ...any) {
	if p.logger != nil {
		p.logger.InfoContext(ctx, msg, args...)
	}
}

// Nop discards events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
