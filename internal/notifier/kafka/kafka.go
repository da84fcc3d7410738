// Package kafka publishes strong-signal alerts to a Kafka topic
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/notifier"
	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "signaldeck.signals"

// MessageWriter is the subset of *kafka.Writer used by the notifier.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka implements the Notifier interface on top of a kafka-go writer.
// Messages are keyed by symbol so one symbol's alerts stay ordered.
type Kafka struct {
	brokers []string
	topic   string
	writer  MessageWriter
	owned   bool // writer was built here and may be rebuilt by Init
	now     func() time.Time
}

// New creates a Kafka notifier for the given brokers and topic
func New(brokers []string, topic string) *Kafka {
	k := &Kafka{brokers: slices.Clone(brokers), topic: topic, now: time.Now}
	if len(brokers) > 0 {
		k.writer = newWriter(k.brokers, k.topicOrDefault())
		k.owned = true
	}
	return k
}

// NewWithWriter creates a Kafka notifier around an existing writer
func NewWithWriter(w MessageWriter, topic string) *Kafka {
	return &Kafka{writer: w, topic: topic, now: time.Now}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
}

func (k *Kafka) Name() string { return "kafka" }

// Init applies "brokers" and "topic" params. A writer built by New or a
// previous Init is replaced when either value changes; an injected writer is
// left alone.
func (k *Kafka) Init(cfg notifier.Config) error {
	brokers := k.brokers
	switch v := cfg.Params["brokers"].(type) {
	case []string:
		brokers = slices.Clone(v)
	case []any:
		brokers = make([]string, 0, len(v))
		for _, b := range v {
			brokers = append(brokers, fmt.Sprint(b))
		}
	case string:
		brokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	topic := k.topic
	if v, ok := cfg.Params["topic"].(string); ok {
		topic = v
	}

	changed := !slices.Equal(brokers, k.brokers) || topic != k.topic
	k.brokers, k.topic = brokers, topic
	if k.now == nil {
		k.now = time.Now
	}

	if k.writer != nil && !k.owned {
		return nil
	}
	if len(k.brokers) == 0 {
		return fmt.Errorf("kafka: brokers are required")
	}
	if k.writer != nil && !changed {
		return nil
	}
	if k.writer != nil {
		if err := k.writer.Close(); err != nil {
			return fmt.Errorf("kafka: failed to close previous writer: %w", err)
		}
	}
	k.writer = newWriter(k.brokers, k.topicOrDefault())
	k.owned = true
	return nil
}

func (k *Kafka) topicOrDefault() string {
	if k.topic == "" {
		return DefaultTopic
	}
	return k.topic
}

func (k *Kafka) Send(ctx context.Context, signal core.SignalRecord) error {
	return k.SendBatch(ctx, []core.SignalRecord{signal})
}

func (k *Kafka) SendBatch(ctx context.Context, signals []core.SignalRecord) error {
	if len(signals) == 0 {
		return nil
	}
	if k.writer == nil {
		return fmt.Errorf("kafka: notifier not initialized")
	}

	at := k.now()
	msgs := make([]kafka.Message, 0, len(signals))
	for _, sig := range signals {
		data, err := json.Marshal(notifier.NewEvent(sig, at))
		if err != nil {
			return fmt.Errorf("kafka: failed to marshal event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(sig.Symbol),
			Value: data,
			Time:  at,
		})
	}

	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: failed to write messages: %w", err)
	}
	return nil
}

// Close closes the underlying writer
func (k *Kafka) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
