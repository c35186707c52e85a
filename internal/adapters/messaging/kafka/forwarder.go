// Package kafka reenvía los eventos de dominio a un tópico para otros servicios.
// Es un suscriptor más del bus: si Kafka falla, la transición ya está confirmada.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"epaws/internal/domain/events"
	"epaws/internal/platform/logger"
)

const (
	headerKind    = "event-kind"
	headerEventID = "event-id"
)

type Options struct {
	Brokers []string
	Topic   string
	Logger  logger.Logger
	// Timeout por envío; 0 usa 5s.
	Timeout time.Duration
}

type Forwarder struct {
	client  *kgo.Client
	topic   string
	timeout time.Duration
	log     logger.Logger
}

func New(opts Options) (*Forwarder, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if opts.Topic == "" {
		return nil, errors.New("kafka: topic required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(opts.Brokers...),
		kgo.DefaultProduceTopic(opts.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	return &Forwarder{
		client:  client,
		topic:   opts.Topic,
		timeout: timeout,
		log:     log.With(map[string]any{"component": "kafka_forwarder", "topic": opts.Topic}),
	}, nil
}

// EnsureTopic crea el tópico si no existe.
func (f *Forwarder) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	adm := kadm.NewClient(f.client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, f.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", f.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Register suscribe el forwarder a todos los tipos de evento.
func (f *Forwarder) Register(sub events.Subscriber) {
	sub.Subscribe("kafka", f.Handle)
}

// Handle produce el evento como JSON con la entidad como clave, así los
// eventos de una misma entidad caen en la misma partición y conservan orden.
func (f *Forwarder) Handle(ctx context.Context, e events.Event) error {
	rec, err := Record(e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce %s %s: %w", e.Kind, e.EntityID, err)
	}
	f.log.Debug("event forwarded", map[string]any{"kind": e.Kind, "entity_id": e.EntityID})
	return nil
}

// Record arma el mensaje; el tópico lo pone el cliente (DefaultProduceTopic).
func Record(e events.Event) (*kgo.Record, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", e.ID, err)
	}
	return &kgo.Record{
		Key:   []byte(e.EntityID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: headerKind, Value: []byte(e.Kind)},
			{Key: headerEventID, Value: []byte(e.ID)},
		},
		Timestamp: e.OccurredAt,
	}, nil
}

func (f *Forwarder) Close() {
	f.client.Close()
}
