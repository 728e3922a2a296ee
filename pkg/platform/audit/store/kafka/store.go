// Package kafka streams audit events to a Kafka topic, one JSON record per
// event keyed by customer id so a customer's events stay ordered within a
// partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "scp-gateway/pkg/platform/audit"
)

const (
	defaultPartitions  int32 = 3
	defaultReplication int16 = 1
)

// Store is a write-only audit sink.
type Store struct {
	client *kgo.Client
	topic  string
}

// New connects to brokers. The client is lazy; broker reachability is first
// checked by EnsureTopic or the first Append.
func New(brokers []string, topic string, opts ...kgo.Opt) (*Store, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka audit store: no brokers")
	}
	if topic == "" {
		return nil, errors.New("kafka audit store: empty topic")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("scp-gateway-audit"),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Store{client: client, topic: topic}, nil
}

// EnsureTopic creates the audit topic if it does not exist.
func (s *Store) EnsureTopic(ctx context.Context) error {
	admin := kadm.NewClient(s.client)
	resp, err := admin.CreateTopics(ctx, defaultPartitions, defaultReplication, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Key:   []byte(event.CustomerID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the client.
func (s *Store) Close() {
	s.client.Close()
}
