package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/route-beacon/pbgp-decode/internal/bgperr"
)

// KafkaSink produces one record per formatted message to a fixed
// topic.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *zap.Logger
}

// NewKafkaSink dials brokers and verifies connectivity with a short
// metadata round trip; a failure there is fatal, matching the pipeline's
// documented startup behavior for an unreachable sink.
func NewKafkaSink(brokers []string, topic string, clientID string, logger *zap.Logger) (*KafkaSink, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1 << 20),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: new kafka client: %v", bgperr.ErrSink, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: kafka broker unreachable: %v", bgperr.ErrSink, err)
	}

	return &KafkaSink{client: client, topic: topic, logger: logger}, nil
}

// Write produces record synchronously: the pipeline's single-in-flight
// ordering guarantee depends on not moving to the next message before
// this one's produce has been acknowledged or failed.
func (s *KafkaSink) Write(record string) error {
	rec := &kgo.Record{Topic: s.topic, Value: []byte(record)}

	done := make(chan error, 1)
	s.client.Produce(context.Background(), rec, func(_ *kgo.Record, err error) {
		done <- err
	})
	if err := <-done; err != nil {
		return fmt.Errorf("%w: kafka produce: %v", bgperr.ErrSink, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	s.client.Close()
	return nil
}
