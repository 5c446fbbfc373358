// Package producer writes records to Kafka brokers chosen per call. Each
// node runs its own broker, so clients are cached per broker address.
package producer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer sends records synchronously.
type Producer struct {
	mu      sync.Mutex
	clients map[string]*kgo.Client
	timeout time.Duration
	logger  *slog.Logger
}

func New(timeout time.Duration, logger *slog.Logger) *Producer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{
		clients: make(map[string]*kgo.Client),
		timeout: timeout,
		logger:  logger,
	}
}

// Produce writes one record to topic on broker and waits for the ack.
func (p *Producer) Produce(ctx context.Context, broker, topic string, key, value []byte, headers map[string]string) error {
	client, err := p.clientFor(broker)
	if err != nil {
		return err
	}
	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	for k, v := range headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s/%s: %w", broker, topic, err)
	}
	return nil
}

func (p *Producer) clientFor(broker string) (*kgo.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[broker]; ok {
		return c, nil
	}
	c, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer for %s: %w", broker, err)
	}
	p.clients[broker] = c
	return c, nil
}

// Close flushes and closes every broker client.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for broker, c := range p.clients {
		c.Close()
		delete(p.clients, broker)
	}
}
