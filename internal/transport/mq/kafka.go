// Package mq implements the node-to-node message transport over Kafka.
// Every node consumes a single inbound topic on its own broker, published on
// the ledger as the node's message queue address.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"asnode/internal/as/models"
	"asnode/internal/crypto"
	"asnode/internal/platform/kafka/consumer"
)

// KeyHeader carries the fingerprint of the public key the sender resolved
// for the receiver. Receivers drop records addressed to another key.
const KeyHeader = "x-receiver-key"

// Producer writes a record to a topic on a given broker.
type Producer interface {
	Produce(ctx context.Context, broker, topic string, key, value []byte, headers map[string]string) error
}

// InboundTopic names the topic a node consumes.
func InboundTopic(prefix string) string {
	if prefix == "" {
		prefix = "asnode"
	}
	return prefix + ".inbound"
}

// Fingerprint identifies a PEM public key independent of surrounding whitespace.
func Fingerprint(publicKeyPEM string) string {
	return crypto.Hash(strings.TrimSpace(publicKeyPEM))
}

// Kafka sends payloads to receiver brokers.
type Kafka struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

func NewKafka(producer Producer, topicPrefix string, logger *slog.Logger) *Kafka {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{producer: producer, topic: InboundTopic(topicPrefix), logger: logger}
}

// Send marshals payload once and produces it to every receiver. All
// receivers are attempted; the joined error reports the ones that failed.
func (k *Kafka) Send(ctx context.Context, receivers []models.Receiver, payload any) error {
	if len(receivers) == 0 {
		return errors.New("no receivers")
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	key := []byte(requestIDOf(value))

	var errs []error
	for _, r := range receivers {
		broker := net.JoinHostPort(r.IP, strconv.Itoa(r.Port))
		headers := map[string]string{KeyHeader: Fingerprint(r.PublicKey)}
		if err := k.producer.Produce(ctx, broker, k.topic, key, value, headers); err != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", broker, err))
			continue
		}
		k.logger.DebugContext(ctx, "message sent",
			"broker", broker,
			"topic", k.topic,
			"request_id", string(key),
		)
	}
	return errors.Join(errs...)
}

func requestIDOf(value []byte) string {
	var probe struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(value, &probe); err != nil {
		return ""
	}
	return probe.RequestID
}

// InboundFunc receives the raw payload of an inbound message.
type InboundFunc func(ctx context.Context, raw []byte) error

// Inbound adapts consumed records to the pipeline's message handler.
type Inbound struct {
	fingerprint string
	handle      InboundFunc
	logger      *slog.Logger
}

// NewInbound accepts records addressed to ownPublicKey. An empty key accepts
// every record.
func NewInbound(ownPublicKey string, handle InboundFunc, logger *slog.Logger) *Inbound {
	if logger == nil {
		logger = slog.Default()
	}
	fp := ""
	if ownPublicKey != "" {
		fp = Fingerprint(ownPublicKey)
	}
	return &Inbound{fingerprint: fp, handle: handle, logger: logger}
}

func (in *Inbound) Handle(ctx context.Context, msg *consumer.Message) error {
	if in.fingerprint != "" {
		if got := msg.Headers[KeyHeader]; got != in.fingerprint {
			in.logger.WarnContext(ctx, "dropping message addressed to another key",
				"topic", msg.Topic,
				"key", string(msg.Key),
			)
			return nil
		}
	}
	return in.handle(ctx, msg.Value)
}
