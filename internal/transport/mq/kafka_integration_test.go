//go:build integration

package mq_test

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asnode/internal/as/models"
	"asnode/internal/platform/kafka"
	"asnode/internal/platform/kafka/consumer"
	"asnode/internal/platform/kafka/producer"
	"asnode/internal/transport/mq"
	"asnode/pkg/testutil/containers"
)

func TestKafkaRoundTrip(t *testing.T) {
	rp := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	topic := mq.InboundTopic("roundtrip")
	require.NoError(t, kafka.EnsureTopic(ctx, []string{rp.Broker}, topic, 1, 1))
	// second call is a no-op
	require.NoError(t, kafka.EnsureTopic(ctx, []string{rp.Broker}, topic, 1, 1))

	var (
		mu       sync.Mutex
		received []string
	)
	const ownKey = "-----BEGIN PUBLIC KEY-----\nself\n-----END PUBLIC KEY-----"
	inbound := mq.NewInbound(ownKey, func(_ context.Context, raw []byte) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, string(raw))
		return nil
	}, nil)

	cons, err := consumer.New(consumer.Config{
		Brokers: []string{rp.Broker},
		Group:   "roundtrip-test",
		Topics:  []string{topic},
	}, inbound, nil)
	require.NoError(t, err)
	defer cons.Close()
	go func() { _ = cons.Run(ctx) }()

	prod := producer.New(10*time.Second, nil)
	defer prod.Close()
	transport := mq.NewKafka(prod, "roundtrip", nil)

	host, port := splitBroker(t, rp.Broker)
	require.NoError(t, transport.Send(ctx,
		[]models.Receiver{{IP: host, Port: port, PublicKey: ownKey}},
		models.RelayMessage{RequestID: "req-kafka", ASID: "as1", Height: 7},
	))
	require.NoError(t, transport.Send(ctx,
		[]models.Receiver{{IP: host, Port: port, PublicKey: "someone else"}},
		models.RelayMessage{RequestID: "req-misrouted"},
	))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) >= 1
	}, 30*time.Second, 200*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Contains(t, received[0], `"request_id":"req-kafka"`)
}

func splitBroker(t *testing.T, broker string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(broker)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}
