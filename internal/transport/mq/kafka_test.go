package mq

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asnode/internal/as/models"
	"asnode/internal/platform/kafka/consumer"
)

type produced struct {
	broker  string
	topic   string
	key     string
	value   string
	headers map[string]string
}

type fakeProducer struct {
	mu      sync.Mutex
	records []produced
	fail    map[string]error
}

func (p *fakeProducer) Produce(_ context.Context, broker, topic string, key, value []byte, headers map[string]string) error {
	if err := p.fail[broker]; err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, produced{broker, topic, string(key), string(value), headers})
	return nil
}

const rpKey = "-----BEGIN PUBLIC KEY-----\nrp\n-----END PUBLIC KEY-----"

func TestKafkaSend(t *testing.T) {
	t.Run("produces to each receiver broker keyed by request id", func(t *testing.T) {
		p := &fakeProducer{}
		k := NewKafka(p, "ndid", nil)

		err := k.Send(context.Background(), []models.Receiver{
			{IP: "10.0.0.1", Port: 9092, PublicKey: rpKey},
			{IP: "10.0.0.2", Port: 19092, PublicKey: rpKey + "\n"},
		}, models.RelayMessage{RequestID: "req-1", ASID: "as1"})
		require.NoError(t, err)

		require.Len(t, p.records, 2)
		assert.Equal(t, "10.0.0.1:9092", p.records[0].broker)
		assert.Equal(t, "10.0.0.2:19092", p.records[1].broker)
		for _, r := range p.records {
			assert.Equal(t, "ndid.inbound", r.topic)
			assert.Equal(t, "req-1", r.key)
			assert.JSONEq(t, r.value, p.records[0].value)
			assert.Equal(t, Fingerprint(rpKey), r.headers[KeyHeader])
		}
	})

	t.Run("attempts every receiver and joins failures", func(t *testing.T) {
		boom := errors.New("broker down")
		p := &fakeProducer{fail: map[string]error{"10.0.0.1:9092": boom}}
		k := NewKafka(p, "", nil)

		err := k.Send(context.Background(), []models.Receiver{
			{IP: "10.0.0.1", Port: 9092},
			{IP: "10.0.0.2", Port: 9092},
		}, map[string]string{"request_id": "req-2"})
		assert.ErrorIs(t, err, boom)
		require.Len(t, p.records, 1)
		assert.Equal(t, "asnode.inbound", p.records[0].topic)
	})

	t.Run("rejects empty receiver list", func(t *testing.T) {
		k := NewKafka(&fakeProducer{}, "", nil)
		assert.Error(t, k.Send(context.Background(), nil, map[string]string{}))
	})
}

func TestInbound(t *testing.T) {
	var got [][]byte
	handle := func(_ context.Context, raw []byte) error {
		got = append(got, raw)
		return nil
	}

	t.Run("accepts records for own key", func(t *testing.T) {
		got = nil
		in := NewInbound(rpKey, handle, nil)
		err := in.Handle(context.Background(), &consumer.Message{
			Value:   []byte(`{"request_id":"r"}`),
			Headers: map[string]string{KeyHeader: Fingerprint(rpKey)},
		})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("drops records for another key", func(t *testing.T) {
		got = nil
		in := NewInbound(rpKey, handle, nil)
		err := in.Handle(context.Background(), &consumer.Message{
			Value:   []byte(`{}`),
			Headers: map[string]string{KeyHeader: Fingerprint("other")},
		})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("accepts everything without a key", func(t *testing.T) {
		got = nil
		in := NewInbound("", handle, nil)
		require.NoError(t, in.Handle(context.Background(), &consumer.Message{Value: []byte(`{}`)}))
		assert.Len(t, got, 1)
	})
}
