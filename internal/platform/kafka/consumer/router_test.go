package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter(t *testing.T) {
	var got []string
	record := func(name string) Handler {
		return HandlerFunc(func(_ context.Context, msg *Message) error {
			got = append(got, name+":"+string(msg.Value))
			return nil
		})
	}

	t.Run("routes by topic", func(t *testing.T) {
		got = nil
		r := NewRouter(nil, nil)
		r.Register("as.inbound", record("inbound"))

		assert.NoError(t, r.Handle(context.Background(), &Message{Topic: "as.inbound", Value: []byte("a")}))
		assert.NoError(t, r.Handle(context.Background(), &Message{Topic: "other", Value: []byte("b")}))
		assert.Equal(t, []string{"inbound:a"}, got)
		assert.Equal(t, []string{"as.inbound"}, r.Topics())
	})

	t.Run("falls back for unknown topics", func(t *testing.T) {
		got = nil
		r := NewRouter(nil, record("fallback"))
		assert.NoError(t, r.Handle(context.Background(), &Message{Topic: "other", Value: []byte("c")}))
		assert.Equal(t, []string{"fallback:c"}, got)
	})

	t.Run("propagates handler errors", func(t *testing.T) {
		r := NewRouter(nil, nil)
		boom := errors.New("boom")
		r.Register("t", HandlerFunc(func(context.Context, *Message) error { return boom }))
		assert.ErrorIs(t, r.Handle(context.Background(), &Message{Topic: "t"}), boom)
	})
}
