package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"asnode/internal/as/models"
	"asnode/internal/crypto"
)

func TestCheckIntegrity(t *testing.T) {
	base := func() (*models.TransportMessage, *models.RequestDetail) {
		msg := &models.TransportMessage{
			RequestID:      "r1",
			RPID:           "rp1",
			Namespace:      "cid",
			Identifier:     "1234",
			RequestMessage: "share statement",
			Challenge:      "77",
		}
		detail := &models.RequestDetail{
			RequestID:          "r1",
			RequestMessageHash: crypto.Hash("77share statement"),
			RequesterNodeID:    "rp1",
		}
		return msg, detail
	}

	t.Run("consistent message passes", func(t *testing.T) {
		msg, detail := base()
		assert.NoError(t, CheckIntegrity(msg, detail))
	})

	t.Run("missing rp id on the message is accepted", func(t *testing.T) {
		msg, detail := base()
		msg.RPID = ""
		assert.NoError(t, CheckIntegrity(msg, detail))
	})

	cases := map[string]func(*models.TransportMessage, *models.RequestDetail){
		"tampered request message": func(m *models.TransportMessage, _ *models.RequestDetail) { m.RequestMessage = "share everything" },
		"tampered challenge":       func(m *models.TransportMessage, _ *models.RequestDetail) { m.Challenge = "78" },
		"missing namespace":        func(m *models.TransportMessage, _ *models.RequestDetail) { m.Namespace = "" },
		"missing identifier":       func(m *models.TransportMessage, _ *models.RequestDetail) { m.Identifier = "" },
		"missing request id":       func(m *models.TransportMessage, _ *models.RequestDetail) { m.RequestID = "" },
		"different requester":      func(_ *models.TransportMessage, d *models.RequestDetail) { d.RequesterNodeID = "rp2" },
		"record for another id":    func(_ *models.TransportMessage, d *models.RequestDetail) { d.RequestID = "r2" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			msg, detail := base()
			mutate(msg, detail)
			assert.ErrorIs(t, CheckIntegrity(msg, detail), ErrIntegrity)
		})
	}

	t.Run("nil detail fails", func(t *testing.T) {
		msg, _ := base()
		assert.ErrorIs(t, CheckIntegrity(msg, nil), ErrIntegrity)
	})
}
