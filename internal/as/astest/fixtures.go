// Package astest builds signed requests and IdP responses for pipeline tests.
package astest

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"asnode/internal/as/models"
	"asnode/internal/as/ports/mocks"
	"asnode/internal/crypto"
)

const keyPoolSize = 4

var (
	keyPoolOnce sync.Once
	keyPool     []*rsa.PrivateKey
	keyPoolErr  error
)

// Key returns the i-th shared test key. Generating RSA keys dominates test
// time, so keys are reused across the binary.
func Key(t testing.TB, i int) *rsa.PrivateKey {
	t.Helper()
	keyPoolOnce.Do(func() {
		for range keyPoolSize {
			k, err := rsa.GenerateKey(rand.Reader, 2048)
			if err != nil {
				keyPoolErr = err
				return
			}
			keyPool = append(keyPool, k)
		}
	})
	require.NoError(t, keyPoolErr)
	return keyPool[i%keyPoolSize]
}

// Accessor is an IdP-held credential answering a request.
type Accessor struct {
	ID        string
	GroupID   string
	IdPID     string
	Key       *rsa.PrivateKey
	PublicPEM string
	AAL       float64
	IAL       float64
}

// NewAccessor creates an accessor backed by shared key i.
func NewAccessor(t testing.TB, i int, idpID, groupID string) *Accessor {
	t.Helper()
	key := Key(t, i)
	pemKey, err := crypto.EncodePublicKey(&key.PublicKey)
	require.NoError(t, err)
	return &Accessor{
		ID:        fmt.Sprintf("accessor-%s", idpID),
		GroupID:   groupID,
		IdPID:     idpID,
		Key:       key,
		PublicPEM: pemKey,
		AAL:       2.2,
		IAL:       2.3,
	}
}

// Scenario is a transport message and the matching ledger record.
type Scenario struct {
	Message   *models.TransportMessage
	Detail    *models.RequestDetail
	Accessors []*Accessor
}

// NewScenario builds a request answered by every accessor with a valid
// signature and identity proof.
func NewScenario(t testing.TB, requestID string, height int64, mode models.Mode, accessors ...*Accessor) *Scenario {
	t.Helper()
	msg := &models.TransportMessage{
		RequestID:      requestID,
		Height:         height,
		RPID:           "rp1",
		ServiceID:      "bank_statement",
		Namespace:      "cid",
		Identifier:     "1234567890123",
		RequestMessage: "Please allow bank_statement for " + requestID,
		Challenge:      "987654321",
		RequestParams:  []byte(`{"format":"pdf"}`),
		Mode:           mode,
	}
	detail := &models.RequestDetail{
		RequestID:          requestID,
		Mode:               mode,
		MinIdP:             len(accessors),
		RequestMessageHash: crypto.Hash(msg.Challenge + msg.RequestMessage),
		RequesterNodeID:    "rp1",
		ResponseList:       []models.ResponseRecord{},
	}
	for i, acc := range accessors {
		padding := fmt.Sprintf("%02x", i+1)
		proof, err := crypto.ProveIdentity(acc.Key, msg.Challenge, msg.Namespace, msg.Identifier, padding)
		require.NoError(t, err)
		sig, err := crypto.NewSigner(acc.Key).Sign([]byte(msg.RequestMessage))
		require.NoError(t, err)

		msg.PrivateProofObjectList = append(msg.PrivateProofObjectList, models.PrivateProofEntry{
			IdPID: acc.IdPID,
			PrivateProofObject: models.PrivateProofObject{
				AccessorID:        acc.ID,
				PrivateProofValue: proof.PrivateProof,
				Padding:           padding,
			},
		})
		detail.ResponseList = append(detail.ResponseList, models.ResponseRecord{
			IdPID:            acc.IdPID,
			Signature:        sig,
			AAL:              acc.AAL,
			IAL:              acc.IAL,
			IdentityProof:    proof.PublicProof,
			PrivateProofHash: proof.PrivateProofHash,
		})
	}
	return &Scenario{Message: msg, Detail: detail, Accessors: accessors}
}

// ExpectAccessorLookups lets the ledger mock answer group and key lookups
// for every accessor in the scenario.
func (s *Scenario) ExpectAccessorLookups(ledger *mocks.MockLedger) {
	for _, acc := range s.Accessors {
		ledger.EXPECT().GetAccessorGroupID(gomock.Any(), acc.ID).Return(acc.GroupID, nil).AnyTimes()
		ledger.EXPECT().GetAccessorKey(gomock.Any(), acc.ID).Return(acc.PublicPEM, nil).AnyTimes()
	}
}
