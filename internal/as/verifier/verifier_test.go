package verifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"asnode/internal/as/astest"
	"asnode/internal/as/models"
	"asnode/internal/as/ports/mocks"
	"asnode/internal/as/verifier"
	"asnode/pkg/platform/sentinel"
)

type VerifierSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	ledger   *mocks.MockLedger
	verifier *verifier.Verifier
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ledger = mocks.NewMockLedger(s.ctrl)
	s.verifier = verifier.New(s.ledger, nil)
}

func (s *VerifierSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *VerifierSuite) twoIdPScenario(groupA, groupB string) *astest.Scenario {
	return astest.NewScenario(s.T(), "r1", 100, 3,
		astest.NewAccessor(s.T(), 0, "idp1", groupA),
		astest.NewAccessor(s.T(), 1, "idp2", groupB),
	)
}

func (s *VerifierSuite) TestBypassMode() {
	s.Run("mode 1 is valid regardless of proof content", func() {
		sc := astest.NewScenario(s.T(), "r1", 100, models.ModeSignatureOnly)
		sc.Message.PrivateProofObjectList = []models.PrivateProofEntry{{IdPID: "x"}}

		result, err := s.verifier.Verify(context.Background(), sc.Message, sc.Detail)
		s.Require().NoError(err)
		s.True(result.Valid)
		s.True(result.Bypassed)
	})

	s.Run("mode comes from the ledger, not the message", func() {
		sc := s.twoIdPScenario("g1", "g1")
		sc.Message.Mode = models.ModeSignatureOnly
		sc.Message.PrivateProofObjectList[0].PrivateProofObject.PrivateProofValue = "12345"
		sc.ExpectAccessorLookups(s.ledger)

		result, err := s.verifier.Verify(context.Background(), sc.Message, sc.Detail)
		s.Require().NoError(err)
		s.False(result.Bypassed)
		s.False(result.Valid)
	})
}

func (s *VerifierSuite) TestAllEntriesValid() {
	sc := s.twoIdPScenario("g1", "g1")
	sc.ExpectAccessorLookups(s.ledger)

	result, err := s.verifier.Verify(context.Background(), sc.Message, sc.Detail)
	s.Require().NoError(err)
	s.True(result.Valid)
	s.Require().Len(result.Entries, 2)
	for _, e := range result.Entries {
		s.True(e.Valid(), e.Reason)
	}
}

func (s *VerifierSuite) TestGroupMismatchFailsFast() {
	sc := astest.NewScenario(s.T(), "r1", 100, 3,
		astest.NewAccessor(s.T(), 0, "idp1", "g1"),
		astest.NewAccessor(s.T(), 1, "idp2", "g2"),
		astest.NewAccessor(s.T(), 2, "idp3", "g1"),
	)
	gomock.InOrder(
		s.ledger.EXPECT().GetAccessorGroupID(gomock.Any(), "accessor-idp1").Return("g1", nil),
		s.ledger.EXPECT().GetAccessorGroupID(gomock.Any(), "accessor-idp2").Return("g2", nil),
	)

	result, err := s.verifier.Verify(context.Background(), sc.Message, sc.Detail)
	s.Require().NoError(err)
	s.False(result.Valid)
	s.True(result.GroupMismatch)
	s.Empty(result.Entries, "no per-entry checks after a group mismatch")
}

func (s *VerifierSuite) TestSingleInvalidEntryInvalidatesRequest() {
	cases := []struct {
		name   string
		mutate func(sc *astest.Scenario)
		reason string
	}{
		{
			name: "tampered private proof",
			mutate: func(sc *astest.Scenario) {
				sc.Message.PrivateProofObjectList[1].PrivateProofObject.PrivateProofValue = "424242"
			},
			reason: "identity proof invalid",
		},
		{
			name: "wrong padding",
			mutate: func(sc *astest.Scenario) {
				sc.Message.PrivateProofObjectList[1].PrivateProofObject.Padding = "ffff"
			},
			reason: "identity proof invalid",
		},
		{
			name: "signature over a different message",
			mutate: func(sc *astest.Scenario) {
				sc.Detail.ResponseList[1].Signature = sc.Detail.ResponseList[0].Signature
			},
			reason: "signature invalid",
		},
		{
			name: "no response recorded for the idp",
			mutate: func(sc *astest.Scenario) {
				sc.Detail.ResponseList = sc.Detail.ResponseList[:1]
			},
			reason: "no response recorded for idp",
		},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			sc := s.twoIdPScenario("g1", "g1")
			tc.mutate(sc)
			sc.ExpectAccessorLookups(s.ledger)

			result, err := s.verifier.Verify(context.Background(), sc.Message, sc.Detail)
			s.Require().NoError(err)
			s.False(result.Valid)
			s.Require().Len(result.Entries, 2)
			s.True(result.Entries[0].Valid())
			s.False(result.Entries[1].Valid())
			s.Equal(tc.reason, result.Entries[1].Reason)
		})
	}
}

func (s *VerifierSuite) TestEmptyProofListIsInvalid() {
	sc := astest.NewScenario(s.T(), "r1", 100, 3)

	result, err := s.verifier.Verify(context.Background(), sc.Message, sc.Detail)
	s.Require().NoError(err)
	s.False(result.Valid)
}

func (s *VerifierSuite) TestLedgerErrors() {
	s.Run("unknown accessor invalidates", func() {
		sc := s.twoIdPScenario("g1", "g1")
		s.ledger.EXPECT().GetAccessorGroupID(gomock.Any(), "accessor-idp1").Return("", sentinel.ErrNotFound)

		result, err := s.verifier.Verify(context.Background(), sc.Message, sc.Detail)
		s.Require().NoError(err)
		s.False(result.Valid)
	})

	s.Run("transport failure is returned", func() {
		sc := s.twoIdPScenario("g1", "g1")
		s.ledger.EXPECT().GetAccessorGroupID(gomock.Any(), "accessor-idp1").Return("", errors.New("connection refused"))

		_, err := s.verifier.Verify(context.Background(), sc.Message, sc.Detail)
		s.Require().Error(err)
	})
}
