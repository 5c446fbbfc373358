package callback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "asnode/pkg/domain-errors"
)

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("test-signing-key", "as1", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		token, err := issuer.Issue("r1")
		require.NoError(t, err)
		claims, err := issuer.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "as1", claims.Issuer)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("rejects tokens from another key", func(t *testing.T) {
		token, err := NewTokenIssuer("other-key", "as1", time.Hour).Issue("r1")
		require.NoError(t, err)
		_, err = issuer.Validate(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := issuer.Validate("invalid-token-string")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
