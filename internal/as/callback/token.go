package callback

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "asnode/pkg/domain-errors"
)

const defaultTokenTTL = 5 * time.Minute

// Claims identify the node calling the attribute source's business service.
type Claims struct {
	NodeID    string `json:"node_id"`
	RequestID string `json:"request_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer mints short-lived HS256 bearer tokens for callbacks.
type TokenIssuer struct {
	signingKey []byte
	nodeID     string
	ttl        time.Duration
}

func NewTokenIssuer(signingKey, nodeID string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{
		signingKey: []byte(signingKey),
		nodeID:     nodeID,
		ttl:        ttl,
	}
}

// Issue returns a signed token scoped to requestID.
func (i *TokenIssuer) Issue(requestID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		NodeID:    i.nodeID,
		RequestID: requestID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.nodeID,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(i.signingKey)
}

// Validate parses a token minted with the same key. Business services can
// use it to authenticate inbound callbacks.
func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
