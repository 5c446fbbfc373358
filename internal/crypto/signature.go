package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Hash returns base64(sha256(s)), the digest format recorded on the ledger.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Signer signs with the node's own key.
type Signer struct {
	key *rsa.PrivateKey
}

// NewSigner wraps a private key.
func NewSigner(key *rsa.PrivateKey) *Signer {
	return &Signer{key: key}
}

// Sign returns the base64 signature of data.
func (s *Signer) Sign(data []byte) (string, error) {
	if s == nil || s.key == nil {
		return "", fmt.Errorf("sign: %w", ErrInvalidKey)
	}
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// PublicKey returns the PEM public half of the signing key.
func (s *Signer) PublicKey() (string, error) {
	return EncodePublicKey(&s.key.PublicKey)
}

// VerifySignature checks a base64 signature over message.
func VerifySignature(key *rsa.PublicKey, message []byte, signature string) error {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", ErrInvalidSignature)
	}
	digest := sha256.Sum256(message)
	if err := rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], raw); err != nil {
		return ErrInvalidSignature
	}
	return nil
}
