package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// IdentityStatement is what an AS checks for one IdP response: the accessor
// key, the request challenge, the private proof relayed by the RP, the public
// proof recorded on the ledger, and the identity the proof is bound to.
//
// The proof holds iff
//
//	hash(private) == privateProofHash
//	private^e == public * sid^challenge (mod n)
//
// where sid is the padded sha256 of "namespace:identifier".
type IdentityStatement struct {
	PublicKey        *rsa.PublicKey
	Challenge        string
	PrivateProof     string
	PublicProof      string
	Namespace        string
	Identifier       string
	PrivateProofHash string
	Padding          string
}

var errMalformedProof = errors.New("malformed proof")

// VerifyIdentityProof reports whether the statement holds.
func VerifyIdentityProof(st IdentityStatement) bool {
	if st.PublicKey == nil {
		return false
	}
	if Hash(st.PrivateProof) != st.PrivateProofHash {
		return false
	}
	n := st.PublicKey.N
	e := big.NewInt(int64(st.PublicKey.E))

	challenge, err := parseInt(st.Challenge)
	if err != nil {
		return false
	}
	private, err := parseResidue(st.PrivateProof, n)
	if err != nil {
		return false
	}
	public, err := parseResidue(st.PublicProof, n)
	if err != nil {
		return false
	}
	sid, err := paddedSID(st.Namespace, st.Identifier, st.Padding, n)
	if err != nil {
		return false
	}

	lhs := new(big.Int).Exp(private, e, n)
	rhs := new(big.Int).Exp(sid, challenge, n)
	rhs.Mul(rhs, public).Mod(rhs, n)
	return lhs.Cmp(rhs) == 0
}

// IdentityProof is what an IdP produces for one request.
type IdentityProof struct {
	PrivateProof     string
	PublicProof      string
	PrivateProofHash string
}

// ProveIdentity builds a proof for the statement verified by
// VerifyIdentityProof using the accessor private key.
func ProveIdentity(key *rsa.PrivateKey, challenge, namespace, identifier, padding string) (IdentityProof, error) {
	n := key.N
	c, err := parseInt(challenge)
	if err != nil {
		return IdentityProof{}, err
	}
	sid, err := paddedSID(namespace, identifier, padding, n)
	if err != nil {
		return IdentityProof{}, err
	}
	r, err := rand.Int(rand.Reader, new(big.Int).Sub(n, big.NewInt(2)))
	if err != nil {
		return IdentityProof{}, fmt.Errorf("draw nonce: %w", err)
	}
	r.Add(r, big.NewInt(2))

	public := new(big.Int).Exp(r, big.NewInt(int64(key.E)), n)
	signedSID := new(big.Int).Exp(sid, key.D, n)
	private := new(big.Int).Exp(signedSID, c, n)
	private.Mul(private, r).Mod(private, n)

	privateStr := private.String()
	return IdentityProof{
		PrivateProof:     privateStr,
		PublicProof:      public.String(),
		PrivateProofHash: Hash(privateStr),
	}, nil
}

func parseInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return nil, errMalformedProof
	}
	return v, nil
}

func parseResidue(s string, n *big.Int) (*big.Int, error) {
	v, err := parseInt(s)
	if err != nil {
		return nil, err
	}
	if v.Sign() == 0 || v.Cmp(n) >= 0 {
		return nil, errMalformedProof
	}
	return v, nil
}

func paddedSID(namespace, identifier, padding string, n *big.Int) (*big.Int, error) {
	sum := sha256.Sum256([]byte(namespace + ":" + identifier))
	v, ok := new(big.Int).SetString(padding+hex.EncodeToString(sum[:]), 16)
	if !ok {
		return nil, errMalformedProof
	}
	v.Mod(v, n)
	if v.Sign() == 0 {
		return nil, errMalformedProof
	}
	return v, nil
}
