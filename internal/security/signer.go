// Package security provides optional provenance signing for the published
// state, so downstream consumers can verify a payload really came from this
// service and was not altered in transit.
package security

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
)

// StateSigner signs published payloads with an ephemeral secp256k1 key.
// The key lives for the process lifetime; consumers pick the public key up
// from the signed wrapper or the status endpoint.
type StateSigner struct {
	key *ecdsa.PrivateKey
}

// SignedState wraps a published payload with its signature.
type SignedState struct {
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
	PublicKey string          `json:"public_key"`
	SignedAt  int64           `json:"signed_at"`
}

// NewStateSigner generates a fresh signing key.
func NewStateSigner() (*StateSigner, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	s := &StateSigner{key: key}
	logrus.WithField("public_key", s.PublicKey()).Info("State signing enabled")
	return s, nil
}

// PublicKey returns the hex-encoded uncompressed public key.
func (s *StateSigner) PublicKey() string {
	return hexutil.Encode(crypto.FromECDSAPub(&s.key.PublicKey))
}

// Sign marshals the payload and signs its keccak digest together with the
// signing timestamp.
func (s *StateSigner) Sign(payload interface{}) (SignedState, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return SignedState{}, fmt.Errorf("marshal payload: %w", err)
	}

	signedAt := time.Now().Unix()
	sig, err := crypto.Sign(digest(raw, signedAt), s.key)
	if err != nil {
		return SignedState{}, fmt.Errorf("sign payload: %w", err)
	}

	return SignedState{
		Payload:   raw,
		Signature: hexutil.Encode(sig),
		PublicKey: s.PublicKey(),
		SignedAt:  signedAt,
	}, nil
}

// Verify checks a signed wrapper against its embedded public key.
func Verify(signed SignedState) (bool, error) {
	sig, err := hexutil.Decode(signed.Signature)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return false, fmt.Errorf("unexpected signature length %d", len(sig))
	}
	pub, err := hexutil.Decode(signed.PublicKey)
	if err != nil {
		return false, fmt.Errorf("decode public key: %w", err)
	}

	// Drop the recovery id; VerifySignature takes the 64-byte form.
	return crypto.VerifySignature(pub, digest(signed.Payload, signed.SignedAt), sig[:64]), nil
}

func digest(payload []byte, signedAt int64) []byte {
	return crypto.Keccak256(payload, []byte(fmt.Sprintf("%d", signedAt)))
}
