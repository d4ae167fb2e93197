package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// KeyManager owns the signing keypair and the matching verification KeySet.
// Keys are ephemeral: a fresh Ed25519 keypair is generated at startup, which
// means all outstanding access tokens are invalidated on restart. Sessions
// survive via refresh tokens held in the store.
type KeyManager struct {
	Signer   *EdDSASigner
	KeySet   *KeySet
	Verifier Verifier
}

// NewKeyManager generates an Ed25519 keypair, registers it in a KeySet and
// wires a verifier for the given issuer.
func NewKeyManager(issuer string) (*KeyManager, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate Ed25519 keypair: %w", err)
	}

	kid := newKid(pub)
	signer, err := NewEdDSASigner(kid, priv)
	if err != nil {
		return nil, err
	}

	keys := NewKeySet()
	keys.Add(kid, pub)

	return &KeyManager{
		Signer:   signer,
		KeySet:   keys,
		Verifier: NewVerifierEdDSA(keys, issuer),
	}, nil
}

// newKid derives a short stable identifier from the public key bytes.
func newKid(pub ed25519.PublicKey) string {
	return base64.RawURLEncoding.EncodeToString(pub[:8])
}
