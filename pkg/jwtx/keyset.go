package jwtx

import (
	"crypto/ed25519"
	"sync"
)

// KeySet holds the Ed25519 public keys trusted for verification, keyed by
// kid. Safe for concurrent use.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PublicKey
}

func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]ed25519.PublicKey)}
}

// Add registers (or replaces) a public key under kid.
func (ks *KeySet) Add(kid string, pub ed25519.PublicKey) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.keys[kid] = pub
}

// Get returns the public key for kid or ErrUnknownKid.
func (ks *KeySet) Get(kid string) (ed25519.PublicKey, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	pub, ok := ks.keys[kid]
	if !ok {
		return nil, ErrUnknownKid
	}
	return pub, nil
}

// IsReady reports whether at least one verification key is loaded.
func (ks *KeySet) IsReady() bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return len(ks.keys) > 0
}

// Kids returns the registered key identifiers.
func (ks *KeySet) Kids() []string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	kids := make([]string, 0, len(ks.keys))
	for kid := range ks.keys {
		kids = append(kids, kid)
	}
	return kids
}
