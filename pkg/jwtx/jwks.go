package jwtx

import (
	"encoding/base64"
	"sort"
)

// JWK is a JSON Web Key restricted to the OKP/Ed25519 shape this service
// issues (RFC 8037).
type JWK struct {
	Kty string `json:"kty"` // "OKP"
	Crv string `json:"crv"` // "Ed25519"
	Kid string `json:"kid"`
	Use string `json:"use"` // "sig"
	Alg string `json:"alg"` // "EdDSA"
	X   string `json:"x"`   // base64url public key
}

// JWKS is the published key set document.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWKS renders the key set as a publishable JWKS document with a stable
// ordering, so the endpoint output is cacheable and diff-friendly.
func (ks *KeySet) JWKS() JWKS {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	out := JWKS{Keys: make([]JWK, 0, len(ks.keys))}
	for kid, pub := range ks.keys {
		out.Keys = append(out.Keys, JWK{
			Kty: "OKP",
			Crv: "Ed25519",
			Kid: kid,
			Use: "sig",
			Alg: "EdDSA",
			X:   base64.RawURLEncoding.EncodeToString(pub),
		})
	}

	sort.Slice(out.Keys, func(i, j int) bool { return out.Keys[i].Kid < out.Keys[j].Kid })
	return out
}
