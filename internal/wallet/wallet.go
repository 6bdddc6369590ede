// Package wallet generates the RSA-1024 key pairs used for transaction
// and block signing (spec.md §4.5), and the PEM encoding used to share
// public keys across the simulated network's key table.
package wallet

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// KeyBits is the RSA modulus size mandated by spec.md §4.5. 1024 bits is
// well below modern recommendations, but it is a protocol constant of
// the system being modeled, not a choice made for this implementation.
const KeyBits = 1024

// Wallet holds one node's key pair in memory for the lifetime of a
// simulation run. Nothing is persisted to disk — spec.md's Non-goals
// exclude persistence across runs.
type Wallet struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// Generate creates a new RSA-1024 key pair.
func Generate() (*Wallet, error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	return &Wallet{Private: priv, Public: &priv.PublicKey}, nil
}

// EncodePublicKeyPEM renders pub as a PKIX-encoded, PEM-armored public
// key, the form stored in the shared node-id-to-public-key mapping
// (spec.md §4.5).
func EncodePublicKeyPEM(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	block := &pem.Block{Type: "RSA PUBLIC KEY", Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}

// DecodePublicKeyPEM parses a PEM-armored PKIX public key as produced
// by EncodePublicKeyPEM.
func DecodePublicKeyPEM(encoded string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(encoded))
	if block == nil {
		return nil, fmt.Errorf("decode public key: no PEM block found")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("parse public key: not an RSA key")
	}
	return rsaPub, nil
}

// KeyTable maps node id to its public key, the shared read-only mapping
// every node consults to authenticate incoming envelopes (spec.md §4.5,
// §1 Out of scope: "key storage in a shared read-only map").
type KeyTable map[int]*rsa.PublicKey
