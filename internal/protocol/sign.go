package protocol

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"fmt"

	"github.com/batcoinnet/batcoin/pkg/util"
)

// SignTransaction canonicalizes tx, signs its SHA-1 digest with priv
// using PKCS#1 v1.5 (spec.md §4.5), and returns the envelope ready to
// broadcast.
func SignTransaction(tx Transaction, priv *rsa.PrivateKey) (SignedEnvelope, error) {
	sig, err := signPayload(tx, priv)
	if err != nil {
		return SignedEnvelope{}, err
	}
	return SignedEnvelope{Tx: &tx, Signature: sig}, nil
}

// SignBlock canonicalizes blk and signs it the same way as
// SignTransaction; used by a miner to sign the block it just mined.
func SignBlock(blk BlockPayload, priv *rsa.PrivateKey) (SignedEnvelope, error) {
	sig, err := signPayload(blk, priv)
	if err != nil {
		return SignedEnvelope{}, err
	}
	return SignedEnvelope{Blk: &blk, Signature: sig}, nil
}

func signPayload(payload interface{}, priv *rsa.PrivateKey) (string, error) {
	digest, err := digestOf(payload)
	if err != nil {
		return "", err
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA1, digest)
	if err != nil {
		return "", fmt.Errorf("sign payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

func digestOf(payload interface{}) ([]byte, error) {
	canon, err := util.CanonicalJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	sum := sha1.Sum(canon)
	return sum[:], nil
}

// Verify checks that env carries exactly one of Tx/Blk and a signature
// that verifies against pub over the canonical JSON of that payload
// (spec.md §4.5). A malformed envelope — missing payload or signature —
// is rejected, matching the "unauthentic envelope" error class in
// spec.md §7.
func Verify(env SignedEnvelope, pub *rsa.PublicKey) error {
	if env.Signature == "" {
		return fmt.Errorf("verify envelope: missing signature")
	}

	var payload interface{}
	switch {
	case env.Tx != nil && env.Blk == nil:
		payload = *env.Tx
	case env.Blk != nil && env.Tx == nil:
		payload = *env.Blk
	default:
		return fmt.Errorf("verify envelope: must carry exactly one of tx or blk")
	}

	sig, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		return fmt.Errorf("verify envelope: decode signature: %w", err)
	}

	digest, err := digestOf(payload)
	if err != nil {
		return err
	}

	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA1, digest, sig); err != nil {
		return fmt.Errorf("verify envelope: signature mismatch: %w", err)
	}
	return nil
}
