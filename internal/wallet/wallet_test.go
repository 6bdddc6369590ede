package wallet

import "testing"

func TestGenerateProducesUsableKeyPair(t *testing.T) {
	w, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if w.Private.N.BitLen() == 0 {
		t.Error("generated private key has no modulus")
	}
	if w.Public != &w.Private.PublicKey {
		t.Error("Public should reference the private key's embedded public key")
	}
}

func TestPEMRoundTrip(t *testing.T) {
	w, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	encoded, err := EncodePublicKeyPEM(w.Public)
	if err != nil {
		t.Fatalf("EncodePublicKeyPEM: %v", err)
	}

	decoded, err := DecodePublicKeyPEM(encoded)
	if err != nil {
		t.Fatalf("DecodePublicKeyPEM: %v", err)
	}

	if decoded.N.Cmp(w.Public.N) != 0 {
		t.Error("decoded modulus does not match original public key")
	}
}

func TestDecodePublicKeyPEMRejectsGarbage(t *testing.T) {
	if _, err := DecodePublicKeyPEM("not a pem block"); err == nil {
		t.Error("expected an error decoding non-PEM input")
	}
}
