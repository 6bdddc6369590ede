package testutil

import (
	"testing"

	"github.com/batcoinnet/batcoin/internal/wallet"
)

// MustWallet generates an RSA-1024 key pair or fails the test. Tests
// across packages sign transactions and blocks routinely enough that
// this avoids repeating the error-check boilerplate at every call
// site.
func MustWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.Generate()
	if err != nil {
		t.Fatalf("generate wallet: %v", err)
	}
	return w
}
