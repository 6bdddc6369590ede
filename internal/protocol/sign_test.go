package protocol

import (
	"testing"

	"github.com/batcoinnet/batcoin/internal/wallet"
)

func TestSignAndVerifyTransaction(t *testing.T) {
	w, err := wallet.Generate()
	if err != nil {
		t.Fatalf("wallet.Generate: %v", err)
	}

	tx := Transaction{Type: TxTransfer, Sender: 1, Receiver: "pubkey-2", Amount: 5, Timestamp: 100}
	env, err := SignTransaction(tx, w.Private)
	if err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}

	if err := Verify(env, w.Public); err != nil {
		t.Errorf("Verify should accept a correctly signed envelope: %v", err)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	signer, _ := wallet.Generate()
	other, _ := wallet.Generate()

	tx := Transaction{Type: TxInit, Sender: 0, Receiver: "pubkey-0", Amount: 100}
	env, err := SignTransaction(tx, signer.Private)
	if err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}

	if err := Verify(env, other.Public); err == nil {
		t.Error("Verify should reject a signature made with a different key")
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	w, _ := wallet.Generate()
	tx := Transaction{Type: TxTransfer, Sender: 1, Receiver: "pubkey-2", Amount: 5}
	env, err := SignTransaction(tx, w.Private)
	if err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}

	env.Tx.Amount = 9000 // tamper after signing

	if err := Verify(env, w.Public); err == nil {
		t.Error("Verify should reject a payload modified after signing")
	}
}

func TestVerifyRejectsMalformedEnvelope(t *testing.T) {
	w, _ := wallet.Generate()

	if err := Verify(SignedEnvelope{Signature: "x"}, w.Public); err == nil {
		t.Error("Verify should reject an envelope with neither tx nor blk")
	}

	tx := Transaction{Type: TxInit}
	if err := Verify(SignedEnvelope{Tx: &tx}, w.Public); err == nil {
		t.Error("Verify should reject an envelope with no signature")
	}
}

func TestSignBlockRoundTrip(t *testing.T) {
	w, _ := wallet.Generate()
	blk := BlockPayload{PrevHash: "abc", Nonce: 3, MerkleRoot: "root", Arity: 2}

	env, err := SignBlock(blk, w.Private)
	if err != nil {
		t.Fatalf("SignBlock: %v", err)
	}
	if err := Verify(env, w.Public); err != nil {
		t.Errorf("Verify should accept a correctly signed block envelope: %v", err)
	}
}
