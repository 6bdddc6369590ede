package testutil

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/batcoinnet/batcoin/internal/chain"
	"github.com/batcoinnet/batcoin/internal/protocol"
)

// SampleTransactions returns n structurally valid TRANSFER payloads,
// pre-encoded as json.RawMessage with encoding/json (keys in struct field
// order, not canonicalized), suitable for feeding directly into
// merkle.Construct or chain.New.
func SampleTransactions(n int) []json.RawMessage {
	txs := make([]json.RawMessage, n)
	for i := range txs {
		tx := protocol.Transaction{
			Type:       protocol.TxTransfer,
			Sender:     i,
			Receiver:   "pubkey-" + strconv.Itoa(i+1),
			ReceiverID: strconv.Itoa(i + 1),
			Amount:     int64(i + 1),
		}
		raw, _ := json.Marshal(tx)
		txs[i] = raw
	}
	return txs
}

// SampleBlock builds a block over SampleTransactions(n) at the given
// arity, chained onto prevHash, and fails the test on error.
func SampleBlock(t *testing.T, n, arity int, prevHash string) *chain.Block {
	t.Helper()
	b, err := chain.New(SampleTransactions(n), arity, prevHash)
	if err != nil {
		t.Fatalf("build sample block: %v", err)
	}
	return b
}

// SampleChain builds a linear chain.Store of count blocks beyond
// genesis, each holding n transactions at the given arity.
func SampleChain(t *testing.T, count, n, arity int) *chain.Store {
	t.Helper()
	store := chain.NewStore()
	genesis := chain.NewGenesis()
	store.Append(genesis)

	prev := genesis.Hash()
	for i := 0; i < count; i++ {
		b := SampleBlock(t, n, arity, prev)
		if accepted, _ := store.Append(b); !accepted {
			t.Fatalf("sample block %d was not accepted by the store", i)
		}
		prev = b.Hash()
	}
	return store
}
