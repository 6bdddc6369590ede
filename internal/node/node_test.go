package node

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/batcoinnet/batcoin/internal/engine"
	"github.com/batcoinnet/batcoin/internal/fabric"
	"github.com/batcoinnet/batcoin/internal/protocol"
	"github.com/batcoinnet/batcoin/internal/wallet"
)

// TestTwoNodeRunCompletes is a light smoke test for the event loop: two
// nodes (one miner) run for a short, fixed timeout against a shared
// fabric and independent per-node engines, and both must exit cleanly
// with a completion record written to their log file. Mining/ generation
// are randomized by wall-clock timing, so this does not assert on final
// chain shape — the scenario-level behavior (S1-S6) is covered by
// deterministic tests at the engine, chain and protocol layers and by
// the direct handleBlock test below.
func TestTwoNodeRunCompletes(t *testing.T) {
	dir := t.TempDir()

	w0, err := wallet.Generate()
	if err != nil {
		t.Fatalf("wallet.Generate: %v", err)
	}
	w1, err := wallet.Generate()
	if err != nil {
		t.Fatalf("wallet.Generate: %v", err)
	}

	keys := wallet.KeyTable{0: w0.Public, 1: w1.Public}
	fab := fabric.New([]int{0, 1}, zap.NewNop())

	n0, err := New(Config{
		ID: 0, IsMiner: true, DishonestMaster: noDishonestMaster,
		Wallet: w0, Keys: keys, Engine: engine.New(2, 1, 2, 100, 10),
		Fabric: fab, Reward: 10, LogDir: dir, Logger: zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New node 0: %v", err)
	}
	n1, err := New(Config{
		ID: 1, IsMiner: false, DishonestMaster: noDishonestMaster,
		Wallet: w1, Keys: keys, Engine: engine.New(2, 1, 2, 100, 10),
		Fabric: fab, Reward: 10, LogDir: dir, Logger: zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New node 1: %v", err)
	}

	peerIDs := []int{0, 1}
	done := make(chan struct{}, 2)
	for _, n := range []*Node{n0, n1} {
		go func(n *Node) {
			n.Run(150*time.Millisecond, peerIDs)
			done <- struct{}{}
		}(n)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("node did not complete within the test timeout")
		}
	}

	for _, id := range []int{0, 1} {
		content, err := os.ReadFile(filepath.Join(dir, "log_"+strconv.Itoa(id)+".txt"))
		if err != nil {
			t.Fatalf("read log for node %d: %v", id, err)
		}
		if !strings.Contains(string(content), "Completed execution") {
			t.Errorf("log for node %d missing completion record", id)
		}
		if !strings.Contains(string(content), "Chain:") {
			t.Errorf("log for node %d missing initial chain state", id)
		}
	}
}

// TestDishonestNodeQuarantinesNonMasterBlocks models S4: a dishonest
// node accepts blocks only from its designated master and silently
// drops every other sender's block, even a perfectly valid one.
func TestDishonestNodeQuarantinesNonMasterBlocks(t *testing.T) {
	wMaster, err := wallet.Generate()
	require.NoError(t, err)
	wOther, err := wallet.Generate()
	require.NoError(t, err)

	keys := wallet.KeyTable{0: wMaster.Public, 1: wOther.Public}
	eng := engine.New(1, 1, 2, 100, 10)

	n, err := New(Config{
		ID: 2, IsDishonest: true, DishonestMaster: 0,
		Wallet: wMaster, Keys: keys, Engine: eng,
		Fabric: fabric.New([]int{0, 1, 2}, zap.NewNop()),
		Reward: 10, LogDir: t.TempDir(), Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	full, err := eng.AddTransaction(protocol.SignedEnvelope{Tx: ptrTx(protocol.Transaction{
		Type: protocol.TxTransfer, Sender: 0, Receiver: "pubkey-1", ReceiverID: "1", Amount: 5,
	})})
	require.NoError(t, err)
	require.True(t, full, "a single-transaction block should fill a blockLength=1 mempool")

	blk, err := eng.ProofOfWork(protocol.Transaction{Type: protocol.TxMine, Sender: 0, Receiver: "pubkey-0", ReceiverID: "0", Amount: 10})
	require.NoError(t, err)
	require.NotNil(t, blk)

	payload := blk.ToWire()
	fromOther, err := protocol.SignBlock(payload, wOther.Private)
	require.NoError(t, err)
	fromMaster, err := protocol.SignBlock(payload, wMaster.Private)
	require.NoError(t, err)

	n.handleBlock(1, fromOther)
	require.Len(t, eng.Store.MainChain(), 1, "a valid block from a non-master sender must be dropped, not appended")

	n.handleBlock(0, fromMaster)
	require.Len(t, eng.Store.MainChain(), 2, "the same block from the designated master must be accepted")
}

func ptrTx(tx protocol.Transaction) *protocol.Transaction { return &tx }
