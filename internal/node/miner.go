package node

import (
	"time"

	"go.uber.org/zap"

	"github.com/batcoinnet/batcoin/internal/metrics"
	"github.com/batcoinnet/batcoin/internal/protocol"
)

// mine implements spec.md §4.6 step e: build the self-addressed reward
// transaction, run proof-of-work to completion, sign the result, and
// cache it in nextBlock. Broadcast is deferred to the next loop
// iteration (step d) so peers' already-queued messages drain first.
func (n *Node) mine() {
	reward := protocol.Transaction{
		Type:      protocol.TxMine,
		Sender:    n.ID,
		Receiver:  n.pubPEM,
		Amount:    n.reward,
		Timestamp: time.Now().Unix(),
	}

	blk, err := n.Engine.ProofOfWork(reward)
	if err != nil {
		n.logger().Warn("proof of work did not find a block", errField(err))
		return
	}

	env, err := protocol.SignBlock(blk.ToWire(), n.Wallet.Private)
	if err != nil {
		n.logger().Warn("failed to sign mined block", errField(err))
		return
	}

	n.addOwned(protocol.OutputRef{TxHash: blk.Hash(), Index: len(blk.Transactions) - 1, Amount: n.reward})

	n.nextBlock = &env
	metrics.BlocksMined.WithLabelValues(n.label()).Inc()
	n.logger().Info("mined block", zap.String("hash", blk.Hash()), zap.Int("node", n.ID))
}
