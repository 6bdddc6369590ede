package node

import (
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/batcoinnet/batcoin/internal/protocol"
	"github.com/batcoinnet/batcoin/internal/wallet"
)

// SelectInputs implements spec.md §4.6's greedy output-selection rule
// (testable property 7): prefer a single tightest-fit output covering
// amount outright; otherwise accumulate the largest available outputs,
// descending, until their sum reaches amount. It returns ok=false if
// neither strategy covers amount, leaving owned untouched by the
// caller.
func SelectInputs(owned []protocol.OutputRef, amount int64) (selected []protocol.OutputRef, change int64, ok bool) {
	var geq, lt []protocol.OutputRef
	for _, o := range owned {
		if o.Amount >= amount {
			geq = append(geq, o)
		} else {
			lt = append(lt, o)
		}
	}

	if len(geq) > 0 {
		best := geq[0]
		for _, o := range geq[1:] {
			if o.Amount < best.Amount {
				best = o
			}
		}
		return []protocol.OutputRef{best}, best.Amount - amount, true
	}

	sort.Slice(lt, func(i, j int) bool { return lt[i].Amount > lt[j].Amount })

	var sum int64
	var acc []protocol.OutputRef
	for _, o := range lt {
		acc = append(acc, o)
		sum += o.Amount
		if sum >= amount {
			return acc, sum - amount, true
		}
	}
	return nil, 0, false
}

// balance sums the node's currently tracked owned outputs.
func balance(owned []protocol.OutputRef) int64 {
	var total int64
	for _, o := range owned {
		total += o.Amount
	}
	return total
}

// generate implements spec.md §4.6 step f: pick a recipient uniformly
// at random, pick an amount in [1, balance], select inputs greedily,
// and sign+broadcast a TRANSFER. A zero balance or an unsatisfiable
// amount silently aborts the tick — neither is an error (spec.md §7).
func (n *Node) generate(peerIDs []int) {
	n.lastGenerate = time.Now()

	bal := balance(n.owned)
	if bal <= 0 {
		return
	}

	recipients := make([]int, 0, len(peerIDs))
	for _, id := range peerIDs {
		if id != n.ID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}
	receiver := recipients[n.rng.Intn(len(recipients))]

	receiverPub, ok := n.Keys[receiver]
	if !ok {
		return
	}
	receiverPEM, err := wallet.EncodePublicKeyPEM(receiverPub)
	if err != nil {
		n.logger().Warn("failed to encode recipient public key", errField(err))
		return
	}

	amount := int64(n.rng.Int63n(bal)) + 1

	inputs, change, ok := SelectInputs(n.owned, amount)
	if !ok {
		return
	}

	tx := protocol.Transaction{
		Type:       protocol.TxTransfer,
		Sender:     n.ID,
		Receiver:   receiverPEM,
		ReceiverID: strconv.Itoa(receiver),
		Amount:     amount,
		Timestamp:  time.Now().Unix(),
		Change:     change,
		Inputs:     inputs,
	}

	env, err := protocol.SignTransaction(tx, n.Wallet.Private)
	if err != nil {
		n.logger().Warn("failed to sign generated transaction", errField(err))
		return
	}

	n.spendOwned(inputs)
	if change > 0 {
		n.addOwned(protocol.OutputRef{TxHash: txRefHash(env), Index: 1, Amount: change})
	}
	n.broadcastTransaction(env)
}

// rngSource lets tests substitute a deterministic source; production
// nodes get their own *rand.Rand, seeded in New from the node id and the
// wall clock.
type rngSource interface {
	Intn(n int) int
	Int63n(n int64) int64
}

var _ rngSource = (*rand.Rand)(nil)
