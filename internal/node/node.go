// Package node drives one simulated network participant: the event
// loop that mixes receiving messages, mining, and generating new
// transactions (spec.md §4.6).
package node

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/batcoinnet/batcoin/internal/engine"
	"github.com/batcoinnet/batcoin/internal/fabric"
	"github.com/batcoinnet/batcoin/internal/metrics"
	"github.com/batcoinnet/batcoin/internal/protocol"
	"github.com/batcoinnet/batcoin/internal/wallet"
)

// pollInterval bounds how long a loop iteration blocks waiting for an
// inbox item (spec.md §4.6 step a, "a short blocking wait").
const pollInterval = 20 * time.Millisecond

// generateTick is the configured interval between a node's own
// transaction-generation attempts (spec.md §4.6 step f).
const generateTick = 200 * time.Millisecond

// noDishonestMaster marks a node with no designated dishonest master,
// i.e. an honest node (spec.md §3, "dishonest_master (id or sentinel)").
const noDishonestMaster = -1

// Node is one participant's full local state: its identity, key
// material, engine, honesty flags, and the fabric it reads from and
// broadcasts onto.
type Node struct {
	ID              int
	IsMiner         bool
	IsDishonest     bool
	DishonestMaster int // noDishonestMaster if honest

	Wallet *wallet.Wallet
	Keys   wallet.KeyTable
	Engine *engine.Engine
	Fabric *fabric.Fabric

	reward int64
	pubPEM string // this node's own PEM-encoded public key, for self-addressed transactions

	owned     []protocol.OutputRef
	nextBlock *protocol.SignedEnvelope

	lastGenerate time.Time
	rng          rngSource

	log *stateLog
	lg  *zap.Logger
}

// Config bundles the constructor parameters spec.md §4.6 lists: the
// peer-id-to-public-key mapping, honesty flags, and Protocol Engine
// parameters.
type Config struct {
	ID              int
	IsMiner         bool
	IsDishonest     bool
	DishonestMaster int

	Wallet *wallet.Wallet
	Keys   wallet.KeyTable
	Engine *engine.Engine
	Fabric *fabric.Fabric

	Reward int64

	LogDir string
	Logger *zap.Logger
}

// New constructs a Node. It opens the node's per-id log file and
// records the initial (genesis-only) chain state, matching spec.md
// §4.6's constructor contract.
func New(cfg Config) (*Node, error) {
	log, err := openStateLog(cfg.LogDir, cfg.ID)
	if err != nil {
		return nil, err
	}

	pubPEM, err := wallet.EncodePublicKeyPEM(cfg.Wallet.Public)
	if err != nil {
		return nil, err
	}

	master := cfg.DishonestMaster
	if !cfg.IsDishonest {
		master = noDishonestMaster
	}

	n := &Node{
		ID:              cfg.ID,
		IsMiner:         cfg.IsMiner,
		IsDishonest:     cfg.IsDishonest,
		DishonestMaster: master,
		Wallet:          cfg.Wallet,
		Keys:            cfg.Keys,
		Engine:          cfg.Engine,
		Fabric:          cfg.Fabric,
		reward:          cfg.Reward,
		pubPEM:          pubPEM,
		rng:             rand.New(rand.NewSource(int64(cfg.ID)+time.Now().UnixNano())),
		log:             log,
		lg:              cfg.Logger,
	}
	n.log.WriteChain(n.Engine.Store.MainChain())
	return n, nil
}

func (n *Node) logger() *zap.Logger {
	if n.lg == nil {
		return zap.NewNop()
	}
	return n.lg
}

func errField(err error) zap.Field { return zap.Error(err) }

// Run drives the event loop until timeout elapses, per spec.md §4.6.
// peerIDs is the full node population, used by the generator to pick a
// recipient.
func (n *Node) Run(timeout time.Duration, peerIDs []int) {
	deadline := time.Now().Add(timeout)

	n.emitInit()

	for time.Now().Before(deadline) {
		n.step(peerIDs)
	}

	n.Fabric.Drain(n.ID)
	n.log.WriteCompletion()
	n.log.Close()
}

// step runs exactly one loop iteration: deferred emission, drain,
// authenticate, dispatch, and (on the configured tick) the generator.
// A block mined during this iteration's dispatch is only flushed on the
// *next* call to step, one full iteration later, so that peers' already-
// queued messages drain first (spec.md §5, "Scheduling details": block
// transmission is deferred by one loop iteration). Mining runs to
// completion inside dispatch, never interleaved with message processing.
func (n *Node) step(peerIDs []int) {
	if n.nextBlock != nil {
		n.broadcastBlock(*n.nextBlock)
		n.nextBlock = nil
	}

	select {
	case msg := <-n.Fabric.Inbox(n.ID):
		n.handle(msg)
	case <-time.After(pollInterval):
	}

	if time.Since(n.lastGenerate) > generateTick {
		n.generate(peerIDs)
	}
}

// handle authenticates and dispatches one inbound message (spec.md
// §4.6 steps b-c). Any failure — bad signature, malformed payload,
// dishonest quarantine — is silently dropped, never propagated.
func (n *Node) handle(msg protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			n.logger().Warn("recovered from panic while handling message", zap.Any("panic", r))
		}
	}()

	pub, ok := n.Keys[msg.Sender]
	if !ok {
		return
	}

	var env protocol.SignedEnvelope
	if err := json.Unmarshal([]byte(msg.Pl), &env); err != nil {
		return
	}
	if err := protocol.Verify(env, pub); err != nil {
		return
	}

	switch msg.Message {
	case protocol.MessageTransaction:
		n.handleTransaction(env)
	case protocol.MessageBlock:
		n.handleBlock(msg.Sender, env)
	}
}

func (n *Node) handleTransaction(env protocol.SignedEnvelope) {
	full, err := n.Engine.AddTransaction(env)
	if err != nil {
		metrics.TransactionsRejected.WithLabelValues(n.label()).Inc()
		return
	}
	if env.Tx.Receiver == n.pubPEM {
		n.addOwned(protocol.OutputRef{TxHash: txRefHash(env), Index: 0, Amount: env.Tx.Amount})
	}
	metrics.MempoolSize.WithLabelValues(n.label()).Set(float64(n.Engine.MempoolLen()))
	if full && n.IsMiner {
		n.mine()
	}
}

// handleBlock applies the dishonest-quarantine rule (spec.md §4.6 step
// c, §7 "Adversarial peer"): a dishonest node accepts blocks only from
// its designated master; every other sender's block is silently
// discarded, indistinguishable to the sender from ordinary message
// loss.
func (n *Node) handleBlock(sender int, env protocol.SignedEnvelope) {
	if n.IsDishonest && sender != n.DishonestMaster {
		return
	}

	if accepted, reorged := n.Engine.AddBlock(env); accepted {
		n.log.WriteChain(n.Engine.Store.MainChain())
		metrics.ChainHeight.WithLabelValues(n.label()).Set(float64(len(n.Engine.Store.MainChain())))
		metrics.OrphansParked.WithLabelValues(n.label()).Set(float64(n.Engine.Store.OrphanCount()))
		if reorged {
			metrics.ReorgsTotal.WithLabelValues(n.label()).Inc()
		}
		return
	}
	metrics.BlocksRejected.WithLabelValues(n.label()).Inc()
	if env.Blk != nil {
		n.log.WriteIllegalBlock(env.Blk.PrevHash)
	}
}

func (n *Node) label() string {
	return strconv.Itoa(n.ID)
}

func (n *Node) emitInit() {
	tx := protocol.Transaction{
		Type:       protocol.TxInit,
		Sender:     n.ID,
		Receiver:   n.pubPEM,
		Amount:     n.Engine.InitAmount(),
		Timestamp:  time.Now().Unix(),
		ReceiverID: strconv.Itoa(n.ID),
	}
	env, err := protocol.SignTransaction(tx, n.Wallet.Private)
	if err != nil {
		n.logger().Warn("failed to sign init transaction", errField(err))
		return
	}

	if _, err := n.Engine.AddTransaction(env); err == nil {
		n.addOwned(protocol.OutputRef{TxHash: txRefHash(env), Index: 0, Amount: tx.Amount})
	}
	n.broadcastTransaction(env)
}

func (n *Node) broadcastTransaction(env protocol.SignedEnvelope) {
	n.log.WriteTransaction(*env.Tx)
	n.broadcast(protocol.MessageTransaction, env)
}

func (n *Node) broadcastBlock(env protocol.SignedEnvelope) {
	n.broadcast(protocol.MessageBlock, env)
}

func (n *Node) broadcast(kind protocol.MessageKind, env protocol.SignedEnvelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		n.logger().Warn("failed to marshal envelope for broadcast", errField(err))
		return
	}
	n.Fabric.Broadcast(n.ID, protocol.Message{Sender: n.ID, Message: kind, Pl: string(payload)})
}

func (n *Node) addOwned(out protocol.OutputRef) {
	n.owned = append(n.owned, out)
}

// spendOwned removes spent outputs from the local owned-output view.
// The caller is responsible for re-adding any change output (see
// generate) — this is the node's only bookkeeping of its own balance
// (spec.md §1 Non-goals: no persistent cross-chain UTXO set).
func (n *Node) spendOwned(spent []protocol.OutputRef) {
	spentSet := make(map[protocol.OutputRef]bool, len(spent))
	for _, s := range spent {
		spentSet[s] = true
	}
	var remaining []protocol.OutputRef
	for _, o := range n.owned {
		if !spentSet[o] {
			remaining = append(remaining, o)
		}
	}
	n.owned = remaining
}

// txRefHash returns the envelope's signature as the reference for a
// transaction's outputs, used only as the local bookkeeping key for
// owned outputs (not a protocol hash); outputs of one transaction are
// told apart by OutputRef.Index. Distinct signed transactions get
// distinct references because the signature covers the whole payload.
func txRefHash(env protocol.SignedEnvelope) string {
	return env.Signature
}
