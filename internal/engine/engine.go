// Package engine implements the Protocol Engine: transaction and block
// validation, the proof-of-work search, and the per-node mempool
// (spec.md §4.4).
package engine

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/batcoinnet/batcoin/internal/chain"
	"github.com/batcoinnet/batcoin/internal/protocol"
	"github.com/batcoinnet/batcoin/pkg/util"
)

// Engine validates and applies transactions and blocks against one
// node's local view of the chain.
type Engine struct {
	Store *chain.Store

	blockLength int
	difficulty  int
	arity       int
	initAmount  int64
	reward      int64
	target      *big.Int

	mempool []protocol.Transaction
}

// New constructs a Protocol Engine and seeds its Chain Store with
// genesis. Parameters mirror spec.md §4.4's constructor: transactions
// per block, the integer difficulty exponent, Merkle arity, the fixed
// INIT amount, and the MINE reward.
func New(blockLength, difficulty, arity int, initAmount, reward int64) *Engine {
	e := &Engine{
		Store:       chain.NewStore(),
		blockLength: blockLength,
		difficulty:  difficulty,
		arity:       arity,
		initAmount:  initAmount,
		reward:      reward,
		target:      util.TargetForDifficulty(difficulty),
	}
	e.Store.Append(chain.NewGenesis())
	return e
}

// ValidateTransaction applies spec.md §4.4's rules. TRANSFER and MINE
// currently accept-all beyond structural well-formedness, matching the
// spec's explicit non-enforcement of UTXO validity at this layer (§9).
func (e *Engine) ValidateTransaction(tx protocol.Transaction) bool {
	switch tx.Type {
	case protocol.TxInit:
		if tx.Amount != e.initAmount {
			return false
		}
		if len(e.Store.MainChain()) > 1 {
			return false
		}
		for _, pending := range e.mempool {
			if pending.Type == protocol.TxInit && pending.ReceiverID == tx.ReceiverID {
				return false
			}
		}
		return true
	case protocol.TxTransfer, protocol.TxMine:
		return true
	default:
		return false
	}
}

// ValidateBlock reconstructs a Block from payload and checks it in the
// order spec.md §4.4 prescribes: prev_hash extends the current main
// tip, the header hash meets the PoW target, the Merkle root matches a
// fresh reconstruction, and every carried transaction independently
// validates. It returns the reconstructed Block on success, or nil.
func (e *Engine) ValidateBlock(payload protocol.BlockPayload) *chain.Block {
	tip := e.Store.Tip()
	if tip == nil || payload.PrevHash != tip.Hash() {
		return nil
	}

	rebuilt, err := chain.FromWire(payload)
	if err != nil {
		return nil
	}
	rebuilt.SetNonce(payload.Nonce)

	if !util.HexMeetsTarget(rebuilt.Hash(), e.target) {
		return nil
	}
	if rebuilt.MerkleRoot() != payload.MerkleRoot {
		return nil
	}

	for _, raw := range payload.Transactions {
		var tx protocol.Transaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			return nil
		}
		if !e.ValidateTransaction(tx) {
			return nil
		}
	}

	return rebuilt
}

// AddTransaction parses env's inner transaction, validates it, and on
// success appends it to the mempool. It reports whether the mempool now
// holds exactly blockLength entries — the signal a miner should start
// proof-of-work.
func (e *Engine) AddTransaction(env protocol.SignedEnvelope) (mempoolFull bool, err error) {
	if env.Tx == nil {
		return false, fmt.Errorf("add transaction: envelope carries no tx")
	}
	if !e.ValidateTransaction(*env.Tx) {
		return false, fmt.Errorf("add transaction: failed validation")
	}
	e.mempool = append(e.mempool, *env.Tx)
	return len(e.mempool) == e.blockLength, nil
}

// AddBlock parses env's inner block, validates it, and on success hands
// the reconstructed Block to the Chain Store. It reports whether the
// block was accepted (appended to the store, possibly as an orphan is
// NOT success — only a validated, store-accepted block counts) and
// whether acceptance reorganized the main tip onto a different branch.
func (e *Engine) AddBlock(env protocol.SignedEnvelope) (accepted, reorged bool) {
	if env.Blk == nil {
		return false, false
	}
	blk := e.ValidateBlock(*env.Blk)
	if blk == nil {
		return false, false
	}
	return e.Store.Append(blk)
}

// ProofOfWork takes the first blockLength mempool entries, removes
// them, appends rewardTx last, and searches nonces from zero until the
// block's hash meets the target or the nonce space is exhausted. It
// returns the mined Block, or nil if the search exhausted nonce space
// without success (spec.md §4.4 permits giving up or retrying with a
// fresher mempool snapshot; this implementation gives up).
func (e *Engine) ProofOfWork(rewardTx protocol.Transaction) (*chain.Block, error) {
	if len(e.mempool) < e.blockLength {
		return nil, fmt.Errorf("proof of work: mempool has %d entries, need %d", len(e.mempool), e.blockLength)
	}

	selected := e.mempool[:e.blockLength]
	e.mempool = e.mempool[e.blockLength:]

	txs := make([]json.RawMessage, 0, len(selected)+1)
	for _, tx := range selected {
		raw, err := util.CanonicalJSON(tx)
		if err != nil {
			return nil, fmt.Errorf("proof of work: canonicalize tx: %w", err)
		}
		txs = append(txs, json.RawMessage(raw))
	}
	rewardRaw, err := util.CanonicalJSON(rewardTx)
	if err != nil {
		return nil, fmt.Errorf("proof of work: canonicalize reward tx: %w", err)
	}
	txs = append(txs, json.RawMessage(rewardRaw))

	tip := e.Store.Tip()
	blk, err := chain.New(txs, e.arity, tip.Hash())
	if err != nil {
		return nil, fmt.Errorf("proof of work: build block: %w", err)
	}

	var nonce uint32
	for {
		blk.SetNonce(nonce)
		if util.HexMeetsTarget(blk.Hash(), e.target) {
			return blk, nil
		}
		if nonce == ^uint32(0) {
			return nil, fmt.Errorf("proof of work: exhausted nonce space without meeting target")
		}
		nonce++
	}
}

// MempoolLen reports how many validated transactions are currently
// pending inclusion — exposed for the batcoin_mempool_size gauge.
func (e *Engine) MempoolLen() int {
	return len(e.mempool)
}

// InitAmount returns the configured INIT transaction amount.
func (e *Engine) InitAmount() int64 {
	return e.initAmount
}
