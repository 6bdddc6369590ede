// Package chain implements the Block record and the Chain Store: the
// forest of blocks each node maintains locally, with longest-chain
// reorganization and orphan parking.
package chain

import (
	"encoding/json"
	"strconv"

	"github.com/batcoinnet/batcoin/internal/merkle"
	"github.com/batcoinnet/batcoin/pkg/util"
)

// Block is immutable after mining: only the nonce may change, and every
// change to it recomputes the header hash.
type Block struct {
	PrevHash     string
	Nonce        uint32
	Arity        int
	Transactions []json.RawMessage
	Merkle       *merkle.Tree

	hash string
}

// New builds a Block from an ordered transaction list, hashing the
// transactions into a Merkle tree and computing the initial (nonce=0)
// header hash. Use NewGenesis for the chain's root block.
func New(transactions []json.RawMessage, arity int, prevHash string) (*Block, error) {
	tree, err := merkle.Construct(transactions, arity)
	if err != nil {
		return nil, err
	}

	b := &Block{
		PrevHash:     prevHash,
		Nonce:        0,
		Arity:        arity,
		Transactions: transactions,
		Merkle:       tree,
	}
	b.computeHash()
	return b, nil
}

// NewGenesis returns the single root block: empty prev_hash, no
// transactions, and therefore an empty Merkle root (spec.md §3).
func NewGenesis() *Block {
	b, _ := New(nil, 2, "")
	return b
}

// SetNonce updates the nonce and recomputes the cached header hash.
func (b *Block) SetNonce(nonce uint32) {
	b.Nonce = nonce
	b.computeHash()
}

func (b *Block) computeHash() {
	b.hash = util.SHA1Concat(strconv.FormatUint(uint64(b.Nonce), 10), b.PrevHash, b.Merkle.RootValue())
}

// Hash returns the block's cached header hash.
func (b *Block) Hash() string {
	return b.hash
}

// MerkleRoot returns the block's Merkle root digest.
func (b *Block) MerkleRoot() string {
	return b.Merkle.RootValue()
}

// WireBlock is the unsigned wire representation of a block — the payload
// a miner signs and broadcasts (spec.md §6). It carries no signature; that
// is layered on by internal/protocol.
type WireBlock struct {
	PrevHash     string            `json:"prev_hash"`
	Nonce        uint32            `json:"nonce"`
	MerkleRoot   string            `json:"merkle_root"`
	Arity        int               `json:"arity"`
	Transactions []json.RawMessage `json:"transactions"`
}

// ToWire returns the unsigned wire payload for this block.
func (b *Block) ToWire() WireBlock {
	return WireBlock{
		PrevHash:     b.PrevHash,
		Nonce:        b.Nonce,
		MerkleRoot:   b.MerkleRoot(),
		Arity:        b.Arity,
		Transactions: b.Transactions,
	}
}

// FromWire reconstructs a Block from its wire form, recomputing the
// Merkle tree and header hash locally rather than trusting the claimed
// merkle_root — callers that need to verify the claim (e.g. block
// validation) compare FromWire's MerkleRoot() against wire.MerkleRoot.
func FromWire(wire WireBlock) (*Block, error) {
	b, err := New(wire.Transactions, wire.Arity, wire.PrevHash)
	if err != nil {
		return nil, err
	}
	b.SetNonce(wire.Nonce)
	return b, nil
}
