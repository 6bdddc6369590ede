// Package protocol defines the wire-level types exchanged between
// nodes: transactions, their signed envelopes, blocks wrapped for
// signing, and the outer inter-process message (spec.md §3, §6).
package protocol

import (
	"github.com/batcoinnet/batcoin/internal/chain"
)

// TxType identifies what kind of transaction a Transaction carries.
// Idiomatic Go has no tagged unions, so every kind shares one flat
// struct and leaves the fields it doesn't use zero-valued — the same
// convention the teacher's Share/ShareHeader types use for optional
// sharechain-specific fields.
type TxType string

const (
	TxInit     TxType = "INIT"
	TxTransfer TxType = "TRANSFER"
	TxMine     TxType = "MINE"
)

// OutputRef names one spendable output a TRANSFER consumes as an input:
// the hash of the transaction that created it, its index within that
// transaction's outputs, and the amount it carries. Tracking the amount
// alongside the reference lets the node's local engine view select
// inputs greedily (spec.md §4.6) without maintaining a persistent UTXO
// index, which the Non-goals exclude.
type OutputRef struct {
	TxHash string `json:"tx_hash"`
	Index  int    `json:"index"`
	Amount int64  `json:"amount"`
}

// Transaction is the flat, all-kinds-in-one payload signed by its
// sender and carried inside a SignedEnvelope.
//
// Receiver carries the recipient's PEM-encoded public key itself (spec.md
// §3: "receiver (public key)"), not a node id — ReceiverID is the
// separate bookkeeping field for that. Keeping the actual key on the
// wire, rather than an id a reader must look up, matches how the
// original implementation builds this field directly from the
// recipient's key object.
type Transaction struct {
	Type       TxType      `json:"type"`
	Sender     int         `json:"sender"`
	Receiver   string      `json:"receiver"`
	Amount     int64       `json:"amount"`
	Timestamp  int64       `json:"timestamp"`
	ReceiverID string      `json:"receiver_id"`
	Change     int64       `json:"change"`
	Inputs     []OutputRef `json:"inputs"`
}

// BlockPayload is the unsigned block body carried inside a
// SignedEnvelope. It is a type alias of chain.WireBlock, so a block's
// ToWire result can be signed and validated without conversion.
type BlockPayload = chain.WireBlock

// SignedEnvelope wraps either a Transaction or a BlockPayload with the
// sender's signature over the canonical JSON of whichever field is
// populated (spec.md §6). Exactly one of Tx/Blk is non-nil.
type SignedEnvelope struct {
	Tx        *Transaction  `json:"tx,omitempty"`
	Blk       *BlockPayload `json:"blk,omitempty"`
	Signature string        `json:"signature"`
}

// MessageKind distinguishes the two payload shapes an inter-process
// Message can carry.
type MessageKind string

const (
	MessageTransaction MessageKind = "TRANSACTION"
	MessageBlock       MessageKind = "BLOCK"
)

// Message is the outermost frame put on the broadcast fabric: the
// sender's node id, what kind of payload it's carrying, and the
// payload itself serialized as a JSON string (spec.md §6) so that
// Message's own shape never has to change to accommodate payload
// evolution.
type Message struct {
	Sender  int         `json:"sender"`
	Message MessageKind `json:"message"`
	Pl      string      `json:"pl"`
}
