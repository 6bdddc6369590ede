// Package merkle builds the k-ary Merkle tree used to commit a block's
// transaction list to a single root digest.
//
// Construction preserves an observable quirk of the protocol being
// modeled: the leaf digest is computed over the canonical JSON of the
// *entire* transaction list, not the individual transaction at that leaf
// (see DESIGN.md, "Merkle leaf hashing"). Every validator must reconstruct
// the identical tree from the identical block, so the behavior — however
// accidental its origin — is part of the wire contract and is preserved
// rather than "fixed".
package merkle

import (
	"encoding/json"

	"github.com/batcoinnet/batcoin/pkg/util"
)

// noParent marks a node with no parent (the root) or a child slot that was
// never assigned (never the case after Construct returns for a non-empty
// tree, since every slot is filled by either a real leaf or a duplicate).
const noParent = -1

// Node is one vertex of the tree. Parent and Children are indices into the
// owning Tree's Nodes slice rather than pointers, so the tree has no
// reference cycles and can be copied or serialized trivially (spec.md §9
// Design Notes).
type Node struct {
	Value    string
	Parent   int
	Children []int
}

// Tree is a complete k-ary Merkle tree over an ordered transaction list.
type Tree struct {
	Arity int
	Nodes []Node
	Root  int // index into Nodes, or -1 for an empty tree
}

// RootValue returns the Merkle root digest, or the empty string for a tree
// built from zero transactions.
func (t *Tree) RootValue() string {
	if t == nil || t.Root < 0 {
		return ""
	}
	return t.Nodes[t.Root].Value
}

// Construct builds a Merkle tree over txs (each element the canonical-JSON
// encoding of one transaction payload) at the given arity.
//
// Per spec.md §4.1, every leaf's value is SHA1 of the canonical JSON of the
// *whole* txs slice — re-marshaling a slice of already-canonical JSON
// objects with encoding/json yields exactly `[elem1,elem2,...]`, which is
// itself canonical (no injected whitespace, element order preserved), so
// this reproduces the list-level digest without re-deriving per-element
// canonicalization here.
func Construct(txs []json.RawMessage, arity int) (*Tree, error) {
	t := &Tree{Arity: arity, Root: noParent}
	if len(txs) == 0 {
		return t, nil
	}

	listJSON, err := json.Marshal(txs)
	if err != nil {
		return nil, err
	}
	leafValue := util.SHA1Hex(listJSON)

	for range txs {
		t.Nodes = append(t.Nodes, Node{
			Value:    leafValue,
			Parent:   noParent,
			Children: nil, // leaves have no children
		})
	}

	level := make([]int, len(t.Nodes))
	for i := range level {
		level[i] = i
	}

	for len(level) > 1 {
		var next []int

		for idx := 0; idx < len(level); idx += arity {
			children := make([]int, arity)
			childValues := make([]string, arity)

			for slot := 0; slot < arity; slot++ {
				var childIdx int
				if idx+slot < len(level) {
					childIdx = level[idx+slot]
				} else {
					// Short group: duplicate the last node of the current
					// level into every remaining slot (spec.md §4.1).
					childIdx = level[len(level)-1]
				}
				children[slot] = childIdx
				childValues[slot] = t.Nodes[childIdx].Value
			}

			parentIdx := len(t.Nodes)
			t.Nodes = append(t.Nodes, Node{
				Value:    util.SHA1Concat(childValues...),
				Parent:   noParent,
				Children: children,
			})

			for _, childIdx := range children {
				t.Nodes[childIdx].Parent = parentIdx
			}

			next = append(next, parentIdx)
		}

		level = next
	}

	t.Root = level[0]
	return t, nil
}
