package chain

import (
	"sync"
)

// sentinelParent marks the genesis entry, which has no parent in the arena.
const sentinelParent = -1

// entry is one arena slot: a block plus the index of its parent entry.
type entry struct {
	block  *Block
	parent int
}

// Store is the forest of blocks a single node maintains locally: a flat
// arena of entries linked by parent index (spec.md §9 Design Notes — no
// pointer cycles, trivially walkable), a main-tip pointer, and a set of
// orphans waiting on a parent that hasn't arrived yet.
//
// A Store is only ever touched by the single goroutine driving its owning
// node's event loop; the mutex is defense-in-depth, not a concurrency
// requirement.
type Store struct {
	mu      sync.Mutex
	entries []entry
	main    int // index into entries, or sentinelParent if empty
	orphans map[string]*Block
}

// NewStore returns an empty Chain Store. Call Append with the genesis
// block to seed it.
func NewStore() *Store {
	return &Store{
		main:    sentinelParent,
		orphans: make(map[string]*Block),
	}
}

// Append inserts block into the store. If the store is empty, block is
// taken as genesis. Otherwise its parent is located by prev_hash among
// existing entries (most recently appended first); if found, the block
// is linked in and the main tip advances when the block extends the
// current tip or its branch becomes strictly longer than the current
// main; ties keep the existing main. If no parent is found, the block
// is parked as an orphan and Append returns false with no error — this
// is the normal, non-exceptional "block arrived before its parent" case
// (spec.md §7, "Orphan block"). reorged reports whether this append
// switched the main tip away from a branch it was not already extending
// (spec.md §4.3, competing branches), for the batcoin_reorgs_total
// counter.
func (s *Store) Append(block *Block) (accepted, reorged bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(block)
}

func (s *Store) appendLocked(block *Block) (bool, bool) {
	if len(s.entries) == 0 {
		s.entries = append(s.entries, entry{block: block, parent: sentinelParent})
		s.main = 0
		s.adoptOrphansLocked(block.Hash())
		return true, false
	}

	parentIdx, ok := s.findParentLocked(block.PrevHash)
	if !ok {
		s.orphans[block.Hash()] = block
		return false, false
	}

	oldMain := s.main
	q := len(s.entries)
	s.entries = append(s.entries, entry{block: block, parent: parentIdx})

	if parentIdx == s.main {
		s.main = q
	} else if s.lengthToGenesisLocked(q) > s.lengthToGenesisLocked(s.main) {
		s.main = q
	}
	reorged := s.main == q && parentIdx != oldMain

	s.adoptOrphansLocked(block.Hash())
	return true, reorged
}

// findParentLocked searches entries latest-first for one whose hash
// equals prevHash, matching the teacher's "most recent wins on ties"
// scan order used throughout sharechain lookups.
func (s *Store) findParentLocked(prevHash string) (int, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].block.Hash() == prevHash {
			return i, true
		}
	}
	return 0, false
}

// adoptOrphansLocked re-appends any parked block whose prev_hash equals
// newHash. Each adopted block's own descendants are resolved by the
// recursive appendLocked call, and the loop repeats until no parked block
// names newHash as its parent.
func (s *Store) adoptOrphansLocked(newHash string) {
	for {
		var adopted *Block
		for hash, orphan := range s.orphans {
			if orphan.PrevHash == newHash {
				adopted = orphan
				delete(s.orphans, hash)
				break
			}
		}
		if adopted == nil {
			return
		}
		s.appendLocked(adopted) // orphan adoption's own reorg signal isn't surfaced here
	}
}

// lengthToGenesisLocked walks parent links from index, counting hops
// until genesis (the entry whose parent is the sentinel), so genesis
// itself is at depth 0.
func (s *Store) lengthToGenesisLocked(index int) int {
	depth := 0
	for s.entries[index].parent != sentinelParent {
		depth++
		index = s.entries[index].parent
	}
	return depth
}

// LengthToGenesis returns the number of hops from the entry holding
// block's hash back to genesis, or -1 if block is not in the store.
func (s *Store) LengthToGenesis(blockHash string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.block.Hash() == blockHash {
			return s.lengthToGenesisLocked(i)
		}
	}
	return -1
}

// Tip returns the block at the current main-chain head, or nil if the
// store is empty.
func (s *Store) Tip() *Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.main == sentinelParent {
		return nil
	}
	return s.entries[s.main].block
}

// MainChain returns the ordered sequence of blocks from genesis to the
// current tip.
func (s *Store) MainChain() []*Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.main == sentinelParent {
		return nil
	}

	var reversed []*Block
	for idx := s.main; idx != sentinelParent; idx = s.entries[idx].parent {
		reversed = append(reversed, s.entries[idx].block)
	}

	chain := make([]*Block, len(reversed))
	for i, b := range reversed {
		chain[len(reversed)-1-i] = b
	}
	return chain
}

// OrphanCount returns the number of blocks currently parked without a
// known parent — exposed for the batcoin_orphans_parked gauge.
func (s *Store) OrphanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orphans)
}
