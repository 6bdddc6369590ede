// Package analyzer reconstructs fork diagrams from the per-node state
// logs written by internal/node (spec.md §6). This replaces the
// marker-string scanner from the original prototype with a structured
// reader, per spec.md §9 REDESIGN FLAGS.
package analyzer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// shortHashLen is the number of leading hex characters used to
// identify a block when tabulating forks across nodes (spec.md §6).
const shortHashLen = 7

// NodeChain is one node's most recently logged main chain, ordered
// tip-first (matching the log's own "Chain: " ordering).
type NodeChain struct {
	NodeID int
	Hashes []string
}

// ParseLastChain scans path for STATE sections and returns the
// hashes of the last one written (tip-first), which is the node's
// final known main chain at the time its log was closed.
func ParseLastChain(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	var last []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		const prefix = "Chain: "
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		rest := strings.TrimPrefix(line, prefix)
		if rest == "" {
			last = nil
			continue
		}
		last = strings.Split(rest, ",")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log: %w", err)
	}
	return last, nil
}

// LoadChains reads the final chain state for every node id in nodeIDs
// from dir's log_<id>.txt files.
func LoadChains(dir string, nodeIDs []int) ([]NodeChain, error) {
	chains := make([]NodeChain, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		path := filepath.Join(dir, fmt.Sprintf("log_%d.txt", id))
		hashes, err := ParseLastChain(path)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		chains = append(chains, NodeChain{NodeID: id, Hashes: hashes})
	}
	return chains, nil
}

// ForkPoint records one depth-from-tip at which the observed node
// chains disagree on which block occupies that position.
type ForkPoint struct {
	DepthFromTip int
	ByHash       map[string][]int // short hash -> node ids agreeing on it
}

// FindForks walks every chain from the tip backward and reports every
// depth at which more than one distinct short hash is observed across
// nodes — the fork points a longest-chain reorg left behind.
func FindForks(chains []NodeChain) []ForkPoint {
	maxDepth := 0
	for _, c := range chains {
		if len(c.Hashes) > maxDepth {
			maxDepth = len(c.Hashes)
		}
	}

	var forks []ForkPoint
	for depth := 0; depth < maxDepth; depth++ {
		byHash := make(map[string][]int)
		for _, c := range chains {
			if depth >= len(c.Hashes) {
				continue
			}
			h := shorten(c.Hashes[depth])
			byHash[h] = append(byHash[h], c.NodeID)
		}
		if len(byHash) > 1 {
			forks = append(forks, ForkPoint{DepthFromTip: depth, ByHash: byHash})
		}
	}
	return forks
}

func shorten(hash string) string {
	if len(hash) <= shortHashLen {
		return hash
	}
	return hash[:shortHashLen]
}
