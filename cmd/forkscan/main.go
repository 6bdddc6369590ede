// Command forkscan reads the per-node state logs a batcoind run
// leaves behind and reports where the nodes' final chains diverge
// (spec.md §6, §9 REDESIGN FLAGS).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/batcoinnet/batcoin/internal/analyzer"
)

func main() {
	logDir := flag.String("log-dir", "./logs", "directory containing log_<id>.txt files")
	numNodes := flag.Int("num-nodes", 0, "number of nodes to scan (ids 0..num-nodes-1)")
	flag.Parse()

	if *numNodes <= 0 {
		fmt.Fprintln(os.Stderr, "forkscan: -num-nodes must be set to a positive value")
		os.Exit(1)
	}

	ids := make([]int, *numNodes)
	for i := range ids {
		ids[i] = i
	}

	chains, err := analyzer.LoadChains(*logDir, ids)
	if err != nil {
		fmt.Fprintf(os.Stderr, "forkscan: %s\n", err)
		os.Exit(1)
	}

	forks := analyzer.FindForks(chains)
	if len(forks) == 0 {
		fmt.Println("no forks detected: all nodes agree on the main chain")
		return
	}

	for _, f := range forks {
		fmt.Printf("fork at depth %d from tip:\n", f.DepthFromTip)
		for hash, nodes := range f.ByHash {
			fmt.Printf("  %s: nodes %v\n", hash, nodes)
		}
	}
}
