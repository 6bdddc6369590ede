// Command batcoind runs a fixed population of simulated Batcoin peer
// nodes against an in-process broadcast fabric for a configured
// duration, then exits (spec.md §6).
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/batcoinnet/batcoin/internal/engine"
	"github.com/batcoinnet/batcoin/internal/fabric"
	"github.com/batcoinnet/batcoin/internal/metrics"
	"github.com/batcoinnet/batcoin/internal/node"
	"github.com/batcoinnet/batcoin/internal/wallet"
)

// Protocol constants not exposed on the CLI — spec.md §6 fixes the
// positional argument list to seven values; INIT amount and reward are
// held fixed rather than adding undocumented flags.
const (
	initAmount = int64(100)
	reward     = int64(10)
)

func main() {
	debug := flag.Bool("debug", false, "enable debug-level logging")
	metricsAddr := flag.String("metrics-addr", "", "address to serve /metrics on, e.g. :9090 (disabled if empty)")
	logDir := flag.String("log-dir", "./logs", "directory for per-node state logs")
	flag.Parse()

	args := flag.Args()
	if len(args) != 7 {
		fmt.Fprintln(os.Stderr, "usage: batcoind [flags] num_nodes block_size timeout_seconds num_miners num_dishonest merkle_arity difficulty")
		os.Exit(1)
	}

	cfg, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid arguments: %s\n", err)
		os.Exit(1)
	}

	logger := newLogger(*debug)
	defer logger.Sync()

	if *metricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(*metricsAddr, metrics.Handler()); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	if err := run(cfg, *logDir, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Completed execution of", cfg.numNodes, "nodes")
}

type runConfig struct {
	numNodes     int
	blockSize    int
	timeout      time.Duration
	numMiners    int
	numDishonest int
	merkleArity  int
	difficulty   int
}

func parseArgs(args []string) (runConfig, error) {
	ints := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return runConfig{}, fmt.Errorf("argument %d (%q) is not an integer: %w", i+1, a, err)
		}
		ints[i] = v
	}

	cfg := runConfig{
		numNodes:     ints[0],
		blockSize:    ints[1],
		timeout:      time.Duration(ints[2]) * time.Second,
		numMiners:    ints[3],
		numDishonest: ints[4],
		merkleArity:  ints[5],
		difficulty:   ints[6],
	}

	if cfg.numMiners+cfg.numDishonest > cfg.numNodes {
		return runConfig{}, fmt.Errorf("num_miners (%d) + num_dishonest (%d) must not exceed num_nodes (%d)",
			cfg.numMiners, cfg.numDishonest, cfg.numNodes)
	}
	if cfg.merkleArity < 2 {
		return runConfig{}, fmt.Errorf("merkle_arity must be >= 2, got %d", cfg.merkleArity)
	}

	return cfg, nil
}

func newLogger(debug bool) *zap.Logger {
	var logger *zap.Logger
	if debug {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	return logger
}

// run wires the shared key table and broadcast fabric, constructs one
// Node per id, and blocks until every node's event loop exits.
func run(cfg runConfig, logDir string, logger *zap.Logger) error {
	peerIDs := make([]int, cfg.numNodes)
	wallets := make(map[int]*wallet.Wallet, cfg.numNodes)
	keys := make(wallet.KeyTable, cfg.numNodes)

	for id := 0; id < cfg.numNodes; id++ {
		peerIDs[id] = id
		w, err := wallet.Generate()
		if err != nil {
			return fmt.Errorf("generate key pair for node %d: %w", id, err)
		}
		wallets[id] = w
		keys[id] = w.Public
	}

	fab := fabric.New(peerIDs, logger)

	nodes := make([]*node.Node, cfg.numNodes)
	for id := 0; id < cfg.numNodes; id++ {
		isMiner := id < cfg.numMiners
		isDishonest := dishonestIDs(cfg)[id]

		n, err := node.New(node.Config{
			ID:              id,
			IsMiner:         isMiner,
			IsDishonest:     isDishonest,
			DishonestMaster: 0,
			Wallet:          wallets[id],
			Keys:            keys,
			Engine:          engine.New(cfg.blockSize, cfg.difficulty, cfg.merkleArity, initAmount, reward),
			Fabric:          fab,
			Reward:          reward,
			LogDir:          logDir,
			Logger:          logger,
		})
		if err != nil {
			return fmt.Errorf("construct node %d: %w", id, err)
		}
		nodes[id] = n
	}

	metrics.ActiveNodes.Set(float64(cfg.numNodes))

	var wg sync.WaitGroup
	for _, n := range nodes {
		wg.Add(1)
		go func(n *node.Node) {
			defer wg.Done()
			defer metrics.ActiveNodes.Dec()
			n.Run(cfg.timeout, peerIDs)
		}(n)
	}
	wg.Wait()

	return nil
}

// dishonestIDs computes the set per spec.md §6: ids [0, num_dishonest)
// union the first (num_dishonest - 1) non-miner ids, with node 0 as
// the dishonest master whenever num_dishonest > 0.
func dishonestIDs(cfg runConfig) map[int]bool {
	set := make(map[int]bool, cfg.numDishonest)
	if cfg.numDishonest == 0 {
		return set
	}

	for id := 0; id < cfg.numDishonest; id++ {
		set[id] = true
	}

	needed := cfg.numDishonest - 1
	for id := 0; id < cfg.numNodes && needed > 0; id++ {
		if id >= cfg.numMiners && !set[id] {
			set[id] = true
			needed--
		}
	}

	return set
}
