package node

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/batcoinnet/batcoin/internal/chain"
	"github.com/batcoinnet/batcoin/internal/protocol"
)

// stateLog is the append-only, human-readable per-node log at
// ./logs/log_<id>.txt (spec.md §6), consumed offline by the fork
// analyzer. It is a flat os.File, not a keyed store — persistence
// across runs is explicitly out of scope, so nothing here survives
// past reading the file once for post-mortem analysis.
type stateLog struct {
	f *os.File
}

// openStateLog creates (or truncates) log_<id>.txt under dir (./logs by
// default in cmd/batcoind), creating dir if needed.
func openStateLog(dir string, id int) (*stateLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("log_%d.txt", id))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open state log: %w", err)
	}
	return &stateLog{f: f}, nil
}

// WriteChain appends a STATE section: "Chain: " followed by
// comma-separated block hashes from tip to genesis.
func (l *stateLog) WriteChain(blocks []*chain.Block) {
	if l == nil {
		return
	}
	hashes := make([]string, len(blocks))
	for i, b := range blocks {
		hashes[len(blocks)-1-i] = b.Hash()
	}
	fmt.Fprintf(l.f, "Chain: %s\n", strings.Join(hashes, ","))
}

// WriteTransaction appends a TRANSACTION section: pretty-printed JSON
// with 2-space indent.
func (l *stateLog) WriteTransaction(tx protocol.Transaction) {
	if l == nil {
		return
	}
	pretty, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(l.f, "TRANSACTION:\n%s\n", pretty)
}

// WriteIllegalBlock records a rejected block's claimed prev_hash, the
// error-class logging spec.md §7 calls "IllegalBlock".
func (l *stateLog) WriteIllegalBlock(prevHash string) {
	if l == nil {
		return
	}
	fmt.Fprintf(l.f, "IllegalBlock: prev_hash=%s\n", prevHash)
}

// WriteCompletion appends the run's closing record.
func (l *stateLog) WriteCompletion() {
	if l == nil {
		return
	}
	fmt.Fprintln(l.f, "Completed execution")
}

func (l *stateLog) Close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}
