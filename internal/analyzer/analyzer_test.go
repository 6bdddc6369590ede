package analyzer

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func writeLog(t *testing.T, dir string, id int, lines ...string) {
	t.Helper()
	path := filepath.Join(dir, "log_"+strconv.Itoa(id)+".txt")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func TestParseLastChainTakesMostRecent(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, 0,
		"Chain: aaa,bbb",
		"TRANSACTION:",
		"{}",
		"Chain: ccc,bbb,aaa",
	)

	hashes, err := ParseLastChain(filepath.Join(dir, "log_0.txt"))
	if err != nil {
		t.Fatalf("ParseLastChain: %v", err)
	}
	if len(hashes) != 3 || hashes[0] != "ccc" {
		t.Errorf("hashes = %v, want [ccc bbb aaa]", hashes)
	}
}

func TestFindForksDetectsDivergence(t *testing.T) {
	chains := []NodeChain{
		{NodeID: 0, Hashes: []string{"ccc1111", "bbb2222", "aaa3333"}},
		{NodeID: 1, Hashes: []string{"ddd4444", "bbb2222", "aaa3333"}},
	}

	forks := FindForks(chains)
	if len(forks) != 1 {
		t.Fatalf("expected exactly one fork point, got %d", len(forks))
	}
	if forks[0].DepthFromTip != 0 {
		t.Errorf("fork depth = %d, want 0", forks[0].DepthFromTip)
	}
	if len(forks[0].ByHash) != 2 {
		t.Errorf("expected 2 distinct short hashes at the fork point, got %d", len(forks[0].ByHash))
	}
}

func TestFindForksAgreesOnIdenticalChains(t *testing.T) {
	chains := []NodeChain{
		{NodeID: 0, Hashes: []string{"aaa1111", "bbb2222"}},
		{NodeID: 1, Hashes: []string{"aaa1111", "bbb2222"}},
	}
	if forks := FindForks(chains); len(forks) != 0 {
		t.Errorf("expected no forks for identical chains, got %v", forks)
	}
}
