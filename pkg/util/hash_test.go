package util

import (
	"math/big"
	"testing"
)

func TestSHA1Hex(t *testing.T) {
	got := SHA1Hex([]byte("hello"))
	want := "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"
	if got != want {
		t.Errorf("SHA1Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestSHA1ConcatDeterministic(t *testing.T) {
	a := SHA1Concat("x", "y", "z")
	b := SHA1Concat("x", "y", "z")
	if a != b {
		t.Errorf("SHA1Concat not deterministic: %s != %s", a, b)
	}
	// There is no separator between parts, so a split at a different
	// boundary that yields the same byte stream must hash identically.
	if SHA1Concat("xy", "z") != SHA1Concat("x", "yz") {
		t.Error("SHA1Concat should hash only the concatenated bytes, not the split points")
	}
}

func TestTargetForDifficulty(t *testing.T) {
	target := TargetForDifficulty(0)
	want := new(big.Int).Lsh(big.NewInt(1), 160)
	if target.Cmp(want) != 0 {
		t.Errorf("TargetForDifficulty(0) = %s, want %s", target, want)
	}

	t1 := TargetForDifficulty(1)
	half := new(big.Int).Rsh(want, 1)
	if t1.Cmp(half) != 0 {
		t.Errorf("TargetForDifficulty(1) = %s, want %s", t1, half)
	}
}

func TestHexMeetsTarget(t *testing.T) {
	target := TargetForDifficulty(4) // fairly easy

	zeroHash := "0000000000000000000000000000000000000000"
	if !HexMeetsTarget(zeroHash, target) {
		t.Error("all-zero hash should meet any positive target")
	}

	maxHash := ""
	for i := 0; i < 40; i++ {
		maxHash += "f"
	}
	if HexMeetsTarget(maxHash, target) {
		t.Error("all-f hash should not meet a non-trivial target")
	}

	if HexMeetsTarget("not-hex", target) {
		t.Error("malformed hex should never meet target")
	}
}
