// Package util holds small, dependency-free helpers shared by the merkle,
// chain, engine, and protocol packages: hashing and PoW target arithmetic.
package util

import (
	"crypto/sha1"
	"encoding/hex"
	"math/big"
)

// HashBitWidth is the width of the protocol's digest, fixed by the use of
// SHA-1 for both signatures and block hashing. Changing it changes every
// derived length in the protocol, so it is kept as a single named constant
// rather than inferred from crypto/sha1.Size at each call site.
const HashBitWidth = sha1.Size * 8

// SHA1Hex returns the lowercase hex SHA-1 digest of data.
func SHA1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// SHA1Concat hashes the concatenation of the given strings in order, with
// no separator — the form required for Merkle internal-node values and
// block header hashes (spec.md §3).
func SHA1Concat(parts ...string) string {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return SHA1Hex(buf)
}

// TargetForDifficulty returns 2^(HashBitWidth-d), the largest hash value
// (as an integer) accepted at difficulty d.
func TargetForDifficulty(d int) *big.Int {
	exp := HashBitWidth - d
	if exp < 0 {
		exp = 0
	}
	return new(big.Int).Lsh(big.NewInt(1), uint(exp))
}

// HexMeetsTarget reports whether a hex-encoded hash, read as a big-endian
// integer, is less than or equal to target.
func HexMeetsTarget(hashHex string, target *big.Int) bool {
	n, ok := new(big.Int).SetString(hashHex, 16)
	if !ok {
		return false
	}
	return n.Cmp(target) <= 0
}
