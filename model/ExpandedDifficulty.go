package model

import (
	"encoding/hex"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/holiman/uint256"
)

// ExpandedDifficulty is the full 256-bit unsigned target threshold derived
// from a CompactDifficulty.
//
// A block is proof-of-work-valid exactly when its hash, interpreted as a
// 256-bit little-endian integer, is less than or equal to this threshold.
//
// Each CompactDifficulty represents a range of ExpandedDifficulty values
// because the floating-point format rounds on conversion, so consensus code
// always carries the compact form and expands on demand.
type ExpandedDifficulty struct {
	target uint256.Int
}

// ExpandedDifficultyFromHash interprets the 32 bytes of a block hash as a
// little-endian integer.
//
// Hashes are never used to calculate the difficulty of future blocks; this
// exists only to implement comparisons between hashes and thresholds.
func ExpandedDifficultyFromHash(hash *chainhash.Hash) ExpandedDifficulty {
	var d ExpandedDifficulty
	d.target.SetBytes(bt.ReverseBytes(hash.CloneBytes()))

	return d
}

// Uint256 returns a copy of the threshold value.
func (d ExpandedDifficulty) Uint256() uint256.Int {
	return d.target
}

// IsZero reports whether the threshold is zero. A successfully expanded
// difficulty is never zero.
func (d ExpandedDifficulty) IsZero() bool {
	return d.target.IsZero()
}

// Cmp compares two thresholds, returning -1, 0 or +1.
func (d ExpandedDifficulty) Cmp(other ExpandedDifficulty) int {
	return d.target.Cmp(&other.target)
}

// CmpHash compares the threshold with a block hash, interpreting the hash as
// a 256-bit little-endian integer.
func (d ExpandedDifficulty) CmpHash(hash *chainhash.Hash) int {
	return d.Cmp(ExpandedDifficultyFromHash(hash))
}

// HashCmp compares a block hash with a threshold. It is the exact inverse of
// CmpHash: the two directions always agree on equality and reverse on
// inequality, since both sides are plain 256-bit integers.
func HashCmp(hash *chainhash.Hash, d ExpandedDifficulty) int {
	return -d.CmpHash(hash)
}

// HashMeetsDifficulty reports whether hash satisfies the proof-of-work
// threshold d, i.e. hash <= d as 256-bit integers.
func HashMeetsDifficulty(hash *chainhash.Hash, d ExpandedDifficulty) bool {
	return HashCmp(hash, d) <= 0
}

// ToCompact returns the compact encoding of the threshold, rounding to the
// 24-bit mantissa.
//
// The conversion is lossy and many compact patterns expand to the same
// threshold, so re-encoding an arbitrary header field does not round-trip in
// general.
func (d ExpandedDifficulty) ToCompact() CompactDifficulty {
	// exponent is the byte length of the value, mantissa its top 3 bytes.
	exponent := (d.target.BitLen() + 7) / 8

	var mantissa uint32
	if exponent <= compactOffset {
		mantissa = uint32(d.target.Uint64()) << uint(8*(compactOffset-exponent))
	} else {
		var t uint256.Int
		t.Rsh(&d.target, uint(8*(exponent-compactOffset)))
		mantissa = uint32(t.Uint64())
	}

	// The mantissa is signed; shift a byte into the exponent if the sign bit
	// would be set.
	if mantissa&compactSignBit != 0 {
		mantissa >>= 8
		exponent++
	}

	return CompactDifficulty(uint32(exponent)<<compactPrecision | mantissa)
}

// Bytes returns the 32-byte little-endian form, the same byte order used for
// block hashes.
func (d ExpandedDifficulty) Bytes() []byte {
	b := d.target.Bytes32()

	return bt.ReverseBytes(b[:])
}

// String returns the little-endian hex form, comparable by eye with a block
// hash's storage order.
func (d ExpandedDifficulty) String() string {
	return hex.EncodeToString(d.Bytes())
}
