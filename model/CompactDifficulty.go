package model

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/holiman/uint256"

	"github.com/veridian-blockchain/veridian/errors"
)

// CompactDifficulty is the 32-bit "compact bits" difficulty threshold stored
// in a block header.
//
// It is a floating-point encoding with a 24-bit signed mantissa, an 8-bit
// exponent, an offset of 3 and a radix of 256. The exact bit pattern is
// consensus-critical: the field is hashed as part of the header and the
// encoding is redundant, so a value is never normalized before hashing.
type CompactDifficulty uint32

const (
	// compactPrecision is the width of the signed mantissa in bits.
	compactPrecision = 24

	// compactOffset is the exponent offset of the encoding.
	compactOffset = 3

	// compactSignBit is the sign bit of the signed mantissa.
	compactSignBit = 1 << (compactPrecision - 1)

	// compactMantissaMask masks the unsigned mantissa magnitude.
	compactMantissaMask = compactSignBit - 1
)

// NewCompactDifficultyFromSlice reads the 4-byte little-endian wire encoding
// of the difficulty field, as it appears in a serialized block header.
func NewCompactDifficultyFromSlice(b []byte) (CompactDifficulty, error) {
	if len(b) != 4 {
		return 0, errors.NewInvalidArgumentError("compact difficulty should be 4 bytes long, got %d", len(b))
	}

	return CompactDifficulty(binary.LittleEndian.Uint32(b)), nil
}

// NewCompactDifficultyFromString parses the big-endian hex form used for
// display, e.g. "1d00ffff".
func NewCompactDifficultyFromString(s string) (CompactDifficulty, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return 0, errors.NewInvalidArgumentError("compact difficulty %q is not valid hex", s, err)
	}

	if len(b) != 4 {
		return 0, errors.NewInvalidArgumentError("compact difficulty %q should be 8 hex characters", s)
	}

	return CompactDifficulty(binary.BigEndian.Uint32(b)), nil
}

// Bytes returns the 4-byte little-endian wire encoding.
func (c CompactDifficulty) Bytes() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(c))

	return b
}

// String returns the big-endian hex form, e.g. "1d00ffff".
func (c CompactDifficulty) String() string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(c))

	return hex.EncodeToString(b)
}

// ToExpanded calculates the 256-bit target threshold for the compact
// representation.
//
// Returns ErrDifficultyInvalid for negative, zero and overflowing values.
// These reject the block header before its hash is ever compared, matching
// the network-wide conversion rule.
func (c CompactDifficulty) ToExpanded() (ExpandedDifficulty, error) {
	// Negative thresholds are rejected without further computation.
	if uint32(c)&compactSignBit == compactSignBit {
		return ExpandedDifficulty{}, errors.NewDifficultyInvalidError("compact difficulty %s is negative", c)
	}

	mantissa := uint32(c) & compactMantissaMask
	exponent := int32(uint32(c)>>compactPrecision) - compactOffset

	// Normalize the mantissa and exponent before multiplying.
	//
	// The accept/reject boundary is part of the consensus rule: overflows
	// where only zero bits escape the 256-bit result are accepted, non-zero
	// escaping bits are rejected, and exponent >= 32 is rejected outright
	// even when the mantissa is zero. Underflows truncate towards zero.
	switch {
	case exponent >= 32:
		return ExpandedDifficulty{}, errors.NewDifficultyInvalidError("compact difficulty %s overflows the target range", c)
	case exponent == 31 && mantissa > math.MaxUint8:
		return ExpandedDifficulty{}, errors.NewDifficultyInvalidError("compact difficulty %s overflows the target range", c)
	case exponent == 31:
		mantissa, exponent = mantissa<<16, exponent-2
	case exponent == 30 && mantissa > math.MaxUint16:
		return ExpandedDifficulty{}, errors.NewDifficultyInvalidError("compact difficulty %s overflows the target range", c)
	case exponent == 30:
		mantissa, exponent = mantissa<<8, exponent-1
	case exponent < 0:
		mantissa >>= uint32(-exponent) * 8
		exponent = 0
	}

	// mantissa * 256^exponent, guaranteed in range by the normalization.
	var target uint256.Int
	target.SetUint64(uint64(mantissa))
	target.Lsh(&target, uint(exponent)*8)

	if target.IsZero() {
		return ExpandedDifficulty{}, errors.NewDifficultyInvalidError("compact difficulty %s expands to a zero target", c)
	}

	return ExpandedDifficulty{target: target}, nil
}
