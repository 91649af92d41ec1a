package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompactDifficultyFromSlice(t *testing.T) {
	bits, err := NewCompactDifficultyFromSlice([]byte{0xff, 0xff, 0x00, 0x1d})
	require.NoError(t, err)
	require.Equal(t, CompactDifficulty(0x1d00ffff), bits)
	require.Equal(t, []byte{0xff, 0xff, 0x00, 0x1d}, bits.Bytes())

	_, err = NewCompactDifficultyFromSlice([]byte{0xff, 0xff, 0x00})
	require.Error(t, err)
}

func TestNewCompactDifficultyFromString(t *testing.T) {
	bits, err := NewCompactDifficultyFromString("1d00ffff")
	require.NoError(t, err)
	require.Equal(t, CompactDifficulty(0x1d00ffff), bits)
	require.Equal(t, "1d00ffff", bits.String())

	_, err = NewCompactDifficultyFromString("zzzzzzzz")
	require.Error(t, err)

	_, err = NewCompactDifficultyFromString("1d00ff")
	require.Error(t, err)
}

func TestToExpandedVector(t *testing.T) {
	// exponent = 4-3 = 1, mantissa = 0x003456 = 13398,
	// target = 13398 * 256^1 = 3429888
	bits := CompactDifficulty(0x04003456)

	target, err := bits.ToExpanded()
	require.NoError(t, err)

	n := target.Uint256()
	require.Equal(t, uint64(3429888), n.Uint64())
	require.LessOrEqual(t, n.BitLen(), 64)
}

func TestToExpandedRejectsNegative(t *testing.T) {
	// bit 23 set makes the signed mantissa negative, always rejected
	for _, bits := range []CompactDifficulty{
		0x00800000,
		0x04803456,
		0x1d80ffff,
		0xff800000,
	} {
		_, err := bits.ToExpanded()
		require.Error(t, err, "bits %s", bits)
	}

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		bits := randomCompactDifficulty(r) | compactSignBit
		_, err := bits.ToExpanded()
		require.Error(t, err, "bits %s", bits)
	}
}

func TestToExpandedRejectsZeroTarget(t *testing.T) {
	tests := []struct {
		name string
		bits CompactDifficulty
	}{
		{"all zero", 0x00000000},
		{"zero mantissa mid exponent", 0x10000000},
		{"mantissa shifted out, exponent 1", 0x01003456},
		{"mantissa shifted out, exponent 0", 0x00123456},
		{"zero mantissa max valid exponent", 0x1f000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.bits.ToExpanded()
			require.Error(t, err)
		})
	}
}

func TestToExpandedRejectsLargeExponent(t *testing.T) {
	// exponent >= 32 is rejected before the mantissa is inspected, even when
	// the mantissa is zero
	for _, bits := range []CompactDifficulty{
		0x23000000,
		0x23000001,
		0x7f000000,
		0xff000000,
		0xff7fffff,
	} {
		_, err := bits.ToExpanded()
		require.Error(t, err, "bits %s", bits)
	}
}

func TestToExpandedOverflowBoundary(t *testing.T) {
	// raw exponent 0x22 gives exponent 31: accepted only while the mantissa
	// fits in one byte
	_, err := CompactDifficulty(0x220000ff).ToExpanded()
	require.NoError(t, err)

	_, err = CompactDifficulty(0x22000100).ToExpanded()
	require.Error(t, err)

	// raw exponent 0x21 gives exponent 30: accepted only while the mantissa
	// fits in two bytes
	_, err = CompactDifficulty(0x2100ffff).ToExpanded()
	require.NoError(t, err)

	_, err = CompactDifficulty(0x21010000).ToExpanded()
	require.Error(t, err)
}

func TestToExpandedUnderflowTruncates(t *testing.T) {
	// exponent = 2-3 = -1: the mantissa is shifted right one byte and the
	// low bits are silently dropped
	target, err := CompactDifficulty(0x02123456).ToExpanded()
	require.NoError(t, err)

	n := target.Uint256()
	require.Equal(t, uint64(0x1234), n.Uint64())
}

func TestCompactEncodingIsRedundant(t *testing.T) {
	// The overflow rewrites map several compact patterns onto the same
	// target, so the conversion is deliberately not injective.
	//
	// 0x220000ff rewrites to (0xff0000, e=29), the same target 0x2100ff00
	// reaches through the exponent-30 rewrite.
	a, err := CompactDifficulty(0x220000ff).ToExpanded()
	require.NoError(t, err)
	b, err := CompactDifficulty(0x2100ff00).ToExpanded()
	require.NoError(t, err)
	require.Equal(t, 0, a.Cmp(b))

	// 0x21001234 rewrites to (0x123400, e=29), which 0x20123400 encodes
	// directly.
	c, err := CompactDifficulty(0x21001234).ToExpanded()
	require.NoError(t, err)
	d, err := CompactDifficulty(0x20123400).ToExpanded()
	require.NoError(t, err)
	require.Equal(t, 0, c.Cmp(d))

	// ... and distinct encodings of small values collapse as well
	e, err := CompactDifficulty(0x04003456).ToExpanded()
	require.NoError(t, err)
	f, err := CompactDifficulty(0x03345600).ToExpanded()
	require.NoError(t, err)
	require.Equal(t, 0, e.Cmp(f))
}

func TestToCompactRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		bits CompactDifficulty
		want CompactDifficulty
	}{
		{"pow limit mainnet", 0x1d00ffff, 0x1d00ffff},
		{"pow limit regtest", 0x207fffff, 0x207fffff},
		{"typical difficulty", 0x180f7f7d, 0x180f7f7d},
		{"non-canonical encoding collapses", 0x04003456, 0x03345600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := tt.bits.ToExpanded()
			require.NoError(t, err)
			assert.Equal(t, tt.want, target.ToCompact())
		})
	}
}

func TestToCompactAvoidsSignBit(t *testing.T) {
	bits, err := NewCompactDifficultyFromString("2000ffff")
	require.NoError(t, err)

	target, err := bits.ToExpanded()
	require.NoError(t, err)

	reencoded := target.ToCompact()
	require.Equal(t, uint32(0), uint32(reencoded)&compactSignBit)

	// the re-encoding must still expand to the same target
	roundTripped, err := reencoded.ToExpanded()
	require.NoError(t, err)
	require.Equal(t, 0, target.Cmp(roundTripped))
}

// randomCompactDifficulty draws an arbitrary 32-bit pattern; callers force
// edge cases by masking or setting bits themselves.
func randomCompactDifficulty(r *rand.Rand) CompactDifficulty {
	return CompactDifficulty(r.Uint32())
}

// randomValidCompactDifficulty draws patterns until one expands successfully.
func randomValidCompactDifficulty(t *testing.T, r *rand.Rand) CompactDifficulty {
	t.Helper()

	for {
		bits := randomCompactDifficulty(r)
		if _, err := bits.ToExpanded(); err == nil {
			return bits
		}
	}
}
