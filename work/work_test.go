package work

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-blockchain/veridian/errors"
	"github.com/veridian-blockchain/veridian/model"
)

var (
	bigOne = big.NewInt(1)

	// oneLsh256 is 1 shifted left 256 bits, for cross-checking the complement
	// identity against arbitrary-precision arithmetic.
	oneLsh256 = new(big.Int).Lsh(bigOne, 256)

	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 128), bigOne)
)

func TestFromCompact(t *testing.T) {
	tests := []struct {
		name         string
		bits         model.CompactDifficulty
		expectedWork string // hex string of the expected work value
		wantErr      error
	}{
		{
			name:         "genesis difficulty",
			bits:         0x1d00ffff,
			expectedWork: "100010001",
		},
		{
			name:         "regtest difficulty",
			bits:         0x207fffff,
			expectedWork: "2",
		},
		{
			name:         "typical mainnet difficulty",
			bits:         0x180f7f7d,
			expectedWork: "1084aca3607d9298e7",
		},
		{
			name:    "negative difficulty",
			bits:    0x01800000,
			wantErr: errors.ErrDifficultyInvalid,
		},
		{
			name:    "zero difficulty",
			bits:    0x00000000,
			wantErr: errors.ErrDifficultyInvalid,
		},
		{
			name:    "mantissa shifted out",
			bits:    0x01003456,
			wantErr: errors.ErrDifficultyInvalid,
		},
		{
			name:    "low target, work exceeds 128 bits",
			bits:    0x04003456,
			wantErr: errors.ErrWorkOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := FromCompact(tt.bits)

			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}

			require.NoError(t, err)

			expected, ok := new(big.Int).SetString(tt.expectedWork, 16)
			require.True(t, ok)
			assert.Equal(t, 0, expected.Cmp(w.BigInt()),
				"work mismatch for %s: expected %s, got %s", tt.bits, expected.Text(16), w)
		})
	}
}

func TestFromCompactMatchesFormula(t *testing.T) {
	// cross-check the in-range identity (^target)/(target+1) + 1 against
	// floor(2^256 / (target + 1)) computed with arbitrary precision
	check := func(bits model.CompactDifficulty) {
		expanded, err := bits.ToExpanded()
		require.NoError(t, err)

		target := expanded.Uint256()
		denominator := new(big.Int).Add(target.ToBig(), bigOne)
		expected := new(big.Int).Div(oneLsh256, denominator)

		w, err := FromCompact(bits)
		if expected.Cmp(maxUint128) > 0 {
			require.Error(t, err, "bits %s", bits)
			require.True(t, errors.Is(err, errors.ErrWorkOverflow), "bits %s", bits)
			return
		}

		require.NoError(t, err, "bits %s", bits)
		require.Equal(t, 0, expected.Cmp(w.BigInt()), "bits %s", bits)
	}

	// target 3429888 expands, but floor(2^256 / 3429889) needs about 234
	// bits and is rejected as work
	check(0x04003456)
	check(0x1d00ffff)
	check(0x207fffff)

	r := rand.New(rand.NewSource(5))
	for i := 0; i < 500; i++ {
		bits := model.CompactDifficulty(r.Uint32())
		if _, err := bits.ToExpanded(); err != nil {
			continue
		}
		check(bits)
	}
}

func TestAdd(t *testing.T) {
	sum := NewWorkFromUint64(5).Add(NewWorkFromUint64(7))
	assert.Equal(t, 0, sum.Cmp(NewWorkFromUint64(12)))
}

func TestAddCommutative(t *testing.T) {
	r := rand.New(rand.NewSource(6))

	for i := 0; i < 1000; i++ {
		a := NewWorkFromUint64(r.Uint64())
		b := NewWorkFromUint64(r.Uint64())

		require.Equal(t, 0, a.Add(b).Cmp(b.Add(a)))
	}
}

func TestAddAssociative(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		a := NewWorkFromUint64(r.Uint64())
		b := NewWorkFromUint64(r.Uint64())
		c := NewWorkFromUint64(r.Uint64())

		require.Equal(t, 0, a.Add(b).Add(c).Cmp(a.Add(b.Add(c))))
	}
}

func TestAddOverflowPanics(t *testing.T) {
	max, err := NewWorkFromBig(maxUint128)
	require.NoError(t, err)

	require.Panics(t, func() {
		max.Add(NewWorkFromUint64(1))
	})

	// the panic value carries the invariant-violation code
	defer func() {
		r := recover()
		require.NotNil(t, r)

		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.Is(err, errors.ErrInvariantViolation))
	}()

	max.Add(NewWorkFromUint64(1))
}

func TestAddAssign(t *testing.T) {
	w := NewWorkFromUint64(5)
	w.AddAssign(NewWorkFromUint64(7))

	assert.Equal(t, 0, w.Cmp(NewWorkFromUint64(12)))
}

func TestCalculateWork(t *testing.T) {
	tip, err := CalculateWork(Work{}, 0x1d00ffff)
	require.NoError(t, err)

	tip, err = CalculateWork(tip, 0x1d00ffff)
	require.NoError(t, err)

	expected, ok := new(big.Int).SetString("200020002", 16)
	require.True(t, ok)
	assert.Equal(t, 0, expected.Cmp(tip.BigInt()))
}

func TestCalculateWorkOverflowIsRecoverable(t *testing.T) {
	max, err := NewWorkFromBig(maxUint128)
	require.NoError(t, err)

	_, err = CalculateWork(max, 0x1d00ffff)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrWorkOverflow))
}

func TestCalculateWorkPropagatesExpansionFailure(t *testing.T) {
	_, err := CalculateWork(Work{}, 0x00800000)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrDifficultyInvalid))
}

func TestNewWorkFromBig(t *testing.T) {
	w, err := NewWorkFromBig(big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, 0, w.Cmp(NewWorkFromUint64(42)))

	_, err = NewWorkFromBig(big.NewInt(-1))
	require.Error(t, err)

	tooBig := new(big.Int).Lsh(bigOne, 128)
	_, err = NewWorkFromBig(tooBig)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrWorkOverflow))
}

func TestWorkBytes(t *testing.T) {
	w := NewWorkFromUint64(0x0100010001)

	b := w.Bytes()
	require.Len(t, b, 16)

	assert.Equal(t, 0, new(big.Int).SetBytes(b).Cmp(w.BigInt()))
}

func TestWorkLog2(t *testing.T) {
	w, err := NewWorkFromBig(new(big.Int).Lsh(bigOne, 90))
	require.NoError(t, err)

	assert.InDelta(t, 90.0, w.Log2(), 0.0001)
}
