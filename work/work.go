// Package work provides the proof-of-work accounting used to choose between
// competing chains.
//
// Each block contributes a Work value derived from the difficulty threshold
// fixed in its header, not from the hash actually found. The chain with the
// greatest total work is the best chain.
//
// The relative value of Work is consensus-critical; its bit pattern is not,
// and it has no wire representation.
package work

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/veridian-blockchain/veridian/errors"
	"github.com/veridian-blockchain/veridian/model"
)

// workBits is the width of a Work value. Work is computed over 256-bit
// targets but stored in 128 bits: total chain work on any real network sits
// far below 2^128, so a larger accumulator would only hide defects.
const workBits = 128

// Work is the 128-bit measure of proof of work contributed by a single
// block, summed along a chain to weigh candidate tips.
type Work struct {
	n uint256.Int
}

// FromCompact calculates the work represented by a compact difficulty.
//
// The work is floor(2^256 / (target + 1)). 2^256 itself does not fit in a
// 256-bit register, so it is computed as (^target)/(target+1) + 1, which is
// identical because ^target = 2^256 - 1 - target; every intermediate stays
// within 256 bits.
//
// Expansion failures propagate unchanged. A result above 128 bits returns
// ErrWorkOverflow, which cannot happen for any difficulty a real chain has
// carried.
func FromCompact(bits model.CompactDifficulty) (Work, error) {
	expanded, err := bits.ToExpanded()
	if err != nil {
		return Work{}, err
	}

	target := expanded.Uint256()

	var denominator, complement uint256.Int
	denominator.AddUint64(&target, 1)
	complement.Not(&target)

	var w Work
	w.n.Div(&complement, &denominator)
	w.n.AddUint64(&w.n, 1)

	if w.n.BitLen() > workBits {
		return Work{}, errors.NewWorkOverflowError("work for difficulty %s exceeds %d bits", bits, workBits)
	}

	return w, nil
}

// CalculateWork returns the cumulative chain work after a block with the
// given difficulty bits extends a chain whose total work is prevWork.
//
// Unlike Add, overflow here is a recoverable error: prevWork is often read
// back from storage and is not trusted to uphold the accumulator invariant.
func CalculateWork(prevWork Work, bits model.CompactDifficulty) (Work, error) {
	blockWork, err := FromCompact(bits)
	if err != nil {
		return Work{}, err
	}

	var sum Work
	sum.n.Add(&prevWork.n, &blockWork.n)

	if sum.n.BitLen() > workBits {
		return Work{}, errors.NewWorkOverflowError("chain work %s + %s exceeds %d bits", prevWork, blockWork, workBits)
	}

	return sum, nil
}

// NewWorkFromUint64 returns the Work value v.
func NewWorkFromUint64(v uint64) Work {
	var w Work
	w.n.SetUint64(v)

	return w
}

// NewWorkFromBig converts a stored chain-work value. Negative values and
// values above 128 bits return an error.
func NewWorkFromBig(v *big.Int) (Work, error) {
	if v.Sign() < 0 {
		return Work{}, errors.NewInvalidArgumentError("chain work cannot be negative, got %s", v)
	}

	var w Work
	if overflow := w.n.SetFromBig(v); overflow || w.n.BitLen() > workBits {
		return Work{}, errors.NewWorkOverflowError("chain work %s exceeds %d bits", v, workBits)
	}

	return w, nil
}

// Add returns the sum of two Work values.
//
// A sum above 128 bits means cumulative chain work has exceeded a bound no
// real chain can reach, so a prior defect exists elsewhere; Add panics with
// an ERR_INVARIANT_VIOLATION error rather than wrapping or truncating.
func (w Work) Add(other Work) Work {
	var sum Work
	sum.n.Add(&w.n, &other.n)

	if sum.n.BitLen() > workBits {
		panic(errors.NewInvariantViolationError("work accumulator overflow: %s + %s", w, other))
	}

	return sum
}

// AddAssign adds other into w in place, with the same overflow semantics as
// Add.
func (w *Work) AddAssign(other Work) {
	*w = w.Add(other)
}

// Cmp compares two Work values, returning -1, 0 or +1.
func (w Work) Cmp(other Work) int {
	return w.n.Cmp(&other.n)
}

func (w Work) IsZero() bool {
	return w.n.IsZero()
}

// BigInt returns the value as a big.Int, for storage and display.
func (w Work) BigInt() *big.Int {
	return w.n.ToBig()
}

// Bytes returns the 16-byte big-endian form used when persisting chain work.
func (w Work) Bytes() []byte {
	b := w.n.Bytes32()

	return b[16:]
}

// String returns the hex form.
func (w Work) String() string {
	return w.BigInt().Text(16)
}

// Log2 returns the base-2 logarithm of the work, a human scale for
// comparing chains in diagnostics. Returns -Inf for zero work.
func (w Work) Log2() float64 {
	f, _ := new(big.Float).SetInt(w.BigInt()).Float64()

	return math.Log2(f)
}
