// Package blockchain composes the difficulty core into the checks the node
// runs against incoming block headers and candidate chain tips.
package blockchain

import (
	"github.com/veridian-blockchain/veridian/chaincfg"
	"github.com/veridian-blockchain/veridian/errors"
	"github.com/veridian-blockchain/veridian/model"
	"github.com/veridian-blockchain/veridian/ulogger"
	"github.com/veridian-blockchain/veridian/work"
)

// ProofOfWork validates block headers against the consensus difficulty
// rules of a network.
//
// All methods are pure over their arguments and safe for concurrent use by
// independent validation workers.
type ProofOfWork struct {
	logger      ulogger.Logger
	chainParams *chaincfg.Params
}

func NewProofOfWork(logger ulogger.Logger, params *chaincfg.Params) *ProofOfWork {
	return &ProofOfWork{
		logger:      logger,
		chainParams: params,
	}
}

// CheckProofOfWork validates the difficulty field of the header and the
// header's own hash against it.
//
// The difficulty field must decode to a valid target, the target must not
// exceed the network's pow limit, and the header hash interpreted as a
// little-endian integer must be at or below the target. Every failure is a
// recoverable block-rejection error; attacker-supplied headers never
// terminate the process.
func (p *ProofOfWork) CheckProofOfWork(header *model.BlockHeader) error {
	target, err := header.Bits.ToExpanded()
	if err != nil {
		return errors.NewBlockInvalidError("header %s difficulty field %s is invalid", header.Hash(), header.Bits, err)
	}

	if target.Cmp(p.chainParams.PowLimit) > 0 {
		return errors.NewBlockInvalidError("header %s target %s is above the %s pow limit", header.Hash(), header.Bits, p.chainParams.Name)
	}

	hash := header.Hash()
	if !model.HashMeetsDifficulty(hash, target) {
		return errors.NewBlockInvalidError("header hash %s is above the target threshold %s", hash, header.Bits)
	}

	p.logger.Debugf("header %s meets difficulty %s", hash, header.Bits)

	return nil
}

// CalculateChainWork returns the cumulative work of a chain after the given
// header extends a tip with tipWork total work.
//
// The header is not validated here; callers run CheckProofOfWork first.
func (p *ProofOfWork) CalculateChainWork(tipWork work.Work, header *model.BlockHeader) (work.Work, error) {
	newWork, err := work.CalculateWork(tipWork, header.Bits)
	if err != nil {
		return work.Work{}, errors.NewProcessingError("failed to calculate chain work for header %s", header.Hash(), err)
	}

	return newWork, nil
}

// HasMoreWork reports whether candidate outweighs current. Ties keep the
// current tip, so a candidate must strictly exceed it.
func (p *ProofOfWork) HasMoreWork(candidate, current work.Work) bool {
	return candidate.Cmp(current) > 0
}
