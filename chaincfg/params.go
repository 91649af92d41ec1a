// Package chaincfg defines the consensus parameters for the supported
// Veridian networks.
package chaincfg

import (
	"github.com/veridian-blockchain/veridian/model"
)

// Params defines a Veridian network by its consensus parameters.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// PowLimitBits is the compact form of the highest permitted target
	// threshold, as carried in the genesis header.
	PowLimitBits model.CompactDifficulty

	// PowLimit is the expanded form of PowLimitBits. Any header whose
	// difficulty field expands above this value is invalid for the network.
	PowLimit model.ExpandedDifficulty

	// NoDifficultyAdjustment is set on networks that mine at the pow limit
	// permanently.
	NoDifficultyAdjustment bool
}

// MainNetParams defines the network parameters for the main network.
var MainNetParams = Params{
	Name:         "mainnet",
	PowLimitBits: 0x1d00ffff,
	PowLimit:     mustExpand(0x1d00ffff),
}

// TestNetParams defines the network parameters for the public test network.
var TestNetParams = Params{
	Name:         "testnet",
	PowLimitBits: 0x1d00ffff,
	PowLimit:     mustExpand(0x1d00ffff),
}

// RegressionNetParams defines the network parameters for private regression
// test networks.
var RegressionNetParams = Params{
	Name:                   "regtest",
	PowLimitBits:           0x207fffff,
	PowLimit:               mustExpand(0x207fffff),
	NoDifficultyAdjustment: true,
}

func mustExpand(bits model.CompactDifficulty) model.ExpandedDifficulty {
	d, err := bits.ToExpanded()
	if err != nil {
		panic(err)
	}

	return d
}
