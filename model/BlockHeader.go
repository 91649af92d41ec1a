package model

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"

	"github.com/veridian-blockchain/veridian/errors"
)

// BlockHeader is the 80-byte serialized block header.
type BlockHeader struct {
	// Version of the block. This is not the same as the protocol version.
	Version uint32

	// Hash of the previous block header in the blockchain.
	HashPrevBlock *chainhash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	HashMerkleRoot *chainhash.Hash

	// Time the block was created in unix time.
	Timestamp uint32

	// Difficulty target for the block, as stored on the wire.
	Bits CompactDifficulty

	// Nonce used to generate the block.
	Nonce uint32
}

func NewBlockHeaderFromBytes(headerBytes []byte) (*BlockHeader, error) {
	if len(headerBytes) != 80 {
		return nil, errors.NewBlockInvalidError("block header should be 80 bytes long, got %d", len(headerBytes))
	}

	hashPrevBlock, err := chainhash.NewHash(headerBytes[4:36])
	if err != nil {
		return nil, errors.NewBlockInvalidError("error creating previous block hash from bytes", err)
	}

	hashMerkleRoot, err := chainhash.NewHash(headerBytes[36:68])
	if err != nil {
		return nil, errors.NewBlockInvalidError("error creating merkle root hash from bytes", err)
	}

	bits, err := NewCompactDifficultyFromSlice(headerBytes[72:76])
	if err != nil {
		return nil, errors.NewBlockInvalidError("error creating compact difficulty from bytes", err)
	}

	return &BlockHeader{
		Version:        binary.LittleEndian.Uint32(headerBytes[:4]),
		HashPrevBlock:  hashPrevBlock,
		HashMerkleRoot: hashMerkleRoot,
		Timestamp:      binary.LittleEndian.Uint32(headerBytes[68:72]),
		Bits:           bits,
		Nonce:          binary.LittleEndian.Uint32(headerBytes[76:]),
	}, nil
}

func NewBlockHeaderFromString(headerHex string) (*BlockHeader, error) {
	headerBytes, err := hex.DecodeString(headerHex)
	if err != nil {
		return nil, errors.NewBlockInvalidError("error decoding hex string to bytes", err)
	}

	return NewBlockHeaderFromBytes(headerBytes)
}

func (bh *BlockHeader) Hash() *chainhash.Hash {
	hash := chainhash.DoubleHashH(bh.Bytes())
	return &hash
}

// Valid reports whether the header satisfies its own difficulty field: the
// field must expand to a valid threshold and the header hash must be at or
// below it.
func (bh *BlockHeader) Valid() bool {
	target, err := bh.Bits.ToExpanded()
	if err != nil {
		return false
	}

	return HashMeetsDifficulty(bh.Hash(), target)
}

func (bh *BlockHeader) Bytes() []byte {
	blockHeaderBytes := make([]byte, 0, 80)

	blockHeaderBytes = appendUint32LE(blockHeaderBytes, bh.Version)
	blockHeaderBytes = append(blockHeaderBytes, bh.HashPrevBlock.CloneBytes()...)
	blockHeaderBytes = append(blockHeaderBytes, bh.HashMerkleRoot.CloneBytes()...)
	blockHeaderBytes = appendUint32LE(blockHeaderBytes, bh.Timestamp)
	blockHeaderBytes = append(blockHeaderBytes, bh.Bits.Bytes()...)
	blockHeaderBytes = appendUint32LE(blockHeaderBytes, bh.Nonce)

	return blockHeaderBytes
}

func (bh *BlockHeader) String() string {
	return hex.EncodeToString(bh.Bytes())
}

func appendUint32LE(b []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)

	return append(b, buf[:]...)
}
