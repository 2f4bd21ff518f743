// Package model defines domain models for the carbon-emission ledger.
package model

import (
	"math"
	"time"
)

const (
	// GenesisIndex is the index of the first block of every chain.
	GenesisIndex = 1
	// GenesisPreviousHash is the sentinel stored in place of a digest on the genesis block.
	GenesisPreviousHash = "1"
	// GenesisProof is the placeholder proof carried by the genesis block.
	GenesisProof = 100
)

// Block is an indexed, hash-linked batch of transactions. Blocks are never mutated
// once appended to a chain.
type Block struct {
	Index        int
	Timestamp    float64
	Transactions []Transaction
	// Proof is a non-validated token equal to the index projected when the block's
	// transaction was appended. It is not a proof of work.
	Proof        int
	PreviousHash string
}

// NewGenesisBlock returns the transaction-less first block of a chain.
func NewGenesisBlock(now time.Time) Block {
	return Block{
		Index:        GenesisIndex,
		Timestamp:    EpochSeconds(now),
		Transactions: []Transaction{},
		Proof:        GenesisProof,
		PreviousHash: GenesisPreviousHash,
	}
}

// IsGenesis reports whether b sits at the head of a chain.
func (b Block) IsGenesis() bool {
	return b.Index == GenesisIndex
}

// Time converts the stored epoch timestamp back to a time.Time.
func (b Block) Time() time.Time {
	sec, frac := math.Modf(b.Timestamp)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}

// Clone returns a copy of b that shares no transaction storage with it.
func (b Block) Clone() Block {
	cp := b
	cp.Transactions = append(make([]Transaction, 0, len(b.Transactions)), b.Transactions...)
	return cp
}

// EpochSeconds renders t as fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// CloneChain copies a chain so callers can hold it without observing later appends.
func CloneChain(chain []Block) []Block {
	out := make([]Block, len(chain))
	for i, b := range chain {
		out[i] = b.Clone()
	}
	return out
}
