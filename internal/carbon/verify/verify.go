// Package verify checks a chain's indices and hash links. Loading a chain never runs it.
package verify

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/blockhash"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/reader"
	"github.com/goodnatureofminers/carbonledger-backend/pkg/workerpool"
)

type Reason string

const (
	ReasonEmptyChain          Reason = "empty_chain"
	ReasonGenesisIndex        Reason = "genesis_index"
	ReasonGenesisPreviousHash Reason = "genesis_previous_hash"
	ReasonIndexSequence       Reason = "index_sequence"
	ReasonBrokenLink          Reason = "broken_link"
)

// Violation is the first inconsistency found in a chain.
type Violation struct {
	// Position is the zero-based slot in the chain, Index the block's own index.
	Position int
	Index    int
	Reason   Reason
	Want     string
	Got      string
}

func (v *Violation) Error() string {
	if v.Reason == ReasonEmptyChain {
		return "chain verification failed: chain is empty"
	}
	return fmt.Sprintf("chain verification failed at position %d (block %d): %s: want %s, got %s",
		v.Position, v.Index, v.Reason, v.Want, v.Got)
}

// Report summarises a chain that passed verification.
type Report struct {
	Blocks        int
	Transactions  int
	TotalEmission float64
	TipHash       string
}

// Chain verifies that chain starts with a genesis block, that indices run 1..N and
// that every previous_hash equals the hash of the block before it. Block hashes are
// computed with up to workers goroutines.
func Chain(ctx context.Context, chain []model.Block, workers int) (Report, error) {
	if len(chain) == 0 {
		return Report{}, &Violation{Reason: ReasonEmptyChain}
	}

	hashes, err := workerpool.Map(ctx, workers, chain, func(_ context.Context, b model.Block) (string, error) {
		return blockhash.Hash(b), nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("hash blocks: %w", err)
	}

	genesis := chain[0]
	if genesis.Index != model.GenesisIndex {
		return Report{}, &Violation{
			Index:  genesis.Index,
			Reason: ReasonGenesisIndex,
			Want:   fmt.Sprint(model.GenesisIndex),
			Got:    fmt.Sprint(genesis.Index),
		}
	}
	if genesis.PreviousHash != model.GenesisPreviousHash {
		return Report{}, &Violation{
			Index:  genesis.Index,
			Reason: ReasonGenesisPreviousHash,
			Want:   model.GenesisPreviousHash,
			Got:    genesis.PreviousHash,
		}
	}

	for pos := 1; pos < len(chain); pos++ {
		b := chain[pos]
		if want := chain[pos-1].Index + 1; b.Index != want {
			return Report{}, &Violation{
				Position: pos,
				Index:    b.Index,
				Reason:   ReasonIndexSequence,
				Want:     fmt.Sprint(want),
				Got:      fmt.Sprint(b.Index),
			}
		}
		if b.PreviousHash != hashes[pos-1] {
			return Report{}, &Violation{
				Position: pos,
				Index:    b.Index,
				Reason:   ReasonBrokenLink,
				Want:     hashes[pos-1],
				Got:      b.PreviousHash,
			}
		}
	}

	views := reader.AllTransactions(chain)
	return Report{
		Blocks:        len(chain),
		Transactions:  len(views),
		TotalEmission: reader.TotalEmission(views),
		TipHash:       hashes[len(hashes)-1],
	}, nil
}
