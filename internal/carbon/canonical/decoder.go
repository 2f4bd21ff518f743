package canonical

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
)

type wireTransaction struct {
	Date       string  `json:"date"`
	Machine    string  `json:"machine"`
	Fertilizer string  `json:"fertilizer"`
	Amount     float64 `json:"amount"`
	Emission   float64 `json:"emission"`
}

type wireBlock struct {
	Index        *int              `json:"index"`
	Timestamp    float64           `json:"timestamp"`
	Transactions []wireTransaction `json:"transactions"`
	Proof        int               `json:"proof"`
	PreviousHash *string           `json:"previous_hash"`
}

// UnmarshalChain parses a chain document. It checks shape only: linkage and hashes
// are left to the verify package.
func UnmarshalChain(data []byte) ([]model.Block, error) {
	var wire []wireBlock
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode chain document: %w", err)
	}

	chain := make([]model.Block, 0, len(wire))
	for pos, wb := range wire {
		if wb.Index == nil {
			return nil, fmt.Errorf("block at position %d: missing index", pos)
		}
		if wb.PreviousHash == nil {
			return nil, fmt.Errorf("block at position %d: missing previous_hash", pos)
		}
		txs := make([]model.Transaction, 0, len(wb.Transactions))
		for _, wt := range wb.Transactions {
			txs = append(txs, model.Transaction{
				Date:       wt.Date,
				Machine:    model.Machine(wt.Machine),
				Fertilizer: wt.Fertilizer,
				Amount:     wt.Amount,
				Emission:   wt.Emission,
			})
		}
		chain = append(chain, model.Block{
			Index:        *wb.Index,
			Timestamp:    wb.Timestamp,
			Transactions: txs,
			Proof:        wb.Proof,
			PreviousHash: *wb.PreviousHash,
		})
	}
	return chain, nil
}

// ErrEmptyDocument is returned by ParseDocument for a blank document.
var ErrEmptyDocument = errors.New("empty chain document")

// ParseDocument is UnmarshalChain for text read from a store row.
func ParseDocument(document string) ([]model.Block, error) {
	if document == "" {
		return nil, ErrEmptyDocument
	}
	return UnmarshalChain([]byte(document))
}
