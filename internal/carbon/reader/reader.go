// Package reader flattens a chain into a queryable list of transactions.
package reader

import (
	"sort"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
)

// AllTransactions returns every committed transaction tagged with its block index,
// ordered by block index and then by position within the block. The chain is the only
// source: the secondary transaction log is never consulted.
func AllTransactions(chain []model.Block) []model.TransactionView {
	total := 0
	for _, b := range chain {
		total += len(b.Transactions)
	}

	views := make([]model.TransactionView, 0, total)
	for _, b := range chain {
		for _, tx := range b.Transactions {
			views = append(views, model.TransactionView{BlockIndex: b.Index, Transaction: tx})
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].BlockIndex < views[j].BlockIndex
	})
	return views
}

// TotalEmission sums the emission of views.
func TotalEmission(views []model.TransactionView) float64 {
	var total float64
	for _, v := range views {
		total += v.Emission
	}
	return total
}
