package model

import "time"

// DateLayout is the calendar-date layout stored on transactions.
const DateLayout = "2006-01-02"

// Machine keys the emission coefficient table.
type Machine string

// Transaction records one use of a machine and the emission derived from it.
type Transaction struct {
	Date       string
	Machine    Machine
	Fertilizer string
	Amount     float64
	Emission   float64
}

// FormatDate renders t in the ledger's calendar-date layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TransactionView is a committed transaction projected together with its owning block.
type TransactionView struct {
	BlockIndex int
	Transaction
}

// TransactionRecord is one row of the secondary transaction log.
type TransactionRecord struct {
	BlockIndex int
	Date       string
	Machine    Machine
	Fertilizer string
	Amount     float64
	Emission   float64
}

// NewTransactionRecords tags every transaction with the index of the block holding it.
func NewTransactionRecords(txs []Transaction, blockIndex int) []TransactionRecord {
	records := make([]TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		records = append(records, TransactionRecord{
			BlockIndex: blockIndex,
			Date:       tx.Date,
			Machine:    tx.Machine,
			Fertilizer: tx.Fertilizer,
			Amount:     tx.Amount,
			Emission:   tx.Emission,
		})
	}
	return records
}
