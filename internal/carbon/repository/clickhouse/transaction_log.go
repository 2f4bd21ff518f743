package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"github.com/goodnatureofminers/carbonledger-backend/pkg/safe"
)

const (
	insertTransactionLogQuery = `
INSERT INTO carbon_transaction_log (
	block_index,
	date,
	machine,
	fertilizer,
	amount,
	emission,
	inserted_at
) VALUES`
	maxLoggedBlockIndexQuery = `
SELECT max(block_index) AS max_index
FROM carbon_transaction_log`
)

type maxIndexRow struct {
	MaxIndex uint64 `ch:"max_index"`
}

// AppendTransactionRecords appends log rows in one batch.
func (r *Repository) AppendTransactionRecords(ctx context.Context, records []model.TransactionRecord) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("append_transactions", err, start)
	}()

	if len(records) == 0 {
		return nil
	}

	indices := make([]uint64, len(records))
	for i, rec := range records {
		if indices[i], err = safe.Uint64(rec.BlockIndex); err != nil {
			return fmt.Errorf("record %d block index: %w", i, err)
		}
	}

	batch, err := r.conn.PrepareBatch(ctx, insertTransactionLogQuery)
	if err != nil {
		return fmt.Errorf("prepare transaction log batch: %w", classify(err))
	}
	defer func() {
		if err != nil {
			_ = batch.Abort()
		}
	}()

	insertedAt := r.now().UTC()
	for i, rec := range records {
		if err = batch.Append(
			indices[i],
			rec.Date,
			string(rec.Machine),
			rec.Fertilizer,
			rec.Amount,
			rec.Emission,
			insertedAt,
		); err != nil {
			return fmt.Errorf("append transaction log row: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert transaction log: %w", classify(err))
	}
	return nil
}

// MaxLoggedBlockIndex returns the highest block index present in the log, or 0 when
// the log is empty.
func (r *Repository) MaxLoggedBlockIndex(ctx context.Context) (index int, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("max_logged_block_index", err, start)
	}()

	var rows []maxIndexRow
	if err = r.conn.Select(ctx, &rows, maxLoggedBlockIndexQuery); err != nil {
		return 0, fmt.Errorf("select max logged block index: %w", classify(err))
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if index, err = safe.Int(rows[0].MaxIndex); err != nil {
		return 0, fmt.Errorf("max logged block index: %w", err)
	}
	return index, nil
}
