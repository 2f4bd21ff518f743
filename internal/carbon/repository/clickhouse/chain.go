package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
)

const (
	deleteChainQuery = `TRUNCATE TABLE carbon_chain`
	chainRowsQuery   = `
SELECT document
FROM carbon_chain
ORDER BY saved_at DESC`
	insertChainQuery = `
INSERT INTO carbon_chain (
	document,
	saved_at
) VALUES (?, ?)`
)

type chainRow struct {
	Document string `ch:"document"`
}

// DeleteChain empties the chain table.
func (r *Repository) DeleteChain(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("delete_chain", err, start)
	}()

	if err = r.conn.Exec(ctx, deleteChainQuery); err != nil {
		return fmt.Errorf("truncate chain: %w", classify(err))
	}
	return nil
}

// ChainRows returns stored chain documents, newest first.
func (r *Repository) ChainRows(ctx context.Context) (rows []model.ChainRow, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("chain_rows", err, start)
	}()

	var stored []chainRow
	if err = r.conn.Select(ctx, &stored, chainRowsQuery); err != nil {
		return nil, fmt.Errorf("select chain rows: %w", classify(err))
	}

	rows = make([]model.ChainRow, 0, len(stored))
	for _, s := range stored {
		rows = append(rows, model.ChainRow{Document: s.Document})
	}
	return rows, nil
}

// InsertChain stores document as a new chain row.
func (r *Repository) InsertChain(ctx context.Context, document string) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_chain", err, start)
	}()

	if err = r.conn.Exec(ctx, insertChainQuery, document, r.now().UTC()); err != nil {
		return fmt.Errorf("insert chain: %w", classify(err))
	}
	return nil
}
