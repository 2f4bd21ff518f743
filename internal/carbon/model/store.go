package model

import "errors"

// ErrTransport marks failures to reach the persistence backend: connection errors,
// non-2xx responses and per-call timeouts. Callers may retry them.
var ErrTransport = errors.New("transport error")

// ChainRow is one row of the chain store. Document is empty when the row carries no
// serialized chain.
type ChainRow struct {
	Document string
}

// Backend names a persistence backend implementation.
type Backend string

var (
	SheetDB    Backend = "sheetdb"
	Clickhouse Backend = "clickhouse"
	Memory     Backend = "memory"
)
