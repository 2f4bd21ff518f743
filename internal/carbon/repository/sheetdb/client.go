// Package sheetdb keeps the chain document and the transaction log in two SheetDB
// spreadsheets reached over their REST API.
package sheetdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"go.uber.org/ratelimit"
)

const (
	contentType      = "application/json; charset=utf-8"
	maxResponseBytes = 32 << 20
	maxErrorSnippet  = 256

	chainColumn = "chain"
)

// Config points the client at the two sheets.
type Config struct {
	ChainURL          string
	TransactionsURL   string
	RequestsPerSecond int
	Timeout           time.Duration
}

// Client implements the chain store and the transaction log on SheetDB.
type Client struct {
	httpClient      *http.Client
	chainURL        string
	transactionsURL string
	limiter         ratelimit.Limiter
	metrics         Metrics
}

type envelope[T any] struct {
	Data []T `json:"data"`
}

type chainRow struct {
	Chain string `json:"chain"`
}

type logRow struct {
	BlockIndex int     `json:"block_index"`
	Date       string  `json:"date"`
	Machine    string  `json:"machine"`
	Fertilizer string  `json:"fertilizer"`
	Amount     float64 `json:"amount"`
	Emission   float64 `json:"emission"`
}

func New(cfg Config, metrics Metrics) (*Client, error) {
	if metrics == nil {
		return nil, errors.New("sheetdb metrics is required")
	}
	if err := validateURL(cfg.ChainURL); err != nil {
		return nil, fmt.Errorf("chain url: %w", err)
	}
	if err := validateURL(cfg.TransactionsURL); err != nil {
		return nil, fmt.Errorf("transactions url: %w", err)
	}

	limiter := ratelimit.NewUnlimited()
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.New(cfg.RequestsPerSecond)
	}

	return &Client{
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		chainURL:        cfg.ChainURL,
		transactionsURL: cfg.TransactionsURL,
		limiter:         limiter,
		metrics:         metrics,
	}, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// DeleteChain removes every row of the chain sheet.
func (c *Client) DeleteChain(ctx context.Context) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("delete_chain", err, started)
	}()

	_, err = c.do(ctx, http.MethodDelete, c.chainURL, nil)
	return err
}

// ChainRows reads the chain sheet. A response that is not a JSON array is treated as
// an empty sheet. A "chain" cell that is not a string is returned verbatim so that
// parsing it fails downstream.
func (c *Client) ChainRows(ctx context.Context) (rows []model.ChainRow, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("chain_rows", err, started)
	}()

	body, err := c.do(ctx, http.MethodGet, c.chainURL, nil)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err = json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode chain rows: %w", model.ErrTransport, err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}

	var cells []map[string]json.RawMessage
	if err = json.Unmarshal(trimmed, &cells); err != nil {
		// An array of non-objects carries no chain column.
		return nil, nil
	}

	rows = make([]model.ChainRow, 0, len(cells))
	for _, cell := range cells {
		rows = append(rows, model.ChainRow{Document: chainCell(cell)})
	}
	return rows, nil
}

func chainCell(cell map[string]json.RawMessage) string {
	value, ok := cell[chainColumn]
	if !ok {
		return ""
	}
	var document string
	if err := json.Unmarshal(value, &document); err == nil {
		return document
	}
	return string(value)
}

// InsertChain writes document as the single row of the chain sheet.
func (c *Client) InsertChain(ctx context.Context, document string) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("insert_chain", err, started)
	}()

	_, err = c.do(ctx, http.MethodPost, c.chainURL, envelope[chainRow]{
		Data: []chainRow{{Chain: document}},
	})
	return err
}

// AppendTransactionRecords appends rows to the transaction sheet. No request is made
// for an empty slice.
func (c *Client) AppendTransactionRecords(ctx context.Context, records []model.TransactionRecord) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("append_transactions", err, started)
	}()

	if len(records) == 0 {
		return nil
	}

	rows := make([]logRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, logRow{
			BlockIndex: r.BlockIndex,
			Date:       r.Date,
			Machine:    string(r.Machine),
			Fertilizer: r.Fertilizer,
			Amount:     r.Amount,
			Emission:   r.Emission,
		})
	}

	_, err = c.do(ctx, http.MethodPost, c.transactionsURL, envelope[logRow]{Data: rows})
	return err
}

// MaxLoggedBlockIndex scans the transaction sheet for the highest block_index. Sheet
// cells come back as strings or numbers; rows with an unreadable index are skipped.
func (c *Client) MaxLoggedBlockIndex(ctx context.Context) (index int, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("max_logged_block_index", err, started)
	}()

	body, err := c.do(ctx, http.MethodGet, c.transactionsURL, nil)
	if err != nil {
		return 0, err
	}

	var rows []map[string]json.RawMessage
	if err = json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("%w: decode transaction rows: %w", model.ErrTransport, err)
	}
	for _, row := range rows {
		if v, ok := cellInt(row["block_index"]); ok {
			index = max(index, v)
		}
	}
	return index, nil
}

func cellInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	text := string(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = s
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || f < 0 || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func (c *Client) do(ctx context.Context, method, target string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", method, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	c.limiter.Take()
	// Take cannot be interrupted; drop requests whose caller gave up while waiting.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", model.ErrTransport, method, target, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", model.ErrTransport, method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", model.ErrTransport, method, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet := data
		if len(snippet) > maxErrorSnippet {
			snippet = snippet[:maxErrorSnippet]
		}
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", model.ErrTransport, method, target, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return data, nil
}
