// Package transport exposes the ledger over HTTP: server-rendered pages and a JSON API.
package transport

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/blockhash"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/canonical"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/emission"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/ledger"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/service"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/verify"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxFormBytes = 64 << 10

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the ledger pages and API.
type Handler struct {
	ledger Ledger
	logger *zap.Logger
	pages  *template.Template
}

func NewHandler(l Ledger, logger *zap.Logger) (*Handler, error) {
	if l == nil {
		return nil, errors.New("handler ledger is required")
	}
	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Handler{ledger: l, logger: logger, pages: pages}, nil
}

// Router registers every route.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.index).Methods(http.MethodGet)
	r.HandleFunc("/add", h.addForm).Methods(http.MethodGet)
	r.HandleFunc("/add", h.addSubmit).Methods(http.MethodPost)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	// API routes sit on the root router so a wrong method answers 405, not 404.
	r.HandleFunc("/api/transactions", h.listTransactions).Methods(http.MethodGet)
	r.HandleFunc("/api/transactions", h.createTransaction).Methods(http.MethodPost)
	r.HandleFunc("/api/chain", h.chain).Methods(http.MethodGet)
	r.HandleFunc("/api/chain/verify", h.verifyChain).Methods(http.MethodGet)
	r.HandleFunc("/api/machines", h.machines).Methods(http.MethodGet)

	return r
}

type indexPage struct {
	Title        string
	Transactions []model.TransactionView
	Total        float64
}

type addForm struct {
	Machine    string
	Fertilizer string
	Amount     string
}

type addPage struct {
	Title    string
	Machines []model.Machine
	Form     addForm
	Error    string
}

func (h *Handler) index(w http.ResponseWriter, _ *http.Request) {
	listing := h.ledger.List()
	h.render(w, http.StatusOK, "index", indexPage{
		Title:        "碳排放紀錄",
		Transactions: listing.Transactions,
		Total:        listing.TotalEmission,
	})
}

func (h *Handler) addForm(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "add", newAddPage(addForm{}, ""))
}

func (h *Handler) addSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "add", newAddPage(addForm{}, "無法解析表單"))
		return
	}

	form := addForm{
		Machine:    r.PostFormValue("machine"),
		Fertilizer: r.PostFormValue("fertilizer"),
		Amount:     r.PostFormValue("amount"),
	}
	amount, err := service.ParseAmount(form.Amount)
	if err != nil {
		h.render(w, http.StatusBadRequest, "add", newAddPage(form, "數量必須是非負數字"))
		return
	}

	_, err = h.ledger.Submit(r.Context(), service.SubmitRequest{
		Machine:    model.Machine(form.Machine),
		Fertilizer: form.Fertilizer,
		Amount:     amount,
	})
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrNotPersisted):
		// The block is part of the chain; only the remote copy is behind.
		h.logger.Warn("transaction recorded but not persisted", zap.Error(err))
	default:
		h.logger.Error("submit transaction", zap.Error(err))
		h.render(w, http.StatusInternalServerError, "add", newAddPage(form, "交易無法寫入"))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func newAddPage(form addForm, message string) addPage {
	return addPage{
		Title:    "新增交易",
		Machines: emission.Machines(),
		Form:     form,
		Error:    message,
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type transactionJSON struct {
	BlockIndex int     `json:"block_index,omitempty"`
	Date       string  `json:"date"`
	Machine    string  `json:"machine"`
	Fertilizer string  `json:"fertilizer"`
	Amount     float64 `json:"amount"`
	Emission   float64 `json:"emission"`
}

type listingJSON struct {
	Transactions  []transactionJSON `json:"transactions"`
	TotalEmission float64           `json:"total_emission"`
}

type blockJSON struct {
	Index        int               `json:"index"`
	Timestamp    float64           `json:"timestamp"`
	Transactions []transactionJSON `json:"transactions"`
	Proof        int               `json:"proof"`
	PreviousHash string            `json:"previous_hash"`
	Hash         string            `json:"hash"`
}

type createRequest struct {
	Machine    string   `json:"machine"`
	Fertilizer string   `json:"fertilizer"`
	Amount     *float64 `json:"amount"`
}

type createResponse struct {
	Block     blockJSON `json:"block"`
	Persisted bool      `json:"persisted"`
}

type errorJSON struct {
	Error string `json:"error"`
}

type violationJSON struct {
	Error    string `json:"error"`
	Position int    `json:"position"`
	Index    int    `json:"index"`
	Reason   string `json:"reason"`
	Want     string `json:"want,omitempty"`
	Got      string `json:"got,omitempty"`
}

type reportJSON struct {
	Valid         bool    `json:"valid"`
	Blocks        int     `json:"blocks"`
	Transactions  int     `json:"transactions"`
	TotalEmission float64 `json:"total_emission"`
	TipHash       string  `json:"tip_hash"`
}

func (h *Handler) listTransactions(w http.ResponseWriter, _ *http.Request) {
	listing := h.ledger.List()
	out := listingJSON{
		Transactions:  make([]transactionJSON, 0, len(listing.Transactions)),
		TotalEmission: listing.TotalEmission,
	}
	for _, v := range listing.Transactions {
		tx := toTransactionJSON(v.Transaction)
		tx.BlockIndex = v.BlockIndex
		out.Transactions = append(out.Transactions, tx)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req createRequest
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}
	if req.Amount == nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "amount is required"})
		return
	}

	block, err := h.ledger.Submit(r.Context(), service.SubmitRequest{
		Machine:    model.Machine(req.Machine),
		Fertilizer: req.Fertilizer,
		Amount:     *req.Amount,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, createResponse{Block: toBlockJSON(block), Persisted: true})
	case errors.Is(err, service.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
	case errors.Is(err, ledger.ErrNotPersisted):
		h.logger.Warn("transaction recorded but not persisted", zap.Error(err))
		writeJSON(w, http.StatusAccepted, createResponse{Block: toBlockJSON(block), Persisted: false})
	default:
		h.logger.Error("submit transaction", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "transaction not recorded"})
	}
}

// chain serves the chain in its stored document form.
func (h *Handler) chain(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(canonical.MarshalChain(h.ledger.Chain()))
}

func (h *Handler) verifyChain(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.Verify(r.Context())
	var violation *verify.Violation
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reportJSON{
			Valid:         true,
			Blocks:        report.Blocks,
			Transactions:  report.Transactions,
			TotalEmission: report.TotalEmission,
			TipHash:       report.TipHash,
		})
	case errors.As(err, &violation):
		writeJSON(w, http.StatusConflict, violationJSON{
			Error:    violation.Error(),
			Position: violation.Position,
			Index:    violation.Index,
			Reason:   string(violation.Reason),
			Want:     violation.Want,
			Got:      violation.Got,
		})
	default:
		h.logger.Error("verify chain", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: err.Error()})
	}
}

func (h *Handler) machines(w http.ResponseWriter, _ *http.Request) {
	type machineJSON struct {
		Name        string  `json:"name"`
		Coefficient float64 `json:"coefficient"`
	}
	known := emission.Machines()
	out := make([]machineJSON, 0, len(known))
	for _, m := range known {
		out = append(out, machineJSON{Name: string(m), Coefficient: emission.Coefficient(m)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"machines":            out,
		"default_coefficient": emission.DefaultCoefficient,
	})
}

func toTransactionJSON(tx model.Transaction) transactionJSON {
	return transactionJSON{
		Date:       tx.Date,
		Machine:    string(tx.Machine),
		Fertilizer: tx.Fertilizer,
		Amount:     tx.Amount,
		Emission:   tx.Emission,
	}
}

func toBlockJSON(b model.Block) blockJSON {
	txs := make([]transactionJSON, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		txs = append(txs, toTransactionJSON(tx))
	}
	return blockJSON{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		Transactions: txs,
		Proof:        b.Proof,
		PreviousHash: b.PreviousHash,
		Hash:         blockhash.Hash(b),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
