package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"order-matching-engine/internal/ledger"
	"order-matching-engine/internal/orders"
	"order-matching-engine/internal/platform"
)

// server wires the trading platform to HTTP handlers. A single mutex
// serializes every mutating call, per the concurrency model: the core
// itself assumes exclusive access for the duration of a call.
type server struct {
	mu       sync.Mutex
	platform *platform.TradingPlatform
}

func newServer(p *platform.TradingPlatform) *server {
	return &server{platform: p}
}

type depositRequest struct {
	Signer string `json:"signer"`
	Amount uint64 `json:"amount"`
}

type transferRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
}

type orderRequest struct {
	Signer string `json:"signer"`
	Side   string `json:"side"`
	Price  uint64 `json:"price"`
	Amount uint64 `json:"amount"`
}

type partialOrderView struct {
	Ordinal         uint64 `json:"ordinal"`
	Price           uint64 `json:"price"`
	CurrentAmount   uint64 `json:"current_amount"`
	RemainingAmount uint64 `json:"remaining_amount"`
	Side            string `json:"side"`
	Signer          string `json:"signer"`
}

type receiptView struct {
	Ordinal uint64             `json:"ordinal"`
	Matches []partialOrderView `json:"matches"`
}

func toPartialOrderView(p orders.PartialOrder) partialOrderView {
	return partialOrderView{
		Ordinal:         p.Ordinal,
		Price:           p.Price,
		CurrentAmount:   p.CurrentAmount,
		RemainingAmount: p.RemainingAmount,
		Side:            p.Side.String(),
		Signer:          p.Signer,
	}
}

func toReceiptView(r orders.Receipt) receiptView {
	matches := make([]partialOrderView, len(r.Matches))
	for i, m := range r.Matches {
		matches[i] = toPartialOrderView(m)
	}
	return receiptView{Ordinal: r.Ordinal, Matches: matches}
}

func parseSide(raw string) (orders.Side, bool) {
	switch strings.ToLower(raw) {
	case "buy", "bid":
		return orders.Buy, true
	case "sell", "ask":
		return orders.Sell, true
	default:
		return 0, false
	}
}

func (s *server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	side, ok := parseSide(req.Side)
	if !ok {
		http.Error(w, "side must be buy/sell (or bid/ask)", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Signer) == "" {
		http.Error(w, "signer is required", http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	order := orders.NewOrder(req.Price, req.Amount, side, req.Signer)

	s.mu.Lock()
	receipt, err := s.platform.ProcessOrder(order)
	s.mu.Unlock()

	w.Header().Set("X-Request-Id", requestID)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	log.Printf("[INFO] order processed: request_id=%s ordinal=%d matches=%d", requestID, receipt.Ordinal, len(receipt.Matches))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toReceiptView(receipt))
}

func (s *server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	desc := query.Get("desc") == "true"
	byPrice := query.Get("by") == "price"

	s.mu.Lock()
	var book []orders.PartialOrder
	if byPrice {
		book = s.platform.OrderBookByPrice(desc)
	} else {
		book = s.platform.OrderBook(query.Get("sort") == "true", desc)
	}
	s.mu.Unlock()

	views := make([]partialOrderView, len(book))
	for i, p := range book {
		views[i] = toPartialOrderView(p)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

func (s *server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	log_ := s.platform.TransactionLog()
	s.mu.Unlock()

	type txView struct {
		Kind    string `json:"kind"`
		Account string `json:"account"`
		Amount  uint64 `json:"amount"`
	}
	views := make([]txView, len(log_))
	for i, tx := range log_ {
		views[i] = txView{Kind: tx.Kind.String(), Account: tx.Account, Amount: tx.Amount}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

func (s *server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	accounts := s.platform.Accounts()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}

// handleAccountByID supports GET /accounts/{signer}/balance,
// POST /accounts/{signer}/deposit, POST /accounts/{signer}/withdraw.
func (s *server) handleAccountByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/accounts/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, "expected /accounts/{signer}/{deposit|withdraw|balance}", http.StatusBadRequest)
		return
	}
	signer, action := parts[0], parts[1]

	switch action {
	case "balance":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.mu.Lock()
		bal, err := s.platform.BalanceOf(signer)
		s.mu.Unlock()
		if err != nil {
			writeCoreError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]uint64{"balance": bal})

	case "deposit", "withdraw":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req depositRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		req.Signer = signer

		s.mu.Lock()
		var (
			tx  ledger.Tx
			err error
		)
		if action == "deposit" {
			tx, err = s.platform.Deposit(req.Signer, req.Amount)
		} else {
			tx, err = s.platform.Withdraw(req.Signer, req.Amount)
		}
		s.mu.Unlock()

		if err != nil {
			writeCoreError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"kind": tx.Kind.String(), "account": tx.Account, "amount": tx.Amount})

	default:
		http.Error(w, "unknown account action", http.StatusNotFound)
	}
}

func (s *server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	withdrawTx, depositTx, err := s.platform.Send(req.Sender, req.Recipient, req.Amount)
	s.mu.Unlock()

	if err != nil {
		writeCoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"withdraw": map[string]any{"account": withdrawTx.Account, "amount": withdrawTx.Amount},
		"deposit":  map[string]any{"account": depositTx.Account, "amount": depositTx.Amount},
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// writeCoreError translates the ledger's typed errors into HTTP status
// codes; anything else is a 500.
func writeCoreError(w http.ResponseWriter, err error) {
	var notFound *ledger.AccountNotFound
	var underFunded *ledger.AccountUnderFunded
	var overFunded *ledger.AccountOverFunded

	switch {
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &underFunded):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &overFunded):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		log.Printf("[ERROR] unexpected core error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
