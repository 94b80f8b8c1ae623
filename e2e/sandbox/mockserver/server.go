// Package mockserver provides a mock sandbox trading backend for testing.
// It keeps positions, pending orders and the ledger in memory, and also serves
// the Binance ticker endpoint so one server can back both the sandbox client
// and the price feed.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/internal/history"
	"github.com/rxtech-lab/sandbox-risk/internal/risk"
	"github.com/rxtech-lab/sandbox-risk/internal/sandbox"
	"github.com/rxtech-lab/sandbox-risk/internal/types"
)

// MockSandboxServer provides a mock sandbox backend for testing.
type MockSandboxServer struct {
	mu sync.RWMutex

	// HTTP server
	httpServer *http.Server
	listener   net.Listener

	token      string
	apiVersion string
	now        func() time.Time

	// State management
	balance      float64
	positions    map[string]*types.Position
	orders       map[string]*types.PendingOrder
	trades       []types.ClosedTrade
	transactions []types.LedgerTransaction
	requestIDs   []string

	// Market data
	currentPrices map[string]float64
}

// ServerConfig holds configuration for the mock server.
type ServerConfig struct {
	// Token is the bearer token every sandbox request must carry
	Token string
	// APIVersion is sent back in the X-Api-Version header when set
	APIVersion string
	// InitialBalance is recorded as a deposit when positive
	InitialBalance float64
	// Prices maps symbol to current price
	Prices map[string]float64
	// Now overrides the clock, defaults to time.Now
	Now func() time.Time
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type tradeItem struct {
	Kind history.ItemKind `json:"kind"`
	types.ClosedTrade
}

type transactionItem struct {
	Kind history.ItemKind `json:"kind"`
	types.LedgerTransaction
}

// NewMockSandboxServer creates a new mock sandbox server.
func NewMockSandboxServer(config ServerConfig) *MockSandboxServer {
	now := config.Now
	if now == nil {
		now = time.Now
	}

	server := &MockSandboxServer{
		mu:            sync.RWMutex{},
		httpServer:    nil,
		listener:      nil,
		token:         config.Token,
		apiVersion:    config.APIVersion,
		now:           now,
		balance:       0,
		positions:     make(map[string]*types.Position),
		orders:        make(map[string]*types.PendingOrder),
		trades:        make([]types.ClosedTrade, 0),
		transactions:  make([]types.LedgerTransaction, 0),
		requestIDs:    make([]string, 0),
		currentPrices: make(map[string]float64),
	}

	for symbol, price := range config.Prices {
		server.currentPrices[strings.ToUpper(symbol)] = price
	}

	if config.InitialBalance > 0 {
		server.record(types.TransactionTypeDeposit, config.InitialBalance, "Initial deposit")
	}

	return server
}

// Start starts the mock server on the given address.
// If address is empty, it will use a random available port.
func (s *MockSandboxServer) Start(address string) error {
	if address == "" {
		address = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	router := mux.NewRouter()

	api := router.PathPrefix("/api/sandbox").Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/close-trade", s.handleCloseTrade).Methods(http.MethodPost)
	api.HandleFunc("/cancel-order", s.handleCancelOrder).Methods(http.MethodPost)
	api.HandleFunc("/update-trade", s.handleUpdateTrade).Methods(http.MethodPut)
	api.HandleFunc("/force-check-positions", s.handleForceCheck).Methods(http.MethodPost)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)

	// Binance compatible price endpoint
	router.HandleFunc("/api/v3/ticker/price", s.handleTickerPrice).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Stop stops the mock server.
func (s *MockSandboxServer) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// BaseURL returns the base URL of the server.
func (s *MockSandboxServer) BaseURL() string {
	if s.listener == nil {
		return ""
	}

	return "http://" + s.listener.Addr().String()
}

// SetPrice sets the current price of a symbol.
func (s *MockSandboxServer) SetPrice(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPrices[strings.ToUpper(symbol)] = price
}

// OpenPosition adds an open position and returns its id. A missing id or
// entry time is filled in.
func (s *MockSandboxServer) OpenPosition(position types.Position) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position.ID == "" {
		position.ID = uuid.NewString()
	}

	if position.EntryTime.IsZero() {
		position.EntryTime = s.now()
	}

	s.positions[position.ID] = &position

	return position.ID
}

// AddOrder adds a pending order and returns its id.
func (s *MockSandboxServer) AddOrder(order types.PendingOrder) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	if order.OrderTime.IsZero() {
		order.OrderTime = s.now()
	}

	s.orders[order.ID] = &order

	return order.ID
}

// GetPosition returns a copy of an open position.
func (s *MockSandboxServer) GetPosition(id string) (types.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	position, ok := s.positions[id]
	if !ok {
		return types.Position{}, false
	}

	return *position, true
}

// Positions returns copies of all open positions.
func (s *MockSandboxServer) Positions() []types.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := make([]types.Position, 0, len(s.positions))
	for _, position := range s.positions {
		positions = append(positions, *position)
	}

	return positions
}

// HasOrder reports whether a pending order exists.
func (s *MockSandboxServer) HasOrder(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.orders[id]

	return ok
}

// GetTrades returns all closed trades in close order.
func (s *MockSandboxServer) GetTrades() []types.ClosedTrade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]types.ClosedTrade(nil), s.trades...)
}

// Balance returns the ledger balance.
func (s *MockSandboxServer) Balance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balance
}

// RequestIDs returns the X-Request-Id of every mutation received.
func (s *MockSandboxServer) RequestIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.requestIDs...)
}

func (s *MockSandboxServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiVersion != "" {
			w.Header().Set(sandbox.HeaderAPIVersion, s.apiVersion)
		}

		if r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSON(w, http.StatusUnauthorized, response{Success: false, Message: "Unauthorized"})
			return
		}

		if id := r.Header.Get(sandbox.HeaderRequestID); id != "" {
			s.mu.Lock()
			s.requestIDs = append(s.requestIDs, id)
			s.mu.Unlock()
		}

		next.ServeHTTP(w, r)
	})
}

// handleCloseTrade handles POST /api/sandbox/close-trade
func (s *MockSandboxServer) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TradeID           string          `json:"tradeId"`
		CloseType         types.CloseType `json:"closeType"`
		PartialPercentage int             `json:"partialPercentage"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	position, ok := s.positions[req.TradeID]
	if !ok {
		writeJSON(w, http.StatusNotFound, response{Success: false, Message: "Position not found"})
		return
	}

	price, ok := s.currentPrices[strings.ToUpper(position.Symbol)]
	if !ok {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "No market price for " + position.Symbol})
		return
	}

	if req.CloseType != types.CloseTypePartial {
		s.closePosition(position, price, types.CloseReasonManual)
		writeJSON(w, http.StatusOK, response{Success: true, Message: "Position closed"})

		return
	}

	if req.PartialPercentage < 10 || req.PartialPercentage > 90 {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "Partial percentage must be between 10 and 90"})
		return
	}

	closed, remaining := risk.PartialCloseQuantity(*position, req.PartialPercentage)
	part := *position
	part.Quantity = closed
	part.MarginUsed = position.MarginUsed * float64(req.PartialPercentage) / 100
	part.Fees = types.Fees{}

	position.Quantity = remaining
	position.MarginUsed -= part.MarginUsed

	s.settle(part, price, types.CloseReasonPartial)
	writeJSON(w, http.StatusOK, response{Success: true, Message: fmt.Sprintf("Closed %d%% of position", req.PartialPercentage)})
}

// handleCancelOrder handles POST /api/sandbox/cancel-order
func (s *MockSandboxServer) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[req.OrderID]; !ok {
		writeJSON(w, http.StatusNotFound, response{Success: false, Message: "Order not found"})
		return
	}

	delete(s.orders, req.OrderID)
	writeJSON(w, http.StatusOK, response{Success: true, Message: "Order cancelled"})
}

// handleUpdateTrade handles PUT /api/sandbox/update-trade
func (s *MockSandboxServer) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TradeID    string   `json:"tradeId"`
		StopLoss   *float64 `json:"stopLoss"`
		TakeProfit *float64 `json:"takeProfit"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	position, ok := s.positions[req.TradeID]
	if !ok {
		writeJSON(w, http.StatusNotFound, response{Success: false, Message: "Position not found"})
		return
	}

	if req.StopLoss != nil {
		position.StopLoss = optional.Some(types.PriceLevel{Price: *req.StopLoss})
	}

	if req.TakeProfit != nil {
		position.TakeProfit = optional.Some(types.PriceLevel{Price: *req.TakeProfit})
	}

	writeJSON(w, http.StatusOK, response{Success: true, Message: "Risk levels updated"})
}

// handleForceCheck handles POST /api/sandbox/force-check-positions
// Positions that crossed their stop loss, take profit or liquidation price
// are closed at the current price.
func (s *MockSandboxServer) handleForceCheck(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed := 0

	for _, position := range s.positions {
		price, ok := s.currentPrices[strings.ToUpper(position.Symbol)]
		if !ok {
			continue
		}

		metrics := risk.Evaluate(*position, price, s.now())

		var reason types.CloseReason

		switch {
		case metrics.Risk.IsSome() && metrics.Risk.Unwrap().Level == risk.RiskLevelLiquidated:
			reason = types.CloseReasonLiquidation
		case metrics.StopLossHit:
			reason = types.CloseReasonStopLoss
		case metrics.TakeProfitHit:
			reason = types.CloseReasonTakeProfit
		default:
			continue
		}

		s.closePosition(position, price, reason)
		closed++
	}

	writeJSON(w, http.StatusOK, response{Success: true, Message: fmt.Sprintf("Checked positions, closed %d", closed)})
}

// handleHistory handles GET /api/sandbox/history
func (s *MockSandboxServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = sandbox.DefaultHistoryLimit
	}

	s.mu.RLock()
	items := history.Merge(s.trades, s.transactions)
	s.mu.RUnlock()

	start := min((page-1)*limit, len(items))
	end := min(start+limit, len(items))

	data := make([]any, 0, end-start)

	for _, item := range items[start:end] {
		if item.Trade.IsSome() {
			data = append(data, tradeItem{Kind: history.ItemKindTrade, ClosedTrade: item.Trade.Unwrap()})
		} else {
			data = append(data, transactionItem{Kind: history.ItemKindTransaction, LedgerTransaction: item.Transaction.Unwrap()})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
		"pagination": map[string]any{
			"page":       page,
			"limit":      limit,
			"hasMore":    end < len(items),
			"totalItems": len(items),
		},
	})
}

// handleTickerPrice handles GET /api/v3/ticker/price
func (s *MockSandboxServer) handleTickerPrice(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var symbols []string
	if symbolsParam := r.URL.Query().Get("symbols"); symbolsParam != "" {
		if err := json.Unmarshal([]byte(symbolsParam), &symbols); err != nil {
			http.Error(w, "Invalid symbols parameter", http.StatusBadRequest)
			return
		}
	} else if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		symbols = []string{symbol}
	}

	type priceResponse struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}

	prices := make([]priceResponse, 0, len(symbols))

	for _, symbol := range symbols {
		if price, ok := s.currentPrices[symbol]; ok {
			prices = append(prices, priceResponse{
				Symbol: symbol,
				Price:  strconv.FormatFloat(price, 'f', 8, 64),
			})
		}
	}

	writeJSON(w, http.StatusOK, prices)
}

// closePosition removes the position and settles it. Caller holds s.mu.
func (s *MockSandboxServer) closePosition(position *types.Position, price float64, reason types.CloseReason) {
	delete(s.positions, position.ID)
	s.settle(*position, price, reason)
}

// settle records the closed trade and its realized P&L. Caller holds s.mu.
func (s *MockSandboxServer) settle(position types.Position, price float64, reason types.CloseReason) {
	now := s.now()
	realized := risk.NetPnL(position, price)

	trade := types.ClosedTrade{
		Position:    position,
		ExitPrice:   price,
		ExitTime:    now,
		RealizedPnL: realized,
		CloseReason: reason,
		Duration:    "",
	}
	if reason == types.CloseReasonPartial {
		trade.ID = uuid.NewString()
	}

	s.trades = append(s.trades, trade)
	s.record(types.TransactionTypeRealizedPnL, realized, fmt.Sprintf("%s %s closed (%s)", position.Symbol, position.Side, reason))
}

// record appends a ledger transaction. Caller holds s.mu.
func (s *MockSandboxServer) record(kind types.TransactionType, amount float64, description string) {
	before := s.balance
	s.balance += amount

	s.transactions = append(s.transactions, types.LedgerTransaction{
		ID:            uuid.NewString(),
		Type:          kind,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  s.balance,
		Description:   description,
		CreatedAt:     s.now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
