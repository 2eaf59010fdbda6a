// Package mockserver serves the subset of the Binance spot REST API that the
// order gateway uses: ticker prices, account balances and market orders.
package mockserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// Order is a market order the server filled.
type Order struct {
	OrderID  int64
	Symbol   string
	Side     string
	Quantity float64
	Price    float64
	Time     time.Time
}

// Server is an in-memory Binance spot exchange. Market orders fill
// immediately at the configured price.
type Server struct {
	mu       sync.RWMutex
	prices   map[string]float64
	balances map[string]float64
	orders   []Order
	orderSeq int64
	reject   bool

	httpServer *http.Server
	listener   net.Listener
}

// New creates a server holding the given free balances per asset.
func New(balances map[string]float64) *Server {
	s := &Server{
		prices:   make(map[string]float64),
		balances: make(map[string]float64),
	}

	for asset, amount := range balances {
		s.balances[asset] = amount
	}

	return s
}

// Router returns the REST routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/v3/ticker/price", s.handleTickerPrice).Methods(http.MethodGet)
	router.HandleFunc("/api/v3/account", s.handleAccount).Methods(http.MethodGet)
	router.HandleFunc("/api/v3/order", s.handleCreateOrder).Methods(http.MethodPost)

	return router
}

// Start listens on a random local port.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to listen", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// BaseURL is the REST endpoint to configure the gateway with.
func (s *Server) BaseURL() string {
	return "http://" + s.listener.Addr().String()
}

func (s *Server) SetPrice(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices[symbol] = price
}

// RejectOrders makes every following order fail with an exchange error.
func (s *Server) RejectOrders(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reject = reject
}

func (s *Server) Balance(asset string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balances[asset]
}

func (s *Server) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, len(s.orders))
	copy(out, s.orders)

	return out
}

type apiError struct {
	Code    int64  `json:"code"`
	Message string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int64, message string) {
	writeJSON(w, http.StatusBadRequest, apiError{Code: code, Message: message})
}

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}

func (s *Server) handleTickerPrice(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		price, ok := s.prices[symbol]
		if !ok {
			writeError(w, -1121, "Invalid symbol.")

			return
		}

		writeJSON(w, http.StatusOK, tickerPrice{Symbol: symbol, Price: formatFloat(price)})

		return
	}

	var symbols []string
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &symbols); err != nil {
			writeError(w, -1100, "Illegal characters found in parameter 'symbols'.")

			return
		}
	} else {
		for symbol := range s.prices {
			symbols = append(symbols, symbol)
		}
	}

	response := make([]tickerPrice, 0, len(symbols))

	for _, symbol := range symbols {
		if price, ok := s.prices[symbol]; ok {
			response = append(response, tickerPrice{Symbol: symbol, Price: formatFloat(price)})
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleAccount(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type balance struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	}

	balances := make([]balance, 0, len(s.balances))
	for asset, free := range s.balances {
		balances = append(balances, balance{Asset: asset, Free: formatFloat(free), Locked: formatFloat(0)})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"canTrade":    true,
		"accountType": "SPOT",
		"updateTime":  time.Now().UnixMilli(),
		"balances":    balances,
	})
}

// splitSymbol returns the base and quote asset of symbol.
func splitSymbol(symbol string) (string, string) {
	for _, quote := range []string{"USDT", "BUSD", "BTC", "ETH", "BNB"} {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			return strings.TrimSuffix(symbol, quote), quote
		}
	}

	return symbol[:len(symbol)/2], symbol[len(symbol)/2:]
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, -1102, "Malformed request.")

		return
	}

	symbol := r.FormValue("symbol")
	side := r.FormValue("side")

	if symbol == "" || side == "" || r.FormValue("type") != "MARKET" {
		writeError(w, -1102, "Mandatory parameter was not sent, was empty/null, or malformed.")

		return
	}

	quantity, err := strconv.ParseFloat(r.FormValue("quantity"), 64)
	if err != nil || quantity <= 0 {
		writeError(w, -1013, "Invalid quantity.")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reject {
		writeError(w, -2010, "Account has insufficient balance for requested action.")

		return
	}

	price, ok := s.prices[symbol]
	if !ok {
		writeError(w, -1121, "Invalid symbol.")

		return
	}

	base, quote := splitSymbol(symbol)
	cost := price * quantity

	switch side {
	case "BUY":
		if s.balances[quote] < cost {
			writeError(w, -2010, "Account has insufficient balance for requested action.")

			return
		}

		s.balances[quote] -= cost
		s.balances[base] += quantity
	case "SELL":
		if s.balances[base] < quantity {
			writeError(w, -2010, "Account has insufficient balance for requested action.")

			return
		}

		s.balances[base] -= quantity
		s.balances[quote] += cost
	default:
		writeError(w, -1102, "Invalid side.")

		return
	}

	s.orderSeq++
	now := time.Now()
	s.orders = append(s.orders, Order{
		OrderID:  s.orderSeq,
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		Time:     now,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":              symbol,
		"orderId":             s.orderSeq,
		"orderListId":         -1,
		"clientOrderId":       uuid.NewString(),
		"transactTime":        now.UnixMilli(),
		"price":               formatFloat(0),
		"origQty":             formatFloat(quantity),
		"executedQty":         formatFloat(quantity),
		"cummulativeQuoteQty": formatFloat(cost),
		"status":              "FILLED",
		"timeInForce":         "GTC",
		"type":                "MARKET",
		"side":                side,
	})
}
