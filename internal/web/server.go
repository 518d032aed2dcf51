// Package web exposes the exchange session over HTTP: a JSON snapshot of
// the application state, REST mutation endpoints, an SSE state stream and
// a websocket market-data stream for the trading view.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/alpinex/alpinex/internal/domain"
	"github.com/alpinex/alpinex/internal/simulator/market"
	"github.com/alpinex/alpinex/internal/store"
)

// Server serves the state store and the market simulator.
type Server struct {
	Addr   string
	Store  *store.Store
	Market *market.Simulator
	Logger *zap.Logger

	// BookRefreshInterval cadence of the websocket market stream.
	BookRefreshInterval time.Duration
}

// NewServer creates a web server instance.
func NewServer(addr string, st *store.Store, sim *market.Simulator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Addr:                addr,
		Store:               st,
		Market:              sim,
		Logger:              logger,
		BookRefreshInterval: 500 * time.Millisecond,
	}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/state/stream", s.handleStateStream)
	mux.HandleFunc("/market/stream", s.handleMarketStream)
	mux.HandleFunc("/transfer", s.handleTransfer)
	mux.HandleFunc("/orders", s.handleOrders)
	mux.HandleFunc("/orders/", s.handleOrderPatch)
	mux.HandleFunc("/mode", s.handleMode)
	mux.HandleFunc("/pair", s.handlePair)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.Logger.Info("web server listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic certificates via ACME.
// A plain HTTP server on :80 handles the HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return errors.New("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("http (acme) server shutdown error", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("https server shutdown error", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("http (acme) server error", zap.Error(err))
		}
	}()

	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.Store.Snapshot())
}

// handleStateStream pushes a state snapshot over SSE after every mutation,
// including price ticks.
func (s *Server) handleStateStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	updates := s.Store.Subscribe(ctx)

	// proxies drop silent connections, keep a comment heartbeat going
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	send := func(snapshot store.State) bool {
		payload, err := json.Marshal(snapshot)
		if err != nil {
			s.Logger.Warn("state stream marshal", zap.Error(err))
			return false
		}
		if _, err := w.Write([]byte("event: state\ndata: " + string(payload) + "\n\n")); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(s.Store.Snapshot()) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case snapshot := <-updates:
			if !send(snapshot) {
				return
			}
		}
	}
}

type transferRequest struct {
	From   domain.Wallet   `json:"from"`
	To     domain.Wallet   `json:"to"`
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode request"))
		return
	}

	if err := s.Store.TransferAssets(req.From, req.To, req.Symbol, req.Amount); err != nil {
		switch {
		case errors.Is(err, store.ErrUnknownAsset),
			errors.Is(err, store.ErrInsufficientBalance),
			errors.Is(err, store.ErrNonPositiveAmount):
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			writeError(w, http.StatusBadRequest, err)
		}
		return
	}

	// the transfer itself never touches the transaction log, recording
	// the movement is this caller's job
	snapshot := s.Store.Snapshot()
	value := req.Amount
	ledger := snapshot.HodlAssets
	if req.To == domain.WalletTrade {
		ledger = snapshot.TradeAssets
	}
	for _, a := range ledger {
		if a.Symbol == req.Symbol {
			value = req.Amount.Mul(a.Price)
			break
		}
	}
	tx := domain.NewTransferTransaction(req.Symbol, req.Amount, value, req.From, req.To)
	s.Store.AddTransaction(tx)

	writeJSON(w, http.StatusOK, tx)
}

type orderRequest struct {
	Pair   domain.Pair      `json:"pair"`
	Type   domain.OrderType `json:"type"`
	Side   domain.OrderSide `json:"side"`
	Amount decimal.Decimal  `json:"amount"`
	Price  *decimal.Decimal `json:"price,omitempty"`
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.Store.Snapshot().Orders)
	case http.MethodPost:
		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode request"))
			return
		}
		order := domain.NewOrder(req.Pair, req.Type, req.Side, req.Amount, req.Price)
		if err := s.Store.AddOrder(order); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type orderPatchRequest struct {
	Price  *decimal.Decimal    `json:"price,omitempty"`
	Filled *decimal.Decimal    `json:"filled,omitempty"`
	Status *domain.OrderStatus `json:"status,omitempty"`
}

func (s *Server) handleOrderPatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/orders/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing order id"))
		return
	}

	var req orderPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode request"))
		return
	}

	err := s.Store.UpdateOrder(id, store.OrderPatch{
		Price:  req.Price,
		Filled: req.Filled,
		Status: req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, store.ErrOrderFinal):
			writeError(w, http.StatusConflict, err)
		default:
			writeError(w, http.StatusBadRequest, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Mode domain.Mode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode request"))
		return
	}
	if err := s.Store.SetMode(req.Mode); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mode": req.Mode.String()})
}

func (s *Server) handlePair(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Pair string `json:"pair"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode request"))
		return
	}
	pair, err := domain.ParsePair(req.Pair)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.Store.SetCurrentPair(pair)
	writeJSON(w, http.StatusOK, map[string]string{"pair": pair.String()})
}
