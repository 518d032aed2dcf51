package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/alpinex/alpinex/internal/domain"
	"github.com/alpinex/alpinex/internal/simulator/market"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// the demo serves a local UI, cross-origin checks add nothing here
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait      = 5 * time.Second
	recentTradeCap = 30
)

// marketFrame is one websocket message of the trading view stream.
type marketFrame struct {
	Pair      domain.Pair          `json:"pair"`
	OrderBook domain.OrderBook     `json:"orderBook"`
	Trades    []domain.MarketTrade `json:"trades"`
	Candles   []domain.Candle      `json:"candles"`
	Overlay   *market.Overlay      `json:"overlay,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// handleMarketStream streams a regenerated order book, recent trades and the
// advancing candle series for the current pair. The stream follows pair
// switches made through the store.
func (s *Server) handleMarketStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	ticker := time.NewTicker(s.BookRefreshInterval)
	defer ticker.Stop()

	// drain control frames so pings and the close handshake are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	lastPair := domain.Pair{}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
			pair := s.Store.Snapshot().CurrentPair

			var candles []domain.Candle
			if pair != lastPair {
				candles = s.Market.Candles(pair, time.Minute, market.DefaultCandleCount)
				lastPair = pair
			} else {
				candles = s.Market.Advance(pair)
			}

			frame := marketFrame{
				Pair:      pair,
				OrderBook: s.Market.OrderBook(pair),
				Trades:    s.Market.Trades(pair, recentTradeCap),
				Candles:   candles,
				Timestamp: time.Now(),
			}
			if overlay, err := market.ComputeOverlay(candles); err == nil {
				frame.Overlay = &overlay
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}
