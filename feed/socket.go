package feed

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Socket streams ticker updates over a websocket (bybit v5 public ticker
// framing). Disconnects reconnect with backoff; the engine never sees the
// gap as anything but silence.
type Socket struct {
	url    string
	symbol string
	log    *zap.Logger
}

func NewSocket(url, symbol string, log *zap.Logger) *Socket {
	if log == nil {
		log = zap.NewNop()
	}
	return &Socket{url: url, symbol: symbol, log: log}
}

type wsSubscribe struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

type wsTicker struct {
	Topic string `json:"topic"`
	Data  struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
	} `json:"data"`
}

func (s *Socket) Run(ctx context.Context, h Handler) error {
	backoff := time.Second
	for {
		err := s.stream(ctx, h)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("ticker stream dropped, reconnecting",
			zap.String("symbol", s.symbol),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *Socket) stream(ctx context.Context, h Handler) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsSubscribe{
		Op:   "subscribe",
		Args: []string{"tickers." + s.symbol},
	}); err != nil {
		return err
	}

	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var tick wsTicker
		if err := json.Unmarshal(msg, &tick); err != nil || tick.Data.LastPrice == "" {
			continue // ping/pong, sub acks, partial frames
		}
		price, err := strconv.ParseFloat(tick.Data.LastPrice, 64)
		if err != nil || price <= 0 {
			continue
		}

		symbol := tick.Data.Symbol
		if symbol == "" {
			symbol = s.symbol
		}
		h(Tick{Symbol: symbol, Price: price, Time: time.Now()})
	}
}
