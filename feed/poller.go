package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Poller fetches the last traded price from an exchange REST ticker
// endpoint on a fixed cadence. Fetch failures are logged and skipped; the
// engine simply sees no tick for that interval.
type Poller struct {
	endpoint string
	symbol   string
	interval time.Duration
	client   *http.Client
	limiter  *rate.Limiter
	log      *zap.Logger
}

func NewPoller(endpoint, symbol string, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		endpoint: endpoint,
		symbol:   symbol,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		// Burst 1 at the polling cadence keeps us polite even if the
		// ticker loop ever runs hot.
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		log:     log,
	}
}

func (p *Poller) Run(ctx context.Context, h Handler) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}

		price, err := p.fetch(ctx)
		if err != nil {
			p.log.Warn("ticker fetch failed",
				zap.String("symbol", p.symbol),
				zap.Error(err))
		} else {
			h(Tick{Symbol: p.symbol, Price: price, Time: time.Now()})
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// tickerPayload covers the common REST ticker shapes: binance-style
// {"symbol","price"} and bybit/okx-style {"symbol","lastPrice"}.
type tickerPayload struct {
	Symbol    string      `json:"symbol"`
	Price     json.Number `json:"price"`
	LastPrice json.Number `json:"lastPrice"`
}

func (p *Poller) fetch(ctx context.Context) (float64, error) {
	u := p.endpoint
	if p.symbol != "" {
		sep := "?"
		if parsed, err := url.Parse(u); err == nil && parsed.RawQuery != "" {
			sep = "&"
		}
		u += sep + "symbol=" + url.QueryEscape(p.symbol)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ticker: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, err
	}

	var payload tickerPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("ticker: decode: %w", err)
	}

	raw := string(payload.Price)
	if raw == "" {
		raw = string(payload.LastPrice)
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("ticker: bad price %q", raw)
	}
	return price, nil
}
