package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"market_signal_bot/models"

	"github.com/shopspring/decimal"
)

// Per-call timeouts. One attempt per call, no retry: the scheduler
// re-drives the next tick.
const (
	BatchFetchTimeout  = 15 * time.Second
	SingleFetchTimeout = 5 * time.Second
)

// Fetcher pulls crypto ticker snapshots and equity daily bars and
// normalizes them into models.Snapshot. Upstream errors never propagate
// past this boundary: the batch path returns an empty slice, the single
// path reports !ok.
type Fetcher struct {
	tickerURL     string
	equityURL     string
	quoteCurrency string
	batchClient   *http.Client
	singleClient  *http.Client
}

// NewFetcher creates a market data fetcher
func NewFetcher(tickerURL, equityURL, quoteCurrency string) *Fetcher {
	return &Fetcher{
		tickerURL:     strings.TrimRight(tickerURL, "/"),
		equityURL:     strings.TrimRight(equityURL, "/"),
		quoteCurrency: strings.ToUpper(quoteCurrency),
		batchClient:   &http.Client{Timeout: BatchFetchTimeout},
		singleClient:  &http.Client{Timeout: SingleFetchTimeout},
	}
}

// tickerResponse represents the BtcTurk public ticker payload
type tickerResponse struct {
	Data    []tickerEntry `json:"data"`
	Success bool          `json:"success"`
}

type tickerEntry struct {
	Pair           string  `json:"pair"`
	PairNormalized string  `json:"pairNormalized"`
	Timestamp      int64   `json:"timestamp"`
	Last           float64 `json:"last"`
	High           float64 `json:"high"`
	Low            float64 `json:"low"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Volume         float64 `json:"volume"`
	DailyPercent   float64 `json:"dailyPercent"`
	Denominator    string  `json:"denominatorSymbol"`
}

// FetchCryptoSnapshots fetches all ticker pairs quoted in the configured
// quote currency. Returns an empty slice on any upstream failure.
func (f *Fetcher) FetchCryptoSnapshots(ctx context.Context) []models.Snapshot {
	var resp tickerResponse
	if err := f.getJSON(ctx, f.batchClient, f.tickerURL, &resp); err != nil {
		log.Printf("Crypto ticker fetch failed (btcturk): %v", err)
		return nil
	}

	now := time.Now().UTC()
	snapshots := make([]models.Snapshot, 0, len(resp.Data))
	for _, t := range resp.Data {
		if t.Denominator != f.quoteCurrency && !strings.HasSuffix(t.PairNormalized, "_"+f.quoteCurrency) {
			continue
		}
		snap := models.Snapshot{
			Symbol:       t.PairNormalized,
			AssetClass:   models.AssetCrypto,
			Price:        t.Last,
			ChangePct24h: t.DailyPercent,
			Volume24h:    t.Volume * t.Last,
			High24h:      t.High,
			Low24h:       t.Low,
			Bid:          t.Bid,
			Ask:          t.Ask,
			AsOf:         now,
		}
		if !validSnapshot(snap) {
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// chartResponse represents the Yahoo-style daily chart payload
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// FetchEquitySnapshot fetches daily OHLCV history for one equity symbol
// and returns the latest snapshot plus the chronological close series.
// Returns (nil, nil) on any upstream failure.
func (f *Fetcher) FetchEquitySnapshot(ctx context.Context, symbol string, lookbackDays int) (*models.Snapshot, []float64) {
	url := fmt.Sprintf("%s/%s?range=%dd&interval=1d", f.equityURL, symbol, lookbackDays)

	var resp chartResponse
	if err := f.getJSON(ctx, f.batchClient, url, &resp); err != nil {
		log.Printf("Equity fetch failed for %s (chart api): %v", symbol, err)
		return nil, nil
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		log.Printf("Equity fetch for %s: empty chart result", symbol)
		return nil, nil
	}

	quote := resp.Chart.Result[0].Indicators.Quote[0]
	closes := compact(quote.Close)
	volumes := compact(quote.Volume)
	if len(closes) == 0 {
		log.Printf("Equity fetch for %s: no close data", symbol)
		return nil, nil
	}

	price := resp.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		price = closes[len(closes)-1]
	}

	changePct := 0.0
	if len(closes) >= 2 && closes[len(closes)-2] != 0 {
		changePct = (price - closes[len(closes)-2]) / closes[len(closes)-2] * 100
	}

	volume := 0.0
	if len(volumes) > 0 {
		volume = volumes[len(volumes)-1] * price
	}

	snap := models.Snapshot{
		Symbol:       symbol,
		AssetClass:   models.AssetEquity,
		Price:        price,
		ChangePct24h: changePct,
		Volume24h:    volume,
		High24h:      lastOr(compact(quote.High), price),
		Low24h:       lastOr(compact(quote.Low), price),
		AsOf:         time.Now().UTC(),
	}
	if !validSnapshot(snap) {
		log.Printf("Equity fetch for %s: invalid snapshot dropped", symbol)
		return nil, nil
	}
	return &snap, closes
}

// FetchCurrentPrice fetches the live price for a single symbol. Crypto
// symbols carry the normalized pair form (e.g. BTC_TRY); anything else is
// looked up on the equity venue. Reports !ok on any failure.
func (f *Fetcher) FetchCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	if strings.Contains(symbol, "_") {
		return f.fetchCryptoPrice(ctx, symbol)
	}
	return f.fetchEquityPrice(ctx, symbol)
}

func (f *Fetcher) fetchCryptoPrice(ctx context.Context, pair string) (decimal.Decimal, bool) {
	url := fmt.Sprintf("%s?pairSymbol=%s", f.tickerURL, pair)

	var resp tickerResponse
	if err := f.getJSON(ctx, f.singleClient, url, &resp); err != nil {
		log.Printf("Price lookup failed for %s (btcturk): %v", pair, err)
		return decimal.Zero, false
	}
	if len(resp.Data) == 0 || resp.Data[0].Last <= 0 {
		log.Printf("Price lookup for %s: no usable ticker entry", pair)
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(resp.Data[0].Last), true
}

func (f *Fetcher) fetchEquityPrice(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	url := fmt.Sprintf("%s/%s?range=1d&interval=1d", f.equityURL, symbol)

	var resp chartResponse
	if err := f.getJSON(ctx, f.singleClient, url, &resp); err != nil {
		log.Printf("Price lookup failed for %s (chart api): %v", symbol, err)
		return decimal.Zero, false
	}
	if len(resp.Chart.Result) == 0 {
		log.Printf("Price lookup for %s: empty chart result", symbol)
		return decimal.Zero, false
	}
	price := resp.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		log.Printf("Price lookup for %s: non-positive price", symbol)
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(price), true
}

func (f *Fetcher) getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "market-signal-bot/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// validSnapshot enforces the adapter output guarantees: positive price,
// bid <= ask when both present, high >= low.
func validSnapshot(s models.Snapshot) bool {
	if s.Price <= 0 {
		return false
	}
	if s.Bid > 0 && s.Ask > 0 && s.Bid > s.Ask {
		return false
	}
	if s.High24h > 0 && s.Low24h > 0 && s.High24h < s.Low24h {
		return false
	}
	return true
}

func compact(vals []*float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func lastOr(vals []float64, fallback float64) float64 {
	if len(vals) == 0 {
		return fallback
	}
	return vals[len(vals)-1]
}
