package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"market_signal_bot/models"

	"github.com/shopspring/decimal"
)

const tickerPayload = `{
  "success": true,
  "data": [
    {"pair": "BTCTRY", "pairNormalized": "BTC_TRY", "last": 2500000, "high": 2550000, "low": 2400000,
     "bid": 2499000, "ask": 2501000, "volume": 12.5, "dailyPercent": 3.2, "denominatorSymbol": "TRY"},
    {"pair": "ETHUSDT", "pairNormalized": "ETH_USDT", "last": 3500, "high": 3600, "low": 3400,
     "bid": 3499, "ask": 3501, "volume": 100, "dailyPercent": -1.1, "denominatorSymbol": "USDT"},
    {"pair": "XRPTRY", "pairNormalized": "XRP_TRY", "last": 0, "high": 20, "low": 18,
     "bid": 18.5, "ask": 18.6, "volume": 5000, "dailyPercent": 0.5, "denominatorSymbol": "TRY"}
  ]
}`

const chartPayload = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "THYAO.IS", "regularMarketPrice": 310.5},
      "indicators": {
        "quote": [{
          "close": [300.0, null, 305.0, 308.0],
          "high": [302.0, null, 307.0, 312.0],
          "low": [298.0, null, 303.0, 307.0],
          "volume": [1000000, null, 1200000, 900000]
        }]
      }
    }]
  }
}`

func TestFetchCryptoSnapshots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tickerPayload))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, "", "TRY")
	snaps := f.FetchCryptoSnapshots(context.Background())

	// ETH_USDT is off-quote, XRP_TRY has a zero price
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1: %v", len(snaps), snaps)
	}

	s := snaps[0]
	if s.Symbol != "BTC_TRY" {
		t.Errorf("symbol = %s, want BTC_TRY", s.Symbol)
	}
	if s.AssetClass != models.AssetCrypto {
		t.Errorf("asset class = %v, want crypto", s.AssetClass)
	}
	if want := 12.5 * 2500000; s.Volume24h != want {
		t.Errorf("quote volume = %v, want %v", s.Volume24h, want)
	}
	if s.ChangePct24h != 3.2 {
		t.Errorf("change = %v, want 3.2", s.ChangePct24h)
	}
}

func TestFetchCryptoSnapshots_UpstreamFailureIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, "", "TRY")
	if snaps := f.FetchCryptoSnapshots(context.Background()); len(snaps) != 0 {
		t.Errorf("got %d snapshots on upstream 502, want 0", len(snaps))
	}
}

func TestFetchEquitySnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartPayload))
	}))
	defer srv.Close()

	f := NewFetcher("", srv.URL, "TRY")
	snap, closes := f.FetchEquitySnapshot(context.Background(), "THYAO.IS", 60)
	if snap == nil {
		t.Fatal("snapshot is nil")
	}

	// Nulls are dropped from the series
	if len(closes) != 3 {
		t.Fatalf("got %d closes, want 3 after null removal: %v", len(closes), closes)
	}
	if closes[2] != 308.0 {
		t.Errorf("last close = %v, want 308", closes[2])
	}

	if snap.Price != 310.5 {
		t.Errorf("price = %v, want regular market price 310.5", snap.Price)
	}
	if snap.AssetClass != models.AssetEquity {
		t.Errorf("asset class = %v, want equity", snap.AssetClass)
	}
	// Change is computed against the previous close (305)
	want := (310.5 - 305.0) / 305.0 * 100
	if snap.ChangePct24h != want {
		t.Errorf("change = %v, want %v", snap.ChangePct24h, want)
	}
	if snap.High24h != 312.0 || snap.Low24h != 307.0 {
		t.Errorf("high/low = %v/%v, want 312/307", snap.High24h, snap.Low24h)
	}
}

func TestFetchEquitySnapshot_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart": {"result": []}}`))
	}))
	defer srv.Close()

	f := NewFetcher("", srv.URL, "TRY")
	snap, closes := f.FetchEquitySnapshot(context.Background(), "THYAO.IS", 60)
	if snap != nil || closes != nil {
		t.Errorf("got (%v, %v) on empty result, want (nil, nil)", snap, closes)
	}
}

func TestFetchCurrentPrice_VenueDispatch(t *testing.T) {
	crypto := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pairSymbol") != "BTC_TRY" {
			t.Errorf("pairSymbol = %q, want BTC_TRY", r.URL.Query().Get("pairSymbol"))
		}
		w.Write([]byte(`{"success": true, "data": [{"pairNormalized": "BTC_TRY", "last": 2600000}]}`))
	}))
	defer crypto.Close()

	equity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart": {"result": [{"meta": {"symbol": "THYAO.IS", "regularMarketPrice": 315.25}}]}}`))
	}))
	defer equity.Close()

	f := NewFetcher(crypto.URL, equity.URL, "TRY")

	price, ok := f.FetchCurrentPrice(context.Background(), "BTC_TRY")
	if !ok || !price.Equal(decimal.NewFromInt(2600000)) {
		t.Errorf("crypto price = (%v, %v), want (2600000, true)", price, ok)
	}

	price, ok = f.FetchCurrentPrice(context.Background(), "THYAO.IS")
	if !ok || !price.Equal(decimal.NewFromFloat(315.25)) {
		t.Errorf("equity price = (%v, %v), want (315.25, true)", price, ok)
	}
}

func TestFetchCurrentPrice_FailuresReportNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": []}`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, srv.URL, "TRY")
	if _, ok := f.FetchCurrentPrice(context.Background(), "BTC_TRY"); ok {
		t.Error("empty ticker data reported ok")
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	f = NewFetcher(down.URL, down.URL, "TRY")
	if _, ok := f.FetchCurrentPrice(context.Background(), "BTC_TRY"); ok {
		t.Error("upstream 503 reported ok")
	}
}

func TestValidSnapshot(t *testing.T) {
	tests := []struct {
		name string
		snap models.Snapshot
		want bool
	}{
		{"positive price", models.Snapshot{Price: 10, High24h: 12, Low24h: 9, Bid: 9.9, Ask: 10.1}, true},
		{"zero price", models.Snapshot{Price: 0}, false},
		{"crossed book", models.Snapshot{Price: 10, Bid: 10.2, Ask: 10.0}, false},
		{"inverted range", models.Snapshot{Price: 10, High24h: 9, Low24h: 11}, false},
		{"missing book is fine", models.Snapshot{Price: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validSnapshot(tt.snap); got != tt.want {
				t.Errorf("validSnapshot = %v, want %v", got, tt.want)
			}
		})
	}
}
