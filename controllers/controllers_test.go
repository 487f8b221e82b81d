package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"market_signal_bot/models"
	"market_signal_bot/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubFetcher struct {
	prices map[string]decimal.Decimal
}

func (s *stubFetcher) FetchCurrentPrice(_ context.Context, symbol string) (decimal.Decimal, bool) {
	p, ok := s.prices[symbol]
	return p, ok
}

type stubRunner struct {
	err   error
	calls int
}

func (s *stubRunner) RunScanTick() error {
	s.calls++
	return s.err
}

func newSignalStore(t *testing.T) *store.SignalStore {
	t.Helper()
	return store.NewSignalStore(filepath.Join(t.TempDir(), "signals.json"))
}

func perform(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetAnalysis_PendingBeforeFirstScan(t *testing.T) {
	cache := store.NewScanCache(filepath.Join(t.TempDir(), "last_scan.json"))
	ctrl := NewAnalysisController(cache)

	router := gin.New()
	router.GET("/analysis", ctrl.GetAnalysis)

	w := perform(router, http.MethodGet, "/analysis")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "pending" {
		t.Errorf("status field = %q, want pending", body["status"])
	}
}

func TestGetSymbolAnalysis(t *testing.T) {
	cache := store.NewScanCache(filepath.Join(t.TempDir(), "last_scan.json"))
	cache.Set(&models.ScanResult{
		GeneratedAt: time.Now().UTC(),
		Rising: []models.Candidate{
			{Snapshot: models.Snapshot{Symbol: "BTC_TRY", Price: 100}, FinalScore: 82, Class: models.SignalStrongBuy},
		},
	})
	ctrl := NewAnalysisController(cache)

	router := gin.New()
	router.GET("/analysis/:symbol", ctrl.GetSymbolAnalysis)

	w := perform(router, http.MethodGet, "/analysis/btc_try")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (case-insensitive lookup)", w.Code)
	}

	var cand models.Candidate
	if err := json.Unmarshal(w.Body.Bytes(), &cand); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cand.Snapshot.Symbol != "BTC_TRY" || cand.FinalScore != 82 {
		t.Errorf("candidate = %+v, want BTC_TRY at 82", cand)
	}

	if w := perform(router, http.MethodGet, "/analysis/DOGE_TRY"); w.Code != http.StatusNotFound {
		t.Errorf("unknown symbol status = %d, want 404", w.Code)
	}
}

func TestGetActiveSignals_LivePriceRefresh(t *testing.T) {
	signals := newSignalStore(t)
	if _, err := signals.Append(models.NewSignal(
		"BTC_TRY", models.SignalStrongBuy, decimal.NewFromInt(100), 25, -5, time.Now().UTC(),
	)); err != nil {
		t.Fatalf("append: %v", err)
	}

	fetcher := &stubFetcher{prices: map[string]decimal.Decimal{"BTC_TRY": decimal.NewFromInt(110)}}
	ctrl := NewSignalController(signals, fetcher)

	router := gin.New()
	router.GET("/signals/active", ctrl.GetActiveSignals)

	w := perform(router, http.MethodGet, "/signals/active")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Count   int `json:"count"`
		Signals []struct {
			Symbol        string `json:"symbol"`
			CurrentPrice  string `json:"current_price"`
			UnrealizedPct string `json:"unrealized_pct"`
		} `json:"signals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("count = %d, want 1", body.Count)
	}
	if body.Signals[0].CurrentPrice != "110" || body.Signals[0].UnrealizedPct != "10" {
		t.Errorf("view = %+v, want price 110, unrealized 10", body.Signals[0])
	}
}

func TestGetSignals_FilterAndLimit(t *testing.T) {
	signals := newSignalStore(t)
	for _, symbol := range []string{"A_TRY", "B_TRY", "C_TRY"} {
		if _, err := signals.Append(models.NewSignal(
			symbol, models.SignalBuy, decimal.NewFromInt(100), 12, -5, time.Now().UTC(),
		)); err != nil {
			t.Fatalf("append %s: %v", symbol, err)
		}
	}
	if err := signals.Close(1, models.StatusWin, decimal.NewFromInt(13), time.Now().UTC()); err != nil {
		t.Fatalf("close: %v", err)
	}

	ctrl := NewSignalController(signals, &stubFetcher{})
	router := gin.New()
	router.GET("/signals", ctrl.GetSignals)

	var body struct {
		Count   int             `json:"count"`
		Signals []models.Signal `json:"signals"`
	}

	w := perform(router, http.MethodGet, "/signals?status=WIN")
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || body.Signals[0].Symbol != "A_TRY" {
		t.Errorf("WIN filter = %+v, want only A_TRY", body.Signals)
	}

	// Newest first with a limit
	w = perform(router, http.MethodGet, "/signals?limit=2")
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 || body.Signals[0].Symbol != "C_TRY" || body.Signals[1].Symbol != "B_TRY" {
		t.Errorf("limited history = %+v, want C_TRY then B_TRY", body.Signals)
	}

	if w := perform(router, http.MethodGet, "/signals?limit=zero"); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", w.Code)
	}
}

func TestSendNow(t *testing.T) {
	runner := &stubRunner{}
	ctrl := NewScanController(runner)

	router := gin.New()
	router.POST("/send-now", ctrl.SendNow)

	w := perform(router, http.MethodPost, "/send-now")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if runner.calls != 1 {
		t.Errorf("runner called %d times, want 1", runner.calls)
	}

	runner.err = errors.New("tick already in progress")
	w = perform(router, http.MethodPost, "/send-now")
	if w.Code != http.StatusConflict {
		t.Fatalf("overlap status = %d, want 409", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "SKIPPED_OVERLAP" {
		t.Errorf("status field = %q, want SKIPPED_OVERLAP", body["status"])
	}
}
