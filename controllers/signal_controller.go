package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"market_signal_bot/models"
	"market_signal_bot/services/evaluation"
	"market_signal_bot/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// activeSignalView is an ACTIVE signal enriched with a live price
type activeSignalView struct {
	models.Signal
	CurrentPrice  string `json:"current_price,omitempty"`
	UnrealizedPct string `json:"unrealized_pct,omitempty"`
}

// SignalController serves the persisted signal history and the rolling
// accuracy report
type SignalController struct {
	signals *store.SignalStore
	fetcher evaluation.PriceFetcher
}

// NewSignalController creates a signal controller
func NewSignalController(signals *store.SignalStore, fetcher evaluation.PriceFetcher) *SignalController {
	return &SignalController{signals: signals, fetcher: fetcher}
}

// GetActiveSignals returns current ACTIVE signals with a live price refresh
// GET /api/v1/signals/active
func (ctrl *SignalController) GetActiveSignals(c *gin.Context) {
	active := ctrl.signals.ListActive()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	views := make([]activeSignalView, 0, len(active))
	for _, sig := range active {
		view := activeSignalView{Signal: sig}
		if price, ok := ctrl.fetcher.FetchCurrentPrice(ctx, sig.Symbol); ok {
			view.CurrentPrice = price.String()
			change := price.Sub(sig.EntryPrice).Div(sig.EntryPrice).Mul(hundred).Round(2)
			view.UnrealizedPct = change.String()
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(views),
		"signals": views,
	})
}

// GetAccuracy returns the aggregated accuracy report
// GET /api/v1/signals/accuracy
func (ctrl *SignalController) GetAccuracy(c *gin.Context) {
	report := evaluation.BuildAccuracyReport(ctrl.signals.All())
	c.JSON(http.StatusOK, report)
}

// GetSignals returns the signal history with optional status filter
// GET /api/v1/signals?status=WIN&limit=50
func (ctrl *SignalController) GetSignals(c *gin.Context) {
	status := c.Query("status")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	all := ctrl.signals.All()
	filtered := make([]models.Signal, 0, len(all))
	// Newest first
	for i := len(all) - 1; i >= 0; i-- {
		if status != "" && string(all[i].Status) != status {
			continue
		}
		filtered = append(filtered, all[i])
		if len(filtered) == limit {
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(filtered),
		"signals": filtered,
	})
}
