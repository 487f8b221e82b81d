package controllers

import (
	"net/http"
	"strings"

	"market_signal_bot/models"
	"market_signal_bot/store"

	"github.com/gin-gonic/gin"
)

// AnalysisController serves the cached output of the last completed
// scan. It never triggers a scan.
type AnalysisController struct {
	cache *store.ScanCache
}

// NewAnalysisController creates an analysis controller
func NewAnalysisController(cache *store.ScanCache) *AnalysisController {
	return &AnalysisController{cache: cache}
}

// GetAnalysis returns the last scan result
// GET /api/v1/analysis
func (ctrl *AnalysisController) GetAnalysis(c *gin.Context) {
	res := ctrl.cache.Get()
	if res == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  "pending",
			"message": "no completed scan yet",
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetSymbolAnalysis returns the last-scan candidate for one symbol
// GET /api/v1/analysis/:symbol
func (ctrl *AnalysisController) GetSymbolAnalysis(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	res := ctrl.cache.Get()
	if res == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed scan yet"})
		return
	}

	for _, list := range [][]models.Candidate{res.Rising, res.Potential, res.Equity} {
		for _, cand := range list {
			if strings.EqualFold(cand.Snapshot.Symbol, symbol) {
				c.JSON(http.StatusOK, cand)
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "symbol not present in last scan"})
}
