package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TickRunner triggers one scan tick through the scheduler's overlap guard
type TickRunner interface {
	RunScanTick() error
}

// ScanController exposes the manual scan trigger
type ScanController struct {
	runner TickRunner
}

// NewScanController creates a scan controller
func NewScanController(runner TickRunner) *ScanController {
	return &ScanController{runner: runner}
}

// SendNow forces an immediate scan tick. A scan already in progress is
// reported as a conflict, not queued.
// POST /api/v1/send-now
func (ctrl *ScanController) SendNow(c *gin.Context) {
	if err := ctrl.runner.RunScanTick(); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"status": "SKIPPED_OVERLAP",
			"error":  "a scan tick is already running",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}
