package routes

import (
	"market_signal_bot/controllers"
	"market_signal_bot/services/evaluation"
	"market_signal_bot/store"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all API routes
func SetupRoutes(
	router *gin.Engine,
	cache *store.ScanCache,
	signals *store.SignalStore,
	fetcher evaluation.PriceFetcher,
	runner controllers.TickRunner,
) {
	analysisController := controllers.NewAnalysisController(cache)
	signalController := controllers.NewSignalController(signals, fetcher)
	scanController := controllers.NewScanController(runner)

	// API v1 group
	api := router.Group("/api/v1")
	{
		analysis := api.Group("/analysis")
		{
			analysis.GET("", analysisController.GetAnalysis)
			analysis.GET("/:symbol", analysisController.GetSymbolAnalysis)
		}

		sigs := api.Group("/signals")
		{
			sigs.GET("", signalController.GetSignals)
			sigs.GET("/active", signalController.GetActiveSignals)
			sigs.GET("/accuracy", signalController.GetAccuracy)
		}

		api.POST("/send-now", scanController.SendNow)
	}
}
