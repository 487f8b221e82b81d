package evaluation

import (
	"math"
	"time"

	"market_signal_bot/models"
)

// BuildAccuracyReport aggregates win rate, average win/loss and profit
// factor over the closed portion of the signal history. EXPIRED counts
// toward the win-rate denominator but is reported separately.
func BuildAccuracyReport(signals []models.Signal) models.AccuracyReport {
	report := models.AccuracyReport{
		TotalSignals: len(signals),
		ByType:       make(map[models.SignalType]*models.TypeAccuracy),
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	winSum, lossSum, realized := 0.0, 0.0, 0.0

	for _, sig := range signals {
		bt, ok := report.ByType[sig.SignalType]
		if !ok {
			bt = &models.TypeAccuracy{}
			report.ByType[sig.SignalType] = bt
		}

		switch sig.Status {
		case models.StatusActive:
			report.Active++
			bt.Active++
			continue
		case models.StatusWin:
			report.Wins++
			bt.Wins++
		case models.StatusLoss:
			report.Losses++
			bt.Losses++
		case models.StatusExpired:
			report.Expired++
			bt.Expired++
		}

		if sig.ResultPct != nil {
			pct := sig.ResultPct.InexactFloat64()
			realized += pct
			switch sig.Status {
			case models.StatusWin:
				winSum += pct
			case models.StatusLoss:
				lossSum += pct
			}
		}
	}

	closed := report.Wins + report.Losses + report.Expired
	if closed > 0 {
		report.WinRate = round2(float64(report.Wins) / float64(closed) * 100)
	}

	// Profit factor uses the unrounded means so rounding the averages for
	// display does not skew the ratio
	avgWin, avgLoss := 0.0, 0.0
	if report.Wins > 0 {
		avgWin = winSum / float64(report.Wins)
		report.AvgWinPct = round2(avgWin)
	}
	if report.Losses > 0 {
		avgLoss = lossSum / float64(report.Losses)
		report.AvgLossPct = round2(avgLoss)
	}
	if avgLoss != 0 {
		report.ProfitFactor = round2(math.Abs(avgWin / avgLoss))
	}
	report.TotalRealizedPct = round2(realized)

	for _, bt := range report.ByType {
		typeClosed := bt.Wins + bt.Losses + bt.Expired
		if typeClosed > 0 {
			bt.WinRate = round2(float64(bt.Wins) / float64(typeClosed) * 100)
		}
	}
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
