package analysis

import (
	"math"

	"market_signal_bot/models"
)

// Pattern names. The historical-accuracy and strength-weight tables in
// the scoring package are keyed on these.
const (
	PatternAccumulation     = "ACCUMULATION"
	PatternBreakout         = "BREAKOUT"
	PatternGoldenCross      = "GOLDEN_CROSS"
	PatternMACDBullishCross = "MACD_BULLISH_CROSS"
	PatternOversoldReversal = "OVERSOLD_REVERSAL"
	PatternRSIRecovery      = "RSI_RECOVERY"
	PatternSupportBounce    = "SUPPORT_BOUNCE"
	PatternVolumeSpike      = "VOLUME_SPIKE"
	PatternHigherLows       = "HIGHER_LOWS"
	PatternBollingerSqueeze = "BOLLINGER_SQUEEZE"
)

// CalculateFibonacciLevels returns the retracement levels of a range,
// from the low upward
func CalculateFibonacciLevels(high, low float64) []float64 {
	span := high - low
	if span <= 0 {
		return nil
	}
	ratios := []float64{0.236, 0.382, 0.5, 0.618, 0.786}
	levels := make([]float64, len(ratios))
	for i, r := range ratios {
		levels[i] = low + span*r
	}
	return levels
}

// CalculateVolumeRatio compares the latest volume to the mean of the
// preceding window (up to 20 points). Neutral 1.0 when there is no
// usable history.
func CalculateVolumeRatio(volumes []float64) float64 {
	if len(volumes) < 2 {
		return 1.0
	}

	start := len(volumes) - 21
	if start < 0 {
		start = 0
	}
	window := volumes[start : len(volumes)-1]

	mean := 0.0
	count := 0
	for _, v := range window {
		if v > 0 {
			mean += v
			count++
		}
	}
	if count == 0 {
		return 1.0
	}
	mean /= float64(count)

	current := volumes[len(volumes)-1]
	if mean == 0 || current <= 0 {
		return 1.0
	}
	return current / mean
}

// DetectPatterns runs every detector over one symbol's series and
// returns the hits with their local confidence in [0,1]
func DetectPatterns(closes, volumes []float64, snap models.Snapshot, ind models.IndicatorSet) []models.DetectedPattern {
	var found []models.DetectedPattern

	volRatio := CalculateVolumeRatio(volumes)

	if p, ok := detectAccumulation(ind, volRatio); ok {
		found = append(found, p)
	}
	if p, ok := detectBreakout(closes, volRatio); ok {
		found = append(found, p)
	}
	if p, ok := detectGoldenCross(closes); ok {
		found = append(found, p)
	}
	if ind.MACDState == models.MACDBullishCross {
		found = append(found, models.DetectedPattern{Name: PatternMACDBullishCross, Confidence: 0.7})
	}
	if p, ok := detectOversoldReversal(closes, ind); ok {
		found = append(found, p)
	}
	if p, ok := detectRSIRecovery(ind); ok {
		found = append(found, p)
	}
	if p, ok := detectSupportBounce(closes, snap, ind); ok {
		found = append(found, p)
	}
	if volRatio >= 2.0 {
		conf := math.Min(0.5+volRatio/10, 0.95)
		found = append(found, models.DetectedPattern{Name: PatternVolumeSpike, Confidence: conf})
	}
	if p, ok := detectHigherLows(closes); ok {
		found = append(found, p)
	}
	if p, ok := detectBollingerSqueeze(ind); ok {
		found = append(found, p)
	}

	return found
}

// detectAccumulation: quiet price inside the lower half of the channel
// while volume builds up
func detectAccumulation(ind models.IndicatorSet, volRatio float64) (models.DetectedPattern, bool) {
	if ind.ChannelPositionPct >= 45 || ind.VolatilityPct >= 3 || volRatio < 1.1 {
		return models.DetectedPattern{}, false
	}
	conf := 0.5 + math.Min((volRatio-1.1)/2, 0.3) + (45-ind.ChannelPositionPct)/450
	return models.DetectedPattern{Name: PatternAccumulation, Confidence: math.Min(conf, 0.95)}, true
}

// detectBreakout: close within 2% of the window high on elevated volume
func detectBreakout(closes []float64, volRatio float64) (models.DetectedPattern, bool) {
	if len(closes) < 10 || volRatio < 1.5 {
		return models.DetectedPattern{}, false
	}

	last := closes[len(closes)-1]
	high := closes[0]
	for _, c := range closes[:len(closes)-1] {
		if c > high {
			high = c
		}
	}
	if high <= 0 || last < high*0.98 {
		return models.DetectedPattern{}, false
	}
	conf := math.Min(0.55+(volRatio-1.5)/5, 0.9)
	return models.DetectedPattern{Name: PatternBreakout, Confidence: conf}, true
}

// detectGoldenCross: the short MA moved above the long MA on the latest bar
func detectGoldenCross(closes []float64) (models.DetectedPattern, bool) {
	if len(closes) < MALongPeriod+1 {
		return models.DetectedPattern{}, false
	}

	prev := closes[:len(closes)-1]
	nowShort, nowLong := CalculateMA(closes, MAShortPeriod), CalculateMA(closes, MALongPeriod)
	prevShort, prevLong := CalculateMA(prev, MAShortPeriod), CalculateMA(prev, MALongPeriod)

	if nowLong <= 0 || prevLong <= 0 {
		return models.DetectedPattern{}, false
	}
	if nowShort > nowLong && prevShort <= prevLong {
		return models.DetectedPattern{Name: PatternGoldenCross, Confidence: 0.75}, true
	}
	return models.DetectedPattern{}, false
}

// detectOversoldReversal: RSI deep and the latest bar turning up
func detectOversoldReversal(closes []float64, ind models.IndicatorSet) (models.DetectedPattern, bool) {
	if len(closes) < 2 || ind.RSI >= 35 {
		return models.DetectedPattern{}, false
	}
	if closes[len(closes)-1] <= closes[len(closes)-2] {
		return models.DetectedPattern{}, false
	}
	conf := math.Min(0.5+(35-ind.RSI)/50, 0.9)
	return models.DetectedPattern{Name: PatternOversoldReversal, Confidence: conf}, true
}

// detectRSIRecovery: the short RSI lifting clearly off the standard one
// out of the oversold zone
func detectRSIRecovery(ind models.IndicatorSet) (models.DetectedPattern, bool) {
	if ind.RSI >= 45 || ind.RSIShort <= ind.RSI+5 {
		return models.DetectedPattern{}, false
	}
	return models.DetectedPattern{Name: PatternRSIRecovery, Confidence: 0.6}, true
}

// detectSupportBounce: price turned up near the channel low or a
// fibonacci retracement of the 24h range
func detectSupportBounce(closes []float64, snap models.Snapshot, ind models.IndicatorSet) (models.DetectedPattern, bool) {
	if len(closes) < 2 || closes[len(closes)-1] <= closes[len(closes)-2] {
		return models.DetectedPattern{}, false
	}

	if ind.ChannelPositionPct < 25 {
		return models.DetectedPattern{Name: PatternSupportBounce, Confidence: 0.65}, true
	}
	for _, level := range CalculateFibonacciLevels(snap.High24h, snap.Low24h) {
		if level > 0 && math.Abs(snap.Price-level)/level < 0.01 {
			return models.DetectedPattern{Name: PatternSupportBounce, Confidence: 0.55}, true
		}
	}
	return models.DetectedPattern{}, false
}

// detectHigherLows: the minimum of each successive 5-bar block rising
func detectHigherLows(closes []float64) (models.DetectedPattern, bool) {
	if len(closes) < 15 {
		return models.DetectedPattern{}, false
	}

	n := len(closes)
	low1 := minOf(closes[n-15 : n-10])
	low2 := minOf(closes[n-10 : n-5])
	low3 := minOf(closes[n-5:])
	if low3 > low2 && low2 > low1 {
		return models.DetectedPattern{Name: PatternHigherLows, Confidence: 0.7}, true
	}
	return models.DetectedPattern{}, false
}

// detectBollingerSqueeze: compressed volatility around the band middle
func detectBollingerSqueeze(ind models.IndicatorSet) (models.DetectedPattern, bool) {
	if ind.VolatilityPct >= 1.5 || ind.BollingerPosition < 0.4 || ind.BollingerPosition > 0.6 {
		return models.DetectedPattern{}, false
	}
	return models.DetectedPattern{Name: PatternBollingerSqueeze, Confidence: 0.55}, true
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
