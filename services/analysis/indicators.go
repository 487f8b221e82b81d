package analysis

import (
	"math"

	"market_signal_bot/models"
)

// Indicator kernel: pure functions over a chronological close series
// (oldest first). Every function has a minimum window; below it the
// defined neutral value is returned instead of an error (RSI 50, MACD 0,
// bollinger position 0.5, momentum 0).

const (
	RSIPeriod      = 14
	RSIShortPeriod = 7
	MACDFast       = 12
	MACDSlow       = 26
	MACDSignal     = 9
	BollingerLen   = 20
	MAShortPeriod  = 10
	MALongPeriod   = 30
	VolatilityLen  = 20
)

// CalculateMA calculates Simple Moving Average over the last period closes
func CalculateMA(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return 0
	}
	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period)
}

// CalculateEMA calculates Exponential Moving Average seeded with the SMA
// of the first period closes
func CalculateEMA(closes []float64, period int) float64 {
	s := emaSeries(closes, period)
	if s == nil {
		return 0
	}
	return s[len(s)-1]
}

// emaSeries returns the EMA series aligned with closes; entries before
// the seed index are zero. Returns nil below the minimum window.
func emaSeries(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}
	out := make([]float64, len(closes))

	seed := 0.0
	for _, c := range closes[:period] {
		seed += c
	}
	out[period-1] = seed / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(closes); i++ {
		out[i] = (closes[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

// CalculateRSI calculates the Wilder-smoothed Relative Strength Index.
// Returns the neutral 50 below the minimum window of period+1 closes.
func CalculateRSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50
	}

	gains, losses := 0.0, 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	// Wilder smoothing over the remaining deltas
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACDResult holds the MACD line, signal line and the last two
// histogram values (the previous one drives cross detection)
type MACDResult struct {
	MACD          float64
	Signal        float64
	Histogram     float64
	PrevHistogram float64
}

// CalculateMACD calculates MACD(12,26,9). Below the minimum window all
// fields are the neutral 0.
func CalculateMACD(closes []float64) MACDResult {
	if len(closes) < MACDSlow+MACDSignal {
		return MACDResult{}
	}

	fast := emaSeries(closes, MACDFast)
	slow := emaSeries(closes, MACDSlow)

	// MACD line exists from the slow seed onward
	macdLine := make([]float64, 0, len(closes)-MACDSlow+1)
	for i := MACDSlow - 1; i < len(closes); i++ {
		macdLine = append(macdLine, fast[i]-slow[i])
	}

	signalSeries := emaSeries(macdLine, MACDSignal)
	if signalSeries == nil {
		return MACDResult{}
	}

	last := len(macdLine) - 1
	res := MACDResult{
		MACD:      macdLine[last],
		Signal:    signalSeries[last],
		Histogram: macdLine[last] - signalSeries[last],
	}
	if last >= MACDSignal {
		res.PrevHistogram = macdLine[last-1] - signalSeries[last-1]
	}
	return res
}

// MACDStateOf classifies the histogram and its crossing direction
func MACDStateOf(r MACDResult) models.MACDState {
	switch {
	case r.Histogram > 0 && r.PrevHistogram <= 0:
		return models.MACDBullishCross
	case r.Histogram < 0 && r.PrevHistogram >= 0:
		return models.MACDBearishCross
	case r.Histogram > 0:
		return models.MACDBullish
	case r.Histogram < 0:
		return models.MACDBearish
	default:
		return models.MACDNeutral
	}
}

// CalculateBollingerPosition returns the close position inside the
// 20-period 2-sigma band, clamped to [0,1]. Neutral 0.5 below the
// window or on zero deviation.
func CalculateBollingerPosition(closes []float64) float64 {
	if len(closes) < BollingerLen {
		return 0.5
	}

	window := closes[len(closes)-BollingerLen:]
	mean := 0.0
	for _, c := range window {
		mean += c
	}
	mean /= float64(BollingerLen)

	variance := 0.0
	for _, c := range window {
		variance += (c - mean) * (c - mean)
	}
	stdDev := math.Sqrt(variance / float64(BollingerLen))
	if stdDev == 0 {
		return 0.5
	}

	pos := (closes[len(closes)-1] - (mean - 2*stdDev)) / (4 * stdDev)
	return clamp(pos, 0, 1)
}

// CalculateMomentumScore is the weighted sum 3*d1 + 2*d3 + d5 of the
// percentage changes over the last 1, 3 and 5 steps, clamped to [-10,10]
func CalculateMomentumScore(closes []float64) float64 {
	if len(closes) < 6 {
		return 0
	}
	last := len(closes) - 1
	score := 3*pctChange(closes[last-1], closes[last]) +
		2*pctChange(closes[last-3], closes[last]) +
		pctChange(closes[last-5], closes[last])
	return clamp(score, -10, 10)
}

// CalculateChannelPosition returns where price sits inside the 24h
// range, as a percentage. Neutral 50 on a flat range.
func CalculateChannelPosition(price, high, low float64) float64 {
	if high <= low {
		return 50
	}
	return clamp((price-low)/(high-low)*100, 0, 100)
}

// CalculateVolatility is the standard deviation of the last 20
// bar-to-bar percentage changes
func CalculateVolatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}

	start := len(closes) - VolatilityLen - 1
	if start < 0 {
		start = 0
	}
	var changes []float64
	for i := start + 1; i < len(closes); i++ {
		changes = append(changes, pctChange(closes[i-1], closes[i]))
	}
	if len(changes) == 0 {
		return 0
	}

	mean := 0.0
	for _, c := range changes {
		mean += c
	}
	mean /= float64(len(changes))

	variance := 0.0
	for _, c := range changes {
		variance += (c - mean) * (c - mean)
	}
	return math.Sqrt(variance / float64(len(changes)))
}

// TrendOf classifies the short/long MA ratio into a direction with a
// strength in [0,1]
func TrendOf(ratio float64) (models.TrendDirection, float64) {
	strength := clamp(math.Abs(ratio-1)*20, 0, 1)
	switch {
	case ratio >= 1.03:
		return models.TrendStrongBullish, strength
	case ratio >= 1.01:
		return models.TrendBullish, strength
	case ratio > 0.99:
		return models.TrendNeutral, strength
	case ratio > 0.97:
		return models.TrendBearish, strength
	default:
		return models.TrendStrongBearish, strength
	}
}

// ComputeIndicatorSet derives the full indicator set for one symbol from
// its close series and current snapshot
func ComputeIndicatorSet(closes []float64, snap models.Snapshot) models.IndicatorSet {
	macd := CalculateMACD(closes)

	maShort := CalculateMA(closes, MAShortPeriod)
	maLong := CalculateMA(closes, MALongPeriod)
	ratio := 1.0
	if maShort > 0 && maLong > 0 {
		ratio = maShort / maLong
	}
	trend, strength := TrendOf(ratio)

	return models.IndicatorSet{
		RSI:                CalculateRSI(closes, RSIPeriod),
		RSIShort:           CalculateRSI(closes, RSIShortPeriod),
		MACDHistogram:      macd.Histogram,
		MACDState:          MACDStateOf(macd),
		BollingerPosition:  CalculateBollingerPosition(closes),
		MARatio:            ratio,
		Trend:              trend,
		TrendStrength:      strength,
		MomentumScore:      CalculateMomentumScore(closes),
		ChannelPositionPct: CalculateChannelPosition(snap.Price, snap.High24h, snap.Low24h),
		VolatilityPct:      CalculateVolatility(closes),
	}
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
