package scoring

import (
	"fmt"
	"math"

	"market_signal_bot/config"
	"market_signal_bot/models"
	"market_signal_bot/services/analysis"
)

// Scorer produces a composite 0..100 score per symbol from four weighted
// factors: pattern, trend, volume, momentum. The weight sum is validated
// to 1.0 at startup.
type Scorer struct {
	cfg *config.Config
}

// NewScorer creates a candidate scorer
func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score builds a scored candidate for one symbol. closes and volumes are
// the chronological history series; both may be short during warm-up.
func (s *Scorer) Score(snap models.Snapshot, closes, volumes []float64) models.Candidate {
	ind := analysis.ComputeIndicatorSet(closes, snap)
	patterns := analysis.DetectPatterns(closes, volumes, snap, ind)
	volRatio := analysis.CalculateVolumeRatio(volumes)

	c := models.Candidate{
		Snapshot:      snap,
		Indicators:    ind,
		Patterns:      patterns,
		PatternScore:  PatternSubscore(patterns),
		TrendScore:    TrendSubscore(ind.Trend, ind.TrendStrength),
		VolumeScore:   VolumeSubscore(VolumeStatusOf(volRatio)),
		MomentumScore: MomentumSubscore(ind),
	}

	final := s.cfg.PatternWeight*c.PatternScore +
		s.cfg.TrendWeight*c.TrendScore +
		s.cfg.VolumeWeight*c.VolumeScore +
		s.cfg.MomentumWeight*c.MomentumScore
	c.FinalScore = round1(clampScore(final))

	c.Signals = buildReasons(patterns, ind)
	c.Warnings, c.Eligible = s.applyFilters(snap, ind)

	return c
}

// PatternSubscore averages historical_accuracy * strength_weight *
// local_confidence * 100 over the detected patterns, each occurrence
// capped at 95. No patterns yields the neutral 40.
func PatternSubscore(patterns []models.DetectedPattern) float64 {
	if len(patterns) == 0 {
		return 40
	}

	sum := 0.0
	for _, p := range patterns {
		score := accuracyOf(p.Name) * strengthOf(p.Name) * p.Confidence * 100
		if score > 95 {
			score = 95
		}
		sum += score
	}
	return sum / float64(len(patterns))
}

// TrendSubscore interpolates the direction base toward neutral 50 by the
// trend strength
func TrendSubscore(dir models.TrendDirection, strength float64) float64 {
	base := 50.0
	switch dir {
	case models.TrendStrongBullish:
		base = 85
	case models.TrendBullish:
		base = 70
	case models.TrendNeutral:
		base = 50
	case models.TrendBearish:
		base = 30
	case models.TrendStrongBearish:
		base = 15
	}
	strength = math.Max(0, math.Min(1, strength))
	return base*strength + 50*(1-strength)
}

// VolumeStatusOf maps the current-vs-mean volume ratio to a status
func VolumeStatusOf(ratio float64) models.VolumeStatus {
	switch {
	case ratio >= 1.5:
		return models.VolumeHigh
	case ratio >= 1.1:
		return models.VolumeIncreasing
	case ratio >= 0.9:
		return models.VolumeNormal
	case ratio >= 0.5:
		return models.VolumeDecreasing
	default:
		return models.VolumeLow
	}
}

// VolumeSubscore is the piecewise status map
func VolumeSubscore(status models.VolumeStatus) float64 {
	switch status {
	case models.VolumeHigh:
		return 80
	case models.VolumeIncreasing:
		return 70
	case models.VolumeDecreasing:
		return 30
	case models.VolumeLow:
		return 20
	default:
		return 50
	}
}

// MomentumSubscore blends the RSI zone component (60%) with the MACD
// state component (40%)
func MomentumSubscore(ind models.IndicatorSet) float64 {
	rsiComponent := 50.0
	switch {
	case ind.RSI >= 20 && ind.RSI <= 30:
		rsiComponent = 80
	case ind.RSI >= 70 && ind.RSI <= 80:
		rsiComponent = 20
	}

	macdComponent := 50.0
	switch ind.MACDState {
	case models.MACDBullishCross:
		macdComponent = 80
	case models.MACDBullish:
		macdComponent = 70
	case models.MACDBearish:
		macdComponent = 30
	case models.MACDBearishCross:
		macdComponent = 20
	}

	return 0.6*rsiComponent + 0.4*macdComponent
}

// applyFilters runs the emission filters. A failing candidate keeps its
// score and stays visible in scan output, but is never persisted as a
// signal.
func (s *Scorer) applyFilters(snap models.Snapshot, ind models.IndicatorSet) ([]string, bool) {
	var warnings []string

	if ind.RSI > s.cfg.MaxRSIEntry {
		warnings = append(warnings, fmt.Sprintf("RSI yüksek (%.1f)", ind.RSI))
	}
	if ind.ChannelPositionPct > s.cfg.MaxChannelPosition {
		warnings = append(warnings, fmt.Sprintf("24s tepesine yakın (%%%.0f)", ind.ChannelPositionPct))
	}
	// Safe band is the open interval: exactly -10 or +25 counts as extreme
	if snap.ChangePct24h <= -10 || snap.ChangePct24h >= 25 {
		warnings = append(warnings, fmt.Sprintf("Aşırı hareket bölgesi (%%%.1f)", snap.ChangePct24h))
	}
	if snap.Volume24h < s.cfg.MinVolumeQuote {
		warnings = append(warnings, "Hacim likidite eşiğinin altında")
	}

	return warnings, len(warnings) == 0
}

// buildReasons produces the short human-readable reason strings shown in
// notifications
func buildReasons(patterns []models.DetectedPattern, ind models.IndicatorSet) []string {
	var reasons []string
	for _, p := range patterns {
		reasons = append(reasons, patternLabel(p.Name))
	}
	switch ind.Trend {
	case models.TrendStrongBullish:
		reasons = append(reasons, "Güçlü yükseliş trendi")
	case models.TrendBullish:
		reasons = append(reasons, "Yükseliş trendi")
	}
	if ind.MACDState == models.MACDBullish {
		reasons = append(reasons, "MACD pozitif")
	}
	if ind.RSI >= 20 && ind.RSI <= 30 {
		reasons = append(reasons, "RSI aşırı satım bölgesinde")
	}
	return reasons
}

func patternLabel(name string) string {
	switch name {
	case analysis.PatternAccumulation:
		return "Toplama (akümülasyon)"
	case analysis.PatternBreakout:
		return "Direnç kırılımı"
	case analysis.PatternGoldenCross:
		return "Golden cross"
	case analysis.PatternMACDBullishCross:
		return "MACD al kesişimi"
	case analysis.PatternOversoldReversal:
		return "Aşırı satımdan dönüş"
	case analysis.PatternRSIRecovery:
		return "RSI toparlanması"
	case analysis.PatternSupportBounce:
		return "Destekten sekme"
	case analysis.PatternVolumeSpike:
		return "Hacim patlaması"
	case analysis.PatternHigherLows:
		return "Yükselen dipler"
	case analysis.PatternBollingerSqueeze:
		return "Bollinger sıkışması"
	default:
		return name
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
