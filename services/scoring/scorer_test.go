package scoring

import (
	"testing"

	"market_signal_bot/config"
	"market_signal_bot/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Mode:               config.ModeSwing,
		MinVolumeQuote:     1_000_000,
		MaxRSIEntry:        70,
		MaxChannelPosition: 85,
		PatternWeight:      0.40,
		TrendWeight:        0.25,
		VolumeWeight:       0.20,
		MomentumWeight:     0.15,
		StrongBuyThreshold: 80,
		BuyThreshold:       65,
		PotentialThreshold: 50,
	}
}

func TestPatternSubscore(t *testing.T) {
	// accuracy 0.70 * weight 1.70 * confidence 0.8 * 100 = 95.2, capped 95
	patterns := []models.DetectedPattern{{Name: "GOLDEN_CROSS", Confidence: 0.8}}
	if got := PatternSubscore(patterns); got != 95 {
		t.Errorf("pattern subscore = %v, want capped 95", got)
	}

	if got := PatternSubscore(nil); got != 40 {
		t.Errorf("pattern subscore with no patterns = %v, want default 40", got)
	}

	// Unknown pattern falls back to 0.50 accuracy and 1.00 weight
	unknown := []models.DetectedPattern{{Name: "SOMETHING_NEW", Confidence: 1.0}}
	if got := PatternSubscore(unknown); got != 50 {
		t.Errorf("unknown pattern subscore = %v, want 50", got)
	}
}

func TestTrendSubscore(t *testing.T) {
	tests := []struct {
		name     string
		dir      models.TrendDirection
		strength float64
		want     float64
	}{
		{"strong bullish full strength", models.TrendStrongBullish, 1.0, 85},
		{"strong bullish half strength", models.TrendStrongBullish, 0.5, 67.5},
		{"zero strength is neutral", models.TrendStrongBearish, 0.0, 50},
		{"strong bearish full strength", models.TrendStrongBearish, 1.0, 15},
		{"neutral any strength", models.TrendNeutral, 0.8, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrendSubscore(tt.dir, tt.strength); got != tt.want {
				t.Errorf("TrendSubscore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolumeStatusAndSubscore(t *testing.T) {
	tests := []struct {
		ratio float64
		want  models.VolumeStatus
		score float64
	}{
		{2.0, models.VolumeHigh, 80},
		{1.2, models.VolumeIncreasing, 70},
		{1.0, models.VolumeNormal, 50},
		{0.7, models.VolumeDecreasing, 30},
		{0.3, models.VolumeLow, 20},
	}
	for _, tt := range tests {
		status := VolumeStatusOf(tt.ratio)
		if status != tt.want {
			t.Errorf("VolumeStatusOf(%v) = %v, want %v", tt.ratio, status, tt.want)
		}
		if got := VolumeSubscore(status); got != tt.score {
			t.Errorf("VolumeSubscore(%v) = %v, want %v", status, got, tt.score)
		}
	}
}

func TestMomentumSubscore(t *testing.T) {
	tests := []struct {
		name string
		ind  models.IndicatorSet
		want float64
	}{
		{"oversold rsi + bullish cross", models.IndicatorSet{RSI: 25, MACDState: models.MACDBullishCross}, 0.6*80 + 0.4*80},
		{"overbought rsi + bearish cross", models.IndicatorSet{RSI: 75, MACDState: models.MACDBearishCross}, 0.6*20 + 0.4*20},
		{"neutral everything", models.IndicatorSet{RSI: 50, MACDState: models.MACDNeutral}, 50},
		{"rsi outside zones stays neutral", models.IndicatorSet{RSI: 90, MACDState: models.MACDBullish}, 0.6*50 + 0.4*70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MomentumSubscore(tt.ind); got != tt.want {
				t.Errorf("MomentumSubscore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_FinalScoreBounds(t *testing.T) {
	s := NewScorer(testConfig())
	snap := models.Snapshot{
		Symbol: "BTC_TRY", AssetClass: models.AssetCrypto,
		Price: 105, ChangePct24h: 3, Volume24h: 2_000_000,
		High24h: 110, Low24h: 100,
	}

	closes := []float64{100, 101, 99, 102, 103, 101, 104, 105}
	volumes := []float64{100, 120, 110, 130, 140, 120, 150, 160}

	c := s.Score(snap, closes, volumes)
	if c.FinalScore < 0 || c.FinalScore > 100 {
		t.Fatalf("final score = %v, want [0,100]", c.FinalScore)
	}

	// Rounding to one decimal must be stable
	again := s.Score(snap, closes, volumes)
	if c.FinalScore != again.FinalScore {
		t.Errorf("scoring not deterministic: %v vs %v", c.FinalScore, again.FinalScore)
	}
}

func TestScore_OverboughtFilterRejects(t *testing.T) {
	s := NewScorer(testConfig())
	snap := models.Snapshot{
		Symbol: "W_TRY", AssetClass: models.AssetCrypto,
		Price: 105, ChangePct24h: 5, Volume24h: 5_000_000,
		High24h: 110, Low24h: 100,
	}

	// A long monotonic rally drives RSI far above the 70 entry cap
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	c := s.Score(snap, closes, nil)
	if c.Indicators.RSI <= 70 {
		t.Fatalf("test series RSI = %v, expected above 70", c.Indicators.RSI)
	}
	if c.Eligible {
		t.Error("overbought candidate marked eligible")
	}
	if len(c.Warnings) == 0 {
		t.Error("overbought candidate carries no warning")
	}
}

func TestScore_FilterMatrix(t *testing.T) {
	s := NewScorer(testConfig())
	base := models.Snapshot{
		Symbol: "X_TRY", AssetClass: models.AssetCrypto,
		Price: 103, ChangePct24h: 3, Volume24h: 2_000_000,
		High24h: 110, Low24h: 100,
	}

	tests := []struct {
		name     string
		mutate   func(*models.Snapshot)
		eligible bool
	}{
		{"all filters pass", func(s *models.Snapshot) {}, true},
		{"pump zone", func(s *models.Snapshot) { s.ChangePct24h = 30 }, false},
		{"dump zone", func(s *models.Snapshot) { s.ChangePct24h = -12 }, false},
		{"pump boundary is extreme", func(s *models.Snapshot) { s.ChangePct24h = 25 }, false},
		{"dump boundary is extreme", func(s *models.Snapshot) { s.ChangePct24h = -10 }, false},
		{"just inside pump boundary", func(s *models.Snapshot) { s.ChangePct24h = 24.9 }, true},
		{"just inside dump boundary", func(s *models.Snapshot) { s.ChangePct24h = -9.9 }, true},
		{"illiquid", func(s *models.Snapshot) { s.Volume24h = 500_000 }, false},
		{"at channel top", func(s *models.Snapshot) { s.Price = 109.9 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := base
			tt.mutate(&snap)
			c := s.Score(snap, nil, nil)
			if c.Eligible != tt.eligible {
				t.Errorf("eligible = %v, want %v (warnings: %v)", c.Eligible, tt.eligible, c.Warnings)
			}
		})
	}
}
