package scoring

import (
	"math"
	"time"

	"market_signal_bot/config"
	"market_signal_bot/models"
	"market_signal_bot/services/analysis"
)

// Classifier maps a candidate's final score to a signal type and
// attaches target/stop percentages. Only STRONG_BUY, BUY and POTENTIAL
// become persisted signals; HOLD is display-only.
type Classifier struct {
	mode               string
	strongBuyThreshold float64
	buyThreshold       float64
	potentialThreshold float64
}

// NewClassifier creates a signal classifier for the configured mode
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{
		mode:               cfg.Mode,
		strongBuyThreshold: cfg.StrongBuyThreshold,
		buyThreshold:       cfg.BuyThreshold,
		potentialThreshold: cfg.PotentialThreshold,
	}
}

// Classify sets Class, TargetPct and StopPct on the candidate.
// Thresholds are inclusive: a score of exactly 80 is STRONG_BUY.
func (cl *Classifier) Classify(c *models.Candidate) {
	switch {
	case c.FinalScore >= cl.strongBuyThreshold:
		c.Class = models.SignalStrongBuy
		c.TargetPct, c.StopPct = cl.targets(models.SignalStrongBuy, c)
	case c.FinalScore >= cl.buyThreshold:
		c.Class = models.SignalBuy
		c.TargetPct, c.StopPct = cl.targets(models.SignalBuy, c)
	case c.FinalScore >= cl.potentialThreshold && hasAccumulationSignal(c):
		c.Class = models.SignalPotential
		c.TargetPct, c.StopPct = cl.targets(models.SignalPotential, c)
	default:
		c.Class = models.SignalHold
	}
}

func (cl *Classifier) targets(t models.SignalType, c *models.Candidate) (target, stop float64) {
	if cl.mode == config.ModeScalp {
		switch t {
		case models.SignalStrongBuy:
			return 4.5, -2.5
		case models.SignalBuy:
			return 3.5, -2.0
		default:
			return 2.5, -1.5
		}
	}

	switch t {
	case models.SignalStrongBuy:
		return 25, -5
	case models.SignalBuy:
		return 12, -5
	default:
		return math.Min(estimatedPotential(c.Snapshot), 20), -7
	}
}

// Horizon is the maximum signal lifetime before forced expiry
func (cl *Classifier) Horizon() time.Duration {
	if cl.mode == config.ModeScalp {
		return 30 * time.Minute
	}
	return 7 * 24 * time.Hour
}

// hasAccumulationSignal gates POTENTIAL: a mid-score candidate needs at
// least one accumulation or breakout style pattern behind it
func hasAccumulationSignal(c *models.Candidate) bool {
	for _, p := range c.Patterns {
		switch p.Name {
		case analysis.PatternAccumulation, analysis.PatternBreakout,
			analysis.PatternHigherLows, analysis.PatternBollingerSqueeze:
			return true
		}
	}
	return false
}

// estimatedPotential is the headroom to the 24h high, floored so a
// POTENTIAL target never collapses to zero at the top of the channel
func estimatedPotential(snap models.Snapshot) float64 {
	if snap.Price <= 0 {
		return 5
	}
	headroom := (snap.High24h - snap.Price) / snap.Price * 100
	return math.Max(headroom, 5)
}
