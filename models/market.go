package models

import "time"

// AssetClass distinguishes the two upstream venues
type AssetClass string

const (
	AssetCrypto AssetClass = "crypto"
	AssetEquity AssetClass = "equity"
)

// Snapshot is a normalized per-symbol market snapshot for one tick.
// Never persisted.
type Snapshot struct {
	Symbol        string     `json:"symbol"`
	AssetClass    AssetClass `json:"asset_class"`
	Price         float64    `json:"price"`
	ChangePct24h  float64    `json:"change_pct_24h"`
	Volume24h     float64    `json:"volume_24h"`
	High24h       float64    `json:"high_24h"`
	Low24h        float64    `json:"low_24h"`
	Bid           float64    `json:"bid,omitempty"`
	Ask           float64    `json:"ask,omitempty"`
	AsOf          time.Time  `json:"as_of"`
}

// TrendDirection classifies the moving-average trend
type TrendDirection string

const (
	TrendStrongBullish TrendDirection = "STRONG_BULLISH"
	TrendBullish       TrendDirection = "BULLISH"
	TrendNeutral       TrendDirection = "NEUTRAL"
	TrendBearish       TrendDirection = "BEARISH"
	TrendStrongBearish TrendDirection = "STRONG_BEARISH"
)

// VolumeStatus classifies current volume against its recent mean
type VolumeStatus string

const (
	VolumeHigh       VolumeStatus = "HIGH"
	VolumeIncreasing VolumeStatus = "INCREASING"
	VolumeNormal     VolumeStatus = "NORMAL"
	VolumeDecreasing VolumeStatus = "DECREASING"
	VolumeLow        VolumeStatus = "LOW"
)

// MACDState classifies the MACD histogram position and crossings
type MACDState string

const (
	MACDBullishCross MACDState = "BULLISH_CROSS"
	MACDBullish      MACDState = "BULLISH"
	MACDNeutral      MACDState = "NEUTRAL"
	MACDBearish      MACDState = "BEARISH"
	MACDBearishCross MACDState = "BEARISH_CROSS"
)

// IndicatorSet holds derived technical indicators for one symbol
type IndicatorSet struct {
	RSI                float64        `json:"rsi"`
	RSIShort           float64        `json:"rsi_short"`
	MACDHistogram      float64        `json:"macd_histogram"`
	MACDState          MACDState      `json:"macd_state"`
	BollingerPosition  float64        `json:"bollinger_position"`
	MARatio            float64        `json:"ma_ratio"`
	Trend              TrendDirection `json:"trend"`
	TrendStrength      float64        `json:"trend_strength"`
	MomentumScore      float64        `json:"momentum_score"`
	ChannelPositionPct float64        `json:"channel_position_pct"`
	VolatilityPct      float64        `json:"volatility_pct"`
}

// DetectedPattern is one chart pattern hit with its local confidence
type DetectedPattern struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Candidate is a scored symbol for one scan tick. Transient; a candidate
// becomes a persisted Signal only when it passes classification thresholds
// and the emission filters.
type Candidate struct {
	Snapshot      Snapshot          `json:"snapshot"`
	Indicators    IndicatorSet      `json:"indicators"`
	Patterns      []DetectedPattern `json:"patterns,omitempty"`
	PatternScore  float64           `json:"pattern_score"`
	TrendScore    float64           `json:"trend_score"`
	VolumeScore   float64           `json:"volume_score"`
	MomentumScore float64           `json:"momentum_score"`
	FinalScore    float64           `json:"final_score"`
	Class         SignalType        `json:"classification"`
	TargetPct     float64           `json:"target_pct,omitempty"`
	StopPct       float64           `json:"stop_pct,omitempty"`
	Eligible      bool              `json:"eligible"`
	Signals       []string          `json:"signals"`
	Warnings      []string          `json:"warnings,omitempty"`
}

// ScanResult is the published output of one completed scan tick
type ScanResult struct {
	GeneratedAt  time.Time   `json:"generated_at"`
	Rising       []Candidate `json:"rising"`
	Potential    []Candidate `json:"potential"`
	Equity       []Candidate `json:"equity"`
	CryptoCount  int         `json:"crypto_count"`
	EquityCount  int         `json:"equity_count"`
	NewSignalIDs []int64     `json:"new_signal_ids,omitempty"`
}
