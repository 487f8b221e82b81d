package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignalType represents the type of trading signal
type SignalType string

const (
	SignalStrongBuy  SignalType = "STRONG_BUY"
	SignalBuy        SignalType = "BUY"
	SignalPotential  SignalType = "POTENTIAL"
	SignalHold       SignalType = "HOLD"
	SignalSell       SignalType = "SELL"
	SignalStrongSell SignalType = "STRONG_SELL"
)

// SignalStatus represents the lifecycle state of a persisted signal
type SignalStatus string

const (
	StatusActive  SignalStatus = "ACTIVE"
	StatusWin     SignalStatus = "WIN"
	StatusLoss    SignalStatus = "LOSS"
	StatusExpired SignalStatus = "EXPIRED"
)

// IsTerminal reports whether the status is a closed state
func (s SignalStatus) IsTerminal() bool {
	return s == StatusWin || s == StatusLoss || s == StatusExpired
}

// Signal is a persisted long-direction entry recommendation.
// Records are immutable after close; only the position evaluator
// transitions them out of ACTIVE.
type Signal struct {
	ID          int64            `json:"id"`
	Symbol      string           `json:"symbol"`
	SignalType  SignalType       `json:"signal_type"`
	EntryPrice  decimal.Decimal  `json:"entry_price"`
	TargetPct   decimal.Decimal  `json:"target_pct"`
	StopPct     decimal.Decimal  `json:"stop_pct"`
	TargetPrice decimal.Decimal  `json:"target_price"`
	StopPrice   decimal.Decimal  `json:"stop_price"`
	IssuedAt    time.Time        `json:"issued_at"`
	Status      SignalStatus     `json:"status"`
	ResultPct   *decimal.Decimal `json:"result_pct"`
	ClosedAt    *time.Time       `json:"closed_at"`
}

// NewSignal builds an ACTIVE signal with target and stop prices derived
// from the entry price. targetPct is positive, stopPct negative.
func NewSignal(symbol string, signalType SignalType, entry decimal.Decimal, targetPct, stopPct float64, issuedAt time.Time) Signal {
	hundred := decimal.NewFromInt(100)
	tp := decimal.NewFromFloat(targetPct)
	sp := decimal.NewFromFloat(stopPct)

	return Signal{
		Symbol:      symbol,
		SignalType:  signalType,
		EntryPrice:  entry,
		TargetPct:   tp,
		StopPct:     sp,
		TargetPrice: entry.Mul(decimal.NewFromInt(1).Add(tp.Div(hundred))),
		StopPrice:   entry.Mul(decimal.NewFromInt(1).Add(sp.Div(hundred))),
		IssuedAt:    issuedAt,
		Status:      StatusActive,
	}
}

// TypeAccuracy is the per-signal-type slice of the accuracy report
type TypeAccuracy struct {
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Expired int     `json:"expired"`
	Active  int     `json:"active"`
	WinRate float64 `json:"win_rate"`
}

// AccuracyReport aggregates realized outcomes over all closed signals
type AccuracyReport struct {
	TotalSignals     int                          `json:"total_signals"`
	Active           int                          `json:"active"`
	Wins             int                          `json:"wins"`
	Losses           int                          `json:"losses"`
	Expired          int                          `json:"expired"`
	WinRate          float64                      `json:"win_rate"`
	AvgWinPct        float64                      `json:"avg_win_pct"`
	AvgLossPct       float64                      `json:"avg_loss_pct"`
	ProfitFactor     float64                      `json:"profit_factor"`
	TotalRealizedPct float64                      `json:"total_realized_pct"`
	ByType           map[SignalType]*TypeAccuracy `json:"by_type"`
	GeneratedAt      string                       `json:"generated_at"`
}
