package evaluation

import (
	"context"
	"log"
	"time"

	"market_signal_bot/models"
	"market_signal_bot/store"

	"github.com/shopspring/decimal"
)

// PriceFetcher is the single-symbol price lookup the evaluator drives
type PriceFetcher interface {
	FetchCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, bool)
}

// ClosedPosition describes one signal the evaluator just closed
type ClosedPosition struct {
	Signal    models.Signal
	Status    models.SignalStatus
	ResultPct decimal.Decimal
	Price     decimal.Decimal
}

// Evaluator resolves ACTIVE signals against target/stop/expiry on each
// evaluation tick. Check order is fixed: target, then stop, then expiry,
// with inclusive boundaries. Running it twice over the same prices is a
// no-op the second time.
type Evaluator struct {
	fetcher PriceFetcher
	signals *store.SignalStore
	horizon time.Duration
}

// NewEvaluator creates a position evaluator with the mode's horizon
func NewEvaluator(fetcher PriceFetcher, signals *store.SignalStore, horizon time.Duration) *Evaluator {
	return &Evaluator{fetcher: fetcher, signals: signals, horizon: horizon}
}

// EvaluateOpenPositions walks the ACTIVE set and closes every signal
// whose terminal condition is met. Symbols without a live price are left
// ACTIVE for the next tick.
func (e *Evaluator) EvaluateOpenPositions(ctx context.Context, now time.Time) []ClosedPosition {
	active := e.signals.ListActive()
	if len(active) == 0 {
		return nil
	}

	var closed []ClosedPosition
	for _, sig := range active {
		price, ok := e.fetcher.FetchCurrentPrice(ctx, sig.Symbol)
		if !ok {
			continue
		}

		status, done := e.resolve(sig, price, now)
		if !done {
			continue
		}

		changePct := price.Sub(sig.EntryPrice).
			Div(sig.EntryPrice).
			Mul(decimal.NewFromInt(100)).
			Round(2)

		if err := e.signals.Close(sig.ID, status, changePct, now); err != nil {
			log.Printf("Could not close signal %d (%s) as %s: %v", sig.ID, sig.Symbol, status, err)
			continue
		}
		log.Printf("Signal %d %s closed as %s at %s (%s%%)", sig.ID, sig.Symbol, status, price, changePct)
		closed = append(closed, ClosedPosition{Signal: sig, Status: status, ResultPct: changePct, Price: price})
	}
	return closed
}

// resolve applies the terminal rules to one signal
func (e *Evaluator) resolve(sig models.Signal, price decimal.Decimal, now time.Time) (models.SignalStatus, bool) {
	switch {
	case price.GreaterThanOrEqual(sig.TargetPrice):
		return models.StatusWin, true
	case price.LessThanOrEqual(sig.StopPrice):
		return models.StatusLoss, true
	case now.Sub(sig.IssuedAt) >= e.horizon:
		return models.StatusExpired, true
	default:
		return "", false
	}
}
