package scheduler

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync/atomic"
	"time"

	"market_signal_bot/config"
	"market_signal_bot/models"
	"market_signal_bot/services/evaluation"
	"market_signal_bot/services/marketdata"
	"market_signal_bot/services/notify"
	"market_signal_bot/services/scoring"
	"market_signal_bot/store"

	"github.com/go-co-op/gocron"
	"github.com/shopspring/decimal"
)

// ErrTickInProgress reports that the overlap guard dropped a tick
var ErrTickInProgress = errors.New("tick already in progress")

// Scheduler owns the two recurring jobs and every pipeline component.
// No component is reachable through package-level state; everything
// lives on this struct.
type Scheduler struct {
	cron       *gocron.Scheduler
	cfg        *config.Config
	fetcher    *marketdata.Fetcher
	history    *marketdata.History
	scorer     *scoring.Scorer
	classifier *scoring.Classifier
	signals    *store.SignalStore
	cache      *store.ScanCache
	evaluator  *evaluation.Evaluator
	notifier   *notify.Notifier

	scanRunning int32
	evalRunning int32
}

// NewScheduler wires the pipeline components into a scheduler instance
func NewScheduler(
	cfg *config.Config,
	fetcher *marketdata.Fetcher,
	history *marketdata.History,
	scorer *scoring.Scorer,
	classifier *scoring.Classifier,
	signals *store.SignalStore,
	cache *store.ScanCache,
	evaluator *evaluation.Evaluator,
	notifier *notify.Notifier,
) *Scheduler {
	return &Scheduler{
		cron:       gocron.NewScheduler(time.UTC),
		cfg:        cfg,
		fetcher:    fetcher,
		history:    history,
		scorer:     scorer,
		classifier: classifier,
		signals:    signals,
		cache:      cache,
		evaluator:  evaluator,
		notifier:   notifier,
	}
}

// Start registers both jobs and starts the scheduler. The scan job runs
// once immediately before its interval begins.
func (s *Scheduler) Start() {
	log.Println("Starting scheduler...")

	// No gocron SingletonMode here: it queues an overlapping fire and runs
	// it late instead of dropping it. tryRun drops.
	_, err := s.cron.Every(s.cfg.ScanIntervalMinutes).Minutes().
		StartImmediately().
		Do(func() {
			if err := s.RunScanTick(); err != nil && !errors.Is(err, ErrTickInProgress) {
				log.Printf("Scan tick failed: %v", err)
			}
		})
	if err != nil {
		log.Printf("Could not register scan job: %v", err)
	}

	_, err = s.cron.Every(s.cfg.EvalIntervalMinutes).Minutes().
		Do(s.runEvaluationTick)
	if err != nil {
		log.Printf("Could not register evaluation job: %v", err)
	}

	s.cron.StartAsync()
	log.Printf("Scheduler started (scan: %dm, eval: %dm, mode: %s)",
		s.cfg.ScanIntervalMinutes, s.cfg.EvalIntervalMinutes, s.cfg.Mode)
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}

// RunScanTick executes one full scan pipeline. A tick arriving while the
// previous one still runs is dropped, never queued. Also the entry point
// for the /send-now endpoint.
func (s *Scheduler) RunScanTick() error {
	return tryRun(&s.scanRunning, "scan", func() {
		start := time.Now()
		s.scan(context.Background())

		elapsed := time.Since(start)
		if elapsed > 2*time.Duration(s.cfg.ScanIntervalMinutes)*time.Minute {
			log.Printf("Warning: scan tick took %v, more than two intervals", elapsed)
		}
	})
}

func (s *Scheduler) runEvaluationTick() {
	err := tryRun(&s.evalRunning, "evaluation", func() {
		s.evaluate(context.Background())
	})
	if err != nil && !errors.Is(err, ErrTickInProgress) {
		log.Printf("Evaluation tick failed: %v", err)
	}
}

// tryRun is the per-job overlap guard: at most one instance runs, a
// concurrent attempt is logged as skipped
func tryRun(flag *int32, name string, fn func()) error {
	if !atomic.CompareAndSwapInt32(flag, 0, 1) {
		log.Printf("SKIPPED_OVERLAP: %s tick dropped, previous still running", name)
		return ErrTickInProgress
	}
	defer atomic.StoreInt32(flag, 0)
	fn()
	return nil
}

// scan runs the full scan pipeline: fetch, score, classify, persist
// eligible signals in descending score order, publish the cache, notify.
func (s *Scheduler) scan(ctx context.Context) {
	log.Println("Scan tick starting...")
	now := time.Now().UTC()

	// Crypto leg
	snapshots := s.fetcher.FetchCryptoSnapshots(ctx)
	for _, snap := range snapshots {
		s.history.Record(snap.Symbol, snap.Price, snap.Volume24h)
	}

	var crypto []models.Candidate
	for _, snap := range snapshots {
		c := s.scorer.Score(snap, s.history.Closes(snap.Symbol), s.history.Volumes(snap.Symbol))
		s.classifier.Classify(&c)
		crypto = append(crypto, c)
	}

	// Equity leg
	var equity []models.Candidate
	for _, symbol := range s.cfg.EquitySymbols {
		snap, closes := s.fetcher.FetchEquitySnapshot(ctx, symbol, s.cfg.EquityLookbackDays)
		if snap == nil {
			continue
		}
		c := s.scorer.Score(*snap, closes, nil)
		s.classifier.Classify(&c)
		equity = append(equity, c)
	}

	sortByScore(crypto)
	sortByScore(equity)

	res := &models.ScanResult{
		GeneratedAt: now,
		Rising:      filterByClass(crypto, models.SignalStrongBuy, models.SignalBuy),
		Potential:   filterByClass(crypto, models.SignalPotential),
		Equity:      filterByClass(equity, models.SignalStrongBuy, models.SignalBuy, models.SignalPotential),
		CryptoCount: len(crypto),
		EquityCount: len(equity),
	}

	res.NewSignalIDs = s.appendSignals(append(append([]models.Candidate{}, crypto...), equity...), now)

	s.cache.Set(res)

	nextTick := now.Add(time.Duration(s.cfg.ScanIntervalMinutes) * time.Minute)
	if err := s.notifier.NotifyScan(res, nextTick); err == nil {
		log.Printf("Scan tick done: %d crypto, %d equity, %d new signals",
			res.CryptoCount, res.EquityCount, len(res.NewSignalIDs))
	}
}

// appendSignals persists every eligible emitted candidate, highest score
// first. A symbol with an ACTIVE signal is skipped, not appended.
func (s *Scheduler) appendSignals(candidates []models.Candidate, now time.Time) []int64 {
	sortByScore(candidates)

	var ids []int64
	for _, c := range candidates {
		if !c.Eligible {
			continue
		}
		switch c.Class {
		case models.SignalStrongBuy, models.SignalBuy, models.SignalPotential:
		default:
			continue
		}

		sig := models.NewSignal(
			c.Snapshot.Symbol, c.Class,
			decimal.NewFromFloat(c.Snapshot.Price),
			c.TargetPct, c.StopPct, now,
		)
		stored, err := s.signals.Append(sig)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateActive) {
				log.Printf("Duplicate suppressed: %s already has an active signal", c.Snapshot.Symbol)
			} else {
				log.Printf("Could not append signal for %s: %v", c.Snapshot.Symbol, err)
			}
			continue
		}
		log.Printf("Signal %d issued: %s %s (score %.1f, target +%.1f%%, stop %.1f%%)",
			stored.ID, stored.SignalType, stored.Symbol, c.FinalScore, c.TargetPct, c.StopPct)
		ids = append(ids, stored.ID)
	}
	return ids
}

// evaluate resolves open signals and dispatches a summary when any closed
func (s *Scheduler) evaluate(ctx context.Context) {
	closed := s.evaluator.EvaluateOpenPositions(ctx, time.Now().UTC())
	if len(closed) == 0 {
		return
	}

	report := evaluation.BuildAccuracyReport(s.signals.All())
	if err := s.notifier.NotifyClosures(closed, report); err == nil {
		log.Printf("Evaluation tick closed %d positions", len(closed))
	}
}

func sortByScore(candidates []models.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})
}

func filterByClass(candidates []models.Candidate, classes ...models.SignalType) []models.Candidate {
	var out []models.Candidate
	for _, c := range candidates {
		for _, cl := range classes {
			if c.Class == cl {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
