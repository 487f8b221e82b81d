package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"market_signal_bot/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrDuplicateActive rejects a second ACTIVE signal for a symbol
	ErrDuplicateActive = errors.New("an active signal already exists for this symbol")
	// ErrAlreadyClosed rejects a second transition out of ACTIVE
	ErrAlreadyClosed = errors.New("signal is already closed")
	// ErrNotFound reports an unknown signal id
	ErrNotFound = errors.New("signal not found")
)

// SignalStore is the append-only persistent store of issued signals.
// Every mutation is flushed to the JSON blob (write-temp, rename) before
// it returns; a failed flush rolls the in-memory change back. Mutations
// are serialized by a process-local mutex.
type SignalStore struct {
	mu      sync.Mutex
	path    string
	signals []models.Signal
	nextID  int64
}

// NewSignalStore loads the signal history from path. A missing or
// corrupt blob yields an empty store with a warning; the file is
// recreated on the first mutation.
func NewSignalStore(path string) *SignalStore {
	s := &SignalStore{path: path, nextID: 1}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: could not read signal store %s: %v, starting empty", path, err)
		}
		return s
	}

	var signals []models.Signal
	if err := json.Unmarshal(data, &signals); err != nil {
		log.Printf("Warning: corrupt signal store %s: %v, starting empty", path, err)
		return s
	}

	s.signals = signals
	for _, sig := range signals {
		if sig.ID >= s.nextID {
			s.nextID = sig.ID + 1
		}
	}
	log.Printf("Signal store loaded: %d signals from %s", len(signals), path)
	return s
}

// Append assigns the next monotonic id and persists the new signal.
// Rejects the append when an ACTIVE signal for the same symbol exists.
func (s *SignalStore) Append(sig models.Signal) (models.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.signals {
		if existing.Symbol == sig.Symbol && existing.Status == models.StatusActive {
			return models.Signal{}, ErrDuplicateActive
		}
	}

	sig.ID = s.nextID
	sig.Status = models.StatusActive
	sig.ResultPct = nil
	sig.ClosedAt = nil

	s.signals = append(s.signals, sig)
	if err := s.persistLocked(); err != nil {
		s.signals = s.signals[:len(s.signals)-1]
		return models.Signal{}, fmt.Errorf("persist append: %w", err)
	}
	s.nextID++
	return sig, nil
}

// Close transitions ACTIVE -> terminal exactly once, setting result and
// close time together.
func (s *SignalStore) Close(id int64, status models.SignalStatus, resultPct decimal.Decimal, closedAt time.Time) error {
	if !status.IsTerminal() {
		return fmt.Errorf("invalid terminal status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.signals {
		if s.signals[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}
	if s.signals[idx].Status != models.StatusActive {
		return ErrAlreadyClosed
	}

	prev := s.signals[idx]
	s.signals[idx].Status = status
	s.signals[idx].ResultPct = &resultPct
	s.signals[idx].ClosedAt = &closedAt

	if err := s.persistLocked(); err != nil {
		s.signals[idx] = prev
		return fmt.Errorf("persist close: %w", err)
	}
	return nil
}

// ListActive returns a copy of all ACTIVE signals in issuance order
func (s *SignalStore) ListActive() []models.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []models.Signal
	for _, sig := range s.signals {
		if sig.Status == models.StatusActive {
			active = append(active, sig)
		}
	}
	return active
}

// HasActive reports whether an ACTIVE signal exists for the symbol
func (s *SignalStore) HasActive(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sig := range s.signals {
		if sig.Symbol == symbol && sig.Status == models.StatusActive {
			return true
		}
	}
	return false
}

// All returns a copy of the full history in issuance order
func (s *SignalStore) All() []models.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Signal, len(s.signals))
	copy(out, s.signals)
	return out
}

// persistLocked rewrites the blob atomically. Caller holds s.mu.
func (s *SignalStore) persistLocked() error {
	data, err := json.MarshalIndent(s.signals, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".signals-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
