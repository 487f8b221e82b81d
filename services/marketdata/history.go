package marketdata

import "sync"

// MaxHistoryPoints caps the per-symbol close/volume ring
const MaxHistoryPoints = 500

type series struct {
	closes  []float64
	volumes []float64
}

// History is an in-memory per-symbol price history fed once per scan
// tick from crypto snapshots. The indicator kernel reads it; it warms up
// over successive ticks and is never persisted.
type History struct {
	mu     sync.RWMutex
	series map[string]*series
}

// NewHistory creates an empty price history
func NewHistory() *History {
	return &History{series: make(map[string]*series)}
}

// Record appends one close/volume observation for a symbol
func (h *History) Record(symbol string, price, volume float64) {
	if price <= 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.series[symbol]
	if !ok {
		s = &series{}
		h.series[symbol] = s
	}
	s.closes = append(s.closes, price)
	s.volumes = append(s.volumes, volume)
	if len(s.closes) > MaxHistoryPoints {
		s.closes = s.closes[len(s.closes)-MaxHistoryPoints:]
		s.volumes = s.volumes[len(s.volumes)-MaxHistoryPoints:]
	}
}

// Closes returns a copy of the chronological close series for a symbol
func (h *History) Closes(symbol string) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.series[symbol]
	if !ok {
		return nil
	}
	out := make([]float64, len(s.closes))
	copy(out, s.closes)
	return out
}

// Volumes returns a copy of the chronological volume series for a symbol
func (h *History) Volumes(symbol string) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.series[symbol]
	if !ok {
		return nil
	}
	out := make([]float64, len(s.volumes))
	copy(out, s.volumes)
	return out
}
