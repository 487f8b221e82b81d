package store

import (
	"encoding/json"
	"log"
	"os"
	"sync/atomic"

	"market_signal_bot/models"
)

// ScanCache holds the last completed scan result. Readers see a
// consistent snapshot through a single pointer swap; the on-disk copy is
// advisory and written best-effort so /analysis answers immediately
// after a restart.
type ScanCache struct {
	current atomic.Pointer[models.ScanResult]
	path    string
}

// NewScanCache creates the cache and reloads the advisory blob if present
func NewScanCache(path string) *ScanCache {
	c := &ScanCache{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var res models.ScanResult
	if err := json.Unmarshal(data, &res); err != nil {
		log.Printf("Warning: corrupt last-scan cache %s: %v, ignoring", path, err)
		return c
	}
	c.current.Store(&res)
	return c
}

// Set publishes a completed scan result and persists it best-effort
func (c *ScanCache) Set(res *models.ScanResult) {
	c.current.Store(res)

	data, err := json.Marshal(res)
	if err != nil {
		log.Printf("Warning: could not marshal last-scan cache: %v", err)
		return
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Printf("Warning: could not write last-scan cache: %v", err)
		return
	}
	if err := os.Rename(tmp, c.path); err != nil {
		log.Printf("Warning: could not replace last-scan cache: %v", err)
		os.Remove(tmp)
	}
}

// Get returns the last published scan result, or nil before the first
// completed scan
func (c *ScanCache) Get() *models.ScanResult {
	return c.current.Load()
}
