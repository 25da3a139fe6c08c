// Package forecast defines hourly temperature forecasts and the in-memory
// cache the scheduler reads from.
package forecast

import (
	"sync"
	"time"
)

// Sample is a single forecast point.
type Sample struct {
	Temperature float64   `json:"temperature"`
	Timestamp   time.Time `json:"timestamp"`
}

// Batch is one fetch result. Samples are sorted by timestamp.
type Batch struct {
	Samples   []Sample
	FetchedAt time.Time
}

// Cache keeps the most recent non-empty batch.
type Cache struct {
	mu    sync.RWMutex
	batch Batch
	ok    bool
}

func NewCache() *Cache {
	return &Cache{}
}

// Update replaces the cached batch. Empty batches are ignored so a failed or
// truncated fetch never wipes a good forecast.
func (c *Cache) Update(b Batch) bool {
	if len(b.Samples) == 0 {
		return false
	}
	c.mu.Lock()
	c.batch = b
	c.ok = true
	c.mu.Unlock()
	return true
}

// Latest returns the cached batch and whether one has been received.
func (c *Cache) Latest() (Batch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.batch, c.ok
}
