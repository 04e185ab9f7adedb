package cache

import (
	"context"
	"log"
	"time"
)

type sweepable interface {
	removeExpired(now time.Time)
}

// Janitor periodically removes expired entries from registered caches.
// Start it once during wiring; it stops when its context is cancelled.
type Janitor struct {
	interval time.Duration
	caches   []sweepable
}

func NewJanitor(interval time.Duration) *Janitor {
	return &Janitor{interval: interval}
}

// Register adds a cache to the sweep set. Not safe to call after Start.
func (j *Janitor) Register(c sweepable) {
	j.caches = append(j.caches, c)
}

// Start runs the sweep loop until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Printf("cache janitor started: interval=%s caches=%d", j.interval, len(j.caches))
	for {
		select {
		case <-ctx.Done():
			log.Printf("cache janitor stopped")
			return
		case now := <-ticker.C:
			for _, c := range j.caches {
				c.removeExpired(now)
			}
		}
	}
}
