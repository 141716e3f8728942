package querycache

import (
	"log/slog"
	"sync"
	"time"
)

// Poller emulates push updates by invalidating a cache key on a fixed
// interval while a view is mounted. It is the seam to swap for a push-based
// transport later: hooks only ever see invalidations.
type Poller struct {
	cache *Cache
}

func NewPoller(cache *Cache) *Poller {
	if cache == nil {
		panic("querycache: NewPoller requires a cache")
	}
	return &Poller{cache: cache}
}

// Start invalidates key every interval until the returned stop function is
// called. Stop cancels the timer immediately and is safe to call repeatedly.
func (p *Poller) Start(key Key, interval time.Duration) (stop func()) {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				slog.Default().Debug("poll invalidation", "key", key.String())
				p.cache.Invalidate(key)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
		})
	}
}
