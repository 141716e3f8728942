// Package querycache is the process-wide cache of server-fetched collections
// and entities. Reads are fetch-or-serve-cached with single-flight coalescing
// per key; mutations never write the cache directly, they invalidate keys and
// let the next read refetch.
package querycache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"
)

// Resource kinds. A Key is a kind plus its scoping id, e.g. the owning user
// for the notebook list or the notebook for its sources.
const (
	KindNotebooks    = "notebooks"
	KindNotebook     = "notebook"
	KindSources      = "sources"
	KindNotes        = "notes"
	KindChatMessages = "chat-messages"
	KindLLMConfigs   = "llm-configs"
	KindOllamaModels = "ollama-models"
	KindSystemStats  = "system-stats"
)

type Key struct {
	Kind  string
	Scope string
}

func NewKey(kind, scope string) Key {
	return Key{Kind: kind, Scope: scope}
}

func (k Key) String() string {
	if k.Scope == "" {
		return k.Kind
	}
	return k.Kind + ":" + k.Scope
}

type inflight struct {
	done  chan struct{}
	value any
	err   error
}

type Cache struct {
	mu sync.Mutex
	// store holds fresh values only; invalidation removes the entry.
	store    *gocache.Cache
	inflight map[string]*inflight
	// generations guards against an in-flight fetch caching a value for a
	// key that was invalidated after the fetch started.
	generations map[string]uint64
	watchers    map[string][]chan struct{}
}

func New() *Cache {
	return &Cache{
		store:       gocache.New(gocache.NoExpiration, 0),
		inflight:    map[string]*inflight{},
		generations: map[string]uint64{},
		watchers:    map[string][]chan struct{}{},
	}
}

// Fetch returns the cached value for key, or runs fn to populate it.
// Concurrent fetches of the same key share one in-flight call: exactly one
// network request happens, and every requester receives its result.
// A failed fetch populates nothing.
func (c *Cache) Fetch(ctx context.Context, key Key, fn func(ctx context.Context) (any, error)) (any, error) {
	id := key.String()

	c.mu.Lock()
	if value, ok := c.store.Get(id); ok {
		c.mu.Unlock()
		return value, nil
	}
	if call, ok := c.inflight[id]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.value, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &inflight{done: make(chan struct{})}
	c.inflight[id] = call
	generation := c.generations[id]
	c.mu.Unlock()

	value, err := fn(ctx)

	c.mu.Lock()
	call.value, call.err = value, err
	delete(c.inflight, id)
	if err == nil && generation == c.generations[id] {
		c.store.Set(id, value, gocache.NoExpiration)
	}
	c.mu.Unlock()
	close(call.done)

	return value, err
}

// Peek returns the cached value for key without triggering a fetch.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(key.String())
}

// Invalidate marks key stale so the next read refetches. Invalidating an
// already-stale key is a no-op beyond the staleness mark; watchers are
// notified either way.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	c.invalidateLocked(key.String())
	c.mu.Unlock()
}

// InvalidateKind marks every key of the given kind stale, regardless of scope.
func (c *Cache) InvalidateKind(kind string) {
	c.mu.Lock()
	seen := map[string]bool{}
	for id := range c.store.Items() {
		if id == kind || strings.HasPrefix(id, kind+":") {
			seen[id] = true
		}
	}
	for id := range c.inflight {
		if id == kind || strings.HasPrefix(id, kind+":") {
			seen[id] = true
		}
	}
	for id := range c.watchers {
		if id == kind || strings.HasPrefix(id, kind+":") {
			seen[id] = true
		}
	}
	for id := range seen {
		c.invalidateLocked(id)
	}
	c.mu.Unlock()
}

func (c *Cache) invalidateLocked(id string) {
	c.store.Delete(id)
	c.generations[id]++
	for _, watcher := range c.watchers[id] {
		select {
		case watcher <- struct{}{}:
		default:
		}
	}
}

// Watch notifies on every invalidation of key. Notifications are coalesced;
// cancel removes the watcher and must be called to avoid leaking it.
func (c *Cache) Watch(key Key) (<-chan struct{}, func()) {
	id := key.String()
	ch := make(chan struct{}, 1)

	c.mu.Lock()
	c.watchers[id] = append(c.watchers[id], ch)
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			watchers := c.watchers[id]
			for i, watcher := range watchers {
				if watcher == ch {
					c.watchers[id] = append(watchers[:i], watchers[i+1:]...)
					break
				}
			}
			if len(c.watchers[id]) == 0 {
				delete(c.watchers, id)
			}
			c.mu.Unlock()
		})
	}
	return ch, cancel
}

// Clear drops every cached value, in-flight result aside. Used on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	for id := range c.store.Items() {
		c.invalidateLocked(id)
	}
	c.mu.Unlock()
}

// FetchAs is the typed wrapper over Cache.Fetch.
func FetchAs[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	value, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("cache entry %s holds %T, caller expects %T", key, value, zero)
	}
	return typed, nil
}
