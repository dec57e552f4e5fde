// ABOUTME: Bounded TTL cache of idempotency keys for web form submissions
// ABOUTME: Expired keys are pruned lazily from the oldest end on every write

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long a key is remembered when no TTL is given.
	DefaultTTL = 10 * time.Minute
	// DefaultMaxSize bounds the cache when no size is given.
	DefaultMaxSize = 1024
)

type entry struct {
	key    string
	marked time.Time
}

// Cache tracks idempotency keys. Keys are kept in mark order, oldest at the
// front, so expiry and eviction both work from the front of the list.
type Cache struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache that remembers keys for ttl and holds at most maxSize
// of them. Non-positive values select the defaults.
func New(ttl time.Duration, maxSize int, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	c := &Cache{
		keys:    make(map[string]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seen reports whether key was marked within the TTL.
func (c *Cache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.keys[key]
	return ok && c.liveLocked(elem, c.now())
}

// CheckAndMark marks key and reports whether it was already marked within the
// TTL. The empty key is never a duplicate and is not stored.
func (c *Cache) CheckAndMark(key string) bool {
	if key == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.pruneLocked(now)

	// Anything still present survived the prune, so it is live.
	if _, ok := c.keys[key]; ok {
		return true
	}

	if c.order.Len() >= c.maxSize {
		c.removeLocked(c.order.Front())
	}
	c.keys[key] = c.order.PushBack(&entry{key: key, marked: now})
	return false
}

// Forget drops key so it can be submitted again.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.keys[key]; ok {
		c.removeLocked(elem)
	}
}

// Len returns the number of stored keys, including any not yet pruned.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) liveLocked(elem *list.Element, now time.Time) bool {
	e, _ := elem.Value.(*entry)
	return now.Sub(e.marked) < c.ttl
}

// pruneLocked drops expired keys. Marks happen in clock order, so it stops at
// the first live key.
func (c *Cache) pruneLocked(now time.Time) {
	for front := c.order.Front(); front != nil; front = c.order.Front() {
		if c.liveLocked(front, now) {
			return
		}
		c.removeLocked(front)
	}
}

func (c *Cache) removeLocked(elem *list.Element) {
	e, _ := elem.Value.(*entry)
	c.order.Remove(elem)
	delete(c.keys, e.key)
}
