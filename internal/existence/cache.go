package existence

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"moodify/internal/metrics"
)

const defaultCapacity = 10000

type entry struct {
	key   string
	value bool
}

// Cache memoizes existence answers per key. Concurrent first lookups of the
// same key share one computation. Least recently used entries are evicted
// once capacity is reached.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front is most recently used
	items    map[string]*list.Element
	group    singleflight.Group
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (c *Cache) Get(key string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return false, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

func (c *Cache) Set(key string, value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&entry{key: key, value: value})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
		metrics.CacheEvictions.Inc()
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// GetOrCompute returns the cached value for key, or runs compute once and
// stores its result. Results of a failed compute are not stored; the error
// is returned to every waiter of that computation.
//
// A non-nil error from GetOrCompute itself, as opposed to from compute, is
// reported as *LookupError.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (bool, error)) (bool, error) {
	if v, ok := c.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return v, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	ch := c.group.DoChan(key, func() (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &LookupError{Key: key, Err: fmt.Errorf("panic: %v", r)}
			}
		}()
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		// Detached so one caller's cancellation does not fail the others.
		v, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return false, err
		}
		c.Set(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	case <-ctx.Done():
		return false, &LookupError{Key: key, Err: ctx.Err()}
	}
}

// LookupError reports a failure of the cache lookup itself.
type LookupError struct {
	Key string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("existence cache lookup %q: %v", e.Key, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
