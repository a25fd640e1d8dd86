// Package state holds the client-side mirror of backend resources. Each
// resource has its own slice: an ordered item list, pagination metadata and
// the status of the last operation. The backend stays authoritative.
package state

import (
	"sync"

	"rentadm/api"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}

// Collection is an ordered list of entities keyed by numeric id. It is safe
// for concurrent use.
type Collection[T any] struct {
	idOf func(T) int64

	mu         sync.RWMutex
	items      []T
	pagination Pagination
	status     Status
	err        string
}

func NewCollection[T any](idOf func(T) int64) *Collection[T] {
	return &Collection[T]{idOf: idOf, status: StatusIdle}
}

func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) ByID(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Pagination() Pagination {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pagination
}

func (c *Collection[T]) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Collection[T]) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Collection[T]) begin() {
	c.mu.Lock()
	c.status = StatusLoading
	c.err = ""
	c.mu.Unlock()
}

func (c *Collection[T]) fail(message string) {
	c.mu.Lock()
	c.status = StatusFailed
	c.err = message
	c.mu.Unlock()
}

// invalidate drops the slice back to idle so the next read refetches.
func (c *Collection[T]) invalidate() {
	c.mu.Lock()
	c.status = StatusIdle
	c.mu.Unlock()
}

func (c *Collection[T]) applyPage(page api.Page[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), page.Content...)
	c.pagination = Pagination{
		CurrentPage:   page.Number,
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
	}
	c.status = StatusSucceeded
}

// replace sets an unpaginated list; pagination collapses to a single page.
func (c *Collection[T]) replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
	pages := 0
	if len(items) > 0 {
		pages = 1
	}
	c.pagination = Pagination{CurrentPage: 0, TotalPages: pages, TotalElements: int64(len(items))}
	c.status = StatusSucceeded
}

// add appends a newly created item and counts it.
func (c *Collection[T]) add(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	c.pagination.TotalElements++
	c.status = StatusSucceeded
}

// merge replaces the item with the same id in place, or appends it when the
// list does not hold it yet. Totals are left alone.
func (c *Collection[T]) merge(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.idOf(item)
	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			c.items[i] = item
			c.status = StatusSucceeded
			return
		}
	}
	c.items = append(c.items, item)
	c.status = StatusSucceeded
}

func (c *Collection[T]) prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
}

// update rewrites the cached item in place. It reports false when the id is
// not cached.
func (c *Collection[T]) update(id int64, fn func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			fn(&c.items[i])
			return true
		}
	}
	return false
}

func (c *Collection[T]) remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]T, 0, len(c.items))
	removed := false
	for _, item := range c.items {
		if c.idOf(item) == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	c.items = kept
	if removed && c.pagination.TotalElements > 0 {
		c.pagination.TotalElements--
	}
	c.status = StatusSucceeded
}

func (c *Collection[T]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.pagination = Pagination{}
	c.status = StatusIdle
	c.err = ""
}

// track runs fn with loading/failed bookkeeping. On failure the slice keeps
// the server message, or fallback when there is none.
func track[T any](c *Collection[T], fallback string, fn func() error) error {
	c.begin()
	if err := fn(); err != nil {
		c.fail(api.Message(err, fallback))
		return &OpError{Message: api.Message(err, fallback), Err: err}
	}
	c.mu.Lock()
	if c.status == StatusLoading {
		c.status = StatusSucceeded
	}
	c.mu.Unlock()
	return nil
}
