package state

import (
	"errors"
	"fmt"
	"sync"
)

var ErrActionPending = errors.New("another action on this item is still in progress")

// OpError is a failed slice operation. Message is what the user sees.
type OpError struct {
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return e.Message
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// pending tracks per-id actions in flight. An id can hold one action at a
// time; other ids are unaffected.
type pending struct {
	mu  sync.Mutex
	ids map[int64]string
}

func (p *pending) acquire(id int64, action string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ids == nil {
		p.ids = map[int64]string{}
	}
	if current, ok := p.ids[id]; ok {
		return fmt.Errorf("%w (%s on #%d)", ErrActionPending, current, id)
	}
	p.ids[id] = action
	return nil
}

func (p *pending) release(id int64) {
	p.mu.Lock()
	delete(p.ids, id)
	p.mu.Unlock()
}

func (p *pending) Pending(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.ids[id]
	return ok
}
