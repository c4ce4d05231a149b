// Package dedupe maps client request IDs to the forecast jobs they created,
// so a retried submission returns the original job instead of a new one.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10000

// Deduper records which job each request ID produced.
type Deduper interface {
	// Claim records jobID for requestID unless the request was already seen.
	// It returns the job ID that owns the request and whether it already existed.
	Claim(ctx context.Context, requestID, jobID string) (string, bool)

	// Release forgets a request so it can be submitted again. Used when a
	// claimed job could not be enqueued.
	Release(ctx context.Context, requestID string)

	Size() int
}

type entry struct {
	requestID string
	jobID     string
}

// inMemoryDeduper keeps at most maxSize requests and evicts the oldest first.
// A maxSize of zero or less disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a deduper. The default bound is 10000 requests.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) Claim(_ context.Context, requestID, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[requestID]; ok {
		return el.Value.(*entry).jobID, true
	}

	if d.maxSize > 0 {
		for d.order.Len() >= d.maxSize {
			d.evictOldest()
		}
	}
	d.seen[requestID] = d.order.PushBack(&entry{requestID: requestID, jobID: jobID})
	return jobID, false
}

func (d *inMemoryDeduper) Release(_ context.Context, requestID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[requestID]; ok {
		d.order.Remove(el)
		delete(d.seen, requestID)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(*entry).requestID)
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
