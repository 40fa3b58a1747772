package feed

import (
	"context"
	"log"
	"sync"
)

// Viewport is the reader's visible window over the composed record list:
// Offset is the index of the first visible record, Height how many rows
// are visible.
type Viewport struct {
	Offset int
	Height int
}

// Trigger fires the pager's FetchNext when the viewport reaches the
// sentinel region at the tail of the list. The terminal analog of an
// intersection observer on a sentinel element: a fetch is issued at most
// once per entry transition into the region, and only while the pager
// has a next cursor with no fetch outstanding. Safe for concurrent use.
type Trigger struct {
	pager     *Pager
	threshold float64

	mu     sync.Mutex
	inside bool
	closed bool
}

// DefaultThreshold is the fraction of the list that counts as the
// sentinel region at the tail
const DefaultThreshold = 0.1

// NewTrigger creates a trigger for the pager. A non-positive threshold
// falls back to DefaultThreshold.
func NewTrigger(p *Pager, threshold float64) *Trigger {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Trigger{pager: p, threshold: threshold}
}

// Observe reports a viewport position over a list of total records and
// fires at most one fetch on the transition into the sentinel region.
// It returns true when a fetch was issued. Once the feed is exhausted
// the trigger deregisters itself and never fires again.
func (t *Trigger) Observe(ctx context.Context, vp Viewport, total int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}
	if !t.pager.HasNext() {
		// terminal page reached, stop watching to avoid stray triggers
		t.closed = true
		return false
	}

	intersecting := t.intersects(vp, total)
	entered := intersecting && !t.inside
	t.inside = intersecting

	if !entered || t.pager.IsFetchingNext() {
		return false
	}

	issued, err := t.pager.FetchNext(ctx)
	if err != nil {
		// no automatic retry; the next entry transition retries the page
		log.Printf("[WARN] feed fetch failed: %v", err)
		t.inside = false
		return issued
	}
	return issued
}

// intersects reports whether the viewport reaches the sentinel region:
// the tail threshold-fraction of the list, or its very end for short
// lists
func (t *Trigger) intersects(vp Viewport, total int) bool {
	if total == 0 {
		return true // nothing rendered yet, the sentinel is all there is
	}
	remaining := total - (vp.Offset + vp.Height)
	return float64(remaining) <= t.threshold*float64(total)
}

// Close deregisters the trigger, used on feed view teardown
func (t *Trigger) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}
