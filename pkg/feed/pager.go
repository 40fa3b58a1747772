// Package feed drives cursor-based paging over the record feed: a pager
// owning the page cache, a position trigger that requests the next page
// as the reader approaches the end, and an RSS export of fetched pages.
package feed

import (
	"context"
	"log"
	"sync"

	"github.com/floe-dev/floectl/pkg/domain"
)

// PageSource fetches one page of records, typically backed by
// api.Client.ListRecords or SearchRecords
type PageSource interface {
	FetchPage(ctx context.Context, page, size int) (*domain.RecordPage, error)
}

// SourceFunc adapts a function to the PageSource interface
type SourceFunc func(ctx context.Context, page, size int) (*domain.RecordPage, error)

// FetchPage calls f
func (f SourceFunc) FetchPage(ctx context.Context, page, size int) (*domain.RecordPage, error) {
	return f(ctx, page, size)
}

// Pager maintains the ordered page cache for one feed session. Pages are
// appended in cursor order and never removed until Reset. At most one
// fetch is in flight at a time, a FetchNext while one is outstanding is
// a no-op, so pages cannot arrive out of order or duplicated.
type Pager struct {
	source PageSource
	size   int

	mu        sync.Mutex
	pages     []domain.RecordPage
	cursor    int
	exhausted bool
	inFlight  bool
	gen       int // bumped on Reset to discard stale in-flight results
}

// NewPager creates a pager fetching pages of the given size from source
func NewPager(source PageSource, size int) *Pager {
	return &Pager{source: source, size: size}
}

// FetchNext requests one more page. It reports whether a fetch was
// actually issued: false means the feed is exhausted or a fetch is
// already in flight. On failure the cursor is left unchanged so the next
// trigger retries the same page; the pager itself never retries.
func (p *Pager) FetchNext(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.exhausted || p.inFlight {
		p.mu.Unlock()
		return false, nil
	}
	p.inFlight = true
	cursor, gen := p.cursor, p.gen
	p.mu.Unlock()

	page, err := p.source.FetchPage(ctx, cursor, p.size)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen { // reset happened while fetching, drop the result
		return false, nil
	}
	p.inFlight = false

	if err != nil {
		return true, err
	}
	p.appendLocked(page)
	return true, nil
}

// appendLocked adds a fetched page to the cache and advances the cursor.
// Callers hold p.mu.
func (p *Pager) appendLocked(page *domain.RecordPage) {
	if page == nil {
		// treat a body-less success as an empty terminal page rather
		// than failing the view
		p.exhausted = true
		return
	}

	for _, cached := range p.pages {
		if cached.Number() == page.Number() {
			log.Printf("[WARN] feed returned duplicate page %d, ignored", page.Number())
			return
		}
	}

	stored := *page
	if stored.Content == nil {
		stored.Content = []domain.RecordSummary{} // malformed page renders empty, not as a crash
	}
	p.pages = append(p.pages, stored)

	next, ok := stored.NextCursor()
	if !ok {
		p.exhausted = true
		return
	}
	p.cursor = next
}

// Pages returns a copy of the page cache in fetch order
func (p *Pager) Pages() []domain.RecordPage {
	p.mu.Lock()
	defer p.mu.Unlock()
	pages := make([]domain.RecordPage, len(p.pages))
	copy(pages, p.pages)
	return pages
}

// HasNext reports whether a further page can be requested. Once the last
// page arrived this stays false for the rest of the session.
func (p *Pager) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.exhausted
}

// IsFetchingNext reports whether a fetch is currently outstanding
func (p *Pager) IsFetchingNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// IsInitialLoading reports whether the very first page is still loading
func (p *Pager) IsInitialLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages) == 0 && p.inFlight
}

// Len returns the total number of cached records across all pages
func (p *Pager) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, page := range p.pages {
		n += len(page.Content)
	}
	return n
}

// Reset drops the page cache and rewinds the cursor to 0, used after a
// successful record submission so the next view reflects the new record.
// A fetch in flight at reset time is discarded when it completes.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages = nil
	p.cursor = 0
	p.exhausted = false
	p.inFlight = false
	p.gen++
}
