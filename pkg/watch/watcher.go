package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"

	"github.com/floe-dev/floectl/pkg/domain"
)

// Lister fetches a page of records from the feed head.
type Lister interface {
	ListRecords(ctx context.Context, page, size int) (*domain.RecordPage, error)
}

// Notifier receives records that appeared since the previous poll.
type Notifier interface {
	NewRecords(records []domain.RecordSummary)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(records []domain.RecordSummary)

// NewRecords calls f.
func (f NotifierFunc) NewRecords(records []domain.RecordSummary) { f(records) }

// Config holds watcher configuration.
type Config struct {
	Interval time.Duration // poll interval, default 1 minute
	PageSize int           // head page size, default 20
	Retries  int           // attempts per poll, default 3
}

// Watcher periodically polls the first feed page and reports records
// it has not seen before.
type Watcher struct {
	lister   Lister
	notifier Notifier
	interval time.Duration
	pageSize int
	retries  int

	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu     sync.Mutex
	seen   map[int64]struct{}
	primed bool
}

// NewWatcher creates a watcher polling lister and reporting to notifier.
func NewWatcher(lister Lister, notifier Notifier, cfg Config) *Watcher {
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = 20
	}
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}

	return &Watcher{
		lister:   lister,
		notifier: notifier,
		interval: cfg.Interval,
		pageSize: cfg.PageSize,
		retries:  cfg.Retries,
		seen:     map[int64]struct{}{},
	}
}

// Start begins polling. The first poll primes the seen set without notifying,
// so only records published after Start are reported.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.pollWorker(ctx)

	lgr.Printf("[INFO] watcher started with interval %v, page size %d", w.interval, w.pageSize)
}

// Stop gracefully stops the watcher.
func (w *Watcher) Stop() {
	lgr.Printf("[INFO] stopping watcher...")
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	lgr.Printf("[INFO] watcher stopped")
}

func (w *Watcher) pollWorker(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately on start to prime the seen set
	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// Poll fetches the head page once and reports unseen records. Exposed for
// one-shot use; the background worker calls it on every tick.
func (w *Watcher) Poll(ctx context.Context) error {
	return w.poll(ctx)
}

func (w *Watcher) poll(ctx context.Context) error {
	var page *domain.RecordPage
	rp := repeater.NewBackoff(w.retries, 250*time.Millisecond, repeater.WithMaxDelay(5*time.Second))
	err := rp.Do(ctx, func() error {
		var e error
		page, e = w.lister.ListRecords(ctx, 0, w.pageSize)
		return e
	})
	if err != nil {
		lgr.Printf("[WARN] failed to poll feed head: %v", err)
		return fmt.Errorf("poll feed head: %w", err)
	}

	fresh := w.markSeen(page.Content)
	if len(fresh) > 0 && w.notifier != nil {
		lgr.Printf("[INFO] %d new records", len(fresh))
		w.notifier.NewRecords(fresh)
	}
	return nil
}

// markSeen records the page's ids and returns records not seen before.
// The very first page primes the set without reporting anything.
func (w *Watcher) markSeen(records []domain.RecordSummary) []domain.RecordSummary {
	w.mu.Lock()
	defer w.mu.Unlock()

	var fresh []domain.RecordSummary
	for _, r := range records {
		if _, ok := w.seen[r.RecordID]; ok {
			continue
		}
		w.seen[r.RecordID] = struct{}{}
		if w.primed {
			fresh = append(fresh, r)
		}
	}
	w.primed = true
	return fresh
}
