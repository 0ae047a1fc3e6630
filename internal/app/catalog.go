package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"lmsc-client/internal/domain"
	"lmsc-client/internal/logger"
)

// DefaultDebounce is the window within which successive searches coalesce.
const DefaultDebounce = 300 * time.Millisecond

// Query is one catalog search request.
type Query struct {
	Term     string
	PageNum  int
	PageSize int
}

// Page is one page of catalog results plus the totals the pager needs.
type Page struct {
	Lessons  []domain.Lesson
	Total    int
	PageNum  int
	PageSize int
}

// TotalPages is ceil(total / pageSize).
func (p Page) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasPrev reports whether a previous page exists; always false at page 1.
func (p Page) HasPrev() bool {
	return p.PageNum > 1
}

// HasNext reports whether a next page exists; false at page >= TotalPages.
func (p Page) HasNext() bool {
	return p.PageNum < p.TotalPages()
}

// SearchFunc fetches one page of lessons. Implementations must treat a page
// beyond the last as an empty page, not an error.
type SearchFunc func(ctx context.Context, q Query) (Page, error)

// Result is what a completed (non-superseded) search delivers.
type Result struct {
	Query Query
	Page  Page
	Err   error
}

// Searcher serializes catalog searches: rapid calls within the debounce
// window coalesce into the last one, and a newer search cancels whatever is
// still in flight. A stale completion can never overwrite a newer result;
// every accepted query gets a generation number and only the current
// generation may deliver.
type Searcher struct {
	fetch    SearchFunc
	debounce time.Duration
	onResult func(Result)
	log      *logger.Logger

	mu       sync.Mutex
	gen      uint64
	timer    *time.Timer
	inflight context.CancelFunc
	root     context.Context
	stop     context.CancelFunc
}

type SearcherOption func(*Searcher)

// WithDebounce overrides the coalescing window (0 disables it).
func WithDebounce(d time.Duration) SearcherOption {
	return func(s *Searcher) { s.debounce = d }
}

func WithSearcherLogger(log *logger.Logger) SearcherOption {
	return func(s *Searcher) { s.log = log }
}

// NewSearcher builds a Searcher delivering to onResult. The callback runs on
// the fetch goroutine with the Searcher's lock held, so it must be light and
// must not call back into the Searcher.
func NewSearcher(fetch SearchFunc, onResult func(Result), opts ...SearcherOption) *Searcher {
	root, stop := context.WithCancel(context.Background())
	s := &Searcher{
		fetch:    fetch,
		debounce: DefaultDebounce,
		onResult: onResult,
		log:      logger.Nop(),
		root:     root,
		stop:     stop,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search schedules q after the debounce window, superseding any pending or
// in-flight search.
func (s *Searcher) Search(q Query) {
	q = clamp(q)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.debounce <= 0 {
		s.dispatchLocked(gen, q)
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			return // superseded while waiting
		}
		s.dispatchLocked(gen, q)
	})
}

// SearchNow runs q synchronously, still superseding any in-flight search so
// a late async completion cannot clobber this result.
func (s *Searcher) SearchNow(ctx context.Context, q Query) (Page, error) {
	q = clamp(q)

	s.mu.Lock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
	s.mu.Unlock()

	return s.fetch(ctx, q)
}

// Close cancels pending and in-flight work.
func (s *Searcher) Close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
	s.mu.Unlock()
	s.stop()
}

func (s *Searcher) dispatchLocked(gen uint64, q Query) {
	if s.inflight != nil {
		s.inflight()
	}
	ctx, cancel := context.WithCancel(s.root)
	s.inflight = cancel

	go func() {
		page, err := s.fetch(ctx, q)

		// The staleness check and the delivery happen under the same lock:
		// once a newer search bumps the generation, this result can no
		// longer be delivered, and a result that passes the check delivers
		// before any later search can dispatch.
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			return
		}
		if err != nil && errors.Is(err, context.Canceled) {
			// Aborting a superseded request is not a user-visible failure.
			return
		}
		if err != nil {
			s.log.Warn("catalog search failed", "term", q.Term, "err", err)
		}
		if s.onResult != nil {
			s.onResult(Result{Query: q, Page: page, Err: err})
		}
	}()
}

func clamp(q Query) Query {
	if q.PageNum < 1 {
		q.PageNum = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	return q
}
