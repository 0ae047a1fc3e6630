package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"lmsc-client/internal/domain"
)

// LessonLoader fetches a lesson with its questions and tasks from the
// backing service.
type LessonLoader interface {
	LoadLesson(ctx context.Context, lessonID string) (domain.LessonDetail, error)
}

// LessonCache is a read-through cache over a LessonLoader. Question sets are
// immutable from the client's perspective, so a short TTL is safe; the
// singleflight group keeps concurrent misses from stampeding the API.
type LessonCache struct {
	loader LessonLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedLesson
}

type cachedLesson struct {
	detail    domain.LessonDetail
	expiresAt time.Time
}

func NewLessonCache(loader LessonLoader, ttl time.Duration) *LessonCache {
	return &LessonCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedLesson),
	}
}

// NewLessonCacheWithClock is test-only for deterministic expiry.
func NewLessonCacheWithClock(loader LessonLoader, ttl time.Duration, now func() time.Time) *LessonCache {
	c := NewLessonCache(loader, ttl)
	c.clock = now
	return c
}

// LoadLesson returns the cached detail or falls through to the loader.
func (c *LessonCache) LoadLesson(ctx context.Context, lessonID string) (domain.LessonDetail, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[lessonID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.detail, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(lessonID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[lessonID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.detail, nil
		}
		c.mu.RUnlock()

		detail, err := c.loader.LoadLesson(ctx, lessonID)
		if err != nil {
			return domain.LessonDetail{}, err
		}

		c.mu.Lock()
		c.cache[lessonID] = cachedLesson{
			detail:    detail,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return detail, nil
	})
	if err != nil {
		return domain.LessonDetail{}, err
	}
	return result.(domain.LessonDetail), nil
}

// Invalidate drops one lesson, e.g. after the student's own attempt changed
// what the detail view should show.
func (c *LessonCache) Invalidate(lessonID string) {
	c.mu.Lock()
	delete(c.cache, lessonID)
	c.mu.Unlock()
}

func (c *LessonCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
