package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"prepify-quiz/internal/domain"
	"prepify-quiz/internal/quiz"
)

// QuestionCache caches each category's questions with a TTL to avoid repeated store hits.
type QuestionCache struct {
	source quiz.QuestionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedCategory
	// generation is bumped by Invalidate; a load that straddles a bump is not stored.
	generation map[string]uint64
}

type cachedCategory struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(source quiz.QuestionSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCategory),

		generation: make(map[string]uint64),
	}
}

func (c *QuestionCache) Questions(ctx context.Context, category string) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[category]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(category, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[category]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		gen := c.generation[category]
		c.mu.RUnlock()

		questions, err := c.source.Questions(ctx, category)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation[category] == gen {
			c.cache[category] = cachedCategory{
				questions: questions,
				expiresAt: now.Add(c.ttlWithJitterLocked()),
			}
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Categories is not cached; the list is cheap and changes with every admin write.
func (c *QuestionCache) Categories(ctx context.Context) ([]string, error) {
	return c.source.Categories(ctx)
}

// Invalidate drops the cached entry for category.
func (c *QuestionCache) Invalidate(_ context.Context, category string) {
	c.mu.Lock()
	delete(c.cache, category)
	c.generation[category]++
	c.mu.Unlock()
	c.sf.Forget(category)
}

func (c *QuestionCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
