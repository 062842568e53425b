package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"prepify-quiz/internal/domain"
	"prepify-quiz/internal/quiz"
)

// QuestionCache caches each category's questions in Redis (hash per category) and
// falls back to the source on cache miss.
// Questions are stored as: HSET quiz:category:{category}:questions {questionID} {json}
// Invalidate bumps quiz:category:{category}:generation; a load that started under an
// older generation does not write its snapshot.
type QuestionCache struct {
	client *redis.Client
	source quiz.QuestionSource
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, source quiz.QuestionSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) Questions(ctx context.Context, category string) ([]domain.Question, error) {
	key := c.questionsKey(category)

	if cached, ok := c.fromCache(ctx, key); ok {
		return cached, nil
	}

	result, err, _ := c.sf.Do(category, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, ok := c.fromCache(ctx, key); ok {
			return cached, nil
		}

		genKey := c.generationKey(category)
		gen, err := c.generation(ctx, c.client, genKey)
		if err != nil {
			log.Printf("read generation for %s: %v", category, err)
		}

		questions, err := c.source.Questions(ctx, category)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return questions, nil
		}

		fields := make(map[string]interface{}, len(questions))
		for _, q := range questions {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, err
			}
			fields[strconv.FormatInt(q.ID, 10)] = raw
		}
		ttl := c.ttlWithJitter()

		err = c.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := c.generation(ctx, tx, genKey)
			if err != nil {
				return err
			}
			if current != gen {
				return errStaleLoad
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, fields)
				if ttl > 0 {
					pipe.Expire(ctx, key, ttl)
				}
				return nil
			})
			return err
		}, genKey)
		if err != nil && !errors.Is(err, errStaleLoad) {
			log.Printf("cache questions for %s: %v", category, err)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Categories always goes to the source.
func (c *QuestionCache) Categories(ctx context.Context) ([]string, error) {
	return c.source.Categories(ctx)
}

// Invalidate drops the cached hash for category and moves its generation on.
func (c *QuestionCache) Invalidate(ctx context.Context, category string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(category))
		pipe.Del(ctx, c.questionsKey(category))
		return nil
	})
	if err != nil {
		log.Printf("invalidate questions for %s: %v", category, err)
	}
	c.sf.Forget(category)
}

var errStaleLoad = errors.New("question load raced an invalidation")

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *QuestionCache) generation(ctx context.Context, cmd getter, key string) (int64, error) {
	gen, err := cmd.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *QuestionCache) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	questions := make([]domain.Question, 0, len(fields))
	for _, raw := range fields {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			// a corrupt entry means reload the whole category
			return nil, false
		}
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, true
}

func (c *QuestionCache) questionsKey(category string) string {
	return "quiz:category:" + category + ":questions"
}

func (c *QuestionCache) generationKey(category string) string {
	return "quiz:category:" + category + ":generation"
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
