// Package redis provides a read-through cache for quiz definitions in front
// of any quiz store backend. Definitions are read-mostly (every viewer of an
// event fetches one) and only change on replacement, so a short TTL plus
// invalidation on create keeps the backing store quiet.
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"lecture-quiz-service/internal/app"
	"lecture-quiz-service/internal/domain"
)

// QuizCache decorates a QuizStore, caching GetQuizDefinition results per
// event id. Cache failures are never fatal; the store remains the source of
// truth and every miss or Redis error falls through to it.
type QuizCache struct {
	next   app.QuizStore
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, next app.QuizStore, ttl time.Duration) *QuizCache {
	return &QuizCache{
		next:   next,
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuizInfo(ctx context.Context, eventID string) (domain.QuizInfo, error) {
	return c.next.GetQuizInfo(ctx, eventID)
}

func (c *QuizCache) GetQuizDefinition(ctx context.Context, eventID string) (*domain.Quiz, error) {
	key := c.key(eventID)

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quiz domain.Quiz
		if err := json.Unmarshal(data, &quiz); err == nil {
			return &quiz, nil
		}
		// poisoned entry, drop it and reload
		_ = c.client.Del(ctx, key).Err()
	}

	result, err, _ := c.sf.Do(eventID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var quiz domain.Quiz
			if err := json.Unmarshal(data, &quiz); err == nil {
				return &quiz, nil
			}
		}

		quiz, err := c.next.GetQuizDefinition(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(quiz); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Quiz), nil
}

// CreateQuiz delegates and drops the cached definition so the replacement
// becomes visible immediately.
func (c *QuizCache) CreateQuiz(ctx context.Context, eventID string, input domain.QuizInput, userID string) (*domain.Quiz, error) {
	quiz, err := c.next.CreateQuiz(ctx, eventID, input, userID)
	if err != nil {
		return nil, err
	}
	_ = c.client.Del(ctx, c.key(eventID)).Err()
	return quiz, nil
}

// SubmitQuiz does not touch the cache; submissions never change a
// definition.
func (c *QuizCache) SubmitQuiz(ctx context.Context, eventID string, input domain.AnswersInput, userID string) (*domain.SubmissionResult, error) {
	return c.next.SubmitQuiz(ctx, eventID, input, userID)
}

func (c *QuizCache) key(eventID string) string {
	return "quiz:def:" + eventID
}

// ttlWithJitter spreads expirations by up to 10% to avoid herds.
func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
