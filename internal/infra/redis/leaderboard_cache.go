package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/domain"
)

// LeaderboardCache stores the leaderboard snapshot as JSON so every instance
// behind a load balancer serves the same ranking.
// Stored as: SET leaderboard:top <json> EX ttl
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const leaderboardKey = "leaderboard:top"

func (c *LeaderboardCache) GetLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get leaderboard: %w", err)
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("decode leaderboard: %w", err)
	}
	return entries, true, nil
}

func (c *LeaderboardCache) SetLeaderboard(ctx context.Context, entries []domain.LeaderboardEntry) error {
	if c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}
	return c.client.Set(ctx, leaderboardKey, data, c.ttlWithJitter()).Err()
}

func (c *LeaderboardCache) InvalidateLeaderboard(ctx context.Context) error {
	return c.client.Del(ctx, leaderboardKey).Err()
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
