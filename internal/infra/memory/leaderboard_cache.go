package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// LeaderboardCache keeps the last leaderboard snapshot for a TTL to avoid repeated DB hits.
type LeaderboardCache struct {
	ttl   time.Duration
	clock func() time.Time
	rnd   *rand.Rand

	mu        sync.Mutex
	entries   []domain.LeaderboardEntry
	expiresAt time.Time
	valid     bool
}

func NewLeaderboardCache(ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *LeaderboardCache) GetLeaderboard(_ context.Context) ([]domain.LeaderboardEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || !c.expiresAt.After(c.clock()) {
		return nil, false, nil
	}
	return cloneEntries(c.entries), true, nil
}

func (c *LeaderboardCache) SetLeaderboard(_ context.Context, entries []domain.LeaderboardEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl <= 0 {
		return nil
	}
	c.entries = cloneEntries(entries)
	c.expiresAt = c.clock().Add(c.ttlWithJitterLocked())
	c.valid = true
	return nil
}

func (c *LeaderboardCache) InvalidateLeaderboard(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.valid = false
	return nil
}

func (c *LeaderboardCache) ttlWithJitterLocked() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func cloneEntries(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, len(entries))
	copy(out, entries)
	return out
}
