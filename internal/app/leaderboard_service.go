package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

const (
	// HistoryLimit caps how many sessions a player's history returns.
	HistoryLimit = 30
	// LeaderboardLimit is the number of ranked rows on the global leaderboard.
	LeaderboardLimit = 10
	// GuestUsername labels sessions whose owner no longer resolves.
	GuestUsername = "Guest"
)

// UsernameResolver maps user ids to display names. Unknown ids are simply absent from the result.
type UsernameResolver interface {
	UsernamesByID(ctx context.Context, ids []string) (map[string]string, error)
}

// LeaderboardCache stores the last computed leaderboard (in-memory, Redis).
type LeaderboardCache interface {
	GetLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, bool, error)
	SetLeaderboard(ctx context.Context, entries []domain.LeaderboardEntry) error
	InvalidateLeaderboard(ctx context.Context) error
}

// LeaderboardService serves read-only views over recorded sessions and pushes
// leaderboard snapshots to live subscribers.
type LeaderboardService struct {
	sessions SessionRepository
	users    UsernameResolver
	cache    LeaderboardCache
	logger   *slog.Logger

	sf         singleflight.Group
	generation atomic.Uint64
	feed       leaderboardFeed
}

// NewLeaderboardService wires the reader. cache may be nil to always read through.
func NewLeaderboardService(sessions SessionRepository, users UsernameResolver, cache LeaderboardCache, logger *slog.Logger) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardService{
		sessions: sessions,
		users:    users,
		cache:    cache,
		logger:   logger,
		feed:     leaderboardFeed{subscribers: make(map[chan []domain.LeaderboardEntry]struct{})},
	}
}

// History returns the owner's most recent sessions, newest first.
func (s *LeaderboardService) History(ctx context.Context, ownerID string) ([]domain.SessionSummary, error) {
	sessions, err := s.sessions.ListSessionsByOwner(ctx, ownerID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]domain.SessionSummary, len(sessions))
	for i, session := range sessions {
		out[i] = session.Summary()
	}
	return out, nil
}

// Leaderboard returns the ranked top sessions, served from cache when possible.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	if s.cache != nil {
		entries, ok, err := s.cache.GetLeaderboard(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "leaderboard cache read failed", "error", err)
		} else if ok {
			return entries, nil
		}
	}

	result, err, _ := s.sf.Do("leaderboard", func() (interface{}, error) {
		gen := s.generation.Load()
		entries, err := s.build(ctx)
		if err != nil {
			return nil, err
		}
		// A session recorded while building makes this snapshot stale; don't cache it.
		if s.cache != nil && gen == s.generation.Load() {
			if err := s.cache.SetLeaderboard(ctx, entries); err != nil {
				s.logger.WarnContext(ctx, "leaderboard cache write failed", "error", err)
			}
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

func (s *LeaderboardService) build(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	sessions, err := s.sessions.TopSessions(ctx, LeaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("top sessions: %w", err)
	}

	ids := make([]string, 0, len(sessions))
	seen := make(map[string]struct{}, len(sessions))
	for _, session := range sessions {
		if session.OwnerID == "" {
			continue
		}
		if _, dup := seen[session.OwnerID]; dup {
			continue
		}
		seen[session.OwnerID] = struct{}{}
		ids = append(ids, session.OwnerID)
	}
	names := map[string]string{}
	if len(ids) > 0 {
		names, err = s.users.UsernamesByID(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve usernames: %w", err)
		}
	}

	entries := make([]domain.LeaderboardEntry, len(sessions))
	for i, session := range sessions {
		username, ok := names[session.OwnerID]
		if !ok {
			username = GuestUsername
		}
		entries[i] = domain.LeaderboardEntry{
			Rank:           i + 1,
			Username:       username,
			Score:          session.Score,
			TotalQuestions: session.TotalQuestions,
			CreatedAt:      session.CreatedAt,
		}
	}
	return entries, nil
}

// SessionRecorded drops the cached leaderboard and pushes a fresh one to subscribers.
func (s *LeaderboardService) SessionRecorded(ctx context.Context) {
	s.generation.Add(1)
	s.sf.Forget("leaderboard")
	if s.cache != nil {
		if err := s.cache.InvalidateLeaderboard(ctx); err != nil {
			s.logger.WarnContext(ctx, "leaderboard cache invalidation failed", "error", err)
		}
	}
	if !s.feed.hasSubscribers() {
		return
	}
	entries, err := s.Leaderboard(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "leaderboard refresh failed", "error", err)
		return
	}
	s.feed.publish(entries)
}

// Subscribe returns a channel that receives the current leaderboard and then
// every refresh. The caller must invoke the returned cancel function to avoid leaks.
func (s *LeaderboardService) Subscribe(ctx context.Context) (<-chan []domain.LeaderboardEntry, func(), error) {
	initial, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.subscribe(initial)
	return ch, cancel, nil
}

type leaderboardFeed struct {
	mu          sync.Mutex
	subscribers map[chan []domain.LeaderboardEntry]struct{}
}

func (f *leaderboardFeed) subscribe(initial []domain.LeaderboardEntry) (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	ch <- initial
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *leaderboardFeed) hasSubscribers() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers) > 0
}

func (f *leaderboardFeed) publish(entries []domain.LeaderboardEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- entries:
		default:
			// Slow subscriber: drop its oldest snapshot so submitters never block.
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}
