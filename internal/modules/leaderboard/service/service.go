package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	leaderboardDto "anoa.com/momentum/internal/modules/leaderboard/dto"
	leaderboardRepo "anoa.com/momentum/internal/modules/leaderboard/repository"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Leaderboard types.
const (
	TypePoints       = "points"
	TypeStreak       = "streak"
	TypeAchievements = "achievements"
	TypePosts        = "posts"
)

var Types = []string{TypePoints, TypeStreak, TypeAchievements, TypePosts}

type LeaderboardService interface {
	// GetLeaderboard serves the Redis-cached ranking, querying the database
	// on a miss. When both Redis and the database fail it falls back to the
	// last snapshot this process served, so reads degrade instead of 500ing.
	GetLeaderboard(ctx context.Context, lbType string, limit int) ([]leaderboardDto.Entry, error)
	GetUserRank(ctx context.Context, lbType string, userID uuid.UUID) (*leaderboardDto.Standing, error)
	// Rebuild recomputes every leaderboard and refreshes the cache.
	Rebuild(ctx context.Context) error
	// Invalidate drops the cached rankings so the next read recomputes.
	Invalidate(ctx context.Context)
}

type leaderboardService struct {
	repo        leaderboardRepo.LeaderboardRepository
	redisClient *redis.Client
	ttl         time.Duration
	maxEntries  int

	mu       sync.RWMutex
	lastGood map[string][]leaderboardDto.Entry
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, redisClient *redis.Client, ttl time.Duration, maxEntries int) LeaderboardService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &leaderboardService{
		repo:        repo,
		redisClient: redisClient,
		ttl:         ttl,
		maxEntries:  maxEntries,
		lastGood:    make(map[string][]leaderboardDto.Entry),
	}
}

func cacheKey(lbType string) string {
	return fmt.Sprintf("leaderboard:%s", lbType)
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, lbType string, limit int) ([]leaderboardDto.Entry, error) {
	if !validType(lbType) {
		return nil, apperror.ErrInvalidInput
	}
	if limit <= 0 || limit > s.maxEntries {
		limit = s.maxEntries
	}

	if cached, ok := s.fromCache(ctx, lbType); ok {
		return clip(cached, limit), nil
	}

	entries, err := s.compute(ctx, lbType)
	if err != nil {
		// Serve the last snapshot this process saw rather than failing.
		s.mu.RLock()
		snapshot, ok := s.lastGood[lbType]
		s.mu.RUnlock()
		if ok {
			log.Printf("leaderboard: serving stale %s snapshot: %v", lbType, err)
			return clip(snapshot, limit), nil
		}
		return nil, err
	}

	s.store(ctx, lbType, entries)
	return clip(entries, limit), nil
}

func (s *leaderboardService) GetUserRank(ctx context.Context, lbType string, userID uuid.UUID) (*leaderboardDto.Standing, error) {
	var (
		rank, score int
		err         error
	)
	switch lbType {
	case TypePoints:
		rank, score, err = s.repo.PointsRank(ctx, userID)
	case TypeStreak:
		rank, score, err = s.repo.StreakRank(ctx, userID)
	case TypeAchievements:
		rank, score, err = s.repo.AchievementsRank(ctx, userID)
	case TypePosts:
		rank, score, err = s.repo.PostsRank(ctx, userID)
	default:
		return nil, apperror.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	standing := &leaderboardDto.Standing{
		Type:  lbType,
		Rank:  rank,
		Score: score,
	}
	if total > 0 {
		standing.Percentile = float64(total-int64(rank)+1) / float64(total) * 100
	}
	return standing, nil
}

func (s *leaderboardService) Rebuild(ctx context.Context) error {
	for _, lbType := range Types {
		entries, err := s.compute(ctx, lbType)
		if err != nil {
			return fmt.Errorf("rebuild %s leaderboard: %w", lbType, err)
		}
		s.store(ctx, lbType, entries)
	}
	return nil
}

func (s *leaderboardService) Invalidate(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	keys := make([]string, 0, len(Types))
	for _, lbType := range Types {
		keys = append(keys, cacheKey(lbType))
	}
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		log.Printf("leaderboard: invalidate cache: %v", err)
	}
}

func (s *leaderboardService) compute(ctx context.Context, lbType string) ([]leaderboardDto.Entry, error) {
	var (
		rows []leaderboardRepo.Row
		err  error
	)
	switch lbType {
	case TypePoints:
		rows, err = s.repo.TopByPoints(ctx, s.maxEntries)
	case TypeStreak:
		rows, err = s.repo.TopByStreak(ctx, s.maxEntries)
	case TypeAchievements:
		rows, err = s.repo.TopByAchievements(ctx, s.maxEntries)
	case TypePosts:
		rows, err = s.repo.TopByPosts(ctx, s.maxEntries)
	default:
		return nil, apperror.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboardDto.Entry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, leaderboardDto.Entry{
			Position:  i + 1,
			UserID:    row.UserID.String(),
			Username:  row.Username,
			AvatarURL: row.AvatarURL,
			Score:     row.Score,
		})
	}
	return entries, nil
}

func (s *leaderboardService) fromCache(ctx context.Context, lbType string) ([]leaderboardDto.Entry, bool) {
	if s.redisClient == nil {
		return nil, false
	}
	raw, err := s.redisClient.Get(ctx, cacheKey(lbType)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []leaderboardDto.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *leaderboardService) store(ctx context.Context, lbType string, entries []leaderboardDto.Entry) {
	s.mu.Lock()
	s.lastGood[lbType] = entries
	s.mu.Unlock()

	if s.redisClient == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, cacheKey(lbType), raw, s.ttl).Err(); err != nil {
		log.Printf("leaderboard: cache %s: %v", lbType, err)
	}
}

func validType(lbType string) bool {
	for _, t := range Types {
		if t == lbType {
			return true
		}
	}
	return false
}

func clip(entries []leaderboardDto.Entry, limit int) []leaderboardDto.Entry {
	if len(entries) <= limit {
		return entries
	}
	return entries[:limit]
}
