package service

import (
	"context"
	"errors"
	"testing"
	"time"

	leaderboardRepo "anoa.com/momentum/internal/modules/leaderboard/repository"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaderboardRepo struct {
	rows    map[string][]leaderboardRepo.Row
	ranks   map[uuid.UUID]int
	scores  map[uuid.UUID]int
	total   int64
	failing bool
	queries int
}

func newFakeLeaderboardRepo() *fakeLeaderboardRepo {
	return &fakeLeaderboardRepo{
		rows:   make(map[string][]leaderboardRepo.Row),
		ranks:  make(map[uuid.UUID]int),
		scores: make(map[uuid.UUID]int),
	}
}

func (f *fakeLeaderboardRepo) top(lbType string, limit int) ([]leaderboardRepo.Row, error) {
	f.queries++
	if f.failing {
		return nil, errors.New("database unavailable")
	}
	rows := f.rows[lbType]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeLeaderboardRepo) TopByPoints(ctx context.Context, limit int) ([]leaderboardRepo.Row, error) {
	return f.top(TypePoints, limit)
}

func (f *fakeLeaderboardRepo) TopByStreak(ctx context.Context, limit int) ([]leaderboardRepo.Row, error) {
	return f.top(TypeStreak, limit)
}

func (f *fakeLeaderboardRepo) TopByAchievements(ctx context.Context, limit int) ([]leaderboardRepo.Row, error) {
	return f.top(TypeAchievements, limit)
}

func (f *fakeLeaderboardRepo) TopByPosts(ctx context.Context, limit int) ([]leaderboardRepo.Row, error) {
	return f.top(TypePosts, limit)
}

func (f *fakeLeaderboardRepo) rank(userID uuid.UUID) (int, int, error) {
	rank, ok := f.ranks[userID]
	if !ok {
		return 0, 0, apperror.ErrNotFound
	}
	return rank, f.scores[userID], nil
}

func (f *fakeLeaderboardRepo) PointsRank(ctx context.Context, userID uuid.UUID) (int, int, error) {
	return f.rank(userID)
}

func (f *fakeLeaderboardRepo) StreakRank(ctx context.Context, userID uuid.UUID) (int, int, error) {
	return f.rank(userID)
}

func (f *fakeLeaderboardRepo) AchievementsRank(ctx context.Context, userID uuid.UUID) (int, int, error) {
	return f.rank(userID)
}

func (f *fakeLeaderboardRepo) PostsRank(ctx context.Context, userID uuid.UUID) (int, int, error) {
	return f.rank(userID)
}

func (f *fakeLeaderboardRepo) CountUsers(ctx context.Context) (int64, error) {
	return f.total, nil
}

func seedRows(n int) []leaderboardRepo.Row {
	rows := make([]leaderboardRepo.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, leaderboardRepo.Row{
			UserID:   uuid.New(),
			Username: "user",
			Score:    1000 - i,
		})
	}
	return rows
}

func TestGetLeaderboardPositionsAreStable(t *testing.T) {
	repo := newFakeLeaderboardRepo()
	repo.rows[TypePoints] = seedRows(5)
	svc := NewLeaderboardService(repo, nil, time.Minute, 100)

	entries, err := svc.GetLeaderboard(context.Background(), TypePoints, 10)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	for i, e := range entries {
		assert.Equal(t, i+1, e.Position)
	}
	assert.Equal(t, 1000, entries[0].Score)

	// Same inputs, same output.
	again, err := svc.GetLeaderboard(context.Background(), TypePoints, 10)
	require.NoError(t, err)
	assert.Equal(t, entries, again)
}

func TestGetLeaderboardClipsToLimit(t *testing.T) {
	repo := newFakeLeaderboardRepo()
	repo.rows[TypePoints] = seedRows(50)
	svc := NewLeaderboardService(repo, nil, time.Minute, 100)

	entries, err := svc.GetLeaderboard(context.Background(), TypePoints, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

func TestGetLeaderboardRejectsUnknownType(t *testing.T) {
	svc := NewLeaderboardService(newFakeLeaderboardRepo(), nil, time.Minute, 100)

	_, err := svc.GetLeaderboard(context.Background(), "reputation", 10)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestGetLeaderboardServesSnapshotWhenStorageFails(t *testing.T) {
	repo := newFakeLeaderboardRepo()
	repo.rows[TypeStreak] = seedRows(3)
	svc := NewLeaderboardService(repo, nil, time.Minute, 100)

	// Warm the in-process snapshot.
	entries, err := svc.GetLeaderboard(context.Background(), TypeStreak, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	repo.failing = true
	stale, err := svc.GetLeaderboard(context.Background(), TypeStreak, 10)
	require.NoError(t, err)
	assert.Equal(t, entries, stale)
}

func TestGetLeaderboardFailsWithoutSnapshot(t *testing.T) {
	repo := newFakeLeaderboardRepo()
	repo.failing = true
	svc := NewLeaderboardService(repo, nil, time.Minute, 100)

	_, err := svc.GetLeaderboard(context.Background(), TypePoints, 10)
	assert.Error(t, err)
}

func TestRebuildRefreshesAllTypes(t *testing.T) {
	repo := newFakeLeaderboardRepo()
	repo.rows[TypePoints] = seedRows(2)
	repo.rows[TypeStreak] = seedRows(2)
	repo.rows[TypeAchievements] = seedRows(2)
	repo.rows[TypePosts] = seedRows(2)
	svc := NewLeaderboardService(repo, nil, time.Minute, 100)

	require.NoError(t, svc.Rebuild(context.Background()))
	assert.Equal(t, len(Types), repo.queries)

	// After a rebuild a storage outage is invisible to readers.
	repo.failing = true
	for _, lbType := range Types {
		entries, err := svc.GetLeaderboard(context.Background(), lbType, 10)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	}
}

func TestGetUserRankPercentile(t *testing.T) {
	repo := newFakeLeaderboardRepo()
	userID := uuid.New()
	repo.ranks[userID] = 5
	repo.scores[userID] = 420
	repo.total = 100
	svc := NewLeaderboardService(repo, nil, time.Minute, 100)

	standing, err := svc.GetUserRank(context.Background(), TypePoints, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, standing.Rank)
	assert.Equal(t, 420, standing.Score)
	assert.InDelta(t, 96.0, standing.Percentile, 0.01)
}

func TestGetUserRankUnknownUser(t *testing.T) {
	svc := NewLeaderboardService(newFakeLeaderboardRepo(), nil, time.Minute, 100)

	_, err := svc.GetUserRank(context.Background(), TypePoints, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
