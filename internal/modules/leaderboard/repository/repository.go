package repository

import (
	"context"

	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Row is one scored user straight from the database, ordered and
// tie-broken by the query itself.
type Row struct {
	UserID    uuid.UUID `gorm:"column:user_id"`
	Username  string    `gorm:"column:username"`
	AvatarURL *string   `gorm:"column:avatar_url"`
	Score     int       `gorm:"column:score"`
}

// LeaderboardRepository computes rankings from source tables. All output
// here is derived data; dropping the cache and re-querying always works.
// Ties are broken by account age, older accounts first.
type LeaderboardRepository interface {
	TopByPoints(ctx context.Context, limit int) ([]Row, error)
	TopByStreak(ctx context.Context, limit int) ([]Row, error)
	TopByAchievements(ctx context.Context, limit int) ([]Row, error)
	TopByPosts(ctx context.Context, limit int) ([]Row, error)
	PointsRank(ctx context.Context, userID uuid.UUID) (rank int, score int, err error)
	StreakRank(ctx context.Context, userID uuid.UUID) (rank int, score int, err error)
	AchievementsRank(ctx context.Context, userID uuid.UUID) (rank int, score int, err error)
	PostsRank(ctx context.Context, userID uuid.UUID) (rank int, score int, err error)
	CountUsers(ctx context.Context) (int64, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) TopByPoints(ctx context.Context, limit int) ([]Row, error) {
	var rows []Row
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id AS user_id, users.username, users.avatar_url, users.points AS score").
		Order("users.points DESC, users.created_at ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *leaderboardRepository) TopByStreak(ctx context.Context, limit int) ([]Row, error) {
	var rows []Row
	err := r.db.WithContext(ctx).
		Table("streak_records").
		Select("users.id AS user_id, users.username, users.avatar_url, streak_records.current_streak AS score").
		Joins("JOIN users ON users.id = streak_records.user_id").
		Where("streak_records.current_streak > 0").
		Order("streak_records.current_streak DESC, users.created_at ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *leaderboardRepository) TopByAchievements(ctx context.Context, limit int) ([]Row, error) {
	var rows []Row
	err := r.db.WithContext(ctx).
		Table("user_counters").
		Select("users.id AS user_id, users.username, users.avatar_url, user_counters.total_achievements AS score").
		Joins("JOIN users ON users.id = user_counters.user_id").
		Where("user_counters.total_achievements > 0").
		Order("user_counters.total_achievements DESC, users.created_at ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *leaderboardRepository) TopByPosts(ctx context.Context, limit int) ([]Row, error) {
	var rows []Row
	err := r.db.WithContext(ctx).
		Table("user_counters").
		Select("users.id AS user_id, users.username, users.avatar_url, user_counters.total_posts AS score").
		Joins("JOIN users ON users.id = user_counters.user_id").
		Where("user_counters.total_posts > 0").
		Order("user_counters.total_posts DESC, users.created_at ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *leaderboardRepository) PointsRank(ctx context.Context, userID uuid.UUID) (int, int, error) {
	var row struct {
		Rank  int
		Score int
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT ranked.rank, ranked.score FROM (
			SELECT id, points AS score,
			       RANK() OVER (ORDER BY points DESC, created_at ASC) AS rank
			FROM users
		) ranked WHERE ranked.id = ?`, userID).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Rank == 0 {
		return 0, 0, apperror.ErrNotFound
	}
	return row.Rank, row.Score, nil
}

func (r *leaderboardRepository) StreakRank(ctx context.Context, userID uuid.UUID) (int, int, error) {
	var row struct {
		Rank  int
		Score int
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT ranked.rank, ranked.score FROM (
			SELECT streak_records.user_id, streak_records.current_streak AS score,
			       RANK() OVER (ORDER BY streak_records.current_streak DESC, users.created_at ASC) AS rank
			FROM streak_records JOIN users ON users.id = streak_records.user_id
		) ranked WHERE ranked.user_id = ?`, userID).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Rank == 0 {
		return 0, 0, apperror.ErrNotFound
	}
	return row.Rank, row.Score, nil
}

func (r *leaderboardRepository) AchievementsRank(ctx context.Context, userID uuid.UUID) (int, int, error) {
	var row struct {
		Rank  int
		Score int
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT ranked.rank, ranked.score FROM (
			SELECT user_counters.user_id, user_counters.total_achievements AS score,
			       RANK() OVER (ORDER BY user_counters.total_achievements DESC, users.created_at ASC) AS rank
			FROM user_counters JOIN users ON users.id = user_counters.user_id
		) ranked WHERE ranked.user_id = ?`, userID).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Rank == 0 {
		return 0, 0, apperror.ErrNotFound
	}
	return row.Rank, row.Score, nil
}

func (r *leaderboardRepository) PostsRank(ctx context.Context, userID uuid.UUID) (int, int, error) {
	var row struct {
		Rank  int
		Score int
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT ranked.rank, ranked.score FROM (
			SELECT user_counters.user_id, user_counters.total_posts AS score,
			       RANK() OVER (ORDER BY user_counters.total_posts DESC, users.created_at ASC) AS rank
			FROM user_counters JOIN users ON users.id = user_counters.user_id
		) ranked WHERE ranked.user_id = ?`, userID).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Rank == 0 {
		return 0, 0, apperror.ErrNotFound
	}
	return row.Rank, row.Score, nil
}

func (r *leaderboardRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("users").Count(&n).Error
	return n, err
}
