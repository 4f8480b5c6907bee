package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/momentum/internal/entity"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepository maintains the authoritative per-user activity counters.
// Increments are upserts so the first event for a user creates the row.
type CounterRepository interface {
	Increment(ctx context.Context, userID uuid.UUID, column string, delta int) error
	Get(ctx context.Context, userID uuid.UUID) (*entity.UserCounters, error)
	SetTotalAchievements(ctx context.Context, userID uuid.UUID, total int) error
	// RecentlyActive returns IDs of users whose counters changed since the
	// given time, newest first. Used to bound reconciliation scans.
	RecentlyActive(ctx context.Context, since time.Time, limit int) ([]uuid.UUID, error)
}

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

var incrementColumns = map[string]bool{
	"total_posts":              true,
	"total_reactions_given":    true,
	"total_reactions_received": true,
	"total_comments_made":      true,
}

func (r *counterRepository) Increment(ctx context.Context, userID uuid.UUID, column string, delta int) error {
	if !incrementColumns[column] {
		return apperror.ErrInvalidInput
	}
	counters := entity.UserCounters{UserID: userID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:            gorm.Expr(column+" + ?", delta),
			"last_updated_at": time.Now(),
		}),
	}).Create(&counters).Error
}

func (r *counterRepository) Get(ctx context.Context, userID uuid.UUID) (*entity.UserCounters, error) {
	var counters entity.UserCounters
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&counters).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A user with no events yet has all-zero counters.
			return &entity.UserCounters{UserID: userID}, nil
		}
		return nil, err
	}
	return &counters, nil
}

func (r *counterRepository) SetTotalAchievements(ctx context.Context, userID uuid.UUID, total int) error {
	counters := entity.UserCounters{UserID: userID, TotalAchievements: total}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_achievements": total,
			"last_updated_at":    time.Now(),
		}),
	}).Create(&counters).Error
}

func (r *counterRepository) RecentlyActive(ctx context.Context, since time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.UserCounters{}).
		Where("last_updated_at >= ?", since).
		Order("last_updated_at desc").
		Limit(limit).
		Pluck("user_id", &ids).Error
	return ids, err
}
