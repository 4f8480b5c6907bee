package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/momentum/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakRepository stores per-user streak state and the daily history.
type StreakRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, timezone string) (*entity.StreakRecord, error)
	Get(ctx context.Context, userID uuid.UUID) (*entity.StreakRecord, error)
	Save(ctx context.Context, rec *entity.StreakRecord) error
	// RecordDay upserts one user-local calendar day into the history.
	// Re-recording the same day only bumps its activity count.
	RecordDay(ctx context.Context, day *entity.StreakDay) error
	History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.StreakDay, error)
	// ActiveBefore returns streaks that are nonzero but whose last activity
	// is older than the cutoff. Break reconciliation scans these.
	ActiveBefore(ctx context.Context, cutoff time.Time, limit int) ([]entity.StreakRecord, error)
	// CountAtLeast counts users whose current streak meets the threshold.
	CountAtLeast(ctx context.Context, days int) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type streakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, timezone string) (*entity.StreakRecord, error) {
	rec := entity.StreakRecord{UserID: userID, Timezone: timezone}
	err := r.db.WithContext(ctx).
		Where(entity.StreakRecord{UserID: userID}).
		Attrs(entity.StreakRecord{Timezone: timezone}).
		FirstOrCreate(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *streakRepository) Get(ctx context.Context, userID uuid.UUID) (*entity.StreakRecord, error) {
	var rec entity.StreakRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.StreakRecord{UserID: userID, Timezone: "UTC"}, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *streakRepository) Save(ctx context.Context, rec *entity.StreakRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *streakRepository) RecordDay(ctx context.Context, day *entity.StreakDay) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"activity_count": gorm.Expr("streak_days.activity_count + 1"),
		}),
	}).Create(day).Error
}

func (r *streakRepository) History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.StreakDay, error) {
	var days []entity.StreakDay
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date asc").
		Find(&days).Error
	return days, err
}

func (r *streakRepository) ActiveBefore(ctx context.Context, cutoff time.Time, limit int) ([]entity.StreakRecord, error) {
	var recs []entity.StreakRecord
	err := r.db.WithContext(ctx).
		Where("current_streak > 0 AND last_activity_date < ?", cutoff).
		Order("last_activity_date asc").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

func (r *streakRepository) CountAtLeast(ctx context.Context, days int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.StreakRecord{}).
		Where("current_streak >= ?", days).
		Count(&n).Error
	return n, err
}

func (r *streakRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.StreakRecord{}).Count(&n).Error
	return n, err
}
