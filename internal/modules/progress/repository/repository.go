package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/momentum/internal/entity"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressRepository stores per-user achievement progress rows. Completion
// uses a conditional update keyed on completion_count so two concurrent
// evaluations of the same achievement can never both grant it.
type ProgressRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, def entity.Achievement) (*entity.UserAchievement, error)
	Get(ctx context.Context, userID uuid.UUID, achievementID string) (*entity.UserAchievement, error)
	Save(ctx context.Context, ua *entity.UserAchievement) error
	// Complete marks the row completed only if nobody else has since the
	// caller read it. Returns false when the guard loses the race.
	Complete(ctx context.Context, id uint, expectedCount int) (bool, error)
	// RevertCompletion undoes a Complete after a failed reward grant.
	RevertCompletion(ctx context.Context, id uint, restoredCount int) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserAchievement, error)
	CountCompleted(ctx context.Context, userID uuid.UUID) (int64, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, def entity.Achievement) (*entity.UserAchievement, error) {
	ua := entity.UserAchievement{
		UserID:         userID,
		AchievementID:  def.ID,
		ProgressTarget: def.RequirementTarget,
	}
	err := r.db.WithContext(ctx).
		Where(entity.UserAchievement{UserID: userID, AchievementID: def.ID}).
		Attrs(entity.UserAchievement{ProgressTarget: def.RequirementTarget}).
		FirstOrCreate(&ua).Error
	if err != nil {
		return nil, err
	}
	return &ua, nil
}

func (r *progressRepository) Get(ctx context.Context, userID uuid.UUID, achievementID string) (*entity.UserAchievement, error) {
	var ua entity.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&ua).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &ua, nil
}

func (r *progressRepository) Save(ctx context.Context, ua *entity.UserAchievement) error {
	return r.db.WithContext(ctx).Save(ua).Error
}

func (r *progressRepository) Complete(ctx context.Context, id uint, expectedCount int) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&entity.UserAchievement{}).
		Where("id = ? AND completion_count = ?", id, expectedCount).
		Updates(map[string]interface{}{
			"is_completed":     true,
			"completed_at":     now,
			"completion_count": expectedCount + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *progressRepository) RevertCompletion(ctx context.Context, id uint, restoredCount int) error {
	return r.db.WithContext(ctx).Model(&entity.UserAchievement{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_completed":     false,
			"completed_at":     nil,
			"completion_count": restoredCount,
		}).Error
}

func (r *progressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserAchievement, error) {
	var rows []entity.UserAchievement
	err := r.db.WithContext(ctx).
		Preload("Achievement").
		Preload("Achievement.RewardBadges").
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&rows).Error
	return rows, err
}

func (r *progressRepository) CountCompleted(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.UserAchievement{}).
		Where("user_id = ? AND completion_count > 0", userID).
		Count(&n).Error
	return n, err
}
