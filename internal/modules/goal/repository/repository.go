package repository

import (
	"context"
	"errors"

	"anoa.com/momentum/internal/entity"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GoalRepository interface {
	Create(ctx context.Context, goal *entity.Goal) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Goal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Goal, error)
	Save(ctx context.Context, goal *entity.Goal) error
	Delete(ctx context.Context, id uuid.UUID) error
	// AverageProgress is the mean progress over a user's goals, 0 when the
	// user has none. Feeds goal-based achievement evaluation.
	AverageProgress(ctx context.Context, userID uuid.UUID) (float64, error)
}

type goalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *entity.Goal) error {
	return r.db.WithContext(ctx).Create(goal).Error
}

func (r *goalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Goal, error) {
	var goal entity.Goal
	err := r.db.WithContext(ctx).First(&goal, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &goal, nil
}

func (r *goalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Goal, error) {
	var goals []entity.Goal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&goals).Error
	return goals, err
}

func (r *goalRepository) Save(ctx context.Context, goal *entity.Goal) error {
	return r.db.WithContext(ctx).Save(goal).Error
}

func (r *goalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.Goal{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *goalRepository) AverageProgress(ctx context.Context, userID uuid.UUID) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Model(&entity.Goal{}).
		Where("user_id = ?", userID).
		Select("COALESCE(AVG(progress), 0)").
		Scan(&avg).Error
	return avg, err
}
