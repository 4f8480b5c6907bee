package repository

import (
	"context"
	"errors"

	"anoa.com/momentum/internal/entity"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GiftRepository interface {
	Create(ctx context.Context, gift *entity.BadgeGift) error
	ListSent(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.BadgeGift, error)
	ListReceived(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.BadgeGift, error)
	FindBadge(ctx context.Context, badgeID uuid.UUID) (*entity.Badge, error)
	// GiftableBadges lists active badges inside the allowed cost band.
	GiftableBadges(ctx context.Context, minCost, maxCost int) ([]entity.Badge, error)
}

type giftRepository struct {
	db *gorm.DB
}

func NewGiftRepository(db *gorm.DB) GiftRepository {
	return &giftRepository{db: db}
}

func (r *giftRepository) Create(ctx context.Context, gift *entity.BadgeGift) error {
	return r.db.WithContext(ctx).Create(gift).Error
}

func (r *giftRepository) ListSent(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.BadgeGift, error) {
	var gifts []entity.BadgeGift
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("from_user_id = ?", userID).
		Order("sent_at desc").
		Limit(limit).Offset(offset).
		Find(&gifts).Error
	return gifts, err
}

func (r *giftRepository) ListReceived(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.BadgeGift, error) {
	var gifts []entity.BadgeGift
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("to_user_id = ?", userID).
		Order("sent_at desc").
		Limit(limit).Offset(offset).
		Find(&gifts).Error
	return gifts, err
}

func (r *giftRepository) FindBadge(ctx context.Context, badgeID uuid.UUID) (*entity.Badge, error) {
	var badge entity.Badge
	err := r.db.WithContext(ctx).First(&badge, "id = ?", badgeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &badge, nil
}

func (r *giftRepository) GiftableBadges(ctx context.Context, minCost, maxCost int) ([]entity.Badge, error) {
	var badges []entity.Badge
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND cost >= ? AND cost <= ?", true, minCost, maxCost).
		Order("cost asc").
		Find(&badges).Error
	return badges, err
}
