package repository

import (
	"context"

	"anoa.com/momentum/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository interface {
	// Upsert writes definitions keyed by their stable string ID. Reloading
	// the same set twice never duplicates a row.
	Upsert(ctx context.Context, defs []entity.Achievement) error
	FindActive(ctx context.Context) ([]entity.Achievement, error)
	Deactivate(ctx context.Context, id string) error
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) Upsert(ctx context.Context, defs []entity.Achievement) error {
	if len(defs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range defs {
			def := defs[i]
			badges := def.RewardBadges
			def.RewardBadges = nil

			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "description", "icon", "category",
					"requirement_type", "requirement_target", "reward_points",
					"tier", "is_repeatable", "max_completions", "is_active",
					"sort_order", "updated_at",
				}),
			}).Create(&def).Error
			if err != nil {
				return err
			}

			if len(badges) > 0 {
				if err := tx.Where("achievement_id = ?", def.ID).Delete(&entity.AchievementBadge{}).Error; err != nil {
					return err
				}
				for j := range badges {
					badges[j].AchievementID = def.ID
				}
				if err := tx.Create(&badges).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *catalogRepository) FindActive(ctx context.Context) ([]entity.Achievement, error) {
	var defs []entity.Achievement
	err := r.db.WithContext(ctx).
		Preload("RewardBadges").
		Where("is_active = ?", true).
		Order("category, sort_order").
		Find(&defs).Error
	return defs, err
}

func (r *catalogRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&entity.Achievement{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
