package repository

import (
	"context"

	"anoa.com/momentum/internal/entity"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository appends reward transactions and keeps the cached
// user balance in step inside the same database transaction.
type LedgerRepository interface {
	// CreateWithBalance appends the row and applies its signed amount to
	// users.points atomically. Negative amounts are fail-closed: the balance
	// update is conditional on points >= -amount and the whole transaction
	// rolls back with ErrInsufficientBalance when it does not hold.
	CreateWithBalance(ctx context.Context, txn *entity.RewardTransaction) error
	SumByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.RewardTransaction, error)
	AddBadge(ctx context.Context, userID, badgeID uuid.UUID, count int) error
	BadgesByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error)
	// SetBalance overwrites the cached balance. Reconciliation only.
	SetBalance(ctx context.Context, userID uuid.UUID, points int64) error
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateWithBalance(ctx context.Context, txn *entity.RewardTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance := tx.Model(&entity.User{}).Where("id = ?", txn.UserID)
		if txn.Amount < 0 {
			balance = balance.Where("points >= ?", -txn.Amount)
		}
		res := balance.Update("points", gorm.Expr("points + ?", txn.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if txn.Amount < 0 {
				return apperror.ErrInsufficientBalance
			}
			return apperror.ErrNotFound
		}
		return tx.Create(txn).Error
	})
}

func (r *ledgerRepository) SumByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&entity.RewardTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *ledgerRepository) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.RewardTransaction, error) {
	var rows []entity.RewardTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (r *ledgerRepository) AddBadge(ctx context.Context, userID, badgeID uuid.UUID, count int) error {
	ub := entity.UserBadge{UserID: userID, BadgeID: badgeID, Count: count}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count": gorm.Expr("user_badges.count + ?", count),
		}),
	}).Create(&ub).Error
}

func (r *ledgerRepository) BadgesByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error) {
	var rows []entity.UserBadge
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Find(&rows).Error
	return rows, err
}

func (r *ledgerRepository) SetBalance(ctx context.Context, userID uuid.UUID, points int64) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", userID).
		Update("points", points).Error
}
