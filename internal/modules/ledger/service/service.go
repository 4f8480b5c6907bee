package service

import (
	"context"

	"anoa.com/momentum/internal/entity"
	"anoa.com/momentum/pkg/apperror"
	ledgerRepo "anoa.com/momentum/internal/modules/ledger/repository"
	"github.com/google/uuid"
)

// Ledger is the only way points move. Every grant and deduct is one
// append-only transaction row plus the matching cached-balance update.
type Ledger interface {
	Grant(ctx context.Context, userID uuid.UUID, amount int, txType entity.TransactionType, reason string, opts ...TxOption) (*entity.RewardTransaction, error)
	Deduct(ctx context.Context, userID uuid.UUID, amount int, txType entity.TransactionType, reason string, opts ...TxOption) (*entity.RewardTransaction, error)
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.RewardTransaction, error)
	GrantBadge(ctx context.Context, userID, badgeID uuid.UUID, count int) error
	Badges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error)
}

// TxOption attaches optional references to a ledger row.
type TxOption func(*entity.RewardTransaction)

func WithAchievement(id string) TxOption {
	return func(t *entity.RewardTransaction) { t.AchievementID = &id }
}

func WithBadge(id uuid.UUID) TxOption {
	return func(t *entity.RewardTransaction) { t.BadgeID = &id }
}

func WithRelatedUser(id uuid.UUID) TxOption {
	return func(t *entity.RewardTransaction) { t.RelatedUserID = &id }
}

func WithGift(id uint) TxOption {
	return func(t *entity.RewardTransaction) { t.GiftID = &id }
}

type ledgerService struct {
	repo ledgerRepo.LedgerRepository
}

func NewLedgerService(repo ledgerRepo.LedgerRepository) Ledger {
	return &ledgerService{repo: repo}
}

func (s *ledgerService) Grant(ctx context.Context, userID uuid.UUID, amount int, txType entity.TransactionType, reason string, opts ...TxOption) (*entity.RewardTransaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidInput
	}
	return s.write(ctx, userID, amount, txType, reason, opts)
}

func (s *ledgerService) Deduct(ctx context.Context, userID uuid.UUID, amount int, txType entity.TransactionType, reason string, opts ...TxOption) (*entity.RewardTransaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidInput
	}
	return s.write(ctx, userID, -amount, txType, reason, opts)
}

func (s *ledgerService) write(ctx context.Context, userID uuid.UUID, amount int, txType entity.TransactionType, reason string, opts []TxOption) (*entity.RewardTransaction, error) {
	txn := &entity.RewardTransaction{
		UserID: userID,
		Type:   txType,
		Amount: amount,
		Reason: reason,
	}
	for _, opt := range opts {
		opt(txn)
	}
	if err := s.repo.CreateWithBalance(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *ledgerService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.SumByUserID(ctx, userID)
}

func (s *ledgerService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.RewardTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.History(ctx, userID, limit, offset)
}

func (s *ledgerService) GrantBadge(ctx context.Context, userID, badgeID uuid.UUID, count int) error {
	if count <= 0 {
		count = 1
	}
	return s.repo.AddBadge(ctx, userID, badgeID, count)
}

func (s *ledgerService) Badges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error) {
	return s.repo.BadgesByUser(ctx, userID)
}
