package service

import (
	"context"
	"log"
	"time"

	counterRepo "anoa.com/momentum/internal/modules/counter/repository"
	ledgerRepo "anoa.com/momentum/internal/modules/ledger/repository"
	progressRepo "anoa.com/momentum/internal/modules/progress/repository"
	"anoa.com/momentum/internal/entity"
	"github.com/google/uuid"
)

// Counters exposes the authoritative activity counters and the
// reconciliation pass that re-derives cached values from source rows.
type Counters interface {
	RecordPost(ctx context.Context, userID uuid.UUID) error
	RecordReactionGiven(ctx context.Context, giver uuid.UUID) error
	RecordReactionReceived(ctx context.Context, receiver uuid.UUID) error
	RecordComment(ctx context.Context, userID uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID) (*entity.UserCounters, error)
	// Reconcile recomputes users.points from the ledger sum and
	// total_achievements from completed progress rows for users active
	// since the given time. Drift is corrected and logged, never amplified.
	Reconcile(ctx context.Context, since time.Time, limit int) (int, error)
}

type counterService struct {
	counters counterRepo.CounterRepository
	ledger   ledgerRepo.LedgerRepository
	progress progressRepo.ProgressRepository
	users    userBalanceReader
}

type userBalanceReader interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

func NewCounterService(
	counters counterRepo.CounterRepository,
	ledger ledgerRepo.LedgerRepository,
	progress progressRepo.ProgressRepository,
	users userBalanceReader,
) Counters {
	return &counterService{
		counters: counters,
		ledger:   ledger,
		progress: progress,
		users:    users,
	}
}

func (s *counterService) RecordPost(ctx context.Context, userID uuid.UUID) error {
	return s.counters.Increment(ctx, userID, "total_posts", 1)
}

func (s *counterService) RecordReactionGiven(ctx context.Context, giver uuid.UUID) error {
	return s.counters.Increment(ctx, giver, "total_reactions_given", 1)
}

func (s *counterService) RecordReactionReceived(ctx context.Context, receiver uuid.UUID) error {
	return s.counters.Increment(ctx, receiver, "total_reactions_received", 1)
}

func (s *counterService) RecordComment(ctx context.Context, userID uuid.UUID) error {
	return s.counters.Increment(ctx, userID, "total_comments_made", 1)
}

func (s *counterService) Get(ctx context.Context, userID uuid.UUID) (*entity.UserCounters, error) {
	return s.counters.Get(ctx, userID)
}

func (s *counterService) Reconcile(ctx context.Context, since time.Time, limit int) (int, error) {
	ids, err := s.counters.RecentlyActive(ctx, since, limit)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, userID := range ids {
		if err := ctx.Err(); err != nil {
			return fixed, err
		}

		sum, err := s.ledger.SumByUserID(ctx, userID)
		if err != nil {
			log.Printf("reconcile: ledger sum for %s: %v", userID, err)
			continue
		}
		user, err := s.users.FindByID(ctx, userID.String())
		if err != nil {
			log.Printf("reconcile: load user %s: %v", userID, err)
			continue
		}
		if int64(user.Points) != sum {
			log.Printf("reconcile: balance drift for %s: cached=%d ledger=%d", userID, user.Points, sum)
			if err := s.ledger.SetBalance(ctx, userID, sum); err != nil {
				log.Printf("reconcile: fix balance for %s: %v", userID, err)
				continue
			}
			fixed++
		}

		completed, err := s.progress.CountCompleted(ctx, userID)
		if err != nil {
			log.Printf("reconcile: count achievements for %s: %v", userID, err)
			continue
		}
		counters, err := s.counters.Get(ctx, userID)
		if err != nil {
			continue
		}
		if int64(counters.TotalAchievements) != completed {
			if err := s.counters.SetTotalAchievements(ctx, userID, int(completed)); err != nil {
				log.Printf("reconcile: fix achievement count for %s: %v", userID, err)
				continue
			}
			fixed++
		}
	}
	return fixed, nil
}
