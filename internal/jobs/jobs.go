package jobs

import (
	"context"
	"log"
	"time"

	counterRepo "anoa.com/momentum/internal/modules/counter/repository"
	counterService "anoa.com/momentum/internal/modules/counter/service"
	engineService "anoa.com/momentum/internal/modules/engine/service"
	leaderboardService "anoa.com/momentum/internal/modules/leaderboard/service"
	notifService "anoa.com/momentum/internal/modules/notification/service"
	streakService "anoa.com/momentum/internal/modules/streak/service"
)

const (
	reconcileBatch    = 500
	notifRetention    = 30 * 24 * time.Hour
	backfillLookback  = 4 * time.Hour
	reconcileLookback = 24 * time.Hour
)

// RegisterAll wires the standing background jobs onto the runner.
func RegisterAll(
	r *Runner,
	streaks streakService.Streaks,
	leaderboard leaderboardService.LeaderboardService,
	counters counterService.Counters,
	counterStore counterRepo.CounterRepository,
	notifier notifService.NotificationService,
	engine engineService.Engine,
) {
	// Midnight sweep: the only path that resets a streak to zero.
	r.Register("streak-reconcile", "0 0 * * *", func(ctx context.Context) error {
		broken, err := streaks.ReconcileBroken(ctx, reconcileBatch)
		if err != nil {
			return err
		}
		log.Printf("streak-reconcile: %d streaks broken", broken)
		return nil
	})

	// Keep leaderboards warm through waking hours so reads rarely miss.
	r.Register("leaderboard-prewarm", "*/15 8-22 * * *", func(ctx context.Context) error {
		return leaderboard.Rebuild(ctx)
	})

	// Hourly drift correction between cached values and source tables.
	r.Register("counter-reconcile", "0 * * * *", func(ctx context.Context) error {
		fixed, err := counters.Reconcile(ctx, time.Now().Add(-reconcileLookback), reconcileBatch)
		if err != nil {
			return err
		}
		if fixed > 0 {
			log.Printf("counter-reconcile: corrected %d drifted values", fixed)
		}
		return nil
	})

	// Prune read notifications past retention.
	r.Register("notification-cleanup", "0 2 * * *", func(ctx context.Context) error {
		deleted, err := notifier.Cleanup(ctx, notifRetention)
		if err != nil {
			return err
		}
		log.Printf("notification-cleanup: deleted %d notifications", deleted)
		return nil
	})

	// Safety net: re-evaluate recently active users in case an inline
	// evaluation was lost to a crash or a transient failure.
	r.Register("achievement-backfill", "0 */4 * * *", func(ctx context.Context) error {
		ids, err := counterStore.RecentlyActive(ctx, time.Now().Add(-backfillLookback), reconcileBatch)
		if err != nil {
			return err
		}
		for _, userID := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := engine.RecalculateAll(ctx, userID); err != nil {
				log.Printf("achievement-backfill: user %s: %v", userID, err)
			}
		}
		return nil
	})
}
