package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"anoa.com/momentum/internal/entity"
	catalogService "anoa.com/momentum/internal/modules/catalog/service"
	counterRepo "anoa.com/momentum/internal/modules/counter/repository"
	goalRepo "anoa.com/momentum/internal/modules/goal/repository"
	ledgerService "anoa.com/momentum/internal/modules/ledger/service"
	notifService "anoa.com/momentum/internal/modules/notification/service"
	progressRepo "anoa.com/momentum/internal/modules/progress/repository"
	streakRepo "anoa.com/momentum/internal/modules/streak/repository"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
)

// CacheInvalidator is satisfied by the leaderboard service; completed
// achievements change rankings.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Engine evaluates achievement progress. Progress is always recomputed
// from the authoritative counters, so re-delivering an event is a no-op
// rather than a double grant.
type Engine interface {
	HandleEvent(ctx context.Context, userID uuid.UUID, eventType entity.EventType) error
	// ManualAward completes an achievement by administrative fiat. It rides
	// the normal completion path so rewards and notifications stay uniform.
	ManualAward(ctx context.Context, userID uuid.UUID, achievementID string) (*entity.UserAchievement, error)
	// RecalculateAll re-evaluates every event type for one user. Safe to
	// run at any time; it can only complete achievements, never undo them.
	RecalculateAll(ctx context.Context, userID uuid.UUID) error
	UserProgress(ctx context.Context, userID uuid.UUID) ([]entity.UserAchievement, error)
}

type engine struct {
	catalog     catalogService.Catalog
	progress    progressRepo.ProgressRepository
	counters    counterRepo.CounterRepository
	streaks     streakRepo.StreakRepository
	goals       goalRepo.GoalRepository
	ledger      ledgerService.Ledger
	notifier    notifService.NotificationService
	leaderboard CacheInvalidator

	// One mutex per user serializes that user's evaluations. Different
	// users never contend.
	userLocks sync.Map
}

func NewEngine(
	catalog catalogService.Catalog,
	progress progressRepo.ProgressRepository,
	counters counterRepo.CounterRepository,
	streaks streakRepo.StreakRepository,
	goals goalRepo.GoalRepository,
	ledger ledgerService.Ledger,
	notifier notifService.NotificationService,
	leaderboard CacheInvalidator,
) Engine {
	return &engine{
		catalog:     catalog,
		progress:    progress,
		counters:    counters,
		streaks:     streaks,
		goals:       goals,
		ledger:      ledger,
		notifier:    notifier,
		leaderboard: leaderboard,
	}
}

func (e *engine) lockUser(userID uuid.UUID) func() {
	v, _ := e.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (e *engine) HandleEvent(ctx context.Context, userID uuid.UUID, eventType entity.EventType) error {
	defs := e.catalog.RelevantFor(eventType)
	if len(defs) == 0 {
		return nil
	}

	unlock := e.lockUser(userID)
	defer unlock()

	for _, def := range defs {
		if def.RequirementType == entity.RequirementManual {
			continue
		}
		if err := e.evaluate(ctx, userID, def); err != nil {
			return fmt.Errorf("evaluate %s for %s: %w", def.ID, userID, err)
		}
	}
	return nil
}

// currentValue reads the authoritative source for one requirement type.
func (e *engine) currentValue(ctx context.Context, userID uuid.UUID, rt entity.RequirementType) (int, error) {
	switch rt {
	case entity.RequirementPostsCount, entity.RequirementReactionsGiven,
		entity.RequirementReactionsReceived, entity.RequirementCommentsMade:
		counters, err := e.counters.Get(ctx, userID)
		if err != nil {
			return 0, err
		}
		switch rt {
		case entity.RequirementPostsCount:
			return counters.TotalPosts, nil
		case entity.RequirementReactionsGiven:
			return counters.TotalReactionsGiven, nil
		case entity.RequirementReactionsReceived:
			return counters.TotalReactionsReceived, nil
		default:
			return counters.TotalCommentsMade, nil
		}
	case entity.RequirementStreakDays:
		rec, err := e.streaks.Get(ctx, userID)
		if err != nil {
			return 0, err
		}
		return rec.CurrentStreak, nil
	case entity.RequirementGoalCompletionPct:
		avg, err := e.goals.AverageProgress(ctx, userID)
		if err != nil {
			return 0, err
		}
		return int(avg), nil
	}
	return 0, apperror.ErrInvalidInput
}

func (e *engine) evaluate(ctx context.Context, userID uuid.UUID, def entity.Achievement) error {
	value, err := e.currentValue(ctx, userID, def.RequirementType)
	if err != nil {
		return err
	}

	ua, err := e.progress.GetOrCreate(ctx, userID, def)
	if err != nil {
		return err
	}

	ua.ProgressCurrent = value
	ua.ProgressTarget = def.RequirementTarget

	// A repeatable achievement re-arms once its source value drops back
	// below the target (a new goal cycle, for example). The completion
	// count persists across cycles.
	if ua.IsCompleted && def.IsRepeatable && value < def.RequirementTarget {
		ua.IsCompleted = false
		ua.CompletedAt = nil
	}

	eligible := !ua.IsCompleted &&
		value >= def.RequirementTarget &&
		ua.CompletionCount < def.MaxCompletions

	if err := e.progress.Save(ctx, ua); err != nil {
		return err
	}
	if !eligible {
		return nil
	}

	won, err := e.progress.Complete(ctx, ua.ID, ua.CompletionCount)
	if err != nil {
		return err
	}
	if !won {
		// Someone else completed it between our read and write. Their
		// grant stands; ours must not happen.
		return nil
	}

	if err := e.grantReward(ctx, userID, def); err != nil {
		// The completion flag is set but the reward never landed. Undo
		// the flag so a retry can grant exactly once.
		if revertErr := e.progress.RevertCompletion(ctx, ua.ID, ua.CompletionCount); revertErr != nil {
			log.Printf("engine: revert completion of %s for %s: %v", def.ID, userID, revertErr)
		}
		return err
	}

	e.afterCompletion(ctx, userID, def)
	return nil
}

func (e *engine) grantReward(ctx context.Context, userID uuid.UUID, def entity.Achievement) error {
	if def.RewardPoints > 0 {
		_, err := e.ledger.Grant(ctx, userID, def.RewardPoints, entity.TxAchievementBonus,
			"Achievement unlocked: "+def.Name,
			ledgerService.WithAchievement(def.ID))
		if err != nil {
			return err
		}
	}
	for _, rb := range def.RewardBadges {
		if err := e.ledger.GrantBadge(ctx, userID, rb.BadgeID, rb.Count); err != nil {
			log.Printf("engine: grant badge %s for %s: %v", rb.BadgeID, userID, err)
		}
	}
	return nil
}

func (e *engine) afterCompletion(ctx context.Context, userID uuid.UUID, def entity.Achievement) {
	completed, err := e.progress.CountCompleted(ctx, userID)
	if err == nil {
		if err := e.counters.SetTotalAchievements(ctx, userID, int(completed)); err != nil {
			log.Printf("engine: update achievement count for %s: %v", userID, err)
		}
	}

	data := map[string]interface{}{
		"achievement_id": def.ID,
		"tier":           string(def.Tier),
		"reward_points":  def.RewardPoints,
	}
	if err := e.notifier.Notify(ctx, userID, entity.NotifAchievementUnlocked,
		"Achievement unlocked!",
		def.Icon+" "+def.Name+" — "+def.Description,
		data, entity.PriorityHigh); err != nil {
		log.Printf("engine: notify %s: %v", userID, err)
	}

	e.leaderboard.Invalidate(ctx)
}

func (e *engine) ManualAward(ctx context.Context, userID uuid.UUID, achievementID string) (*entity.UserAchievement, error) {
	def, ok := e.catalog.Get(achievementID)
	if !ok {
		return nil, apperror.ErrNotFound
	}

	unlock := e.lockUser(userID)
	defer unlock()

	ua, err := e.progress.GetOrCreate(ctx, userID, def)
	if err != nil {
		return nil, err
	}
	if ua.IsCompleted || ua.CompletionCount >= def.MaxCompletions {
		return nil, apperror.ErrAlreadyCompleted
	}

	ua.ProgressCurrent = def.RequirementTarget
	ua.ProgressTarget = def.RequirementTarget
	if err := e.progress.Save(ctx, ua); err != nil {
		return nil, err
	}

	won, err := e.progress.Complete(ctx, ua.ID, ua.CompletionCount)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, apperror.ErrAlreadyCompleted
	}

	if err := e.grantReward(ctx, userID, def); err != nil {
		if revertErr := e.progress.RevertCompletion(ctx, ua.ID, ua.CompletionCount); revertErr != nil {
			log.Printf("engine: revert manual award of %s for %s: %v", def.ID, userID, revertErr)
		}
		return nil, err
	}

	e.afterCompletion(ctx, userID, def)
	return e.progress.Get(ctx, userID, def.ID)
}

func (e *engine) RecalculateAll(ctx context.Context, userID uuid.UUID) error {
	for _, eventType := range entity.AllEventTypes {
		if err := e.HandleEvent(ctx, userID, eventType); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) UserProgress(ctx context.Context, userID uuid.UUID) ([]entity.UserAchievement, error) {
	return e.progress.ListByUser(ctx, userID)
}
