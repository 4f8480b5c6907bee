package service

import (
	"context"
	"log"
	"time"

	"anoa.com/momentum/internal/entity"
	goalDto "anoa.com/momentum/internal/modules/goal/dto"
	goalRepo "anoa.com/momentum/internal/modules/goal/repository"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
)

// AchievementEvaluator is satisfied by the achievement engine. Goal updates
// trigger an evaluation of goal-based achievements.
type AchievementEvaluator interface {
	HandleEvent(ctx context.Context, userID uuid.UUID, eventType entity.EventType) error
}

// Notifier is satisfied by the notification service.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind entity.NotificationKind, title, message string, data map[string]interface{}, priority entity.NotificationPriority) error
}

type Goals interface {
	Create(ctx context.Context, userID uuid.UUID, req goalDto.CreateGoalRequest) (*entity.Goal, error)
	List(ctx context.Context, userID uuid.UUID) ([]entity.Goal, error)
	// UpdateProgress sets a goal's progress and fires encouragement
	// notifications exactly once per crossed threshold (75, 100).
	UpdateProgress(ctx context.Context, userID, goalID uuid.UUID, progress int) (*entity.Goal, error)
	Delete(ctx context.Context, userID, goalID uuid.UUID) error
}

type goalService struct {
	repo      goalRepo.GoalRepository
	evaluator AchievementEvaluator
	notifier  Notifier
}

func NewGoalService(repo goalRepo.GoalRepository, evaluator AchievementEvaluator, notifier Notifier) Goals {
	return &goalService{repo: repo, evaluator: evaluator, notifier: notifier}
}

func (s *goalService) Create(ctx context.Context, userID uuid.UUID, req goalDto.CreateGoalRequest) (*entity.Goal, error) {
	goal := &entity.Goal{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *goalService) List(ctx context.Context, userID uuid.UUID) ([]entity.Goal, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *goalService) UpdateProgress(ctx context.Context, userID, goalID uuid.UUID, progress int) (*entity.Goal, error) {
	if progress < 0 || progress > 100 {
		return nil, apperror.ErrInvalidInput
	}

	goal, err := s.repo.FindByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, apperror.ErrForbidden
	}

	previous := goal.Progress
	goal.Progress = progress
	if progress >= 100 && !goal.IsCompleted {
		now := time.Now()
		goal.IsCompleted = true
		goal.CompletedAt = &now
	}
	if err := s.repo.Save(ctx, goal); err != nil {
		return nil, err
	}

	s.notifyCrossing(ctx, goal, previous, progress)

	// Achievement evaluation is best effort; the progress write already
	// succeeded and a retrigger recomputes the same result.
	if err := s.evaluator.HandleEvent(ctx, userID, entity.EventGoalProgressUpdated); err != nil {
		log.Printf("goal: evaluate achievements for %s: %v", userID, err)
	}

	return goal, nil
}

func (s *goalService) notifyCrossing(ctx context.Context, goal *entity.Goal, previous, current int) {
	type threshold struct {
		at      int
		title   string
		message string
	}
	for _, t := range []threshold{
		{75, "Almost there!", "You're 75% of the way to \"" + goal.Title + "\""},
		{100, "Goal completed!", "You finished \"" + goal.Title + "\" 🎉"},
	} {
		if previous < t.at && current >= t.at {
			data := map[string]interface{}{"goal_id": goal.ID.String(), "progress": current}
			if err := s.notifier.Notify(ctx, goal.UserID, entity.NotifGoalProgress, t.title, t.message, data, entity.PriorityNormal); err != nil {
				log.Printf("goal: notify %s: %v", goal.UserID, err)
			}
		}
	}
}

func (s *goalService) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	goal, err := s.repo.FindByID(ctx, goalID)
	if err != nil {
		return err
	}
	if goal.UserID != userID {
		return apperror.ErrForbidden
	}
	return s.repo.Delete(ctx, goalID)
}
