package service

import (
	"context"
	"log"
	"time"

	"anoa.com/momentum/internal/entity"
	streakRepo "anoa.com/momentum/internal/modules/streak/repository"
	userRepo "anoa.com/momentum/internal/modules/user/repository"
	"github.com/google/uuid"
)

// Milestones that award exactly once per user, in ascending order.
var milestones = []int{7, 30, 100}

// Result describes the outcome of recording one qualifying activity.
type Result struct {
	Record        *entity.StreakRecord `json:"record"`
	Previous      int                  `json:"previous_streak"`
	Extended      bool                 `json:"extended"`
	NewMilestones []int                `json:"new_milestones,omitempty"`
}

// Stats is the read model for a user's streak.
type Stats struct {
	CurrentStreak    int                `json:"current_streak"`
	LongestStreak    int                `json:"longest_streak"`
	LastActivityDate *time.Time         `json:"last_activity_date,omitempty"`
	StreakStartDate  *time.Time         `json:"streak_start_date,omitempty"`
	Timezone         string             `json:"timezone"`
	Percentile       float64            `json:"percentile"`
	History          []entity.StreakDay `json:"history"`
}

// Streaks tracks continuous daily activity per user. All day comparisons
// happen in the user's stored timezone, never in server time.
type Streaks interface {
	// RecordActivity advances the streak for one qualifying activity.
	// Multiple activities on the same user-local day are one streak day.
	RecordActivity(ctx context.Context, userID uuid.UUID, at time.Time) (*Result, error)
	Stats(ctx context.Context, userID uuid.UUID) (*Stats, error)
	// ReconcileBroken zeroes streaks whose last activity is two or more
	// user-local days ago. This is the only path that decreases a streak.
	ReconcileBroken(ctx context.Context, limit int) (int, error)
}

type streakService struct {
	streaks streakRepo.StreakRepository
	users   userRepo.UserRepository
}

func NewStreakService(streaks streakRepo.StreakRepository, users userRepo.UserRepository) Streaks {
	return &streakService{streaks: streaks, users: users}
}

// localDate collapses an instant to the user-local calendar day, encoded
// as midnight UTC so dates compare and store consistently.
func localDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *streakService) location(userID uuid.UUID, tz string) *time.Location {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("streak: invalid timezone %q for %s, falling back to UTC", tz, userID)
		return time.UTC
	}
	return loc
}

func (s *streakService) RecordActivity(ctx context.Context, userID uuid.UUID, at time.Time) (*Result, error) {
	user, err := s.users.FindByID(ctx, userID.String())
	if err != nil {
		return nil, err
	}

	rec, err := s.streaks.GetOrCreate(ctx, userID, user.Timezone)
	if err != nil {
		return nil, err
	}

	loc := s.location(userID, rec.Timezone)
	today := localDate(at, loc)

	res := &Result{Record: rec, Previous: rec.CurrentStreak}

	switch {
	case rec.LastActivityDate != nil && rec.LastActivityDate.Equal(today):
		// Already counted today. Bump the day's activity count only.
		day := &entity.StreakDay{
			UserID:         userID,
			Date:           today,
			ActivityCount:  1,
			StreakDayIndex: rec.CurrentStreak,
		}
		if err := s.streaks.RecordDay(ctx, day); err != nil {
			return nil, err
		}
		return res, nil

	case rec.LastActivityDate != nil && rec.LastActivityDate.Equal(today.AddDate(0, 0, -1)):
		rec.CurrentStreak++
		res.Extended = true

	default:
		// First activity ever, or the streak broke. Start over at 1.
		rec.CurrentStreak = 1
		rec.StreakStartDate = &today
		res.Extended = true
	}

	rec.LastActivityDate = &today
	if rec.CurrentStreak > rec.LongestStreak {
		rec.LongestStreak = rec.CurrentStreak
	}

	for _, m := range milestones {
		if rec.CurrentStreak >= m && !rec.MilestoneAwarded(m) {
			rec.SetMilestoneAwarded(m)
			res.NewMilestones = append(res.NewMilestones, m)
		}
	}

	if err := s.streaks.Save(ctx, rec); err != nil {
		return nil, err
	}

	day := &entity.StreakDay{
		UserID:         userID,
		Date:           today,
		ActivityCount:  1,
		StreakDayIndex: rec.CurrentStreak,
	}
	if err := s.streaks.RecordDay(ctx, day); err != nil {
		return nil, err
	}

	return res, nil
}

func (s *streakService) Stats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	rec, err := s.streaks.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	loc := s.location(userID, rec.Timezone)
	today := localDate(time.Now(), loc)
	history, err := s.streaks.History(ctx, userID, today.AddDate(0, 0, -29), today)
	if err != nil {
		return nil, err
	}

	pct, err := s.percentile(ctx, rec.CurrentStreak)
	if err != nil {
		return nil, err
	}

	return &Stats{
		CurrentStreak:    rec.CurrentStreak,
		LongestStreak:    rec.LongestStreak,
		LastActivityDate: rec.LastActivityDate,
		StreakStartDate:  rec.StreakStartDate,
		Timezone:         rec.Timezone,
		Percentile:       pct,
		History:          history,
	}, nil
}

// percentile is the share of tracked users this streak beats or ties.
func (s *streakService) percentile(ctx context.Context, current int) (float64, error) {
	total, err := s.streaks.CountAll(ctx)
	if err != nil || total == 0 {
		return 0, err
	}
	atLeast, err := s.streaks.CountAtLeast(ctx, current)
	if err != nil {
		return 0, err
	}
	return float64(total-atLeast+1) / float64(total) * 100, nil
}

func (s *streakService) ReconcileBroken(ctx context.Context, limit int) (int, error) {
	// Coarse prefilter; each candidate is re-checked in its own zone below.
	cutoff := time.Now().Add(-24 * time.Hour)
	recs, err := s.streaks.ActiveBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	broken := 0
	for i := range recs {
		rec := &recs[i]
		if err := ctx.Err(); err != nil {
			return broken, err
		}

		loc := s.location(rec.UserID, rec.Timezone)
		today := localDate(time.Now(), loc)
		yesterday := today.AddDate(0, 0, -1)

		// Still today or yesterday in the user's zone means not broken yet.
		if rec.LastActivityDate == nil ||
			rec.LastActivityDate.Equal(today) ||
			rec.LastActivityDate.Equal(yesterday) {
			continue
		}

		// Longest streak and milestone flags survive the break.
		rec.CurrentStreak = 0
		rec.StreakStartDate = nil
		if err := s.streaks.Save(ctx, rec); err != nil {
			log.Printf("streak: reconcile %s: %v", rec.UserID, err)
			continue
		}
		broken++
	}
	return broken, nil
}
