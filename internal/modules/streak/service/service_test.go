package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/momentum/internal/entity"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStreakRepo struct {
	records map[uuid.UUID]*entity.StreakRecord
	days    map[string]*entity.StreakDay
	total   int64
	atLeast map[int]int64
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{
		records: make(map[uuid.UUID]*entity.StreakRecord),
		days:    make(map[string]*entity.StreakDay),
		atLeast: make(map[int]int64),
	}
}

func (f *fakeStreakRepo) GetOrCreate(ctx context.Context, userID uuid.UUID, timezone string) (*entity.StreakRecord, error) {
	if rec, ok := f.records[userID]; ok {
		cp := *rec
		return &cp, nil
	}
	rec := &entity.StreakRecord{UserID: userID, Timezone: timezone}
	f.records[userID] = rec
	cp := *rec
	return &cp, nil
}

func (f *fakeStreakRepo) Get(ctx context.Context, userID uuid.UUID) (*entity.StreakRecord, error) {
	if rec, ok := f.records[userID]; ok {
		cp := *rec
		return &cp, nil
	}
	return &entity.StreakRecord{UserID: userID, Timezone: "UTC"}, nil
}

func (f *fakeStreakRepo) Save(ctx context.Context, rec *entity.StreakRecord) error {
	cp := *rec
	f.records[rec.UserID] = &cp
	return nil
}

func (f *fakeStreakRepo) RecordDay(ctx context.Context, day *entity.StreakDay) error {
	k := day.UserID.String() + day.Date.Format("2006-01-02")
	if existing, ok := f.days[k]; ok {
		existing.ActivityCount++
		return nil
	}
	cp := *day
	f.days[k] = &cp
	return nil
}

func (f *fakeStreakRepo) History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.StreakDay, error) {
	var out []entity.StreakDay
	for _, day := range f.days {
		if day.UserID == userID && !day.Date.Before(from) && !day.Date.After(to) {
			out = append(out, *day)
		}
	}
	return out, nil
}

func (f *fakeStreakRepo) ActiveBefore(ctx context.Context, cutoff time.Time, limit int) ([]entity.StreakRecord, error) {
	var out []entity.StreakRecord
	for _, rec := range f.records {
		if rec.CurrentStreak > 0 && rec.LastActivityDate != nil && rec.LastActivityDate.Before(cutoff) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeStreakRepo) CountAtLeast(ctx context.Context, days int) (int64, error) {
	return f.atLeast[days], nil
}

func (f *fakeStreakRepo) CountAll(ctx context.Context) (int64, error) {
	return f.total, nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) add(id uuid.UUID, tz string) {
	f.users[id.String()] = &entity.User{ID: id, Timezone: tz}
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }

func (f *fakeUserRepo) UpdateTimezone(ctx context.Context, userID uuid.UUID, timezone string) error {
	return nil
}

func (f *fakeUserRepo) CountAll(ctx context.Context) (int64, error) { return 0, nil }

func newFixture(t *testing.T, tz string) (Streaks, *fakeStreakRepo, uuid.UUID) {
	t.Helper()
	streaks := newFakeStreakRepo()
	users := newFakeUserRepo()
	userID := uuid.New()
	users.add(userID, tz)
	return NewStreakService(streaks, users), streaks, userID
}

func TestFirstActivityStartsStreak(t *testing.T) {
	svc, _, userID := newFixture(t, "UTC")

	res, err := svc.RecordActivity(context.Background(), userID, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.True(t, res.Extended)
	assert.Equal(t, 0, res.Previous)
	assert.Equal(t, 1, res.Record.CurrentStreak)
	assert.Equal(t, 1, res.Record.LongestStreak)
}

func TestSameDayActivityDoesNotExtend(t *testing.T) {
	svc, _, userID := newFixture(t, "UTC")
	ctx := context.Background()

	_, err := svc.RecordActivity(ctx, userID, time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	res, err := svc.RecordActivity(ctx, userID, time.Date(2026, 8, 29, 21, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.False(t, res.Extended)
	assert.Equal(t, 1, res.Record.CurrentStreak)
}

func TestConsecutiveDaysExtend(t *testing.T) {
	svc, _, userID := newFixture(t, "UTC")
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		res, err := svc.RecordActivity(ctx, userID, time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, day, res.Record.CurrentStreak)
	}
}

func TestDayBoundaryInUserTimezone(t *testing.T) {
	// Asia/Jakarta is UTC+7. 16:59 UTC is 23:59 local; 17:01 UTC is 00:01
	// local the next day. Two minutes apart in server time, but two
	// distinct consecutive local days.
	svc, _, userID := newFixture(t, "Asia/Jakarta")
	ctx := context.Background()

	res, err := svc.RecordActivity(ctx, userID, time.Date(2026, 8, 1, 16, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Record.CurrentStreak)

	res, err = svc.RecordActivity(ctx, userID, time.Date(2026, 8, 1, 17, 1, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, res.Extended)
	assert.Equal(t, 2, res.Record.CurrentStreak)
}

func TestGapResetsToOne(t *testing.T) {
	svc, _, userID := newFixture(t, "UTC")
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		_, err := svc.RecordActivity(ctx, userID, time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}

	// Two missed days.
	res, err := svc.RecordActivity(ctx, userID, time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Previous)
	assert.Equal(t, 1, res.Record.CurrentStreak)
	assert.Equal(t, 3, res.Record.LongestStreak)
}

func TestMilestoneAwardedExactlyOnce(t *testing.T) {
	svc, _, userID := newFixture(t, "UTC")
	ctx := context.Background()

	var milestoneDays []int
	for day := 1; day <= 8; day++ {
		res, err := svc.RecordActivity(ctx, userID, time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		for range res.NewMilestones {
			milestoneDays = append(milestoneDays, day)
		}
	}

	// The 7 milestone fires on day 7 and never again.
	assert.Equal(t, []int{7}, milestoneDays)
}

func TestMilestoneNotReawardedAfterBreak(t *testing.T) {
	svc, streaks, userID := newFixture(t, "UTC")
	ctx := context.Background()

	for day := 1; day <= 7; day++ {
		_, err := svc.RecordActivity(ctx, userID, time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}

	rec := streaks.records[userID]
	assert.True(t, rec.Milestone7)

	// Break, then rebuild past 7 days. The flag keeps the milestone from
	// firing twice.
	for day := 10; day <= 17; day++ {
		res, err := svc.RecordActivity(ctx, userID, time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Empty(t, res.NewMilestones)
	}
}

func TestReconcileBrokenResetsOnlyStale(t *testing.T) {
	svc, streaks, _ := newFixture(t, "UTC")
	ctx := context.Background()

	staleUser := uuid.New()
	staleDate := time.Now().UTC().AddDate(0, 0, -3).Truncate(24 * time.Hour)
	streaks.records[staleUser] = &entity.StreakRecord{
		UserID:           staleUser,
		CurrentStreak:    12,
		LongestStreak:    20,
		LastActivityDate: &staleDate,
		Timezone:         "UTC",
		Milestone7:       true,
	}

	freshUser := uuid.New()
	y, m, d := time.Now().UTC().Date()
	freshDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	streaks.records[freshUser] = &entity.StreakRecord{
		UserID:           freshUser,
		CurrentStreak:    5,
		LongestStreak:    5,
		LastActivityDate: &freshDate,
		Timezone:         "UTC",
	}

	broken, err := svc.ReconcileBroken(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, broken)

	stale := streaks.records[staleUser]
	assert.Equal(t, 0, stale.CurrentStreak)
	assert.Equal(t, 20, stale.LongestStreak)
	assert.True(t, stale.Milestone7)

	fresh := streaks.records[freshUser]
	assert.Equal(t, 5, fresh.CurrentStreak)
}

func TestInvalidTimezoneFallsBackToUTC(t *testing.T) {
	streaks := newFakeStreakRepo()
	users := newFakeUserRepo()
	userID := uuid.New()
	users.add(userID, "Not/AZone")
	svc := NewStreakService(streaks, users)

	res, err := svc.RecordActivity(context.Background(), userID, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Record.CurrentStreak)
}
