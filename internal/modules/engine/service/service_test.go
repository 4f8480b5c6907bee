package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"anoa.com/momentum/internal/entity"
	catalogService "anoa.com/momentum/internal/modules/catalog/service"
	ledgerService "anoa.com/momentum/internal/modules/ledger/service"
	"anoa.com/momentum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeCatalogRepo struct {
	defs []entity.Achievement
}

func (f *fakeCatalogRepo) Upsert(ctx context.Context, defs []entity.Achievement) error {
	f.defs = defs
	return nil
}

func (f *fakeCatalogRepo) FindActive(ctx context.Context) ([]entity.Achievement, error) {
	return f.defs, nil
}

func (f *fakeCatalogRepo) Deactivate(ctx context.Context, id string) error { return nil }

type fakeProgressRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[string]*entity.UserAchievement
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[string]*entity.UserAchievement)}
}

func key(userID uuid.UUID, achievementID string) string {
	return userID.String() + "/" + achievementID
}

func (f *fakeProgressRepo) GetOrCreate(ctx context.Context, userID uuid.UUID, def entity.Achievement) (*entity.UserAchievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[key(userID, def.ID)]; ok {
		cp := *row
		return &cp, nil
	}
	f.nextID++
	row := &entity.UserAchievement{
		ID:             f.nextID,
		UserID:         userID,
		AchievementID:  def.ID,
		ProgressTarget: def.RequirementTarget,
	}
	f.rows[key(userID, def.ID)] = row
	cp := *row
	return &cp, nil
}

func (f *fakeProgressRepo) Get(ctx context.Context, userID uuid.UUID, achievementID string) (*entity.UserAchievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[key(userID, achievementID)]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeProgressRepo) Save(ctx context.Context, ua *entity.UserAchievement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[key(ua.UserID, ua.AchievementID)]
	if !ok {
		return apperror.ErrNotFound
	}
	row.ProgressCurrent = ua.ProgressCurrent
	row.ProgressTarget = ua.ProgressTarget
	row.IsCompleted = ua.IsCompleted
	row.CompletedAt = ua.CompletedAt
	return nil
}

func (f *fakeProgressRepo) Complete(ctx context.Context, id uint, expectedCount int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			if row.CompletionCount != expectedCount {
				return false, nil
			}
			now := time.Now()
			row.IsCompleted = true
			row.CompletedAt = &now
			row.CompletionCount = expectedCount + 1
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProgressRepo) RevertCompletion(ctx context.Context, id uint, restoredCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			row.IsCompleted = false
			row.CompletedAt = nil
			row.CompletionCount = restoredCount
			return nil
		}
	}
	return apperror.ErrNotFound
}

func (f *fakeProgressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserAchievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.UserAchievement
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) CountCompleted(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.UserID == userID && row.CompletionCount > 0 {
			n++
		}
	}
	return n, nil
}

type fakeCounterRepo struct {
	mu       sync.Mutex
	counters map[uuid.UUID]*entity.UserCounters
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{counters: make(map[uuid.UUID]*entity.UserCounters)}
}

func (f *fakeCounterRepo) get(userID uuid.UUID) *entity.UserCounters {
	if c, ok := f.counters[userID]; ok {
		return c
	}
	c := &entity.UserCounters{UserID: userID}
	f.counters[userID] = c
	return c
}

func (f *fakeCounterRepo) Increment(ctx context.Context, userID uuid.UUID, column string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.get(userID)
	switch column {
	case "total_posts":
		c.TotalPosts += delta
	case "total_reactions_given":
		c.TotalReactionsGiven += delta
	case "total_reactions_received":
		c.TotalReactionsReceived += delta
	case "total_comments_made":
		c.TotalCommentsMade += delta
	default:
		return apperror.ErrInvalidInput
	}
	return nil
}

func (f *fakeCounterRepo) Get(ctx context.Context, userID uuid.UUID) (*entity.UserCounters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.get(userID)
	return &cp, nil
}

func (f *fakeCounterRepo) SetTotalAchievements(ctx context.Context, userID uuid.UUID, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.get(userID).TotalAchievements = total
	return nil
}

func (f *fakeCounterRepo) RecentlyActive(ctx context.Context, since time.Time, limit int) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeStreakRepo struct {
	records map[uuid.UUID]*entity.StreakRecord
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{records: make(map[uuid.UUID]*entity.StreakRecord)}
}

func (f *fakeStreakRepo) GetOrCreate(ctx context.Context, userID uuid.UUID, timezone string) (*entity.StreakRecord, error) {
	if rec, ok := f.records[userID]; ok {
		return rec, nil
	}
	rec := &entity.StreakRecord{UserID: userID, Timezone: timezone}
	f.records[userID] = rec
	return rec, nil
}

func (f *fakeStreakRepo) Get(ctx context.Context, userID uuid.UUID) (*entity.StreakRecord, error) {
	if rec, ok := f.records[userID]; ok {
		return rec, nil
	}
	return &entity.StreakRecord{UserID: userID, Timezone: "UTC"}, nil
}

func (f *fakeStreakRepo) Save(ctx context.Context, rec *entity.StreakRecord) error {
	f.records[rec.UserID] = rec
	return nil
}

func (f *fakeStreakRepo) RecordDay(ctx context.Context, day *entity.StreakDay) error { return nil }

func (f *fakeStreakRepo) History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]entity.StreakDay, error) {
	return nil, nil
}

func (f *fakeStreakRepo) ActiveBefore(ctx context.Context, cutoff time.Time, limit int) ([]entity.StreakRecord, error) {
	return nil, nil
}

func (f *fakeStreakRepo) CountAtLeast(ctx context.Context, days int) (int64, error) { return 0, nil }
func (f *fakeStreakRepo) CountAll(ctx context.Context) (int64, error)               { return 0, nil }

type fakeGoalRepo struct {
	avg float64
}

func (f *fakeGoalRepo) Create(ctx context.Context, goal *entity.Goal) error { return nil }
func (f *fakeGoalRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Goal, error) {
	return nil, apperror.ErrNotFound
}
func (f *fakeGoalRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Goal, error) {
	return nil, nil
}
func (f *fakeGoalRepo) Save(ctx context.Context, goal *entity.Goal) error  { return nil }
func (f *fakeGoalRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (f *fakeGoalRepo) AverageProgress(ctx context.Context, userID uuid.UUID) (float64, error) {
	return f.avg, nil
}

type grantCall struct {
	userID uuid.UUID
	amount int
	txType entity.TransactionType
}

type fakeLedger struct {
	mu       sync.Mutex
	grants   []grantCall
	failNext bool
}

func (f *fakeLedger) Grant(ctx context.Context, userID uuid.UUID, amount int, txType entity.TransactionType, reason string, opts ...ledgerService.TxOption) (*entity.RewardTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return nil, errors.New("storage unavailable")
	}
	f.grants = append(f.grants, grantCall{userID: userID, amount: amount, txType: txType})
	return &entity.RewardTransaction{UserID: userID, Amount: amount, Type: txType}, nil
}

func (f *fakeLedger) Deduct(ctx context.Context, userID uuid.UUID, amount int, txType entity.TransactionType, reason string, opts ...ledgerService.TxOption) (*entity.RewardTransaction, error) {
	return nil, errors.New("not used")
}

func (f *fakeLedger) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, g := range f.grants {
		if g.userID == userID {
			sum += int64(g.amount)
		}
	}
	return sum, nil
}

func (f *fakeLedger) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.RewardTransaction, error) {
	return nil, nil
}

func (f *fakeLedger) GrantBadge(ctx context.Context, userID, badgeID uuid.UUID, count int) error {
	return nil
}

func (f *fakeLedger) Badges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error) {
	return nil, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	kinds []entity.NotificationKind
}

func (f *fakeNotifier) Notify(ctx context.Context, userID uuid.UUID, kind entity.NotificationKind, title, message string, data map[string]interface{}, priority entity.NotificationPriority) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	return nil
}

func (f *fakeNotifier) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return nil, nil
}
func (f *fakeNotifier) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error    { return nil }
func (f *fakeNotifier) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error     { return nil }
func (f *fakeNotifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}
func (f *fakeNotifier) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeInvalidator) Invalidate(ctx context.Context) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

// --- harness ---

type engineFixture struct {
	engine   Engine
	catalog  catalogService.Catalog
	progress *fakeProgressRepo
	counters *fakeCounterRepo
	streaks  *fakeStreakRepo
	goals    *fakeGoalRepo
	ledger   *fakeLedger
	notifier *fakeNotifier
	lb       *fakeInvalidator
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	catalogRepo := &fakeCatalogRepo{}
	catalog := catalogService.NewCatalogService(catalogRepo)
	require.NoError(t, catalog.Sync(context.Background()))

	f := &engineFixture{
		catalog:  catalog,
		progress: newFakeProgressRepo(),
		counters: newFakeCounterRepo(),
		streaks:  newFakeStreakRepo(),
		goals:    &fakeGoalRepo{},
		ledger:   &fakeLedger{},
		notifier: &fakeNotifier{},
		lb:       &fakeInvalidator{},
	}
	f.engine = NewEngine(f.catalog, f.progress, f.counters, f.streaks, f.goals, f.ledger, f.notifier, f.lb)
	return f
}

// --- tests ---

func TestFirstPostAwardsOnce(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, f.counters.Increment(ctx, userID, "total_posts", 1))
	require.NoError(t, f.engine.HandleEvent(ctx, userID, entity.EventPostCreated))

	require.Len(t, f.ledger.grants, 1)
	assert.Equal(t, 25, f.ledger.grants[0].amount)
	assert.Equal(t, entity.TxAchievementBonus, f.ledger.grants[0].txType)

	ua, err := f.progress.Get(ctx, userID, "first_post")
	require.NoError(t, err)
	assert.True(t, ua.IsCompleted)
	assert.Equal(t, 1, ua.CompletionCount)

	assert.Contains(t, f.notifier.kinds, entity.NotifAchievementUnlocked)
	assert.Equal(t, 1, f.lb.calls)
}

func TestReprocessingEventIsIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, f.counters.Increment(ctx, userID, "total_posts", 1))

	// Same event delivered three times; progress is recomputed from the
	// counter, so the grant happens exactly once.
	for i := 0; i < 3; i++ {
		require.NoError(t, f.engine.HandleEvent(ctx, userID, entity.EventPostCreated))
	}

	assert.Len(t, f.ledger.grants, 1)

	balance, err := f.ledger.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance)
}

func TestConcurrentEventsGrantOnce(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, f.counters.Increment(ctx, userID, "total_posts", 1))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.engine.HandleEvent(ctx, userID, entity.EventPostCreated)
		}()
	}
	wg.Wait()

	assert.Len(t, f.ledger.grants, 1)
}

func TestFailedGrantRollsBackCompletion(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, f.counters.Increment(ctx, userID, "total_posts", 1))

	f.ledger.failNext = true
	err := f.engine.HandleEvent(ctx, userID, entity.EventPostCreated)
	require.Error(t, err)

	ua, err := f.progress.Get(ctx, userID, "first_post")
	require.NoError(t, err)
	assert.False(t, ua.IsCompleted)
	assert.Equal(t, 0, ua.CompletionCount)

	// Retry after the transient failure grants exactly once.
	require.NoError(t, f.engine.HandleEvent(ctx, userID, entity.EventPostCreated))
	assert.Len(t, f.ledger.grants, 1)
}

func TestProgressBelowTargetDoesNotComplete(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 30; i++ {
		require.NoError(t, f.counters.Increment(ctx, userID, "total_reactions_given", 1))
	}
	require.NoError(t, f.engine.HandleEvent(ctx, userID, entity.EventReactionGiven))

	// helper_reactions needs 50.
	assert.Empty(t, f.ledger.grants)

	ua, err := f.progress.Get(ctx, userID, "helper_reactions")
	require.NoError(t, err)
	assert.Equal(t, 30, ua.ProgressCurrent)
	assert.False(t, ua.IsCompleted)
}

func TestRepeatableAchievementRearms(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	// First goal cycle reaches 25%.
	f.goals.avg = 25
	require.NoError(t, f.engine.HandleEvent(ctx, userID, entity.EventGoalProgressUpdated))

	ua, err := f.progress.Get(ctx, userID, "goal_bronze")
	require.NoError(t, err)
	assert.True(t, ua.IsCompleted)
	assert.Equal(t, 1, ua.CompletionCount)

	// New goal pulls the average back down; the achievement re-arms.
	f.goals.avg = 10
	require.NoError(t, f.engine.HandleEvent(ctx, userID, entity.EventGoalProgressUpdated))

	ua, err = f.progress.Get(ctx, userID, "goal_bronze")
	require.NoError(t, err)
	assert.False(t, ua.IsCompleted)
	assert.Equal(t, 1, ua.CompletionCount)

	// Second cycle crosses the target again and grants again.
	f.goals.avg = 30
	require.NoError(t, f.engine.HandleEvent(ctx, userID, entity.EventGoalProgressUpdated))

	ua, err = f.progress.Get(ctx, userID, "goal_bronze")
	require.NoError(t, err)
	assert.True(t, ua.IsCompleted)
	assert.Equal(t, 2, ua.CompletionCount)

	bronzeGrants := 0
	for _, g := range f.ledger.grants {
		if g.amount == 50 {
			bronzeGrants++
		}
	}
	assert.Equal(t, 2, bronzeGrants)
}

func TestNonRepeatableStaysCompleted(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, f.counters.Increment(ctx, userID, "total_posts", 1))
	require.NoError(t, f.engine.HandleEvent(ctx, userID, entity.EventPostCreated))

	// More posts keep updating progress but never re-grant.
	require.NoError(t, f.counters.Increment(ctx, userID, "total_posts", 5))
	require.NoError(t, f.engine.HandleEvent(ctx, userID, entity.EventPostCreated))

	firstPostGrants := 0
	for _, g := range f.ledger.grants {
		if g.amount == 25 {
			firstPostGrants++
		}
	}
	assert.Equal(t, 1, firstPostGrants)
}

func TestStreakAchievementFromStreakRecord(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	rec, err := f.streaks.GetOrCreate(ctx, userID, "UTC")
	require.NoError(t, err)
	rec.CurrentStreak = 7
	require.NoError(t, f.streaks.Save(ctx, rec))

	require.NoError(t, f.engine.HandleEvent(ctx, userID, entity.EventStreakUpdated))

	ua, err := f.progress.Get(ctx, userID, "streak_7_days")
	require.NoError(t, err)
	assert.True(t, ua.IsCompleted)

	// 30 and 100 day streaks remain in progress.
	ua, err = f.progress.Get(ctx, userID, "streak_30_days")
	require.NoError(t, err)
	assert.False(t, ua.IsCompleted)
	assert.Equal(t, 7, ua.ProgressCurrent)
}

func TestManualAward(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	ua, err := f.engine.ManualAward(ctx, userID, "popular_posts")
	require.NoError(t, err)
	assert.True(t, ua.IsCompleted)
	assert.Equal(t, 1, ua.CompletionCount)

	require.Len(t, f.ledger.grants, 1)
	assert.Equal(t, 250, f.ledger.grants[0].amount)

	// A second manual award of the same achievement is refused.
	_, err = f.engine.ManualAward(ctx, userID, "popular_posts")
	assert.ErrorIs(t, err, apperror.ErrAlreadyCompleted)
	assert.Len(t, f.ledger.grants, 1)
}

func TestManualAwardUnknownAchievement(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.ManualAward(context.Background(), uuid.New(), "no_such_thing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRecalculateAllCompletesEverythingEarned(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, f.counters.Increment(ctx, userID, "total_posts", 1))
	for i := 0; i < 50; i++ {
		require.NoError(t, f.counters.Increment(ctx, userID, "total_reactions_given", 1))
	}

	require.NoError(t, f.engine.RecalculateAll(ctx, userID))

	for _, id := range []string{"first_post", "helper_reactions"} {
		ua, err := f.progress.Get(ctx, userID, id)
		require.NoError(t, err)
		assert.True(t, ua.IsCompleted, "expected %s completed", id)
	}

	counters, err := f.counters.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, counters.TotalAchievements)
}
