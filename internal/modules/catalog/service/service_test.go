package service

import (
	"context"
	"testing"

	"anoa.com/momentum/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogRepo struct {
	defs    map[string]entity.Achievement
	upserts int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{defs: make(map[string]entity.Achievement)}
}

func (f *fakeCatalogRepo) Upsert(ctx context.Context, defs []entity.Achievement) error {
	f.upserts++
	for _, def := range defs {
		f.defs[def.ID] = def
	}
	return nil
}

func (f *fakeCatalogRepo) FindActive(ctx context.Context) ([]entity.Achievement, error) {
	var out []entity.Achievement
	for _, def := range f.defs {
		if def.IsActive {
			out = append(out, def)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) Deactivate(ctx context.Context, id string) error {
	def := f.defs[id]
	def.IsActive = false
	f.defs[id] = def
	return nil
}

func TestSyncLoadsDefaults(t *testing.T) {
	repo := newFakeCatalogRepo()
	catalog := NewCatalogService(repo)

	require.NoError(t, catalog.Sync(context.Background()))

	assert.Len(t, catalog.All(), len(DefaultAchievements()))

	def, ok := catalog.Get("first_post")
	require.True(t, ok)
	assert.Equal(t, 25, def.RewardPoints)
	assert.Equal(t, 1, def.RequirementTarget)
}

func TestSyncIsIdempotent(t *testing.T) {
	repo := newFakeCatalogRepo()
	catalog := NewCatalogService(repo)

	require.NoError(t, catalog.Sync(context.Background()))
	require.NoError(t, catalog.Sync(context.Background()))

	assert.Len(t, catalog.All(), len(DefaultAchievements()))
	assert.Equal(t, 2, repo.upserts)
}

func TestRelevantForMapping(t *testing.T) {
	repo := newFakeCatalogRepo()
	catalog := NewCatalogService(repo)
	require.NoError(t, catalog.Sync(context.Background()))

	tests := []struct {
		event entity.EventType
		want  []entity.RequirementType
	}{
		{entity.EventPostCreated, []entity.RequirementType{entity.RequirementPostsCount, entity.RequirementStreakDays}},
		{entity.EventReactionGiven, []entity.RequirementType{entity.RequirementReactionsGiven}},
		{entity.EventReactionReceived, []entity.RequirementType{entity.RequirementReactionsReceived}},
		{entity.EventGoalProgressUpdated, []entity.RequirementType{entity.RequirementGoalCompletionPct}},
		{entity.EventStreakUpdated, []entity.RequirementType{entity.RequirementStreakDays}},
	}

	for _, tt := range tests {
		defs := catalog.RelevantFor(tt.event)
		require.NotEmpty(t, defs, "event %s", tt.event)
		for _, def := range defs {
			assert.Contains(t, tt.want, def.RequirementType, "event %s returned %s", tt.event, def.ID)
		}
	}
}

func TestRelevantForUnknownEvent(t *testing.T) {
	repo := newFakeCatalogRepo()
	catalog := NewCatalogService(repo)
	require.NoError(t, catalog.Sync(context.Background()))

	assert.Empty(t, catalog.RelevantFor(entity.EventType("bogus")))
}

func TestAllReturnsCopy(t *testing.T) {
	repo := newFakeCatalogRepo()
	catalog := NewCatalogService(repo)
	require.NoError(t, catalog.Sync(context.Background()))

	first := catalog.All()
	first[0].Name = "mutated"

	second := catalog.All()
	assert.NotEqual(t, "mutated", second[0].Name)
}
