package service

import (
	"context"
	"log"
	"sync"

	"anoa.com/momentum/internal/entity"
	catalogRepo "anoa.com/momentum/internal/modules/catalog/repository"
)

// Catalog is the read side of the achievement definitions. After Load the
// snapshot is immutable and safe to share; Reload swaps it atomically.
type Catalog interface {
	// Sync upserts the built-in definitions, then loads the active set.
	Sync(ctx context.Context) error
	Reload(ctx context.Context) error
	All() []entity.Achievement
	Get(id string) (entity.Achievement, bool)
	RelevantFor(eventType entity.EventType) []entity.Achievement
}

type catalogService struct {
	repo catalogRepo.CatalogRepository

	mu     sync.RWMutex
	byID   map[string]entity.Achievement
	sorted []entity.Achievement
}

func NewCatalogService(repo catalogRepo.CatalogRepository) Catalog {
	return &catalogService{
		repo: repo,
		byID: make(map[string]entity.Achievement),
	}
}

func (s *catalogService) Sync(ctx context.Context) error {
	if err := s.repo.Upsert(ctx, DefaultAchievements()); err != nil {
		return err
	}
	return s.Reload(ctx)
}

func (s *catalogService) Reload(ctx context.Context) error {
	defs, err := s.repo.FindActive(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]entity.Achievement, len(defs))
	for _, def := range defs {
		byID[def.ID] = def
	}

	s.mu.Lock()
	s.byID = byID
	s.sorted = defs
	s.mu.Unlock()

	log.Printf("Loaded %d active achievements", len(defs))
	return nil
}

func (s *catalogService) All() []entity.Achievement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Achievement, len(s.sorted))
	copy(out, s.sorted)
	return out
}

func (s *catalogService) Get(id string) (entity.Achievement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.byID[id]
	return def, ok
}

func (s *catalogService) RelevantFor(eventType entity.EventType) []entity.Achievement {
	types := requirementTypesFor(eventType)
	if len(types) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.Achievement
	for _, def := range s.sorted {
		for _, rt := range types {
			if def.RequirementType == rt {
				out = append(out, def)
				break
			}
		}
	}
	return out
}

// requirementTypesFor is the fixed event-type to requirement-type mapping.
func requirementTypesFor(eventType entity.EventType) []entity.RequirementType {
	switch eventType {
	case entity.EventPostCreated:
		return []entity.RequirementType{entity.RequirementPostsCount, entity.RequirementStreakDays}
	case entity.EventReactionGiven:
		return []entity.RequirementType{entity.RequirementReactionsGiven}
	case entity.EventReactionReceived:
		return []entity.RequirementType{entity.RequirementReactionsReceived}
	case entity.EventCommentMade:
		return []entity.RequirementType{entity.RequirementCommentsMade}
	case entity.EventGoalProgressUpdated:
		return []entity.RequirementType{entity.RequirementGoalCompletionPct}
	case entity.EventStreakUpdated:
		return []entity.RequirementType{entity.RequirementStreakDays}
	case entity.EventManualAward:
		return []entity.RequirementType{entity.RequirementManual}
	}
	return nil
}
