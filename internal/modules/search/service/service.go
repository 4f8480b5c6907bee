package service

import (
	"encoding/json"
	"html"
	"log"
	"strings"

	"anoa.com/momentum/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const achievementsIndex = "achievements"

// SearchService keeps the achievement catalog searchable. The index is
// derived data and rebuilt in full on every catalog sync.
type SearchService interface {
	IndexAchievements(defs []entity.Achievement) error
	SearchAchievements(query string, limit int) ([]string, error)
	DeleteAchievement(id string) error
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	filterableAttrs := []string{"category", "tier"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index(achievementsIndex).UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update achievements filterable attributes: %v", err)
	}

	sortableAttrs := []string{"sort_order", "reward_points"}
	_, err = s.client.Index(achievementsIndex).UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update achievements sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type meiliAchievementDoc struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Tier         string `json:"tier"`
	RewardPoints int    `json:"reward_points"`
	SortOrder    int    `json:"sort_order"`
}

func (s *searchService) cleanForIndex(content string) string {
	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexAchievements(defs []entity.Achievement) error {
	if len(defs) == 0 {
		return nil
	}

	docs := make([]meiliAchievementDoc, 0, len(defs))
	for _, def := range defs {
		docs = append(docs, meiliAchievementDoc{
			ID:           def.ID,
			Name:         def.Name,
			Description:  s.cleanForIndex(def.Description),
			Category:     string(def.Category),
			Tier:         string(def.Tier),
			RewardPoints: def.RewardPoints,
			SortOrder:    def.SortOrder,
		})
	}

	task, err := s.client.Index(achievementsIndex).AddDocuments(docs, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed %d achievements, task id: %d", len(docs), task.TaskUID)
	return nil
}

func (s *searchService) SearchAchievements(query string, limit int) ([]string, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	res, err := s.client.Index(achievementsIndex).Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		raw, ok := hit["id"]
		if !ok {
			continue
		}
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *searchService) DeleteAchievement(id string) error {
	_, err := s.client.Index(achievementsIndex).DeleteDocument(id)
	return err
}

func strPtr(s string) *string {
	return &s
}
