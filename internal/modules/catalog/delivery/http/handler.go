package http

import (
	"net/http"
	"strconv"

	"anoa.com/momentum/internal/entity"
	catalogService "anoa.com/momentum/internal/modules/catalog/service"
	engineService "anoa.com/momentum/internal/modules/engine/service"
	searchService "anoa.com/momentum/internal/modules/search/service"
	"anoa.com/momentum/pkg/response"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog catalogService.Catalog
	search  searchService.SearchService
	engine  engineService.Engine
}

func NewCatalogHandler(catalog catalogService.Catalog, search searchService.SearchService, engine engineService.Engine) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, search: search, engine: engine}
}

// List returns the active catalog. With ?q= the result is narrowed by
// full-text search while keeping the catalog's canonical ordering data.
func (h *CatalogHandler) List(c *gin.Context) {
	defs := h.catalog.All()

	if q := c.Query("q"); q != "" && h.search != nil {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		ids, err := h.search.SearchAchievements(q, limit)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		byID := make(map[string]entity.Achievement, len(defs))
		for _, def := range defs {
			byID[def.ID] = def
		}
		matched := make([]entity.Achievement, 0, len(ids))
		for _, id := range ids {
			if def, ok := byID[id]; ok {
				matched = append(matched, def)
			}
		}
		defs = matched
	}

	c.JSON(http.StatusOK, gin.H{"achievements": defs})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	def, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "achievement not found"})
		return
	}
	c.JSON(http.StatusOK, def)
}

// MyProgress returns the caller's progress rows, definitions preloaded.
func (h *CatalogHandler) MyProgress(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	rows, err := h.engine.UserProgress(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	type progressView struct {
		entity.UserAchievement
		ProgressPercentage int `json:"progress_percentage"`
	}
	views := make([]progressView, 0, len(rows))
	for _, row := range rows {
		views = append(views, progressView{
			UserAchievement:    row,
			ProgressPercentage: row.ProgressPercentage(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"achievements": views})
}
