package handler

import (
	"net/http"
	"strconv"

	"github.com/andreypavlenko/scout/internal/platform/auth"
	httpPlatform "github.com/andreypavlenko/scout/internal/platform/http"
	"github.com/andreypavlenko/scout/modules/startups/model"
	"github.com/andreypavlenko/scout/modules/startups/service"
	"github.com/gin-gonic/gin"
)

// StartupHandler handles startup HTTP requests
type StartupHandler struct {
	service *service.StartupService
}

// NewStartupHandler creates a new startup handler
func NewStartupHandler(service *service.StartupService) *StartupHandler {
	return &StartupHandler{service: service}
}

// RegisterRoutes registers startup routes
func (h *StartupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	startups := rg.Group("/startups")
	{
		startups.GET("/all", h.ListAll)
		startups.GET("/prioritized", h.Prioritized)
		startups.GET("/top-funded", h.TopFunded)
		startups.POST("/batch-insights", h.BatchInsights)
		startups.GET("/enriched/search", h.EnrichedSearch)
		startups.GET("/enrichment/stats", h.EnrichmentStats)
		startups.GET("/:id/insights", h.Insights)
		startups.GET("/:id/enrichment", h.Enrichment)
	}
}

// ListAll godoc
// @Summary List all startups
// @Description Get a page of the startup corpus
// @Tags startups
// @Produce json
// @Param skip query int false "Offset (default 0)"
// @Param limit query int false "Page size (default 50, max 100)"
// @Success 200 {object} map[string]interface{}
// @Router /startups/all [get]
func (h *StartupHandler) ListAll(c *gin.Context) {
	pagination, err := httpPlatform.ParsePaginationParams(c)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "INVALID_PAGINATION_PARAMS", "Invalid pagination parameters")
		return
	}
	skip, limit := pagination.Offset, pagination.Limit

	filter := &model.ListFilter{
		Industry:      c.Query("industry"),
		Country:       c.Query("country"),
		NameSubstring: c.Query("name"),
	}
	if stage := c.Query("stage"); stage != "" {
		filter.Stage = model.ParseStage(stage)
	}

	startups, total := h.service.List(filter, skip, limit)

	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{
		"total":    total,
		"count":    len(startups),
		"startups": startups,
	})
}

// Prioritized godoc
// @Summary Prioritized startup feed
// @Description Rank startups for a user with personalization, diversity, and exploration
// @Tags startups
// @Produce json
// @Param user_id query string false "User ID for personalization"
// @Param limit query int false "Result size (default 50)"
// @Param min_score query int false "Minimum base score (default 30)"
// @Success 200 {object} map[string]interface{}
// @Router /startups/prioritized [get]
func (h *StartupHandler) Prioritized(c *gin.Context) {
	userID := c.Query("user_id")
	if authed, ok := auth.GetUserID(c); ok {
		userID = authed
	}

	limit := intQuery(c, "limit", 50)
	if limit > 200 {
		limit = 200
	}
	minScore := intQuery(c, "min_score", 30)

	result := h.service.Prioritize(c.Request.Context(), userID, limit, minScore)

	body := gin.H{
		"total":             result.Total,
		"prioritized_count": len(result.Startups),
		"personalized":      result.Personalized,
		"startups":          result.Startups,
	}
	if userID != "" {
		body["user_id"] = userID
	}
	if result.FromCache {
		body["from_cache"] = true
	}

	httpPlatform.RespondWithData(c, http.StatusOK, body)
}

// TopFunded godoc
// @Summary Top startups by funding
// @Tags startups
// @Produce json
// @Param limit query int false "Result size (default 10, max 50)"
// @Success 200 {object} map[string]interface{}
// @Router /startups/top-funded [get]
func (h *StartupHandler) TopFunded(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	if limit > 50 {
		limit = 50
	}

	startups := h.service.TopByFunding(limit)
	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{
		"count":    len(startups),
		"startups": startups,
	})
}

// Insights godoc
// @Summary Category insights for a startup
// @Tags startups
// @Produce json
// @Param id path int true "Startup ID"
// @Success 200 {object} model.InsightsDTO
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /startups/{id}/insights [get]
func (h *StartupHandler) Insights(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "INVALID_ID", "Startup id must be an integer")
		return
	}

	insights, err := h.service.Insights(id)
	if err != nil {
		respondWithStartupError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, insights)
}

// BatchInsights godoc
// @Summary Category insights for multiple startups
// @Tags startups
// @Accept json
// @Produce json
// @Param request body model.BatchInsightsRequest true "Startup IDs"
// @Success 200 {array} model.InsightsDTO
// @Router /startups/batch-insights [post]
func (h *StartupHandler) BatchInsights(c *gin.Context) {
	var req model.BatchInsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	insights := h.service.BatchInsights(req.StartupIDs)
	httpPlatform.RespondWithData(c, http.StatusOK, insights)
}

// EnrichedSearch godoc
// @Summary Search enriched startups
// @Tags startups
// @Produce json
// @Param query query string false "Search text"
// @Param enrichment_type query string false "Restrict to one enrichment field"
// @Param limit query int false "Result size (default 20)"
// @Success 200 {object} map[string]interface{}
// @Router /startups/enriched/search [get]
func (h *StartupHandler) EnrichedSearch(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	if limit > 100 {
		limit = 100
	}

	startups := h.service.EnrichedSearch(c.Query("query"), c.Query("enrichment_type"), limit)
	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{
		"count":    len(startups),
		"startups": startups,
	})
}

// Enrichment godoc
// @Summary Enrichment data for a startup
// @Tags startups
// @Produce json
// @Param id path int true "Startup ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /startups/{id}/enrichment [get]
func (h *StartupHandler) Enrichment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "INVALID_ID", "Startup id must be an integer")
		return
	}

	enrichment, err := h.service.Enrichment(id)
	if err != nil {
		respondWithStartupError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, enrichment)
}

// EnrichmentStats godoc
// @Summary Enrichment coverage statistics
// @Tags startups
// @Produce json
// @Success 200 {object} model.EnrichmentStatsDTO
// @Router /startups/enrichment/stats [get]
func (h *StartupHandler) EnrichmentStats(c *gin.Context) {
	httpPlatform.RespondWithData(c, http.StatusOK, h.service.EnrichmentStats())
}

func respondWithStartupError(c *gin.Context, err error) {
	errorCode := model.GetErrorCode(err)
	errorMessage := model.GetErrorMessage(err)

	statusCode := http.StatusInternalServerError
	switch errorCode {
	case model.CodeStartupNotFound, model.CodeEnrichmentNotFound:
		statusCode = http.StatusNotFound
	case model.CodeInvalidFilter:
		statusCode = http.StatusBadRequest
	}

	httpPlatform.RespondWithError(c, statusCode, string(errorCode), errorMessage)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return v
		}
	}
	return fallback
}
