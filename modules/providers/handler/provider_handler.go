package handler

import (
	"net/http"

	httpPlatform "github.com/andreypavlenko/scout/internal/platform/http"
	"github.com/andreypavlenko/scout/modules/providers/model"
	"github.com/andreypavlenko/scout/modules/providers/service"
	"github.com/gin-gonic/gin"
)

// maxFilterBatch bounds one filter run; larger batches should be split by
// the caller.
const maxFilterBatch = 500

// ProviderHandler handles provider filter HTTP requests
type ProviderHandler struct {
	filter *service.ProviderFilter
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(filter *service.ProviderFilter) *ProviderHandler {
	return &ProviderHandler{filter: filter}
}

// RegisterRoutes registers provider routes
func (h *ProviderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	providers := rg.Group("/providers")
	{
		providers.POST("/filter", h.Filter)
		providers.GET("/viable", h.Viable)
	}
}

// Filter godoc
// @Summary Filter candidates for B2B provider viability
// @Description Run the multi-stage viability funnel over a candidate batch
// @Tags providers
// @Accept json
// @Produce json
// @Param request body model.FilterRequest true "Candidates"
// @Success 200 {object} model.FilterResult
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Router /providers/filter [post]
func (h *ProviderHandler) Filter(c *gin.Context) {
	var req model.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}
	if len(req.Candidates) == 0 {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "NO_CANDIDATES", "At least one candidate is required")
		return
	}
	if len(req.Candidates) > maxFilterBatch {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "BATCH_TOO_LARGE", "Too many candidates in one batch")
		return
	}

	result := h.filter.Filter(c.Request.Context(), req.Candidates)
	httpPlatform.RespondWithData(c, http.StatusOK, result)
}

// Viable godoc
// @Summary Last filter run
// @Description Return the most recent filter result
// @Tags providers
// @Produce json
// @Success 200 {object} model.FilterResult
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /providers/viable [get]
func (h *ProviderHandler) Viable(c *gin.Context) {
	result := h.filter.LastRun()
	if result == nil {
		httpPlatform.RespondWithError(c, http.StatusNotFound, "NO_FILTER_RUN", "No filter run recorded yet")
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, result)
}
