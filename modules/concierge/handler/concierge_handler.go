package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	httpPlatform "github.com/andreypavlenko/scout/internal/platform/http"
	"github.com/andreypavlenko/scout/internal/platform/llm"
	"github.com/andreypavlenko/scout/modules/concierge/model"
	"github.com/andreypavlenko/scout/modules/concierge/service"
	"github.com/gin-gonic/gin"
)

// ConciergeHandler handles concierge HTTP requests
type ConciergeHandler struct {
	orchestrator *service.Orchestrator
}

// NewConciergeHandler creates a new concierge handler
func NewConciergeHandler(orchestrator *service.Orchestrator) *ConciergeHandler {
	return &ConciergeHandler{orchestrator: orchestrator}
}

// RegisterRoutes registers concierge routes
func (h *ConciergeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	concierge := rg.Group("/concierge")
	{
		concierge.POST("/ask", h.Ask)
		concierge.POST("/generate-linkedin-post", h.GenerateLinkedInPost)
		concierge.POST("/directions", h.Directions)
		concierge.POST("/startup-details", h.StartupDetails)
		concierge.POST("/event-details", h.EventDetails)
	}
}

// Ask godoc
// @Summary Ask the concierge
// @Description Answer a natural-language question over the corpus and events
// @Tags concierge
// @Accept json
// @Produce json
// @Param request body model.AskRequest true "Question"
// @Success 200 {object} model.AskResponse
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 503 {object} httpPlatform.ErrorResponse
// @Router /concierge/ask [post]
func (h *ConciergeHandler) Ask(c *gin.Context) {
	var req model.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	resp, err := h.orchestrator.Answer(c.Request.Context(), &req)
	if err != nil {
		respondWithConciergeError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, resp)
}

// GenerateLinkedInPost godoc
// @Summary Generate a LinkedIn post
// @Tags concierge
// @Accept json
// @Produce json
// @Param request body model.LinkedInPostRequest true "Post brief"
// @Success 200 {object} model.AskResponse
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 503 {object} httpPlatform.ErrorResponse
// @Router /concierge/generate-linkedin-post [post]
func (h *ConciergeHandler) GenerateLinkedInPost(c *gin.Context) {
	var req model.LinkedInPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	answer, err := h.orchestrator.GenerateLinkedInPost(c.Request.Context(), &req)
	if err != nil {
		respondWithConciergeError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, &model.AskResponse{
		Answer:       answer,
		QuestionType: model.IntentLinkedInPost,
	})
}

// Directions godoc
// @Summary Venue directions
// @Tags concierge
// @Accept json
// @Produce json
// @Param request body model.DirectionsRequest true "Destination"
// @Success 200 {object} model.AskResponse
// @Router /concierge/directions [post]
func (h *ConciergeHandler) Directions(c *gin.Context) {
	var req model.DirectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.To) == "" {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Destination is required")
		return
	}

	resp, err := h.orchestrator.Answer(c.Request.Context(), &model.AskRequest{
		Question: "directions to " + req.To,
	})
	if err != nil {
		respondWithConciergeError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, resp)
}

// StartupDetails godoc
// @Summary Ask about one startup
// @Tags concierge
// @Accept json
// @Produce json
// @Param request body model.StartupDetailsRequest true "Company"
// @Success 200 {object} model.AskResponse
// @Router /concierge/startup-details [post]
func (h *ConciergeHandler) StartupDetails(c *gin.Context) {
	var req model.StartupDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CompanyName) == "" {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Company name is required")
		return
	}

	resp, err := h.orchestrator.Answer(c.Request.Context(), &model.AskRequest{
		Question:    "Tell me about the startup " + req.CompanyName,
		UserContext: req.UserContext,
	})
	if err != nil {
		respondWithConciergeError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, resp)
}

// EventDetails godoc
// @Summary Ask about conference events
// @Tags concierge
// @Accept json
// @Produce json
// @Param request body model.EventDetailsRequest true "Query"
// @Success 200 {object} model.AskResponse
// @Router /concierge/event-details [post]
func (h *ConciergeHandler) EventDetails(c *gin.Context) {
	var req model.EventDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Query is required")
		return
	}

	resp, err := h.orchestrator.Answer(c.Request.Context(), &model.AskRequest{
		Question:    "About the conference schedule: " + req.Query,
		UserContext: req.UserContext,
	})
	if err != nil {
		respondWithConciergeError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, resp)
}

func respondWithConciergeError(c *gin.Context, err error) {
	errorCode := model.GetErrorCode(err)
	errorMessage := model.GetErrorMessage(err)

	var circuitOpen *llm.CircuitOpenError
	if errors.As(err, &circuitOpen) && circuitOpen.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(circuitOpen.RetryAfter.Seconds()+1)))
	}

	statusCode := http.StatusInternalServerError
	switch errorCode {
	case model.CodeQuestionRequired, model.CodeTopicRequired:
		statusCode = http.StatusBadRequest
	case model.CodeServiceBusy, model.CodeUnavailable:
		statusCode = http.StatusServiceUnavailable
	}

	httpPlatform.RespondWithError(c, statusCode, string(errorCode), errorMessage)
}
