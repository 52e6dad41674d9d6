package handler

import (
	"net/http"

	httpPlatform "github.com/andreypavlenko/scout/internal/platform/http"
	"github.com/andreypavlenko/scout/modules/feedback/model"
	"github.com/andreypavlenko/scout/modules/feedback/service"
	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles feedback session HTTP requests
type FeedbackHandler struct {
	service *service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(service *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// RegisterRoutes registers feedback routes
func (h *FeedbackHandler) RegisterRoutes(rg *gin.RouterGroup) {
	feedback := rg.Group("/feedback")
	{
		feedback.POST("/start", h.Start)
		feedback.POST("/chat", h.Chat)
		feedback.GET("/session/:id", h.GetSession)
		feedback.GET("/preview/:meeting_id", h.Preview)
	}
	rg.PUT("/insights/:id/edit", h.EditInsight)
}

// Start godoc
// @Summary Start a feedback session
// @Description Open a three-question feedback conversation for a meeting
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body model.StartRequest true "Meeting and startup"
// @Success 201 {object} model.SessionDTO
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Router /feedback/start [post]
func (h *FeedbackHandler) Start(c *gin.Context) {
	var req model.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	session, err := h.service.Start(c.Request.Context(), &req)
	if err != nil {
		respondWithFeedbackError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusCreated, session)
}

// Chat godoc
// @Summary Answer the current question
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body model.ChatRequest true "Reply"
// @Success 200 {object} model.ChatResponse
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /feedback/chat [post]
func (h *FeedbackHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	resp, err := h.service.Chat(c.Request.Context(), &req)
	if err != nil {
		respondWithFeedbackError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, resp)
}

// GetSession godoc
// @Summary Get a feedback session
// @Tags feedback
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} model.SessionDTO
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /feedback/session/{id} [get]
func (h *FeedbackHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithFeedbackError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, session)
}

// Preview godoc
// @Summary Preview the feedback of a meeting
// @Tags feedback
// @Produce json
// @Param meeting_id path string true "Meeting ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /feedback/preview/{meeting_id} [get]
func (h *FeedbackHandler) Preview(c *gin.Context) {
	session, insight, err := h.service.Preview(c.Request.Context(), c.Param("meeting_id"))
	if err != nil {
		respondWithFeedbackError(c, err)
		return
	}

	body := gin.H{"session": session}
	if insight != nil {
		body["insight"] = insight
	}
	httpPlatform.RespondWithData(c, http.StatusOK, body)
}

// EditInsight godoc
// @Summary Edit a completed insight
// @Description Replace the structured Q/A; the session history is preserved
// @Tags feedback
// @Accept json
// @Produce json
// @Param id path string true "Insight ID"
// @Param request body model.EditInsightRequest true "New structured Q/A"
// @Success 200 {object} model.InsightDTO
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /insights/{id}/edit [put]
func (h *FeedbackHandler) EditInsight(c *gin.Context) {
	var req model.EditInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	insight, err := h.service.EditInsight(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondWithFeedbackError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, insight)
}

func respondWithFeedbackError(c *gin.Context, err error) {
	errorCode := model.GetErrorCode(err)
	errorMessage := model.GetErrorMessage(err)

	statusCode := http.StatusInternalServerError
	switch errorCode {
	case model.CodeSessionNotFound, model.CodeInsightNotFound:
		statusCode = http.StatusNotFound
	case model.CodeMeetingIDRequired, model.CodeUserIDRequired, model.CodeStartupNameRequired,
		model.CodeMessageRequired, model.CodeInvalidQA:
		statusCode = http.StatusBadRequest
	case model.CodeSessionNotActive:
		statusCode = http.StatusConflict
	}

	httpPlatform.RespondWithError(c, statusCode, string(errorCode), errorMessage)
}
