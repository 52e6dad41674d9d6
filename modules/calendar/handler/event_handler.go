package handler

import (
	"net/http"
	"time"

	httpPlatform "github.com/andreypavlenko/scout/internal/platform/http"
	"github.com/andreypavlenko/scout/modules/calendar/model"
	"github.com/andreypavlenko/scout/modules/calendar/service"
	"github.com/gin-gonic/gin"
)

// EventHandler handles calendar HTTP requests
type EventHandler struct {
	service *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(service *service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterRoutes registers calendar routes
func (h *EventHandler) RegisterRoutes(rg *gin.RouterGroup) {
	events := rg.Group("/events")
	{
		events.POST("", h.Create)
		events.GET("", h.List)
		events.GET("/:id", h.Get)
		events.PUT("/:id", h.Update)
		events.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary Create a calendar event
// @Tags calendar
// @Accept json
// @Produce json
// @Param request body model.CreateEventRequest true "Event"
// @Success 201 {object} model.EventDTO
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 409 {object} httpPlatform.ErrorResponse "Attendee conflict"
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req model.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	event, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondWithEventError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusCreated, event)
}

// List godoc
// @Summary List calendar events
// @Tags calendar
// @Produce json
// @Param from query string false "RFC3339 window start"
// @Param to query string false "RFC3339 window end"
// @Param attendee query string false "Filter by attendee user id"
// @Success 200 {array} model.EventDTO
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpPlatform.RespondWithError(c, http.StatusBadRequest, "INVALID_TIME", "from must be RFC3339")
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpPlatform.RespondWithError(c, http.StatusBadRequest, "INVALID_TIME", "to must be RFC3339")
			return
		}
		to = &t
	}

	events, err := h.service.List(c.Request.Context(), from, to, c.Query("attendee"))
	if err != nil {
		respondWithEventError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, events)
}

// Get godoc
// @Summary Get a calendar event
// @Tags calendar
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} model.EventDTO
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithEventError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, event)
}

// Update godoc
// @Summary Update a calendar event
// @Tags calendar
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body model.UpdateEventRequest true "Changes"
// @Success 200 {object} model.EventDTO
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	var req model.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	event, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondWithEventError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete a calendar event
// @Tags calendar
// @Param id path string true "Event ID"
// @Success 204
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondWithEventError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondWithEventError(c *gin.Context, err error) {
	errorCode := model.GetErrorCode(err)
	errorMessage := model.GetErrorMessage(err)

	statusCode := http.StatusInternalServerError
	switch errorCode {
	case model.CodeEventNotFound:
		statusCode = http.StatusNotFound
	case model.CodeTitleRequired, model.CodeInvalidTimeRange:
		statusCode = http.StatusBadRequest
	case model.CodeAttendeeConflict:
		statusCode = http.StatusConflict
	}

	httpPlatform.RespondWithError(c, statusCode, string(errorCode), errorMessage)
}
