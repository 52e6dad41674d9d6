package handler

import (
	"net/http"

	"github.com/andreypavlenko/scout/internal/platform/auth"
	httpPlatform "github.com/andreypavlenko/scout/internal/platform/http"
	"github.com/andreypavlenko/scout/modules/votes/model"
	"github.com/andreypavlenko/scout/modules/votes/service"
	"github.com/gin-gonic/gin"
)

// VoteHandler handles vote and rating HTTP requests
type VoteHandler struct {
	service *service.VoteService
}

// NewVoteHandler creates a new vote handler
func NewVoteHandler(service *service.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

// RegisterRoutes registers vote routes
func (h *VoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/votes", h.CreateVote)
	rg.GET("/votes", h.ListVotes)
	rg.POST("/ratings", h.CreateRating)
	rg.GET("/ratings", h.ListRatings)
}

// CreateVote godoc
// @Summary Record a vote
// @Description Record a swipe decision on a startup; re-voting overwrites
// @Tags votes
// @Accept json
// @Produce json
// @Param request body model.CreateVoteRequest true "Vote"
// @Success 201 {object} model.VoteDTO
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 409 {object} httpPlatform.ErrorResponse
// @Router /votes [post]
func (h *VoteHandler) CreateVote(c *gin.Context) {
	var req model.CreateVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	if userID, ok := auth.GetUserID(c); ok {
		req.UserID = userID
	}

	vote, err := h.service.RecordVote(c.Request.Context(), &req)
	if err != nil {
		respondWithVoteError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusCreated, vote)
}

// ListVotes godoc
// @Summary List votes
// @Description Get the effective votes of a user
// @Tags votes
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {array} model.VoteDTO
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Router /votes [get]
func (h *VoteHandler) ListVotes(c *gin.Context) {
	userID := c.Query("user_id")
	if authed, ok := auth.GetUserID(c); ok {
		userID = authed
	}

	votes, err := h.service.VotesOf(c.Request.Context(), userID)
	if err != nil {
		respondWithVoteError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, votes)
}

// CreateRating godoc
// @Summary Record a rating
// @Description Record a 1-5 rating on a startup, last-write-wins
// @Tags votes
// @Accept json
// @Produce json
// @Param request body model.CreateRatingRequest true "Rating"
// @Success 201 {object} model.RatingDTO
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Router /ratings [post]
func (h *VoteHandler) CreateRating(c *gin.Context) {
	var req model.CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload")
		return
	}

	if userID, ok := auth.GetUserID(c); ok {
		req.UserID = userID
	}

	rating, err := h.service.RecordRating(c.Request.Context(), &req)
	if err != nil {
		respondWithVoteError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusCreated, rating)
}

// ListRatings godoc
// @Summary List ratings
// @Description Get all ratings of a user
// @Tags votes
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {array} model.RatingDTO
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Router /ratings [get]
func (h *VoteHandler) ListRatings(c *gin.Context) {
	userID := c.Query("user_id")
	if authed, ok := auth.GetUserID(c); ok {
		userID = authed
	}

	ratings, err := h.service.RatingsOf(c.Request.Context(), userID)
	if err != nil {
		respondWithVoteError(c, err)
		return
	}

	httpPlatform.RespondWithData(c, http.StatusOK, ratings)
}

func respondWithVoteError(c *gin.Context, err error) {
	errorCode := model.GetErrorCode(err)
	errorMessage := model.GetErrorMessage(err)

	statusCode := http.StatusInternalServerError
	switch errorCode {
	case model.CodeUserIDRequired, model.CodeStartupIDRequired, model.CodeInvalidScore:
		statusCode = http.StatusBadRequest
	case model.CodeDuplicateVote:
		statusCode = http.StatusConflict
	}

	httpPlatform.RespondWithError(c, statusCode, string(errorCode), errorMessage)
}
