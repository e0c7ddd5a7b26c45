package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/agutorres/lineup-server/internal/domain/engagement"
	"github.com/agutorres/lineup-server/internal/infrastructure/auth"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver/requests"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver/responses"
)

// EngagementHandler exposes comments and favorites.
type EngagementHandler struct {
	service *domain.Service
	log     zerolog.Logger
}

func NewEngagementHandler(service *domain.Service, log zerolog.Logger) *EngagementHandler {
	return &EngagementHandler{
		service: service,
		log:     log.With().Str("component", "engagement-handler").Logger(),
	}
}

// CreateComment godoc
// @Summary      Comment on a video
// @Tags         engagement
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Video ID"
// @Param        request  body      requests.CreateCommentRequest  true  "Comment"
// @Success      201      {object}  engagement.Comment
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/videos/{id}/comments [post]
func (h *EngagementHandler) CreateComment(c *gin.Context) {
	var req requests.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := auth.Subject(c)
	if userID == "" {
		userID = req.UserID
	}
	comment, err := h.service.AddComment(c.Request.Context(), c.Param("id"), userID, req.Body)
	if err != nil {
		responses.HandleError(c, err, "failed to add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments godoc
// @Summary      List a video's comments
// @Tags         engagement
// @Produce      json
// @Param        id   path     string  true  "Video ID"
// @Success      200  {array}  engagement.Comment
// @Router       /v1/videos/{id}/comments [get]
func (h *EngagementHandler) ListComments(c *gin.Context) {
	comments, err := h.service.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to list comments")
		return
	}
	c.JSON(http.StatusOK, comments)
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Description  Only the comment author can delete it.
// @Tags         engagement
// @Param        id         path   string  true   "Video ID"
// @Param        commentId  path   string  true   "Comment ID"
// @Param        user_id    query  string  false  "Author id when auth is disabled"
// @Success      204
// @Failure      403  {object}  responses.ErrorResponse
// @Router       /v1/videos/{id}/comments/{commentId} [delete]
func (h *EngagementHandler) DeleteComment(c *gin.Context) {
	userID := auth.Subject(c)
	if userID == "" {
		userID = c.Query("user_id")
	}
	if err := h.service.DeleteComment(c.Request.Context(), c.Param("commentId"), userID); err != nil {
		responses.HandleError(c, err, "failed to delete comment")
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleFavorite godoc
// @Summary      Toggle a favorite
// @Tags         engagement
// @Accept       json
// @Produce      json
// @Param        userId   path      string                          true  "User ID"
// @Param        request  body      requests.ToggleFavoriteRequest  true  "Video"
// @Success      200      {object}  map[string]bool
// @Router       /v1/users/{userId}/favorites [post]
func (h *EngagementHandler) ToggleFavorite(c *gin.Context) {
	var req requests.ToggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	favorited, err := h.service.ToggleFavorite(c.Request.Context(), c.Param("userId"), req.VideoID)
	if err != nil {
		responses.HandleError(c, err, "failed to toggle favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// ListFavorites godoc
// @Summary      List a user's favorites
// @Tags         engagement
// @Produce      json
// @Param        userId  path     string  true  "User ID"
// @Success      200     {array}  engagement.Favorite
// @Router       /v1/users/{userId}/favorites [get]
func (h *EngagementHandler) ListFavorites(c *gin.Context) {
	favorites, err := h.service.ListFavorites(c.Request.Context(), c.Param("userId"))
	if err != nil {
		responses.HandleError(c, err, "failed to list favorites")
		return
	}
	c.JSON(http.StatusOK, favorites)
}
