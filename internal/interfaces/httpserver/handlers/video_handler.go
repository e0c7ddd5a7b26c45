package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/agutorres/lineup-server/internal/config"
	domain "github.com/agutorres/lineup-server/internal/domain/video"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver/requests"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver/responses"
)

// VideoHandler exposes the upload broker and video read endpoints.
type VideoHandler struct {
	cfg     *config.Config
	service *domain.Service
	details *domain.DetailService
	poller  *domain.StatusPoller
	log     zerolog.Logger
}

func NewVideoHandler(cfg *config.Config, service *domain.Service, details *domain.DetailService, poller *domain.StatusPoller, log zerolog.Logger) *VideoHandler {
	return &VideoHandler{
		cfg:     cfg,
		service: service,
		details: details,
		poller:  poller,
		log:     log.With().Str("component", "video-handler").Logger(),
	}
}

// CreateUpload godoc
// @Summary      Open an upload session
// @Description  Creates a pipeline upload session and a pending video record bound to it.
// @Tags         videos
// @Accept       json
// @Produce      json
// @Param        request  body      requests.CreateUploadRequest  true  "Video metadata"
// @Success      201      {object}  responses.UploadResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      502      {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/uploads [post]
func (h *VideoHandler) CreateUpload(c *gin.Context) {
	var req requests.CreateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, uploadURL, err := h.service.InitUpload(c.Request.Context(), req.ToDomain())
	if err != nil {
		responses.HandleError(c, err, "failed to open upload session")
		return
	}

	h.poller.Watch(rec.ID)
	c.JSON(http.StatusCreated, responses.BuildUploadResponse(rec, h.service.Resolver(), uploadURL))
}

// TransferComplete godoc
// @Summary      Mark the upload transfer finished
// @Description  Advances a pending record to processing. Advisory; idempotent past pending.
// @Tags         videos
// @Produce      json
// @Param        id   path      string  true  "Video ID"
// @Success      200  {object}  responses.VideoResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/videos/{id}/transfer-complete [post]
func (h *VideoHandler) TransferComplete(c *gin.Context) {
	rec, err := h.service.MarkTransferComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to mark transfer complete")
		return
	}
	h.poller.Watch(rec.ID)
	c.JSON(http.StatusOK, responses.BuildVideoResponse(rec, h.service.Resolver(), nil))
}

// Refresh godoc
// @Summary      Re-poll the pipeline for status
// @Description  Performs one synchronous reconciliation round and restarts the bounded watch if still in flight.
// @Tags         videos
// @Produce      json
// @Param        id   path      string  true  "Video ID"
// @Success      200  {object}  responses.VideoResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/videos/{id}/refresh [post]
func (h *VideoHandler) Refresh(c *gin.Context) {
	id := c.Param("id")
	rec, done, err := h.service.Refresh(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "failed to refresh video status")
		return
	}
	if rec == nil {
		// The cancelled orphan was removed during this round.
		c.JSON(http.StatusOK, gin.H{"deleted": true})
		return
	}
	if !done {
		h.poller.Watch(id)
	}
	c.JSON(http.StatusOK, responses.BuildVideoResponse(rec, h.service.Resolver(), nil))
}

// Get godoc
// @Summary      Fetch one video
// @Tags         videos
// @Produce      json
// @Param        id   path      string  true  "Video ID"
// @Success      200  {object}  responses.VideoResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/videos/{id} [get]
func (h *VideoHandler) Get(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "video not found")
		return
	}
	details, err := h.details.ListDetails(c.Request.Context(), id)
	if err != nil {
		h.log.Warn().Err(err).Str("video_id", id).Msg("failed to load details, returning record without them")
		details = nil
	}
	c.JSON(http.StatusOK, responses.BuildVideoResponse(rec, h.service.Resolver(), details))
}

// List godoc
// @Summary      List videos
// @Tags         videos
// @Produce      json
// @Param        map_id               query  string  false  "Filter by map"
// @Param        category_section_id  query  string  false  "Filter by section"
// @Param        side                 query  string  false  "t or ct"
// @Param        video_type           query  string  false  "Throw technique"
// @Param        difficulty           query  string  false  "easy, medium or hard"
// @Param        essential            query  bool    false  "Essential lineups only"
// @Param        status               query  string  false  "Lifecycle status"
// @Success      200  {array}  responses.VideoResponse
// @Router       /v1/videos [get]
func (h *VideoHandler) List(c *gin.Context) {
	filter := domain.Filter{
		MapID:             c.Query("map_id"),
		CategorySectionID: c.Query("category_section_id"),
		Side:              domain.Side(c.Query("side")),
		VideoType:         domain.VideoType(c.Query("video_type")),
		Difficulty:        domain.Difficulty(c.Query("difficulty")),
		Status:            domain.Status(c.Query("status")),
		EssentialOnly:     c.Query("essential") == "true",
	}
	recs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		responses.HandleError(c, err, "failed to list videos")
		return
	}
	c.JSON(http.StatusOK, responses.BuildVideoList(recs, h.service.Resolver()))
}

// Update godoc
// @Summary      Edit video metadata
// @Tags         videos
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Video ID"
// @Param        request  body      requests.UpdateVideoRequest  true  "New metadata"
// @Success      200      {object}  responses.VideoResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/videos/{id} [put]
func (h *VideoHandler) Update(c *gin.Context) {
	var req requests.UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.service.UpdateMetadata(c.Request.Context(), c.Param("id"), req.ToDomain())
	if err != nil {
		responses.HandleError(c, err, "failed to update video")
		return
	}
	c.JSON(http.StatusOK, responses.BuildVideoResponse(rec, h.service.Resolver(), nil))
}

// Delete godoc
// @Summary      Delete a video
// @Tags         videos
// @Param        id  path  string  true  "Video ID"
// @Success      204
// @Failure      404  {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/videos/{id} [delete]
func (h *VideoHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "failed to delete video")
		return
	}
	h.poller.Cancel(id)
	c.Status(http.StatusNoContent)
}

// AddDetail godoc
// @Summary      Attach an annotation image
// @Tags         videos
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Video ID"
// @Param        request  body      requests.AddDetailRequest  true  "Annotation"
// @Success      201      {object}  video.Detail
// @Failure      400      {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/videos/{id}/details [post]
func (h *VideoHandler) AddDetail(c *gin.Context) {
	var req requests.AddDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	detail, err := h.details.AddDetail(c.Request.Context(), c.Param("id"), req.Name, req.Image)
	if err != nil {
		responses.HandleError(c, err, "failed to add detail")
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// ListDetails godoc
// @Summary      List annotation images
// @Tags         videos
// @Produce      json
// @Param        id   path     string  true  "Video ID"
// @Success      200  {array}  video.Detail
// @Router       /v1/videos/{id}/details [get]
func (h *VideoHandler) ListDetails(c *gin.Context) {
	details, err := h.details.ListDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to list details")
		return
	}
	c.JSON(http.StatusOK, details)
}

// RemoveDetail godoc
// @Summary      Remove an annotation image
// @Tags         videos
// @Param        id        path  string  true  "Video ID"
// @Param        detailId  path  string  true  "Detail ID"
// @Success      204
// @Security     ApiKeyAuth
// @Router       /v1/videos/{id}/details/{detailId} [delete]
func (h *VideoHandler) RemoveDetail(c *gin.Context) {
	if err := h.details.RemoveDetail(c.Request.Context(), c.Param("id"), c.Param("detailId")); err != nil {
		responses.HandleError(c, err, "failed to remove detail")
		return
	}
	c.Status(http.StatusNoContent)
}
