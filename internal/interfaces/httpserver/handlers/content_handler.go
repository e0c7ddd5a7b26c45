package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/agutorres/lineup-server/internal/domain/content"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver/requests"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver/responses"
)

// ContentHandler exposes the map/category/section hierarchy and callouts.
type ContentHandler struct {
	service *domain.Service
	log     zerolog.Logger
}

func NewContentHandler(service *domain.Service, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		log:     log.With().Str("component", "content-handler").Logger(),
	}
}

// CreateMap godoc
// @Summary      Register a map
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        request  body      requests.CreateMapRequest  true  "Map"
// @Success      201      {object}  content.Map
// @Security     ApiKeyAuth
// @Router       /v1/maps [post]
func (h *ContentHandler) CreateMap(c *gin.Context) {
	var req requests.CreateMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := h.service.CreateMap(c.Request.Context(), req.Name, req.DisplayName, req.ThumbnailURL, req.SortOrder)
	if err != nil {
		responses.HandleError(c, err, "failed to create map")
		return
	}
	c.JSON(http.StatusCreated, m)
}

// ListMaps godoc
// @Summary      List maps
// @Tags         content
// @Produce      json
// @Param        include_inactive  query    bool  false  "Include disabled maps"
// @Success      200               {array}  content.Map
// @Router       /v1/maps [get]
func (h *ContentHandler) ListMaps(c *gin.Context) {
	maps, err := h.service.ListMaps(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		responses.HandleError(c, err, "failed to list maps")
		return
	}
	c.JSON(http.StatusOK, maps)
}

// GetMap godoc
// @Summary      Fetch one map
// @Tags         content
// @Produce      json
// @Param        id   path      string  true  "Map ID"
// @Success      200  {object}  content.Map
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/maps/{id} [get]
func (h *ContentHandler) GetMap(c *gin.Context) {
	m, err := h.service.GetMap(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "map not found")
		return
	}
	c.JSON(http.StatusOK, m)
}

// UpdateMap godoc
// @Summary      Edit a map
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Map ID"
// @Param        request  body      requests.UpdateMapRequest  true  "New fields"
// @Success      200      {object}  content.Map
// @Security     ApiKeyAuth
// @Router       /v1/maps/{id} [put]
func (h *ContentHandler) UpdateMap(c *gin.Context) {
	var req requests.UpdateMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	current, err := h.service.GetMap(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "map not found")
		return
	}
	current.DisplayName = req.DisplayName
	current.ThumbnailURL = req.ThumbnailURL
	current.SortOrder = req.SortOrder
	if req.Active != nil {
		current.Active = *req.Active
	}
	updated, err := h.service.UpdateMap(c.Request.Context(), current)
	if err != nil {
		responses.HandleError(c, err, "failed to update map")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteMap godoc
// @Summary      Delete a map and everything under it
// @Tags         content
// @Param        id  path  string  true  "Map ID"
// @Success      204
// @Security     ApiKeyAuth
// @Router       /v1/maps/{id} [delete]
func (h *ContentHandler) DeleteMap(c *gin.Context) {
	if err := h.service.DeleteMap(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to delete map")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateCategory godoc
// @Summary      Register a utility category
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        request  body      requests.CreateCategoryRequest  true  "Category"
// @Success      201      {object}  content.Category
// @Security     ApiKeyAuth
// @Router       /v1/categories [post]
func (h *ContentHandler) CreateCategory(c *gin.Context) {
	var req requests.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), req.Name, req.IconURL, req.SortOrder)
	if err != nil {
		responses.HandleError(c, err, "failed to create category")
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// ListCategories godoc
// @Summary      List categories
// @Tags         content
// @Produce      json
// @Success      200  {array}  content.Category
// @Router       /v1/categories [get]
func (h *ContentHandler) ListCategories(c *gin.Context) {
	cats, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list categories")
		return
	}
	c.JSON(http.StatusOK, cats)
}

// DeleteCategory godoc
// @Summary      Delete a category
// @Tags         content
// @Param        id  path  string  true  "Category ID"
// @Success      204
// @Security     ApiKeyAuth
// @Router       /v1/categories/{id} [delete]
func (h *ContentHandler) DeleteCategory(c *gin.Context) {
	if err := h.service.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateSection godoc
// @Summary      Register a section
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        request  body      requests.CreateSectionRequest  true  "Section"
// @Success      201      {object}  content.Section
// @Security     ApiKeyAuth
// @Router       /v1/sections [post]
func (h *ContentHandler) CreateSection(c *gin.Context) {
	var req requests.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sec, err := h.service.CreateSection(c.Request.Context(), req.MapID, req.CategoryID, req.Name, req.SortOrder)
	if err != nil {
		responses.HandleError(c, err, "failed to create section")
		return
	}
	c.JSON(http.StatusCreated, sec)
}

// ListSections godoc
// @Summary      List sections
// @Tags         content
// @Produce      json
// @Param        map_id       query    string  false  "Filter by map"
// @Param        category_id  query    string  false  "Filter by category"
// @Success      200          {array}  content.Section
// @Router       /v1/sections [get]
func (h *ContentHandler) ListSections(c *gin.Context) {
	secs, err := h.service.ListSections(c.Request.Context(), c.Query("map_id"), c.Query("category_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to list sections")
		return
	}
	c.JSON(http.StatusOK, secs)
}

// DeleteSection godoc
// @Summary      Delete a section
// @Tags         content
// @Param        id  path  string  true  "Section ID"
// @Success      204
// @Security     ApiKeyAuth
// @Router       /v1/sections/{id} [delete]
func (h *ContentHandler) DeleteSection(c *gin.Context) {
	if err := h.service.DeleteSection(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to delete section")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateCallout godoc
// @Summary      Pin a callout on a map
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        request  body      requests.CreateCalloutRequest  true  "Callout"
// @Success      201      {object}  content.Callout
// @Security     ApiKeyAuth
// @Router       /v1/callouts [post]
func (h *ContentHandler) CreateCallout(c *gin.Context) {
	var req requests.CreateCalloutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	callout, err := h.service.CreateCallout(c.Request.Context(), req.MapID, req.Name, req.X, req.Y)
	if err != nil {
		responses.HandleError(c, err, "failed to create callout")
		return
	}
	c.JSON(http.StatusCreated, callout)
}

// ListCallouts godoc
// @Summary      List the callouts of a map
// @Tags         content
// @Produce      json
// @Param        map_id  query    string  true  "Map ID"
// @Success      200     {array}  content.Callout
// @Router       /v1/callouts [get]
func (h *ContentHandler) ListCallouts(c *gin.Context) {
	callouts, err := h.service.ListCallouts(c.Request.Context(), c.Query("map_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to list callouts")
		return
	}
	c.JSON(http.StatusOK, callouts)
}

// DeleteCallout godoc
// @Summary      Delete a callout
// @Tags         content
// @Param        id  path  string  true  "Callout ID"
// @Success      204
// @Security     ApiKeyAuth
// @Router       /v1/callouts/{id} [delete]
func (h *ContentHandler) DeleteCallout(c *gin.Context) {
	if err := h.service.DeleteCallout(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to delete callout")
		return
	}
	c.Status(http.StatusNoContent)
}
