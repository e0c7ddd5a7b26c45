package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/agutorres/lineup-server/internal/infrastructure/auth"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
	auth     *auth.Validator
}

func NewRoutes(provider *handlers.Provider, authValidator *auth.Validator) *Routes {
	return &Routes{handlers: provider, auth: authValidator}
}

// Register attaches all v1 routes under the /v1 prefix. Content management
// goes through the auth middleware; read paths and the webhook sink do not.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	// Webhook sink authenticates by signature, never by bearer token.
	group.POST("/webhooks/pipeline", r.handlers.Webhook.Receive)

	// Public reads
	group.GET("/videos", r.handlers.Video.List)
	group.GET("/videos/:id", r.handlers.Video.Get)
	group.GET("/videos/:id/details", r.handlers.Video.ListDetails)
	group.GET("/maps", r.handlers.Content.ListMaps)
	group.GET("/maps/:id", r.handlers.Content.GetMap)
	group.GET("/categories", r.handlers.Content.ListCategories)
	group.GET("/sections", r.handlers.Content.ListSections)
	group.GET("/callouts", r.handlers.Content.ListCallouts)

	// Upload lifecycle
	group.POST("/videos/:id/transfer-complete", r.handlers.Video.TransferComplete)
	group.POST("/videos/:id/refresh", r.handlers.Video.Refresh)

	// Engagement
	group.GET("/videos/:id/comments", r.handlers.Engagement.ListComments)
	group.POST("/videos/:id/comments", r.handlers.Engagement.CreateComment)
	group.DELETE("/videos/:id/comments/:commentId", r.handlers.Engagement.DeleteComment)
	group.GET("/users/:userId/favorites", r.handlers.Engagement.ListFavorites)
	group.POST("/users/:userId/favorites", r.handlers.Engagement.ToggleFavorite)

	// Admin content management
	admin := group.Group("/")
	admin.Use(r.auth.Middleware())
	admin.POST("/uploads", r.handlers.Video.CreateUpload)
	admin.PUT("/videos/:id", r.handlers.Video.Update)
	admin.DELETE("/videos/:id", r.handlers.Video.Delete)
	admin.POST("/videos/:id/details", r.handlers.Video.AddDetail)
	admin.DELETE("/videos/:id/details/:detailId", r.handlers.Video.RemoveDetail)
	admin.POST("/maps", r.handlers.Content.CreateMap)
	admin.PUT("/maps/:id", r.handlers.Content.UpdateMap)
	admin.DELETE("/maps/:id", r.handlers.Content.DeleteMap)
	admin.POST("/categories", r.handlers.Content.CreateCategory)
	admin.DELETE("/categories/:id", r.handlers.Content.DeleteCategory)
	admin.POST("/sections", r.handlers.Content.CreateSection)
	admin.DELETE("/sections/:id", r.handlers.Content.DeleteSection)
	admin.POST("/callouts", r.handlers.Content.CreateCallout)
	admin.DELETE("/callouts/:id", r.handlers.Content.DeleteCallout)
}
