package requests

// CreateMapRequest registers a playable map.
type CreateMapRequest struct {
	Name         string `json:"name" binding:"required"`
	DisplayName  string `json:"display_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	SortOrder    int    `json:"sort_order"`
}

// UpdateMapRequest edits a map's mutable fields.
type UpdateMapRequest struct {
	DisplayName  string `json:"display_name" binding:"required"`
	ThumbnailURL string `json:"thumbnail_url"`
	Active       *bool  `json:"active"`
	SortOrder    int    `json:"sort_order"`
}

// CreateCategoryRequest registers a utility family.
type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	IconURL   string `json:"icon_url"`
	SortOrder int    `json:"sort_order"`
}

// CreateSectionRequest registers a target area under a map and category.
type CreateSectionRequest struct {
	MapID      string `json:"map_id" binding:"required"`
	CategoryID string `json:"category_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	SortOrder  int    `json:"sort_order"`
}

// CreateCalloutRequest pins a named position on a map overview.
type CreateCalloutRequest struct {
	MapID string  `json:"map_id" binding:"required"`
	Name  string  `json:"name" binding:"required"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}
