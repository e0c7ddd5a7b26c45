package requests

import (
	domain "github.com/agutorres/lineup-server/internal/domain/video"
)

// CreateUploadRequest carries the metadata for a new lineup video. The bytes
// themselves go straight to the pipeline through the returned upload URL.
type CreateUploadRequest struct {
	MapID             string   `json:"map_id" binding:"required"`
	CategorySectionID string   `json:"category_section_id" binding:"required"`
	Side              string   `json:"side" binding:"required"`
	VideoType         string   `json:"video_type" binding:"required"`
	Title             string   `json:"title" binding:"required"`
	PositionName      string   `json:"position_name"`
	Difficulty        string   `json:"difficulty" binding:"required"`
	Tags              []string `json:"tags"`
	Essential         bool     `json:"essential"`
}

// ToDomain converts request to domain metadata.
func (r *CreateUploadRequest) ToDomain() domain.Metadata {
	return domain.Metadata{
		MapID:             r.MapID,
		CategorySectionID: r.CategorySectionID,
		Side:              domain.Side(r.Side),
		VideoType:         domain.VideoType(r.VideoType),
		Title:             r.Title,
		PositionName:      r.PositionName,
		Difficulty:        domain.Difficulty(r.Difficulty),
		Tags:              r.Tags,
		Essential:         r.Essential,
	}
}

// UpdateVideoRequest edits the descriptive fields of an existing record.
type UpdateVideoRequest = CreateUploadRequest

// AddDetailRequest attaches a named annotation image to a video.
type AddDetailRequest struct {
	Name  string `json:"name" binding:"required"`
	Image string `json:"image" binding:"required"` // data URL or http(s) URL
}
