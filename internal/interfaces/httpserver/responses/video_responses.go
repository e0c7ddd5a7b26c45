package responses

import (
	domain "github.com/agutorres/lineup-server/internal/domain/video"
)

// VideoResponse is a video record with its resolved playback state.
type VideoResponse struct {
	*domain.Record
	PlaybackURL string           `json:"playback_url,omitempty"`
	Playability string           `json:"playability"`
	Details     []*domain.Detail `json:"details,omitempty"`
}

// BuildVideoResponse resolves playback for the record and attaches details.
func BuildVideoResponse(rec *domain.Record, resolver domain.Resolver, details []*domain.Detail) *VideoResponse {
	url, playability := resolver.Resolve(rec)
	return &VideoResponse{
		Record:      rec,
		PlaybackURL: url,
		Playability: string(playability),
		Details:     details,
	}
}

// BuildVideoList resolves playback for each record.
func BuildVideoList(recs []*domain.Record, resolver domain.Resolver) []*VideoResponse {
	out := make([]*VideoResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, BuildVideoResponse(rec, resolver, nil))
	}
	return out
}

// UploadResponse pairs the pending record with its one-time upload URL.
type UploadResponse struct {
	Video     *VideoResponse `json:"video"`
	UploadURL string         `json:"upload_url"`
}

// BuildUploadResponse creates the upload session response.
func BuildUploadResponse(rec *domain.Record, resolver domain.Resolver, uploadURL string) *UploadResponse {
	return &UploadResponse{
		Video:     BuildVideoResponse(rec, resolver, nil),
		UploadURL: uploadURL,
	}
}
