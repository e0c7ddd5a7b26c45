package requests

// CreateCommentRequest attaches a comment to a video. UserID is taken from
// the auth token when present; the body field covers unauthenticated setups.
type CreateCommentRequest struct {
	UserID string `json:"user_id"`
	Body   string `json:"body" binding:"required"`
}

// ToggleFavoriteRequest flips the saved state of a video for a user.
type ToggleFavoriteRequest struct {
	VideoID string `json:"video_id" binding:"required"`
}
