package engagement

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/agutorres/lineup-server/internal/utils/platformerrors"
	"github.com/agutorres/lineup-server/utils/lineupid"
)

const maxCommentLength = 2000

// Repository defines persistence operations for comments and favorites.
type Repository interface {
	CreateComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, videoID string) ([]*Comment, error)
	GetComment(ctx context.Context, id string) (*Comment, error)
	DeleteComment(ctx context.Context, id string) error

	// ToggleFavorite inserts the pair or removes it when present, reporting
	// whether the video is favorited after the call.
	ToggleFavorite(ctx context.Context, userID, videoID string) (bool, error)
	ListFavorites(ctx context.Context, userID string) ([]*Favorite, error)
}

// VideoChecker confirms a video exists before attaching engagement to it.
type VideoChecker interface {
	Exists(ctx context.Context, videoID string) error
}

// Service manages comments and favorites.
type Service struct {
	repo   Repository
	videos VideoChecker
}

// NewService builds the engagement service.
func NewService(repo Repository, videos VideoChecker) *Service {
	return &Service{repo: repo, videos: videos}
}

// AddComment attaches a comment to a video.
func (s *Service) AddComment(ctx context.Context, videoID, userID, body string) (*Comment, error) {
	body = strings.TrimSpace(body)
	switch {
	case strings.TrimSpace(userID) == "":
		return nil, validationError("user_id is required")
	case body == "":
		return nil, validationError("comment body is required")
	case utf8.RuneCountInString(body) > maxCommentLength:
		return nil, validationError("comment body is too long")
	}
	if err := s.videos.Exists(ctx, videoID); err != nil {
		return nil, err
	}

	c := &Comment{
		ID:      lineupid.New(lineupid.PrefixComment),
		VideoID: videoID,
		UserID:  userID,
		Body:    body,
	}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments returns a video's comments, newest first.
func (s *Service) ListComments(ctx context.Context, videoID string) ([]*Comment, error) {
	if err := s.videos.Exists(ctx, videoID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, videoID)
}

// DeleteComment removes a comment. Only the author may delete it.
func (s *Service) DeleteComment(ctx context.Context, commentID, userID string) error {
	c, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeForbidden, "comments can only be deleted by their author", nil, "")
	}
	return s.repo.DeleteComment(ctx, commentID)
}

// ToggleFavorite flips the saved state of a video for a user and returns the
// resulting state.
func (s *Service) ToggleFavorite(ctx context.Context, userID, videoID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, validationError("user_id is required")
	}
	if err := s.videos.Exists(ctx, videoID); err != nil {
		return false, err
	}
	return s.repo.ToggleFavorite(ctx, userID, videoID)
}

// ListFavorites returns a user's saved videos, newest first.
func (s *Service) ListFavorites(ctx context.Context, userID string) ([]*Favorite, error) {
	return s.repo.ListFavorites(ctx, userID)
}

func validationError(message string) error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeValidation, message, nil, "")
}
