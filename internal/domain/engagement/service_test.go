package engagement_test

import (
	"context"
	"strings"
	"testing"

	"github.com/agutorres/lineup-server/internal/domain/engagement"
	"github.com/agutorres/lineup-server/internal/utils/platformerrors"
)

type fakeRepo struct {
	comments  map[string]*engagement.Comment
	favorites map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		comments:  make(map[string]*engagement.Comment),
		favorites: make(map[string]bool),
	}
}

func (f *fakeRepo) CreateComment(ctx context.Context, c *engagement.Comment) error {
	f.comments[c.ID] = c
	return nil
}

func (f *fakeRepo) ListComments(ctx context.Context, videoID string) ([]*engagement.Comment, error) {
	var out []*engagement.Comment
	for _, c := range f.comments {
		if c.VideoID == videoID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetComment(ctx context.Context, id string) (*engagement.Comment, error) {
	if c, ok := f.comments[id]; ok {
		return c, nil
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "comment not found", nil, "")
}

func (f *fakeRepo) DeleteComment(ctx context.Context, id string) error {
	delete(f.comments, id)
	return nil
}

func (f *fakeRepo) ToggleFavorite(ctx context.Context, userID, videoID string) (bool, error) {
	key := userID + "/" + videoID
	f.favorites[key] = !f.favorites[key]
	return f.favorites[key], nil
}

func (f *fakeRepo) ListFavorites(ctx context.Context, userID string) ([]*engagement.Favorite, error) {
	var out []*engagement.Favorite
	for key, on := range f.favorites {
		if on && strings.HasPrefix(key, userID+"/") {
			out = append(out, &engagement.Favorite{UserID: userID, VideoID: strings.TrimPrefix(key, userID+"/")})
		}
	}
	return out, nil
}

type videoSet map[string]bool

func (v videoSet) Exists(ctx context.Context, videoID string) error {
	if v[videoID] {
		return nil
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "video not found", nil, "")
}

func TestAddComment(t *testing.T) {
	repo := newFakeRepo()
	svc := engagement.NewService(repo, videoSet{"vid_1": true})

	c, err := svc.AddComment(context.Background(), "vid_1", "user-1", "  nice lineup  ")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if c.Body != "nice lineup" {
		t.Errorf("body = %q, want trimmed", c.Body)
	}
	if !strings.HasPrefix(c.ID, "cmt_") {
		t.Errorf("id = %q, want cmt_ prefix", c.ID)
	}
	if len(repo.comments) != 1 {
		t.Errorf("stored %d comments, want 1", len(repo.comments))
	}
}

func TestAddComment_Validation(t *testing.T) {
	svc := engagement.NewService(newFakeRepo(), videoSet{"vid_1": true})
	ctx := context.Background()

	tests := []struct {
		name    string
		videoID string
		userID  string
		body    string
		errType platformerrors.ErrorType
	}{
		{"empty body", "vid_1", "user-1", "   ", platformerrors.ErrorTypeValidation},
		{"empty user", "vid_1", "", "hello", platformerrors.ErrorTypeValidation},
		{"too long", "vid_1", "user-1", strings.Repeat("a", 2001), platformerrors.ErrorTypeValidation},
		{"missing video", "vid_x", "user-1", "hello", platformerrors.ErrorTypeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddComment(ctx, tt.videoID, tt.userID, tt.body)
			if !platformerrors.IsErrorType(err, tt.errType) {
				t.Errorf("error = %v, want type %s", err, tt.errType)
			}
		})
	}
}

func TestDeleteComment_AuthorOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := engagement.NewService(repo, videoSet{"vid_1": true})
	ctx := context.Background()

	c, err := svc.AddComment(ctx, "vid_1", "author", "mine")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	err = svc.DeleteComment(ctx, c.ID, "someone-else")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden) {
		t.Fatalf("error = %v, want forbidden", err)
	}
	if len(repo.comments) != 1 {
		t.Fatal("comment was deleted by a non-author")
	}

	if err := svc.DeleteComment(ctx, c.ID, "author"); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}
	if len(repo.comments) != 0 {
		t.Error("comment still present after author delete")
	}
}

func TestToggleFavorite(t *testing.T) {
	svc := engagement.NewService(newFakeRepo(), videoSet{"vid_1": true})
	ctx := context.Background()

	on, err := svc.ToggleFavorite(ctx, "user-1", "vid_1")
	if err != nil || !on {
		t.Fatalf("first toggle = (%v, %v), want (true, nil)", on, err)
	}
	on, err = svc.ToggleFavorite(ctx, "user-1", "vid_1")
	if err != nil || on {
		t.Fatalf("second toggle = (%v, %v), want (false, nil)", on, err)
	}

	if _, err := svc.ToggleFavorite(ctx, "", "vid_1"); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("empty user error = %v, want validation", err)
	}
	if _, err := svc.ToggleFavorite(ctx, "user-1", "vid_x"); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("missing video error = %v, want not found", err)
	}
}
