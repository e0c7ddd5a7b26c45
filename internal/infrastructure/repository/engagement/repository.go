package engagement

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/agutorres/lineup-server/internal/domain/engagement"
	"github.com/agutorres/lineup-server/internal/infrastructure/database/entities"
	"github.com/agutorres/lineup-server/internal/utils/platformerrors"
	"github.com/agutorres/lineup-server/utils/lineupid"
)

// Repository handles comment and favorite persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateComment(ctx context.Context, c *domain.Comment) error {
	entity := entities.Comment{
		ID:      c.ID,
		VideoID: c.VideoID,
		UserID:  c.UserID,
		Body:    c.Body,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return r.wrap(ctx, err, "failed to create comment")
	}
	return nil
}

func (r *Repository) ListComments(ctx context.Context, videoID string) ([]*domain.Comment, error) {
	var rows []entities.Comment
	err := r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, r.wrap(ctx, err, "failed to list comments")
	}
	comments := make([]*domain.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, mapComment(row))
	}
	return comments, nil
}

func (r *Repository) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	var entity entities.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound, "comment not found", err, "")
		}
		return nil, r.wrap(ctx, err, "failed to load comment")
	}
	return mapComment(entity), nil
}

func (r *Repository) DeleteComment(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Comment{})
	if result.Error != nil {
		return r.wrap(ctx, result.Error, "failed to delete comment")
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound, "comment not found", nil, "")
	}
	return nil
}

// ToggleFavorite removes the pair when it exists, inserts it otherwise. The
// unique constraint on (user_id, video_id) keeps concurrent toggles from
// producing duplicates.
func (r *Repository) ToggleFavorite(ctx context.Context, userID, videoID string) (bool, error) {
	var favorited bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND video_id = ?", userID, videoID).
			Delete(&entities.Favorite{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			favorited = false
			return nil
		}
		favorited = true
		return tx.Create(&entities.Favorite{
			ID:      lineupid.New(lineupid.PrefixFavorite),
			UserID:  userID,
			VideoID: videoID,
		}).Error
	})
	if err != nil {
		return false, r.wrap(ctx, err, "failed to toggle favorite")
	}
	return favorited, nil
}

func (r *Repository) ListFavorites(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	var rows []entities.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, r.wrap(ctx, err, "failed to list favorites")
	}
	favorites := make([]*domain.Favorite, 0, len(rows))
	for _, row := range rows {
		favorites = append(favorites, &domain.Favorite{
			ID:        row.ID,
			UserID:    row.UserID,
			VideoID:   row.VideoID,
			CreatedAt: row.CreatedAt,
		})
	}
	return favorites, nil
}

func (r *Repository) wrap(ctx context.Context, err error, message string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError, message, err,
		"9e0f1a2b-3c4d-4e5f-8a7b-6c5d4e3f2a1b")
}

func mapComment(entity entities.Comment) *domain.Comment {
	return &domain.Comment{
		ID:        entity.ID,
		VideoID:   entity.VideoID,
		UserID:    entity.UserID,
		Body:      entity.Body,
		CreatedAt: entity.CreatedAt,
	}
}
