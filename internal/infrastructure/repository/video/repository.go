package video

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	domain "github.com/agutorres/lineup-server/internal/domain/video"
	"github.com/agutorres/lineup-server/internal/infrastructure/database/entities"
	"github.com/agutorres/lineup-server/internal/utils/platformerrors"
)

// Repository handles video record persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, rec *domain.Record) error {
	entity := mapRecord(rec)
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create video record",
			err,
			"3f6a1b8c-2d4e-4f5a-9b0c-7d8e9f0a1b2c",
		)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	return r.findOne(ctx, "id = ?", id, "video not found")
}

func (r *Repository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Record, error) {
	return r.findOne(ctx, "upload_session_id = ?", sessionID, "no video for upload session")
}

func (r *Repository) GetByAssetID(ctx context.Context, assetID string) (*domain.Record, error) {
	return r.findOne(ctx, "asset_id = ?", assetID, "no video for asset")
}

// Exists reports record existence without loading the row.
func (r *Repository) Exists(ctx context.Context, id string) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Video{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to check video existence", err, "")
	}
	if count == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound, "video not found", nil, "")
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]*domain.Record, error) {
	query := r.db.WithContext(ctx).Model(&entities.Video{})
	if filter.MapID != "" {
		query = query.Where("map_id = ?", filter.MapID)
	}
	if filter.CategorySectionID != "" {
		query = query.Where("category_section_id = ?", filter.CategorySectionID)
	}
	if filter.Side != "" {
		query = query.Where("side = ?", string(filter.Side))
	}
	if filter.VideoType != "" {
		query = query.Where("video_type = ?", string(filter.VideoType))
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", string(filter.Difficulty))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.EssentialOnly {
		query = query.Where("essential = TRUE")
	}

	var rows []entities.Video
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to list videos", err,
			"8c1d2e3f-4a5b-4c6d-8e9f-0a1b2c3d4e5f")
	}

	records := make([]*domain.Record, 0, len(rows))
	for i := range rows {
		rec := mapEntity(rows[i])
		records = append(records, &rec)
	}
	return records, nil
}

func (r *Repository) UpdateMetadata(ctx context.Context, id string, meta domain.Metadata) (*domain.Record, error) {
	updates := map[string]any{
		"map_id":              meta.MapID,
		"category_section_id": meta.CategorySectionID,
		"side":                string(meta.Side),
		"video_type":          string(meta.VideoType),
		"title":               meta.Title,
		"position_name":       meta.PositionName,
		"difficulty":          string(meta.Difficulty),
		"tags":                pq.StringArray(meta.Tags),
		"essential":           meta.Essential,
	}
	result := r.db.WithContext(ctx).Model(&entities.Video{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to update video metadata", result.Error, "")
	}
	if result.RowsAffected == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound, "video not found", nil, "")
	}
	return r.GetByID(ctx, id)
}

// MarkProcessing advances pending to processing. The status guard keeps the
// write idempotent and refuses to regress a record already further along.
func (r *Repository) MarkProcessing(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.Video{}).
		Where("id = ? AND status = ?", id, string(domain.StatusPending)).
		Update("status", string(domain.StatusProcessing))
	if result.Error != nil {
		return false, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to mark video processing", result.Error, "")
	}
	return result.RowsAffected > 0, nil
}

// LinkAsset records the asset id as soon as the session reports one. It never
// overwrites an existing linkage.
func (r *Repository) LinkAsset(ctx context.Context, id, assetID string) error {
	err := r.db.WithContext(ctx).Model(&entities.Video{}).
		Where("id = ? AND (asset_id IS NULL OR asset_id = '')", id).
		Update("asset_id", assetID).Error
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to link asset", err, "")
	}
	return nil
}

// ApplyTerminal writes a terminal status and its media fields in one guarded
// UPDATE. The guard admits non-terminal rows plus rows already in the same
// terminal status, so the write is idempotent across the poll and webhook
// paths and never flips one terminal status to the other.
func (r *Repository) ApplyTerminal(ctx context.Context, id string, status domain.Status, media domain.TerminalMedia, errorReason string) (bool, error) {
	updates := map[string]any{
		"status":       string(status),
		"error_reason": errorReason,
	}
	if media.AssetID != "" {
		updates["asset_id"] = media.AssetID
	}
	if status == domain.StatusReady {
		updates["playback_id"] = media.PlaybackID
		updates["thumbnail_url"] = media.ThumbnailURL
		updates["duration_seconds"] = media.DurationSeconds
		updates["file_size_bytes"] = media.FileSizeBytes
	}

	result := r.db.WithContext(ctx).Model(&entities.Video{}).
		Where("id = ? AND (status IN ? OR status = ?)",
			id,
			[]string{string(domain.StatusPending), string(domain.StatusProcessing)},
			string(status)).
		Updates(updates)
	if result.Error != nil {
		return false, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to apply terminal status", result.Error,
			"5b9c0d1e-2f3a-4b5c-8d7e-6f0a1b2c3d4e")
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// Distinguish "guard rejected" from "row missing".
	if err := r.Exists(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// DeletePending removes the row and its details only while still pending.
func (r *Repository) DeletePending(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND status = ?", id, string(domain.StatusPending)).
			Delete(&entities.Video{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("video_id = ?", id).Delete(&entities.VideoDetail{}).Error
	})
	if err != nil {
		return false, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to delete pending video", err, "")
	}
	return deleted, nil
}

// Delete removes a record regardless of status, cascading to details.
func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&entities.Video{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("video_id = ?", id).Delete(&entities.VideoDetail{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound, "video not found", err, "")
		}
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to delete video", err, "")
	}
	return nil
}

func (r *Repository) CreateDetail(ctx context.Context, detail *domain.Detail) error {
	entity := entities.VideoDetail{
		ID:       detail.ID,
		VideoID:  detail.VideoID,
		Name:     detail.Name,
		ImageURL: detail.ImageURL,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to create video detail", err, "")
	}
	return nil
}

func (r *Repository) ListDetails(ctx context.Context, videoID string) ([]*domain.Detail, error) {
	var rows []entities.VideoDetail
	err := r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to list video details", err, "")
	}
	details := make([]*domain.Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, &domain.Detail{
			ID:        row.ID,
			VideoID:   row.VideoID,
			Name:      row.Name,
			ImageURL:  row.ImageURL,
			CreatedAt: row.CreatedAt,
		})
	}
	return details, nil
}

func (r *Repository) DeleteDetail(ctx context.Context, videoID, detailID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND video_id = ?", detailID, videoID).
		Delete(&entities.VideoDetail{})
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to delete video detail", result.Error, "")
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound, "video detail not found", nil, "")
	}
	return nil
}

func (r *Repository) findOne(ctx context.Context, cond string, value, notFoundMsg string) (*domain.Record, error) {
	var entity entities.Video
	err := r.db.WithContext(ctx).Where(cond, value).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound, notFoundMsg, err,
				"6a0b1c2d-3e4f-4a5b-9c8d-7e6f5a4b3c2d")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to load video", err,
			"7b1c2d3e-4f5a-4b6c-8d9e-0f1a2b3c4d5e")
	}
	rec := mapEntity(entity)
	return &rec, nil
}

func mapRecord(rec *domain.Record) entities.Video {
	return entities.Video{
		ID:                rec.ID,
		MapID:             rec.MapID,
		CategorySectionID: rec.CategorySectionID,
		Side:              string(rec.Side),
		VideoType:         string(rec.VideoType),
		Title:             rec.Title,
		PositionName:      rec.PositionName,
		Difficulty:        string(rec.Difficulty),
		Tags:              pq.StringArray(rec.Tags),
		Essential:         rec.Essential,
		UploadSessionID:   rec.UploadSessionID,
		AssetID:           rec.AssetID,
		PlaybackID:        rec.PlaybackID,
		VideoURL:          rec.LegacyVideoURL,
		Status:            string(rec.Status),
		ThumbnailURL:      rec.ThumbnailURL,
		DurationSeconds:   rec.DurationSeconds,
		FileSizeBytes:     rec.FileSizeBytes,
		ErrorReason:       rec.ErrorReason,
	}
}

func mapEntity(entity entities.Video) domain.Record {
	return domain.Record{
		ID:                entity.ID,
		MapID:             entity.MapID,
		CategorySectionID: entity.CategorySectionID,
		Side:              domain.Side(entity.Side),
		VideoType:         domain.VideoType(entity.VideoType),
		Title:             entity.Title,
		PositionName:      entity.PositionName,
		Difficulty:        domain.Difficulty(entity.Difficulty),
		Tags:              []string(entity.Tags),
		Essential:         entity.Essential,
		UploadSessionID:   entity.UploadSessionID,
		AssetID:           entity.AssetID,
		PlaybackID:        entity.PlaybackID,
		LegacyVideoURL:    entity.VideoURL,
		Status:            domain.Status(entity.Status),
		ThumbnailURL:      entity.ThumbnailURL,
		DurationSeconds:   entity.DurationSeconds,
		FileSizeBytes:     entity.FileSizeBytes,
		ErrorReason:       entity.ErrorReason,
		CreatedAt:         entity.CreatedAt,
		UpdatedAt:         entity.UpdatedAt,
	}
}
