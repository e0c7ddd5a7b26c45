package video

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agutorres/lineup-server/internal/config"
	"github.com/agutorres/lineup-server/internal/infrastructure/metrics"
	"github.com/agutorres/lineup-server/internal/infrastructure/pipeline"
	"github.com/agutorres/lineup-server/internal/utils/platformerrors"
	"github.com/agutorres/lineup-server/utils/lineupid"
)

// ErrReconciliationMiss marks a webhook event that references an asset or
// upload session with no matching local record. The caller logs and drops
// it; the sender still gets a 200.
var ErrReconciliationMiss = errors.New("no local record matches the event")

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id string) (*Record, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Record, error)
	GetByAssetID(ctx context.Context, assetID string) (*Record, error)
	List(ctx context.Context, filter Filter) ([]*Record, error)
	UpdateMetadata(ctx context.Context, id string, meta Metadata) (*Record, error)
	MarkProcessing(ctx context.Context, id string) (bool, error)
	LinkAsset(ctx context.Context, id, assetID string) error
	// ApplyTerminal writes status plus all media fields in one guarded
	// UPDATE. It reports whether the row was changed; a false return with no
	// error means the guard rejected the write (already terminal).
	ApplyTerminal(ctx context.Context, id string, status Status, media TerminalMedia, errorReason string) (bool, error)
	// DeletePending removes the row (and its details) only while the record
	// is still pending. Terminal rows are never removed by this path.
	DeletePending(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error

	CreateDetail(ctx context.Context, detail *Detail) error
	ListDetails(ctx context.Context, videoID string) ([]*Detail, error)
	DeleteDetail(ctx context.Context, videoID, detailID string) error
}

// PipelineClient is the slice of the asset pipeline API the broker needs.
type PipelineClient interface {
	CreateUpload(ctx context.Context) (*pipeline.UploadSession, error)
	GetSessionStatus(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error)
}

// Service is the upload session broker plus the reconciliation logic shared
// by the poll and webhook paths.
type Service struct {
	cfg      *config.Config
	repo     Repository
	pipeline PipelineClient
	resolver Resolver
	log      zerolog.Logger
	now      func() time.Time
}

// NewService builds the video service.
func NewService(cfg *config.Config, repo Repository, pl PipelineClient, log zerolog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		repo:     repo,
		pipeline: pl,
		resolver: Resolver{PlaybackBaseURL: cfg.PlaybackBaseURL},
		log:      log.With().Str("component", "video-service").Logger(),
		now:      time.Now,
	}
}

// Resolver exposes the playback resolver configured for this deployment.
func (s *Service) Resolver() Resolver {
	return s.resolver
}

// InitUpload opens an upload session with the pipeline and, only once that
// succeeded, persists a pending record keyed to the session. The pending row
// must exist before bytes move so an early webhook can still find it.
func (s *Service) InitUpload(ctx context.Context, meta Metadata) (*Record, string, error) {
	if err := validateMetadata(meta); err != nil {
		return nil, "", err
	}

	sess, err := s.pipeline.CreateUpload(ctx)
	if err != nil {
		metrics.RecordUploadSession("error")
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeSessionCreation, "failed to create upload session", err, "b41c8e6f-1f0a-4f57-9c47-6f2a0d9f3b11")
	}

	now := s.now().UTC()
	rec := &Record{
		ID:                lineupid.New(lineupid.PrefixVideo),
		MapID:             meta.MapID,
		CategorySectionID: meta.CategorySectionID,
		Side:              meta.Side,
		VideoType:         meta.VideoType,
		Title:             meta.Title,
		PositionName:      meta.PositionName,
		Difficulty:        meta.Difficulty,
		Tags:              normalizeTags(meta.Tags),
		Essential:         meta.Essential,
		UploadSessionID:   sess.SessionID,
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, "", err
	}

	metrics.RecordUploadSession("created")
	s.log.Info().Str("video_id", rec.ID).Str("session_id", sess.SessionID).Msg("upload session created")
	return rec, sess.UploadURL, nil
}

// MarkTransferComplete records that the client finished sending bytes. It is
// advisory only: it says nothing about transcoding. Calling it on a record
// already past pending is a no-op.
func (s *Service) MarkTransferComplete(ctx context.Context, id string) (*Record, error) {
	moved, err := s.repo.MarkProcessing(ctx, id)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if moved {
		s.log.Info().Str("video_id", id).Msg("transfer complete, awaiting transcode")
	}
	return rec, nil
}

// Refresh performs one poll-path reconciliation round for the record. The
// bool result reports whether the record reached (or already was in) a state
// that needs no more polling, including deletion of a cancelled orphan.
func (s *Service) Refresh(ctx context.Context, id string) (*Record, bool, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if rec.Status.IsTerminal() {
		return rec, true, nil
	}

	status, err := s.pipeline.GetSessionStatus(ctx, rec.UploadSessionID)
	if err != nil {
		return rec, false, err
	}

	switch status.State {
	case pipeline.UploadCancelled, pipeline.UploadTimedOut:
		if status.AssetID == "" {
			return s.removeOrphan(ctx, rec)
		}
	case pipeline.UploadErrored:
		if err := s.applyTerminal(ctx, rec.ID, StatusErrored, TerminalMedia{AssetID: status.AssetID}, "upload session errored", "poll"); err != nil {
			return rec, false, err
		}
		rec, err = s.repo.GetByID(ctx, rec.ID)
		return rec, true, err
	}

	// The session may know the asset before any terminal state is reached;
	// persist the linkage so webhook lookups by asset id can succeed.
	if status.AssetID != "" && rec.AssetID == "" {
		if err := s.repo.LinkAsset(ctx, rec.ID, status.AssetID); err != nil {
			return rec, false, err
		}
		rec.AssetID = status.AssetID
	}

	if status.Asset == nil {
		return rec, false, nil
	}

	switch status.Asset.State {
	case pipeline.AssetReady:
		media := TerminalMedia{
			AssetID:         status.Asset.AssetID,
			PlaybackID:      status.Asset.PlaybackID,
			ThumbnailURL:    status.Asset.ThumbnailURL,
			DurationSeconds: status.Asset.DurationSeconds,
			FileSizeBytes:   status.Asset.FileSizeBytes,
		}
		if err := s.applyTerminal(ctx, rec.ID, StatusReady, media, "", "poll"); err != nil {
			return rec, false, err
		}
	case pipeline.AssetErrored:
		reason := status.Asset.ErrorReason
		if reason == "" {
			reason = "transcode failed"
		}
		if err := s.applyTerminal(ctx, rec.ID, StatusErrored, TerminalMedia{AssetID: status.Asset.AssetID}, reason, "poll"); err != nil {
			return rec, false, err
		}
	default:
		return rec, false, nil
	}

	rec, err = s.repo.GetByID(ctx, rec.ID)
	return rec, true, err
}

// HandleAssetReady is the push-path terminal update. Lookup is by asset id
// first; when the asset was never linked locally the upload session id from
// the event payload is the fallback join key.
func (s *Service) HandleAssetReady(ctx context.Context, assetID, sessionID string, media TerminalMedia) error {
	rec, err := s.findForEvent(ctx, assetID, sessionID)
	if err != nil {
		return err
	}
	media.AssetID = assetID
	return s.applyTerminal(ctx, rec.ID, StatusReady, media, "", "webhook")
}

// HandleAssetErrored applies the push-path failure update.
func (s *Service) HandleAssetErrored(ctx context.Context, assetID, sessionID, reason string) error {
	rec, err := s.findForEvent(ctx, assetID, sessionID)
	if err != nil {
		return err
	}
	if reason == "" {
		reason = "transcode failed"
	}
	return s.applyTerminal(ctx, rec.ID, StatusErrored, TerminalMedia{AssetID: assetID}, reason, "webhook")
}

// HandleUploadCancelled removes the orphaned pending row for a cancelled
// session. Records that already produced an asset are left untouched.
func (s *Service) HandleUploadCancelled(ctx context.Context, sessionID string) error {
	rec, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return ErrReconciliationMiss
		}
		return err
	}
	if _, _, err := s.removeOrphan(ctx, rec); err != nil {
		return err
	}
	return nil
}

// Get loads a single record.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns records matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Record, error) {
	return s.repo.List(ctx, filter)
}

// UpdateMetadata edits the descriptive fields of a record.
func (s *Service) UpdateMetadata(ctx context.Context, id string, meta Metadata) (*Record, error) {
	if err := validateMetadata(meta); err != nil {
		return nil, err
	}
	meta.Tags = normalizeTags(meta.Tags)
	return s.repo.UpdateMetadata(ctx, id, meta)
}

// Delete removes a record and its details regardless of status. This is the
// admin operation, distinct from orphan cleanup.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) findForEvent(ctx context.Context, assetID, sessionID string) (*Record, error) {
	if assetID != "" {
		rec, err := s.repo.GetByAssetID(ctx, assetID)
		if err == nil {
			return rec, nil
		}
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, err
		}
	}
	if sessionID != "" {
		rec, err := s.repo.GetBySessionID(ctx, sessionID)
		if err == nil {
			return rec, nil
		}
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, err
		}
	}
	return nil, ErrReconciliationMiss
}

// applyTerminal funnels every terminal write through one guarded repository
// call. Both reconciliation paths derive the payload from the same upstream
// truth, so a second application either overwrites identical data or is
// rejected by the guard; either way the record converges.
func (s *Service) applyTerminal(ctx context.Context, id string, status Status, media TerminalMedia, reason, path string) error {
	applied, err := s.repo.ApplyTerminal(ctx, id, status, media, reason)
	if err != nil {
		metrics.RecordReconciliation(path, "error")
		return err
	}
	if applied {
		metrics.RecordReconciliation(path, string(status))
		s.log.Info().Str("video_id", id).Str("status", string(status)).Str("path", path).Msg("terminal status applied")
	} else {
		metrics.RecordReconciliation(path, "noop")
		s.log.Debug().Str("video_id", id).Str("path", path).Msg("terminal status already applied")
	}
	return nil
}

func (s *Service) removeOrphan(ctx context.Context, rec *Record) (*Record, bool, error) {
	deleted, err := s.repo.DeletePending(ctx, rec.ID)
	if err != nil {
		return rec, false, err
	}
	if deleted {
		s.log.Info().Str("video_id", rec.ID).Str("session_id", rec.UploadSessionID).Msg("removed orphaned pending record for cancelled session")
		return nil, true, nil
	}
	// The record advanced past pending in the meantime; leave it to the
	// asset-level events to settle its fate.
	s.log.Warn().Str("video_id", rec.ID).Msg("cancel event for a record no longer pending, skipping cleanup")
	return rec, false, nil
}

func validateMetadata(meta Metadata) error {
	switch {
	case strings.TrimSpace(meta.Title) == "":
		return validationError("title is required")
	case strings.TrimSpace(meta.MapID) == "":
		return validationError("map_id is required")
	case strings.TrimSpace(meta.CategorySectionID) == "":
		return validationError("category_section_id is required")
	case !ValidSide(meta.Side):
		return validationError(fmt.Sprintf("side must be %q or %q", SideT, SideCT))
	case !ValidVideoType(meta.VideoType):
		return validationError("unknown video_type")
	case !ValidDifficulty(meta.Difficulty):
		return validationError("difficulty must be easy, medium or hard")
	}
	return nil
}

func validationError(message string) error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeValidation, message, nil, "")
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
