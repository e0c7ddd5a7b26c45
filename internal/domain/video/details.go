package video

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/agutorres/lineup-server/internal/utils/platformerrors"
	"github.com/agutorres/lineup-server/utils/lineupid"
)

// Storage is the image blob backend (S3-compatible or local filesystem).
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// DetailNames are the annotation slots a lineup video usually carries.
// Arbitrary names are accepted; these are just the conventional ones.
var DetailNames = []string{"Position", "Aiming", "End Point"}

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// DetailService ingests annotation images and manages their records.
type DetailService struct {
	repo       Repository
	storage    Storage
	httpClient *http.Client
	maxBytes   int64
	presignTTL time.Duration
}

// NewDetailService builds the detail ingestion service.
func NewDetailService(repo Repository, storage Storage, maxBytes int64, fetchTimeout, presignTTL time.Duration) *DetailService {
	return &DetailService{
		repo:       repo,
		storage:    storage,
		httpClient: &http.Client{Timeout: fetchTimeout},
		maxBytes:   maxBytes,
		presignTTL: presignTTL,
	}
}

// AddDetail stores an annotation image for the video and records it. The
// source is either a data URL or a remote https URL.
func (d *DetailService) AddDetail(ctx context.Context, videoID, name, source string) (*Detail, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationError("detail name is required")
	}
	if _, err := d.repo.GetByID(ctx, videoID); err != nil {
		return nil, err
	}

	data, err := d.loadBytes(ctx, source)
	if err != nil {
		return nil, err
	}

	detected := mimetype.Detect(data)
	ext, ok := allowedImageTypes[detected.String()]
	if !ok {
		return nil, validationError(fmt.Sprintf("unsupported image type %q", detected.String()))
	}

	id := lineupid.New(lineupid.PrefixDetail)
	key := fmt.Sprintf("details/%s/%s.%s", videoID, id, ext)
	if err := d.storage.Upload(ctx, key, strings.NewReader(string(data)), int64(len(data)), detected.String()); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "failed to store detail image", err, "e7d4f2c9-9a3b-4d61-8a07-52cf1b6f8a24")
	}

	url, err := d.storage.PresignGet(ctx, key, d.presignTTL)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "failed to produce detail image url", err, "")
	}

	detail := &Detail{
		ID:        id,
		VideoID:   videoID,
		Name:      name,
		ImageURL:  url,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.repo.CreateDetail(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// ListDetails returns the annotations of a video.
func (d *DetailService) ListDetails(ctx context.Context, videoID string) ([]*Detail, error) {
	if _, err := d.repo.GetByID(ctx, videoID); err != nil {
		return nil, err
	}
	return d.repo.ListDetails(ctx, videoID)
}

// RemoveDetail deletes one annotation.
func (d *DetailService) RemoveDetail(ctx context.Context, videoID, detailID string) error {
	return d.repo.DeleteDetail(ctx, videoID, detailID)
}

func (d *DetailService) loadBytes(ctx context.Context, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	switch {
	case strings.HasPrefix(source, "data:"):
		return d.decodeDataURL(source)
	case strings.HasPrefix(source, "https://"), strings.HasPrefix(source, "http://"):
		return d.fetchRemote(ctx, source)
	default:
		return nil, validationError("image source must be a data URL or an http(s) URL")
	}
}

func (d *DetailService) decodeDataURL(source string) ([]byte, error) {
	idx := strings.Index(source, ",")
	if idx < 0 {
		return nil, validationError("malformed data URL")
	}
	meta, payload := source[5:idx], source[idx+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, validationError("data URL must be base64 encoded")
	}
	if int64(len(payload)) > d.maxBytes*4/3+4 {
		return nil, validationError("image exceeds the configured size limit")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, validationError("data URL payload is not valid base64")
	}
	if int64(len(data)) > d.maxBytes {
		return nil, validationError("image exceeds the configured size limit")
	}
	return data, nil
}

func (d *DetailService) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, validationError("invalid image url")
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeExternal, "failed to fetch remote image", err, "")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, validationError(fmt.Sprintf("remote image fetch returned %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeExternal, "failed to read remote image", err, "")
	}
	if int64(len(data)) > d.maxBytes {
		return nil, validationError("image exceeds the configured size limit")
	}
	return data, nil
}
