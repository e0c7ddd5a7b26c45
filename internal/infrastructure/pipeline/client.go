package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/agutorres/lineup-server/internal/config"
)

// Sentinel errors returned by the client.
var (
	ErrSessionCreation = errors.New("pipeline: upload session creation failed")
	ErrNotFound        = errors.New("pipeline: not found")
	ErrNotConfigured   = errors.New("pipeline: credentials are not configured; set PIPELINE_TOKEN_ID and PIPELINE_TOKEN_SECRET")
)

// Upload session states reported by the pipeline.
const (
	UploadWaiting      = "waiting"
	UploadAssetCreated = "asset_created"
	UploadCancelled    = "cancelled"
	UploadTimedOut     = "timed_out"
	UploadErrored      = "errored"
)

// Asset states reported by the pipeline.
const (
	AssetPreparing = "preparing"
	AssetReady     = "ready"
	AssetErrored   = "errored"
)

// UploadSession is a one-time-use direct-PUT target plus its session id.
type UploadSession struct {
	SessionID string
	UploadURL string
}

// SessionStatus is the combined poll result for an upload session: the
// session's own state plus, once an asset exists, the asset's state.
type SessionStatus struct {
	SessionID string
	State     string
	AssetID   string
	Asset     *AssetStatus
}

// AssetStatus mirrors the pipeline's view of a transcoding asset.
type AssetStatus struct {
	AssetID         string
	State           string
	PlaybackID      string
	ThumbnailURL    string
	DurationSeconds float64
	FileSizeBytes   int64
	ErrorReason     string
}

// Client talks to the hosted encoding/streaming service. All calls go
// through a circuit breaker so a flapping pipeline does not pile up
// goroutines behind slow requests.
type Client struct {
	baseURL     string
	corsOrigin  string
	tokenID     string
	tokenSecret string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	log         zerolog.Logger
	disabled    bool
}

// NewClient builds a pipeline client from configuration. Missing credentials
// disable the client rather than failing startup, matching how the image
// storage backend degrades.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	logger := log.With().Str("component", "pipeline-client").Logger()
	c := &Client{
		baseURL:     cfg.PipelineBaseURL,
		corsOrigin:  cfg.UploadCORSOrigin,
		tokenID:     cfg.PipelineTokenID,
		tokenSecret: cfg.PipelineTokenSecret,
		httpClient:  &http.Client{Timeout: cfg.PipelineTimeout},
		log:         logger,
	}
	if !cfg.PipelineConfigured() {
		logger.Warn().Msg("pipeline credentials are not set; upload sessions will be disabled until configured")
		c.disabled = true
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "asset-pipeline",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return c
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type uploadPayload struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	AssetID string `json:"asset_id"`
}

type assetPayload struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	PlaybackIDs []struct {
		ID string `json:"id"`
	} `json:"playback_ids"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Duration     float64 `json:"duration"`
	FileSize     int64   `json:"file_size"`
	Errors       struct {
		Messages []string `json:"messages"`
	} `json:"errors"`
}

// CreateUpload opens a new direct-upload session. The caller must not create
// a local record when this fails.
func (c *Client) CreateUpload(ctx context.Context) (*UploadSession, error) {
	if c.disabled {
		return nil, fmt.Errorf("%w: %s", ErrSessionCreation, ErrNotConfigured)
	}

	body := map[string]any{
		"cors_origin": c.corsOrigin,
		"new_asset_settings": map[string]any{
			"playback_policy": []string{"public"},
		},
	}
	var payload uploadPayload
	if err := c.do(ctx, http.MethodPost, "/video/v1/uploads", body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionCreation, err)
	}
	if payload.ID == "" || payload.URL == "" {
		return nil, fmt.Errorf("%w: pipeline returned an incomplete session", ErrSessionCreation)
	}
	return &UploadSession{SessionID: payload.ID, UploadURL: payload.URL}, nil
}

// GetSessionStatus polls the upload session and, when an asset has been
// created from it, the asset itself.
func (c *Client) GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	if c.disabled {
		return nil, ErrNotConfigured
	}

	var upload uploadPayload
	if err := c.do(ctx, http.MethodGet, "/video/v1/uploads/"+sessionID, nil, &upload); err != nil {
		return nil, err
	}

	status := &SessionStatus{
		SessionID: upload.ID,
		State:     upload.Status,
		AssetID:   upload.AssetID,
	}
	if upload.AssetID == "" {
		return status, nil
	}

	asset, err := c.GetAsset(ctx, upload.AssetID)
	if err != nil {
		return nil, err
	}
	status.Asset = asset
	return status, nil
}

// GetAsset fetches the transcoding state of a single asset.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*AssetStatus, error) {
	if c.disabled {
		return nil, ErrNotConfigured
	}

	var payload assetPayload
	if err := c.do(ctx, http.MethodGet, "/video/v1/assets/"+assetID, nil, &payload); err != nil {
		return nil, err
	}
	return assetFromPayload(payload), nil
}

func assetFromPayload(payload assetPayload) *AssetStatus {
	asset := &AssetStatus{
		AssetID:         payload.ID,
		State:           payload.Status,
		ThumbnailURL:    payload.ThumbnailURL,
		DurationSeconds: payload.Duration,
		FileSizeBytes:   payload.FileSize,
	}
	if len(payload.PlaybackIDs) > 0 {
		asset.PlaybackID = payload.PlaybackIDs[0].ID
	}
	if len(payload.Errors.Messages) > 0 {
		asset.ErrorReason = payload.Errors.Messages[0]
	}
	return asset
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	result, err := c.breaker.Execute(func() (any, error) {
		var reader io.Reader
		if body != nil {
			encoded, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			reader = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.tokenID, c.tokenSecret)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, fmt.Errorf("pipeline: %s %s returned %d", method, path, resp.StatusCode)
		}
		return raw, nil
	})
	if err != nil {
		return err
	}

	raw := result.([]byte)
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("pipeline: decode response: %w", err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("pipeline: decode payload: %w", err)
		}
	}
	return nil
}
