package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/agutorres/lineup-server/internal/config"
	domain "github.com/agutorres/lineup-server/internal/domain/video"
	"github.com/agutorres/lineup-server/internal/infrastructure/metrics"
)

const maxWebhookBody = 1 << 20

// Event types delivered by the pipeline.
const (
	eventAssetReady      = "video.asset.ready"
	eventAssetErrored    = "video.asset.errored"
	eventUploadCancelled = "video.upload.cancelled"
)

// WebhookHandler ingests pipeline webhook events, the push path of status
// reconciliation.
type WebhookHandler struct {
	secret  string
	service *domain.Service
	log     zerolog.Logger
}

func NewWebhookHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:  cfg.PipelineWebhookSecret,
		service: service,
		log:     log.With().Str("component", "webhook-handler").Logger(),
	}
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID          string `json:"id"`
		UploadID    string `json:"upload_id"`
		PlaybackIDs []struct {
			ID string `json:"id"`
		} `json:"playback_ids"`
		ThumbnailURL string  `json:"thumbnail_url"`
		Duration     float64 `json:"duration"`
		FileSize     int64   `json:"file_size"`
		Errors       struct {
			Messages []string `json:"messages"`
		} `json:"errors"`
	} `json:"data"`
}

// Receive godoc
// @Summary      Pipeline webhook sink
// @Description  Verifies the signature and applies asset lifecycle events to local records.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /v1/webhooks/pipeline [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if h.secret != "" {
		if !verifySignature(c.GetHeader("Mux-Signature"), body, h.secret) {
			metrics.RecordWebhookEvent("unknown", "bad_signature")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	ctx := c.Request.Context()
	switch event.Type {
	case eventAssetReady:
		media := domain.TerminalMedia{
			ThumbnailURL:    event.Data.ThumbnailURL,
			DurationSeconds: event.Data.Duration,
			FileSizeBytes:   event.Data.FileSize,
		}
		if len(event.Data.PlaybackIDs) > 0 {
			media.PlaybackID = event.Data.PlaybackIDs[0].ID
		}
		err = h.service.HandleAssetReady(ctx, event.Data.ID, event.Data.UploadID, media)
	case eventAssetErrored:
		reason := ""
		if len(event.Data.Errors.Messages) > 0 {
			reason = event.Data.Errors.Messages[0]
		}
		err = h.service.HandleAssetErrored(ctx, event.Data.ID, event.Data.UploadID, reason)
	case eventUploadCancelled:
		err = h.service.HandleUploadCancelled(ctx, event.Data.ID)
	default:
		// Unhandled event families are acknowledged and ignored.
		metrics.RecordWebhookEvent(event.Type, "ignored")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	switch {
	case errors.Is(err, domain.ErrReconciliationMiss):
		// The event references a record this deployment never created.
		// Acknowledge anyway so the sender stops retrying.
		metrics.RecordWebhookEvent(event.Type, "miss")
		h.log.Warn().Str("event_type", event.Type).Str("asset_id", event.Data.ID).
			Str("upload_id", event.Data.UploadID).Msg("webhook event matched no local record")
		c.JSON(http.StatusOK, gin.H{"status": "no_match"})
	case err != nil:
		metrics.RecordWebhookEvent(event.Type, "error")
		h.log.Error().Err(err).Str("event_type", event.Type).Msg("webhook processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
	default:
		metrics.RecordWebhookEvent(event.Type, "applied")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// verifySignature checks the "t=<ts>,v1=<hex hmac>" header format: the hmac
// is sha256 over "<ts>.<body>" keyed with the webhook secret.
func verifySignature(header string, body []byte, secret string) bool {
	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "t="):
			ts = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "v1="):
			sig = strings.TrimPrefix(part, "v1=")
		}
	}
	if ts == "" || sig == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}
