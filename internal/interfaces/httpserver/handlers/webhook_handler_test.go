package handlers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/agutorres/lineup-server/internal/config"
	domain "github.com/agutorres/lineup-server/internal/domain/video"
	"github.com/agutorres/lineup-server/internal/infrastructure/pipeline"
	"github.com/agutorres/lineup-server/internal/interfaces/httpserver/handlers"
	"github.com/agutorres/lineup-server/internal/utils/platformerrors"
)

// stubRepo backs the webhook tests with a single in-memory record.
type stubRepo struct {
	record *domain.Record
}

func (s *stubRepo) notFound() error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "video not found", nil, "")
}

func (s *stubRepo) Create(ctx context.Context, rec *domain.Record) error { return nil }

func (s *stubRepo) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	if s.record != nil && s.record.ID == id {
		return s.record, nil
	}
	return nil, s.notFound()
}

func (s *stubRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Record, error) {
	if s.record != nil && s.record.UploadSessionID == sessionID {
		return s.record, nil
	}
	return nil, s.notFound()
}

func (s *stubRepo) GetByAssetID(ctx context.Context, assetID string) (*domain.Record, error) {
	if s.record != nil && s.record.AssetID == assetID && assetID != "" {
		return s.record, nil
	}
	return nil, s.notFound()
}

func (s *stubRepo) List(ctx context.Context, filter domain.Filter) ([]*domain.Record, error) {
	return nil, nil
}

func (s *stubRepo) UpdateMetadata(ctx context.Context, id string, meta domain.Metadata) (*domain.Record, error) {
	return nil, s.notFound()
}

func (s *stubRepo) MarkProcessing(ctx context.Context, id string) (bool, error) { return false, nil }

func (s *stubRepo) LinkAsset(ctx context.Context, id, assetID string) error { return nil }

func (s *stubRepo) ApplyTerminal(ctx context.Context, id string, status domain.Status, media domain.TerminalMedia, errorReason string) (bool, error) {
	if s.record == nil || s.record.ID != id {
		return false, s.notFound()
	}
	if s.record.Status.IsTerminal() && s.record.Status != status {
		return false, nil
	}
	s.record.Status = status
	s.record.ErrorReason = errorReason
	if media.AssetID != "" {
		s.record.AssetID = media.AssetID
	}
	if status == domain.StatusReady {
		s.record.PlaybackID = media.PlaybackID
	}
	return true, nil
}

func (s *stubRepo) DeletePending(ctx context.Context, id string) (bool, error) {
	if s.record != nil && s.record.ID == id && s.record.Status == domain.StatusPending {
		s.record = nil
		return true, nil
	}
	return false, nil
}

func (s *stubRepo) Delete(ctx context.Context, id string) error { return nil }

func (s *stubRepo) CreateDetail(ctx context.Context, detail *domain.Detail) error { return nil }

func (s *stubRepo) ListDetails(ctx context.Context, videoID string) ([]*domain.Detail, error) {
	return nil, nil
}

func (s *stubRepo) DeleteDetail(ctx context.Context, videoID, detailID string) error { return nil }

type noPipeline struct{}

func (noPipeline) CreateUpload(ctx context.Context) (*pipeline.UploadSession, error) {
	return nil, pipeline.ErrNotConfigured
}

func (noPipeline) GetSessionStatus(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error) {
	return nil, pipeline.ErrNotConfigured
}

func newWebhookRouter(secret string, repo domain.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{PipelineWebhookSecret: secret, PlaybackBaseURL: "https://stream.mux.com"}
	svc := domain.NewService(cfg, repo, noPipeline{}, zerolog.Nop())
	handler := handlers.NewWebhookHandler(cfg, svc, zerolog.Nop())

	engine := gin.New()
	engine.POST("/v1/webhooks/pipeline", handler.Receive)
	return engine
}

func sign(secret string, body []byte) string {
	ts := "1693526400"
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s.%s", ts, body)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postEvent(t *testing.T, engine *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/pipeline", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Mux-Signature", signature)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	engine := newWebhookRouter("whsec", &stubRepo{})
	body := []byte(`{"type":"video.asset.ready","data":{"id":"asset-1"}}`)

	tests := []struct {
		name      string
		signature string
	}{
		{"missing header", ""},
		{"garbage header", "not-a-signature"},
		{"wrong secret", sign("other-secret", body)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postEvent(t, engine, body, tt.signature)
			if resp.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.Code)
			}
		})
	}
}

func TestWebhook_AppliesReadyEvent(t *testing.T) {
	repo := &stubRepo{record: &domain.Record{
		ID:              "vid_1",
		UploadSessionID: "sess-1",
		Status:          domain.StatusProcessing,
	}}
	engine := newWebhookRouter("whsec", repo)

	body := []byte(`{
		"type": "video.asset.ready",
		"data": {
			"id": "asset-1",
			"upload_id": "sess-1",
			"playback_ids": [{"id": "pb-1"}],
			"duration": 9.5
		}
	}`)
	resp := postEvent(t, engine, body, sign("whsec", body))
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if repo.record.Status != domain.StatusReady {
		t.Errorf("record status = %q, want ready", repo.record.Status)
	}
	if repo.record.PlaybackID != "pb-1" || repo.record.AssetID != "asset-1" {
		t.Errorf("media = %q/%q", repo.record.AssetID, repo.record.PlaybackID)
	}
}

func TestWebhook_UnmatchedEventIsAcknowledged(t *testing.T) {
	engine := newWebhookRouter("whsec", &stubRepo{})

	body := []byte(`{"type":"video.asset.ready","data":{"id":"asset-x","upload_id":"sess-x"}}`)
	resp := postEvent(t, engine, body, sign("whsec", body))
	// An unknown record must not trigger sender retries.
	if resp.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for an unmatched event", resp.Code)
	}
}

func TestWebhook_UnknownEventTypeIsIgnored(t *testing.T) {
	engine := newWebhookRouter("whsec", &stubRepo{})

	body := []byte(`{"type":"video.asset.created","data":{"id":"asset-1"}}`)
	resp := postEvent(t, engine, body, sign("whsec", body))
	if resp.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for an ignored event type", resp.Code)
	}
}

func TestWebhook_CancelledRemovesPendingOrphan(t *testing.T) {
	repo := &stubRepo{record: &domain.Record{
		ID:              "vid_1",
		UploadSessionID: "sess-1",
		Status:          domain.StatusPending,
	}}
	engine := newWebhookRouter("whsec", repo)

	body := []byte(`{"type":"video.upload.cancelled","data":{"id":"sess-1"}}`)
	resp := postEvent(t, engine, body, sign("whsec", body))
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if repo.record != nil {
		t.Error("pending orphan was not removed")
	}
}

func TestWebhook_NoSecretSkipsVerification(t *testing.T) {
	repo := &stubRepo{record: &domain.Record{
		ID:              "vid_1",
		UploadSessionID: "sess-1",
		Status:          domain.StatusProcessing,
	}}
	engine := newWebhookRouter("", repo)

	body := []byte(`{"type":"video.asset.errored","data":{"id":"asset-1","upload_id":"sess-1","errors":{"messages":["input file is corrupt"]}}}`)
	resp := postEvent(t, engine, body, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if repo.record.Status != domain.StatusErrored {
		t.Errorf("status = %q, want errored", repo.record.Status)
	}
	if repo.record.ErrorReason != "input file is corrupt" {
		t.Errorf("error reason = %q", repo.record.ErrorReason)
	}
}
