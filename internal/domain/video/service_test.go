package video_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agutorres/lineup-server/internal/config"
	"github.com/agutorres/lineup-server/internal/domain/video"
	"github.com/agutorres/lineup-server/internal/infrastructure/pipeline"
	"github.com/agutorres/lineup-server/internal/utils/platformerrors"
)

// fakeRepo is an in-memory Repository with the same write guards as the SQL
// implementation.
type fakeRepo struct {
	mu      sync.Mutex
	records map[string]*video.Record
	details map[string][]*video.Detail
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records: make(map[string]*video.Record),
		details: make(map[string][]*video.Detail),
	}
}

func (f *fakeRepo) notFound() error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "video not found", nil, "")
}

func (f *fakeRepo) Create(ctx context.Context, rec *video.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *rec
	f.records[rec.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*video.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, f.notFound()
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeRepo) GetBySessionID(ctx context.Context, sessionID string) (*video.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.UploadSessionID == sessionID {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, f.notFound()
}

func (f *fakeRepo) GetByAssetID(ctx context.Context, assetID string) (*video.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.AssetID == assetID && assetID != "" {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, f.notFound()
}

func (f *fakeRepo) List(ctx context.Context, filter video.Filter) ([]*video.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*video.Record
	for _, rec := range f.records {
		clone := *rec
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeRepo) UpdateMetadata(ctx context.Context, id string, meta video.Metadata) (*video.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, f.notFound()
	}
	rec.Title = meta.Title
	rec.Tags = meta.Tags
	clone := *rec
	return &clone, nil
}

func (f *fakeRepo) MarkProcessing(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.Status != video.StatusPending {
		return false, nil
	}
	rec.Status = video.StatusProcessing
	return true, nil
}

func (f *fakeRepo) LinkAsset(ctx context.Context, id, assetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return f.notFound()
	}
	if rec.AssetID == "" {
		rec.AssetID = assetID
	}
	return nil
}

func (f *fakeRepo) ApplyTerminal(ctx context.Context, id string, status video.Status, media video.TerminalMedia, errorReason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return false, f.notFound()
	}
	if rec.Status.IsTerminal() && rec.Status != status {
		return false, nil
	}
	rec.Status = status
	rec.ErrorReason = errorReason
	if media.AssetID != "" {
		rec.AssetID = media.AssetID
	}
	if status == video.StatusReady {
		rec.PlaybackID = media.PlaybackID
		rec.ThumbnailURL = media.ThumbnailURL
		rec.DurationSeconds = media.DurationSeconds
		rec.FileSizeBytes = media.FileSizeBytes
	}
	return true, nil
}

func (f *fakeRepo) DeletePending(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.Status != video.StatusPending {
		return false, nil
	}
	delete(f.records, id)
	delete(f.details, id)
	return true, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return f.notFound()
	}
	delete(f.records, id)
	delete(f.details, id)
	return nil
}

func (f *fakeRepo) CreateDetail(ctx context.Context, detail *video.Detail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details[detail.VideoID] = append(f.details[detail.VideoID], detail)
	return nil
}

func (f *fakeRepo) ListDetails(ctx context.Context, videoID string) ([]*video.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.details[videoID], nil
}

func (f *fakeRepo) DeleteDetail(ctx context.Context, videoID, detailID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.details[videoID][:0]
	for _, d := range f.details[videoID] {
		if d.ID != detailID {
			kept = append(kept, d)
		}
	}
	f.details[videoID] = kept
	return nil
}

// mockPipeline is a function-field mock of the pipeline client.
type mockPipeline struct {
	CreateUploadFunc     func(ctx context.Context) (*pipeline.UploadSession, error)
	GetSessionStatusFunc func(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error)
}

func (m *mockPipeline) CreateUpload(ctx context.Context) (*pipeline.UploadSession, error) {
	return m.CreateUploadFunc(ctx)
}

func (m *mockPipeline) GetSessionStatus(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error) {
	return m.GetSessionStatusFunc(ctx, sessionID)
}

func testConfig() *config.Config {
	return &config.Config{
		PlaybackBaseURL: "https://stream.mux.com",
	}
}

func validMetadata() video.Metadata {
	return video.Metadata{
		MapID:             "map_01h9aaaaaaaaaaaaaaaaaaaaaa",
		CategorySectionID: "sec_01h9aaaaaaaaaaaaaaaaaaaaaa",
		Side:              video.SideT,
		VideoType:         video.TypeJumpthrow,
		Title:             "Smoke from T spawn",
		Difficulty:        video.DifficultyMedium,
		Tags:              []string{"Smoke", "smoke", " a-site "},
	}
}

func newTestService(repo video.Repository, pl video.PipelineClient) *video.Service {
	return video.NewService(testConfig(), repo, pl, zerolog.Nop())
}

func TestInitUpload_CreatesPendingRecord(t *testing.T) {
	repo := newFakeRepo()
	pl := &mockPipeline{
		CreateUploadFunc: func(ctx context.Context) (*pipeline.UploadSession, error) {
			return &pipeline.UploadSession{SessionID: "sess-1", UploadURL: "https://upload.example/put"}, nil
		},
	}
	svc := newTestService(repo, pl)

	rec, uploadURL, err := svc.InitUpload(context.Background(), validMetadata())
	if err != nil {
		t.Fatalf("InitUpload() error = %v", err)
	}
	if uploadURL != "https://upload.example/put" {
		t.Errorf("upload url = %q", uploadURL)
	}
	if rec.Status != video.StatusPending {
		t.Errorf("status = %q, want pending", rec.Status)
	}
	if rec.UploadSessionID != "sess-1" {
		t.Errorf("session id = %q", rec.UploadSessionID)
	}

	stored, err := repo.GetByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("record was not persisted: %v", err)
	}
	// Tags are lowercased, trimmed and deduplicated.
	if len(stored.Tags) != 2 || stored.Tags[0] != "smoke" || stored.Tags[1] != "a-site" {
		t.Errorf("tags not normalized: %v", stored.Tags)
	}
}

func TestInitUpload_NoRecordOnSessionFailure(t *testing.T) {
	repo := newFakeRepo()
	pl := &mockPipeline{
		CreateUploadFunc: func(ctx context.Context) (*pipeline.UploadSession, error) {
			return nil, pipeline.ErrSessionCreation
		},
	}
	svc := newTestService(repo, pl)

	_, _, err := svc.InitUpload(context.Background(), validMetadata())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeSessionCreation) {
		t.Errorf("error type = %v, want session creation", err)
	}
	if len(repo.records) != 0 {
		t.Error("a record was created despite the session failure")
	}
}

func TestInitUpload_ValidationSkipsPipeline(t *testing.T) {
	called := false
	pl := &mockPipeline{
		CreateUploadFunc: func(ctx context.Context) (*pipeline.UploadSession, error) {
			called = true
			return nil, nil
		},
	}
	svc := newTestService(newFakeRepo(), pl)

	meta := validMetadata()
	meta.Side = "spectator"
	if _, _, err := svc.InitUpload(context.Background(), meta); err == nil {
		t.Fatal("expected a validation error")
	}
	if called {
		t.Error("pipeline was called with invalid metadata")
	}
}

func TestMarkTransferComplete_IsAdvisoryAndIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &mockPipeline{})
	seed(repo, "vid_1", "sess-1", video.StatusPending)

	rec, err := svc.MarkTransferComplete(context.Background(), "vid_1")
	if err != nil {
		t.Fatalf("MarkTransferComplete() error = %v", err)
	}
	if rec.Status != video.StatusProcessing {
		t.Errorf("status = %q, want processing", rec.Status)
	}

	// Second call is a no-op.
	rec, err = svc.MarkTransferComplete(context.Background(), "vid_1")
	if err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if rec.Status != video.StatusProcessing {
		t.Errorf("status after second call = %q", rec.Status)
	}
}

func TestReconciliation_OrderIndependent(t *testing.T) {
	media := video.TerminalMedia{
		PlaybackID:      "pb-1",
		ThumbnailURL:    "https://image.example/t.png",
		DurationSeconds: 12.5,
		FileSizeBytes:   1024,
	}
	readyStatus := &pipeline.SessionStatus{
		SessionID: "sess-1",
		State:     pipeline.UploadAssetCreated,
		AssetID:   "asset-1",
		Asset: &pipeline.AssetStatus{
			AssetID:         "asset-1",
			State:           pipeline.AssetReady,
			PlaybackID:      "pb-1",
			ThumbnailURL:    "https://image.example/t.png",
			DurationSeconds: 12.5,
			FileSizeBytes:   1024,
		},
	}

	assertReady := func(t *testing.T, repo *fakeRepo) {
		t.Helper()
		rec, err := repo.GetByID(context.Background(), "vid_1")
		if err != nil {
			t.Fatalf("record missing: %v", err)
		}
		if rec.Status != video.StatusReady {
			t.Errorf("status = %q, want ready", rec.Status)
		}
		if rec.PlaybackID != "pb-1" || rec.AssetID != "asset-1" {
			t.Errorf("media fields = %q/%q", rec.AssetID, rec.PlaybackID)
		}
	}

	t.Run("poll first then webhook", func(t *testing.T) {
		repo := newFakeRepo()
		seed(repo, "vid_1", "sess-1", video.StatusProcessing)
		pl := &mockPipeline{GetSessionStatusFunc: func(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error) {
			return readyStatus, nil
		}}
		svc := newTestService(repo, pl)

		if _, done, err := svc.Refresh(context.Background(), "vid_1"); err != nil || !done {
			t.Fatalf("Refresh() done=%v err=%v", done, err)
		}
		if err := svc.HandleAssetReady(context.Background(), "asset-1", "sess-1", media); err != nil {
			t.Fatalf("webhook after poll errored: %v", err)
		}
		assertReady(t, repo)
	})

	t.Run("webhook first then poll", func(t *testing.T) {
		repo := newFakeRepo()
		seed(repo, "vid_1", "sess-1", video.StatusProcessing)
		pl := &mockPipeline{GetSessionStatusFunc: func(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error) {
			return readyStatus, nil
		}}
		svc := newTestService(repo, pl)

		if err := svc.HandleAssetReady(context.Background(), "asset-1", "sess-1", media); err != nil {
			t.Fatalf("webhook errored: %v", err)
		}
		if _, done, err := svc.Refresh(context.Background(), "vid_1"); err != nil || !done {
			t.Fatalf("Refresh() done=%v err=%v", done, err)
		}
		assertReady(t, repo)
	})
}

func TestApplyTerminal_NeverFlipsTerminalStatus(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "vid_1", "sess-1", video.StatusProcessing)
	svc := newTestService(repo, &mockPipeline{})

	if err := svc.HandleAssetReady(context.Background(), "asset-1", "sess-1", video.TerminalMedia{PlaybackID: "pb-1"}); err != nil {
		t.Fatalf("ready apply failed: %v", err)
	}
	if err := svc.HandleAssetErrored(context.Background(), "asset-1", "sess-1", "late failure event"); err != nil {
		t.Fatalf("errored apply returned error: %v", err)
	}

	rec, _ := repo.GetByID(context.Background(), "vid_1")
	if rec.Status != video.StatusReady {
		t.Errorf("terminal status flipped to %q", rec.Status)
	}
	if rec.PlaybackID != "pb-1" {
		t.Errorf("media fields were clobbered: %q", rec.PlaybackID)
	}
}

func TestWebhookLookup_FallsBackToSessionID(t *testing.T) {
	repo := newFakeRepo()
	// The record never learned its asset id.
	seed(repo, "vid_1", "sess-1", video.StatusProcessing)
	svc := newTestService(repo, &mockPipeline{})

	if err := svc.HandleAssetReady(context.Background(), "asset-9", "sess-1", video.TerminalMedia{PlaybackID: "pb-9"}); err != nil {
		t.Fatalf("fallback lookup failed: %v", err)
	}
	rec, _ := repo.GetByID(context.Background(), "vid_1")
	if rec.Status != video.StatusReady || rec.AssetID != "asset-9" {
		t.Errorf("record = %q/%q, want ready/asset-9", rec.Status, rec.AssetID)
	}
}

func TestWebhook_MissReturnsSentinel(t *testing.T) {
	svc := newTestService(newFakeRepo(), &mockPipeline{})

	err := svc.HandleAssetReady(context.Background(), "asset-x", "sess-x", video.TerminalMedia{})
	if !errors.Is(err, video.ErrReconciliationMiss) {
		t.Errorf("error = %v, want ErrReconciliationMiss", err)
	}
}

func TestHandleUploadCancelled_RemovesOnlyPending(t *testing.T) {
	t.Run("pending orphan is removed", func(t *testing.T) {
		repo := newFakeRepo()
		seed(repo, "vid_1", "sess-1", video.StatusPending)
		svc := newTestService(repo, &mockPipeline{})

		if err := svc.HandleUploadCancelled(context.Background(), "sess-1"); err != nil {
			t.Fatalf("HandleUploadCancelled() error = %v", err)
		}
		if _, err := repo.GetByID(context.Background(), "vid_1"); err == nil {
			t.Error("orphaned pending record still exists")
		}
	})

	t.Run("processing record survives", func(t *testing.T) {
		repo := newFakeRepo()
		seed(repo, "vid_1", "sess-1", video.StatusProcessing)
		svc := newTestService(repo, &mockPipeline{})

		if err := svc.HandleUploadCancelled(context.Background(), "sess-1"); err != nil {
			t.Fatalf("HandleUploadCancelled() error = %v", err)
		}
		if _, err := repo.GetByID(context.Background(), "vid_1"); err != nil {
			t.Error("processing record was removed by cancel cleanup")
		}
	})

	t.Run("ready record survives", func(t *testing.T) {
		repo := newFakeRepo()
		seed(repo, "vid_1", "sess-1", video.StatusReady)
		svc := newTestService(repo, &mockPipeline{})

		if err := svc.HandleUploadCancelled(context.Background(), "sess-1"); err != nil {
			t.Fatalf("HandleUploadCancelled() error = %v", err)
		}
		if _, err := repo.GetByID(context.Background(), "vid_1"); err != nil {
			t.Error("terminal record was removed by cancel cleanup")
		}
	})
}

func TestRefresh_TerminalRecordShortCircuits(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "vid_1", "sess-1", video.StatusReady)
	pl := &mockPipeline{GetSessionStatusFunc: func(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error) {
		t.Fatal("pipeline polled for a terminal record")
		return nil, nil
	}}
	svc := newTestService(repo, pl)

	_, done, err := svc.Refresh(context.Background(), "vid_1")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if !done {
		t.Error("terminal record reported as still in flight")
	}
}

func TestRefresh_LinksAssetBeforeTerminal(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "vid_1", "sess-1", video.StatusProcessing)
	pl := &mockPipeline{GetSessionStatusFunc: func(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error) {
		return &pipeline.SessionStatus{
			SessionID: "sess-1",
			State:     pipeline.UploadAssetCreated,
			AssetID:   "asset-1",
			Asset:     &pipeline.AssetStatus{AssetID: "asset-1", State: pipeline.AssetPreparing},
		}, nil
	}}
	svc := newTestService(repo, pl)

	rec, done, err := svc.Refresh(context.Background(), "vid_1")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if done {
		t.Error("preparing asset reported as done")
	}
	if rec.AssetID != "asset-1" {
		t.Errorf("asset id not linked: %q", rec.AssetID)
	}
}

func seed(repo *fakeRepo, id, sessionID string, status video.Status) {
	repo.records[id] = &video.Record{
		ID:              id,
		UploadSessionID: sessionID,
		Status:          status,
		Side:            video.SideT,
		VideoType:       video.TypeStanding,
		Difficulty:      video.DifficultyEasy,
		Title:           "seeded",
	}
}
