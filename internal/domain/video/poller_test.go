package video_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/agutorres/lineup-server/internal/domain/video"
	"github.com/agutorres/lineup-server/internal/infrastructure/pipeline"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func TestStatusPoller_StopsOnTerminal(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "vid_1", "sess-1", video.StatusProcessing)

	var polls atomic.Int32
	pl := &mockPipeline{GetSessionStatusFunc: func(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error) {
		n := polls.Add(1)
		state := pipeline.AssetPreparing
		if n >= 3 {
			state = pipeline.AssetReady
		}
		return &pipeline.SessionStatus{
			SessionID: sessionID,
			State:     pipeline.UploadAssetCreated,
			AssetID:   "asset-1",
			Asset:     &pipeline.AssetStatus{AssetID: "asset-1", State: state, PlaybackID: "pb-1"},
		}, nil
	}}

	svc := newTestService(repo, pl)
	poller := video.NewStatusPoller(svc, 3*time.Millisecond, time.Second, zerolog.Nop())
	defer poller.Shutdown()

	poller.Watch("vid_1")

	ok := waitFor(t, time.Second, func() bool {
		rec, err := repo.GetByID(context.Background(), "vid_1")
		return err == nil && rec.Status == video.StatusReady
	})
	if !ok {
		t.Fatal("record never reached ready")
	}

	// The watch goroutine stops once terminal; poll count must settle.
	settled := polls.Load()
	time.Sleep(20 * time.Millisecond)
	if polls.Load() != settled {
		t.Error("poller kept polling after the terminal state")
	}
}

func TestStatusPoller_TimeoutIsNotAnError(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "vid_1", "sess-1", video.StatusProcessing)

	pl := &mockPipeline{GetSessionStatusFunc: func(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error) {
		return &pipeline.SessionStatus{
			SessionID: sessionID,
			State:     pipeline.UploadAssetCreated,
			AssetID:   "asset-1",
			Asset:     &pipeline.AssetStatus{AssetID: "asset-1", State: pipeline.AssetPreparing},
		}, nil
	}}

	svc := newTestService(repo, pl)
	poller := video.NewStatusPoller(svc, 3*time.Millisecond, 25*time.Millisecond, zerolog.Nop())

	poller.Watch("vid_1")
	time.Sleep(40 * time.Millisecond) // let the watch window elapse
	poller.Shutdown()

	rec, err := repo.GetByID(context.Background(), "vid_1")
	if err != nil {
		t.Fatalf("record missing after timeout: %v", err)
	}
	// A slow transcode leaves the record in flight for the webhook path.
	if rec.Status != video.StatusProcessing {
		t.Errorf("status = %q, want processing", rec.Status)
	}
}

func TestStatusPoller_TransientErrorsAreSkipped(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "vid_1", "sess-1", video.StatusProcessing)

	var polls atomic.Int32
	pl := &mockPipeline{GetSessionStatusFunc: func(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error) {
		if polls.Add(1) < 3 {
			return nil, context.DeadlineExceeded
		}
		return &pipeline.SessionStatus{
			SessionID: sessionID,
			State:     pipeline.UploadAssetCreated,
			AssetID:   "asset-1",
			Asset:     &pipeline.AssetStatus{AssetID: "asset-1", State: pipeline.AssetReady, PlaybackID: "pb-1"},
		}, nil
	}}

	svc := newTestService(repo, pl)
	poller := video.NewStatusPoller(svc, 3*time.Millisecond, time.Second, zerolog.Nop())
	defer poller.Shutdown()

	poller.Watch("vid_1")

	ok := waitFor(t, time.Second, func() bool {
		rec, err := repo.GetByID(context.Background(), "vid_1")
		return err == nil && rec.Status == video.StatusReady
	})
	if !ok {
		t.Fatal("poller did not recover from transient failures")
	}
}

func TestStatusPoller_WatchIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	seed(repo, "vid_1", "sess-1", video.StatusProcessing)

	pl := &mockPipeline{GetSessionStatusFunc: func(ctx context.Context, sessionID string) (*pipeline.SessionStatus, error) {
		return &pipeline.SessionStatus{SessionID: sessionID, State: pipeline.UploadWaiting}, nil
	}}

	svc := newTestService(repo, pl)
	poller := video.NewStatusPoller(svc, time.Millisecond, time.Second, zerolog.Nop())

	poller.Watch("vid_1")
	poller.Watch("vid_1")
	poller.Watch("vid_1")

	// Shutdown must not hang on duplicate watches.
	done := make(chan struct{})
	go func() {
		poller.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown deadlocked after duplicate Watch calls")
	}
}
