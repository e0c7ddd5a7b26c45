package video

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agutorres/lineup-server/internal/infrastructure/metrics"
)

// StatusPoller drives the poll path of reconciliation: one goroutine per
// watched video, ticking until the record reaches a terminal state or the
// watch window elapses. Watches do not survive a restart; the webhook path
// and manual refresh cover records whose watch was lost.
type StatusPoller struct {
	svc      *Service
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup

	base     context.Context
	stopBase context.CancelFunc
}

// NewStatusPoller builds a poller with the configured cadence and window.
func NewStatusPoller(svc *Service, interval, timeout time.Duration, log zerolog.Logger) *StatusPoller {
	base, stop := context.WithCancel(context.Background())
	return &StatusPoller{
		svc:      svc,
		interval: interval,
		timeout:  timeout,
		log:      log.With().Str("component", "status-poller").Logger(),
		cancels:  make(map[string]context.CancelFunc),
		base:     base,
		stopBase: stop,
	}
}

// Watch starts polling the video's status. Watching an already watched video
// is a no-op, so a manual refresh can call this unconditionally.
func (p *StatusPoller) Watch(videoID string) {
	p.mu.Lock()
	if _, active := p.cancels[videoID]; active {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(p.base, p.timeout)
	p.cancels[videoID] = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	metrics.ActivePollers.Inc()
	go p.run(ctx, videoID)
}

// Cancel stops the watch for one video, if any.
func (p *StatusPoller) Cancel(videoID string) {
	p.mu.Lock()
	cancel, ok := p.cancels[videoID]
	p.mu.Unlock()
	if ok {
		cancel()
	}
}

// Shutdown cancels every watch and waits for the goroutines to drain.
func (p *StatusPoller) Shutdown() {
	p.stopBase()
	p.wg.Wait()
}

func (p *StatusPoller) run(ctx context.Context, videoID string) {
	defer func() {
		p.mu.Lock()
		if cancel, ok := p.cancels[videoID]; ok {
			cancel()
			delete(p.cancels, videoID)
		}
		p.mu.Unlock()
		metrics.ActivePollers.Dec()
		p.wg.Done()
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				// The transcode is slow, not failed. The webhook path or a
				// manual refresh will finish the job.
				p.log.Info().Str("video_id", videoID).Dur("window", p.timeout).
					Msg("watch window elapsed before a terminal status")
			}
			return
		case <-ticker.C:
			_, done, err := p.svc.Refresh(ctx, videoID)
			if err != nil {
				// Transient failures skip the round; the next tick retries.
				p.log.Debug().Err(err).Str("video_id", videoID).Msg("poll round failed")
				continue
			}
			if done {
				return
			}
		}
	}
}
