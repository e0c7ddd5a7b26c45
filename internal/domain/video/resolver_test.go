package video_test

import (
	"testing"

	"github.com/agutorres/lineup-server/internal/domain/video"
)

func TestResolver_Resolve(t *testing.T) {
	resolver := video.Resolver{PlaybackBaseURL: "https://stream.mux.com"}

	tests := []struct {
		name            string
		record          video.Record
		wantURL         string
		wantPlayability video.Playability
	}{
		{
			name:            "playback id wins",
			record:          video.Record{PlaybackID: "pb123", Status: video.StatusReady},
			wantURL:         "https://stream.mux.com/pb123.m3u8",
			wantPlayability: video.Playable,
		},
		{
			name: "playback id wins over legacy url",
			record: video.Record{
				PlaybackID:     "pb123",
				LegacyVideoURL: "https://stream.other.com/legacy.m3u8",
				Status:         video.StatusReady,
			},
			wantURL:         "https://stream.mux.com/pb123.m3u8",
			wantPlayability: video.Playable,
		},
		{
			name:            "legacy url fallback",
			record:          video.Record{LegacyVideoURL: "https://stream.mux.com/abcDEF123.m3u8", Status: video.StatusReady},
			wantURL:         "https://stream.mux.com/abcDEF123.m3u8",
			wantPlayability: video.Playable,
		},
		{
			name:            "unrecognizable legacy url is not playable",
			record:          video.Record{LegacyVideoURL: "http://example.com/video.mp4", Status: video.StatusProcessing},
			wantURL:         "",
			wantPlayability: video.NotReady,
		},
		{
			name:            "pending record is not ready",
			record:          video.Record{Status: video.StatusPending},
			wantURL:         "",
			wantPlayability: video.NotReady,
		},
		{
			name:            "errored record reports errored",
			record:          video.Record{Status: video.StatusErrored},
			wantURL:         "",
			wantPlayability: video.PlaybackError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, playability := resolver.Resolve(&tt.record)
			if url != tt.wantURL {
				t.Errorf("Resolve() url = %q, want %q", url, tt.wantURL)
			}
			if playability != tt.wantPlayability {
				t.Errorf("Resolve() playability = %q, want %q", playability, tt.wantPlayability)
			}
		})
	}
}

func TestResolver_ResolveIsDeterministic(t *testing.T) {
	resolver := video.Resolver{PlaybackBaseURL: "https://stream.mux.com/"}
	rec := &video.Record{PlaybackID: "pb999", Status: video.StatusReady}

	first, _ := resolver.Resolve(rec)
	for i := 0; i < 10; i++ {
		url, playability := resolver.Resolve(rec)
		if url != first || playability != video.Playable {
			t.Fatalf("Resolve() changed across calls: %q vs %q", url, first)
		}
	}
	if first != "https://stream.mux.com/pb999.m3u8" {
		t.Errorf("trailing slash on base url not normalized: %q", first)
	}
}
