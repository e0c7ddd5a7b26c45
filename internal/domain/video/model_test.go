package video_test

import (
	"testing"

	"github.com/agutorres/lineup-server/internal/domain/video"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name     string
		status   video.Status
		expected bool
	}{
		{"pending is not terminal", video.StatusPending, false},
		{"processing is not terminal", video.StatusProcessing, false},
		{"ready is terminal", video.StatusReady, true},
		{"errored is terminal", video.StatusErrored, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     video.Status
		to       video.Status
		expected bool
	}{
		{"pending to processing", video.StatusPending, video.StatusProcessing, true},
		{"pending to ready", video.StatusPending, video.StatusReady, true},
		{"pending to errored", video.StatusPending, video.StatusErrored, true},
		{"processing to ready", video.StatusProcessing, video.StatusReady, true},
		{"processing to errored", video.StatusProcessing, video.StatusErrored, true},
		{"processing to pending is a regression", video.StatusProcessing, video.StatusPending, false},
		{"ready to pending is a regression", video.StatusReady, video.StatusPending, false},
		{"ready to processing is a regression", video.StatusReady, video.StatusProcessing, false},
		{"ready to errored crosses terminal states", video.StatusReady, video.StatusErrored, false},
		{"errored to ready crosses terminal states", video.StatusErrored, video.StatusReady, false},
		{"ready to ready is idempotent", video.StatusReady, video.StatusReady, true},
		{"errored to errored is idempotent", video.StatusErrored, video.StatusErrored, true},
		{"processing to processing is idempotent", video.StatusProcessing, video.StatusProcessing, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestValidators(t *testing.T) {
	if !video.ValidSide(video.SideT) || !video.ValidSide(video.SideCT) {
		t.Error("expected both sides to be valid")
	}
	if video.ValidSide("terrorist") {
		t.Error("unknown side accepted")
	}

	for _, vt := range []video.VideoType{video.TypeStanding, video.TypeJumpthrow, video.TypeRunthrow, video.TypeCrouchthrow} {
		if !video.ValidVideoType(vt) {
			t.Errorf("expected %q to be a valid video type", vt)
		}
	}
	if video.ValidVideoType("wallbang") {
		t.Error("unknown video type accepted")
	}

	for _, d := range []video.Difficulty{video.DifficultyEasy, video.DifficultyMedium, video.DifficultyHard} {
		if !video.ValidDifficulty(d) {
			t.Errorf("expected %q to be a valid difficulty", d)
		}
	}
	if video.ValidDifficulty("impossible") {
		t.Error("unknown difficulty accepted")
	}
}
