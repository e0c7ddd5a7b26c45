package video

import (
	"fmt"
	"regexp"
	"strings"
)

// legacyStreamPattern recognizes fully formed pipeline streaming URLs stored
// in the legacy video_url column (records that predate playback ids).
var legacyStreamPattern = regexp.MustCompile(`^https://stream\.[a-z0-9.-]+/[A-Za-z0-9]+\.m3u8$`)

// Playability classifies the outcome of playback resolution.
type Playability string

const (
	Playable      Playability = "playable"
	NotReady      Playability = "not_ready"
	PlaybackError Playability = "errored"
)

// Resolver deterministically produces a streaming URL for a record. It is a
// pure function of the record's fields and performs no I/O, so it is safe to
// evaluate on every render.
type Resolver struct {
	// PlaybackBaseURL is the pipeline's canonical streaming host, without a
	// trailing slash, e.g. "https://stream.mux.com".
	PlaybackBaseURL string
}

// Resolve returns the streaming URL for the record, if any. Priority:
// playback id first, then a recognizable legacy URL, else not playable with
// the state keyed off the record status.
func (r Resolver) Resolve(rec *Record) (string, Playability) {
	if rec.PlaybackID != "" {
		return fmt.Sprintf("%s/%s.m3u8", strings.TrimSuffix(r.PlaybackBaseURL, "/"), rec.PlaybackID), Playable
	}
	if legacyStreamPattern.MatchString(rec.LegacyVideoURL) {
		return rec.LegacyVideoURL, Playable
	}
	if rec.Status == StatusErrored {
		return "", PlaybackError
	}
	return "", NotReady
}
