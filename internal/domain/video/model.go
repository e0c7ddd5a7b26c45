package video

import "time"

// Status is the local lifecycle state of a video record. It mirrors the
// asset pipeline's state machine and only ever moves forward:
// pending -> processing -> ready | errored.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusErrored    Status = "errored"
)

// IsTerminal reports whether no further status transition is expected.
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusErrored
}

// rank orders statuses along the lifecycle; terminal states share the top
// rank so that neither can replace the other.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusReady, StatusErrored:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving from s to next preserves
// monotonicity. Re-applying the current status is allowed (idempotent
// overwrite); moving between the two terminal states is not.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	return next.rank() > s.rank()
}

// Side is the team a lineup belongs to.
type Side string

const (
	SideT  Side = "t"
	SideCT Side = "ct"
)

// ValidSide reports whether the value is one of the two sides.
func ValidSide(s Side) bool {
	return s == SideT || s == SideCT
}

// VideoType is the throw technique shown in the clip.
type VideoType string

const (
	TypeStanding    VideoType = "standing"
	TypeJumpthrow   VideoType = "jumpthrow"
	TypeRunthrow    VideoType = "runthrow"
	TypeCrouchthrow VideoType = "crouchthrow"
)

// ValidVideoType reports whether the value is a known throw technique.
func ValidVideoType(t VideoType) bool {
	switch t {
	case TypeStanding, TypeJumpthrow, TypeRunthrow, TypeCrouchthrow:
		return true
	}
	return false
}

// Difficulty is an ordered three-level rating.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ValidDifficulty reports whether the value is a known difficulty level.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Record is a lineup video. It is created (status=pending) as soon as an
// upload session exists, before any bytes are transferred, so that webhook
// events arriving early can still find a row to update.
type Record struct {
	ID                string     `json:"id"`
	MapID             string     `json:"map_id"`
	CategorySectionID string     `json:"category_section_id"`
	Side              Side       `json:"side"`
	VideoType         VideoType  `json:"video_type"`
	Title             string     `json:"title"`
	PositionName      string     `json:"position_name"`
	Difficulty        Difficulty `json:"difficulty"`
	Tags              []string   `json:"tags"`
	Essential         bool       `json:"essential"`

	UploadSessionID string `json:"upload_session_id"`
	AssetID         string `json:"asset_id,omitempty"`
	PlaybackID      string `json:"playback_id,omitempty"`
	// LegacyVideoURL carries the pre-playback-id streaming URL for records
	// created before the pipeline migration.
	LegacyVideoURL string `json:"video_url,omitempty"`
	Status         Status `json:"status"`

	ThumbnailURL    string  `json:"thumbnail_url,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	FileSizeBytes   int64   `json:"file_size_bytes,omitempty"`
	ErrorReason     string  `json:"error_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Detail is a named image annotation owned by a Record ("Position",
// "Aiming", "End Point"). It has no lifecycle of its own and is removed with
// its parent.
type Detail struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// TerminalMedia is the payload applied on a terminal "ready" observation,
// whichever path (poll or webhook) observes it first. Both paths derive it
// from the same upstream truth, so applying it twice must converge.
type TerminalMedia struct {
	AssetID         string
	PlaybackID      string
	ThumbnailURL    string
	DurationSeconds float64
	FileSizeBytes   int64
}

// Metadata is the caller supplied descriptive part of a new record.
type Metadata struct {
	MapID             string
	CategorySectionID string
	Side              Side
	VideoType         VideoType
	Title             string
	PositionName      string
	Difficulty        Difficulty
	Tags              []string
	Essential         bool
}

// UploadSession is the broker's view of a freshly created pipeline session.
type UploadSession struct {
	SessionID string
	UploadURL string
}

// Filter narrows video listings.
type Filter struct {
	MapID             string
	CategorySectionID string
	Side              Side
	VideoType         VideoType
	Difficulty        Difficulty
	EssentialOnly     bool
	Status            Status
}
