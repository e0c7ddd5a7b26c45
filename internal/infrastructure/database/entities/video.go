package entities

import (
	"time"

	"github.com/lib/pq"
)

// Video represents the persisted lineup video record. The row exists from
// the moment an upload session is opened, before any bytes move.
type Video struct {
	ID                string         `gorm:"type:varchar(40);primaryKey"`
	MapID             string         `gorm:"type:varchar(40);index;not null"`
	CategorySectionID string         `gorm:"type:varchar(40);index;not null"`
	Side              string         `gorm:"type:varchar(8);not null"`
	VideoType         string         `gorm:"type:varchar(16);not null"`
	Title             string         `gorm:"type:varchar(255);not null"`
	PositionName      string         `gorm:"type:varchar(255)"`
	Difficulty        string         `gorm:"type:varchar(8);not null"`
	Tags              pq.StringArray `gorm:"type:text[]"`
	Essential         bool           `gorm:"not null;default:false"`

	UploadSessionID string `gorm:"type:varchar(128);uniqueIndex;not null"`
	AssetID         string `gorm:"type:varchar(128);index"`
	PlaybackID      string `gorm:"type:varchar(128)"`
	VideoURL        string `gorm:"type:varchar(512)"`
	Status          string `gorm:"type:varchar(16);index;not null"`

	ThumbnailURL    string  `gorm:"type:varchar(512)"`
	DurationSeconds float64 `gorm:""`
	FileSizeBytes   int64   `gorm:""`
	ErrorReason     string  `gorm:"type:varchar(512)"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Video) TableName() string {
	return "videos"
}

// VideoDetail is a named annotation image attached to a video.
type VideoDetail struct {
	ID        string    `gorm:"type:varchar(40);primaryKey"`
	VideoID   string    `gorm:"type:varchar(40);index;not null"`
	Name      string    `gorm:"type:varchar(64);not null"`
	ImageURL  string    `gorm:"type:varchar(1024);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (VideoDetail) TableName() string {
	return "video_details"
}
