package entities

import "time"

// Comment is a user comment on a video.
type Comment struct {
	ID        string    `gorm:"type:varchar(40);primaryKey"`
	VideoID   string    `gorm:"type:varchar(40);index;not null"`
	UserID    string    `gorm:"type:varchar(64);index;not null"`
	Body      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Comment) TableName() string {
	return "comments"
}

// Favorite marks a video saved by a user. One row per user and video.
type Favorite struct {
	ID        string    `gorm:"type:varchar(40);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);uniqueIndex:idx_favorites_user_video;not null"`
	VideoID   string    `gorm:"type:varchar(40);uniqueIndex:idx_favorites_user_video;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Favorite) TableName() string {
	return "favorites"
}
