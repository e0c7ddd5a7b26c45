package entities

import "time"

// GameMap is a playable map that owns the content hierarchy below it.
type GameMap struct {
	ID           string    `gorm:"type:varchar(40);primaryKey"`
	Name         string    `gorm:"type:varchar(128);uniqueIndex;not null"`
	DisplayName  string    `gorm:"type:varchar(128);not null"`
	ThumbnailURL string    `gorm:"type:varchar(512)"`
	Active       bool      `gorm:"not null;default:true"`
	SortOrder    int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (GameMap) TableName() string {
	return "maps"
}

// Category is a grenade/utility family (smoke, flash, molotov, he).
type Category struct {
	ID        string    `gorm:"type:varchar(40);primaryKey"`
	Name      string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	IconURL   string    `gorm:"type:varchar(512)"`
	SortOrder int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Category) TableName() string {
	return "categories"
}

// CategorySection is a target area on a map within a category, the direct
// parent of videos ("A Site Smokes on Mirage").
type CategorySection struct {
	ID         string    `gorm:"type:varchar(40);primaryKey"`
	MapID      string    `gorm:"type:varchar(40);index:idx_sections_map_category;not null"`
	CategoryID string    `gorm:"type:varchar(40);index:idx_sections_map_category;not null"`
	Name       string    `gorm:"type:varchar(128);not null"`
	SortOrder  int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (CategorySection) TableName() string {
	return "category_sections"
}

// Callout is a named position pin on a map overview image.
type Callout struct {
	ID        string    `gorm:"type:varchar(40);primaryKey"`
	MapID     string    `gorm:"type:varchar(40);index;not null"`
	Name      string    `gorm:"type:varchar(128);not null"`
	X         float64   `gorm:"not null"`
	Y         float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Callout) TableName() string {
	return "callouts"
}
