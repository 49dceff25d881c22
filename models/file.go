package models

import (
	"time"
)

type FileCategory string

const (
	CategoryImage    FileCategory = "image"
	CategoryDocument FileCategory = "document"
	CategoryVideo    FileCategory = "video"
	CategoryAudio    FileCategory = "audio"
	CategoryOther    FileCategory = "other"
)

// File is the metadata record for one stored blob. OwnerID is immutable
// after creation; SharedWith holds the emails of users the owner shared
// the file with and is always replaced wholesale, never appended to.
type File struct {
	ID         uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string       `gorm:"type:varchar(255);not null;index" json:"name"`
	Extension  string       `gorm:"type:varchar(32)" json:"extension"`
	Category   FileCategory `gorm:"type:varchar(16);not null;index" json:"category"`
	Size       int64        `gorm:"not null" json:"size"`
	OwnerID    uint         `gorm:"not null;index" json:"owner_id"`
	SharedWith []string     `gorm:"serializer:json;type:text" json:"shared_with"`
	StorageKey string       `gorm:"type:varchar(255);not null" json:"-"`
	URL        string       `gorm:"type:varchar(500)" json:"url"`
	CreatedAt  time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
