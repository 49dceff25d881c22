package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the application-side account record. AccountID is the auth
// subject issued when the first OTP for this email goes out; it never
// changes afterwards.
type User struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"account_id"`
	FullName  string         `gorm:"type:varchar(100)" json:"full_name"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Avatar    string         `gorm:"type:varchar(255)" json:"avatar"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
