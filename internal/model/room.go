package model

import "time"

// Room is a laboratory room whose key lives in the cabinet.
// Deactivating a room blocks access decisions without deleting history.
type Room struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"uniqueIndex;size:10;not null" json:"code"`
	Description string    `gorm:"size:100" json:"description"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `gorm:"not null" json:"-"`
	UpdatedAt   time.Time `gorm:"not null" json:"-"`
}
