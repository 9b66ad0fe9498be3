package model

import "time"

// Credential binds one RFID badge code to one (faculty, room) pair.
// A faculty member needing access to N rooms holds N credentials.
type Credential struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BadgeCode string    `gorm:"uniqueIndex;size:50;not null" json:"badge_code"`
	FacultyID uint      `gorm:"index;not null" json:"faculty_id"`
	RoomID    uint      `gorm:"index;not null" json:"room_id"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"-"`

	// Associations
	Faculty Faculty `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Room    Room    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
