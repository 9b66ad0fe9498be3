package model

import "time"

// Transaction is one access attempt. Granted attempts carry the key's
// open→close lifecycle: a row with a nil CloseTime and AccessGranted
// true means the key is currently out for (credential, room, term).
// Denied attempts are terminal rows and are never closed.
//
// FacultyName/RoomCode/BadgeCode are point-in-time snapshots captured at
// insert so the audit trail survives deletion of the referenced rows;
// they are never re-derived from the live relations.
type Transaction struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CredentialID *uint `gorm:"index:idx_open_session" json:"credential_id"`
	RoomID       *uint `gorm:"index:idx_open_session" json:"room_id"`

	FacultyName string `gorm:"size:150" json:"faculty_name"`
	RoomCode    string `gorm:"size:10" json:"room_code"`
	BadgeCode   string `gorm:"size:50" json:"badge_code"`

	AcademicYear string `gorm:"size:20;not null;index:idx_open_session" json:"academic_year"`
	Semester     string `gorm:"size:10;not null;index:idx_open_session" json:"semester"`

	OpenTime  time.Time  `gorm:"not null;index" json:"open_time"`
	CloseTime *time.Time `gorm:"index:idx_open_session" json:"close_time"`

	AccessGranted bool   `gorm:"not null;index:idx_open_session" json:"access_granted"`
	DenialReason  string `gorm:"size:200" json:"denial_reason"`

	ScheduleID *uint `json:"schedule_id"`

	// Associations
	Credential *Credential     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Room       *Room           `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Schedule   *ScheduleWindow `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}
