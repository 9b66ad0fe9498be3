package model

import "time"

// Term is the single authoritative current-term record (academic year +
// semester). Exactly one row exists, created on first read and never
// deleted; staff mutate it in place.
type Term struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	AcademicYear string    `gorm:"size:20;not null" json:"academic_year"`
	Semester     string    `gorm:"size:10;not null" json:"semester"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
