package model

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"keycab-backend/internal/parse"
)

// ScheduleWindow is a recurring weekly time range during which an
// assigned faculty member may access a room. Days holds canonical
// lowercase full day names joined by commas ("monday,wednesday"), a
// storage convenience for "the same time range repeats on these days".
// Day text is normalized by internal/parse before it reaches this type.
// StartTime/EndTime are zero-padded "HH:MM" strings (minute precision),
// so string comparison is time comparison.
type ScheduleWindow struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	RoomID    uint   `gorm:"index;not null" json:"room_id"`
	Semester  string `gorm:"size:10;not null" json:"semester"`
	Days      string `gorm:"column:day_of_week;size:100;not null" json:"days"`
	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`
	Subject   string `gorm:"size:100" json:"subject"`

	// Instructor is display-only text; FacultyID is what grants access.
	Instructor string `gorm:"size:100" json:"instructor"`
	FacultyID  *uint  `gorm:"index" json:"faculty_id"`

	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`

	// Deletes are soft so controllers polling for changes can tell a
	// removed window apart from "nothing new".
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Associations
	Room    Room     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Faculty *Faculty `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

// DayNames returns the day-set as canonical names.
func (w *ScheduleWindow) DayNames() []string {
	if w.Days == "" {
		return nil
	}
	return strings.Split(w.Days, ",")
}

// CoversDay reports whether the window's day-set contains the weekday.
func (w *ScheduleWindow) CoversDay(d time.Weekday) bool {
	name := parse.DayName(d)
	for _, day := range w.DayNames() {
		if day == name {
			return true
		}
	}
	return false
}

// CoversTime reports whether the HH:MM time of day falls within
// [StartTime, EndTime], inclusive on both ends.
func (w *ScheduleWindow) CoversTime(tod string) bool {
	return w.StartTime <= tod && tod <= w.EndTime
}

// Matches reports whether the window authorizes access at the instant.
func (w *ScheduleWindow) Matches(now time.Time) bool {
	return w.CoversDay(now.Weekday()) && w.CoversTime(parse.ClockOf(now))
}
