package model

// Faculty is an employee record. SchoolID is the employee ID and is
// unique; badge codes hang off Credential, not here.
type Faculty struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	SchoolID   string `gorm:"uniqueIndex;size:50;not null" json:"school_id"`
	FullName   string `gorm:"size:150" json:"full_name"`
	Department string `gorm:"size:10" json:"department"`
	Active     bool   `gorm:"not null;default:true" json:"active"`

	// Associations
	Credentials []Credential `gorm:"foreignKey:FacultyID" json:"-"`
}
