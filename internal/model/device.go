package model

import "time"

// OnlineWindow is how recently a device must have sent a heartbeat to
// count as online. Fixed policy, not configurable per device.
const OnlineWindow = 30 * time.Second

// Device is a door-controller (ESP32) known to the system. HardwareID
// is the identifier the device reports (typically its MAC address).
type Device struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"uniqueIndex;size:50;not null" json:"name"`
	HardwareID      string     `gorm:"column:device_id;uniqueIndex;size:100;not null" json:"device_id"`
	RoomID          *uint      `gorm:"index" json:"room_id"`
	IPAddress       string     `gorm:"size:45" json:"ip_address"`
	LastHeartbeat   *time.Time `json:"last_heartbeat"`
	FirmwareVersion string     `gorm:"size:20" json:"firmware_version"`
	Active          bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time  `gorm:"not null" json:"-"`
	UpdatedAt       time.Time  `gorm:"not null" json:"-"`

	// Associations
	Room *Room `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

// OnlineAt reports whether the device counts as online at the instant:
// a heartbeat within the last OnlineWindow, boundary inclusive. Never
// stored; always computed from wall-clock delta, so a missed heartbeat
// can only make a device look briefly offline, never online forever.
func (d *Device) OnlineAt(now time.Time) bool {
	if d.LastHeartbeat == nil {
		return false
	}
	return now.Sub(*d.LastHeartbeat) <= OnlineWindow
}
