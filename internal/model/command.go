package model

import "time"

// Manual command actions. Door actuation must be idempotent on the
// controller side ("set state", not "toggle"): the relay may deliver a
// command to more than one poll, or to none.
const (
	ActionOpen  = "open"
	ActionClose = "close"
)

// CommandWindow is how far back a controller poll looks for a manual
// command. Matches the controllers' poll interval with slack; fixed
// policy, like the heartbeat window.
const CommandWindow = 5 * time.Second

// ManualCommand is a staff-issued door command. Rows are append-only;
// controllers consume them by recency, not by acknowledgment.
type ManualCommand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"index;not null" json:"room_id"`
	Staff     string    `gorm:"size:150" json:"staff"`
	Action    string    `gorm:"size:10;not null" json:"action"`
	Note      string    `json:"note"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`

	// Associations
	Room Room `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
