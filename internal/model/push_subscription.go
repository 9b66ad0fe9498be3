package model

import "time"

// PushSubscription holds a staff browser's web push subscription.
// Subscribers receive operational alerts (denied swipes, heartbeats
// from unregistered controllers).
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
