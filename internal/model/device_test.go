package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeviceOnlineAt(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	heartbeatAt := func(ago time.Duration) *time.Time {
		at := now.Add(-ago)
		return &at
	}

	testCases := []struct {
		name          string
		lastHeartbeat *time.Time
		want          bool
	}{
		{"no heartbeat ever", nil, false},
		{"29s ago", heartbeatAt(29 * time.Second), true},
		{"exactly 30s ago", heartbeatAt(30 * time.Second), true}, // boundary is inclusive
		{"31s ago", heartbeatAt(31 * time.Second), false},
		{"just now", heartbeatAt(0), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := Device{LastHeartbeat: tc.lastHeartbeat}
			assert.Equal(t, tc.want, d.OnlineAt(now))
		})
	}
}
