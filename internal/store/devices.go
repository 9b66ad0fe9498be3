package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"keycab-backend/internal/model"
)

// Heartbeat records a check-in from a controller. The device must be
// registered and active; otherwise ErrDeviceUnregistered is returned so
// the caller can surface the stray device to staff. Last-heartbeat and
// address are written on every call; firmware only when it changed.
func (s *gormStore) Heartbeat(ctx context.Context, hardwareID, firmware, addr string, now time.Time) (*model.Device, error) {
	var device model.Device
	err := s.db.WithContext(ctx).
		Preload("Room").
		Where("device_id = ? AND active = ?", hardwareID, true).
		First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDeviceUnregistered
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up device %q: %w", hardwareID, err)
	}

	updates := map[string]any{
		"last_heartbeat": now,
		"ip_address":     addr,
	}
	if firmware != "" && firmware != device.FirmwareVersion {
		updates["firmware_version"] = firmware
		device.FirmwareVersion = firmware
	}
	if err := s.db.WithContext(ctx).Model(&device).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to record heartbeat for %q: %w", hardwareID, err)
	}

	device.LastHeartbeat = &now
	device.IPAddress = addr
	return &device, nil
}
