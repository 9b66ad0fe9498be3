package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"keycab-backend/internal/model"
)

// IssueCommand appends a manual door command. Rows are never updated or
// marked consumed; controllers pick them up by recency.
func (s *gormStore) IssueCommand(ctx context.Context, roomID uint, staff, action, note string) (*model.ManualCommand, error) {
	cmd := model.ManualCommand{
		RoomID: roomID,
		Staff:  staff,
		Action: action,
		Note:   note,
	}
	if err := s.db.WithContext(ctx).Create(&cmd).Error; err != nil {
		return nil, fmt.Errorf("failed to record manual command: %w", err)
	}
	return &cmd, nil
}

// LatestCommand returns the newest manual command for a room created at
// or after the given instant, or nil when there is none. Commands older
// than the recency window are implicitly ignored, never deleted.
func (s *gormStore) LatestCommand(ctx context.Context, roomCode string, since time.Time) (*model.ManualCommand, error) {
	var cmd model.ManualCommand
	err := s.db.WithContext(ctx).
		Joins("JOIN rooms ON rooms.id = manual_commands.room_id").
		Where("rooms.code = ? AND manual_commands.created_at >= ?", roomCode, since).
		Order("manual_commands.created_at DESC, manual_commands.id DESC").
		First(&cmd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to poll commands for room %q: %w", roomCode, err)
	}
	return &cmd, nil
}
