package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"keycab-backend/internal/model"
)

// Lookup failures crossing the store boundary. Handlers and the access
// engine branch on these with errors.Is.
var (
	ErrCredentialUnknown  = errors.New("badge code not registered")
	ErrRoomUnknown        = errors.New("room code not registered")
	ErrDeviceUnregistered = errors.New("device not registered or inactive")
)

// Default term used when the singleton row is first created.
const (
	defaultAcademicYear = "2025-2026"
	defaultSemester     = "1st"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Term registry. CurrentTerm is get-or-create: the singleton row is
	// created on first read and never deleted.
	CurrentTerm(ctx context.Context) (model.Term, error)
	SetTerm(ctx context.Context, academicYear, semester string) (model.Term, error)

	// Directory lookups.
	CredentialByBadge(ctx context.Context, badgeCode string) (*model.Credential, error)
	RoomByCode(ctx context.Context, roomCode string) (*model.Room, error)

	// Schedule store.
	WindowsFor(ctx context.Context, roomID, facultyID uint, semester string) ([]model.ScheduleWindow, error)
	WindowsForRoom(ctx context.Context, roomID uint, semester string) ([]model.ScheduleWindow, error)
	ActiveBadgeCodes(ctx context.Context, facultyID, roomID uint) ([]string, error)
	WindowsChangedSince(ctx context.Context, roomID uint, semester string, since time.Time) (bool, error)

	// Session ledger.
	RecordAttempt(ctx context.Context, att Attempt) (*AttemptResult, error)

	// Device registry.
	Heartbeat(ctx context.Context, hardwareID, firmware, addr string, now time.Time) (*model.Device, error)

	// Command relay.
	IssueCommand(ctx context.Context, roomID uint, staff, action, note string) (*model.ManualCommand, error)
	LatestCommand(ctx context.Context, roomCode string, since time.Time) (*model.ManualCommand, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CurrentTerm returns the singleton term record, creating it with
// defaults on first use.
func (s *gormStore) CurrentTerm(ctx context.Context) (model.Term, error) {
	var term model.Term
	err := s.db.WithContext(ctx).
		Where(model.Term{ID: 1}).
		Attrs(model.Term{AcademicYear: defaultAcademicYear, Semester: defaultSemester}).
		FirstOrCreate(&term).Error
	if err != nil {
		return model.Term{}, fmt.Errorf("failed to load current term: %w", err)
	}
	return term, nil
}

// SetTerm updates the singleton term record in a single-row write.
// Readers see either the old or the new value, nothing in between.
func (s *gormStore) SetTerm(ctx context.Context, academicYear, semester string) (model.Term, error) {
	term, err := s.CurrentTerm(ctx)
	if err != nil {
		return model.Term{}, err
	}
	err = s.db.WithContext(ctx).Model(&term).
		Updates(map[string]any{"academic_year": academicYear, "semester": semester}).Error
	if err != nil {
		return model.Term{}, fmt.Errorf("failed to update term: %w", err)
	}
	term.AcademicYear = academicYear
	term.Semester = semester
	return term, nil
}

// CredentialByBadge resolves a badge code, preloading the owning faculty
// and the target room. Returns ErrCredentialUnknown for unknown codes;
// callers check Active themselves since an inactive credential is a
// policy denial, not a lookup failure.
func (s *gormStore) CredentialByBadge(ctx context.Context, badgeCode string) (*model.Credential, error) {
	var cred model.Credential
	err := s.db.WithContext(ctx).
		Preload("Faculty").
		Where("badge_code = ?", badgeCode).
		First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCredentialUnknown
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up badge %q: %w", badgeCode, err)
	}
	return &cred, nil
}

// RoomByCode resolves a room code. Returns ErrRoomUnknown when no room
// carries the code; Active is left for the caller to check.
func (s *gormStore) RoomByCode(ctx context.Context, roomCode string) (*model.Room, error) {
	var room model.Room
	err := s.db.WithContext(ctx).Where("code = ?", roomCode).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomUnknown
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up room %q: %w", roomCode, err)
	}
	return &room, nil
}

// WindowsFor lists the active schedule windows for a (room, faculty,
// semester) triple, ascending id. The order is the engine's tie-break:
// overlapping windows are a data-entry anomaly, and the first match
// wins deterministically.
func (s *gormStore) WindowsFor(ctx context.Context, roomID, facultyID uint, semester string) ([]model.ScheduleWindow, error) {
	var windows []model.ScheduleWindow
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND faculty_id = ? AND semester = ? AND active = ?", roomID, facultyID, semester, true).
		Order("id ASC").
		Find(&windows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule windows: %w", err)
	}
	return windows, nil
}

// WindowsForRoom lists every active window for a room in a semester,
// faculty preloaded, for the controller schedule download.
func (s *gormStore) WindowsForRoom(ctx context.Context, roomID uint, semester string) ([]model.ScheduleWindow, error) {
	var windows []model.ScheduleWindow
	err := s.db.WithContext(ctx).
		Preload("Faculty").
		Where("room_id = ? AND semester = ? AND active = ?", roomID, semester, true).
		Order("id ASC").
		Find(&windows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load room schedule: %w", err)
	}
	return windows, nil
}

// ActiveBadgeCodes lists the active badge codes a faculty member holds
// for a room, so controllers can validate swipes offline.
func (s *gormStore) ActiveBadgeCodes(ctx context.Context, facultyID, roomID uint) ([]string, error) {
	var codes []string
	err := s.db.WithContext(ctx).
		Model(&model.Credential{}).
		Where("faculty_id = ? AND room_id = ? AND active = ?", facultyID, roomID, true).
		Order("badge_code ASC").
		Pluck("badge_code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load badge codes: %w", err)
	}
	return codes, nil
}

// WindowsChangedSince reports whether any window for the room and
// semester was modified after the given instant. Deactivating a window
// touches updated_at and deleting one sets deleted_at, so both count
// as changes; Unscoped keeps tombstoned rows visible to the check.
func (s *gormStore) WindowsChangedSince(ctx context.Context, roomID uint, semester string, since time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Unscoped().
		Model(&model.ScheduleWindow{}).
		Where("room_id = ? AND semester = ?", roomID, semester).
		Where("updated_at > ? OR deleted_at > ?", since, since).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check schedule freshness: %w", err)
	}
	return count > 0, nil
}
