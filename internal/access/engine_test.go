package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"keycab-backend/internal/db"
	"keycab-backend/internal/model"
	"keycab-backend/internal/store"
)

// engineFixture wires the engine over an in-memory database seeded with
// one faculty member holding badge RFID-001 for room 203, scheduled
// Monday and Wednesday 08:00-10:00.
type engineFixture struct {
	engine  *Engine
	db      *gorm.DB
	cred    model.Credential
	room    model.Room
	faculty model.Faculty
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	f := &engineFixture{db: gdb}

	f.room = model.Room{Code: "203", Description: "Networking Lab", Active: true}
	require.NoError(t, gdb.Create(&f.room).Error)

	f.faculty = model.Faculty{SchoolID: "F-1001", FullName: "Dr. Reyes", Department: "CCIS", Active: true}
	require.NoError(t, gdb.Create(&f.faculty).Error)

	f.cred = model.Credential{BadgeCode: "RFID-001", FacultyID: f.faculty.ID, RoomID: f.room.ID, Active: true}
	require.NoError(t, gdb.Create(&f.cred).Error)

	facultyID := f.faculty.ID
	window := model.ScheduleWindow{
		RoomID:    f.room.ID,
		FacultyID: &facultyID,
		Semester:  "1st",
		Days:      "monday,wednesday",
		StartTime: "08:00",
		EndTime:   "10:00",
		Active:    true,
	}
	require.NoError(t, gdb.Create(&window).Error)

	f.engine = NewEngine(store.NewGormStore(gdb))
	return f
}

func (f *engineFixture) ledgerCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&model.Transaction{}).Count(&count).Error)
	return count
}

// 2026-01-05 is a Monday, 2026-01-06 a Tuesday.
var (
	mondayInWindow  = time.Date(2026, 1, 5, 8, 30, 0, 0, time.UTC)
	mondayReturn    = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	mondayAfter     = time.Date(2026, 1, 5, 10, 1, 0, 0, time.UTC)
	tuesdayInWindow = time.Date(2026, 1, 6, 8, 30, 0, 0, time.UTC)
)

func TestDecide_BorrowReturnDenyCycle(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// Monday 08:30: grant, key released.
	dec, err := f.engine.Decide(ctx, "RFID-001", "203", mondayInWindow)
	require.NoError(t, err)
	assert.True(t, dec.Granted)
	assert.Equal(t, store.ActionBorrow, dec.Action)
	assert.Equal(t, "Dr. Reyes", dec.FacultyName)
	assert.Equal(t, "Access granted - Key released", dec.Message)
	require.NotNil(t, dec.Schedule)
	assert.Equal(t, int64(1), f.ledgerCount(t))

	// Monday 09:00: grant, same row closes, no new row.
	dec, err = f.engine.Decide(ctx, "RFID-001", "203", mondayReturn)
	require.NoError(t, err)
	assert.True(t, dec.Granted)
	assert.Equal(t, store.ActionReturn, dec.Action)
	assert.Equal(t, "Key returned successfully", dec.Message)
	assert.Equal(t, int64(1), f.ledgerCount(t))

	var txn model.Transaction
	require.NoError(t, f.db.First(&txn).Error)
	require.NotNil(t, txn.CloseTime)
	assert.Equal(t, mondayReturn.Unix(), txn.CloseTime.Unix())

	// Tuesday 08:30 has no covering window: denied, second row.
	dec, err = f.engine.Decide(ctx, "RFID-001", "203", tuesdayInWindow)
	require.NoError(t, err)
	assert.False(t, dec.Granted)
	assert.Equal(t, ReasonNoScheduleToday, dec.Reason)
	assert.Equal(t, "No schedule for Tuesday in 1st semester", dec.DenialReason)
	assert.Equal(t, int64(2), f.ledgerCount(t))
}

func TestDecide_OutsideScheduledTime(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	dec, err := f.engine.Decide(ctx, "RFID-001", "203", mondayAfter)
	require.NoError(t, err)
	assert.False(t, dec.Granted)
	assert.Equal(t, ReasonOutsideScheduledTime, dec.Reason)
	assert.Equal(t, "Outside of scheduled time (current: 10:01)", dec.DenialReason)
	assert.Equal(t, int64(1), f.ledgerCount(t))
}

func TestDecide_WindowBoundariesInclusive(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	atStart := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	dec, err := f.engine.Decide(ctx, "RFID-001", "203", atStart)
	require.NoError(t, err)
	assert.True(t, dec.Granted, "window start is inclusive")

	atEnd := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	dec, err = f.engine.Decide(ctx, "RFID-001", "203", atEnd)
	require.NoError(t, err)
	assert.True(t, dec.Granted, "window end is inclusive")
}

func TestDecide_UnknownBadgeLeavesNoLedgerRow(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	dec, err := f.engine.Decide(ctx, "RFID-NOBODY", "203", mondayInWindow)
	require.NoError(t, err)
	assert.False(t, dec.Granted)
	assert.Equal(t, ReasonCredentialUnknown, dec.Reason)
	assert.Equal(t, "RFID card not registered", dec.Message)
	assert.Equal(t, int64(0), f.ledgerCount(t), "unknown badges never reach the ledger")
}

func TestDecide_UnknownRoomLeavesNoLedgerRow(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	dec, err := f.engine.Decide(ctx, "RFID-001", "999", mondayInWindow)
	require.NoError(t, err)
	assert.False(t, dec.Granted)
	assert.Equal(t, ReasonRoomUnknown, dec.Reason)
	assert.Equal(t, "Dr. Reyes", dec.FacultyName)
	assert.Equal(t, int64(0), f.ledgerCount(t))
}

func TestDecide_InactiveCredentialIsLedgered(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&f.cred).Update("active", false).Error)

	dec, err := f.engine.Decide(ctx, "RFID-001", "203", mondayInWindow)
	require.NoError(t, err)
	assert.False(t, dec.Granted)
	assert.Equal(t, ReasonCredentialInactive, dec.Reason)
	assert.Equal(t, "This card has been deactivated", dec.DenialReason)
	assert.Equal(t, int64(1), f.ledgerCount(t))

	var txn model.Transaction
	require.NoError(t, f.db.First(&txn).Error)
	assert.False(t, txn.AccessGranted)
	assert.Equal(t, "203", txn.RoomCode)
}

func TestDecide_InactiveCredentialUnknownRoomStillLedgered(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&f.cred).Update("active", false).Error)

	// The credential check fires before room resolution, so the denial
	// lands even though the room code is garbage. The row keeps the raw
	// code as its snapshot.
	dec, err := f.engine.Decide(ctx, "RFID-001", "999", mondayInWindow)
	require.NoError(t, err)
	assert.Equal(t, ReasonCredentialInactive, dec.Reason)
	assert.Equal(t, int64(1), f.ledgerCount(t))

	var txn model.Transaction
	require.NoError(t, f.db.First(&txn).Error)
	assert.Nil(t, txn.RoomID)
	assert.Equal(t, "999", txn.RoomCode)
}

func TestDecide_InactiveRoomIsLedgered(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&f.room).Update("active", false).Error)

	dec, err := f.engine.Decide(ctx, "RFID-001", "203", mondayInWindow)
	require.NoError(t, err)
	assert.False(t, dec.Granted)
	assert.Equal(t, ReasonRoomInactive, dec.Reason)
	assert.Equal(t, "Room 203 is currently inactive", dec.DenialReason)
	assert.Equal(t, int64(1), f.ledgerCount(t))
}

func TestDecide_OtherSemesterWindowDoesNotAuthorize(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// Flip every window to the 2nd semester while the term stays 1st.
	require.NoError(t, f.db.Model(&model.ScheduleWindow{}).
		Where("room_id = ?", f.room.ID).
		Update("semester", "2nd").Error)

	dec, err := f.engine.Decide(ctx, "RFID-001", "203", mondayInWindow)
	require.NoError(t, err)
	assert.False(t, dec.Granted)
	assert.Equal(t, ReasonNoScheduleToday, dec.Reason)
}

func TestDecide_OverlappingWindowsFirstMatchWins(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// A second window also covering Monday 08:30. The lower-id window
	// must authorize, deterministically.
	facultyID := f.faculty.ID
	overlap := model.ScheduleWindow{
		RoomID: f.room.ID, FacultyID: &facultyID, Semester: "1st",
		Days: "monday", StartTime: "07:00", EndTime: "09:00", Active: true,
	}
	require.NoError(t, f.db.Create(&overlap).Error)

	var first model.ScheduleWindow
	require.NoError(t, f.db.Order("id ASC").First(&first).Error)

	dec, err := f.engine.Decide(ctx, "RFID-001", "203", mondayInWindow)
	require.NoError(t, err)
	assert.True(t, dec.Granted)
	require.NotNil(t, dec.Schedule)
	assert.Equal(t, first.ID, dec.Schedule.ID)
}

func TestDecide_DeactivatedWindowDenies(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&model.ScheduleWindow{}).
		Where("room_id = ?", f.room.ID).
		Update("active", false).Error)

	dec, err := f.engine.Decide(ctx, "RFID-001", "203", mondayInWindow)
	require.NoError(t, err)
	assert.False(t, dec.Granted)
	assert.Equal(t, ReasonNoScheduleToday, dec.Reason)
}
