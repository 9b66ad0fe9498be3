package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"keycab-backend/internal/model"
)

// Ledger actions, in the wire form the controllers expect.
const (
	ActionBorrow = "borrow_key"
	ActionReturn = "return_key"
)

// Attempt is one access decision to be appended to the session ledger.
// Now is the decision instant; for offline-merged events it is the
// controller-supplied timestamp, not receipt time.
type Attempt struct {
	Credential *model.Credential
	Room       *model.Room
	// RoomCode is the snapshot fallback when the room did not resolve
	// (e.g. an inactive credential swiped at an unregistered room).
	// Granted attempts always carry a resolved Room.
	RoomCode     string
	Term         model.Term
	Now          time.Time
	Granted      bool
	DenialReason string
	Schedule     *model.ScheduleWindow
}

// AttemptResult reports what the ledger did with a granted attempt.
type AttemptResult struct {
	Action      string
	Transaction model.Transaction
}

// RecordAttempt appends exactly one ledger entry per decision.
//
// Granted with an open session for (credential, room, term): close it,
// the key is being returned. Granted with no open session: insert a new
// open row, the key is being borrowed. Denied: insert a terminal row
// with the denial reason; it is never closed by a later swipe.
//
// Two concurrent grants for the same key can both pass the close check
// under read-committed before either insert commits. The partial unique
// index on the open-session key rejects the second insert; the loser
// retries the close once and reports a return, since the key state
// flipped between its read and its write.
func (s *gormStore) RecordAttempt(ctx context.Context, att Attempt) (*AttemptResult, error) {
	if att.Credential == nil {
		return nil, fmt.Errorf("ledger attempt requires a resolved credential")
	}
	if att.Granted && att.Room == nil {
		return nil, fmt.Errorf("granted attempt requires a resolved room")
	}

	if !att.Granted {
		denied := s.newTransaction(att)
		if err := s.db.WithContext(ctx).Create(&denied).Error; err != nil {
			return nil, fmt.Errorf("failed to record denied attempt: %w", err)
		}
		return &AttemptResult{Action: "", Transaction: denied}, nil
	}

	result, err := s.recordGranted(ctx, att)
	if err == nil {
		return result, nil
	}
	if closed, retryErr := closeOpenSession(s.db.WithContext(ctx), att); retryErr == nil && closed != nil {
		return &AttemptResult{Action: ActionReturn, Transaction: *closed}, nil
	}
	return nil, err
}

// recordGranted runs the close-or-open check inside a transaction.
func (s *gormStore) recordGranted(ctx context.Context, att Attempt) (*AttemptResult, error) {
	var result AttemptResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		closed, err := closeOpenSession(tx, att)
		if err != nil {
			return err
		}
		if closed != nil {
			result.Action = ActionReturn
			result.Transaction = *closed
			return nil
		}

		opened := s.newTransaction(att)
		if err := tx.Create(&opened).Error; err != nil {
			return fmt.Errorf("failed to open session: %w", err)
		}
		result.Action = ActionBorrow
		result.Transaction = opened
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// closeOpenSession flips the open session for the attempt's key to
// closed with a single filtered UPDATE, returning the closed row, or
// nil when no session was open.
func closeOpenSession(db *gorm.DB, att Attempt) (*model.Transaction, error) {
	res := db.Model(&model.Transaction{}).
		Where("credential_id = ? AND room_id = ? AND academic_year = ? AND semester = ?",
			att.Credential.ID, att.Room.ID, att.Term.AcademicYear, att.Term.Semester).
		Where("close_time IS NULL AND access_granted = ?", true).
		Update("close_time", att.Now)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to close open session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var txn model.Transaction
	db.Where("credential_id = ? AND room_id = ? AND close_time = ?",
		att.Credential.ID, att.Room.ID, att.Now).
		Order("open_time DESC").
		First(&txn)
	return &txn, nil
}

// newTransaction builds a ledger row with the snapshot fields captured
// at insert time. The snapshots are what reports read after the live
// credential or room rows are deleted.
func (s *gormStore) newTransaction(att Attempt) model.Transaction {
	credID := att.Credential.ID
	roomCode := att.RoomCode
	var roomID *uint
	if att.Room != nil {
		id := att.Room.ID
		roomID = &id
		roomCode = att.Room.Code
	}
	txn := model.Transaction{
		CredentialID:  &credID,
		RoomID:        roomID,
		FacultyName:   att.Credential.Faculty.FullName,
		RoomCode:      roomCode,
		BadgeCode:     att.Credential.BadgeCode,
		AcademicYear:  att.Term.AcademicYear,
		Semester:      att.Term.Semester,
		OpenTime:      att.Now,
		AccessGranted: att.Granted,
		DenialReason:  att.DenialReason,
	}
	if att.Schedule != nil {
		schedID := att.Schedule.ID
		txn.ScheduleID = &schedID
	}
	return txn
}
