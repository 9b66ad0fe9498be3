package access

import (
	"context"
	"fmt"
	"log"
	"time"

	"keycab-backend/internal/model"
	"keycab-backend/internal/parse"
	"keycab-backend/internal/store"
)

// ReasonCode identifies why a swipe was denied. Unknown badge/room are
// lookup failures and never reach the ledger; the rest are policy
// denials and always produce a denied ledger row.
type ReasonCode string

const (
	ReasonCredentialUnknown  ReasonCode = "CREDENTIAL_UNKNOWN"
	ReasonCredentialInactive ReasonCode = "CREDENTIAL_INACTIVE"
	ReasonRoomUnknown        ReasonCode = "ROOM_UNKNOWN"
	ReasonRoomInactive       ReasonCode = "ROOM_INACTIVE"

	// A window exists for today's weekday but the time falls outside it,
	// vs. no window matches today at all. Reporting needs the
	// distinction, so it is never collapsed.
	ReasonOutsideScheduledTime ReasonCode = "OUTSIDE_SCHEDULED_TIME"
	ReasonNoScheduleToday      ReasonCode = "NO_SCHEDULE_TODAY"
)

// Decision is the structured outcome of a swipe. Every decision,
// granted or denied, corresponds to exactly one new ledger row, except
// lookup failures (unknown badge or room), which carry a ReasonCode but
// have no credential or room to attach a row to.
type Decision struct {
	Granted      bool
	Action       string // store.ActionBorrow, store.ActionReturn, or ""
	FacultyName  string
	Message      string
	Reason       ReasonCode
	DenialReason string // human-readable, stored on the ledger row
	Schedule     *model.ScheduleWindow
}

// Engine decides badge swipes. It is stateless between calls: all state
// lives in the store, and the current term is read fresh at the start
// of every decision.
type Engine struct {
	store store.Store
}

// NewEngine creates a decision engine backed by the given store.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// Decide runs the full swipe pipeline for (badge, room, now): resolve
// the credential and room, load the current term, find an authorizing
// schedule window, and append the outcome to the session ledger.
// Preconditions short-circuit with a specific denial on first failure.
func (e *Engine) Decide(ctx context.Context, badgeCode, roomCode string, now time.Time) (Decision, error) {
	cred, err := e.store.CredentialByBadge(ctx, badgeCode)
	if err == store.ErrCredentialUnknown {
		log.Printf("swipe rejected: badge %q not registered (room %q)", badgeCode, roomCode)
		return Decision{
			Reason:       ReasonCredentialUnknown,
			Message:      "RFID card not registered",
			DenialReason: "Card UID not found in database",
		}, nil
	}
	if err != nil {
		return Decision{}, err
	}

	if !cred.Active {
		// Resolve the room leniently so the denied row carries a live
		// reference when possible; the code snapshot covers the rest.
		room, _ := e.store.RoomByCode(ctx, roomCode)
		return e.deny(ctx, cred, room, roomCode, now, ReasonCredentialInactive,
			"RFID card is disabled", "This card has been deactivated")
	}

	room, err := e.store.RoomByCode(ctx, roomCode)
	if err == store.ErrRoomUnknown {
		log.Printf("swipe rejected: room %q not registered (badge %q)", roomCode, badgeCode)
		return Decision{
			FacultyName:  cred.Faculty.FullName,
			Reason:       ReasonRoomUnknown,
			Message:      "Unknown room code",
			DenialReason: fmt.Sprintf("Room %s not found in system", roomCode),
		}, nil
	}
	if err != nil {
		return Decision{}, err
	}

	if !room.Active {
		return e.deny(ctx, cred, room, roomCode, now, ReasonRoomInactive,
			"Room is disabled", fmt.Sprintf("Room %s is currently inactive", roomCode))
	}

	term, err := e.store.CurrentTerm(ctx)
	if err != nil {
		return Decision{}, err
	}

	windows, err := e.store.WindowsFor(ctx, room.ID, cred.FacultyID, term.Semester)
	if err != nil {
		return Decision{}, err
	}

	authorizing, dayMatched := matchWindows(windows, now)
	if authorizing == nil {
		reason := ReasonNoScheduleToday
		detail := fmt.Sprintf("No schedule for %s in %s semester",
			now.Weekday().String(), term.Semester)
		if dayMatched {
			reason = ReasonOutsideScheduledTime
			detail = fmt.Sprintf("Outside of scheduled time (current: %s)", parse.ClockOf(now))
		}
		return e.denyInTerm(ctx, cred, room, roomCode, term, now, reason, "Access denied", detail)
	}

	result, err := e.store.RecordAttempt(ctx, store.Attempt{
		Credential: cred,
		Room:       room,
		Term:       term,
		Now:        now,
		Granted:    true,
		Schedule:   authorizing,
	})
	if err != nil {
		return Decision{}, err
	}

	message := "Access granted - Key released"
	if result.Action == store.ActionReturn {
		message = "Key returned successfully"
	}
	return Decision{
		Granted:     true,
		Action:      result.Action,
		FacultyName: cred.Faculty.FullName,
		Message:     message,
		Schedule:    authorizing,
	}, nil
}

// matchWindows finds the authorizing window for the instant, walking
// the store's deterministic order and taking the first full match.
// dayMatched reports whether any window covered the weekday, which
// drives the OUTSIDE_SCHEDULED_TIME vs NO_SCHEDULE_TODAY split.
// Multiple full matches are a data-entry anomaly: logged, not rejected.
func matchWindows(windows []model.ScheduleWindow, now time.Time) (authorizing *model.ScheduleWindow, dayMatched bool) {
	matches := 0
	for i := range windows {
		w := &windows[i]
		if !w.CoversDay(now.Weekday()) {
			continue
		}
		dayMatched = true
		if w.CoversTime(parse.ClockOf(now)) {
			matches++
			if authorizing == nil {
				authorizing = w
			}
		}
	}
	if matches > 1 {
		log.Printf("overlapping schedule windows: %d windows match room %d at %s; using window %d",
			matches, authorizing.RoomID, now.Format(time.RFC3339), authorizing.ID)
	}
	return authorizing, dayMatched
}

// deny records a policy denial, loading the term first so the ledger
// row is tagged with the term in force at denial time.
func (e *Engine) deny(ctx context.Context, cred *model.Credential, room *model.Room, roomCode string, now time.Time, reason ReasonCode, message, detail string) (Decision, error) {
	term, err := e.store.CurrentTerm(ctx)
	if err != nil {
		return Decision{}, err
	}
	return e.denyInTerm(ctx, cred, room, roomCode, term, now, reason, message, detail)
}

// denyInTerm appends the denied attempt to the ledger and shapes the
// decision. Denied rows are terminal: they carry a nil close time and
// are never closed by later swipes.
func (e *Engine) denyInTerm(ctx context.Context, cred *model.Credential, room *model.Room, roomCode string, term model.Term, now time.Time, reason ReasonCode, message, detail string) (Decision, error) {
	if _, err := e.store.RecordAttempt(ctx, store.Attempt{
		Credential:   cred,
		Room:         room,
		RoomCode:     roomCode,
		Term:         term,
		Now:          now,
		Granted:      false,
		DenialReason: detail,
	}); err != nil {
		return Decision{}, err
	}
	return Decision{
		FacultyName:  cred.Faculty.FullName,
		Reason:       reason,
		Message:      message,
		DenialReason: detail,
	}, nil
}
