package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"keycab-backend/internal/parse"
	"keycab-backend/internal/store"
)

// scheduleEntry is one per-day row of a controller's cached schedule.
// Multi-day windows are expanded to one entry per day so the firmware
// never parses day-sets. FacultyRFIDs carries every active badge code
// the assigned faculty holds for this room, so the controller can
// validate swipes offline.
type scheduleEntry struct {
	ID                uint     `json:"id"`
	Day               string   `json:"day"`
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
	Subject           string   `json:"subject"`
	FacultyName       string   `json:"faculty_name"`
	FacultyRFIDs      []string `json:"faculty_rfids"`
	InstructorDisplay string   `json:"instructor_display"`
}

// DownloadSchedules handles GET/POST /api/esp32/schedules?room=. It
// serves the full denormalized schedule for the room and current term,
// plus the server clock and weekday for controllers with drifty clocks.
func (h *Handler) DownloadSchedules(c *gin.Context) {
	roomCode := firstOf(c, "room")
	if roomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Missing 'room' parameter"})
		return
	}

	ctx := c.Request.Context()
	room, err := h.store.RoomByCode(ctx, roomCode)
	if err != nil || !room.Active {
		if err != nil && !errors.Is(err, store.ErrRoomUnknown) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to look up room"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Room " + roomCode + " not found or inactive"})
		return
	}

	term, err := h.store.CurrentTerm(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load current term"})
		return
	}

	windows, err := h.store.WindowsForRoom(ctx, room.ID, term.Semester)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load schedules"})
		return
	}

	entries := make([]scheduleEntry, 0, len(windows))
	for i := range windows {
		w := &windows[i]

		var facultyName string
		var badgeCodes []string
		if w.FacultyID != nil {
			if w.Faculty != nil {
				facultyName = w.Faculty.FullName
			}
			badgeCodes, err = h.store.ActiveBadgeCodes(ctx, *w.FacultyID, room.ID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load badge codes"})
				return
			}
		}
		if badgeCodes == nil {
			badgeCodes = []string{}
		}

		for _, day := range w.DayNames() {
			entries = append(entries, scheduleEntry{
				ID:                w.ID,
				Day:               day,
				StartTime:         w.StartTime,
				EndTime:           w.EndTime,
				Subject:           w.Subject,
				FacultyName:       facultyName,
				FacultyRFIDs:      badgeCodes,
				InstructorDisplay: w.Instructor,
			})
		}
	}

	now := h.now()
	log.Printf("schedule download: room=%s semester=%s entries=%d", roomCode, term.Semester, len(entries))
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"room_code":      roomCode,
		"semester":       term.Semester,
		"academic_year":  term.AcademicYear,
		"schedule_count": len(entries),
		"schedules":      entries,
		"last_updated":   now.Format(time.RFC3339),
		"server_time":    now.Format("2006-01-02 15:04:05"),
		"day_of_week":    parse.DayName(now.Weekday()),
	})
}

// CheckUpdates handles GET /api/esp32/check-updates?room=&last_sync=.
// An absent or unparseable last_sync always answers stale: the safe
// wrong answer is a redundant re-download.
func (h *Handler) CheckUpdates(c *gin.Context) {
	roomCode := c.Query("room")
	if roomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Missing 'room' parameter"})
		return
	}

	ctx := c.Request.Context()
	room, err := h.store.RoomByCode(ctx, roomCode)
	if err != nil || !room.Active {
		if err != nil && !errors.Is(err, store.ErrRoomUnknown) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to look up room"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Room " + roomCode + " not found"})
		return
	}

	term, err := h.store.CurrentTerm(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load current term"})
		return
	}

	needsUpdate := true
	if lastSync := c.Query("last_sync"); lastSync != "" {
		if since, parseErr := time.Parse(time.RFC3339, lastSync); parseErr == nil {
			needsUpdate, err = h.store.WindowsChangedSince(ctx, room.ID, term.Semester, since)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to check schedule freshness"})
				return
			}
		}
	}

	message := "Schedules are up to date"
	if needsUpdate {
		message = "Update required"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"needs_update":     needsUpdate,
		"current_semester": term.Semester,
		"current_ay":       term.AcademicYear,
		"server_time":      h.now().Format(time.RFC3339),
		"message":          message,
	})
}

// offlineEventRequest is a swipe a controller authorized (or refused)
// itself from cached schedule data while disconnected.
type offlineEventRequest struct {
	RoomCode      string `json:"room_code" binding:"required"`
	BadgeCode     string `json:"rfid_code" binding:"required"`
	AccessGranted *bool  `json:"access_granted" binding:"required"`
	Timestamp     string `json:"timestamp" binding:"required"`
}

// LogOfflineAccess handles POST /api/esp32/log-offline. The event is
// merged through the same ledger open/close matching as a live swipe,
// with the controller-supplied timestamp as the decision instant, so
// out-of-order arrival cannot corrupt the open-session invariant.
func (h *Handler) LogOfflineAccess(c *gin.Context) {
	var req offlineEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid request: " + err.Error()})
		return
	}

	occurredAt, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid 'timestamp': expected RFC3339"})
		return
	}
	occurredAt = occurredAt.In(h.loc)

	ctx := c.Request.Context()
	cred, err := h.store.CredentialByBadge(ctx, req.BadgeCode)
	if err != nil {
		if errors.Is(err, store.ErrCredentialUnknown) {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Badge code not registered"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to look up badge"})
		return
	}

	room, err := h.store.RoomByCode(ctx, req.RoomCode)
	if err != nil {
		if errors.Is(err, store.ErrRoomUnknown) {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Room " + req.RoomCode + " not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to look up room"})
		return
	}

	term, err := h.store.CurrentTerm(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to load current term"})
		return
	}

	att := store.Attempt{
		Credential: cred,
		Room:       room,
		Term:       term,
		Now:        occurredAt,
		Granted:    *req.AccessGranted,
	}
	if !att.Granted {
		att.DenialReason = "Denied by controller from cached schedule"
	}

	result, err := h.store.RecordAttempt(ctx, att)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to merge offline event"})
		return
	}

	log.Printf("merged offline event: badge=%s room=%s granted=%v action=%s at=%s",
		req.BadgeCode, req.RoomCode, att.Granted, result.Action, occurredAt.Format(time.RFC3339))
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Offline access logged",
		"action":  result.Action,
	})
}
