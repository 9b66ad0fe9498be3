package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"keycab-backend/internal/model"
	"keycab-backend/internal/store"
)

// PollCommands handles GET /api/manual-trigger?room=. Controllers poll
// every couple of seconds; the newest command issued within the recency
// window is returned, anything older is implicitly ignored. There is no
// acknowledgment: a fast-polling controller may see the same command
// twice and an offline one may miss it entirely, which is why door
// actuation must be "set state", never "toggle".
func (h *Handler) PollCommands(c *gin.Context) {
	roomCode := firstOf(c, "room")
	if roomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"has_trigger": false,
			"action":      "",
			"message":     "Missing room parameter",
		})
		return
	}

	now := h.now()
	cmd, err := h.store.LatestCommand(c.Request.Context(), roomCode, now.Add(-model.CommandWindow))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"has_trigger": false,
			"action":      "",
			"message":     "Failed to poll commands",
		})
		return
	}

	if cmd == nil {
		c.JSON(http.StatusOK, gin.H{
			"has_trigger": false,
			"action":      "",
			"message":     "No pending commands",
		})
		return
	}

	log.Printf("delivering manual %s command for room %s", cmd.Action, roomCode)
	c.JSON(http.StatusOK, gin.H{
		"has_trigger": true,
		"action":      cmd.Action,
		"room":        roomCode,
		"message":     "Manual " + cmd.Action + " command",
		"timestamp":   cmd.CreatedAt.Format(time.RFC3339),
		"staff":       cmd.Staff,
	})
}

// issueCommandRequest is the staff-facing command issue payload.
type issueCommandRequest struct {
	RoomCode string `json:"room_code" binding:"required"`
	Action   string `json:"action" binding:"required,oneof=open close"`
	Staff    string `json:"staff" binding:"required"`
	Note     string `json:"note"`
}

// IssueCommand handles POST /api/manual-control. The command row is
// append-only; the controller picks it up on its next poll.
func (h *Handler) IssueCommand(c *gin.Context) {
	var req issueCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	room, err := h.store.RoomByCode(ctx, req.RoomCode)
	if err != nil {
		if errors.Is(err, store.ErrRoomUnknown) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room " + req.RoomCode + " not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to look up room"})
		return
	}
	if !room.Active {
		c.JSON(http.StatusConflict, gin.H{"error": "room " + req.RoomCode + " is inactive"})
		return
	}

	cmd, err := h.store.IssueCommand(ctx, room.ID, req.Staff, req.Action, req.Note)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to record command"})
		return
	}

	log.Printf("manual %s command issued for room %s by %s", req.Action, req.RoomCode, req.Staff)
	c.JSON(http.StatusCreated, gin.H{
		"id":        cmd.ID,
		"room":      req.RoomCode,
		"action":    cmd.Action,
		"timestamp": cmd.CreatedAt.Format(time.RFC3339),
	})
}
