package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// swipeResponse is the fixed envelope controllers parse. The same shape
// comes back for grants, denials, and lookup failures so the embedded
// client needs exactly one parse path; it branches on access_granted,
// never on the HTTP status.
type swipeResponse struct {
	Status        string `json:"status"`
	AccessGranted bool   `json:"access_granted"`
	Action        string `json:"action"`
	Faculty       string `json:"faculty"`
	Message       string `json:"message"`
	DenialReason  string `json:"denial_reason"`
	ReasonCode    string `json:"reason_code"`
}

// Swipe handles GET/POST /api/swipe. The badge and room codes arrive as
// query parameters or form fields, whichever the controller firmware
// sends. Only a missing parameter is a transport-level error (400);
// every well-formed swipe answers 200 and the envelope says the rest.
func (h *Handler) Swipe(c *gin.Context) {
	code := firstOf(c, "code")
	roomCode := firstOf(c, "room")

	if code == "" || roomCode == "" {
		c.JSON(http.StatusBadRequest, swipeResponse{
			Status:       "error",
			Message:      "Missing 'code' or 'room' parameter",
			DenialReason: "Invalid request - missing required parameters",
		})
		return
	}

	decision, err := h.engine.Decide(c.Request.Context(), code, roomCode, h.now())
	if err != nil {
		log.Printf("swipe failed for badge %q room %q: %v", code, roomCode, err)
		c.JSON(http.StatusInternalServerError, swipeResponse{
			Status:  "error",
			Message: "Internal server error",
		})
		return
	}

	status := "ok"
	if !decision.Granted {
		status = "error"
		h.alert("Access denied",
			fmt.Sprintf("Room %s: %s", roomCode, decision.DenialReason))
	}

	c.JSON(http.StatusOK, swipeResponse{
		Status:        status,
		AccessGranted: decision.Granted,
		Action:        decision.Action,
		Faculty:       decision.FacultyName,
		Message:       decision.Message,
		DenialReason:  decision.DenialReason,
		ReasonCode:    string(decision.Reason),
	})
}

// firstOf reads a parameter from the query string or the posted form,
// in that order.
func firstOf(c *gin.Context, key string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return c.PostForm(key)
}
