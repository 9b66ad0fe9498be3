package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"keycab-backend/internal/store"
)

// heartbeatBody is the JSON encoding controllers may POST.
type heartbeatBody struct {
	DeviceID        string `json:"device_id"`
	FirmwareVersion string `json:"firmware_version"`
}

// Heartbeat handles GET/POST /api/esp32/heartbeat. The device id and
// optional firmware version are accepted from query parameters, form
// fields, or a JSON body; controller firmware in the field sends all
// three. A missing device id is a validation failure; a present but
// unknown id is DEVICE_UNREGISTERED and is surfaced to staff rather
// than silently ignored.
func (h *Handler) Heartbeat(c *gin.Context) {
	deviceID := firstOf(c, "device_id")
	firmware := firstOf(c, "firmware_version")

	if deviceID == "" && c.Request.Body != nil {
		var body heartbeatBody
		if err := json.NewDecoder(c.Request.Body).Decode(&body); err == nil {
			deviceID = body.DeviceID
			if firmware == "" {
				firmware = body.FirmwareVersion
			}
		}
	}

	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Missing device_id parameter",
			"hint":    "Send device_id as a query param, form field, or in a JSON body",
		})
		return
	}

	device, err := h.store.Heartbeat(c.Request.Context(), deviceID, firmware, c.ClientIP(), h.now())
	if errors.Is(err, store.ErrDeviceUnregistered) {
		log.Printf("heartbeat from unregistered device %q (addr %s)", deviceID, c.ClientIP())
		h.alert("Unregistered device", fmt.Sprintf("Heartbeat from %s", deviceID))
		c.JSON(http.StatusNotFound, gin.H{
			"status":             "error",
			"message":            "Device not registered or inactive",
			"reason_code":        "DEVICE_UNREGISTERED",
			"device_id_received": deviceID,
		})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to record heartbeat"})
		return
	}

	roomCode := ""
	if device.Room != nil {
		roomCode = device.Room.Code
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Heartbeat received",
		"device_name": device.Name,
		"room":        roomCode,
		"timestamp":   device.LastHeartbeat.Format(time.RFC3339),
	})
}
