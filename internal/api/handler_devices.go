package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"keycab-backend/internal/model"
)

// deviceStatus is one row of the staff status board.
type deviceStatus struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Room          string `json:"room"`
	Online        bool   `json:"is_online"`
	LastSeen      string `json:"last_seen"`
	Firmware      string `json:"firmware_version"`
	ScheduleCount int64  `json:"schedule_count"`
}

// DeviceStatus handles GET /api/esp32/status: real-time liveness of
// every active controller plus how many schedule windows its room has
// loaded in the current term. Online is computed on read from the
// heartbeat delta.
func (h *Handler) DeviceStatus(c *gin.Context) {
	ctx := c.Request.Context()
	db := h.store.DB()

	var devices []model.Device
	if err := db.WithContext(ctx).Preload("Room").Where("active = ?", true).Order("name ASC").Find(&devices).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve devices"})
		return
	}

	term, err := h.store.CurrentTerm(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load current term"})
		return
	}

	now := h.now()
	statuses := make([]deviceStatus, 0, len(devices))
	online := 0
	for i := range devices {
		d := &devices[i]

		roomCode := "Unassigned"
		var scheduleCount int64
		if d.Room != nil {
			roomCode = d.Room.Code
			if err := db.WithContext(ctx).Model(&model.ScheduleWindow{}).
				Where("room_id = ? AND semester = ? AND active = ?", d.Room.ID, term.Semester, true).
				Count(&scheduleCount).Error; err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to count schedules"})
				return
			}
		}

		lastSeen := ""
		if d.LastHeartbeat != nil {
			lastSeen = d.LastHeartbeat.Format(time.RFC3339)
		}
		isOnline := d.OnlineAt(now)
		if isOnline {
			online++
		}

		statuses = append(statuses, deviceStatus{
			ID:            d.ID,
			Name:          d.Name,
			Room:          roomCode,
			Online:        isOnline,
			LastSeen:      lastSeen,
			Firmware:      d.FirmwareVersion,
			ScheduleCount: scheduleCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"devices":      statuses,
		"online_count": online,
		"total_count":  len(statuses),
	})
}
