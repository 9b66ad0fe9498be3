package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"keycab-backend/internal/model"
)

type deviceRequest struct {
	Name       string `json:"name" binding:"required"`
	HardwareID string `json:"device_id" binding:"required"`
	RoomID     *uint  `json:"room_id"`
	Active     *bool  `json:"active"`
}

// ListDevices handles GET /api/admin/devices.
func ListDevices(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var devices []model.Device
		if err := db.WithContext(c.Request.Context()).Order("name ASC").Find(&devices).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve devices"})
			return
		}
		c.JSON(http.StatusOK, devices)
	}
}

// RegisterDevice handles POST /api/admin/devices. A controller must be
// registered here before its heartbeats are accepted.
func RegisterDevice(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		device := model.Device{Name: req.Name, HardwareID: req.HardwareID, RoomID: req.RoomID, Active: true}
		if req.Active != nil {
			device.Active = *req.Active
		}
		if err := db.WithContext(c.Request.Context()).Create(&device).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Device name or hardware id already registered"})
			return
		}
		c.JSON(http.StatusCreated, device)
	}
}

// UpdateDevice handles PUT /api/admin/devices/:id.
func UpdateDevice(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req deviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var device model.Device
		if err := db.WithContext(c.Request.Context()).First(&device, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve device"})
			return
		}
		updates := map[string]any{"name": req.Name, "device_id": req.HardwareID, "room_id": req.RoomID}
		if req.Active != nil {
			updates["active"] = *req.Active
		}
		if err := db.WithContext(c.Request.Context()).Model(&device).Updates(updates).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update device"})
			return
		}
		c.JSON(http.StatusOK, device)
	}
}

// DeleteDevice handles DELETE /api/admin/devices/:id.
func DeleteDevice(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		res := db.WithContext(c.Request.Context()).Delete(&model.Device{}, id)
		if res.Error != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete device"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
