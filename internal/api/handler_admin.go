package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"keycab-backend/internal/model"
)

// Thin staff-facing record editors for rooms, faculty, and credentials.
// These are glue around the core: plain CRUD, no access logic.

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// ListRooms handles GET /api/admin/rooms.
func ListRooms(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rooms []model.Room
		if err := db.WithContext(c.Request.Context()).Order("code ASC").Find(&rooms).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rooms"})
			return
		}
		c.JSON(http.StatusOK, rooms)
	}
}

type roomRequest struct {
	Code        string `json:"code" binding:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// CreateRoom handles POST /api/admin/rooms.
func CreateRoom(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req roomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		room := model.Room{Code: req.Code, Description: req.Description, Active: true}
		if req.Active != nil {
			room.Active = *req.Active
		}
		if err := db.WithContext(c.Request.Context()).Create(&room).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Room code already exists"})
			return
		}
		c.JSON(http.StatusCreated, room)
	}
}

// UpdateRoom handles PUT /api/admin/rooms/:id. Deactivating a room
// blocks decisions for it without touching history.
func UpdateRoom(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req roomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var room model.Room
		if err := db.WithContext(c.Request.Context()).First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve room"})
			return
		}
		updates := map[string]any{"code": req.Code, "description": req.Description}
		if req.Active != nil {
			updates["active"] = *req.Active
		}
		if err := db.WithContext(c.Request.Context()).Model(&room).Updates(updates).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update room"})
			return
		}
		c.JSON(http.StatusOK, room)
	}
}

// ListFaculty handles GET /api/admin/faculty.
func ListFaculty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var faculty []model.Faculty
		if err := db.WithContext(c.Request.Context()).Order("full_name ASC").Find(&faculty).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve faculty"})
			return
		}
		c.JSON(http.StatusOK, faculty)
	}
}

type facultyRequest struct {
	SchoolID   string `json:"school_id" binding:"required"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
	Active     *bool  `json:"active"`
}

// CreateFaculty handles POST /api/admin/faculty.
func CreateFaculty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req facultyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f := model.Faculty{SchoolID: req.SchoolID, FullName: req.FullName, Department: req.Department, Active: true}
		if req.Active != nil {
			f.Active = *req.Active
		}
		if err := db.WithContext(c.Request.Context()).Create(&f).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "School ID already exists"})
			return
		}
		c.JSON(http.StatusCreated, f)
	}
}

// UpdateFaculty handles PUT /api/admin/faculty/:id.
func UpdateFaculty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req facultyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var f model.Faculty
		if err := db.WithContext(c.Request.Context()).First(&f, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Faculty not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve faculty"})
			return
		}
		updates := map[string]any{"school_id": req.SchoolID, "full_name": req.FullName, "department": req.Department}
		if req.Active != nil {
			updates["active"] = *req.Active
		}
		if err := db.WithContext(c.Request.Context()).Model(&f).Updates(updates).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update faculty"})
			return
		}
		c.JSON(http.StatusOK, f)
	}
}

type credentialRequest struct {
	BadgeCode string `json:"badge_code" binding:"required"`
	FacultyID uint   `json:"faculty_id" binding:"required"`
	RoomID    uint   `json:"room_id" binding:"required"`
	Active    *bool  `json:"active"`
}

// ListCredentials handles GET /api/admin/credentials.
func ListCredentials(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds []model.Credential
		if err := db.WithContext(c.Request.Context()).Order("badge_code ASC").Find(&creds).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve credentials"})
			return
		}
		c.JSON(http.StatusOK, creds)
	}
}

// CreateCredential handles POST /api/admin/credentials. One credential
// binds one badge to one (faculty, room) pair; the badge code is
// globally unique.
func CreateCredential(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cred := model.Credential{BadgeCode: req.BadgeCode, FacultyID: req.FacultyID, RoomID: req.RoomID, Active: true}
		if req.Active != nil {
			cred.Active = *req.Active
		}
		if err := db.WithContext(c.Request.Context()).Create(&cred).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Badge code already registered"})
			return
		}
		c.JSON(http.StatusCreated, cred)
	}
}

// ToggleCredential handles POST /api/admin/credentials/:id/toggle.
func ToggleCredential(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var cred model.Credential
		if err := db.WithContext(c.Request.Context()).First(&cred, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Credential not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve credential"})
			return
		}
		if err := db.WithContext(c.Request.Context()).Model(&cred).Update("active", !cred.Active).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle credential"})
			return
		}
		cred.Active = !cred.Active
		c.JSON(http.StatusOK, cred)
	}
}
