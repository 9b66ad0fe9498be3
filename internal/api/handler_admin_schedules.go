package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"keycab-backend/internal/model"
	"keycab-backend/internal/parse"
)

// scheduleRequest creates schedule windows. Days accepts any of the
// conventions staff type ("Mon", "monday", "MONDAY"); normalization to
// the canonical day names happens here, at the boundary, so the core
// never string-matches heuristically.
type scheduleRequest struct {
	RoomID     uint   `json:"room_id" binding:"required"`
	Semester   string `json:"semester" binding:"required"`
	Days       string `json:"days" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	Subject    string `json:"subject"`
	Instructor string `json:"instructor"`
	FacultyID  *uint  `json:"faculty_id"`
	Active     *bool  `json:"active"`
}

// ListSchedules handles GET /api/admin/schedules.
func (h *Handler) ListSchedules(c *gin.Context) {
	var windows []model.ScheduleWindow
	q := h.store.DB().WithContext(c.Request.Context()).Order("id ASC")
	if sem := c.Query("semester"); sem != "" {
		q = q.Where("semester = ?", sem)
	}
	if room := c.Query("room_id"); room != "" {
		q = q.Where("room_id = ?", room)
	}
	if err := q.Find(&windows).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedules"})
		return
	}
	c.JSON(http.StatusOK, windows)
}

// CreateSchedule handles POST /api/admin/schedules: validates the day
// set and time range, then creates one window per day. The same
// repeating time range on days {D1..Dn} lands as N single-day rows.
func (h *Handler) CreateSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	windows, err := h.buildWindows(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.DB().WithContext(c.Request.Context()).Create(&windows).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedules"})
		return
	}
	c.JSON(http.StatusCreated, windows)
}

// ReplaceSchedule handles PUT /api/admin/schedules/:id. Day-set edits
// replace the window (delete plus recreate per day) rather than
// mutating in place, so controllers' staleness checks see the change.
func (h *Handler) ReplaceSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	windows, err := h.buildWindows(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	err = h.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.ScheduleWindow{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(&windows).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace schedule"})
		return
	}
	c.JSON(http.StatusOK, windows)
}

// ToggleSchedule handles POST /api/admin/schedules/:id/toggle.
func (h *Handler) ToggleSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var w model.ScheduleWindow
	if err := h.store.DB().WithContext(ctx).First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedule"})
		return
	}
	if err := h.store.DB().WithContext(ctx).Model(&w).Update("active", !w.Active).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle schedule"})
		return
	}
	w.Active = !w.Active
	c.JSON(http.StatusOK, w)
}

// DeleteSchedule handles DELETE /api/admin/schedules/:id. Ledger rows
// referencing the window keep their snapshot; the FK goes null.
func (h *Handler) DeleteSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res := h.store.DB().WithContext(c.Request.Context()).Delete(&model.ScheduleWindow{}, id)
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// buildWindows validates and normalizes a schedule request into
// one single-day window per requested day.
func (h *Handler) buildWindows(req scheduleRequest) ([]model.ScheduleWindow, error) {
	days, err := parse.DayList(req.Days)
	if err != nil {
		return nil, err
	}
	start, err := parse.Clock(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parse.Clock(req.EndTime)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, errors.New("start_time must be before end_time")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	windows := make([]model.ScheduleWindow, 0, len(days))
	for _, day := range days {
		windows = append(windows, model.ScheduleWindow{
			RoomID:     req.RoomID,
			Semester:   req.Semester,
			Days:       day,
			StartTime:  start,
			EndTime:    end,
			Subject:    req.Subject,
			Instructor: req.Instructor,
			FacultyID:  req.FacultyID,
			Active:     active,
		})
	}
	return windows, nil
}
