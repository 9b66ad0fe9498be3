package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keycab-backend/internal/model"
)

func adminRouter(f *apiFixture) {
	admin := f.router.Group("/api/admin")
	admin.GET("/schedules", f.handler.ListSchedules)
	admin.POST("/schedules", f.handler.CreateSchedule)
	admin.PUT("/schedules/:id", f.handler.ReplaceSchedule)
	admin.POST("/schedules/:id/toggle", f.handler.ToggleSchedule)
	admin.DELETE("/schedules/:id", f.handler.DeleteSchedule)
	admin.GET("/term", f.handler.GetTerm)
	admin.PUT("/term", f.handler.SetTerm)
}

func TestAdminSchedules(t *testing.T) {
	f := newAPIFixture(t)
	adminRouter(f)

	t.Run("multi-day create expands per day", func(t *testing.T) {
		w, _ := f.do(t, "POST", "/api/admin/schedules",
			`{"room_id":`+fmt.Sprint(f.room.ID)+`,"semester":"2nd","days":"Mon, Wed","start_time":"8:00","end_time":"10:00","subject":"Databases"}`,
			"application/json")
		assert.Equal(t, http.StatusCreated, w.Code)

		var created []model.ScheduleWindow
		require.NoError(t, f.db.Where("semester = ?", "2nd").Order("id ASC").Find(&created).Error)
		require.Len(t, created, 2)
		assert.Equal(t, "monday", created[0].Days)
		assert.Equal(t, "wednesday", created[1].Days)
		assert.Equal(t, "08:00", created[0].StartTime, "clock values are zero-padded on the way in")
		assert.Equal(t, "10:00", created[0].EndTime)
	})

	t.Run("rejects inverted time range", func(t *testing.T) {
		w, _ := f.do(t, "POST", "/api/admin/schedules",
			`{"room_id":1,"semester":"1st","days":"monday","start_time":"10:00","end_time":"08:00"}`,
			"application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects unknown day name", func(t *testing.T) {
		w, _ := f.do(t, "POST", "/api/admin/schedules",
			`{"room_id":1,"semester":"1st","days":"someday","start_time":"08:00","end_time":"10:00"}`,
			"application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("toggle flips active", func(t *testing.T) {
		var win model.ScheduleWindow
		require.NoError(t, f.db.Where("semester = ?", "2nd").First(&win).Error)
		require.True(t, win.Active)

		w, _ := f.do(t, "POST", fmt.Sprintf("/api/admin/schedules/%d/toggle", win.ID), "", "")
		assert.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, f.db.First(&win, win.ID).Error)
		assert.False(t, win.Active)
	})

	t.Run("delete removes the window", func(t *testing.T) {
		var win model.ScheduleWindow
		require.NoError(t, f.db.Where("semester = ?", "2nd").First(&win).Error)

		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/admin/schedules/%d", win.ID), nil)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		var count int64
		require.NoError(t, f.db.Model(&model.ScheduleWindow{}).Where("id = ?", win.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("replace swaps the day set", func(t *testing.T) {
		var win model.ScheduleWindow
		require.NoError(t, f.db.Where("semester = ?", "1st").First(&win).Error)

		w, _ := f.do(t, "PUT", fmt.Sprintf("/api/admin/schedules/%d", win.ID),
			`{"room_id":`+fmt.Sprint(f.room.ID)+`,"semester":"1st","days":"friday,saturday","start_time":"13:00","end_time":"15:00"}`,
			"application/json")
		assert.Equal(t, http.StatusOK, w.Code)

		var gone int64
		require.NoError(t, f.db.Model(&model.ScheduleWindow{}).Where("id = ?", win.ID).Count(&gone).Error)
		assert.Equal(t, int64(0), gone, "replace deletes the original row")

		var fresh []model.ScheduleWindow
		require.NoError(t, f.db.Where("semester = ? AND start_time = ?", "1st", "13:00").Find(&fresh).Error)
		assert.Len(t, fresh, 2)
	})
}

func TestAdminTerm(t *testing.T) {
	f := newAPIFixture(t)
	adminRouter(f)

	w, body := f.do(t, "GET", "/api/admin/term", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-2026", body["academic_year"])
	assert.Equal(t, "1st", body["semester"])

	w, _ = f.do(t, "PUT", "/api/admin/term",
		`{"academic_year":"2026-2027","semester":"summer"}`, "application/json")
	assert.Equal(t, http.StatusOK, w.Code)

	_, body = f.do(t, "GET", "/api/admin/term", "", "")
	assert.Equal(t, "2026-2027", body["academic_year"])
	assert.Equal(t, "summer", body["semester"])

	t.Run("rejects unknown semester", func(t *testing.T) {
		w, _ := f.do(t, "PUT", "/api/admin/term",
			`{"academic_year":"2026-2027","semester":"3rd"}`, "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
