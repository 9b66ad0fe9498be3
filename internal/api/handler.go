package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"keycab-backend/internal/access"
	"keycab-backend/internal/notification"
	"keycab-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	engine  *access.Engine
	alerts  *notification.WorkerPool
	loc     *time.Location
	webpush *webpush.Options
}

// NewHandler creates a new API handler. loc is the campus timezone;
// swipe and schedule decisions are made in it.
func NewHandler(s store.Store, alerts *notification.WorkerPool, loc *time.Location, webpushOptions *webpush.Options) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		store:   s,
		engine:  access.NewEngine(s),
		alerts:  alerts,
		loc:     loc,
		webpush: webpushOptions,
	}
}

// now returns the current instant in the campus timezone.
func (h *Handler) now() time.Time {
	return time.Now().In(h.loc)
}

// alert queues a staff alert when the worker pool is configured.
func (h *Handler) alert(title, body string) {
	if h.alerts != nil {
		h.alerts.Dispatch(notification.Alert{Title: title, Body: body})
	}
}
