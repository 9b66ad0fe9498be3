package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"keycab-backend/config"
	"keycab-backend/internal/mw"
	"keycab-backend/internal/notification"
	"keycab-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, alerts *notification.WorkerPool, loc *time.Location, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s, alerts, loc, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	// Schedule downloads are the heaviest controller read; cache them
	// briefly so a fleet re-sync after a term change stays cheap.
	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Controller-facing endpoints.
		api.GET("/swipe", handler.Swipe)
		api.POST("/swipe", handler.Swipe)
		api.GET("/manual-trigger", handler.PollCommands)

		esp32 := api.Group("/esp32")
		{
			esp32.GET("/schedules", caching, handler.DownloadSchedules)
			esp32.POST("/schedules", handler.DownloadSchedules)
			esp32.GET("/check-updates", handler.CheckUpdates)
			esp32.POST("/log-offline", handler.LogOfflineAccess)
			esp32.GET("/heartbeat", handler.Heartbeat)
			esp32.POST("/heartbeat", handler.Heartbeat)
			esp32.GET("/status", handler.DeviceStatus)
		}

		// Staff-facing endpoints.
		api.POST("/manual-control", handler.IssueCommand)

		admin := api.Group("/admin")
		// Any admin edit can change what controllers should download, so
		// successful writes drop the cached schedule payloads.
		admin.Use(mw.FlushOnWrite(cacheStore))
		{
			admin.GET("/rooms", ListRooms(db))
			admin.POST("/rooms", CreateRoom(db))
			admin.PUT("/rooms/:id", UpdateRoom(db))

			admin.GET("/faculty", ListFaculty(db))
			admin.POST("/faculty", CreateFaculty(db))
			admin.PUT("/faculty/:id", UpdateFaculty(db))

			admin.GET("/credentials", ListCredentials(db))
			admin.POST("/credentials", CreateCredential(db))
			admin.POST("/credentials/:id/toggle", ToggleCredential(db))

			admin.GET("/schedules", handler.ListSchedules)
			admin.POST("/schedules", handler.CreateSchedule)
			admin.PUT("/schedules/:id", handler.ReplaceSchedule)
			admin.POST("/schedules/:id/toggle", handler.ToggleSchedule)
			admin.DELETE("/schedules/:id", handler.DeleteSchedule)

			admin.GET("/term", handler.GetTerm)
			admin.PUT("/term", handler.SetTerm)

			admin.GET("/devices", ListDevices(db))
			admin.POST("/devices", RegisterDevice(db))
			admin.PUT("/devices/:id", UpdateDevice(db))
			admin.DELETE("/devices/:id", DeleteDevice(db))

			admin.GET("/transactions", ListTransactions(db))
		}

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
