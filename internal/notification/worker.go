package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"keycab-backend/internal/model"
)

// Alert is an operational event staff should see promptly: a denied
// swipe, or a heartbeat from a controller nobody registered.
type Alert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans alerts out to every stored staff subscription.
type WorkerPool struct {
	size    int
	jobs    chan Alert
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new alert worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Alert, 64),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("alert worker %d started", id)
	for {
		select {
		case alert := <-wp.jobs:
			wp.broadcast(ctx, alert)
		case <-ctx.Done():
			log.Printf("alert worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an alert. Alerts sit on the swipe and heartbeat hot
// paths, so a full queue drops the alert rather than blocking the door.
func (wp *WorkerPool) Dispatch(alert Alert) {
	select {
	case wp.jobs <- alert:
	default:
		log.Printf("alert queue full, dropping alert: %s", alert.Title)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Alert {
	return wp.jobs
}

// broadcast pushes one alert to every stored subscription.
func (wp *WorkerPool) broadcast(ctx context.Context, alert Alert) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("error fetching alert subscriptions: %v", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		log.Printf("error encoding alert payload: %v", err)
		return
	}

	log.Printf("sending alert %q to %d subscriptions", alert.Title, len(subscriptions))
	for _, sub := range subscriptions {
		wp.send(ctx, sub, payload)
	}
}

// send pushes a single notification, pruning subscriptions the push
// service reports as gone.
func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending alert to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is gone, removing", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: sub.Endpoint}).Error; err != nil {
			log.Printf("error removing stale subscription: %v", err)
		}
	}
}
