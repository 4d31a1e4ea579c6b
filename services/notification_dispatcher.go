package services

import (
	"context"
	"log"
	"sync"
	"time"

	"sunsetCompanionAPI/internal/notification"
	"sunsetCompanionAPI/internal/storage"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, n *notification.Notification) error
}

// NotificationDispatcher delivers queued pushes on a fixed worker pool.
type NotificationDispatcher struct {
	devices      storage.DeviceStore
	mu           sync.RWMutex
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *notification.Notification
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

func NewNotificationDispatcher(devices storage.DeviceStore, workers, queueSize int) *NotificationDispatcher {
	if workers <= 0 {
		workers = 1
	}
	d := &NotificationDispatcher{
		devices:  devices,
		workers:  workers,
		jobQueue: make(chan *notification.Notification, queueSize),
		stopChan: make(chan struct{}),
	}

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

// Allow injecting the real FCM provider from main.go
func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pushProvider = provider
}

func (d *NotificationDispatcher) provider() PushNotificationProvider {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pushProvider
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case n := <-d.jobQueue:
			d.process(n)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) process(n *notification.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider := d.provider()
	if provider == nil {
		log.Printf("Skipping push %s for user %s: no provider", n.Type, n.UserID)
		pushDispatches.WithLabelValues("skipped").Inc()
		return
	}

	tokens, err := d.devices.ListDeviceTokens(ctx, n.UserID)
	if err != nil {
		log.Printf("Failed to load devices for user %s: %v", n.UserID, err)
		pushDispatches.WithLabelValues("failed").Inc()
		return
	}
	if len(tokens) == 0 {
		pushDispatches.WithLabelValues("skipped").Inc()
		return
	}

	if err := provider.SendPush(ctx, tokens, n); err != nil {
		log.Printf("Push failed for user %s: %v", n.UserID, err)
		pushDispatches.WithLabelValues("failed").Inc()
		return
	}
	pushDispatches.WithLabelValues("sent").Inc()
}

// Dispatch queues n without blocking. It reports false when the queue is
// full or the dispatcher is stopped.
func (d *NotificationDispatcher) Dispatch(n *notification.Notification) bool {
	select {
	case <-d.stopChan:
		return false
	default:
	}

	select {
	case d.jobQueue <- n:
		return true
	default:
		log.Printf("Failed to queue %s for user %s: queue full", n.Type, n.UserID)
		pushDispatches.WithLabelValues("dropped").Inc()
		return false
	}
}

// Stop the dispatcher gracefully
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		log.Println("Stopping notification dispatcher...")
		close(d.stopChan)
		d.wg.Wait()
		log.Println("Notification dispatcher stopped")
	})
}
