// Package notify provides the transient notification bus the stores publish
// success and failure messages to, standing in for the original toast layer.
package notify

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a notification.
type Level string

const (
	// LevelSuccess marks a completed operation.
	LevelSuccess Level = "success"
	// LevelError marks a surfaced failure.
	LevelError Level = "error"
	// LevelInfo marks a neutral message.
	LevelInfo Level = "info"
)

// Notification is one transient message intended for the view layer.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Handler receives published notifications.
type Handler func(n Notification)

// recentLimit bounds the retained notification history.
const recentLimit = 50

// Notifier is a publish-subscribe bus for notifications. Handlers run
// asynchronously so a slow subscriber never blocks a store operation.
type Notifier struct {
	mu       sync.RWMutex
	handlers []Handler
	recent   []Notification
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Subscribe registers a handler for all notifications.
func (n *Notifier) Subscribe(handler Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, handler)
}

// Success publishes a success notification.
func (n *Notifier) Success(message string) {
	n.publish(LevelSuccess, message)
}

// Error publishes an error notification.
func (n *Notifier) Error(message string) {
	n.publish(LevelError, message)
}

// Info publishes an informational notification.
func (n *Notifier) Info(message string) {
	n.publish(LevelInfo, message)
}

func (n *Notifier) publish(level Level, message string) {
	notification := Notification{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}

	n.mu.Lock()
	n.recent = append(n.recent, notification)
	if len(n.recent) > recentLimit {
		n.recent = n.recent[len(n.recent)-recentLimit:]
	}
	handlers := make([]Handler, len(n.handlers))
	copy(handlers, n.handlers)
	n.mu.Unlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[notify] Handler panic: %v", r)
				}
			}()
			h(notification)
		}(handler)
	}
}

// Recent returns the retained notifications, oldest first.
func (n *Notifier) Recent() []Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()
	recent := make([]Notification, len(n.recent))
	copy(recent, n.recent)
	return recent
}

// Clear drops the retained history.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recent = nil
}
