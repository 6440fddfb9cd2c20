package services

import (
	"sync"
)

// NotificationEvent is the payload pushed to a user's live sessions.
type NotificationEvent struct {
	NotificationID uint   `json:"notification_id"`
	UserID         uint   `json:"user_id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	Metadata       string `json:"metadata,omitempty"`
}

// Hub tracks live sessions per user and delivers events best-effort.
// A user with no active session silently receives nothing.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uint]map[string]chan NotificationEvent
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uint]map[string]chan NotificationEvent),
	}
}

// Subscribe registers a session for a user and returns its event channel.
func (h *Hub) Subscribe(userID uint, sessionID string) <-chan NotificationEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Buffered so slow consumers never block delivery
	ch := make(chan NotificationEvent, 64)
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[string]chan NotificationEvent)
	}
	h.sessions[userID][sessionID] = ch
	return ch
}

// Unsubscribe removes a session and closes its channel.
func (h *Hub) Unsubscribe(userID uint, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if chans, ok := h.sessions[userID]; ok {
		if ch, ok := chans[sessionID]; ok {
			close(ch)
			delete(chans, sessionID)
		}
		if len(chans) == 0 {
			delete(h.sessions, userID)
		}
	}
}

// Deliver pushes an event to every active session of the target user.
// Events to full session buffers are dropped; there is no delivery
// guarantee and no error surfaces to the caller.
func (h *Hub) Deliver(event NotificationEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.sessions[event.UserID] {
		select {
		case ch <- event:
		default:
			// Session is slow, skip this event
		}
	}
}

// SessionCount returns the number of live sessions for a user.
func (h *Hub) SessionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// Global hub instance
var globalHub *Hub
var hubOnce sync.Once

// GetHub returns the global hub singleton.
func GetHub() *Hub {
	hubOnce.Do(func() {
		globalHub = NewHub()
	})
	return globalHub
}
