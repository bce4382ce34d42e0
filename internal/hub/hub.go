// Package hub is the in-process real-time transport: it delivers named
// notifications to named subscriber groups.
//
// Delivery is fire-and-forget and at-least-once from the subscriber's
// point of view: a send to a subscriber whose buffer is full is
// dropped, never blocks the dispatcher, and clients must treat every
// notification as an "invalidate cached view, re-query" signal rather
// than an authoritative payload.
package hub

import (
	"log/slog"
	"sync"
)

// AdminGroup receives every administrative notification.
const AdminGroup = "Admins"

// CodeGroup names the subscriber group for one question group's
// audience, keyed by the group's unique code.
func CodeGroup(uniqueCode string) string {
	return "code:" + uniqueCode
}

// Notification is one named signal pushed to subscribers.
type Notification struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// Subscriber is one connected client's delivery channel.
type Subscriber struct {
	hub    *Hub
	ch     chan Notification
	groups []string

	closeOnce sync.Once
}

// C returns the delivery channel. It is closed by Close.
func (s *Subscriber) C() <-chan Notification { return s.ch }

// Close unsubscribes from all groups and closes the channel.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		s.hub.remove(s)
		close(s.ch)
	})
}

// Hub fans notifications out to subscriber groups.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Subscriber]struct{}
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{groups: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe joins the given groups with a delivery buffer of the given
// size. A zero or negative buffer gets a small default.
func (h *Hub) Subscribe(buffer int, groups ...string) *Subscriber {
	if buffer <= 0 {
		buffer = 16
	}
	s := &Subscriber{
		hub:    h,
		ch:     make(chan Notification, buffer),
		groups: groups,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, g := range groups {
		if h.groups[g] == nil {
			h.groups[g] = make(map[*Subscriber]struct{})
		}
		h.groups[g][s] = struct{}{}
	}
	return s
}

// Notify sends to every subscriber of the group. Slow subscribers are
// skipped: the send never blocks, and the dropped notification is only
// logged - the client re-syncs on its next query anyway.
func (h *Hub) Notify(groupName string, n Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.groups[groupName] {
		select {
		case s.ch <- n:
		default:
			slog.Warn("notification dropped: subscriber buffer full",
				"group", groupName,
				"notification", n.Name,
			)
		}
	}
}

// GroupSize returns the current subscriber count of a group.
func (h *Hub) GroupSize(groupName string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupName])
}

func (h *Hub) remove(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, g := range s.groups {
		delete(h.groups[g], s)
		if len(h.groups[g]) == 0 {
			delete(h.groups, g)
		}
	}
}
