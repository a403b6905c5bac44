// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"
	"time"
)

// Snapshot is the dashboard's view of one device. Nil values have not
// been received or were not available.
type Snapshot struct {
	Roll    *float64  `json:"roll"`
	Pitch   *float64  `json:"pitch"`
	Battery *float64  `json:"battery"`
	Tare    string    `json:"tare,omitempty"`
	Status  string    `json:"status,omitempty"`
	Updated time.Time `json:"updated"`
}

// HaveData reports whether an angle has been received.
func (s Snapshot) HaveData() bool {
	return s.Roll != nil || s.Pitch != nil
}

// Hub fans snapshots out to websocket listeners. It keeps the most recent
// value so new subscribers get it immediately.
type Hub struct {
	mu       sync.RWMutex
	subs     map[int]chan Snapshot
	nextID   int
	last     Snapshot
	haveLast bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Snapshot)}
}

// Subscribe registers a listener with the given channel buffer.
func (h *Hub) Subscribe(buffer int) (int, <-chan Snapshot) {
	if buffer <= 0 {
		buffer = 4
	}
	ch := make(chan Snapshot, buffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.haveLast {
		ch <- h.last
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	return id, ch
}

func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish stores s and offers it to every listener. Slow listeners miss
// updates rather than blocking the publisher.
func (h *Hub) Publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = s
	h.haveLast = true
	for _, ch := range h.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// Last returns the most recent snapshot.
func (h *Hub) Last() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.haveLast
}
