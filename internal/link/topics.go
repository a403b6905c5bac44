// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package link exposes the angle monitor service over MQTT: one retained
// topic per characteristic, a writable tare control and a status topic
// backed by the client's will.
package link

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/angle_monitor/internal/present"
)

// ErrNotConnected is returned by Notify while the broker session is down.
var ErrNotConnected = errors.New("link: not connected")

// Status payloads.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Topics lays out the service below Prefix.
type Topics struct {
	Prefix string
}

// Value is the topic carrying the characteristic's text.
func (t Topics) Value(c present.Characteristic) string {
	return t.Prefix + "/" + c.String()
}

// Description is the topic carrying the characteristic's user description.
func (t Topics) Description(c present.Characteristic) string {
	return t.Value(c) + "/description"
}

// TareSet is where clients write tare requests.
func (t Topics) TareSet() string {
	return t.Value(present.TareControl) + "/set"
}

// Status carries online/offline.
func (t Topics) Status() string {
	return t.Prefix + "/status"
}

// Truthy reports whether a control payload requests a tare: a single
// non-printable non-zero byte, or text such as 1, true, on or yes.
func Truthy(payload []byte) bool {
	if len(payload) == 1 && (payload[0] < 0x20 || payload[0] > 0x7e) {
		return payload[0] != 0
	}
	s := strings.ToLower(strings.TrimSpace(string(payload)))
	switch s {
	case "on", "yes":
		return true
	case "off", "no", "":
		return false
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return n != 0
	}
	return false
}

// ControlPoint is the tare control characteristic. Writes arrive on the
// MQTT client's goroutines; the loop polls TareWritten once per tick.
type ControlPoint struct {
	mu      sync.Mutex
	value   byte
	pending bool
}

// Write stores a written payload and returns the readback byte.
func (c *ControlPoint) Write(payload []byte) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if Truthy(payload) {
		c.value = 1
		c.pending = true
	} else {
		c.value = 0
	}
	return c.value
}

// Value is the last written value, 0 or 1.
func (c *ControlPoint) Value() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// TareWritten reports a truthy write since the previous call.
func (c *ControlPoint) TareWritten() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pending
	c.pending = false
	return p
}
