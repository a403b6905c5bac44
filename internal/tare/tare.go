// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package tare implements zero calibration: capturing the current raw
// orientation as the reference that later readings are measured against.
package tare

import "github.com/relabs-tech/angle_monitor/internal/orientation"

// State of the calibration machine.
type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Source identifies who asked for the tare.
type Source int

const (
	None Source = iota
	Button
	Remote
)

func (s Source) String() string {
	switch s {
	case Button:
		return "button"
	case Remote:
		return "remote"
	default:
		return "none"
	}
}

// Machine holds at most one outstanding tare request and owns the offset.
// The offset lives in memory only and is lost on restart.
type Machine struct {
	state  State
	source Source
	offset orientation.Offset
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Pending reports whether a request waits for the next complete window.
func (m *Machine) Pending() bool { return m.state == Pending }

// Source returns the source of the pending request, or None.
func (m *Machine) Source() Source { return m.source }

// Offset returns the active tare offset.
func (m *Machine) Offset() orientation.Offset { return m.offset }

// Request moves Idle to Pending and returns true. A request made while
// one is already pending is dropped and returns false.
func (m *Machine) Request(src Source) bool {
	if m.state == Pending {
		return false
	}
	m.state = Pending
	m.source = src
	return true
}

// Resolve applies a pending request using the raw pose of a freshly
// completed, valid window. It must not be called with any other pose.
// It returns false and changes nothing when no request is pending.
func (m *Machine) Resolve(raw orientation.Pose) bool {
	if m.state != Pending {
		return false
	}
	m.offset = orientation.Offset{Roll: raw.Roll, Pitch: raw.Pitch}
	m.state = Idle
	m.source = None
	return true
}
