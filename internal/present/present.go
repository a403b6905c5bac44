// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package present formats computed readings and hands them to the outward
// sinks: the notification service and the local renderers.
package present

import (
	"fmt"
	"math"
	"strings"
)

// Characteristic names one published value of the angle monitor service.
type Characteristic int

const (
	Roll Characteristic = iota
	Pitch
	Battery
	TareControl
)

func (c Characteristic) String() string {
	switch c {
	case Roll:
		return "roll"
	case Pitch:
		return "pitch"
	case Battery:
		return "battery"
	case TareControl:
		return "tare"
	default:
		return fmt.Sprintf("characteristic(%d)", int(c))
	}
}

// Description is the human readable label of the characteristic.
func (c Characteristic) Description() string {
	switch c {
	case Roll:
		return "Roll Degrees"
	case Pitch:
		return "Pitch Degrees"
	case Battery:
		return "Batt Volts"
	case TareControl:
		return "Tare"
	default:
		return ""
	}
}

// Field widths and precisions of the published texts.
const (
	AngleWidth   = 5
	AnglePrec    = 1
	BatteryWidth = 4
	BatteryPrec  = 2
	NotAvailable = "N/A"
)

// Format renders v right-aligned in at least width characters with prec
// decimals. Non-finite values render as N/A. Values that round to zero,
// negative zero included, render unsigned.
func Format(v float64, width, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return pad(NotAvailable, width)
	}
	if math.Abs(v) < 0.5*math.Pow10(-prec) {
		v = 0
	}
	return fmt.Sprintf("%*.*f", width, prec, v)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// Reading is one published set of values.
type Reading struct {
	Roll    float64 `json:"roll"`  // tared, degrees
	Pitch   float64 `json:"pitch"` // tared, degrees
	Battery float64 `json:"battery"`
	// NoBattery is set when no battery reader is fitted.
	NoBattery bool `json:"no_battery,omitempty"`
	// Valid is false until the first non-degenerate window.
	Valid bool `json:"valid"`
	// Stale marks a reading that repeats the last valid pose because the
	// current window was degenerate.
	Stale bool `json:"stale"`
}

// RollText is the fixed-width roll text.
func (r Reading) RollText() string {
	if !r.Valid {
		return pad(NotAvailable, AngleWidth)
	}
	return Format(r.Roll, AngleWidth, AnglePrec)
}

// PitchText is the fixed-width pitch text.
func (r Reading) PitchText() string {
	if !r.Valid {
		return pad(NotAvailable, AngleWidth)
	}
	return Format(r.Pitch, AngleWidth, AnglePrec)
}

// BatteryText is the fixed-width battery text.
func (r Reading) BatteryText() string {
	if r.NoBattery {
		return pad(NotAvailable, BatteryWidth)
	}
	return Format(r.Battery, BatteryWidth, BatteryPrec)
}

// LinkState mirrors the wireless link as seen by the last tick.
type LinkState struct {
	Connected bool
	Peer      string
}

// Field selects what the secondary display line shows.
type Field int

const (
	FieldBattery Field = iota
	FieldLink
)

// Next returns the other field.
func (f Field) Next() Field {
	if f == FieldBattery {
		return FieldLink
	}
	return FieldBattery
}

// Frame is everything a local renderer needs to draw one screen.
type Frame struct {
	// Seq increases with every published reading; a refresh keeps it.
	Seq       uint64
	Roll      string
	Pitch     string
	Battery   string
	Reading   Reading
	HaveData  bool
	Link      LinkState
	Secondary Field
}

// NewFrame formats r for rendering.
func NewFrame(r Reading, link LinkState, secondary Field) Frame {
	return Frame{
		Roll:      r.RollText(),
		Pitch:     r.PitchText(),
		Battery:   r.BatteryText(),
		Reading:   r,
		HaveData:  true,
		Link:      link,
		Secondary: secondary,
	}
}

// SecondaryText is the line shown under the angles.
func (f Frame) SecondaryText() string {
	if f.Secondary == FieldLink {
		if !f.Link.Connected {
			return "Link: waiting"
		}
		return "Link: " + f.Link.Peer
	}
	if !f.HaveData || f.Reading.NoBattery {
		return "Battery: " + NotAvailable
	}
	return "Battery: " + strings.TrimSpace(f.Battery) + " V"
}

// Notifier forwards one characteristic value to the wireless service.
type Notifier interface {
	Notify(c Characteristic, text string) error
}

// Renderer draws a frame on a local output.
type Renderer interface {
	Render(f Frame) error
}
