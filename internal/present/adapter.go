// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package present

import (
	"log/slog"
)

// Adapter fans a reading out to the notifier and to every renderer.
// Failures are logged and never stop the caller.
type Adapter struct {
	Notifier  Notifier
	Renderers []Renderer
	Log       *slog.Logger

	seq      uint64
	last     Frame
	haveLast bool
}

// Publish formats r and forwards it. The notifier is only used while the
// link is connected.
func (a *Adapter) Publish(r Reading, link LinkState, secondary Field) {
	f := NewFrame(r, link, secondary)
	a.seq++
	f.Seq = a.seq
	a.last = f
	a.haveLast = true

	if link.Connected && a.Notifier != nil {
		for _, n := range []struct {
			c    Characteristic
			text string
		}{
			{Roll, f.Roll},
			{Pitch, f.Pitch},
			{Battery, f.Battery},
		} {
			if err := a.Notifier.Notify(n.c, n.text); err != nil {
				a.logger().Warn("present: notify failed", "characteristic", n.c, "err", err)
			}
		}
	}
	a.render(f)
}

// Refresh redraws the last frame with a new link state or secondary
// field. Before the first reading it draws a placeholder frame.
func (a *Adapter) Refresh(link LinkState, secondary Field) {
	f := a.last
	if !a.haveLast {
		f = Frame{
			Roll:    pad(NotAvailable, AngleWidth),
			Pitch:   pad(NotAvailable, AngleWidth),
			Battery: pad(NotAvailable, BatteryWidth),
		}
	}
	f.Link = link
	f.Secondary = secondary
	a.last = f
	a.render(f)
}

// Last returns the most recent frame.
func (a *Adapter) Last() (Frame, bool) {
	return a.last, a.haveLast
}

func (a *Adapter) render(f Frame) {
	for _, r := range a.Renderers {
		if err := r.Render(f); err != nil {
			a.logger().Warn("present: render failed", "err", err)
		}
	}
}

func (a *Adapter) logger() *slog.Logger {
	if a.Log == nil {
		return slog.Default()
	}
	return a.Log
}
