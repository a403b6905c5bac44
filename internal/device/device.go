// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/relabs-tech/angle_monitor/internal/hw"
	"github.com/relabs-tech/angle_monitor/internal/imu"
	"github.com/relabs-tech/angle_monitor/internal/present"
	"github.com/relabs-tech/angle_monitor/internal/tare"
)

// failureLogEvery is how many consecutive failures pass between two log lines.
const failureLogEvery = 1000

// Link is the wireless side as the loop sees it.
type Link interface {
	// Connected reports whether a peer session is open and who the peer is.
	Connected() (bool, string)
	// TareWritten reports, once, that a truthy tare control value arrived.
	TareWritten() bool
}

// Collaborators are the outward parts of the device. Nil fields are
// treated as absent hardware; without a Battery the battery reads N/A.
type Collaborators struct {
	Axes       imu.AxisReader
	Battery    imu.BatteryReader
	Button     hw.Button
	Indicators hw.Indicators
	Link       Link
	Adapter    *present.Adapter
}

// Device couples a State with its collaborators.
type Device struct {
	state *State
	c     Collaborators
	log   *slog.Logger

	readFailures   int
	buttonFailures int
	ledFailures    int

	leds     Indicators
	ledsSeen bool
}

// New creates a device in its power-on state.
func New(p Params, c Collaborators, log *slog.Logger) *Device {
	if log == nil {
		log = slog.Default()
	}
	if c.Button == nil {
		c.Button = hw.NoButton{}
	}
	if c.Indicators == nil {
		c.Indicators = hw.NoIndicators{}
	}
	if c.Adapter == nil {
		c.Adapter = &present.Adapter{Log: log}
	}
	if c.Battery == nil {
		p.NoBattery = true
	}
	return &Device{state: NewState(p), c: c, log: log}
}

// State exposes the loop state for inspection.
func (d *Device) State() *State { return d.state }

// Tick runs one pass of the loop at tick time now (milliseconds).
func (d *Device) Tick(now int64) Outputs {
	in := TickInputs{Now: now}

	if d.c.Link != nil {
		in.Link.Connected, in.Link.Peer = d.c.Link.Connected()
		in.RemoteTare = d.c.Link.TareWritten()
	}
	if !in.Link.Connected {
		in.Link.Peer = ""
	}

	if d.state.NeedsSample() && d.c.Axes != nil {
		s, err := imu.ReadSample(d.c.Axes, d.c.Battery)
		if err != nil {
			d.readFailed(err)
		} else {
			if d.readFailures > 0 {
				d.log.Info("device: sensor reads recovered", "failures", d.readFailures)
				d.readFailures = 0
			}
			in.Sample = s
			in.HaveSample = true
		}
	}

	down, err := d.c.Button.Pressed()
	if err != nil {
		d.buttonFailures++
		if d.buttonFailures == 1 || d.buttonFailures%failureLogEvery == 0 {
			d.log.Warn("device: button read failed", "failures", d.buttonFailures, "err", err)
		}
	} else {
		d.buttonFailures = 0
		in.ButtonDown = down
	}

	out := Step(d.state, in)
	d.apply(out)
	return out
}

func (d *Device) readFailed(err error) {
	d.readFailures++
	if d.readFailures == 1 || d.readFailures%failureLogEvery == 0 {
		d.log.Warn("device: sample skipped", "failures", d.readFailures, "err", err)
	}
}

func (d *Device) apply(out Outputs) {
	d.setIndicators(out.Indicators)

	if out.LinkChanged {
		link := d.state.Link()
		if link.Connected {
			d.log.Info("device: link connected", "peer", link.Peer)
		} else {
			d.log.Info("device: link disconnected")
		}
	}

	if out.Published {
		if out.Degenerate {
			d.log.Warn("device: degenerate window, holding last pose", "valid", out.Reading.Valid)
		}
		d.c.Adapter.Publish(out.Reading, d.state.Link(), d.state.Secondary())
		d.log.Debug(fmt.Sprintf("Roll/Pitch/Battery: %s, %s, %s",
			out.Reading.RollText(), out.Reading.PitchText(), out.Reading.BatteryText()))
	} else if out.LinkChanged || out.SecondaryFlipped {
		d.c.Adapter.Refresh(d.state.Link(), d.state.Secondary())
	}

	if out.TareRequested != tare.None {
		d.log.Info("device: tare requested", "source", out.TareRequested)
	}
	for _, src := range out.TareIgnored {
		d.log.Info("device: tare already pending, request ignored", "source", src)
	}
	if out.TareApplied {
		d.log.Info("device: tare applied", "roll", out.Offset.Roll, "pitch", out.Offset.Pitch)
	}
}

// setIndicators writes only the LEDs whose wanted state changed.
func (d *Device) setIndicators(want Indicators) {
	for _, l := range []struct {
		ch       hw.Channel
		on, prev bool
	}{
		{hw.ConnectionLED, want.Connection, d.leds.Connection},
		{hw.DataLED, want.Data, d.leds.Data},
		{hw.TareLED, want.Tare, d.leds.Tare},
	} {
		if d.ledsSeen && l.on == l.prev {
			continue
		}
		if err := d.c.Indicators.Set(l.ch, l.on); err != nil {
			d.ledFailures++
			if d.ledFailures == 1 || d.ledFailures%failureLogEvery == 0 {
				d.log.Warn("device: indicator write failed", "channel", l.ch, "err", err)
			}
		}
	}
	d.leds = want
	d.ledsSeen = true
}

// Run ticks the device every interval until ctx is done. The tick clock
// starts at zero when Run is called.
func (d *Device) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be > 0, got %s", interval)
	}
	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.log.Info("device: loop started", "interval", interval, "window", d.state.params.WindowSize)
	d.c.Adapter.Refresh(d.state.Link(), d.state.Secondary())

	for {
		select {
		case <-ctx.Done():
			d.log.Info("device: loop stopped")
			return nil
		case <-ticker.C:
			d.Tick(time.Since(start).Milliseconds())
		}
	}
}
