// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package device runs the inclinometer's cooperative update loop.
//
// Step is the whole control logic as a deterministic transition over State.
// Device is the shell that reads the collaborators once per tick, calls Step
// and applies the outputs.
package device

import (
	"github.com/relabs-tech/angle_monitor/internal/imu"
	"github.com/relabs-tech/angle_monitor/internal/orientation"
	"github.com/relabs-tech/angle_monitor/internal/present"
	"github.com/relabs-tech/angle_monitor/internal/tare"
	"github.com/relabs-tech/angle_monitor/internal/timer"
	"github.com/relabs-tech/angle_monitor/internal/window"
)

// Params are the fixed settings of the loop. Durations are milliseconds
// on the tick clock.
type Params struct {
	WindowSize int
	DataFlash  int64
	TareFlash  int64
	// Period of the secondary display field alternation; 0 disables it.
	Alternate int64
	Battery   orientation.BatteryScale
	// NoBattery publishes the battery as not available.
	NoBattery bool
}

// State is everything the loop owns between ticks.
type State struct {
	params Params

	acc  window.Accumulator
	tare tare.Machine

	lastRaw  orientation.Pose
	haveLast bool

	data      timer.Timer
	tareLED   timer.Timer
	alternate timer.Timer

	link       present.LinkState
	buttonDown bool
	secondary  present.Field
}

// NewState returns the power-on state.
func NewState(p Params) *State {
	if p.Battery == (orientation.BatteryScale{}) {
		p.Battery = orientation.DefaultBatteryScale
	}
	return &State{
		params: p,
		acc:    window.New(p.WindowSize),
	}
}

// NeedsSample reports whether the next Step will consume a sample. Once
// the window is complete the next Step drains it instead.
func (s *State) NeedsSample() bool { return !s.acc.Complete() }

// Count is the number of samples in the current window.
func (s *State) Count() int { return s.acc.Count() }

// Offset returns the active tare offset.
func (s *State) Offset() orientation.Offset { return s.tare.Offset() }

// TareState returns the state of the calibration machine.
func (s *State) TareState() tare.State { return s.tare.State() }

// Link returns the link state seen on the last tick.
func (s *State) Link() present.LinkState { return s.link }

// Secondary returns the field currently shown on the secondary line.
func (s *State) Secondary() present.Field { return s.secondary }

// TickInputs are the observations of one tick.
type TickInputs struct {
	Now  int64
	Link present.LinkState
	// Sample is only looked at when HaveSample is set. A failed read
	// leaves HaveSample false and the window does not advance.
	Sample     imu.Sample
	HaveSample bool
	ButtonDown bool
	// RemoteTare is set when a truthy value was written to the tare
	// control since the last tick.
	RemoteTare bool
}

// Indicators is the wanted state of the status LEDs.
type Indicators struct {
	Connection bool
	Data       bool
	Tare       bool
}

// Outputs describe what one Step decided.
type Outputs struct {
	Indicators Indicators

	LinkChanged bool

	// Published is set when a window was drained; Reading is then the
	// value to hand to the presentation adapter.
	Published bool
	Reading   present.Reading
	// Raw is the untared pose of the drained window, valid unless
	// Degenerate is set.
	Raw        orientation.Pose
	Degenerate bool

	TareRequested tare.Source
	TareIgnored   []tare.Source
	TareApplied   bool
	Offset        orientation.Offset

	SecondaryFlipped bool
}

// Step advances s by one tick.
func Step(s *State, in TickInputs) Outputs {
	var out Outputs
	now := in.Now

	// 1. link edge
	if in.Link != s.link {
		s.link = in.Link
		out.LinkChanged = true
	}
	out.Indicators.Connection = s.link.Connected

	// 2. sample or drain
	drained := false
	if !s.acc.Complete() {
		if in.HaveSample {
			s.acc.Add(in.Sample)
		}
	} else {
		w := s.acc.Drain()
		drained = true
		out.Published = true
		out.Reading = s.estimate(w, &out)
		s.data = timer.Arm(now, s.params.DataFlash)
	}

	// 3. data indicator
	s.data, _ = s.data.Expire(now)
	out.Indicators.Data = s.data.Active(now)

	// 4. tare requests
	pressed := in.ButtonDown && !s.buttonDown
	s.buttonDown = in.ButtonDown
	if pressed {
		s.request(tare.Button, now, &out)
	}
	if in.RemoteTare {
		s.request(tare.Remote, now, &out)
	}

	// 5. tare resolution on the window drained in step 2
	if drained && !out.Degenerate && s.tare.Resolve(out.Raw) {
		out.TareApplied = true
	}
	out.Offset = s.tare.Offset()

	// 6. tare indicator
	s.tareLED, _ = s.tareLED.Expire(now)
	out.Indicators.Tare = s.tareLED.Active(now)

	// 7. secondary field alternation
	if s.params.Alternate > 0 {
		if !s.alternate.Armed {
			s.alternate = timer.Arm(now, s.params.Alternate)
		} else if next, expired := s.alternate.Expire(now); expired {
			s.secondary = s.secondary.Next()
			s.alternate = timer.Arm(now, s.params.Alternate)
			out.SecondaryFlipped = true
		} else {
			s.alternate = next
		}
	}
	return out
}

func (s *State) request(src tare.Source, now int64, out *Outputs) {
	if !s.tare.Request(src) {
		out.TareIgnored = append(out.TareIgnored, src)
		return
	}
	out.TareRequested = src
	s.tareLED = timer.Arm(now, s.params.TareFlash)
}

// estimate turns a drained window into the reading to publish. A
// degenerate window repeats the last valid pose marked stale.
func (s *State) estimate(w window.Window, out *Outputs) present.Reading {
	r := present.Reading{NoBattery: s.params.NoBattery}
	if !r.NoBattery {
		r.Battery = orientation.BatteryVolts(w, s.params.Battery)
	}

	raw, ok := orientation.Estimate(w)
	if ok {
		s.lastRaw = raw
		s.haveLast = true
		out.Raw = raw
	} else {
		out.Degenerate = true
		r.Stale = true
	}
	if s.haveLast {
		t := s.lastRaw.Tared(s.tare.Offset())
		r.Roll, r.Pitch = t.Roll, t.Pitch
		r.Valid = true
	}
	return r
}
