// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package window accumulates per-tick samples into fixed-size averaging
// windows.
package window

import "github.com/relabs-tech/angle_monitor/internal/imu"

// DefaultSize is the number of samples averaged into one reading.
const DefaultSize = 100

// Status reports whether the current window is full.
type Status int

const (
	Incomplete Status = iota
	Complete
)

func (s Status) String() string {
	if s == Complete {
		return "complete"
	}
	return "incomplete"
}

// Window holds the running sums of one accumulation window.
type Window struct {
	SumX       float64
	SumY       float64
	SumZ       float64
	SumBattery float64
	Count      int
}

// Mean returns the averaged accelerometer vector and battery code.
// An empty window averages to zero.
func (w Window) Mean() (x, y, z, battery float64) {
	if w.Count == 0 {
		return 0, 0, 0, 0
	}
	n := float64(w.Count)
	return w.SumX / n, w.SumY / n, w.SumZ / n, w.SumBattery / n
}

// Accumulator collects samples until Size of them have been added.
// The zero value uses DefaultSize.
type Accumulator struct {
	Size int

	cur Window
}

// New returns an accumulator for windows of size samples.
func New(size int) Accumulator {
	if size <= 0 {
		size = DefaultSize
	}
	return Accumulator{Size: size}
}

func (a *Accumulator) size() int {
	if a.Size <= 0 {
		return DefaultSize
	}
	return a.Size
}

// Add folds s into the running sums. Once the window is complete further
// samples are refused until Drain is called.
func (a *Accumulator) Add(s imu.Sample) Status {
	if a.cur.Count >= a.size() {
		return Complete
	}
	a.cur.SumX += s.Ax
	a.cur.SumY += s.Ay
	a.cur.SumZ += s.Az
	a.cur.SumBattery += float64(s.BatteryRaw)
	a.cur.Count++
	if a.cur.Count == a.size() {
		return Complete
	}
	return Incomplete
}

// Complete reports whether the window holds exactly Size samples.
func (a *Accumulator) Complete() bool {
	return a.cur.Count == a.size()
}

// Count returns the number of samples in the current window.
func (a *Accumulator) Count() int {
	return a.cur.Count
}

// Drain returns the current window and resets the accumulator.
func (a *Accumulator) Drain() Window {
	w := a.cur
	a.cur = Window{}
	return w
}
