// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package orientation turns averaged accelerometer windows into roll and
// pitch and applies the tare offset.
package orientation

import (
	"math"

	"github.com/relabs-tech/angle_monitor/internal/window"
)

// MinGravity is the smallest averaged vector magnitude (in g) that still
// yields a meaningful tilt. Below it the window is treated as degenerate.
const MinGravity = 0.05

// Pose holds roll and pitch in degrees, range (-180, 180].
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// Offset is the tare reference subtracted from raw angles.
type Offset struct {
	Roll  float64 `json:"tare_roll"`
	Pitch float64 `json:"tare_pitch"`
}

// Tared returns p relative to the tare offset o.
func (p Pose) Tared(o Offset) Pose {
	return Pose{Roll: p.Roll - o.Roll, Pitch: p.Pitch - o.Pitch}
}

// ComputePoseFromAccel computes roll and pitch from an accelerometer vector.
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// Estimate averages the window and returns the raw (untared) pose.
// ok is false for an empty window, a non-finite mean, or a mean vector
// shorter than MinGravity; callers must then keep their last valid pose.
func Estimate(w window.Window) (p Pose, ok bool) {
	if w.Count == 0 {
		return Pose{}, false
	}
	x, y, z, _ := w.Mean()
	if !finite(x) || !finite(y) || !finite(z) {
		return Pose{}, false
	}
	if math.Sqrt(x*x+y*y+z*z) < MinGravity {
		return Pose{}, false
	}
	p = ComputePoseFromAccel(x, y, z)
	if !finite(p.Roll) || !finite(p.Pitch) {
		return Pose{}, false
	}
	return p, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// BatteryScale converts an averaged ADC code into volts through the
// reference voltage and the resistor divider feeding the ADC.
type BatteryScale struct {
	ReferenceVolts float64 `yaml:"reference_volts"`
	FullScale      float64 `yaml:"adc_full_scale"`
	DividerRatio   float64 `yaml:"divider_ratio"`
}

// DefaultBatteryScale matches a 3.3 V reference, a 10-bit ADC and a
// 1 MΩ / 510 kΩ divider.
var DefaultBatteryScale = BatteryScale{
	ReferenceVolts: 3.3,
	FullScale:      1024,
	DividerRatio:   1510.0 / 510.0,
}

// Volts converts the averaged code into battery volts.
func (b BatteryScale) Volts(code float64) float64 {
	if b.FullScale == 0 {
		return 0
	}
	return code * b.ReferenceVolts / b.FullScale * b.DividerRatio
}

// BatteryVolts averages the window's battery sum and scales it to volts.
func BatteryVolts(w window.Window, scale BatteryScale) float64 {
	_, _, _, code := w.Mean()
	return scale.Volts(code)
}
