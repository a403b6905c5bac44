// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

// Sample is one accelerometer reading plus one battery ADC code.
// It is produced once per tick and folded into the current window.
type Sample struct {
	Ax float64 `json:"ax"` // g
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	BatteryRaw uint16 `json:"battery_raw"` // ADC code
}

// AxisReader reads the three accelerometer axes in g.
type AxisReader interface {
	ReadAxes() (x, y, z float64, err error)
}

// BatteryReader reads the raw battery ADC code.
type BatteryReader interface {
	ReadBatteryRaw() (uint16, error)
}

// ReadSample reads one Sample from the accelerometer and the battery ADC.
// A nil battery reader yields a zero code. Any read error drops the whole
// sample so the caller never accumulates a half-read value.
func ReadSample(axes AxisReader, battery BatteryReader) (Sample, error) {
	x, y, z, err := axes.ReadAxes()
	if err != nil {
		return Sample{}, err
	}
	var raw uint16
	if battery != nil {
		raw, err = battery.ReadBatteryRaw()
		if err != nil {
			return Sample{}, err
		}
	}
	return Sample{Ax: x, Ay: y, Az: z, BatteryRaw: raw}, nil
}
