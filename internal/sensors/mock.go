// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"math/rand"

	"github.com/relabs-tech/angle_monitor/internal/config"
)

// Mock synthesizes a gravity vector for a fixed tilt, with optional
// Gaussian noise. It doubles as the battery reader.
type Mock struct {
	rollDeg    float64
	pitchDeg   float64
	noise      float64
	batteryRaw uint16
	rnd        *rand.Rand
}

// NewMock creates a mock accelerometer from cfg.
func NewMock(cfg config.MockSensorConfig) *Mock {
	return &Mock{
		rollDeg:    cfg.RollDeg,
		pitchDeg:   cfg.PitchDeg,
		noise:      cfg.NoiseG,
		batteryRaw: cfg.BatteryRaw,
		rnd:        rand.New(rand.NewSource(cfg.Seed)),
	}
}

// SetTilt changes the simulated orientation.
func (m *Mock) SetTilt(rollDeg, pitchDeg float64) {
	m.rollDeg = rollDeg
	m.pitchDeg = pitchDeg
}

// ReadAxes returns the gravity vector a resting device at the configured
// roll and pitch would measure, in g.
func (m *Mock) ReadAxes() (x, y, z float64, err error) {
	roll := m.rollDeg * math.Pi / 180
	pitch := m.pitchDeg * math.Pi / 180

	x = -math.Sin(pitch)
	y = math.Cos(pitch) * math.Sin(roll)
	z = math.Cos(pitch) * math.Cos(roll)
	if m.noise > 0 {
		x += m.rnd.NormFloat64() * m.noise
		y += m.rnd.NormFloat64() * m.noise
		z += m.rnd.NormFloat64() * m.noise
	}
	return x, y, z, nil
}

// ReadBatteryRaw returns the configured code.
func (m *Mock) ReadBatteryRaw() (uint16, error) {
	return m.batteryRaw, nil
}
