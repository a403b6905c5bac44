// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// lsbPerG is the accelerometer sensitivity for each full-scale range.
var lsbPerG = [...]float64{16384, 8192, 4096, 2048}

// MPU9250 reads the accelerometer of an MPU-9250 over SPI. Gyro and
// magnetometer are left unused.
type MPU9250 struct {
	imu   *mpu9250.MPU9250
	scale float64
}

// NewMPU9250 initializes the MPU-9250 on spiDev with chip select csPin.
func NewMPU9250(spiDev, csPin string, accelRange int, log *slog.Logger) (*MPU9250, error) {
	if accelRange < 0 || accelRange >= len(lsbPerG) {
		return nil, fmt.Errorf("MPU9250: accel range %d out of range", accelRange)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("MPU9250: periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("MPU9250: CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("MPU9250: SPI transport (%s): %w", spiDev, err)
	}

	dev, err := mpu9250.New(*tr)
	if err != nil {
		return nil, fmt.Errorf("MPU9250: device creation: %w", err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("MPU9250: initialization: %w", err)
	}

	// No Calibrate: it writes hardware accel offsets assuming the board lies
	// flat, which removes part of gravity. Zeroing is done by tare.
	if err := dev.SetAccelRange(fsSel(accelRange)); err != nil {
		return nil, fmt.Errorf("MPU9250: set accel range: %w", err)
	}
	got, err := dev.GetAccelRange()
	if err != nil {
		return nil, fmt.Errorf("MPU9250: read accel range: %w", err)
	}
	if int(got) != accelRange {
		// FS_SEL bits are only ever set, never cleared, by the masked write.
		log.Warn("sensors: accelerometer range differs from configured, using hardware range",
			"configured", accelRange, "hardware", got)
	}
	log.Info("sensors: accelerometer range set", "range", got, "g", []int{2, 4, 8, 16}[got])

	return &MPU9250{imu: dev, scale: lsbPerG[got]}, nil
}

// fsSel places an accel range index in the ACCEL_FS_SEL bits.
func fsSel(accelRange int) byte {
	return byte(accelRange) << 3
}

// ReadAxes returns the acceleration in g.
func (s *MPU9250) ReadAxes() (x, y, z float64, err error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("MPU9250 accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("MPU9250 accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("MPU9250 accel Z: %w", err)
	}
	return countsToG(ax, s.scale), countsToG(ay, s.scale), countsToG(az, s.scale), nil
}

func countsToG(v int16, lsb float64) float64 {
	return float64(v) / lsb
}
