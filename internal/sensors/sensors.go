// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log/slog"

	"github.com/relabs-tech/angle_monitor/internal/config"
	"github.com/relabs-tech/angle_monitor/internal/imu"
)

// OpenAccelerometer brings up the configured accelerometer. A nil reader
// with a nil error means the sensor is disabled.
func OpenAccelerometer(cfg config.SensorConfig, log *slog.Logger) (imu.AxisReader, error) {
	switch cfg.Driver {
	case "mpu9250":
		return NewMPU9250(cfg.SPIDevice, cfg.CSPin, cfg.AccelRange, log)
	case "mock":
		return NewMock(cfg.Mock), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown sensor driver %q", cfg.Driver)
	}
}

// OpenBattery brings up the configured battery ADC. A nil reader with a
// nil error means no battery measurement.
func OpenBattery(cfg config.BatteryConfig) (imu.BatteryReader, error) {
	switch cfg.Driver {
	case "ads1115":
		return NewADS1115(cfg.I2CBus, cfg.I2CAddr, cfg.Channel)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown battery driver %q", cfg.Driver)
	}
}
