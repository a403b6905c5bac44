// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build !linux

package hw

import (
	"errors"

	"github.com/relabs-tech/angle_monitor/internal/config"
)

func openGPIOCdev(config.GPIOConfig) (Button, Indicators, error) {
	return nil, nil, errors.New("gpiocdev backend requires linux")
}
