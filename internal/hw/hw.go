// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package hw drives the tare button and the status LEDs.
package hw

import (
	"fmt"

	"github.com/relabs-tech/angle_monitor/internal/config"
)

// Channel identifies one status indicator.
type Channel int

const (
	ConnectionLED Channel = iota
	DataLED
	TareLED
)

func (c Channel) String() string {
	switch c {
	case ConnectionLED:
		return "connection"
	case DataLED:
		return "data"
	case TareLED:
		return "tare"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Button is the physical tare button.
type Button interface {
	Pressed() (bool, error)
}

// Indicators drives the status LEDs.
type Indicators interface {
	Set(ch Channel, on bool) error
	Close() error
}

// NoButton is never pressed.
type NoButton struct{}

func (NoButton) Pressed() (bool, error) { return false, nil }

// NoIndicators discards every update.
type NoIndicators struct{}

func (NoIndicators) Set(Channel, bool) error { return nil }
func (NoIndicators) Close() error            { return nil }

// Open returns the button and indicators of the configured backend.
func Open(cfg config.GPIOConfig) (Button, Indicators, error) {
	switch cfg.Backend {
	case "periph":
		return openPeriph(cfg)
	case "gpiocdev":
		return openGPIOCdev(cfg)
	case "none", "":
		return NoButton{}, NoIndicators{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown gpio backend %q", cfg.Backend)
	}
}

// level maps an LED state to the line level for the configured polarity.
func level(on, activeHigh bool) bool {
	return on == activeHigh
}
