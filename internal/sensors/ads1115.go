// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

var adsChannels = [...]ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// ADS1115 samples the battery divider on one single-ended ADS1115 input.
type ADS1115 struct {
	bus i2c.BusCloser
	pin ads1x15.PinADC
}

// NewADS1115 opens busName and configures channel at address addr.
func NewADS1115(busName string, addr uint16, channel int) (*ADS1115, error) {
	if channel < 0 || channel >= len(adsChannels) {
		return nil, fmt.Errorf("ADS1115: channel %d out of range", channel)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("ADS1115: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("ADS1115: open I2C bus %q: %w", busName, err)
	}

	opts := ads1x15.DefaultOpts
	opts.I2cAddress = addr
	adc, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("ADS1115: init at 0x%02X: %w", addr, err)
	}

	pin, err := adc.PinForChannel(adsChannels[channel], 4096*physic.MilliVolt, 860*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("ADS1115: channel %d: %w", channel, err)
	}
	return &ADS1115{bus: bus, pin: pin}, nil
}

// ReadBatteryRaw returns the conversion code, clamped at zero.
func (a *ADS1115) ReadBatteryRaw() (uint16, error) {
	s, err := a.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("ADS1115 read: %w", err)
	}
	return clampCode(s.Raw), nil
}

// Close halts the conversion and releases the bus.
func (a *ADS1115) Close() error {
	_ = a.pin.Halt()
	return a.bus.Close()
}

func clampCode(raw int32) uint16 {
	switch {
	case raw < 0:
		return 0
	case raw > 0xFFFF:
		return 0xFFFF
	default:
		return uint16(raw)
	}
}
