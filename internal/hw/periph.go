// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hw

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/angle_monitor/internal/config"
)

type periphButton struct {
	pin gpio.PinIO
}

// Pressed reports the button state. The input is pulled up and the
// button shorts it to ground.
func (b *periphButton) Pressed() (bool, error) {
	return b.pin.Read() == gpio.Low, nil
}

type periphIndicators struct {
	pins       map[Channel]gpio.PinIO
	activeHigh bool
}

func (p *periphIndicators) Set(ch Channel, on bool) error {
	pin, ok := p.pins[ch]
	if !ok {
		return nil
	}
	if err := pin.Out(gpio.Level(level(on, p.activeHigh))); err != nil {
		return fmt.Errorf("%s LED: %w", ch, err)
	}
	return nil
}

func (p *periphIndicators) Close() error {
	for ch := range p.pins {
		_ = p.Set(ch, false)
	}
	return nil
}

func openPeriph(cfg config.GPIOConfig) (Button, Indicators, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph host init: %w", err)
	}

	var button Button = NoButton{}
	if cfg.ButtonPin != "" {
		pin := gpioreg.ByName(cfg.ButtonPin)
		if pin == nil {
			return nil, nil, fmt.Errorf("button pin %q not found", cfg.ButtonPin)
		}
		if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, nil, fmt.Errorf("button pin %q: %w", cfg.ButtonPin, err)
		}
		button = &periphButton{pin: pin}
	}

	ind := &periphIndicators{pins: map[Channel]gpio.PinIO{}, activeHigh: cfg.LEDActiveHigh}
	for ch, name := range ledPins(cfg) {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, nil, fmt.Errorf("%s LED pin %q not found", ch, name)
		}
		ind.pins[ch] = pin
		if err := ind.Set(ch, false); err != nil {
			return nil, nil, err
		}
	}
	return button, ind, nil
}

// ledPins returns the configured LED pins, skipping unwired channels.
func ledPins(cfg config.GPIOConfig) map[Channel]string {
	pins := map[Channel]string{}
	for ch, name := range map[Channel]string{
		ConnectionLED: cfg.ConnectionLEDPin,
		DataLED:       cfg.DataLEDPin,
		TareLED:       cfg.TareLEDPin,
	} {
		if name != "" {
			pins[ch] = name
		}
	}
	return pins
}
