// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/angle_monitor/internal/config"
	"github.com/relabs-tech/angle_monitor/internal/present"
)

// screen is the part of *ssd1306.Dev the display uses.
type screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// Display renders frames on an SSD1306 OLED with one of the layouts.
type Display struct {
	dev    screen
	bus    i2c.BusCloser
	layout present.Layout
	img    *image1bit.VerticalLSB
}

// OpenDisplay initializes the OLED on the configured I2C bus.
func OpenDisplay(cfg config.DisplayConfig) (*Display, error) {
	layout, err := present.LayoutByName(cfg.Layout)
	if err != nil {
		return nil, err
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	d := newDisplay(dev, layout)
	d.bus = bus
	return d, nil
}

func newDisplay(dev screen, layout present.Layout) *Display {
	return &Display{
		dev:    dev,
		layout: layout,
		img:    image1bit.NewVerticalLSB(dev.Bounds()),
	}
}

// Splash shows the device name until the first frame.
func (d *Display) Splash(name, subtitle string) error {
	present.DrawSplash(d.img, name, subtitle)
	return d.dev.Draw(d.dev.Bounds(), d.img, image.Point{})
}

// Render draws f with the configured layout.
func (d *Display) Render(f present.Frame) error {
	d.layout.Draw(d.img, f)
	if err := d.dev.Draw(d.dev.Bounds(), d.img, image.Point{}); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// Close blanks the panel and releases the bus.
func (d *Display) Close() error {
	err := d.dev.Halt()
	if d.bus != nil {
		if cerr := d.bus.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
