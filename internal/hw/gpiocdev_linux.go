// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build linux

package hw

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"

	"github.com/relabs-tech/angle_monitor/internal/config"
)

const consumer = "angle-monitor"

// cdevLine is the part of a requested gpiocdev line the device uses.
type cdevLine interface {
	Value() (int, error)
	SetValue(int) error
	Close() error
}

type lineRequester func(name string, opts ...gpiocdev.LineReqOption) (io.Closer, cdevLine, error)

// requestLine finds the named line on any GPIO chip and requests it.
func requestLine(name string, opts ...gpiocdev.LineReqOption) (io.Closer, cdevLine, error) {
	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", e.Name()))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(name)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, append(opts, gpiocdev.WithConsumer(consumer))...)
		if err != nil {
			_ = chip.Close()
			continue
		}
		return chip, line, nil
	}
	return nil, nil, fmt.Errorf("gpio line %q not found (or busy)", name)
}

type cdevButton struct {
	chip io.Closer
	line cdevLine
}

func (b *cdevButton) Pressed() (bool, error) {
	v, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("button: %w", err)
	}
	return v == 0, nil
}

func (b *cdevButton) Close() error {
	err := b.line.Close()
	_ = b.chip.Close()
	return err
}

type cdevLED struct {
	chip io.Closer
	line cdevLine
}

type cdevIndicators struct {
	leds       map[Channel]cdevLED
	activeHigh bool
}

func (c *cdevIndicators) Set(ch Channel, on bool) error {
	led, ok := c.leds[ch]
	if !ok {
		return nil
	}
	v := 0
	if level(on, c.activeHigh) {
		v = 1
	}
	if err := led.line.SetValue(v); err != nil {
		return fmt.Errorf("%s LED: %w", ch, err)
	}
	return nil
}

func (c *cdevIndicators) Close() error {
	var first error
	for ch, led := range c.leds {
		_ = c.Set(ch, false)
		if err := led.line.Close(); err != nil && first == nil {
			first = err
		}
		_ = led.chip.Close()
	}
	return first
}

func openGPIOCdev(cfg config.GPIOConfig) (Button, Indicators, error) {
	return openCdevLines(cfg, requestLine)
}

// openCdevLines requests the button and LED lines. On error every line
// already requested is released.
func openCdevLines(cfg config.GPIOConfig, request lineRequester) (Button, Indicators, error) {
	var button Button = NoButton{}
	var cdevBtn *cdevButton
	if cfg.ButtonPin != "" {
		chip, line, err := request(cfg.ButtonPin, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			return nil, nil, fmt.Errorf("button: %w", err)
		}
		cdevBtn = &cdevButton{chip: chip, line: line}
		button = cdevBtn
	}

	ind := &cdevIndicators{leds: map[Channel]cdevLED{}, activeHigh: cfg.LEDActiveHigh}
	off := 1
	if cfg.LEDActiveHigh {
		off = 0
	}
	for ch, name := range ledPins(cfg) {
		chip, line, err := request(name, gpiocdev.AsOutput(off))
		if err != nil {
			_ = ind.Close()
			if cdevBtn != nil {
				_ = cdevBtn.Close()
			}
			return nil, nil, fmt.Errorf("%s LED: %w", ch, err)
		}
		ind.leds[ch] = cdevLED{chip: chip, line: line}
	}
	return button, ind, nil
}
