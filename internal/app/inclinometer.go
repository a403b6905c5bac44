// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/relabs-tech/angle_monitor/internal/config"
	"github.com/relabs-tech/angle_monitor/internal/device"
	"github.com/relabs-tech/angle_monitor/internal/hw"
	"github.com/relabs-tech/angle_monitor/internal/imu"
	"github.com/relabs-tech/angle_monitor/internal/link"
	"github.com/relabs-tech/angle_monitor/internal/orientation"
	"github.com/relabs-tech/angle_monitor/internal/present"
	"github.com/relabs-tech/angle_monitor/internal/sensors"
)

// Params converts the device section of cfg to loop parameters.
func Params(cfg config.Config) device.Params {
	return device.Params{
		WindowSize: cfg.Device.WindowSize,
		DataFlash:  cfg.Device.DataFlash.Milliseconds(),
		TareFlash:  cfg.Device.TareFlash.Milliseconds(),
		Alternate:  cfg.Device.AlternateInterval.Milliseconds(),
		Battery: orientation.BatteryScale{
			ReferenceVolts: cfg.Battery.ReferenceVolts,
			FullScale:      cfg.Battery.FullScale,
			DividerRatio:   cfg.Battery.DividerRatio,
		},
	}
}

// RunInclinometer brings up every configured collaborator and runs the
// loop until ctx is done. A collaborator that fails to come up is logged
// and left out.
func RunInclinometer(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	log.Info("inclinometer: starting", "name", cfg.Device.Name, "window", cfg.Device.WindowSize, "tick", cfg.Device.TickInterval)

	c := device.Collaborators{Adapter: &present.Adapter{Log: log}}

	axes, err := sensors.OpenAccelerometer(cfg.Sensor, log)
	switch {
	case err != nil:
		log.Warn("inclinometer: accelerometer unavailable, no readings will be published", "driver", cfg.Sensor.Driver, "err", err)
	case axes == nil:
		log.Warn("inclinometer: accelerometer disabled")
	default:
		c.Axes = axes
		log.Info("inclinometer: accelerometer ready", "driver", cfg.Sensor.Driver)
	}

	c.Battery = openBattery(cfg, c.Axes, log)
	if cl, ok := c.Battery.(io.Closer); ok {
		defer cl.Close()
	}

	button, leds, err := hw.Open(cfg.GPIO)
	if err != nil {
		log.Warn("inclinometer: GPIO unavailable", "backend", cfg.GPIO.Backend, "err", err)
		button, leds = hw.NoButton{}, hw.NoIndicators{}
	}
	c.Button, c.Indicators = button, leds
	defer func() {
		for _, ch := range []hw.Channel{hw.ConnectionLED, hw.DataLED, hw.TareLED} {
			_ = leds.Set(ch, false)
		}
		_ = leds.Close()
	}()

	if cfg.Display.Enable {
		disp, err := OpenDisplay(cfg.Display)
		if err != nil {
			log.Warn("inclinometer: display unavailable", "err", err)
		} else {
			defer disp.Close()
			if err := disp.Splash(cfg.Device.Name, "starting"); err != nil {
				log.Warn("inclinometer: splash failed", "err", err)
			}
			c.Adapter.Renderers = append(c.Adapter.Renderers, disp)
			log.Info("inclinometer: display ready", "layout", cfg.Display.Layout)
		}
	}

	if cfg.Serial.Enable {
		port, err := OpenSerial(cfg.Serial)
		if err != nil {
			log.Warn("inclinometer: serial console unavailable", "err", err)
		} else {
			defer port.Close()
			c.Adapter.Renderers = append(c.Adapter.Renderers, NewXDRWriter(port))
			log.Info("inclinometer: serial console ready", "port", cfg.Serial.Port, "baud", cfg.Serial.BaudRate)
		}
	}

	if cfg.MQTT.Enable {
		svc, err := link.Dial(cfg.MQTT, log)
		if err != nil {
			log.Warn("inclinometer: MQTT link degraded", "err", err)
		}
		if svc != nil {
			defer svc.Close()
			c.Link = svc
			c.Adapter.Notifier = svc
		}
	}

	dev := device.New(Params(cfg), c, log)
	return dev.Run(ctx, cfg.Device.TickInterval)
}

// openBattery returns the battery reader. The mock accelerometer doubles
// as the battery when no ADC is configured.
func openBattery(cfg config.Config, axes imu.AxisReader, log *slog.Logger) imu.BatteryReader {
	b, err := sensors.OpenBattery(cfg.Battery)
	if err != nil {
		log.Warn("inclinometer: battery ADC unavailable", "driver", cfg.Battery.Driver, "err", err)
		return nil
	}
	if b != nil {
		return b
	}
	if m, ok := axes.(*sensors.Mock); ok {
		return m
	}
	return nil
}
