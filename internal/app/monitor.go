// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/relabs-tech/angle_monitor/internal/config"
	"github.com/relabs-tech/angle_monitor/internal/link"
)

// RunMonitor prints the device's updates to out until ctx is done. With
// tare set it sends one tare request and returns.
func RunMonitor(ctx context.Context, cfg config.Config, tare bool, out io.Writer, log *slog.Logger) error {
	client, err := link.DialClient(link.ClientOptions{
		Broker:      cfg.MQTT.Broker,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		QoS:         cfg.MQTT.QoS,
		Timeout:     cfg.MQTT.ConnectTimeout,
	}, log)
	if err != nil {
		return err
	}
	defer client.Close()

	if tare {
		if err := client.RequestTare(); err != nil {
			return err
		}
		fmt.Fprintf(out, "tare requested on %s\n", cfg.MQTT.TopicPrefix)
		return nil
	}

	var mu sync.Mutex
	if err := client.Subscribe(func(u link.Update) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, formatUpdate(u))
	}); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("monitor: shutting down")
	return nil
}

func formatUpdate(u link.Update) string {
	text := strings.TrimSpace(u.Text)
	switch u.Name {
	case "roll", "pitch":
		return fmt.Sprintf("[%-7s] %7s deg", strings.ToUpper(u.Name), text)
	case "battery":
		return fmt.Sprintf("[%-7s] %7s V", strings.ToUpper(u.Name), text)
	default:
		return fmt.Sprintf("[%-7s] %s", strings.ToUpper(u.Name), text)
	}
}
