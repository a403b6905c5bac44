// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package link

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/angle_monitor/internal/config"
	"github.com/relabs-tech/angle_monitor/internal/present"
)

// published lists the characteristics the device notifies.
var published = []present.Characteristic{present.Roll, present.Pitch, present.Battery}

// Service is the device side of the angle monitor service.
type Service struct {
	client  mqtt.Client
	broker  string
	topics  Topics
	qos     byte
	timeout time.Duration
	log     *slog.Logger

	control ControlPoint

	mu          sync.Mutex
	initialized bool
}

// Dial connects to the broker. When the broker is not reachable within
// cfg.ConnectTimeout the service is still returned and keeps retrying in
// the background; the returned error only reports the delay.
func Dial(cfg config.MQTTConfig, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		broker:  cfg.Broker,
		topics:  Topics{Prefix: cfg.TopicPrefix},
		qos:     cfg.QoS,
		timeout: cfg.ConnectTimeout,
		log:     log,
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "angle-monitor-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2*time.Second).
		SetWill(s.topics.Status(), StatusOffline, s.qos, true).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			s.log.Warn("link: connection lost", "broker", s.broker, "err", err)
		})

	s.client = mqtt.NewClient(opts)
	token := s.client.Connect()
	if !token.WaitTimeout(s.timeout) {
		return s, fmt.Errorf("link: broker %s not reachable after %s, retrying in background", s.broker, s.timeout)
	}
	if err := token.Error(); err != nil {
		return s, fmt.Errorf("link: connect to %s: %w", s.broker, err)
	}
	return s, nil
}

// onConnect runs on every (re)connect: subscribe to the control, announce
// the descriptions and status, and on the first connect the initial values.
func (s *Service) onConnect(c mqtt.Client) {
	s.log.Info("link: connected to MQTT broker", "broker", s.broker, "prefix", s.topics.Prefix)

	tok := c.Subscribe(s.topics.TareSet(), s.qos, s.onTareWrite)
	if tok.WaitTimeout(s.timeout) && tok.Error() != nil {
		s.log.Error("link: subscribe failed", "topic", s.topics.TareSet(), "err", tok.Error())
	}

	for _, ch := range append(published, present.TareControl) {
		c.Publish(s.topics.Description(ch), s.qos, true, ch.Description())
	}

	s.mu.Lock()
	first := !s.initialized
	s.initialized = true
	s.mu.Unlock()
	if first {
		initial := present.Reading{Valid: true}
		c.Publish(s.topics.Value(present.Roll), s.qos, true, initial.RollText())
		c.Publish(s.topics.Value(present.Pitch), s.qos, true, initial.PitchText())
		c.Publish(s.topics.Value(present.Battery), s.qos, true, initial.BatteryText())
		c.Publish(s.topics.Value(present.TareControl), s.qos, true, "0")
	}

	c.Publish(s.topics.Status(), s.qos, true, StatusOnline)
}

func (s *Service) onTareWrite(c mqtt.Client, msg mqtt.Message) {
	v := s.control.Write(msg.Payload())
	if v != 0 {
		s.log.Info("link: tare control written", "topic", msg.Topic())
	}
	c.Publish(s.topics.Value(present.TareControl), s.qos, true, fmt.Sprintf("%d", v))
}

// Connected reports whether the broker session is open. The peer is the
// broker URL.
func (s *Service) Connected() (bool, string) {
	if s.client.IsConnectionOpen() {
		return true, s.broker
	}
	return false, ""
}

// TareWritten reports a truthy tare control write since the last call.
func (s *Service) TareWritten() bool {
	return s.control.TareWritten()
}

// TareControl is the last value written to the tare control.
func (s *Service) TareControl() byte {
	return s.control.Value()
}

// Notify publishes text as the retained value of c. It does not wait for
// the broker; an earlier failed publish of the same topic is reported
// when known.
func (s *Service) Notify(c present.Characteristic, text string) error {
	if !s.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	tok := s.client.Publish(s.topics.Value(c), s.qos, true, text)
	select {
	case <-tok.Done():
		if err := tok.Error(); err != nil {
			return fmt.Errorf("link: publish %s: %w", c, err)
		}
	default:
	}
	return nil
}

// Close announces offline status and disconnects.
func (s *Service) Close() {
	if s.client.IsConnectionOpen() {
		tok := s.client.Publish(s.topics.Status(), s.qos, true, StatusOffline)
		tok.WaitTimeout(s.timeout)
	}
	s.client.Disconnect(250)
	s.log.Info("link: disconnected", "broker", s.broker)
}
