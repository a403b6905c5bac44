// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package link

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/angle_monitor/internal/present"
)

// Update is one value received from a device.
type Update struct {
	Topic string
	// Name is roll, pitch, battery, tare or status.
	Name string
	Text string
}

// Value parses the text as a number.
func (u Update) Value() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(u.Text), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Client is the monitoring side: it follows a device's topics and can
// request a tare.
type Client struct {
	client  mqtt.Client
	topics  Topics
	qos     byte
	timeout time.Duration
	log     *slog.Logger
}

// ClientOptions configures a monitoring client.
type ClientOptions struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	QoS         byte
	Timeout     time.Duration
}

// DialClient connects a monitoring client.
func DialClient(o ClientOptions, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	if o.Timeout == 0 {
		o.Timeout = 5 * time.Second
	}
	if o.ClientID == "" {
		o.ClientID = "angle-monitor-client-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true)

	c := &Client{
		client:  mqtt.NewClient(opts),
		topics:  Topics{Prefix: o.TopicPrefix},
		qos:     o.QoS,
		timeout: o.Timeout,
		log:     log,
	}
	tok := c.client.Connect()
	if !tok.WaitTimeout(o.Timeout) {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("link: connect to %s timed out", o.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("link: connect to %s: %w", o.Broker, err)
	}
	log.Info("link: client connected", "broker", o.Broker, "prefix", o.TopicPrefix)
	return c, nil
}

// Subscribe delivers every value and status update to fn. fn runs on the
// MQTT client's goroutine.
func (c *Client) Subscribe(fn func(Update)) error {
	filters := map[string]byte{c.topics.Status(): c.qos}
	names := map[string]string{c.topics.Status(): "status"}
	for _, ch := range append(published, present.TareControl) {
		filters[c.topics.Value(ch)] = c.qos
		names[c.topics.Value(ch)] = ch.String()
	}

	tok := c.client.SubscribeMultiple(filters, func(_ mqtt.Client, msg mqtt.Message) {
		name, ok := names[msg.Topic()]
		if !ok {
			return
		}
		fn(Update{Topic: msg.Topic(), Name: name, Text: string(msg.Payload())})
	})
	if !tok.WaitTimeout(c.timeout) {
		return fmt.Errorf("link: subscribe timed out")
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("link: subscribe: %w", err)
	}
	c.log.Info("link: subscribed", "prefix", c.topics.Prefix)
	return nil
}

// RequestTare writes a truthy value to the tare control.
func (c *Client) RequestTare() error {
	tok := c.client.Publish(c.topics.TareSet(), c.qos, false, "1")
	if !tok.WaitTimeout(c.timeout) {
		return fmt.Errorf("link: tare request timed out")
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("link: tare request: %w", err)
	}
	return nil
}

// Close disconnects.
func (c *Client) Close() {
	c.client.Disconnect(250)
}
