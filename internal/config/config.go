// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Battery BatteryConfig `yaml:"battery"`
	GPIO    GPIOConfig    `yaml:"gpio"`
	Display DisplayConfig `yaml:"display"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Serial  SerialConfig  `yaml:"serial"`
	Web     WebConfig     `yaml:"web"`
}

type DeviceConfig struct {
	Name string `yaml:"name"`
	// Samples averaged into one published reading.
	WindowSize   int           `yaml:"window_size"`
	TickInterval time.Duration `yaml:"tick_interval"`
	// How long the data LED flashes after each reading.
	DataFlash time.Duration `yaml:"data_flash"`
	// How long the tare LED stays on after a tare request. Keep it longer
	// than one window (window_size * tick_interval).
	TareFlash time.Duration `yaml:"tare_flash"`
	// Period of the display's battery/link alternation; 0 disables it.
	AlternateInterval time.Duration `yaml:"alternate_interval"`
}

type SensorConfig struct {
	Driver    string `yaml:"driver"` // mpu9250, mock, none
	SPIDevice string `yaml:"spi_device"`
	CSPin     string `yaml:"cs_pin"`
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	AccelRange int              `yaml:"accel_range"`
	Mock       MockSensorConfig `yaml:"mock"`
}

type MockSensorConfig struct {
	RollDeg    float64 `yaml:"roll_deg"`
	PitchDeg   float64 `yaml:"pitch_deg"`
	NoiseG     float64 `yaml:"noise_g"`
	BatteryRaw uint16  `yaml:"battery_raw"`
	Seed       int64   `yaml:"seed"`
}

type BatteryConfig struct {
	Driver  string `yaml:"driver"` // ads1115, none
	I2CBus  string `yaml:"i2c_bus"`
	I2CAddr uint16 `yaml:"i2c_addr"`
	Channel int    `yaml:"channel"`

	ReferenceVolts float64 `yaml:"reference_volts"`
	FullScale      float64 `yaml:"adc_full_scale"`
	DividerRatio   float64 `yaml:"divider_ratio"`
}

type GPIOConfig struct {
	Backend string `yaml:"backend"` // periph, gpiocdev, none
	// Pin names as the backend knows them, e.g. "GPIO17". Empty leaves
	// the function unwired.
	ButtonPin        string `yaml:"button_pin"`
	ConnectionLEDPin string `yaml:"connection_led_pin"`
	DataLEDPin       string `yaml:"data_led_pin"`
	TareLEDPin       string `yaml:"tare_led_pin"`
	// LEDs are driven active-low unless set.
	LEDActiveHigh bool `yaml:"led_active_high"`
}

type DisplayConfig struct {
	Enable bool   `yaml:"enable"`
	I2CBus string `yaml:"i2c_bus"`
	Layout string `yaml:"layout"` // compact, expanded
}

type MQTTConfig struct {
	Enable         bool          `yaml:"enable"`
	Broker         string        `yaml:"broker"`
	ClientID       string        `yaml:"client_id"`
	TopicPrefix    string        `yaml:"topic_prefix"`
	QoS            byte          `yaml:"qos"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type SerialConfig struct {
	Enable   bool   `yaml:"enable"`
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

type WebConfig struct {
	Listen    string `yaml:"listen"`
	StaticDir string `yaml:"static_dir"`
}

// Load reads the YAML configuration file, applies defaults and validates it.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML configuration bytes, applies defaults and validates.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Device.Name == "" {
		c.Device.Name = "Angle Monitor"
	}
	if c.Device.WindowSize == 0 {
		c.Device.WindowSize = 100
	}
	if c.Device.TickInterval == 0 {
		c.Device.TickInterval = 5 * time.Millisecond
	}
	if c.Device.DataFlash == 0 {
		c.Device.DataFlash = 50 * time.Millisecond
	}
	if c.Device.TareFlash == 0 {
		c.Device.TareFlash = 2 * time.Second
	}

	if c.Sensor.Driver == "" {
		c.Sensor.Driver = "mpu9250"
	}
	if c.Sensor.SPIDevice == "" {
		c.Sensor.SPIDevice = "/dev/spidev0.0"
	}
	if c.Sensor.CSPin == "" {
		c.Sensor.CSPin = "GPIO8"
	}
	if c.Sensor.Mock.BatteryRaw == 0 {
		c.Sensor.Mock.BatteryRaw = 420
	}

	if c.Battery.Driver == "" {
		c.Battery.Driver = "none"
	}
	if c.Battery.I2CAddr == 0 {
		c.Battery.I2CAddr = 0x48
	}
	// The ADS1115 is read at its 4.096 V range with a signed 16-bit code;
	// the other defaults describe a 10-bit 3.3 V ADC.
	refVolts, fullScale := 3.3, 1024.0
	if c.Battery.Driver == "ads1115" {
		refVolts, fullScale = 4.096, 32768
	}
	if c.Battery.ReferenceVolts == 0 {
		c.Battery.ReferenceVolts = refVolts
	}
	if c.Battery.FullScale == 0 {
		c.Battery.FullScale = fullScale
	}
	if c.Battery.DividerRatio == 0 {
		c.Battery.DividerRatio = 1510.0 / 510.0
	}

	if c.GPIO.Backend == "" {
		c.GPIO.Backend = "periph"
	}

	if c.Display.Layout == "" {
		c.Display.Layout = "compact"
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = "tcp://localhost:1883"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "anglemonitor/" + slug(c.Device.Name)
	}
	if c.MQTT.ConnectTimeout == 0 {
		c.MQTT.ConnectTimeout = 5 * time.Second
	}

	if c.Serial.Port == "" {
		c.Serial.Port = "/dev/serial0"
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = 115200
	}

	if c.Web.Listen == "" {
		c.Web.Listen = ":8080"
	}
	if c.Web.StaticDir == "" {
		c.Web.StaticDir = "web"
	}
}

// validate checks ranges and the combinations the loop depends on.
func (c *Config) validate() error {
	if c.Device.WindowSize < 1 {
		return fmt.Errorf("device.window_size must be > 0, got %d", c.Device.WindowSize)
	}
	if c.Device.TickInterval < 0 {
		return fmt.Errorf("device.tick_interval must be >= 0")
	}
	if c.Device.DataFlash < 0 || c.Device.TareFlash < 0 || c.Device.AlternateInterval < 0 {
		return fmt.Errorf("device durations must be >= 0")
	}

	switch c.Sensor.Driver {
	case "mpu9250", "mock", "none":
	default:
		return fmt.Errorf("sensor.driver must be mpu9250, mock or none, got %q", c.Sensor.Driver)
	}
	if c.Sensor.AccelRange < 0 || c.Sensor.AccelRange > 3 {
		return fmt.Errorf("sensor.accel_range must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", c.Sensor.AccelRange)
	}
	if c.Sensor.Mock.NoiseG < 0 {
		return fmt.Errorf("sensor.mock.noise_g must be >= 0")
	}

	switch c.Battery.Driver {
	case "ads1115", "none":
	default:
		return fmt.Errorf("battery.driver must be ads1115 or none, got %q", c.Battery.Driver)
	}
	if c.Battery.Channel < 0 || c.Battery.Channel > 3 {
		return fmt.Errorf("battery.channel must be 0-3, got %d", c.Battery.Channel)
	}
	if c.Battery.FullScale < 0 || c.Battery.ReferenceVolts < 0 || c.Battery.DividerRatio < 0 {
		return fmt.Errorf("battery scale values must be > 0")
	}

	switch c.GPIO.Backend {
	case "periph", "gpiocdev", "none":
	default:
		return fmt.Errorf("gpio.backend must be periph, gpiocdev or none, got %q", c.GPIO.Backend)
	}

	switch c.Display.Layout {
	case "compact", "expanded":
	default:
		return fmt.Errorf("display.layout must be compact or expanded, got %q", c.Display.Layout)
	}

	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0-2, got %d", c.MQTT.QoS)
	}
	if strings.HasSuffix(c.MQTT.TopicPrefix, "/") {
		return fmt.Errorf("mqtt.topic_prefix must not end with /")
	}
	if strings.ContainsAny(c.MQTT.TopicPrefix, "#+") {
		return fmt.Errorf("mqtt.topic_prefix must not contain wildcards")
	}

	if c.Serial.Enable && c.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be > 0")
	}
	return nil
}

// slug lowercases name and replaces anything but letters and digits with '-'.
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
