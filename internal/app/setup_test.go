package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "warn")
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("device: shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "device: shown")

	_, err = NewLogger(&buf, "loud")
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "anglemonitor/angle-monitor", cfg.MQTT.TopicPrefix)

	path := filepath.Join(t.TempDir(), "angle_monitor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("device:\n  name: Bench Rig\nsensor:\n  driver: mock\n"), 0o644))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "mock", cfg.Sensor.Driver)
	require.Equal(t, "anglemonitor/bench-rig", cfg.MQTT.TopicPrefix)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
