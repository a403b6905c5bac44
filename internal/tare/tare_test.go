package tare

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/angle_monitor/internal/orientation"
)

func TestMachine_RequestThenResolve(t *testing.T) {
	var m Machine
	require.Equal(t, Idle, m.State())

	require.True(t, m.Request(Button))
	require.True(t, m.Pending())
	require.Equal(t, Button, m.Source())

	require.True(t, m.Resolve(orientation.Pose{Roll: 4.2, Pitch: -1.5}))
	require.Equal(t, Idle, m.State())
	require.Equal(t, None, m.Source())
	require.Equal(t, orientation.Offset{Roll: 4.2, Pitch: -1.5}, m.Offset())
}

func TestMachine_SecondRequestIgnored(t *testing.T) {
	var m Machine
	require.True(t, m.Request(Remote))
	require.False(t, m.Request(Button))
	require.Equal(t, Remote, m.Source(), "first request keeps ownership")

	require.True(t, m.Resolve(orientation.Pose{Roll: 1}))
	require.False(t, m.Resolve(orientation.Pose{Roll: 2}), "only one application")
	require.Equal(t, 1.0, m.Offset().Roll)
}

func TestMachine_ResolveWithoutRequest(t *testing.T) {
	var m Machine
	require.False(t, m.Resolve(orientation.Pose{Roll: 30}))
	require.Equal(t, orientation.Offset{}, m.Offset())
}

func TestMachine_RetareReplacesOffset(t *testing.T) {
	var m Machine
	m.Request(Button)
	m.Resolve(orientation.Pose{Roll: 10, Pitch: 10})
	m.Request(Button)
	m.Resolve(orientation.Pose{Roll: -5, Pitch: 0})
	require.Equal(t, orientation.Offset{Roll: -5, Pitch: 0}, m.Offset())
}
