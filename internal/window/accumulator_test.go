package window

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/angle_monitor/internal/imu"
)

func TestAccumulator_CompletesExactlyAtSize(t *testing.T) {
	acc := New(5)
	s := imu.Sample{Ax: 0.1, Ay: 0.2, Az: 0.9, BatteryRaw: 600}

	for i := 1; i < 5; i++ {
		require.Equal(t, Incomplete, acc.Add(s), "sample %d", i)
		require.False(t, acc.Complete())
	}
	require.Equal(t, Complete, acc.Add(s))
	require.True(t, acc.Complete())
	require.Equal(t, 5, acc.Count())
}

func TestAccumulator_RefusesSamplesWhenFull(t *testing.T) {
	acc := New(2)
	acc.Add(imu.Sample{Az: 1})
	acc.Add(imu.Sample{Az: 1})

	require.Equal(t, Complete, acc.Add(imu.Sample{Az: 100}))
	require.Equal(t, 2, acc.Count())

	w := acc.Drain()
	require.Equal(t, 2.0, w.SumZ)
}

func TestAccumulator_DrainResets(t *testing.T) {
	acc := New(3)
	for i := 0; i < 3; i++ {
		acc.Add(imu.Sample{Ax: 1, Ay: 2, Az: 3, BatteryRaw: 10})
	}

	w := acc.Drain()
	require.Equal(t, Window{SumX: 3, SumY: 6, SumZ: 9, SumBattery: 30, Count: 3}, w)
	require.Equal(t, 0, acc.Count())
	require.False(t, acc.Complete())

	// a fresh window needs the full count again
	for i := 1; i < 3; i++ {
		require.Equal(t, Incomplete, acc.Add(imu.Sample{}))
	}
	require.Equal(t, Complete, acc.Add(imu.Sample{}))
}

func TestAccumulator_ZeroValueUsesDefaultSize(t *testing.T) {
	var acc Accumulator
	for i := 1; i < DefaultSize; i++ {
		require.Equal(t, Incomplete, acc.Add(imu.Sample{}))
	}
	require.Equal(t, Complete, acc.Add(imu.Sample{}))
}

func TestWindow_Mean(t *testing.T) {
	w := Window{SumX: 2, SumY: 4, SumZ: -6, SumBattery: 1200, Count: 2}
	x, y, z, b := w.Mean()
	require.Equal(t, 1.0, x)
	require.Equal(t, 2.0, y)
	require.Equal(t, -3.0, z)
	require.Equal(t, 600.0, b)

	x, y, z, b = Window{}.Mean()
	require.Zero(t, x+y+z+b)
}
