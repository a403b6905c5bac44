package app

import (
	"errors"
	"image"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/angle_monitor/internal/config"
	"github.com/relabs-tech/angle_monitor/internal/link"
	"github.com/relabs-tech/angle_monitor/internal/present"
	"github.com/relabs-tech/angle_monitor/internal/sensors"
)

type fakeScreen struct {
	frames int
	lit    int
	err    error
	halted bool
}

func (s *fakeScreen) Bounds() image.Rectangle { return image.Rect(0, 0, 128, 64) }

func (s *fakeScreen) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if s.err != nil {
		return s.err
	}
	s.frames++
	s.lit = 0
	img := src.(*image1bit.VerticalLSB)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.BitAt(x, y) == image1bit.On {
				s.lit++
			}
		}
	}
	return nil
}

func (s *fakeScreen) Halt() error {
	s.halted = true
	return nil
}

func TestDisplay_RendersLayouts(t *testing.T) {
	f := present.NewFrame(present.Reading{Roll: -12.3, Pitch: 45, Battery: 3.7, Valid: true}, present.LinkState{}, present.FieldBattery)

	lit := map[string]int{}
	for _, name := range []string{present.LayoutCompact, present.LayoutExpanded} {
		layout, err := present.LayoutByName(name)
		require.NoError(t, err)
		scr := &fakeScreen{}
		d := newDisplay(scr, layout)

		require.NoError(t, d.Splash("Angle Monitor", "starting"))
		require.NoError(t, d.Render(f))
		require.Equal(t, 2, scr.frames)
		require.Positive(t, scr.lit)
		lit[name] = scr.lit

		require.NoError(t, d.Close())
		require.True(t, scr.halted)
	}
	require.Greater(t, lit[present.LayoutExpanded], lit[present.LayoutCompact])
}

func TestDisplay_RenderError(t *testing.T) {
	layout, _ := present.LayoutByName("")
	d := newDisplay(&fakeScreen{err: errors.New("i2c nack")}, layout)
	err := d.Render(present.Frame{})
	require.ErrorContains(t, err, "i2c nack")
}

func TestParams(t *testing.T) {
	cfg := config.Default()
	cfg.Device.AlternateInterval = 3 * time.Second

	p := Params(cfg)
	require.Equal(t, 100, p.WindowSize)
	require.Equal(t, int64(50), p.DataFlash)
	require.Equal(t, int64(2000), p.TareFlash)
	require.Equal(t, int64(3000), p.Alternate)
	require.Equal(t, 3.3, p.Battery.ReferenceVolts)
	require.Equal(t, 1024.0, p.Battery.FullScale)
}

func TestOpenBattery_MockDoublesAsBattery(t *testing.T) {
	cfg := config.Default()
	mock := sensors.NewMock(config.MockSensorConfig{BatteryRaw: 321})

	b := openBattery(cfg, mock, slog.Default())
	require.Same(t, mock, b)
	raw, err := b.ReadBatteryRaw()
	require.NoError(t, err)
	require.Equal(t, uint16(321), raw)

	require.Nil(t, openBattery(cfg, nil, slog.Default()))

	cfg.Battery.Driver = "ina219"
	require.Nil(t, openBattery(cfg, mock, slog.Default()))
}

func TestFormatUpdate(t *testing.T) {
	require.Equal(t, "[ROLL   ]    12.5 deg", formatUpdate(link.Update{Name: "roll", Text: " 12.5"}))
	require.Equal(t, "[BATTERY]    3.82 V", formatUpdate(link.Update{Name: "battery", Text: "3.82"}))
	require.Equal(t, "[STATUS ] online", formatUpdate(link.Update{Name: "status", Text: "online"}))
}
