package present

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		v           float64
		width, prec int
		want        string
	}{
		{0, 5, 1, "  0.0"},
		{12.345, 5, 1, " 12.3"},
		{-179.96, 5, 1, "-180.0"},
		{3.9, 4, 2, "3.90"},
		{math.NaN(), 5, 1, "  N/A"},
		{math.Inf(-1), 4, 2, " N/A"},
		{math.Copysign(0, -1), 5, 1, "  0.0"},
		{-0.04, 5, 1, "  0.0"},
		{-0.004, 4, 2, "0.00"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Format(tc.v, tc.width, tc.prec))
	}
}

func TestReadingTexts(t *testing.T) {
	r := Reading{Roll: -4.26, Pitch: 90, Battery: 4.087, Valid: true}
	require.Equal(t, " -4.3", r.RollText())
	require.Equal(t, " 90.0", r.PitchText())
	require.Equal(t, "4.09", r.BatteryText())

	require.Equal(t, "  N/A", Reading{}.RollText())
	require.Equal(t, "  N/A", Reading{Pitch: 3}.PitchText())
	require.Equal(t, " N/A", Reading{Battery: 3.7, NoBattery: true}.BatteryText())
}

func TestFrame_SecondaryText(t *testing.T) {
	f := NewFrame(Reading{Battery: 3.7, Valid: true}, LinkState{}, FieldBattery)
	require.Equal(t, "Battery: 3.70 V", f.SecondaryText())
	require.Equal(t, "Battery: N/A", NewFrame(Reading{NoBattery: true}, LinkState{}, FieldBattery).SecondaryText())

	f.Secondary = FieldLink
	require.Equal(t, "Link: waiting", f.SecondaryText())

	f.Link = LinkState{Connected: true, Peer: "tcp://broker:1883"}
	require.Equal(t, "Link: tcp://broker:1883", f.SecondaryText())

	require.Equal(t, FieldLink, FieldBattery.Next())
	require.Equal(t, FieldBattery, FieldLink.Next())
}

type recordingNotifier struct {
	got map[Characteristic]string
	err error
}

func (n *recordingNotifier) Notify(c Characteristic, text string) error {
	if n.got == nil {
		n.got = map[Characteristic]string{}
	}
	n.got[c] = text
	return n.err
}

type recordingRenderer struct {
	frames []Frame
	err    error
}

func (r *recordingRenderer) Render(f Frame) error {
	r.frames = append(r.frames, f)
	return r.err
}

func TestAdapter_NotifiesOnlyWhenConnected(t *testing.T) {
	n := &recordingNotifier{}
	rr := &recordingRenderer{}
	a := &Adapter{Notifier: n, Renderers: []Renderer{rr}}

	a.Publish(Reading{Roll: 1, Pitch: 2, Battery: 3, Valid: true}, LinkState{}, FieldBattery)
	require.Empty(t, n.got)
	require.Len(t, rr.frames, 1)

	a.Publish(Reading{Roll: 1, Pitch: 2, Battery: 3, Valid: true}, LinkState{Connected: true}, FieldBattery)
	require.Equal(t, map[Characteristic]string{
		Roll:    "  1.0",
		Pitch:   "  2.0",
		Battery: "3.00",
	}, n.got)
	require.Len(t, rr.frames, 2)
}

func TestAdapter_SinkErrorsDoNotStopOthers(t *testing.T) {
	bad := &recordingRenderer{err: errors.New("i2c nack")}
	good := &recordingRenderer{}
	a := &Adapter{
		Notifier:  &recordingNotifier{err: errors.New("not connected")},
		Renderers: []Renderer{bad, good},
	}
	a.Publish(Reading{Valid: true}, LinkState{Connected: true}, FieldBattery)
	require.Len(t, good.frames, 1)
}

func TestAdapter_RefreshBeforeData(t *testing.T) {
	rr := &recordingRenderer{}
	a := &Adapter{Renderers: []Renderer{rr}}
	a.Refresh(LinkState{Connected: true, Peer: "p"}, FieldLink)

	require.Len(t, rr.frames, 1)
	f := rr.frames[0]
	require.Equal(t, "  N/A", f.Roll)
	require.False(t, f.HaveData)
	require.Equal(t, "Link: p", f.SecondaryText())

	a.Refresh(LinkState{}, FieldBattery)
	require.Equal(t, "Battery: N/A", rr.frames[1].SecondaryText())
}

func litPixels(img *image.Gray) int {
	n := 0
	for _, p := range img.Pix {
		if p > 127 {
			n++
		}
	}
	return n
}

func TestLayouts(t *testing.T) {
	f := NewFrame(Reading{Roll: -12.3, Pitch: 45.6, Battery: 3.95, Valid: true}, LinkState{}, FieldBattery)

	compact, err := LayoutByName("compact")
	require.NoError(t, err)
	expanded, err := LayoutByName("expanded")
	require.NoError(t, err)
	require.Equal(t, LayoutCompact, compact.Name())
	require.Equal(t, LayoutExpanded, expanded.Name())

	a := image.NewGray(image.Rect(0, 0, 128, 64))
	b := image.NewGray(image.Rect(0, 0, 128, 64))
	compact.Draw(a, f)
	expanded.Draw(b, f)

	require.Positive(t, litPixels(a))
	require.Greater(t, litPixels(b), litPixels(a), "double-size digits light more pixels")

	// redrawing clears the previous frame
	compact.Draw(b, f)
	require.Equal(t, a.Pix, b.Pix)

	_, err = LayoutByName("huge")
	require.Error(t, err)
}

func TestDrawSplash(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 128, 64))
	DrawSplash(img, "Angle Monitor", "starting")
	require.Positive(t, litPixels(img))
}
