//go:build linux

package hw

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-gpiocdev"

	"github.com/relabs-tech/angle_monitor/internal/config"
)

type fakeCloser struct{ closed int }

func (c *fakeCloser) Close() error {
	c.closed++
	return nil
}

type fakeLine struct {
	fakeCloser
	value int
}

func (l *fakeLine) Value() (int, error)  { return l.value, nil }
func (l *fakeLine) SetValue(v int) error { l.value = v; return nil }

type fakeChips struct {
	fail  string
	chips map[string]*fakeCloser
	lines map[string]*fakeLine
}

func (f *fakeChips) request(name string, _ ...gpiocdev.LineReqOption) (io.Closer, cdevLine, error) {
	if name == f.fail {
		return nil, nil, errors.New("line busy")
	}
	chip, line := &fakeCloser{}, &fakeLine{}
	f.chips[name], f.lines[name] = chip, line
	return chip, line, nil
}

func TestOpenCdevLines_ReleasesLinesOnLEDFailure(t *testing.T) {
	f := &fakeChips{fail: "GPIO24", chips: map[string]*fakeCloser{}, lines: map[string]*fakeLine{}}
	_, _, err := openCdevLines(config.GPIOConfig{
		ButtonPin:  "GPIO17",
		DataLEDPin: "GPIO23",
		TareLEDPin: "GPIO24",
	}, f.request)
	require.Error(t, err)

	require.Contains(t, f.lines, "GPIO17")
	for name, line := range f.lines {
		require.Equal(t, 1, line.closed, "line %s", name)
		require.Equal(t, 1, f.chips[name].closed, "chip %s", name)
	}
}

func TestOpenCdevLines_ButtonActiveLow(t *testing.T) {
	f := &fakeChips{chips: map[string]*fakeCloser{}, lines: map[string]*fakeLine{}}
	b, ind, err := openCdevLines(config.GPIOConfig{ButtonPin: "GPIO17", TareLEDPin: "GPIO24"}, f.request)
	require.NoError(t, err)

	f.lines["GPIO17"].value = 0
	down, err := b.Pressed()
	require.NoError(t, err)
	require.True(t, down)

	require.NoError(t, ind.Set(TareLED, true))
	require.Equal(t, 0, f.lines["GPIO24"].value)
	require.NoError(t, ind.Close())
	require.Equal(t, 1, f.lines["GPIO24"].closed)
}
