package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/angle_monitor/internal/link"
)

func TestDashboard_OrientationBeforeData(t *testing.T) {
	d := NewDashboard(nil, "", nil)
	srv := httptest.NewServer(d.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/orientation")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// Status alone is not data.
	d.Apply(link.Update{Name: "status", Text: link.StatusOnline})
	resp, err = http.Get(srv.URL + "/api/orientation")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDashboard_Orientation(t *testing.T) {
	d := NewDashboard(nil, "", nil)
	d.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	srv := httptest.NewServer(d.Handler())
	t.Cleanup(srv.Close)

	d.Apply(link.Update{Name: "roll", Text: " 12.5"})
	d.Apply(link.Update{Name: "pitch", Text: "  N/A"})
	d.Apply(link.Update{Name: "battery", Text: "3.82"})
	d.Apply(link.Update{Name: "bogus", Text: "1"})

	resp, err := http.Get(srv.URL + "/api/orientation")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, 12.5, got["roll"])
	require.Nil(t, got["pitch"])
	require.Equal(t, 3.82, got["battery"])
	require.Equal(t, "2026-01-02T03:04:05Z", got["updated"])
}

func TestDashboard_Tare(t *testing.T) {
	calls := 0
	fail := false
	d := NewDashboard(func() error {
		calls++
		if fail {
			return errors.New("broker gone")
		}
		return nil
	}, "", nil)
	srv := httptest.NewServer(d.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/api/tare", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, 1, calls)

	fail = true
	resp, err = http.Post(srv.URL+"/api/tare", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/tare")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, 2, calls)
}

func TestDashboard_TareUnavailable(t *testing.T) {
	srv := httptest.NewServer(NewDashboard(nil, "", nil).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/api/tare", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDashboard_WebSocketStream(t *testing.T) {
	d := NewDashboard(nil, "", nil)
	d.Apply(link.Update{Name: "roll", Text: "  1.0"})

	srv := httptest.NewServer(d.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// Last value first.
	var s Snapshot
	require.NoError(t, conn.ReadJSON(&s))
	require.NotNil(t, s.Roll)
	require.Equal(t, 1.0, *s.Roll)

	d.Apply(link.Update{Name: "pitch", Text: " -2.5"})
	require.NoError(t, conn.ReadJSON(&s))
	require.Equal(t, 1.0, *s.Roll)
	require.NotNil(t, s.Pitch)
	require.Equal(t, -2.5, *s.Pitch)
}

func TestDashboard_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Angle Monitor</h1>"), 0o644))

	srv := httptest.NewServer(NewDashboard(nil, dir, nil).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(1)

	for i := 0; i < 10; i++ {
		v := float64(i)
		h.Publish(Snapshot{Roll: &v})
	}
	s := <-ch
	require.Equal(t, 0.0, *s.Roll)

	last, ok := h.Last()
	require.True(t, ok)
	require.Equal(t, 9.0, *last.Roll)

	h.Unsubscribe(id)
	_, open := <-ch
	require.False(t, open)
}

func TestHub_SubscribeDuringPublishes(t *testing.T) {
	h := NewHub()
	v := 1.0
	h.Publish(Snapshot{Roll: &v})

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					h.Publish(Snapshot{Roll: &v})
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			_, ch := h.Subscribe(1)
			if s := <-ch; s.Roll == nil {
				t.Error("seeded snapshot has no roll")
				return
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Subscribe blocked while publishing")
	}
	close(stop)
	wg.Wait()
}
