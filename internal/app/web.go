// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/angle_monitor/internal/config"
	"github.com/relabs-tech/angle_monitor/internal/link"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served on the local network
	},
}

// Dashboard bridges the angle monitor service to HTTP.
type Dashboard struct {
	hub       *Hub
	tare      func() error
	staticDir string
	log       *slog.Logger

	mu   sync.Mutex
	snap Snapshot
	now  func() time.Time
}

// NewDashboard creates a dashboard. tare sends a tare request to the
// device; staticDir is served at the root when not empty.
func NewDashboard(tare func() error, staticDir string, log *slog.Logger) *Dashboard {
	if log == nil {
		log = slog.Default()
	}
	return &Dashboard{
		hub:       NewHub(),
		tare:      tare,
		staticDir: staticDir,
		log:       log,
		now:       time.Now,
	}
}

// Apply folds one update from the device into the snapshot.
func (d *Dashboard) Apply(u link.Update) {
	d.mu.Lock()
	s := d.snap
	switch u.Name {
	case "roll":
		s.Roll = value(u)
	case "pitch":
		s.Pitch = value(u)
	case "battery":
		s.Battery = value(u)
	case "tare":
		s.Tare = u.Text
	case "status":
		s.Status = u.Text
	default:
		d.mu.Unlock()
		return
	}
	s.Updated = d.now().UTC()
	d.snap = s
	d.mu.Unlock()

	d.hub.Publish(s)
}

func value(u link.Update) *float64 {
	v, ok := u.Value()
	if !ok {
		return nil
	}
	return &v
}

// Handler returns the HTTP routes.
func (d *Dashboard) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orientation", d.handleOrientation)
	mux.HandleFunc("POST /api/tare", d.handleTare)
	mux.HandleFunc("GET /ws", d.handleWS)
	if d.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(d.staticDir)))
	}
	return mux
}

func (d *Dashboard) handleOrientation(w http.ResponseWriter, r *http.Request) {
	s, ok := d.hub.Last()
	if !ok || !s.HaveData() {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s); err != nil {
		d.log.Warn("web: json encode error", "err", err)
	}
}

func (d *Dashboard) handleTare(w http.ResponseWriter, r *http.Request) {
	if d.tare == nil {
		http.Error(w, "tare not available", http.StatusServiceUnavailable)
		return
	}
	if err := d.tare(); err != nil {
		d.log.Warn("web: tare request failed", "err", err)
		http.Error(w, "tare request failed", http.StatusBadGateway)
		return
	}
	d.log.Info("web: tare requested", "remote", r.RemoteAddr)
	w.WriteHeader(http.StatusAccepted)
}

func (d *Dashboard) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.log.Warn("web: websocket upgrade error", "err", err)
		return
	}
	defer conn.Close()

	id, ch := d.hub.Subscribe(4)
	defer d.hub.Unsubscribe(id)

	// The client never sends anything; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					d.log.Warn("web: websocket error", "err", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case s := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(s); err != nil {
				return
			}
		}
	}
}

// RunWeb serves the dashboard for the device configured in cfg until ctx
// is done.
func RunWeb(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	client, err := link.DialClient(link.ClientOptions{
		Broker:      cfg.MQTT.Broker,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		QoS:         cfg.MQTT.QoS,
		Timeout:     cfg.MQTT.ConnectTimeout,
	}, log)
	if err != nil {
		return err
	}
	defer client.Close()

	dash := NewDashboard(client.RequestTare, cfg.Web.StaticDir, log)
	if err := client.Subscribe(dash.Apply); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Web.Listen,
		Handler:           dash.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("web: server listening", "addr", cfg.Web.Listen, "static", cfg.Web.StaticDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
