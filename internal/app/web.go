// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/imu_attitude/internal/config"
	"github.com/relabs-tech/imu_attitude/internal/orientation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebServer serves the last attitude and rotation received over MQTT.
type WebServer struct {
	data        latest
	streamEvery time.Duration
	staticDir   string
}

// NewWebServer returns a server that pushes frames to websocket clients
// every streamEvery.
func NewWebServer(streamEvery time.Duration, staticDir string) *WebServer {
	return &WebServer{streamEvery: streamEvery, staticDir: staticDir}
}

// Handler routes the JSON API, the websocket stream and the static files.
func (s *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/attitude", s.poseEndpoint(s.data.getAttitude))
	mux.HandleFunc("/api/rotation", s.poseEndpoint(s.data.getRotation))
	mux.HandleFunc("/ws", s.handleStream)
	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
	return mux
}

func (s *WebServer) poseEndpoint(get func() (orientation.Pose, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := get()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(p); err != nil {
			log.Warnf("web: json encode error: %v", err)
		}
	}
}

func (s *WebServer) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are noticed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.streamEvery)
	defer ticker.Stop()
	var last time.Time
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			f, ok := s.data.frame()
			if !ok || !f.Time.After(last) {
				continue
			}
			last = f.Time
			if err := conn.WriteJSON(f); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Warnf("web: websocket error: %v", err)
				}
				return
			}
		}
	}
}

// RunWeb subscribes to the attitude topics and serves them over HTTP until
// ctx is done.
func RunWeb(ctx context.Context, cfg *config.Config) error {
	s := NewWebServer(config.Millis(cfg.WebStreamInterval), "web")

	client, err := connectMQTT(cfg, cfg.MQTTClientIDWeb, "web")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	if err := subscribePoses(client, cfg, "web", s.data.setAttitude, s.data.setRotation); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("web: server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
