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

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/imu_attitude/internal/attitude"
	"github.com/relabs-tech/imu_attitude/internal/config"
	"github.com/relabs-tech/imu_attitude/internal/sensors"
)

// publisher is the part of mqtt.Client the producer needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// publishSample publishes attitude, rotation and quaternion as retained JSON.
func publishSample(p publisher, cfg *config.Config, s sensors.Sample) error {
	for _, m := range []struct {
		topic string
		v     interface{}
	}{
		{cfg.TopicAttitude, s.Attitude},
		{cfg.TopicRotation, s.Rotation},
		{cfg.TopicQuaternion, s.Quaternion},
	} {
		payload, err := json.Marshal(m.v)
		if err != nil {
			return errors.Wrapf(err, "json marshal (%s)", m.topic)
		}
		if token := p.Publish(m.topic, 0, true, payload); token.Wait() && token.Error() != nil {
			return errors.Wrapf(token.Error(), "MQTT publish error (%s)", m.topic)
		}
	}
	return nil
}

// logTick writes the periodic status line.
func logTick(logger log.FieldLogger, t time.Time, tr *attitude.Tracker) {
	att, rot, st := tr.GetAttitude(), tr.GetRotation(), tr.Stats()
	logger.WithFields(log.Fields{
		"packets":   st.Packets,
		"overflows": st.Overflows,
		"errors":    st.Errors,
		"fifo":      st.FIFOCount,
	}).Infof("%s tick: att Y=%.2f P=%.2f R=%.2f | rot Y=%.2f P=%.2f R=%.2f",
		t.Format(time.RFC3339),
		att.Yaw, att.Pitch, att.Roll,
		rot.Yaw, rot.Pitch, rot.Roll,
	)
}

// metricsHandler serves the tracker's collector on its own registry.
func metricsHandler(tr *attitude.Tracker) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(attitude.NewCollector(tr)); err != nil {
		return nil, errors.Wrap(err, "register collector")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux, nil
}

// serveMetrics exposes /metrics on port until ctx is done.
func serveMetrics(ctx context.Context, port int, tr *attitude.Tracker) error {
	h, err := metricsHandler(tr)
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: h}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		log.Infof("producer: metrics on http://0.0.0.0:%d/metrics", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("producer: metrics server: %v", err)
		}
	}()
	return nil
}

// RunAttitudeProducer samples the IMU and publishes the latest sample to
// MQTT every PUBLISH_INTERVAL until ctx is done.
func RunAttitudeProducer(ctx context.Context, cfg *config.Config, mock bool) error {
	log.Info("starting attitude producer")

	tr, err := openTracker(cfg, mock)
	if err != nil {
		return err
	}
	defer func() {
		if err := tr.Close(); err != nil {
			log.Warnf("producer: close: %v", err)
		}
	}()
	if !tr.Initialize(ctx) {
		return errors.Errorf("IMU bring-up failed (%s)", tr.Status())
	}

	if cfg.MetricsPort > 0 {
		if err := serveMetrics(ctx, cfg.MetricsPort, tr); err != nil {
			return err
		}
	}

	client, err := connectMQTT(cfg, cfg.MQTTClientIDProducer, "producer")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Info("producer: starting publish loop")

	publish := time.NewTicker(config.Millis(cfg.PublishInterval))
	defer publish.Stop()
	status := time.NewTicker(config.Millis(cfg.ConsoleLogInterval))
	defer status.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("producer: shutting down")
			return nil
		case <-publish.C:
			s, ok := tr.Latest()
			if !ok {
				continue
			}
			if err := publishSample(client, cfg, s); err != nil {
				log.Warnf("producer: %v", err)
			}
		case t := <-status.C:
			logTick(log.StandardLogger(), t, tr)
		}
	}
}
