// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/imu_attitude/internal/attitude"
	"github.com/relabs-tech/imu_attitude/internal/config"
	"github.com/relabs-tech/imu_attitude/internal/orientation"
	"github.com/relabs-tech/imu_attitude/internal/sensors"
)

// Frame is one combined attitude and rotation sample as seen by subscribers.
type Frame struct {
	Attitude orientation.Pose `json:"attitude"`
	Rotation orientation.Pose `json:"rotation"`
	Time     time.Time        `json:"time"`
}

// latest keeps the last attitude and rotation received over MQTT.
type latest struct {
	mu           sync.RWMutex
	attitude     orientation.Pose
	rotation     orientation.Pose
	haveAttitude bool
	haveRotation bool
	updated      time.Time
}

func (l *latest) setAttitude(p orientation.Pose) {
	l.mu.Lock()
	l.attitude = p
	l.haveAttitude = true
	l.updated = time.Now()
	l.mu.Unlock()
}

func (l *latest) setRotation(p orientation.Pose) {
	l.mu.Lock()
	l.rotation = p
	l.haveRotation = true
	l.updated = time.Now()
	l.mu.Unlock()
}

func (l *latest) getAttitude() (orientation.Pose, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.attitude, l.haveAttitude
}

func (l *latest) getRotation() (orientation.Pose, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rotation, l.haveRotation
}

// frame reports false until an attitude has arrived.
func (l *latest) frame() (Frame, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Frame{Attitude: l.attitude, Rotation: l.rotation, Time: l.updated}, l.haveAttitude
}

// poseHandler decodes a Pose payload and hands it to set.
func poseHandler(component, what string, set func(orientation.Pose)) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Warnf("%s: %s unmarshal error: %v", component, what, err)
			return
		}
		set(p)
	}
}

// connectMQTT connects to the configured broker with clientID.
func connectMQTT(cfg *config.Config, clientID, component string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrap(token.Error(), "MQTT connect")
	}
	log.Infof("%s: connected to MQTT broker at %s", component, cfg.MQTTBroker)
	return client, nil
}

// subscribePoses subscribes to the attitude and rotation topics.
func subscribePoses(client mqtt.Client, cfg *config.Config, component string, onAttitude, onRotation func(orientation.Pose)) error {
	for _, s := range []struct {
		topic, what string
		set         func(orientation.Pose)
	}{
		{cfg.TopicAttitude, "attitude", onAttitude},
		{cfg.TopicRotation, "rotation", onRotation},
	} {
		token := client.Subscribe(s.topic, 0, poseHandler(component, s.what, s.set))
		token.Wait()
		if token.Error() != nil {
			return errors.Wrapf(token.Error(), "subscribe %s", s.topic)
		}
		log.Infof("%s: subscribed to %s", component, s.topic)
	}
	return nil
}

// openTracker builds a tracker over the real IMU or, with mock set, over a
// synthetic motion processor.
func openTracker(cfg *config.Config, mock bool) (*attitude.Tracker, error) {
	opts := attitude.Opts{PollInterval: cfg.PollInterval()}
	if mock {
		log.Info("using mock motion processor")
		return attitude.New(sensors.NewMockProcessor(nil, nil, sensors.DefaultMockPeriod), opts), nil
	}
	dev, bus, err := sensors.OpenIMU(cfg)
	if err != nil {
		return nil, err
	}
	opts.Closer = bus
	return attitude.New(dev, opts), nil
}
