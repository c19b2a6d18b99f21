// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/imu_attitude/internal/mpu6050"
)

// ErrNotReady is returned by the sampling loop when the session never
// finished bring-up.
var ErrNotReady = errors.New("sensors: DMP not ready")

// Session owns the motion processor and brings it up once.
type Session struct {
	dev MotionProcessor
	log logrus.FieldLogger

	ready      atomic.Bool
	status     mpu6050.Status
	packetSize int
	intStatus  byte
}

// NewSession wraps dev. A nil logger means the standard logrus logger.
func NewSession(dev MotionProcessor, logger logrus.FieldLogger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Session{dev: dev, log: logger}
}

// Open powers the device, checks connectivity, uploads and enables the DMP
// and records the packet size. A failed connection test is only logged.
// Open must be called once; on error the session stays not ready.
func (s *Session) Open() error {
	s.log.Info("Initializing I2C devices...")
	if err := s.dev.Initialize(); err != nil {
		s.log.Errorf("device initialization failed: %v", err)
		return errors.Wrap(err, "sensors: initialize device")
	}

	s.log.Info("Testing device connections...")
	if s.dev.TestConnection() {
		s.log.Info("MPU6050 connection successful")
	} else {
		s.log.Warn("MPU6050 connection failed")
	}

	s.log.Info("Initializing DMP...")
	if err := s.dev.DMPInitialize(); err != nil {
		var dmpErr *mpu6050.DMPError
		if errors.As(err, &dmpErr) {
			s.status = dmpErr.Status
		} else {
			s.status = mpu6050.StatusMemoryLoadFailed
		}
		s.log.Errorf("DMP Initialization failed (code %d): %v", uint8(s.status), err)
		return errors.Wrap(err, "sensors: DMP bring-up")
	}
	s.status = mpu6050.StatusOK

	s.log.Info("Enabling DMP...")
	if err := s.dev.SetDMPEnabled(true); err != nil {
		s.log.Errorf("enabling DMP failed: %v", err)
		return errors.Wrap(err, "sensors: enable DMP")
	}

	st, err := s.dev.IntStatus()
	if err != nil {
		s.log.Warnf("reading interrupt status failed: %v", err)
	}
	s.intStatus = st

	size := s.dev.DMPPacketSize()
	if size <= 0 {
		return errors.Errorf("sensors: DMP reports packet size %d", size)
	}
	s.packetSize = size

	s.log.Info("DMP ready!")
	s.ready.Store(true)
	return nil
}

// Ready reports whether Open succeeded. It never goes back to false.
func (s *Session) Ready() bool {
	return s.ready.Load()
}

// Status is the last DMP bring-up status.
func (s *Session) Status() mpu6050.Status {
	return s.status
}

// PacketSize is the expected FIFO packet size, valid once Ready.
func (s *Session) PacketSize() int {
	return s.packetSize
}

// IntStatus is the interrupt status read right after the DMP was enabled.
func (s *Session) IntStatus() byte {
	return s.intStatus
}

// Device returns the underlying processor.
func (s *Session) Device() MotionProcessor {
	return s.dev
}
