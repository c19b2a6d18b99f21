// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"github.com/relabs-tech/imu_attitude/internal/dmp"
	"github.com/relabs-tech/imu_attitude/internal/mpu6050"
)

// MotionProcessor is the surface of the motion-processing device library
// the session and sampling loop depend on. *mpu6050.Dev implements it; tests
// and the mock console substitute their own.
type MotionProcessor interface {
	Initialize() error
	TestConnection() bool
	// DMPInitialize returns *mpu6050.DMPError on failure.
	DMPInitialize() error
	SetDMPEnabled(enabled bool) error
	IntStatus() (byte, error)
	DMPPacketSize() int

	FIFOCount() (int, error)
	ResetFIFO() error
	FIFOBytes(buf []byte) error
	Decode(packet []byte) (dmp.Quaternion, dmp.YawPitchRoll, error)
}

var _ MotionProcessor = (*mpu6050.Dev)(nil)
