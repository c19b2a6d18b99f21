// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"sync"
	"time"

	"github.com/relabs-tech/imu_attitude/internal/dmp"
	"github.com/relabs-tech/imu_attitude/internal/orientation"
)

// Slots of the shared output buffer.
const (
	SlotYaw = iota
	SlotPitch
	SlotRoll
	SlotYawRate
	SlotPitchRate
	SlotRollRate
	numSlots
)

// Sample is one output of the sampling loop.
type Sample struct {
	Attitude   orientation.Pose `json:"attitude"`
	Rotation   orientation.Pose `json:"rotation"`
	Quaternion dmp.Quaternion   `json:"quaternion"`
	Time       time.Time        `json:"time"`
}

// Buffer holds the latest sample as six floats laid out
// [yaw, pitch, roll, yawRate, pitchRate, rollRate]. The sampling loop is the
// only writer; a Store is seen by readers either completely or not at all.
// The zero value is ready to use and reads as all zeros.
type Buffer struct {
	mu    sync.RWMutex
	slots [numSlots]float64
	quat  dmp.Quaternion
	at    time.Time
	n     uint64
}

// Store publishes s.
func (b *Buffer) Store(s Sample) {
	b.mu.Lock()
	b.slots = [numSlots]float64{
		SlotYaw:       s.Attitude.Yaw,
		SlotPitch:     s.Attitude.Pitch,
		SlotRoll:      s.Attitude.Roll,
		SlotYawRate:   s.Rotation.Yaw,
		SlotPitchRate: s.Rotation.Pitch,
		SlotRollRate:  s.Rotation.Roll,
	}
	b.quat = s.Quaternion
	b.at = s.Time
	b.n++
	b.mu.Unlock()
}

// Slots returns a copy of the six floats.
func (b *Buffer) Slots() [numSlots]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.slots
}

// Attitude returns yaw, pitch and roll in degrees.
func (b *Buffer) Attitude() orientation.Pose {
	v := b.Slots()
	return orientation.Pose{Yaw: v[SlotYaw], Pitch: v[SlotPitch], Roll: v[SlotRoll]}
}

// Rotation returns the rates of yaw, pitch and roll in degrees per second.
func (b *Buffer) Rotation() orientation.Pose {
	v := b.Slots()
	return orientation.Pose{Yaw: v[SlotYawRate], Pitch: v[SlotPitchRate], Roll: v[SlotRollRate]}
}

// Quaternion returns the last decoded quaternion.
func (b *Buffer) Quaternion() dmp.Quaternion {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.quat
}

// Latest returns the whole sample and whether anything was stored yet.
func (b *Buffer) Latest() (Sample, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v := b.slots
	return Sample{
		Attitude:   orientation.Pose{Yaw: v[SlotYaw], Pitch: v[SlotPitch], Roll: v[SlotRoll]},
		Rotation:   orientation.Pose{Yaw: v[SlotYawRate], Pitch: v[SlotPitchRate], Roll: v[SlotRollRate]},
		Quaternion: b.quat,
		Time:       b.at,
	}, b.n > 0
}

// Count is the number of samples stored so far.
func (b *Buffer) Count() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.n
}
