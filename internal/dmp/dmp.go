// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package dmp decodes the output packets of the InvenSense digital motion
// processor (MotionApps 2.0 layout) into a quaternion, a gravity vector and
// yaw/pitch/roll angles.
package dmp

import (
	"encoding/binary"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// PacketSize is the length of one MotionApps 2.0 FIFO record.
const PacketSize = 42

// quaternionScale maps the Q14 fixed-point quaternion words to unit range.
const quaternionScale = 16384.0

// ErrShortPacket is returned when a packet is too small to hold a quaternion.
var ErrShortPacket = errors.New("dmp: packet too short for quaternion")

// Quaternion is the rotation computed on-chip by the DMP.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// YawPitchRoll holds Euler angles in radians.
type YawPitchRoll struct {
	Yaw   float64
	Pitch float64
	Roll  float64
}

// Degrees converts the angles to degrees.
func (e YawPitchRoll) Degrees() YawPitchRoll {
	return YawPitchRoll{
		Yaw:   e.Yaw * 180 / math.Pi,
		Pitch: e.Pitch * 180 / math.Pi,
		Roll:  e.Roll * 180 / math.Pi,
	}
}

// QuaternionFromPacket extracts the quaternion from a DMP packet. The DMP
// writes each component as a 32-bit big-endian word; only the high 16 bits
// carry the Q14 value.
func QuaternionFromPacket(packet []byte) (Quaternion, error) {
	if len(packet) < 16 {
		return Quaternion{}, errors.Wrapf(ErrShortPacket, "got %d bytes", len(packet))
	}
	word := func(off int) float64 {
		return float64(int16(binary.BigEndian.Uint16(packet[off:]))) / quaternionScale
	}
	return Quaternion{
		W: word(0),
		X: word(4),
		Y: word(8),
		Z: word(12),
	}, nil
}

// Gravity returns the direction of gravity in the sensor frame implied by q.
func Gravity(q Quaternion) r3.Vector {
	return r3.Vector{
		X: 2 * (q.X*q.Z - q.W*q.Y),
		Y: 2 * (q.W*q.X + q.Y*q.Z),
		Z: q.W*q.W - q.X*q.X - q.Y*q.Y + q.Z*q.Z,
	}
}

// EulerAngles returns yaw, pitch and roll in radians. Pitch and roll come
// from the gravity vector, so they stay within ±π/2.
func EulerAngles(q Quaternion, g r3.Vector) YawPitchRoll {
	return YawPitchRoll{
		Yaw:   math.Atan2(2*q.X*q.Y-2*q.W*q.Z, 2*q.W*q.W+2*q.X*q.X-1),
		Pitch: math.Atan(g.X / math.Sqrt(g.Y*g.Y+g.Z*g.Z)),
		Roll:  math.Atan(g.Y / math.Sqrt(g.X*g.X+g.Z*g.Z)),
	}
}

// Decode runs the full packet to Euler pipeline.
func Decode(packet []byte) (Quaternion, YawPitchRoll, error) {
	q, err := QuaternionFromPacket(packet)
	if err != nil {
		return Quaternion{}, YawPitchRoll{}, err
	}
	return q, EulerAngles(q, Gravity(q)), nil
}

// EncodeQuaternion writes q into the first 16 bytes of packet using the DMP
// layout. It is used by synthetic processors that have no chip behind them.
func EncodeQuaternion(packet []byte, q Quaternion) error {
	if len(packet) < 16 {
		return errors.Wrapf(ErrShortPacket, "got %d bytes", len(packet))
	}
	put := func(off int, v float64) {
		binary.BigEndian.PutUint32(packet[off:], uint32(int32(int16(math.Round(v*quaternionScale))))<<16)
	}
	put(0, q.W)
	put(4, q.X)
	put(8, q.Y)
	put(12, q.Z)
	return nil
}

// FromEuler builds a quaternion from aerospace ZYX angles in radians. The
// DMP reports yaw and pitch with the opposite sign, so EulerAngles of the
// result negates those two axes for single-axis rotations.
func FromEuler(e YawPitchRoll) Quaternion {
	cy, sy := math.Cos(e.Yaw/2), math.Sin(e.Yaw/2)
	cp, sp := math.Cos(e.Pitch/2), math.Sin(e.Pitch/2)
	cr, sr := math.Cos(e.Roll/2), math.Sin(e.Roll/2)
	return Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
}

// Radians converts angles given in degrees back to radians.
func (e YawPitchRoll) Radians() YawPitchRoll {
	return YawPitchRoll{
		Yaw:   e.Yaw * math.Pi / 180,
		Pitch: e.Pitch * math.Pi / 180,
		Roll:  e.Roll * math.Pi / 180,
	}
}
