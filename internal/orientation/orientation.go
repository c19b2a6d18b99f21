// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"time"

	"github.com/relabs-tech/imu_attitude/internal/dmp"
)

// Pose is the canonical three-axis record of the app. It carries attitude
// in degrees or, for rotation, degrees per second.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time.
type Source interface {
	Next() (Pose, error)
}

// FromRadians converts a DMP yaw/pitch/roll triple to a Pose in degrees.
func FromRadians(e dmp.YawPitchRoll) Pose {
	d := e.Degrees()
	return Pose{Roll: d.Roll, Pitch: d.Pitch, Yaw: d.Yaw}
}

// Radians is the inverse of FromRadians.
func (p Pose) Radians() dmp.YawPitchRoll {
	return dmp.YawPitchRoll{Yaw: p.Yaw, Pitch: p.Pitch, Roll: p.Roll}.Radians()
}

// Rates returns the per-axis rate of change between two poses taken dt
// apart. ok is false when dt is not positive; no division happens then.
func Rates(prev, cur Pose, dt time.Duration) (rate Pose, ok bool) {
	if dt <= 0 {
		return Pose{}, false
	}
	s := dt.Seconds()
	return Pose{
		Roll:  (cur.Roll - prev.Roll) / s,
		Pitch: (cur.Pitch - prev.Pitch) / s,
		Yaw:   (cur.Yaw - prev.Yaw) / s,
	}, true
}
