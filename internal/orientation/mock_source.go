// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/benbjohnson/clock"
)

type mockSource struct {
	clk   clock.Clock
	start int64
}

// NewMockSource creates a mock orientation source that generates smooth
// changing values. Yaw sweeps at 30°/s and wraps within ±180°.
func NewMockSource(clk clock.Clock) Source {
	if clk == nil {
		clk = clock.New()
	}
	return &mockSource{clk: clk, start: clk.Now().UnixNano()}
}

func (m *mockSource) Next() (Pose, error) {
	elapsed := float64(m.clk.Now().UnixNano()-m.start) / 1e9

	return Pose{
		Roll:  20 * math.Sin(elapsed),
		Pitch: 15 * math.Cos(elapsed*0.7),
		Yaw:   math.Remainder(elapsed*30, 360),
	}, nil
}
