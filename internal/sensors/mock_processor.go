// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/relabs-tech/imu_attitude/internal/dmp"
	"github.com/relabs-tech/imu_attitude/internal/mpu6050"
	"github.com/relabs-tech/imu_attitude/internal/orientation"
)

// DefaultMockPeriod matches the 100 Hz FIFO rate the DMP is configured for.
const DefaultMockPeriod = 10 * time.Millisecond

// MockProcessor is a MotionProcessor with no chip behind it. Once the DMP is
// enabled it queues one packet per period, encoding the pose the source
// reports at read time.
type MockProcessor struct {
	mu      sync.Mutex
	src     orientation.Source
	clk     clock.Clock
	period  time.Duration
	enabled bool
	last    time.Time
	queued  int
}

var _ MotionProcessor = (*MockProcessor)(nil)

// NewMockProcessor returns a synthetic processor fed by src. A nil clock
// means wall time; a non-positive period means DefaultMockPeriod.
func NewMockProcessor(src orientation.Source, clk clock.Clock, period time.Duration) *MockProcessor {
	if clk == nil {
		clk = clock.New()
	}
	if src == nil {
		src = orientation.NewMockSource(clk)
	}
	if period <= 0 {
		period = DefaultMockPeriod
	}
	return &MockProcessor{src: src, clk: clk, period: period}
}

func (m *MockProcessor) Initialize() error    { return nil }
func (m *MockProcessor) TestConnection() bool { return true }
func (m *MockProcessor) DMPInitialize() error { return nil }
func (m *MockProcessor) DMPPacketSize() int   { return dmp.PacketSize }

func (m *MockProcessor) SetDMPEnabled(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
	m.last = m.clk.Now()
	m.queued = 0
	return nil
}

// IntStatus reports the DMP interrupt bit once enabled.
func (m *MockProcessor) IntStatus() (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return 0, nil
	}
	return 0x02, nil
}

func (m *MockProcessor) FIFOCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fill()
	n := m.queued * dmp.PacketSize
	if n > mpu6050.FIFOCapacity {
		n = mpu6050.FIFOCapacity
	}
	return n, nil
}

func (m *MockProcessor) ResetFIFO() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = 0
	m.last = m.clk.Now()
	return nil
}

func (m *MockProcessor) FIFOBytes(buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fill()
	if m.queued == 0 {
		return errors.New("sensors: mock FIFO is empty")
	}
	p, err := m.src.Next()
	if err != nil {
		return errors.Wrap(err, "sensors: mock source")
	}
	for i := range buf {
		buf[i] = 0
	}
	// The DMP reports yaw and pitch mirrored, so feed them in negated.
	r := p.Radians()
	q := dmp.FromEuler(dmp.YawPitchRoll{Yaw: -r.Yaw, Pitch: -r.Pitch, Roll: r.Roll})
	if err := dmp.EncodeQuaternion(buf, q); err != nil {
		return err
	}
	m.queued--
	return nil
}

func (m *MockProcessor) Decode(packet []byte) (dmp.Quaternion, dmp.YawPitchRoll, error) {
	return dmp.Decode(packet)
}

// fill queues the packets produced since the last call. Callers hold mu.
func (m *MockProcessor) fill() {
	if !m.enabled {
		return
	}
	n := int(m.clk.Now().Sub(m.last) / m.period)
	if n <= 0 {
		return
	}
	m.last = m.last.Add(time.Duration(n) * m.period)
	m.queued += n
	if limit := mpu6050.FIFOCapacity/dmp.PacketSize + 1; m.queued > limit {
		m.queued = limit
	}
}
