package sensors

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_attitude/internal/dmp"
	"github.com/relabs-tech/imu_attitude/internal/mpu6050"
	"github.com/relabs-tech/imu_attitude/internal/orientation"
)

type fixedSource struct{ pose orientation.Pose }

func (f fixedSource) Next() (orientation.Pose, error) { return f.pose, nil }

func TestMockProcessorQueuesPackets(t *testing.T) {
	clk := clock.NewMock()
	m := NewMockProcessor(fixedSource{}, clk, 10*time.Millisecond)

	clk.Add(time.Second)
	n, err := m.FIFOCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n, "nothing is queued before the DMP is enabled")

	require.NoError(t, m.SetDMPEnabled(true))
	clk.Add(35 * time.Millisecond)
	n, err = m.FIFOCount()
	require.NoError(t, err)
	assert.Equal(t, 3*dmp.PacketSize, n)

	buf := make([]byte, dmp.PacketSize)
	require.NoError(t, m.FIFOBytes(buf))
	n, _ = m.FIFOCount()
	assert.Equal(t, 2*dmp.PacketSize, n)

	clk.Add(5 * time.Millisecond)
	n, _ = m.FIFOCount()
	assert.Equal(t, 3*dmp.PacketSize, n)
}

func TestMockProcessorOverflowAndReset(t *testing.T) {
	clk := clock.NewMock()
	m := NewMockProcessor(fixedSource{}, clk, 0)
	require.NoError(t, m.SetDMPEnabled(true))

	clk.Add(2 * time.Second)
	n, _ := m.FIFOCount()
	assert.Equal(t, mpu6050.FIFOCapacity, n)

	require.NoError(t, m.ResetFIFO())
	n, _ = m.FIFOCount()
	assert.Equal(t, 0, n)
	assert.Error(t, m.FIFOBytes(make([]byte, dmp.PacketSize)))
}

func TestMockProcessorRoundTripsSingleAxis(t *testing.T) {
	for _, pose := range []orientation.Pose{{Yaw: 30}, {Pitch: -25}, {Roll: 40}} {
		clk := clock.NewMock()
		m := NewMockProcessor(fixedSource{pose}, clk, 0)
		require.NoError(t, m.SetDMPEnabled(true))
		clk.Add(DefaultMockPeriod)

		buf := make([]byte, dmp.PacketSize)
		require.NoError(t, m.FIFOBytes(buf))
		_, ypr, err := m.Decode(buf)
		require.NoError(t, err)

		got := orientation.FromRadians(ypr)
		assert.InDelta(t, pose.Yaw, got.Yaw, 0.05)
		assert.InDelta(t, pose.Pitch, got.Pitch, 0.05)
		assert.InDelta(t, pose.Roll, got.Roll, 0.05)
	}
}

func TestMockProcessorDrivesSampler(t *testing.T) {
	clk := clock.NewMock()
	m := NewMockProcessor(fixedSource{orientation.Pose{Yaw: 45}}, clk, 0)
	session := NewSession(m, nil)
	require.NoError(t, session.Open())

	buf := &Buffer{}
	s := NewSampler(session, buf, SamplerOpts{Clock: clk})
	clk.Add(DefaultMockPeriod)

	out, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, OutcomeDecoded, out)
	assert.InDelta(t, 45.0, buf.Attitude().Yaw, 0.05)
}
