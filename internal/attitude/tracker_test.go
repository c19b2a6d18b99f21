package attitude

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_attitude/internal/dmp"
	"github.com/relabs-tech/imu_attitude/internal/mpu6050"
	"github.com/relabs-tech/imu_attitude/internal/orientation"
	"github.com/relabs-tech/imu_attitude/internal/sensors"
	"github.com/relabs-tech/imu_attitude/internal/sensors/sensorstest"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func quietOpts() Opts {
	logger, _ := test.NewNullLogger()
	return Opts{Logger: logger}
}

func TestInitializeFailureNeverSamples(t *testing.T) {
	for _, status := range []mpu6050.Status{mpu6050.StatusMemoryLoadFailed, mpu6050.StatusConfigUpdateFailed} {
		dev := sensorstest.New()
		dev.DMPErr = &mpu6050.DMPError{Status: status, Err: errors.New("nak")}
		dev.Counts = []int{42, 42}
		tr := New(dev, quietOpts())

		assert.False(t, tr.Initialize(context.Background()))
		assert.False(t, tr.Ready())
		assert.Equal(t, status, tr.Status())

		time.Sleep(10 * time.Millisecond)
		assert.Equal(t, 0, dev.CountCalls())
		assert.Equal(t, orientation.Pose{}, tr.GetAttitude())
		assert.Equal(t, orientation.Pose{}, tr.GetRotation())
		assert.Equal(t, sensors.Stats{}, tr.Stats())
		require.NoError(t, tr.Close())
	}
}

func TestInitializeSamplesKnownAngles(t *testing.T) {
	want := dmp.YawPitchRoll{Yaw: 0.5, Pitch: -0.25, Roll: 0.125}
	dev := sensorstest.New()
	dev.Counts = []int{0, 42}
	dev.Angles = []dmp.YawPitchRoll{want}
	tr := New(dev, quietOpts())

	require.True(t, tr.Initialize(context.Background()))
	defer tr.Close()

	assert.Eventually(t, func() bool {
		_, ok := tr.Latest()
		return ok
	}, time.Second, time.Millisecond)

	got := tr.GetAttitude()
	assert.InDelta(t, want.Yaw*180/math.Pi, got.Yaw, 1e-9)
	assert.InDelta(t, want.Pitch*180/math.Pi, got.Pitch, 1e-9)
	assert.InDelta(t, want.Roll*180/math.Pi, got.Roll, 1e-9)
	assert.Equal(t, dmp.FromEuler(want), tr.GetQuaternion())
	assert.Equal(t, uint64(1), tr.Stats().Packets)
}

func TestInitializeTwice(t *testing.T) {
	dev := sensorstest.New()
	logger, hook := test.NewNullLogger()
	tr := New(dev, Opts{Logger: logger, PollInterval: time.Millisecond})
	defer tr.Close()

	require.True(t, tr.Initialize(context.Background()))
	assert.True(t, tr.Initialize(context.Background()))

	n := 0
	for _, c := range dev.CallLog() {
		if c == "initialize" {
			n++
		}
	}
	assert.Equal(t, 1, n)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestCloseStopsSampling(t *testing.T) {
	dev := sensorstest.New()
	released := 0
	opts := quietOpts()
	opts.Closer = closerFunc(func() error {
		released++
		return errors.New("bus busy")
	})
	tr := New(dev, opts)
	require.True(t, tr.Initialize(context.Background()))

	assert.Eventually(t, func() bool { return dev.CountCalls() > 3 }, time.Second, time.Millisecond)
	err := tr.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus busy")

	n := dev.CountCalls()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, dev.CountCalls())

	assert.NoError(t, tr.Close())
	assert.Equal(t, 1, released)
}

func TestContextCancelStopsSampling(t *testing.T) {
	dev := sensorstest.New()
	tr := New(dev, quietOpts())
	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, tr.Initialize(ctx))

	assert.Eventually(t, func() bool { return dev.CountCalls() > 0 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, tr.Close())
}

func TestMockProcessorEndToEnd(t *testing.T) {
	src := orientation.NewMockSource(nil)
	tr := New(sensors.NewMockProcessor(src, nil, time.Millisecond), quietOpts())
	require.True(t, tr.Initialize(context.Background()))
	defer tr.Close()

	assert.Eventually(t, func() bool { return tr.Stats().Packets >= 3 }, time.Second, time.Millisecond)
	s, ok := tr.Latest()
	require.True(t, ok)
	assert.False(t, math.IsNaN(s.Attitude.Yaw))
	assert.False(t, math.IsInf(s.Rotation.Yaw, 0))
}
