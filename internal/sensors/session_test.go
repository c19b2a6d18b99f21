package sensors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_attitude/internal/mpu6050"
	"github.com/relabs-tech/imu_attitude/internal/sensors/sensorstest"
)

var _ MotionProcessor = (*sensorstest.Processor)(nil)

func hasMessage(hook *test.Hook, level logrus.Level, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

func TestSessionOpen(t *testing.T) {
	dev := sensorstest.New()
	logger, hook := test.NewNullLogger()
	s := NewSession(dev, logger)

	require.NoError(t, s.Open())
	assert.True(t, s.Ready())
	assert.Equal(t, 42, s.PacketSize())
	assert.Equal(t, mpu6050.StatusOK, s.Status())
	assert.Equal(t, byte(0x02), s.IntStatus())
	assert.True(t, dev.DMPEnabled)
	assert.Equal(t, []string{"initialize", "test", "dmp", "enable", "intstatus"}, dev.CallLog())
	assert.True(t, hasMessage(hook, logrus.InfoLevel, "MPU6050 connection successful"))
	assert.True(t, hasMessage(hook, logrus.InfoLevel, "DMP ready!"))
}

func TestSessionConnectionTestIsAdvisory(t *testing.T) {
	dev := sensorstest.New()
	dev.Connected = false
	logger, hook := test.NewNullLogger()
	s := NewSession(dev, logger)

	require.NoError(t, s.Open())
	assert.True(t, s.Ready())
	assert.True(t, hasMessage(hook, logrus.WarnLevel, "MPU6050 connection failed"))
}

func TestSessionDMPFailure(t *testing.T) {
	for _, status := range []mpu6050.Status{mpu6050.StatusMemoryLoadFailed, mpu6050.StatusConfigUpdateFailed} {
		t.Run(status.String(), func(t *testing.T) {
			dev := sensorstest.New()
			dev.DMPErr = &mpu6050.DMPError{Status: status, Err: errors.New("bus said no")}
			logger, hook := test.NewNullLogger()
			s := NewSession(dev, logger)

			err := s.Open()
			require.Error(t, err)
			assert.False(t, s.Ready())
			assert.Equal(t, status, s.Status())
			assert.False(t, dev.DMPEnabled)
			assert.NotContains(t, dev.CallLog(), "enable")
			assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
			assert.Contains(t, hook.LastEntry().Message, "DMP Initialization failed (code")
		})
	}
}

func TestSessionOtherBringUpFailures(t *testing.T) {
	dev := sensorstest.New()
	dev.InitErr = errors.New("no such bus")
	s := NewSession(dev, nil)
	require.Error(t, s.Open())
	assert.False(t, s.Ready())

	dev = sensorstest.New()
	dev.DMPErr = errors.New("plain failure")
	s = NewSession(dev, nil)
	require.Error(t, s.Open())
	assert.Equal(t, mpu6050.StatusMemoryLoadFailed, s.Status())

	dev = sensorstest.New()
	dev.EnableErr = errors.New("stuck")
	s = NewSession(dev, nil)
	require.Error(t, s.Open())
	assert.False(t, s.Ready())

	dev = sensorstest.New()
	dev.PacketSize = 0
	s = NewSession(dev, nil)
	require.Error(t, s.Open())
	assert.False(t, s.Ready())
}
