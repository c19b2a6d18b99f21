package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "imu_attitude_config.txt")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x68), cfg.IMUI2CAddr)
	assert.Equal(t, time.Duration(0), cfg.PollInterval())
	assert.Equal(t, "inertial/attitude", cfg.TopicAttitude)
	assert.Equal(t, uint16(0x3C), cfg.DisplayI2CAddr)
	assert.Zero(t, cfg.MetricsPort)
}

func TestLoadFile(t *testing.T) {
	p := writeConfig(t, `
# IMU
IMU_I2C_BUS=1
IMU_I2C_ADDR=0x69
IMU_DMP_FIRMWARE=/opt/imu/dmp.bin
IMU_POLL_INTERVAL_US=500

MQTT_BROKER=tcp://broker:1883
WEB_SERVER_PORT=9000
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.IMUI2CBus)
	assert.Equal(t, uint16(0x69), cfg.IMUI2CAddr)
	assert.Equal(t, "/opt/imu/dmp.bin", cfg.IMUDMPFirmware)
	assert.Equal(t, 500*time.Microsecond, cfg.PollInterval())
	assert.Equal(t, "tcp://broker:1883", cfg.MQTTBroker)
	assert.Equal(t, 9000, cfg.WebServerPort)
	assert.Equal(t, 50*time.Millisecond, Millis(cfg.PublishInterval))
}

func TestEnvironmentOverridesFile(t *testing.T) {
	p := writeConfig(t, "MQTT_BROKER=tcp://file:1883\n")
	t.Setenv("IMU_ATTITUDE_MQTT_BROKER", "tcp://env:1883")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "tcp://env:1883", cfg.MQTTBroker)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "GPS_BAUD_RATE=9600\n", "unknown config keys: GPS_BAUD_RATE"},
		{"bad address", "IMU_I2C_ADDR=0x70\n", "IMU_I2C_ADDR"},
		{"negative poll", "IMU_POLL_INTERVAL_US=-1\n", "IMU_POLL_INTERVAL_US"},
		{"zero interval", "PUBLISH_INTERVAL=0\n", "PUBLISH_INTERVAL"},
		{"bad port", "WEB_SERVER_PORT=70000\n", "WEB_SERVER_PORT"},
		{"negative metrics port", "METRICS_PORT=-1\n", "METRICS_PORT"},
		{"not a number", "WEB_SERVER_PORT=http\n", "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestYAML(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "MQTT_BROKER: tcp://localhost:1883")
	assert.Contains(t, string(out), "IMU_I2C_ADDR: 104")
}
