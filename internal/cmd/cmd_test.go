package cmd

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_attitude/internal/config"
)

func TestSetupLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	require.NoError(t, SetupLogging("warn", false))
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	require.NoError(t, SetupLogging("warn", true))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	require.NoError(t, SetupLogging("", false))
	assert.Equal(t, log.InfoLevel, log.GetLevel())

	assert.Error(t, SetupLogging("chatty", false))
}

func TestNewPrintConfig(t *testing.T) {
	called := false
	c := New("tool", "test tool", func(*cobra.Command, *config.Config) error {
		called = true
		return nil
	})
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs([]string{"--config", "", "--print-config"})

	require.NoError(t, c.Execute())
	assert.False(t, called)
	assert.Contains(t, out.String(), "TOPIC_ATTITUDE: inertial/attitude")
}
