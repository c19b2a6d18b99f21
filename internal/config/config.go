// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every key when it is read from the environment,
// e.g. IMU_ATTITUDE_MQTT_BROKER.
const EnvPrefix = "IMU_ATTITUDE"

// Config holds all application configuration values.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"LOG_LEVEL"`

	// IMU Hardware
	IMUI2CBus         string `mapstructure:"imu_i2c_bus" yaml:"IMU_I2C_BUS"`
	IMUI2CAddr        uint16 `mapstructure:"imu_i2c_addr" yaml:"IMU_I2C_ADDR"`
	IMUDMPFirmware    string `mapstructure:"imu_dmp_firmware" yaml:"IMU_DMP_FIRMWARE"`
	IMUPollIntervalUS int    `mapstructure:"imu_poll_interval_us" yaml:"IMU_POLL_INTERVAL_US"` // 0 polls without pausing

	// MQTT
	MQTTBroker           string `mapstructure:"mqtt_broker" yaml:"MQTT_BROKER"`
	MQTTClientIDProducer string `mapstructure:"mqtt_client_id_producer" yaml:"MQTT_CLIENT_ID_PRODUCER"`
	MQTTClientIDConsole  string `mapstructure:"mqtt_client_id_console" yaml:"MQTT_CLIENT_ID_CONSOLE"`
	MQTTClientIDWeb      string `mapstructure:"mqtt_client_id_web" yaml:"MQTT_CLIENT_ID_WEB"`
	MQTTClientIDDisplay  string `mapstructure:"mqtt_client_id_display" yaml:"MQTT_CLIENT_ID_DISPLAY"`

	// Topics
	TopicAttitude   string `mapstructure:"topic_attitude" yaml:"TOPIC_ATTITUDE"`
	TopicRotation   string `mapstructure:"topic_rotation" yaml:"TOPIC_ROTATION"`
	TopicQuaternion string `mapstructure:"topic_quaternion" yaml:"TOPIC_QUATERNION"`

	// Timing, all milliseconds
	PublishInterval    int `mapstructure:"publish_interval" yaml:"PUBLISH_INTERVAL"`
	ConsoleLogInterval int `mapstructure:"console_log_interval" yaml:"CONSOLE_LOG_INTERVAL"`

	// Web Server
	WebServerPort     int `mapstructure:"web_server_port" yaml:"WEB_SERVER_PORT"`
	WebStreamInterval int `mapstructure:"web_stream_interval" yaml:"WEB_STREAM_INTERVAL"`

	// Prometheus endpoint of the producer, 0 disables it
	MetricsPort int `mapstructure:"metrics_port" yaml:"METRICS_PORT"`

	// Display
	DisplayI2CBus         string `mapstructure:"display_i2c_bus" yaml:"DISPLAY_I2C_BUS"`
	DisplayI2CAddr        uint16 `mapstructure:"display_i2c_addr" yaml:"DISPLAY_I2C_ADDR"`
	DisplayUpdateInterval int    `mapstructure:"display_update_interval" yaml:"DISPLAY_UPDATE_INTERVAL"`
}

var defaults = map[string]interface{}{
	"log_level":               "info",
	"imu_i2c_bus":             "",
	"imu_i2c_addr":            0x68,
	"imu_dmp_firmware":        "",
	"imu_poll_interval_us":    0,
	"mqtt_broker":             "tcp://localhost:1883",
	"mqtt_client_id_producer": "imu-attitude-producer",
	"mqtt_client_id_console":  "imu-attitude-console",
	"mqtt_client_id_web":      "imu-attitude-web",
	"mqtt_client_id_display":  "imu-attitude-display",
	"topic_attitude":          "inertial/attitude",
	"topic_rotation":          "inertial/rotation",
	"topic_quaternion":        "inertial/quaternion",
	"publish_interval":        50,
	"console_log_interval":    500,
	"web_server_port":         8080,
	"web_stream_interval":     100,
	"metrics_port":            0,
	"display_i2c_bus":         "",
	"display_i2c_addr":        0x3C,
	"display_update_interval": 200,
}

// Package-level singleton, set once by InitGlobal and read through Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a KEY=VALUE configuration file on top of the defaults. An empty
// path loads defaults only. Environment variables with EnvPrefix win over
// the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var unknown []string
	for _, k := range v.AllKeys() {
		if _, ok := defaults[k]; !ok {
			unknown = append(unknown, strings.ToUpper(k))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.Errorf("unknown config keys: %s", strings.Join(unknown, ", "))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return errors.New("MQTT_BROKER is required")
	}
	if c.IMUI2CAddr != 0x68 && c.IMUI2CAddr != 0x69 {
		return errors.Errorf("IMU_I2C_ADDR must be 0x68 or 0x69, got 0x%02X", c.IMUI2CAddr)
	}
	if c.IMUPollIntervalUS < 0 {
		return errors.Errorf("IMU_POLL_INTERVAL_US must not be negative, got %d", c.IMUPollIntervalUS)
	}
	if c.DisplayI2CAddr > 0x7F {
		return errors.Errorf("DISPLAY_I2C_ADDR must be a 7-bit address, got 0x%X", c.DisplayI2CAddr)
	}
	if c.WebServerPort <= 0 || c.WebServerPort > 65535 {
		return errors.Errorf("WEB_SERVER_PORT out of range: %d", c.WebServerPort)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return errors.Errorf("METRICS_PORT out of range: %d", c.MetricsPort)
	}
	for name, ms := range map[string]int{
		"PUBLISH_INTERVAL":        c.PublishInterval,
		"CONSOLE_LOG_INTERVAL":    c.ConsoleLogInterval,
		"WEB_STREAM_INTERVAL":     c.WebStreamInterval,
		"DISPLAY_UPDATE_INTERVAL": c.DisplayUpdateInterval,
	} {
		if ms <= 0 {
			return errors.Errorf("%s must be positive, got %d", name, ms)
		}
	}
	return nil
}

// PollInterval is the pause between FIFO polls.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.IMUPollIntervalUS) * time.Microsecond
}

// Millis turns one of the millisecond fields into a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// InitGlobal initializes the global configuration from file. Only the first
// call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
