// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/imu_attitude/internal/app"
	"github.com/relabs-tech/imu_attitude/internal/cmd"
	"github.com/relabs-tech/imu_attitude/internal/config"
)

func main() {
	var mock bool
	c := cmd.New("attitude_producer", "sample the MPU6050 DMP and publish attitude to MQTT",
		func(c *cobra.Command, cfg *config.Config) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.RunAttitudeProducer(ctx, cfg, mock)
		})
	c.Flags().BoolVar(&mock, "mock", false, "use a synthetic motion processor instead of the IMU")
	cmd.Execute(c)
}
