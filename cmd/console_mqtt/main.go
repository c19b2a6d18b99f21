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
	c := cmd.New("console_mqtt", "print attitude and rotation received over MQTT",
		func(c *cobra.Command, cfg *config.Config) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.RunConsoleMQTT(ctx, cfg, c.OutOrStdout())
		})
	cmd.Execute(c)
}
