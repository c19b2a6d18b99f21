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
	c := cmd.New("console", "run the attitude tracker in-process and print its readings",
		func(c *cobra.Command, cfg *config.Config) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.RunConsole(ctx, cfg, mock, c.OutOrStdout())
		})
	c.Flags().BoolVar(&mock, "mock", false, "use a synthetic motion processor instead of the IMU")
	cmd.Execute(c)
}
