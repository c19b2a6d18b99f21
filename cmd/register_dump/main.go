// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"github.com/spf13/cobra"

	"github.com/relabs-tech/imu_attitude/internal/app"
	"github.com/relabs-tech/imu_attitude/internal/cmd"
	"github.com/relabs-tech/imu_attitude/internal/config"
)

func main() {
	var asJSON bool
	c := cmd.New("register_dump", "print the MPU6050 register table read over I2C",
		func(c *cobra.Command, cfg *config.Config) error {
			return app.RunRegisterDump(cfg, c.OutOrStdout(), asJSON)
		})
	c.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Execute(c)
}
