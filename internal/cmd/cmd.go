// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package cmd builds the cobra commands shared by every tool under cmd/.
package cmd

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/imu_attitude/internal/config"
)

// DefaultConfigPath is where tools look for their configuration file.
const DefaultConfigPath = "./imu_attitude_config.txt"

// RunFunc is the body of a tool, called once configuration and logging are
// set up.
type RunFunc func(cmd *cobra.Command, cfg *config.Config) error

// New returns a command that loads configuration, sets the log level and
// then calls run. --print-config dumps the effective configuration instead.
func New(use, short string, run RunFunc) *cobra.Command {
	c := &cobra.Command{
		Use:          use,
		Short:        short,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, _ []string) error {
			path, _ := c.Flags().GetString("config")
			if err := config.InitGlobal(path); err != nil {
				return errors.Wrap(err, "failed to load config")
			}
			cfg := config.Get()

			debug, _ := c.Flags().GetBool("debug")
			if err := SetupLogging(cfg.LogLevel, debug); err != nil {
				return err
			}

			if p, _ := c.Flags().GetBool("print-config"); p {
				out, err := cfg.YAML()
				if err != nil {
					return err
				}
				_, err = c.OutOrStdout().Write(out)
				return err
			}
			return run(c, cfg)
		},
	}
	c.Flags().String("config", DefaultConfigPath, "path to configuration file")
	c.Flags().Bool("debug", false, "toggle debug logging")
	c.Flags().Bool("print-config", false, "print the effective configuration and exit")
	return c
}

// SetupLogging sets the standard logrus level. debug overrides level.
func SetupLogging(level string, debug bool) error {
	if debug {
		log.SetLevel(log.DebugLevel)
		return nil
	}
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "invalid LOG_LEVEL")
	}
	log.SetLevel(lvl)
	return nil
}

// Execute runs c and exits non-zero on error.
func Execute(c *cobra.Command) {
	if err := c.Execute(); err != nil {
		log.Errorf("fatal: %v", err)
		os.Exit(1)
	}
}
