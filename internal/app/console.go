// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/imu_attitude/internal/attitude"
	"github.com/relabs-tech/imu_attitude/internal/config"
)

// printAccessors reads the tracker the way an embedding host would.
func printAccessors(out io.Writer, tr *attitude.Tracker) {
	fmt.Fprint(out, formatPose("ATT", tr.GetAttitude()))
	fmt.Fprint(out, formatPose("ROT", tr.GetRotation()))
	q := tr.GetQuaternion()
	fmt.Fprintf(out, "[QUAT]  W=%6.3f  X=%6.3f  Y=%6.3f  Z=%6.3f\n", q.W, q.X, q.Y, q.Z)
}

// consoleLoop prints the accessors every interval until ctx is done.
func consoleLoop(ctx context.Context, tr *attitude.Tracker, out io.Writer, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			printAccessors(out, tr)
		}
	}
}

// RunConsole drives a tracker in-process and prints its accessors every
// CONSOLE_LOG_INTERVAL.
func RunConsole(ctx context.Context, cfg *config.Config, mock bool, out io.Writer) error {
	tr, err := openTracker(cfg, mock)
	if err != nil {
		return err
	}
	defer func() {
		if err := tr.Close(); err != nil {
			log.Warnf("console: close: %v", err)
		}
	}()
	if !tr.Initialize(ctx) {
		return errors.Errorf("IMU bring-up failed (%s)", tr.Status())
	}

	consoleLoop(ctx, tr, out, config.Millis(cfg.ConsoleLogInterval))
	log.Infof("console: stopping after %d packets", tr.Stats().Packets)
	return nil
}
