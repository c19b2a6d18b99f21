// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/imu_attitude/internal/config"
	"github.com/relabs-tech/imu_attitude/internal/orientation"
)

func formatPose(tag string, p orientation.Pose) string {
	return fmt.Sprintf("[%s]  YAW=%7.2f  PITCH=%7.2f  ROLL=%7.2f\n", tag, p.Yaw, p.Pitch, p.Roll)
}

// RunConsoleMQTT prints every attitude and rotation message to out until
// ctx is done.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, out io.Writer) error {
	client, err := connectMQTT(cfg, cfg.MQTTClientIDConsole, "console")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	printer := func(tag string) func(orientation.Pose) {
		return func(p orientation.Pose) {
			fmt.Fprint(out, formatPose(tag, p))
		}
	}
	if err := subscribePoses(client, cfg, "console", printer("ATT"), printer("ROT")); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("console: shutting down")
	return nil
}
