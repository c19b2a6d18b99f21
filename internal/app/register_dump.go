// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/imu_attitude/internal/config"
	"github.com/relabs-tech/imu_attitude/internal/mpu6050"
	"github.com/relabs-tech/imu_attitude/internal/sensors"
)

// registerDumper is the part of mpu6050.Dev the dump needs.
type registerDumper interface {
	DumpRegisters() ([]mpu6050.RegisterValue, error)
}

// writeRegisterTable prints one row per register followed by its bit fields.
func writeRegisterTable(out io.Writer, values []mpu6050.RegisterValue) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDR\tNAME\tVALUE\tBINARY\tDESCRIPTION")
	for _, v := range values {
		fmt.Fprintf(tw, "0x%02X\t%s\t0x%02X\t%08b\t%s\n", v.Address, v.Name, v.Value, v.Value, v.Description)
		for _, f := range v.BitFields {
			desc := f.Description
			if f.Values != "" {
				desc += " (" + f.Values + ")"
			}
			fmt.Fprintf(tw, "\t  %s[%s]\t\t\t%s\n", f.Name, f.Bits, desc)
		}
	}
	return tw.Flush()
}

func dumpRegisters(d registerDumper, out io.Writer, asJSON bool) error {
	values, err := d.DumpRegisters()
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	}
	return writeRegisterTable(out, values)
}

// RunRegisterDump reads the MPU6050 registers over I2C and prints them.
// No DMP firmware is needed, only the bus.
func RunRegisterDump(cfg *config.Config, out io.Writer, asJSON bool) error {
	bus, err := sensors.OpenI2C(cfg.IMUI2CBus)
	if err != nil {
		return err
	}
	defer bus.Close()

	dev, err := mpu6050.New(bus, &mpu6050.Opts{Addr: cfg.IMUI2CAddr})
	if err != nil {
		return err
	}
	if !dev.TestConnection() {
		log.Warnf("register_dump: %s WHO_AM_I does not match, dumping anyway", dev)
	}
	if err := dumpRegisters(dev, out, asJSON); err != nil {
		return errors.Wrap(err, "register dump")
	}
	return nil
}
