// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/imu_attitude/internal/config"
	"github.com/relabs-tech/imu_attitude/internal/mpu6050"
)

// busSpeed is the fast-mode I2C clock the DMP FIFO needs to keep up.
const busSpeed = 400 * physic.KiloHertz

// OpenI2C initializes the host drivers and opens an I2C bus by name, the
// empty name meaning the first one. Fast mode is requested but not required.
func OpenI2C(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init")
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open I2C bus %q", name)
	}
	if err := bus.SetSpeed(busSpeed); err != nil {
		log.Warnf("could not set I2C bus %s to %s: %v", bus, busSpeed, err)
	}
	return bus, nil
}

// OpenIMU opens the configured I2C bus and binds an MPU6050 to it with the
// DMP image loaded from disk. The returned closer releases the bus.
func OpenIMU(cfg *config.Config) (*mpu6050.Dev, i2c.BusCloser, error) {
	if cfg.IMUDMPFirmware == "" {
		return nil, nil, errors.New("IMU: IMU_DMP_FIRMWARE is required with real hardware")
	}
	fw, err := mpu6050.LoadFirmware(cfg.IMUDMPFirmware)
	if err != nil {
		return nil, nil, err
	}

	bus, err := OpenI2C(cfg.IMUI2CBus)
	if err != nil {
		return nil, nil, errors.Wrap(err, "IMU")
	}
	dev, err := mpu6050.New(bus, &mpu6050.Opts{Addr: cfg.IMUI2CAddr, Firmware: fw})
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}
	log.Infof("IMU: %s on %s, DMP image %d bytes", dev, bus, len(fw))
	return dev, bus, nil
}
