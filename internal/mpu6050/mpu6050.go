// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mpu6050 drives an InvenSense MPU-6050 over I2C with its digital
// motion processor (DMP) enabled. The DMP firmware image is vendor supplied
// and uploaded at bring-up; after that the chip pushes fused orientation
// packets into its FIFO, which this package reads and decodes.
//
// The chip answers on 0x68, or on 0x69 when AD0 is wired high.
package mpu6050

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/imu_attitude/internal/dmp"
)

const (
	// DefaultAddr is the address with AD0 tied low.
	DefaultAddr uint16 = 0x68
	// AlternateAddr is the address with AD0 tied high.
	AlternateAddr uint16 = 0x69

	// FIFOCapacity is the size of the on-chip FIFO. A count equal to it
	// means the FIFO overflowed and its contents are misaligned.
	FIFOCapacity = 1024

	bankSize          = 256
	chunkSize         = 16
	maxFirmwareSize   = 12 * bankSize
	dmpStartAddress   = 0x0400
	dmpSampleRateDiv  = 4 // 1kHz / (1 + 4) = 200Hz
	resetSettleTime   = 30 * time.Millisecond
	i2cMasterSettling = 20 * time.Millisecond
)

// Status is the result code of DMP bring-up.
type Status uint8

const (
	StatusOK Status = iota
	StatusMemoryLoadFailed
	StatusConfigUpdateFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMemoryLoadFailed:
		return "initial memory load failed"
	case StatusConfigUpdateFailed:
		return "DMP configuration updates failed"
	default:
		return fmt.Sprintf("unknown status %d", uint8(s))
	}
}

// DMPError reports a failed DMP bring-up.
type DMPError struct {
	Status Status
	Err    error
}

func (e *DMPError) Error() string {
	return fmt.Sprintf("DMP initialization failed (code %d, %s): %v", uint8(e.Status), e.Status, e.Err)
}

func (e *DMPError) Unwrap() error { return e.Err }

// Opts configures a Dev.
type Opts struct {
	Addr uint16
	// Firmware is the DMP program image.
	Firmware []byte
}

// DefaultOpts is the configuration for a chip on the default address.
var DefaultOpts = Opts{Addr: DefaultAddr}

// Dev is a handle to an MPU-6050.
type Dev struct {
	d          *i2c.Dev
	firmware   []byte
	packetSize int
	sleep      func(time.Duration)
}

// New returns a handle for the chip on bus. It does not talk to the chip.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Addr != DefaultAddr && opts.Addr != AlternateAddr {
		return nil, errors.Errorf("mpu6050: invalid address 0x%02X", opts.Addr)
	}
	return &Dev{
		d:        &i2c.Dev{Bus: bus, Addr: opts.Addr},
		firmware: opts.Firmware,
		sleep:    time.Sleep,
	}, nil
}

// LoadFirmware reads a raw DMP image from disk.
func LoadFirmware(path string) ([]byte, error) {
	img, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "mpu6050: read DMP firmware")
	}
	return img, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("MPU6050{%s}", d.d)
}

// Initialize wakes the chip and selects default ranges: PLL with the X gyro
// as clock, ±250°/s gyro, ±2g accelerometer.
func (d *Dev) Initialize() error {
	if err := d.writeReg(regPwrMgmt1, clockPLLXGyro); err != nil {
		return errors.Wrap(err, "mpu6050: wake")
	}
	if err := d.writeReg(regGyroConfig, gyroFS250); err != nil {
		return errors.Wrap(err, "mpu6050: gyro range")
	}
	if err := d.writeReg(regAccelConfig, accelFS2); err != nil {
		return errors.Wrap(err, "mpu6050: accel range")
	}
	return nil
}

// TestConnection reports whether WHO_AM_I identifies an MPU-6050.
func (d *Dev) TestConnection() bool {
	var who [1]byte
	if err := d.readReg(regWhoAmI, who[:]); err != nil {
		return false
	}
	return (who[0]>>1)&0x3F == whoAmIValue
}

// DMPInitialize resets the chip, uploads and verifies the firmware image and
// configures the DMP. The DMP is left disabled; see SetDMPEnabled. Failures
// are reported as *DMPError.
func (d *Dev) DMPInitialize() error {
	if err := d.loadMemory(); err != nil {
		return &DMPError{Status: StatusMemoryLoadFailed, Err: err}
	}
	if err := d.configure(); err != nil {
		return &DMPError{Status: StatusConfigUpdateFailed, Err: err}
	}
	d.packetSize = dmp.PacketSize
	return nil
}

func (d *Dev) loadMemory() error {
	if err := d.writeReg(regPwrMgmt1, pwr1DeviceReset); err != nil {
		return errors.Wrap(err, "reset")
	}
	d.sleep(resetSettleTime)
	if err := d.writeReg(regPwrMgmt1, 0); err != nil {
		return errors.Wrap(err, "wake after reset")
	}

	// Park slave 0 and reset the auxiliary I2C master before touching DMP memory.
	if err := d.writeReg(regI2CSlv0Addr, 0x7F); err != nil {
		return errors.Wrap(err, "slave 0 address")
	}
	if err := d.writeReg(regUserCtrl, userCtrlI2CMstRst); err != nil {
		return errors.Wrap(err, "I2C master reset")
	}
	d.sleep(i2cMasterSettling)

	if len(d.firmware) == 0 {
		return errors.New("no DMP firmware image")
	}
	if len(d.firmware) > maxFirmwareSize {
		return errors.Errorf("DMP firmware image is %d bytes, limit is %d", len(d.firmware), maxFirmwareSize)
	}
	return d.writeMemoryBlock(d.firmware, 0, 0, true)
}

func (d *Dev) configure() error {
	steps := []struct {
		what string
		reg  byte
		val  []byte
	}{
		{"clock source", regPwrMgmt1, []byte{clockPLLZGyro}},
		{"interrupt enable", regIntEnable, []byte{intFIFOOverflow | intDMP}},
		{"sample rate", regSmplrtDiv, []byte{dmpSampleRateDiv}},
		{"frame sync and DLPF", regConfig, []byte{extSyncTempOutL | dlpf42Hz}},
		{"gyro range", regGyroConfig, []byte{gyroFS2000}},
		{"program start address", regDMPCfg1, []byte{dmpStartAddress >> 8, dmpStartAddress & 0xFF}},
		{"motion threshold", regMotThr, []byte{2}},
		{"zero motion threshold", regZrmotThr, []byte{156}},
		{"motion duration", regMotDur, []byte{80}},
		{"zero motion duration", regZrmotDur, []byte{0}},
	}
	for _, s := range steps {
		if err := d.writeReg(s.reg, s.val...); err != nil {
			return errors.Wrap(err, s.what)
		}
	}

	var start [2]byte
	if err := d.readReg(regDMPCfg1, start[:]); err != nil {
		return errors.Wrap(err, "read back program start address")
	}
	if got := binary.BigEndian.Uint16(start[:]); got != dmpStartAddress {
		return errors.Errorf("program start address reads 0x%04X, want 0x%04X", got, dmpStartAddress)
	}

	if err := d.writeReg(regUserCtrl, userCtrlFIFOReset|userCtrlDMPReset); err != nil {
		return errors.Wrap(err, "FIFO and DMP reset")
	}
	if err := d.writeReg(regUserCtrl, userCtrlFIFOEn); err != nil {
		return errors.Wrap(err, "FIFO enable")
	}
	return nil
}

// SetDMPEnabled starts or stops the DMP.
func (d *Dev) SetDMPEnabled(enabled bool) error {
	return errors.Wrap(d.updateBits(regUserCtrl, userCtrlDMPEn, enabled), "mpu6050: DMP enable")
}

// IntStatus reads and clears the interrupt status register.
func (d *Dev) IntStatus() (byte, error) {
	var b [1]byte
	if err := d.readReg(regIntStatus, b[:]); err != nil {
		return 0, errors.Wrap(err, "mpu6050: interrupt status")
	}
	return b[0], nil
}

// DMPPacketSize is the byte length of one DMP record. It is zero until
// DMPInitialize succeeds.
func (d *Dev) DMPPacketSize() int {
	return d.packetSize
}

// FIFOCount returns the number of bytes waiting in the FIFO.
func (d *Dev) FIFOCount() (int, error) {
	var b [2]byte
	if err := d.readReg(regFIFOCountH, b[:]); err != nil {
		return 0, errors.Wrap(err, "mpu6050: FIFO count")
	}
	return int(binary.BigEndian.Uint16(b[:])), nil
}

// ResetFIFO discards the FIFO contents.
func (d *Dev) ResetFIFO() error {
	return errors.Wrap(d.updateBits(regUserCtrl, userCtrlFIFOReset, true), "mpu6050: FIFO reset")
}

// FIFOBytes fills buf from the FIFO.
func (d *Dev) FIFOBytes(buf []byte) error {
	return errors.Wrap(d.readReg(regFIFORW, buf), "mpu6050: FIFO read")
}

// Decode turns one DMP packet into its quaternion and yaw/pitch/roll in radians.
func (d *Dev) Decode(packet []byte) (dmp.Quaternion, dmp.YawPitchRoll, error) {
	return dmp.Decode(packet)
}

// RegisterValue pairs a register with the value read from it.
type RegisterValue struct {
	Register
	Value byte `json:"value"`
}

// DumpRegisters reads every readable register of RegisterMap.
func (d *Dev) DumpRegisters() ([]RegisterValue, error) {
	var out []RegisterValue
	for _, r := range RegisterMap() {
		if !strings.Contains(r.Access, "R") {
			continue
		}
		var b [1]byte
		if err := d.readReg(r.Address, b[:]); err != nil {
			return out, errors.Wrapf(err, "mpu6050: read %s", r.Name)
		}
		out = append(out, RegisterValue{Register: r, Value: b[0]})
	}
	return out, nil
}

// writeMemoryBlock writes data to DMP memory starting at bank/addr in chunks
// that never cross a bank boundary.
func (d *Dev) writeMemoryBlock(data []byte, bank, addr byte, verify bool) error {
	readBack := make([]byte, chunkSize)
	for i := 0; i < len(data); {
		n := chunkSize
		if rest := len(data) - i; rest < n {
			n = rest
		}
		if room := bankSize - int(addr); room < n {
			n = room
		}
		chunk := data[i : i+n]

		if err := d.setMemoryAddress(bank, addr); err != nil {
			return err
		}
		if err := d.writeReg(regMemRW, chunk...); err != nil {
			return errors.Wrapf(err, "write bank %d address 0x%02X", bank, addr)
		}
		if verify {
			if err := d.setMemoryAddress(bank, addr); err != nil {
				return err
			}
			if err := d.readReg(regMemRW, readBack[:n]); err != nil {
				return errors.Wrapf(err, "read back bank %d address 0x%02X", bank, addr)
			}
			if !bytes.Equal(readBack[:n], chunk) {
				return errors.Errorf("verify mismatch at bank %d address 0x%02X", bank, addr)
			}
		}

		i += n
		addr += byte(n)
		if addr == 0 {
			bank++
		}
	}
	return nil
}

func (d *Dev) setMemoryAddress(bank, addr byte) error {
	if err := d.writeReg(regBankSel, bank&0x1F); err != nil {
		return errors.Wrapf(err, "select bank %d", bank)
	}
	if err := d.writeReg(regMemStartAddr, addr); err != nil {
		return errors.Wrapf(err, "set memory address 0x%02X", addr)
	}
	return nil
}

func (d *Dev) updateBits(reg, mask byte, set bool) error {
	var b [1]byte
	if err := d.readReg(reg, b[:]); err != nil {
		return err
	}
	if set {
		b[0] |= mask
	} else {
		b[0] &^= mask
	}
	return d.writeReg(reg, b[0])
}

func (d *Dev) writeReg(reg byte, data ...byte) error {
	return d.d.Tx(append([]byte{reg}, data...), nil)
}

func (d *Dev) readReg(reg byte, buf []byte) error {
	return d.d.Tx([]byte{reg}, buf)
}
