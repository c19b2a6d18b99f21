// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

// Register addresses used by the driver.
const (
	regSmplrtDiv    = 0x19
	regConfig       = 0x1A
	regGyroConfig   = 0x1B
	regAccelConfig  = 0x1C
	regMotThr       = 0x1F
	regMotDur       = 0x20
	regZrmotThr     = 0x21
	regZrmotDur     = 0x22
	regI2CSlv0Addr  = 0x25
	regIntEnable    = 0x38
	regIntStatus    = 0x3A
	regUserCtrl     = 0x6A
	regPwrMgmt1     = 0x6B
	regBankSel      = 0x6D
	regMemStartAddr = 0x6E
	regMemRW        = 0x6F
	regDMPCfg1      = 0x70
	regDMPCfg2      = 0x71
	regFIFOCountH   = 0x72
	regFIFORW       = 0x74
	regWhoAmI       = 0x75
)

// Bit values.
const (
	pwr1DeviceReset = 1 << 7
	pwr1Sleep       = 1 << 6
	clockPLLXGyro   = 0x01
	clockPLLZGyro   = 0x03

	userCtrlDMPEn     = 1 << 7
	userCtrlFIFOEn    = 1 << 6
	userCtrlDMPReset  = 1 << 3
	userCtrlFIFOReset = 1 << 2
	userCtrlI2CMstRst = 1 << 1

	intFIFOOverflow = 1 << 4
	intDMP          = 1 << 1

	gyroFS250  = 0 << 3
	gyroFS2000 = 3 << 3
	accelFS2   = 0 << 3

	extSyncTempOutL = 1 << 3
	dlpf42Hz        = 0x03

	whoAmIValue = 0x34
)

// Register describes one register for the register dump tool.
type Register struct {
	Address     byte       `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// BitField describes a field within a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterMap returns metadata for the registers the DMP path touches.
func RegisterMap() []Register {
	return []Register{
		{Address: regSmplrtDiv, Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Gyro_Output_Rate / (1 + SMPLRT_DIV)", Values: "0-255"},
			}},
		{Address: regConfig, Name: "CONFIG", Description: "Configuration (FSYNC, DLPF)", Access: "RW",
			BitFields: []BitField{
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "FSYNC pin sampling", Values: "0=Disabled, 1=TEMP_OUT_L"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Digital Low Pass Filter", Values: "0=260Hz, 1=184Hz, 2=94Hz, 3=44Hz, 4=21Hz, 5=10Hz, 6=5Hz"},
			}},
		{Address: regGyroConfig, Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW",
			BitFields: []BitField{
				{Bits: "4:3", Name: "FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
			}},
		{Address: regAccelConfig, Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW",
			BitFields: []BitField{
				{Bits: "4:3", Name: "AFS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
			}},
		{Address: regIntEnable, Name: "INT_ENABLE", Description: "Interrupt Enable", Access: "RW",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_EN", Description: "FIFO overflow interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "1", Name: "DMP_INT_EN", Description: "DMP interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "DATA_RDY_EN", Description: "Data ready interrupt", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: regIntStatus, Name: "INT_STATUS", Description: "Interrupt Status", Access: "R",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_INT", Description: "FIFO overflow interrupt status"},
				{Bits: "1", Name: "DMP_INT", Description: "DMP interrupt status"},
				{Bits: "0", Name: "DATA_RDY_INT", Description: "Data ready interrupt status"},
			}},
		{Address: regUserCtrl, Name: "USER_CTRL", Description: "User Control", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "DMP_EN", Description: "Enable digital motion processor", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "FIFO_EN", Description: "Enable FIFO", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "I2C_MST_EN", Description: "I2C master mode", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "DMP_RESET", Description: "Reset DMP"},
				{Bits: "2", Name: "FIFO_RESET", Description: "Reset FIFO"},
				{Bits: "1", Name: "I2C_MST_RESET", Description: "Reset I2C master"},
			}},
		{Address: regPwrMgmt1, Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Reset all registers"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Awake, 1=Sleep"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 8MHz, 1=PLL X gyro, 2=PLL Y gyro, 3=PLL Z gyro"},
			}},
		{Address: regBankSel, Name: "BANK_SEL", Description: "DMP memory bank select", Access: "RW"},
		{Address: regMemStartAddr, Name: "MEM_START_ADDR", Description: "DMP memory start address within bank", Access: "RW"},
		{Address: regDMPCfg1, Name: "DMP_CFG_1", Description: "DMP program start address high byte", Access: "RW"},
		{Address: regDMPCfg2, Name: "DMP_CFG_2", Description: "DMP program start address low byte", Access: "RW"},
		{Address: regFIFOCountH, Name: "FIFO_COUNTH", Description: "FIFO byte count high byte", Access: "R"},
		{Address: regFIFOCountH + 1, Name: "FIFO_COUNTL", Description: "FIFO byte count low byte", Access: "R"},
		{Address: regWhoAmI, Name: "WHO_AM_I", Description: "Device identity", Access: "R",
			BitFields: []BitField{
				{Bits: "6:1", Name: "WHO_AM_I", Description: "Upper 6 bits of the I2C address", Values: "0x34"},
			}},
	}
}
