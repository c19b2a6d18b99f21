package mpu6050

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/physic"
)

// regBus emulates the register file of an MPU-6050, including DMP memory
// banks and the FIFO.
type regBus struct {
	mu sync.Mutex

	regs    [256]byte
	mem     [32][bankSize]byte
	bank    byte
	memAddr byte
	fifo    []byte

	fifoResets int
	// corrupt flips the bits of DMP memory reads.
	corrupt   bool
	failWrite map[byte]bool
}

func newRegBus() *regBus {
	b := &regBus{failWrite: map[byte]bool{}}
	b.regs[regWhoAmI] = 0x68
	b.regs[regPwrMgmt1] = pwr1Sleep
	return b
}

func (b *regBus) String() string { return "regbus" }

func (b *regBus) SetSpeed(physic.Frequency) error { return nil }

func (b *regBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(w) == 0 {
		return errors.New("regbus: no register")
	}
	reg := w[0]
	if len(w) > 1 && b.failWrite[reg] {
		return errors.Errorf("regbus: write 0x%02X refused", reg)
	}
	for _, v := range w[1:] {
		b.write(reg, v)
		reg = next(reg)
	}
	for i := range r {
		r[i] = b.read(reg)
		reg = next(reg)
	}
	return nil
}

func next(reg byte) byte {
	if reg == regMemRW || reg == regFIFORW {
		return reg
	}
	return reg + 1
}

func (b *regBus) write(reg, v byte) {
	switch reg {
	case regBankSel:
		b.bank = v
	case regMemStartAddr:
		b.memAddr = v
	case regMemRW:
		b.mem[b.bank&0x1F][b.memAddr] = v
		b.memAddr++
	case regUserCtrl:
		if v&userCtrlFIFOReset != 0 {
			b.fifo = nil
			b.fifoResets++
		}
		b.regs[reg] = v &^ (userCtrlFIFOReset | userCtrlDMPReset | userCtrlI2CMstRst)
	default:
		b.regs[reg] = v
	}
}

func (b *regBus) read(reg byte) byte {
	switch reg {
	case regMemRW:
		v := b.mem[b.bank&0x1F][b.memAddr]
		b.memAddr++
		if b.corrupt {
			v ^= 0xFF
		}
		return v
	case regFIFOCountH:
		return byte(len(b.fifo) >> 8)
	case regFIFOCountH + 1:
		return byte(len(b.fifo))
	case regFIFORW:
		if len(b.fifo) == 0 {
			return 0
		}
		v := b.fifo[0]
		b.fifo = b.fifo[1:]
		return v
	default:
		return b.regs[reg]
	}
}

func newTestDev(bus *regBus, firmware []byte) *Dev {
	d, err := New(bus, &Opts{Addr: DefaultAddr, Firmware: firmware})
	if err != nil {
		panic(err)
	}
	d.sleep = func(time.Duration) {}
	return d
}
