// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensorstest provides a scripted motion processor for tests.
package sensorstest

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/relabs-tech/imu_attitude/internal/dmp"
)

// Processor replays a script of FIFO counts and decode results. Every call
// is appended to Calls so tests can check ordering.
type Processor struct {
	mu sync.Mutex

	// Bring-up behavior.
	InitErr    error
	Connected  bool
	DMPErr     error
	EnableErr  error
	PacketSize int

	// Counts is consumed one entry per FIFOCount call. Once exhausted,
	// FIFOCount returns 0.
	Counts []int
	// CountErr, when set, is returned by FIFOCount instead.
	CountErr error
	// Angles is consumed one entry per Decode call, in radians. Once
	// exhausted the last entry repeats.
	Angles []dmp.YawPitchRoll

	Calls      []string
	DMPEnabled bool
	decoded    int
}

// New returns a processor that brings up cleanly with 42-byte packets.
func New() *Processor {
	return &Processor{Connected: true, PacketSize: dmp.PacketSize}
}

func (p *Processor) record(call string) {
	p.Calls = append(p.Calls, call)
}

func (p *Processor) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("initialize")
	return p.InitErr
}

func (p *Processor) TestConnection() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("test")
	return p.Connected
}

func (p *Processor) DMPInitialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("dmp")
	return p.DMPErr
}

func (p *Processor) SetDMPEnabled(enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("enable")
	if p.EnableErr != nil {
		return p.EnableErr
	}
	p.DMPEnabled = enabled
	return nil
}

func (p *Processor) IntStatus() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("intstatus")
	return 0x02, nil
}

func (p *Processor) DMPPacketSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.PacketSize
}

func (p *Processor) FIFOCount() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("count")
	if p.CountErr != nil {
		return 0, p.CountErr
	}
	if len(p.Counts) == 0 {
		return 0, nil
	}
	n := p.Counts[0]
	p.Counts = p.Counts[1:]
	return n, nil
}

func (p *Processor) ResetFIFO() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("reset")
	return nil
}

func (p *Processor) FIFOBytes(buf []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("read")
	if len(buf) != p.PacketSize {
		return errors.Errorf("sensorstest: read of %d bytes, packet is %d", len(buf), p.PacketSize)
	}
	return nil
}

func (p *Processor) Decode(packet []byte) (dmp.Quaternion, dmp.YawPitchRoll, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("decode")
	if len(p.Angles) == 0 {
		return dmp.Quaternion{W: 1}, dmp.YawPitchRoll{}, nil
	}
	i := p.decoded
	if i >= len(p.Angles) {
		i = len(p.Angles) - 1
	}
	p.decoded++
	return dmp.FromEuler(p.Angles[i]), p.Angles[i], nil
}

// CallLog returns a copy of Calls.
func (p *Processor) CallLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Calls...)
}

// CountCalls returns how many times FIFOCount was called.
func (p *Processor) CountCalls() int {
	n := 0
	for _, c := range p.CallLog() {
		if c == "count" {
			n++
		}
	}
	return n
}
