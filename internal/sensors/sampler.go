// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/imu_attitude/internal/mpu6050"
	"github.com/relabs-tech/imu_attitude/internal/orientation"
)

// errLogEvery throttles repeated I2C error logging in the unthrottled loop.
const errLogEvery = 1000

// Outcome is what one pass of the sampling loop did.
type Outcome int

const (
	// OutcomeIdle means less than one packet was waiting.
	OutcomeIdle Outcome = iota
	// OutcomeDecoded means a packet was decoded and published.
	OutcomeDecoded
	// OutcomeOverflow means the FIFO was full and got reset.
	OutcomeOverflow
	// OutcomeError means a device call failed; the pass was abandoned.
	OutcomeError
	// OutcomeStopped means the session is not ready.
	OutcomeStopped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeDecoded:
		return "decoded"
	case OutcomeOverflow:
		return "overflow"
	case OutcomeError:
		return "error"
	case OutcomeStopped:
		return "stopped"
	}
	return "unknown"
}

// SamplerOpts tunes a Sampler.
type SamplerOpts struct {
	// PollInterval is waited between passes. Zero polls without pausing.
	PollInterval time.Duration
	Clock        clock.Clock
	Logger       logrus.FieldLogger
}

// Stats counts what the loop has done.
type Stats struct {
	Packets   uint64 `json:"packets"`
	Overflows uint64 `json:"overflows"`
	Errors    uint64 `json:"errors"`
	FIFOCount int    `json:"fifo_count"`
}

// Sampler drains the DMP FIFO into a Buffer. Step and Run must not be
// called concurrently.
type Sampler struct {
	session *Session
	buf     *Buffer
	clk     clock.Clock
	poll    time.Duration
	log     logrus.FieldLogger

	packet       []byte
	lastAttitude orientation.Pose
	lastRotation orientation.Pose
	lastRead     time.Time

	packets   atomic.Uint64
	overflows atomic.Uint64
	errs      atomic.Uint64
	fifoCount atomic.Int64
}

// NewSampler prepares a loop over session writing into buf. The rate clock
// starts now.
func NewSampler(session *Session, buf *Buffer, opts SamplerOpts) *Sampler {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Sampler{
		session:  session,
		buf:      buf,
		clk:      opts.Clock,
		poll:     opts.PollInterval,
		log:      opts.Logger,
		packet:   make([]byte, session.PacketSize()),
		lastRead: opts.Clock.Now(),
	}
}

// Run loops until ctx is done or the session is not ready. Device errors are
// logged and the loop carries on.
func (s *Sampler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.Step(); errors.Is(err, ErrNotReady) {
			return err
		}
		if s.poll > 0 {
			s.wait(ctx)
		}
	}
}

// Step performs one pass: read the FIFO count, then reset on overflow,
// decode one packet when a full one is waiting, or do nothing.
func (s *Sampler) Step() (Outcome, error) {
	if !s.session.Ready() {
		return OutcomeStopped, ErrNotReady
	}
	dev := s.session.Device()

	count, err := dev.FIFOCount()
	if err != nil {
		return OutcomeError, s.fault(err)
	}
	s.fifoCount.Store(int64(count))

	switch {
	case count >= mpu6050.FIFOCapacity:
		if err := dev.ResetFIFO(); err != nil {
			return OutcomeError, s.fault(err)
		}
		s.overflows.Add(1)
		s.log.Warn("FIFO overflow!")
		return OutcomeOverflow, nil
	case count >= len(s.packet):
		return s.decode(dev)
	default:
		return OutcomeIdle, nil
	}
}

func (s *Sampler) decode(dev MotionProcessor) (Outcome, error) {
	if err := dev.FIFOBytes(s.packet); err != nil {
		return OutcomeError, s.fault(err)
	}
	q, ypr, err := dev.Decode(s.packet)
	if err != nil {
		return OutcomeError, s.fault(err)
	}

	attitude := orientation.FromRadians(ypr)
	now := s.clk.Now()
	// Without elapsed time the previous rates stand and the previous angle
	// is kept as the reference for the next sample.
	if rate, ok := orientation.Rates(s.lastAttitude, attitude, now.Sub(s.lastRead)); ok {
		s.lastRotation = rate
		s.lastAttitude = attitude
		s.lastRead = now
	}

	s.buf.Store(Sample{
		Attitude:   attitude,
		Rotation:   s.lastRotation,
		Quaternion: q,
		Time:       now,
	})
	s.packets.Add(1)
	return OutcomeDecoded, nil
}

func (s *Sampler) fault(err error) error {
	if n := s.errs.Add(1); n%errLogEvery == 1 {
		s.log.Warnf("sampling error (%d so far): %v", n, err)
	}
	return err
}

func (s *Sampler) wait(ctx context.Context) {
	t := s.clk.Timer(s.poll)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Stats returns a snapshot of the loop counters. Safe from any goroutine.
func (s *Sampler) Stats() Stats {
	return Stats{
		Packets:   s.packets.Load(),
		Overflows: s.overflows.Load(),
		Errors:    s.errs.Load(),
		FIFOCount: int(s.fifoCount.Load()),
	}
}
