// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package attitude is the caller-facing surface of the orientation tracker:
// bring the sensor up once, sample it in the background and read the latest
// attitude and rotation rate at any cadence.
package attitude

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/relabs-tech/imu_attitude/internal/dmp"
	"github.com/relabs-tech/imu_attitude/internal/mpu6050"
	"github.com/relabs-tech/imu_attitude/internal/orientation"
	"github.com/relabs-tech/imu_attitude/internal/sensors"
)

// Opts configures a Tracker. The zero value busy-polls on wall time and logs
// to the standard logger.
type Opts struct {
	PollInterval time.Duration
	Clock        clock.Clock
	Logger       logrus.FieldLogger
	// Closer is released by Close after sampling stops, typically the I2C bus.
	Closer io.Closer
}

// Tracker owns one sensor session, its output buffer and the sampling
// goroutine.
type Tracker struct {
	session *sensors.Session
	buf     *sensors.Buffer
	opts    Opts
	log     logrus.FieldLogger

	mu      sync.Mutex
	started bool
	closed  bool
	sampler *sensors.Sampler
	cancel  context.CancelFunc
	done    chan struct{}
}

// New wraps dev. Nothing touches the device until Initialize.
func New(dev sensors.MotionProcessor, opts Opts) *Tracker {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	return &Tracker{
		session: sensors.NewSession(dev, opts.Logger),
		buf:     &sensors.Buffer{},
		opts:    opts,
		log:     opts.Logger,
	}
}

// Initialize brings the sensor up and, on success, starts sampling until ctx
// is done or Close is called. It returns false when bring-up fails; no
// sampling runs then. Later calls do nothing and report the first outcome.
func (t *Tracker) Initialize(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		t.log.Warn("attitude: already initialized")
		return t.session.Ready()
	}
	t.started = true

	if err := t.session.Open(); err != nil {
		t.log.Errorf("attitude: bring-up failed: %v", err)
		return false
	}

	t.sampler = sensors.NewSampler(t.session, t.buf, sensors.SamplerOpts{
		PollInterval: t.opts.PollInterval,
		Clock:        t.opts.Clock,
		Logger:       t.opts.Logger,
	})
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	go func(s *sensors.Sampler, done chan struct{}) {
		defer close(done)
		if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			t.log.Errorf("attitude: sampling stopped: %v", err)
		}
	}(t.sampler, t.done)
	return true
}

// GetAttitude returns yaw, pitch and roll in degrees. It is zero until the
// first packet is decoded.
func (t *Tracker) GetAttitude() orientation.Pose {
	return t.buf.Attitude()
}

// GetRotation returns the yaw, pitch and roll rates in degrees per second.
// It is meaningful once two samples have been decoded.
func (t *Tracker) GetRotation() orientation.Pose {
	return t.buf.Rotation()
}

// GetQuaternion returns the last decoded DMP quaternion.
func (t *Tracker) GetQuaternion() dmp.Quaternion {
	return t.buf.Quaternion()
}

// Latest returns the last sample and whether any sample exists yet.
func (t *Tracker) Latest() (sensors.Sample, bool) {
	return t.buf.Latest()
}

// Ready reports whether bring-up succeeded.
func (t *Tracker) Ready() bool {
	return t.session.Ready()
}

// Status is the DMP bring-up status.
func (t *Tracker) Status() mpu6050.Status {
	return t.session.Status()
}

// Stats returns the sampling counters, zero before sampling starts.
func (t *Tracker) Stats() sensors.Stats {
	t.mu.Lock()
	s := t.sampler
	t.mu.Unlock()
	if s == nil {
		return sensors.Stats{}
	}
	return s.Stats()
}

// Close stops sampling, waits for the goroutine to exit and releases the
// closer. It is safe to call more than once.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true

	if t.cancel != nil {
		t.cancel()
		<-t.done
	}
	var err error
	if t.opts.Closer != nil {
		err = multierr.Append(err, errors.Wrap(t.opts.Closer.Close(), "attitude: release device"))
	}
	return err
}
