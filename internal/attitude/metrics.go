// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package attitude

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "imu_attitude"

// Collector exports a Tracker's counters and latest angles to Prometheus.
type Collector struct {
	tr *Tracker

	ready     *prometheus.Desc
	packets   *prometheus.Desc
	overflows *prometheus.Desc
	errs      *prometheus.Desc
	fifo      *prometheus.Desc
	angle     *prometheus.Desc
	rate      *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector reading tr on every scrape.
func NewCollector(tr *Tracker) *Collector {
	axis := []string{"axis"}
	return &Collector{
		tr:        tr,
		ready:     prometheus.NewDesc(namespace+"_dmp_ready", "1 once DMP bring-up succeeded.", nil, nil),
		packets:   prometheus.NewDesc(namespace+"_packets_total", "DMP packets decoded.", nil, nil),
		overflows: prometheus.NewDesc(namespace+"_fifo_overflows_total", "FIFO overflow resets.", nil, nil),
		errs:      prometheus.NewDesc(namespace+"_read_errors_total", "Failed device calls while sampling.", nil, nil),
		fifo:      prometheus.NewDesc(namespace+"_fifo_bytes", "Last FIFO byte count.", nil, nil),
		angle:     prometheus.NewDesc(namespace+"_attitude_degrees", "Latest attitude.", axis, nil),
		rate:      prometheus.NewDesc(namespace+"_rotation_degrees_per_second", "Latest rotation rate.", axis, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.ready, c.packets, c.overflows, c.errs, c.fifo, c.angle, c.rate} {
		ch <- d
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ready := 0.0
	if c.tr.Ready() {
		ready = 1
	}
	st := c.tr.Stats()
	ch <- prometheus.MustNewConstMetric(c.ready, prometheus.GaugeValue, ready)
	ch <- prometheus.MustNewConstMetric(c.packets, prometheus.CounterValue, float64(st.Packets))
	ch <- prometheus.MustNewConstMetric(c.overflows, prometheus.CounterValue, float64(st.Overflows))
	ch <- prometheus.MustNewConstMetric(c.errs, prometheus.CounterValue, float64(st.Errors))
	ch <- prometheus.MustNewConstMetric(c.fifo, prometheus.GaugeValue, float64(st.FIFOCount))

	s, ok := c.tr.Latest()
	if !ok {
		return
	}
	for _, a := range []struct {
		name       string
		angle, vel float64
	}{
		{"yaw", s.Attitude.Yaw, s.Rotation.Yaw},
		{"pitch", s.Attitude.Pitch, s.Rotation.Pitch},
		{"roll", s.Attitude.Roll, s.Rotation.Roll},
	} {
		ch <- prometheus.MustNewConstMetric(c.angle, prometheus.GaugeValue, a.angle, a.name)
		ch <- prometheus.MustNewConstMetric(c.rate, prometheus.GaugeValue, a.vel, a.name)
	}
}
