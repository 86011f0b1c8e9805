// Package metrics exposes the counters of a running session in the Prometheus text format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vrsync/vrsync/constant"
	"github.com/vrsync/vrsync/orientation"
	"github.com/vrsync/vrsync/session"
)

var axes = [...]string{
	orientation.Yaw:   "yaw",
	orientation.Pitch: "pitch",
	orientation.Roll:  "roll",
}

type counter struct {
	desc  *prometheus.Desc
	value func(session.Stats) uint64
}

// Collector reads a session on every scrape. Nothing is cached between scrapes.
type Collector struct {
	sess        *session.Session
	counters    []counter
	orientation *prometheus.Desc
}

func newDesc(name, help string, labels ...string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(constant.App, "", name),
		help,
		labels,
		nil,
	)
}

// NewCollector creates a collector for sess.
func NewCollector(sess *session.Session) *Collector {
	c := func(name, help string, value func(session.Stats) uint64) counter {
		return counter{desc: newDesc(name, help, "session"), value: value}
	}

	return &Collector{
		sess: sess,
		counters: []counter{
			c("messages_received_total", "Datagrams handed over by the listener", func(s session.Stats) uint64 { return s.Received }),
			c("messages_rejected_total", "Datagrams that failed to decode", func(s session.Stats) uint64 { return s.Rejected }),
			c("messages_dropped_total", "Messages replaced by newer ones before a frame consumed them", func(s session.Stats) uint64 { return s.Dropped }),
			c("reloads_total", "Resources loaded into the player", func(s session.Stats) uint64 { return s.Reloads }),
			c("seeks_total", "Seeks issued to correct playback drift", func(s session.Stats) uint64 { return s.Seeks }),
			c("retargets_total", "Orientation targets applied", func(s session.Stats) uint64 { return s.Retargets }),
			c("failures_total", "Messages whose reconciliation failed", func(s session.Stats) uint64 { return s.Failures }),
			c("frames_total", "Frames rendered", func(s session.Stats) uint64 { return s.Frames }),
		},
		orientation: newDesc("orientation_degrees", "Smoothed view orientation", "session", "axis"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, ctr := range c.counters {
		ch <- ctr.desc
	}
	ch <- c.orientation
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	id := c.sess.ID()
	stats := c.sess.Stats()

	for _, ctr := range c.counters {
		ch <- prometheus.MustNewConstMetric(ctr.desc, prometheus.CounterValue, float64(ctr.value(stats)), id)
	}

	v := c.sess.SmoothedOrientation()
	for i, axis := range axes {
		ch <- prometheus.MustNewConstMetric(c.orientation, prometheus.GaugeValue, float64(v[i]), id, axis)
	}
}
