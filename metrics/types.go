// Package metrics implements the sampling-to-rendering pipeline core for
// pulseboard: converting cumulative OS counters into instantaneous rates,
// holding bounded rolling history per monitored entity, and producing
// consistent chart snapshots for the display layer.
package metrics

import "time"

// Class identifies a monitored resource class. Each class has a fixed set
// of channels (sub-metrics) that every entity of the class exposes.
type Class int

const (
	// ClassCPU is a CPU core. Channel: usage (percent busy).
	ClassCPU Class = iota
	// ClassDisk is a physical disk device. Channels: read, write (ops/sec).
	ClassDisk
	// ClassNet is a network interface. Channels: in, out (Mbps).
	ClassNet
)

// Channel names used by the built-in resource classes.
const (
	ChannelUsage = "usage"
	ChannelRead  = "read"
	ChannelWrite = "write"
	ChannelIn    = "in"
	ChannelOut   = "out"
)

// String returns the class name used in logs and config.
func (c Class) String() string {
	switch c {
	case ClassCPU:
		return "cpu"
	case ClassDisk:
		return "disk"
	case ClassNet:
		return "net"
	default:
		return "unknown"
	}
}

// Channels returns the fixed channel set for the class.
func (c Class) Channels() []string {
	switch c {
	case ClassCPU:
		return []string{ChannelUsage}
	case ClassDisk:
		return []string{ChannelRead, ChannelWrite}
	case ClassNet:
		return []string{ChannelIn, ChannelOut}
	default:
		return nil
	}
}

// Dashed reports whether a channel is drawn with a dashed stroke.
// Outgoing/write directions are dashed so a single entity color still
// disambiguates direction on a two-channel chart.
func Dashed(channel string) bool {
	return channel == ChannelOut || channel == ChannelWrite
}

// RatePoint is one derived rate value at a point in time, computed from two
// consecutive raw counter samples. Value is always >= 0.
type RatePoint struct {
	Time  time.Time
	Value float64
}

// Entity is one monitored resource instance (a core, a disk, an interface).
// Entities are created on first observation and live for the whole session;
// an instance that disappears keeps its color and last values but stops
// advancing.
type Entity struct {
	// Key is the stable string identity (core id, device name, interface name).
	Key string
	// Class is the entity's resource class.
	Class Class
	// Color is the display color hex string, assigned once from the palette.
	Color string
	// Created records when the entity was first observed.
	Created time.Time

	series map[string]*Series
}

// SeriesView is a read-only copy of one (entity, channel) series, handed to
// the rendering layer. Points are time-ordered, oldest first.
type SeriesView struct {
	EntityKey string
	Channel   string
	Color     string
	Dashed    bool
	Points    []RatePoint
	Current   float64
}

// ChartConfig describes what one chart subscribes to. It owns none of the
// series it reads.
type ChartConfig struct {
	// Title is the chart heading.
	Title string
	// Class selects which entities the chart shows.
	Class Class
	// Capacity is the rolling window length for the class's series buffers.
	Capacity int
	// Channels restricts the chart to a subset of the class channels.
	// Empty means all channels of the class.
	Channels []string
	// Unit is the Y-axis unit label ("%", "ops/s", "Mbps").
	Unit string
}

// channels resolves the effective channel list for the chart.
func (c ChartConfig) channels() []string {
	if len(c.Channels) > 0 {
		return c.Channels
	}
	return c.Class.Channels()
}
