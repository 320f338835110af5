package metrics

import (
	"fmt"
	"time"
)

// ResetPolicy selects how a negative counter delta (driver reload, interface
// reset, wraparound) is handled.
type ResetPolicy int

const (
	// ResetRebaseline discards the tick and re-baselines on the new counter
	// value. No rate is emitted for the reset tick.
	ResetRebaseline ResetPolicy = iota
	// ResetClamp re-baselines and emits a zero rate for the reset tick, so
	// the series keeps advancing instead of freezing for one sample.
	ResetClamp
)

// ParseResetPolicy maps a config string to a ResetPolicy.
func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch s {
	case "", "rebaseline":
		return ResetRebaseline, nil
	case "clamp":
		return ResetClamp, nil
	default:
		return ResetRebaseline, fmt.Errorf("metrics: unknown reset policy %q", s)
	}
}

// sample is the retained last observation for one (entity, channel).
type sample struct {
	t time.Time
	v float64
}

// RateCalculator converts pairs of (cumulative counter, timestamp) samples
// into instantaneous rates. It retains only the last sample per
// (entity, channel) and shares no state with other components.
//
// It is not safe for concurrent use; the sampling loop is its only caller.
type RateCalculator struct {
	policy ResetPolicy
	scales map[string]float64
	last   map[string]sample
}

// NewRateCalculator creates a calculator with the given reset policy.
// All channels default to an unscaled per-second rate.
func NewRateCalculator(policy ResetPolicy) *RateCalculator {
	return &RateCalculator{
		policy: policy,
		scales: make(map[string]float64),
		last:   make(map[string]sample),
	}
}

// SetScale registers a unit scale factor applied to the per-second rate of
// a channel (e.g. 8/1e6 to turn bytes/sec into megabits/sec).
func (rc *RateCalculator) SetScale(channel string, factor float64) {
	rc.scales[channel] = factor
}

// Compute derives a rate from the previous and current samples of
// (entity, channel). The boolean is false when no rate can be produced:
// the first sample for the pair, a non-positive time delta, or a counter
// reset under the rebaseline policy. The stored baseline always reflects
// the current sample afterwards, except on a non-positive time delta where
// the previous baseline is kept.
func (rc *RateCalculator) Compute(entity, channel string, t time.Time, counter float64) (RatePoint, bool) {
	key := entity + "\x00" + channel

	prev, seen := rc.last[key]
	if !seen {
		rc.last[key] = sample{t: t, v: counter}
		return RatePoint{}, false
	}

	dt := t.Sub(prev.t).Seconds()
	if dt <= 0 {
		// Clock went backwards or a duplicate tick; keep the old baseline.
		return RatePoint{}, false
	}

	dv := counter - prev.v
	rc.last[key] = sample{t: t, v: counter}

	if dv < 0 {
		if rc.policy == ResetClamp {
			return RatePoint{Time: t, Value: 0}, true
		}
		return RatePoint{}, false
	}

	rate := dv / dt
	if factor, ok := rc.scales[channel]; ok {
		rate *= factor
	}
	return RatePoint{Time: t, Value: rate}, true
}

// Forget drops the stored baseline for (entity, channel). The next Compute
// call for the pair behaves like a first sample.
func (rc *RateCalculator) Forget(entity, channel string) {
	delete(rc.last, entity+"\x00"+channel)
}
