// Package sampler implements the three signal probes a focus session
// samples each scoring tick: ambient noise, ambient light, and the
// number of people in frame. Probes fail soft: a broken sensor degrades
// its own signal and never escalates to the session.
package sampler

import "fmt"

// State tags a probe outcome so downstream logic can branch on
// availability instead of guessing from sentinel values. The light
// probe's Unavailable state in particular must not be confused with a
// genuine zero-lux reading.
type State int

const (
	// StateOk means Value holds a fresh reading.
	StateOk State = iota
	// StateUnavailable means the sensor had nothing usable this tick
	// (e.g. the camera has not produced a decodable frame yet).
	StateUnavailable
	// StateFailed means the probe errored; Err holds the cause.
	StateFailed
)

// Reading is one probe outcome for one tick.
type Reading struct {
	State State
	Value int
	Err   error
}

// Ok builds an available reading.
func Ok(value int) Reading {
	return Reading{State: StateOk, Value: value}
}

// Unavailable builds a no-data reading.
func Unavailable() Reading {
	return Reading{State: StateUnavailable}
}

// Failed builds an errored reading.
func Failed(err error) Reading {
	return Reading{State: StateFailed, Err: err}
}

// Available reports whether the reading carries a usable value.
func (r Reading) Available() bool {
	return r.State == StateOk
}

// String renders the reading for logs.
func (r Reading) String() string {
	switch r.State {
	case StateOk:
		return fmt.Sprintf("%d", r.Value)
	case StateUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("failed: %v", r.Err)
	}
}
