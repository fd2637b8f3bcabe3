package focus

import "time"

// PenaltyTracker remembers when each signal last cost the score points,
// gating how often a persistently-bad signal may decrement it. It is
// not safe for concurrent use; the engine owns it and mutates it only
// within a tick.
type PenaltyTracker struct {
	cooldown    time.Duration
	lastApplied map[Signal]time.Time
}

// NewPenaltyTracker creates a tracker with the given cooldown.
func NewPenaltyTracker(cooldown time.Duration) *PenaltyTracker {
	return &PenaltyTracker{
		cooldown:    cooldown,
		lastApplied: make(map[Signal]time.Time),
	}
}

// Allows reports whether a penalty for sig may be applied at time t:
// either no penalty was ever applied for it, or the cooldown has fully
// elapsed since the last one.
func (p *PenaltyTracker) Allows(sig Signal, t time.Time) bool {
	last, ok := p.lastApplied[sig]
	if !ok {
		return true
	}
	return t.Sub(last) >= p.cooldown
}

// Record notes that a penalty for sig was applied at time t. Callers
// must record in the same step as the score decrement so the two can
// never diverge.
func (p *PenaltyTracker) Record(sig Signal, t time.Time) {
	p.lastApplied[sig] = t
}

// Reset clears all penalty memory (session start).
func (p *PenaltyTracker) Reset() {
	p.lastApplied = make(map[Signal]time.Time)
}
