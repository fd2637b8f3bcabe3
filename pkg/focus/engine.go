package focus

import (
	"time"

	"github.com/lukereid/focusbuddy/pkg/sampler"
)

// Engine is the per-session scoring state machine. It owns the score,
// the penalty tracker, and the latest per-signal statuses; all mutation
// happens inside Tick, which the session controller calls from a single
// goroutine.
type Engine struct {
	cfg       Config
	score     int
	penalties *PenaltyTracker

	noiseStatus  Status
	peopleStatus Status
	lightStatus  Status
}

// NewEngine creates an engine ready for a session (score 100, no
// penalty memory).
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		cfg:       cfg,
		penalties: NewPenaltyTracker(cfg.Cooldown),
	}
	e.Reset()
	return e
}

// Reset restores the session-start state: full score, empty penalty
// memory, all signals good.
func (e *Engine) Reset() {
	e.score = 100
	e.penalties.Reset()
	e.noiseStatus = StatusGood
	e.peopleStatus = StatusGood
	e.lightStatus = StatusGood
}

// Score returns the current focus score.
func (e *Engine) Score() int {
	return e.score
}

// Tick consumes one round of readings at time t and returns the update
// for the presentation sink. The three penalties are independent, each
// gated only by its own cooldown; recovery uses the raw thresholds and
// ignores cooldown state entirely, so a gated-but-suppressed penalty
// condition still blocks recovery.
func (e *Engine) Tick(r Readings, t time.Time) Update {
	var notes []Notification

	noise := valueOr(r.Noise, 0)
	people := valueOr(r.People, 0)

	// Noise rule
	switch {
	case noise > e.cfg.NoisePenaltyThreshold && e.penalties.Allows(SignalNoise, t):
		e.applyPenalty(SignalNoise, e.cfg.NoisePenalty, t)
		e.noiseStatus = StatusAlert
		notes = append(notes, note(NoteNoise))
	case noise > e.cfg.NoiseCautionThreshold:
		e.noiseStatus = StatusCaution
	default:
		e.noiseStatus = StatusGood
	}

	// People rule
	switch {
	case people > e.cfg.MaxPeople && e.penalties.Allows(SignalPeople, t):
		e.applyPenalty(SignalPeople, e.cfg.PeoplePenalty, t)
		e.peopleStatus = StatusAlert
		notes = append(notes, note(NoteExtraPerson))
	case people <= e.cfg.MaxPeople:
		e.peopleStatus = StatusGood
	default:
		// Too many people, but the penalty is still cooling down.
		e.peopleStatus = StatusCaution
	}

	// Light rule, only when a frame was usable this tick. While the
	// reading is unavailable the previous status carries over and the
	// light signal neither penalizes nor blocks recovery.
	if r.Light.Available() {
		lux := r.Light.Value
		switch {
		case lux < e.cfg.LightPenaltyThreshold && e.penalties.Allows(SignalLight, t):
			e.applyPenalty(SignalLight, e.cfg.LightPenalty, t)
			e.lightStatus = StatusAlert
			notes = append(notes, note(NoteLowLight))
		case lux < e.cfg.LightCautionThreshold:
			e.lightStatus = StatusCaution
		default:
			e.lightStatus = StatusGood
		}
	}

	// Recovery: only when no signal is in penalty territory. Note the
	// asymmetry with the penalty thresholds (noise 25 vs 35): readings
	// in the caution band neither penalize nor recover.
	if noise <= e.cfg.NoiseCautionThreshold &&
		people <= e.cfg.MaxPeople &&
		(!r.Light.Available() || r.Light.Value >= e.cfg.LightPenaltyThreshold) {
		e.score = min(100, e.score+e.cfg.RecoveryStep)
	}

	// Alert escalation
	strong := e.score < e.cfg.AlertScore
	if strong {
		notes = append(notes, note(NoteTooDistracted))
	}

	u := Update{
		Score:         e.score,
		Noise:         e.noiseStatus,
		People:        e.peopleStatus,
		Light:         e.lightStatus,
		NoiseLevel:    noise,
		PersonCount:   people,
		StrongAlert:   strong,
		Notifications: notes,
	}
	if r.Light.Available() {
		lux := r.Light.Value
		u.LightLevel = &lux
	}
	return u
}

// applyPenalty decrements the score (floor 0) and records the penalty
// timestamp in one step.
func (e *Engine) applyPenalty(sig Signal, points int, t time.Time) {
	e.score = max(0, e.score-points)
	e.penalties.Record(sig, t)
}

func note(kind NotificationKind) Notification {
	return Notification{Kind: kind, Message: messages[kind]}
}

// valueOr reads an available value or falls back.
func valueOr(r sampler.Reading, fallback int) int {
	if r.Available() {
		return r.Value
	}
	return fallback
}
