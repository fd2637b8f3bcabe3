// Package focus implements the multi-sensor scoring engine: each tick
// it fuses the noise, person-count, and light readings into one bounded
// score, with per-signal penalty cooldowns so a sustained bad condition
// cannot collapse the score or spam notifications.
package focus

import (
	"time"

	"github.com/lukereid/focusbuddy/pkg/sampler"
)

// Signal identifies one of the three sampled conditions.
type Signal string

const (
	SignalNoise  Signal = "noise"
	SignalPeople Signal = "people"
	SignalLight  Signal = "light"
)

// Status is the tri-state classification of one signal.
type Status string

const (
	StatusGood    Status = "good"
	StatusCaution Status = "caution"
	StatusAlert   Status = "alert"
)

// NotificationKind identifies a user-facing notification.
type NotificationKind string

const (
	NoteNoise         NotificationKind = "noise_distraction"
	NoteExtraPerson   NotificationKind = "extra_person"
	NoteLowLight      NotificationKind = "low_light"
	NoteTooDistracted NotificationKind = "too_distracted"
)

// Notification is one toast-worthy event emitted by a tick.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

// Toast wording, kept from the study-aid UI.
var messages = map[NotificationKind]string{
	NoteNoise:         "🔊 Noise increasing. Take a break or change your position.",
	NoteExtraPerson:   "👥 Distraction detected: Another person entered the study area.",
	NoteLowLight:      "💡 The light is too dull for studying. Increase the light or change location.",
	NoteTooDistracted: "🚨 You are too distracted. Avoid distractions and study hard.",
}

// Readings are the three fresh probe outcomes for one tick.
type Readings struct {
	Noise  sampler.Reading
	Light  sampler.Reading
	People sampler.Reading
}

// Update is the engine output for one tick, consumed by the
// presentation sink.
type Update struct {
	Score         int              `json:"score"`
	Noise         Status           `json:"noise"`
	People        Status           `json:"people"`
	Light         Status           `json:"light"`
	NoiseLevel    int              `json:"noise_level"`
	PersonCount   int              `json:"person_count"`
	LightLevel    *int             `json:"light_level,omitempty"` // nil while unavailable
	StrongAlert   bool             `json:"strong_alert"`
	Notifications []Notification   `json:"notifications,omitempty"`
}

// Config holds the scoring tunables.
type Config struct {
	// Thresholds
	NoisePenaltyThreshold int // penalty above this dB level
	NoiseCautionThreshold int // caution above this (also the recovery bound)
	MaxPeople             int // more than this in frame is a distraction
	LightPenaltyThreshold int // penalty below this lux
	LightCautionThreshold int // caution below this lux

	// Penalty weights and recovery step
	NoisePenalty  int
	PeoplePenalty int
	LightPenalty  int
	RecoveryStep  int

	// AlertScore triggers the strong too-distracted alert below it.
	AlertScore int

	// Cooldown is the minimum gap between two penalties of one signal.
	Cooldown time.Duration

	// TickInterval is the scoring cadence during an active session.
	TickInterval time.Duration
}

// DefaultConfig returns the production scoring parameters.
func DefaultConfig() Config {
	return Config{
		NoisePenaltyThreshold: 35,
		NoiseCautionThreshold: 25,
		MaxPeople:             1,
		LightPenaltyThreshold: 300,
		LightCautionThreshold: 400,

		NoisePenalty:  10,
		PeoplePenalty: 5,
		LightPenalty:  5,
		RecoveryStep:  1,

		AlertScore: 40,

		Cooldown:     8 * time.Second,
		TickInterval: 2 * time.Second,
	}
}
