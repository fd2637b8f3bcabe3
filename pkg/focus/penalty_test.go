package focus

import (
	"errors"
	"testing"
	"time"
)

var errSensor = errors.New("sensor broke")

func TestPenaltyTrackerAllowsFirstApplication(t *testing.T) {
	p := NewPenaltyTracker(8 * time.Second)
	if !p.Allows(SignalNoise, t0) {
		t.Fatal("fresh tracker should allow a penalty")
	}
}

func TestPenaltyTrackerCooldownBoundary(t *testing.T) {
	p := NewPenaltyTracker(8 * time.Second)
	p.Record(SignalNoise, t0)

	cases := []struct {
		elapsed time.Duration
		want    bool
	}{
		{0, false},
		{7999 * time.Millisecond, false},
		{8 * time.Second, true},
		{9 * time.Second, true},
	}
	for _, tc := range cases {
		if got := p.Allows(SignalNoise, t0.Add(tc.elapsed)); got != tc.want {
			t.Errorf("Allows at +%v = %v, want %v", tc.elapsed, got, tc.want)
		}
	}
}

func TestPenaltyTrackerSignalsAreIndependent(t *testing.T) {
	p := NewPenaltyTracker(8 * time.Second)
	p.Record(SignalNoise, t0)

	if !p.Allows(SignalLight, t0) {
		t.Error("noise penalty must not gate the light signal")
	}
	if !p.Allows(SignalPeople, t0) {
		t.Error("noise penalty must not gate the people signal")
	}
}

func TestPenaltyTrackerReset(t *testing.T) {
	p := NewPenaltyTracker(8 * time.Second)
	p.Record(SignalNoise, t0)
	p.Reset()
	if !p.Allows(SignalNoise, t0.Add(time.Second)) {
		t.Fatal("Reset should clear penalty memory")
	}
}
