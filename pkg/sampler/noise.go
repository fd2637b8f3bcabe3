package sampler

import (
	"math"

	"github.com/lukereid/focusbuddy/pkg/audioio"
)

// Decibel conversion constants. The epsilon guards log10(0); the offset
// calibrates silence to read near 0 instead of deeply negative.
const (
	noiseEpsilon = 1e-10
	noiseOffset  = 90
)

// Noise measures the ambient noise level from a rolling audio window.
// Readings are decibel-like integers clamped to [0,100].
type Noise struct {
	waveform *audioio.Waveform
}

// NewNoise creates a noise probe over the given waveform window.
// A nil waveform means no audio source is attached; the probe then
// reads 0, failing soft.
func NewNoise(waveform *audioio.Waveform) *Noise {
	return &Noise{waveform: waveform}
}

// Sample computes the current level: RMS amplitude over the window,
// 20*log10(max(rms, eps)) + 90, clamped to [0,100] and rounded.
func (n *Noise) Sample() Reading {
	if n.waveform == nil {
		return Ok(0)
	}

	samples := n.waveform.Snapshot()
	if len(samples) == 0 {
		return Ok(0)
	}

	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	rms := math.Sqrt(sum / float64(len(samples)))

	db := 20*math.Log10(math.Max(rms, noiseEpsilon)) + noiseOffset
	return Ok(clampInt(int(math.Round(db)), 0, 100))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
