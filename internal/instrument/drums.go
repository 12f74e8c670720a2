package instrument

import (
	"math"

	"github.com/ducemobsta/songforge/internal/song"
)

// KickDrum is a pitched drum model: a sine with an exponential frequency
// sweep and a velocity-scaled amplitude envelope.
type KickDrum struct {
	sampleRate float64
	startFreq  float64
	endFreq    float64
	sweepSec   float64
	attackSec  float64
	decaySec   float64
	gain       float64

	active   bool
	phase    float64
	freq     float64
	level    float64
	rising   bool
	velocity float64
}

func NewKick(sampleRate int, params song.VoiceParams) *KickDrum {
	attack := params.Attack
	if attack <= 0 {
		attack = 0.002
	}
	decay := params.Decay
	if decay <= 0 {
		decay = 0.4
	}
	return &KickDrum{
		sampleRate: float64(sampleRate),
		startFreq:  120,
		endFreq:    45,
		sweepSec:   0.06,
		attackSec:  attack,
		decaySec:   decay,
		gain:       dbToGain(params.Volume),
	}
}

func (k *KickDrum) Hit(velocity float64) {
	k.active = true
	k.rising = true
	k.phase = 0
	k.freq = k.startFreq
	k.level = 0
	k.velocity = clamp(velocity, 0, 1)
}

func (k *KickDrum) RenderFrame() (float32, float32) {
	if !k.active {
		return 0, 0
	}
	// Exponential pitch sweep toward the end frequency.
	sweep := math.Pow(k.endFreq/k.startFreq, 1/(k.sweepSec*k.sampleRate))
	if k.freq > k.endFreq {
		k.freq *= sweep
	}
	if k.rising {
		k.level += 1 / (k.attackSec * k.sampleRate)
		if k.level >= 1 {
			k.level = 1
			k.rising = false
		}
	} else {
		k.level *= math.Pow(0.001, 1/(k.decaySec*k.sampleRate))
		if k.level < 0.0005 {
			k.active = false
			return 0, 0
		}
	}
	k.phase += k.freq / k.sampleRate
	if k.phase >= 1 {
		k.phase -= 1
	}
	out := float32(math.Sin(k.phase*twoPi) * k.level * (0.2 + 0.8*k.velocity) * k.gain)
	return out, out
}

func (k *KickDrum) ActiveVoiceCount() int {
	if k.active {
		return 1
	}
	return 0
}

func (k *KickDrum) Reset() {
	k.active = false
	k.phase = 0
	k.level = 0
}

type noiseColor int

const (
	noiseWhite noiseColor = iota
	noisePink
	noiseBrown
)

func colorFor(name string) noiseColor {
	switch name {
	case "pink":
		return noisePink
	case "brown":
		return noiseBrown
	default:
		return noiseWhite
	}
}

const noiseSeed = 0xACE1

// SnareDrum is a colored-noise model (white, pink or brown per the mix
// params) with a short amplitude envelope. The noise source is a fixed-seed
// LFSR so renders are reproducible.
type SnareDrum struct {
	sampleRate float64
	color      noiseColor
	attackSec  float64
	decaySec   float64
	gain       float64

	active   bool
	rising   bool
	level    float64
	velocity float64
	lfsr     uint16
	pink     [3]float64
	brown    float64
}

func NewSnare(sampleRate int, params song.VoiceParams) *SnareDrum {
	attack := params.Attack
	if attack <= 0 {
		attack = 0.001
	}
	decay := params.Decay
	if decay <= 0 {
		decay = 0.2
	}
	return &SnareDrum{
		sampleRate: float64(sampleRate),
		color:      colorFor(params.Noise),
		attackSec:  attack,
		decaySec:   decay,
		gain:       dbToGain(params.Volume),
		lfsr:       noiseSeed,
	}
}

func (s *SnareDrum) Hit(velocity float64) {
	s.active = true
	s.rising = true
	s.level = 0
	s.velocity = clamp(velocity, 0, 1)
}

func (s *SnareDrum) nextNoise() float64 {
	bit := (s.lfsr ^ (s.lfsr >> 1)) & 1
	s.lfsr = (s.lfsr >> 1) | (bit << 15)
	white := float64(s.lfsr)/32768.0 - 1.0
	switch s.color {
	case noisePink:
		// Cascade of leaky one-pole lowpasses summed with the raw signal
		// gives an approximate -3 dB/octave slope.
		s.pink[0] = 0.997*s.pink[0] + 0.029591*white
		s.pink[1] = 0.985*s.pink[1] + 0.032534*white
		s.pink[2] = 0.950*s.pink[2] + 0.048056*white
		return (s.pink[0] + s.pink[1] + s.pink[2] + white*0.1848) * 1.4
	case noiseBrown:
		s.brown = 0.99*s.brown + white*0.1
		return s.brown * 3.5
	default:
		return white
	}
}

func (s *SnareDrum) RenderFrame() (float32, float32) {
	if !s.active {
		return 0, 0
	}
	if s.rising {
		s.level += 1 / (s.attackSec * s.sampleRate)
		if s.level >= 1 {
			s.level = 1
			s.rising = false
		}
	} else {
		s.level *= math.Pow(0.001, 1/(s.decaySec*s.sampleRate))
		if s.level < 0.0005 {
			s.active = false
			return 0, 0
		}
	}
	out := float32(clamp(s.nextNoise(), -1, 1) * s.level * (0.2 + 0.8*s.velocity) * s.gain)
	return out, out
}

func (s *SnareDrum) ActiveVoiceCount() int {
	if s.active {
		return 1
	}
	return 0
}

func (s *SnareDrum) Reset() {
	s.active = false
	s.level = 0
	s.lfsr = noiseSeed
	s.pink = [3]float64{}
	s.brown = 0
}

// hihatRatios are the classic six inharmonic square-oscillator ratios of a
// metallic cymbal model, against a 40 Hz fundamental.
var hihatRatios = [6]float64{2, 3, 4.16, 5.43, 6.79, 8.21}

// Hihat is a fixed metallic model; it takes no mix parameters.
type Hihat struct {
	sampleRate float64
	decaySec   float64
	gain       float64

	active   bool
	level    float64
	velocity float64
	phases   [6]float64
	hpPrevIn float64
	hpPrev   float64
}

func NewHihat(sampleRate int) *Hihat {
	return &Hihat{
		sampleRate: float64(sampleRate),
		decaySec:   0.06,
		gain:       dbToGain(-10),
	}
}

func (h *Hihat) Hit(velocity float64) {
	h.active = true
	h.level = 1
	h.velocity = clamp(velocity, 0, 1)
	h.phases = [6]float64{}
}

func (h *Hihat) RenderFrame() (float32, float32) {
	if !h.active {
		return 0, 0
	}
	var sum float64
	for i, ratio := range hihatRatios {
		h.phases[i] += 40 * ratio / h.sampleRate
		if h.phases[i] >= 1 {
			h.phases[i] -= 1
		}
		if h.phases[i] < 0.5 {
			sum += 1
		} else {
			sum -= 1
		}
	}
	sum /= 6
	// One-pole highpass keeps only the metallic shimmer.
	const r = 0.97
	hp := sum - h.hpPrevIn + r*h.hpPrev
	h.hpPrevIn = sum
	h.hpPrev = hp
	h.level *= math.Pow(0.001, 1/(h.decaySec*h.sampleRate))
	if h.level < 0.0005 {
		h.active = false
		return 0, 0
	}
	out := float32(clamp(hp, -1, 1) * h.level * (0.2 + 0.8*h.velocity) * h.gain)
	return out, out
}

func (h *Hihat) ActiveVoiceCount() int {
	if h.active {
		return 1
	}
	return 0
}

func (h *Hihat) Reset() {
	h.active = false
	h.level = 0
	h.phases = [6]float64{}
	h.hpPrevIn = 0
	h.hpPrev = 0
}

// NewPerc is the fixed percussion voice: the pitched-drum model tuned higher
// and shorter than the kick.
func NewPerc(sampleRate int) *KickDrum {
	return &KickDrum{
		sampleRate: float64(sampleRate),
		startFreq:  320,
		endFreq:    180,
		sweepSec:   0.02,
		attackSec:  0.001,
		decaySec:   0.12,
		gain:       dbToGain(-8),
	}
}
