package instrument

import (
	"math"
	"sync/atomic"

	"github.com/ducemobsta/songforge/internal/song"
)

const twoPi = math.Pi * 2

type waveShape int

const (
	waveSine waveShape = iota
	waveTriangle
	waveSawtooth
	waveSquare
)

func shapeFor(name string) waveShape {
	switch name {
	case "sine":
		return waveSine
	case "sawtooth":
		return waveSawtooth
	case "square":
		return waveSquare
	default:
		return waveTriangle
	}
}

type oscVoice struct {
	active   bool
	id       int
	age      int
	freq     float64
	phase    float64
	velocity float64
	env      adsr
}

// Synth is an oscillator synthesizer with an ADSR envelope per voice.
// With one slot it behaves monophonically (bass); with several it is the
// polyphonic fallback for chords, lead, counter-melody and pads.
type Synth struct {
	sampleRate float64
	shape      waveShape
	env        adsr
	voices     []oscVoice
	nextID     int
	gain       uint64
}

const defaultPolyVoices = 8

// NewPoly builds a polyphonic oscillator synth from the voice's mix params.
func NewPoly(sampleRate int, params song.VoiceParams) *Synth {
	return newSynth(sampleRate, params, defaultPolyVoices)
}

// NewMono builds a single-voice synth; a new note steals the previous one.
func NewMono(sampleRate int, params song.VoiceParams) *Synth {
	return newSynth(sampleRate, params, 1)
}

func newSynth(sampleRate int, params song.VoiceParams, numVoices int) *Synth {
	env := adsr{
		attackSec:  params.Attack,
		decaySec:   params.Decay,
		sustainLvl: params.Sustain,
		releaseSec: params.Release,
	}
	if env.attackSec <= 0 {
		env.attackSec = 0.01
	}
	if env.decaySec <= 0 {
		env.decaySec = 0.1
	}
	if env.sustainLvl <= 0 || env.sustainLvl > 1 {
		env.sustainLvl = 0.7
	}
	if env.releaseSec <= 0 {
		env.releaseSec = 0.3
	}
	s := &Synth{
		sampleRate: float64(sampleRate),
		shape:      shapeFor(params.Oscillator),
		env:        env,
		voices:     make([]oscVoice, numVoices),
		gain:       math.Float64bits(dbToGain(params.Volume)),
	}
	return s
}

func (s *Synth) NoteOn(midi int, velocity float64) int {
	slot := s.stealVoice()
	id := s.nextID
	s.nextID++
	v := &s.voices[slot]
	v.active = true
	v.id = id
	v.age = 0
	v.freq = midiToFreq(midi)
	v.phase = 0
	v.velocity = clamp(velocity, 0, 1)
	v.env = s.env
	v.env.trigger()
	return id
}

func (s *Synth) NoteOff(id int) {
	for i := range s.voices {
		v := &s.voices[i]
		if v.active && v.id == id {
			v.env.release()
		}
	}
}

func (s *Synth) RenderFrame() (float32, float32) {
	var sum float64
	for i := range s.voices {
		v := &s.voices[i]
		if !v.active {
			continue
		}
		v.age++
		level := v.env.advance(s.sampleRate)
		if !v.env.active() {
			v.active = false
			continue
		}
		sum += s.renderWave(v) * level * (0.15 + 0.85*v.velocity)
	}
	out := float32(clamp(sum*s.gainValue(), -1, 1))
	return out, out
}

// polyBLEP reduces aliasing at waveform discontinuities.
func polyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

func (s *Synth) renderWave(v *oscVoice) float64 {
	dt := v.freq / s.sampleRate
	v.phase += dt
	if v.phase >= 1 {
		v.phase -= 1
	}
	switch s.shape {
	case waveSine:
		return math.Sin(v.phase * twoPi)
	case waveSawtooth:
		out := 2*v.phase - 1
		out -= polyBLEP(v.phase, dt)
		return out
	case waveSquare:
		out := -1.0
		if v.phase < 0.5 {
			out = 1
		}
		out += polyBLEP(v.phase, dt)
		out -= polyBLEP(math.Mod(v.phase+0.5, 1), dt)
		return out
	default:
		return 2*math.Abs(2*v.phase-1) - 1
	}
}

func (s *Synth) stealVoice() int {
	for i := range s.voices {
		if !s.voices[i].active {
			return i
		}
	}
	oldest := 0
	oldestAge := -1
	for i := range s.voices {
		v := &s.voices[i]
		if v.env.state == envRelease && v.age > oldestAge {
			oldest = i
			oldestAge = v.age
		}
	}
	if oldestAge >= 0 {
		return oldest
	}
	for i := range s.voices {
		if s.voices[i].age > oldestAge {
			oldest = i
			oldestAge = s.voices[i].age
		}
	}
	return oldest
}

func (s *Synth) ActiveVoiceCount() int {
	n := 0
	for i := range s.voices {
		if s.voices[i].active {
			n++
		}
	}
	return n
}

func (s *Synth) Reset() {
	for i := range s.voices {
		s.voices[i] = oscVoice{}
		s.voices[i].env.state = envOff
	}
}

func (s *Synth) SetGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&s.gain, math.Float64bits(gain))
}

func (s *Synth) gainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&s.gain))
}
