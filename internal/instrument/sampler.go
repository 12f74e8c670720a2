package instrument

import (
	"math"

	"github.com/ducemobsta/songforge/internal/samples"
	"github.com/ducemobsta/songforge/internal/song"
)

// ReferenceMidi is the pitch a user sample is pinned to; other requested
// pitches retrigger the sample with a scaled playback rate.
const ReferenceMidi = 60 // C4

type samplerVoice struct {
	active    bool
	id        int
	age       int
	pos       float64
	step      float64
	velocity  float64
	releasing bool
	fade      float64
}

// Sampler plays one decoded sample buffer. It satisfies both capabilities:
// sustained voices retrigger it pitch-shifted, drum voices fire it one-shot
// at the reference pitch.
type Sampler struct {
	sampleRate float64
	data       []float32
	srcRate    float64
	releaseSec float64
	gain       float64
	voices     []samplerVoice
	nextID     int
}

const samplerVoices = 8

func NewSampler(sampleRate int, params song.VoiceParams, smp *samples.Sample) *Sampler {
	release := params.Release
	if release <= 0 {
		release = 0.05
	}
	return &Sampler{
		sampleRate: float64(sampleRate),
		data:       smp.Data,
		srcRate:    float64(smp.Rate),
		releaseSec: release,
		gain:       dbToGain(params.Volume),
		voices:     make([]samplerVoice, samplerVoices),
	}
}

func (s *Sampler) NoteOn(midi int, velocity float64) int {
	slot := s.stealVoice()
	id := s.nextID
	s.nextID++
	v := &s.voices[slot]
	v.active = true
	v.id = id
	v.age = 0
	v.pos = 0
	v.step = math.Pow(2, float64(midi-ReferenceMidi)/12) * s.srcRate / s.sampleRate
	v.velocity = clamp(velocity, 0, 1)
	v.releasing = false
	v.fade = 1
	return id
}

func (s *Sampler) NoteOff(id int) {
	for i := range s.voices {
		v := &s.voices[i]
		if v.active && v.id == id {
			v.releasing = true
		}
	}
}

func (s *Sampler) Hit(velocity float64) {
	s.NoteOn(ReferenceMidi, velocity)
}

func (s *Sampler) RenderFrame() (float32, float32) {
	var sum float64
	fadeStep := math.Pow(0.001, 1/(s.releaseSec*s.sampleRate))
	for i := range s.voices {
		v := &s.voices[i]
		if !v.active {
			continue
		}
		v.age++
		idx := int(v.pos)
		if idx >= len(s.data)-1 {
			v.active = false
			continue
		}
		frac := v.pos - float64(idx)
		smp := float64(s.data[idx])*(1-frac) + float64(s.data[idx+1])*frac
		if v.releasing {
			v.fade *= fadeStep
			if v.fade < 0.0005 {
				v.active = false
				continue
			}
		}
		sum += smp * v.fade * (0.2 + 0.8*v.velocity)
		v.pos += v.step
	}
	out := float32(clamp(sum*s.gain, -1, 1))
	return out, out
}

func (s *Sampler) stealVoice() int {
	for i := range s.voices {
		if !s.voices[i].active {
			return i
		}
	}
	oldest := 0
	oldestAge := -1
	for i := range s.voices {
		if s.voices[i].age > oldestAge {
			oldest = i
			oldestAge = s.voices[i].age
		}
	}
	return oldest
}

func (s *Sampler) ActiveVoiceCount() int {
	n := 0
	for i := range s.voices {
		if s.voices[i].active {
			n++
		}
	}
	return n
}

func (s *Sampler) Reset() {
	for i := range s.voices {
		s.voices[i] = samplerVoice{}
	}
}
