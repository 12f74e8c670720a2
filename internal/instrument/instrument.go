// Package instrument builds ready-to-trigger sound sources for each voice of
// a composition: sample playback when a user sample exists, procedural
// synthesis otherwise.
package instrument

import (
	"math"

	"github.com/ducemobsta/songforge/internal/song"
)

// Source renders audio one stereo frame at a time. Every resolved instrument
// is a Source; the session mixes all sources into the shared reverb send.
type Source interface {
	RenderFrame() (float32, float32)
	// ActiveVoiceCount reports voices still sounding, including release tails.
	ActiveVoiceCount() int
	// Reset silences all voices and clears internal state, returning the
	// source to its just-constructed condition.
	Reset()
}

// Sustained supports attack-then-release triggering at arbitrary pitches.
// NoteOn returns a voice id to hand back to NoteOff.
type Sustained interface {
	Source
	NoteOn(midi int, velocity float64) int
	NoteOff(id int)
}

// Percussive fires one-shot hits at the voice's fixed reference pitch.
type Percussive interface {
	Source
	Hit(velocity float64)
}

// Kind is the closed capability tag the scheduler dispatches on.
type Kind int

const (
	KindSustained Kind = iota
	KindPercussive
)

// Resolved binds one voice to its constructed sound source. Exactly one of
// Sustained/Percussive is non-nil, matching Kind.
type Resolved struct {
	Voice      song.Voice
	Kind       Kind
	Sustained  Sustained
	Percussive Percussive
}

// Source returns the render side of the instrument regardless of kind.
func (r *Resolved) Source() Source {
	if r.Kind == KindPercussive {
		return r.Percussive
	}
	return r.Sustained
}

func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

func dbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
