// Package sequencer converts a composition's event lists into frame-stamped
// triggers against a transport clock and fires them during rendering.
package sequencer

import (
	"math"

	"github.com/ducemobsta/songforge/internal/song"
)

// Transport is the clock governing musical time: tempo, sample rate and the
// fixed 16-measure loop region. It is injected into both the live session and
// the offline renderer so the same scheduling logic runs against either.
type Transport struct {
	sampleRate int
	bpm        float64
}

func NewTransport(sampleRate, bpm int) *Transport {
	if bpm <= 0 {
		bpm = 120
	}
	return &Transport{sampleRate: sampleRate, bpm: float64(bpm)}
}

func (t *Transport) SampleRate() int { return t.sampleRate }

func (t *Transport) BPM() float64 { return t.bpm }

func (t *Transport) framesPerBeat() float64 {
	return float64(t.sampleRate) * 60 / t.bpm
}

// FrameAt converts a position in beats from loop start into a frame offset.
func (t *Transport) FrameAt(beats float64) int64 {
	return int64(math.Round(beats * t.framesPerBeat()))
}

// LoopFrames is the length of the loop region in frames: 16 measures of four
// beats at the transport tempo.
func (t *Transport) LoopFrames() int64 {
	return t.FrameAt(song.LoopBeats())
}
