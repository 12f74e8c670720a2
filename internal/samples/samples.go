// Package samples holds decoded PCM sample buffers keyed by voice, and
// decoders that turn user-uploaded audio files into those buffers.
package samples

import (
	"errors"

	"github.com/ducemobsta/songforge/internal/song"
)

var ErrEmptySample = errors.New("sample has no audio data")

// Sample is one decoded, mono audio buffer at its source sample rate.
type Sample struct {
	Data []float32
	Rate int
}

// Valid reports whether the sample can back a playable instrument.
func (s *Sample) Valid() bool {
	return s != nil && len(s.Data) > 0 && s.Rate > 0
}

// Map assigns an optional sample to each voice. A missing entry means the
// voice falls back to procedural synthesis.
type Map map[song.Voice]*Sample

// mixdown interleaved multi-channel float32 to mono.
func mixdown(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	out := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += interleaved[f*channels+c]
		}
		out[f] = sum / float32(channels)
	}
	return out
}
