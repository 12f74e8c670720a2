package instrument

import (
	"errors"
	"fmt"

	"github.com/ducemobsta/songforge/internal/samples"
	"github.com/ducemobsta/songforge/internal/song"
)

// ErrBadSample marks a user sample that was present but unusable. This is a
// fatal construction error for the voice, never a silent fallback to
// synthesis.
var ErrBadSample = errors.New("unusable sample")

var ErrUnknownVoice = errors.New("unknown voice")

func isPercussive(v song.Voice) bool {
	switch v {
	case song.VoiceKick, song.VoiceSnare, song.VoiceHihat, song.VoicePercussion:
		return true
	}
	return false
}

// Resolve builds the instrument for one voice. A present sample wins over
// synthesis; an absent one selects the voice's procedural fallback. Hihat and
// percussion synthesis is fixed and ignores the supplied params.
func Resolve(voice song.Voice, params song.VoiceParams, smp *samples.Sample, sampleRate int) (*Resolved, error) {
	if smp != nil {
		if !smp.Valid() {
			return nil, fmt.Errorf("%w for voice %q", ErrBadSample, voice)
		}
		sampler := NewSampler(sampleRate, params, smp)
		if isPercussive(voice) {
			return &Resolved{Voice: voice, Kind: KindPercussive, Percussive: sampler}, nil
		}
		return &Resolved{Voice: voice, Kind: KindSustained, Sustained: sampler}, nil
	}
	switch voice {
	case song.VoiceChords, song.VoiceLead, song.VoiceCounterMelody, song.VoicePads:
		return &Resolved{Voice: voice, Kind: KindSustained, Sustained: NewPoly(sampleRate, params)}, nil
	case song.VoiceBass:
		return &Resolved{Voice: voice, Kind: KindSustained, Sustained: NewMono(sampleRate, params)}, nil
	case song.VoiceKick:
		return &Resolved{Voice: voice, Kind: KindPercussive, Percussive: NewKick(sampleRate, params)}, nil
	case song.VoiceSnare:
		return &Resolved{Voice: voice, Kind: KindPercussive, Percussive: NewSnare(sampleRate, params)}, nil
	case song.VoiceHihat:
		return &Resolved{Voice: voice, Kind: KindPercussive, Percussive: NewHihat(sampleRate)}, nil
	case song.VoicePercussion:
		return &Resolved{Voice: voice, Kind: KindPercussive, Percussive: NewPerc(sampleRate)}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVoice, voice)
}
