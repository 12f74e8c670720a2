package song

import (
	"encoding/json"
	"fmt"
)

// Voice identifies one logical instrument part of a composition.
type Voice string

const (
	VoiceKick          Voice = "kick"
	VoiceSnare         Voice = "snare"
	VoiceHihat         Voice = "hihat"
	VoicePercussion    Voice = "percussion"
	VoiceChords        Voice = "chords"
	VoiceBass          Voice = "bass"
	VoiceLead          Voice = "lead"
	VoiceCounterMelody Voice = "counterMelody"
	VoicePads          Voice = "pads"
)

// AllVoices lists every voice in resolve and mix order.
var AllVoices = []Voice{
	VoiceKick, VoiceSnare, VoiceHihat, VoicePercussion,
	VoiceChords, VoiceBass, VoiceLead, VoiceCounterMelody, VoicePads,
}

// Loop region: every composition plays and exports exactly this span.
const (
	LoopMeasures    = 16
	BeatsPerMeasure = 4
)

// PitchSet holds one or more pitch names ("C4", ["C4","E4","G4"]).
// It unmarshals from either a single string or an array of strings.
type PitchSet []string

func (p *PitchSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = PitchSet{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("note must be a pitch name or an array of pitch names: %w", err)
	}
	*p = PitchSet(many)
	return nil
}

func (p *PitchSet) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*p = PitchSet{single}
		return nil
	}
	var many []string
	if err := unmarshal(&many); err != nil {
		return fmt.Errorf("note must be a pitch name or an array of pitch names: %w", err)
	}
	*p = PitchSet(many)
	return nil
}

// NoteEvent is a sustained-pitch event: chords, bass, lead, counter, pads.
type NoteEvent struct {
	Time     string   `json:"time" yaml:"time"`
	Note     PitchSet `json:"note" yaml:"note"`
	Duration string   `json:"duration" yaml:"duration"`
	Velocity float64  `json:"velocity" yaml:"velocity"`
}

// HitEvent is a pitchless drum hit; only its position matters. Pitch and
// duration come from the triggering voice.
type HitEvent struct {
	Time string `json:"time" yaml:"time"`
}

type Theme struct {
	Title       string `json:"title" yaml:"title"`
	Mood        string `json:"mood" yaml:"mood"`
	Description string `json:"description" yaml:"description"`
}

type Harmony struct {
	ChordProgression []NoteEvent `json:"chordProgression" yaml:"chordProgression"`
	Bassline         []NoteEvent `json:"bassline" yaml:"bassline"`
}

type Rhythm struct {
	Kick       []HitEvent `json:"kick" yaml:"kick"`
	Snare      []HitEvent `json:"snare" yaml:"snare"`
	Hihat      []HitEvent `json:"hihat" yaml:"hihat"`
	Percussion []HitEvent `json:"percussion,omitempty" yaml:"percussion,omitempty"`
}

type Melody struct {
	Lead          []NoteEvent `json:"lead" yaml:"lead"`
	CounterMelody []NoteEvent `json:"counterMelody,omitempty" yaml:"counterMelody,omitempty"`
	Pads          []NoteEvent `json:"pads" yaml:"pads"`
}

// VoiceParams are the per-voice synthesis parameters supplied by the
// composition source. Volume is in dB. Envelope times are in seconds.
// Oscillator applies to sustained voices (sine|triangle|sawtooth|square);
// Noise applies to the snare (white|pink|brown).
type VoiceParams struct {
	Volume     float64 `json:"volume" yaml:"volume"`
	Attack     float64 `json:"attack" yaml:"attack"`
	Decay      float64 `json:"decay" yaml:"decay"`
	Sustain    float64 `json:"sustain" yaml:"sustain"`
	Release    float64 `json:"release" yaml:"release"`
	Oscillator string  `json:"oscillator,omitempty" yaml:"oscillator,omitempty"`
	Noise      string  `json:"noise,omitempty" yaml:"noise,omitempty"`
}

type ReverbParams struct {
	Decay float64 `json:"decay" yaml:"decay"`
	Wet   float64 `json:"wet" yaml:"wet"`
}

type MixParams struct {
	Chords        VoiceParams  `json:"chords" yaml:"chords"`
	Bass          VoiceParams  `json:"bass" yaml:"bass"`
	Lead          VoiceParams  `json:"lead" yaml:"lead"`
	CounterMelody VoiceParams  `json:"counterMelody" yaml:"counterMelody"`
	Pads          VoiceParams  `json:"pads" yaml:"pads"`
	Kick          VoiceParams  `json:"kick" yaml:"kick"`
	Snare         VoiceParams  `json:"snare" yaml:"snare"`
	Reverb        ReverbParams `json:"reverb" yaml:"reverb"`
}

// Composition is the full declarative song handed over by the composition
// source. It is treated as immutable for the lifetime of one playback session.
type Composition struct {
	Theme     Theme     `json:"theme" yaml:"theme"`
	Tempo     int       `json:"tempo" yaml:"tempo"`
	Harmony   Harmony   `json:"harmony" yaml:"harmony"`
	Rhythm    Rhythm    `json:"rhythm" yaml:"rhythm"`
	Melody    Melody    `json:"melody" yaml:"melody"`
	MixParams MixParams `json:"mixParams" yaml:"mixParams"`
}

// Params returns the mix parameters for a voice. Hihat and percussion have no
// user-facing parameters and return zero values.
func (c *Composition) Params(v Voice) VoiceParams {
	switch v {
	case VoiceChords:
		return c.MixParams.Chords
	case VoiceBass:
		return c.MixParams.Bass
	case VoiceLead:
		return c.MixParams.Lead
	case VoiceCounterMelody:
		return c.MixParams.CounterMelody
	case VoicePads:
		return c.MixParams.Pads
	case VoiceKick:
		return c.MixParams.Kick
	case VoiceSnare:
		return c.MixParams.Snare
	}
	return VoiceParams{}
}
