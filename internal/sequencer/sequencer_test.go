package sequencer

import (
	"io"
	"log"
	"testing"

	"github.com/ducemobsta/songforge/internal/instrument"
	"github.com/ducemobsta/songforge/internal/song"
)

// countingSynth records note lifecycle calls without producing audio.
type countingSynth struct {
	ons    int
	offs   int
	nextID int
}

func (c *countingSynth) RenderFrame() (float32, float32) { return 0, 0 }
func (c *countingSynth) ActiveVoiceCount() int           { return c.ons - c.offs }
func (c *countingSynth) Reset()                          {}
func (c *countingSynth) NoteOn(midi int, velocity float64) int {
	c.ons++
	c.nextID++
	return c.nextID
}
func (c *countingSynth) NoteOff(id int) { c.offs++ }

type countingDrum struct {
	hits int
}

func (c *countingDrum) RenderFrame() (float32, float32) { return 0, 0 }
func (c *countingDrum) ActiveVoiceCount() int           { return 0 }
func (c *countingDrum) Reset()                          {}
func (c *countingDrum) Hit(velocity float64)            { c.hits++ }

func sustained(v song.Voice, s instrument.Sustained) *instrument.Resolved {
	return &instrument.Resolved{Voice: v, Kind: instrument.KindSustained, Sustained: s}
}

func percussive(v song.Voice, p instrument.Percussive) *instrument.Resolved {
	return &instrument.Resolved{Voice: v, Kind: instrument.KindPercussive, Percussive: p}
}

func quietOptions() Options {
	return Options{Logger: log.New(io.Discard, "", 0)}
}

// testTransport uses a low sample rate to keep frame counts small:
// 100 Hz at 120 BPM gives 50 frames per beat and a 3200-frame loop.
func testTransport() *Transport {
	return NewTransport(100, 120)
}

func TestCompileCountsEveryStream(t *testing.T) {
	comp := &song.Composition{
		Tempo: 120,
		Harmony: song.Harmony{
			ChordProgression: []song.NoteEvent{{Time: "0:0:0", Note: song.PitchSet{"C4", "E4", "G4"}, Duration: "1m"}},
			Bassline:         []song.NoteEvent{{Time: "0:0:0", Note: song.PitchSet{"C2"}, Duration: "2n"}},
		},
		Rhythm: song.Rhythm{
			Kick:  []song.HitEvent{{Time: "0:0:0"}, {Time: "0:2:0"}},
			Snare: []song.HitEvent{{Time: "0:1:0"}},
			Hihat: []song.HitEvent{{Time: "0:0:2"}, {Time: "0:1:2"}},
		},
		Melody: song.Melody{
			Lead: []song.NoteEvent{{Time: "1:0:0", Note: song.PitchSet{"G4"}, Duration: "8n"}},
			Pads: []song.NoteEvent{},
		},
	}
	insts := map[song.Voice]*instrument.Resolved{
		song.VoiceChords: sustained(song.VoiceChords, &countingSynth{}),
		song.VoiceBass:   sustained(song.VoiceBass, &countingSynth{}),
		song.VoiceLead:   sustained(song.VoiceLead, &countingSynth{}),
		song.VoiceKick:   percussive(song.VoiceKick, &countingDrum{}),
		song.VoiceSnare:  percussive(song.VoiceSnare, &countingDrum{}),
		song.VoiceHihat:  percussive(song.VoiceHihat, &countingDrum{}),
	}
	seq := New(comp, insts, testTransport(), quietOptions())
	if got, want := seq.TriggerCount(), 8; got != want {
		t.Fatalf("trigger count = %d, want %d", got, want)
	}
	if seq.SkippedCount() != 0 {
		t.Fatalf("skipped = %d, want 0", seq.SkippedCount())
	}
}

func TestMalformedEventsSkippedIndividually(t *testing.T) {
	comp := &song.Composition{
		Tempo: 120,
		Melody: song.Melody{
			Lead: []song.NoteEvent{
				{Time: "0:0:0", Note: song.PitchSet{"C4"}, Duration: "4n"},
				{Time: "bogus", Note: song.PitchSet{"C4"}, Duration: "4n"},
				{Time: "0:1:0", Note: song.PitchSet{"H4"}, Duration: "4n"},
				{Time: "0:2:0", Note: song.PitchSet{"C4"}, Duration: "huh"},
				{Time: "0:3:0", Note: nil, Duration: "4n"},
				{Time: "16:0:0", Note: song.PitchSet{"C4"}, Duration: "4n"},
				{Time: "0:3:0", Note: song.PitchSet{"E4"}, Duration: "4n"},
			},
		},
	}
	insts := map[song.Voice]*instrument.Resolved{
		song.VoiceLead: sustained(song.VoiceLead, &countingSynth{}),
	}
	var skippedVoices []song.Voice
	var skippedIdx []int
	opts := Options{OnSkip: func(voice song.Voice, index int, err error) {
		skippedVoices = append(skippedVoices, voice)
		skippedIdx = append(skippedIdx, index)
	}}
	seq := New(comp, insts, testTransport(), opts)

	if got, want := seq.TriggerCount(), 2; got != want {
		t.Fatalf("trigger count = %d, want %d", got, want)
	}
	if got, want := seq.SkippedCount(), 5; got != want {
		t.Fatalf("skipped = %d, want %d", got, want)
	}
	if len(skippedIdx) != 5 || skippedIdx[0] != 1 || skippedIdx[4] != 5 {
		t.Fatalf("skip indices = %v", skippedIdx)
	}
	for _, v := range skippedVoices {
		if v != song.VoiceLead {
			t.Fatalf("skip voice = %s", v)
		}
	}
}

func TestAdvanceFiresHitsAndNotes(t *testing.T) {
	kick := &countingDrum{}
	chords := &countingSynth{}
	comp := &song.Composition{
		Tempo: 120,
		Rhythm: song.Rhythm{
			Kick: []song.HitEvent{{Time: "0:0:0"}, {Time: "0:1:0"}},
		},
		Harmony: song.Harmony{
			// 4n duration is one beat: 50 frames at the test transport.
			ChordProgression: []song.NoteEvent{{Time: "0:0:0", Note: song.PitchSet{"C4", "E4"}, Duration: "4n"}},
		},
	}
	insts := map[song.Voice]*instrument.Resolved{
		song.VoiceKick:   percussive(song.VoiceKick, kick),
		song.VoiceChords: sustained(song.VoiceChords, chords),
	}
	seq := New(comp, insts, testTransport(), quietOptions())

	seq.Advance()
	if kick.hits != 1 {
		t.Fatalf("kick hits after frame 0 = %d, want 1", kick.hits)
	}
	if chords.ons != 2 {
		t.Fatalf("chord note-ons = %d, want 2", chords.ons)
	}
	if chords.offs != 0 {
		t.Fatalf("premature note-off")
	}

	for i := 0; i < 50; i++ {
		seq.Advance()
	}
	if chords.offs != 2 {
		t.Fatalf("chord note-offs after one beat = %d, want 2", chords.offs)
	}
	if kick.hits != 2 {
		t.Fatalf("kick hits after one beat = %d, want 2", kick.hits)
	}
}

func TestLoopWraps(t *testing.T) {
	kick := &countingDrum{}
	comp := &song.Composition{
		Tempo:  120,
		Rhythm: song.Rhythm{Kick: []song.HitEvent{{Time: "0:0:0"}}},
	}
	insts := map[song.Voice]*instrument.Resolved{
		song.VoiceKick: percussive(song.VoiceKick, kick),
	}
	tr := testTransport()
	seq := New(comp, insts, tr, quietOptions())

	loop := tr.LoopFrames()
	for i := int64(0); i < loop*2+1; i++ {
		seq.Advance()
	}
	if kick.hits != 3 {
		t.Fatalf("kick hits over two loops = %d, want 3", kick.hits)
	}
}

func TestNoteOffCrossesLoopBoundary(t *testing.T) {
	lead := &countingSynth{}
	comp := &song.Composition{
		Tempo: 120,
		Melody: song.Melody{
			// Starts on the last beat and sustains two beats past loop end.
			Lead: []song.NoteEvent{{Time: "15:3:0", Note: song.PitchSet{"A4"}, Duration: "2n"}},
		},
	}
	insts := map[song.Voice]*instrument.Resolved{
		song.VoiceLead: sustained(song.VoiceLead, lead),
	}
	tr := testTransport()
	seq := New(comp, insts, tr, quietOptions())

	loop := tr.LoopFrames()
	for i := int64(0); i < loop; i++ {
		seq.Advance()
	}
	if lead.ons != 1 || lead.offs != 0 {
		t.Fatalf("at loop end: ons=%d offs=%d, want 1/0", lead.ons, lead.offs)
	}
	// The note-off lands one beat into the next loop iteration.
	for i := int64(0); i < tr.FrameAt(1)+1; i++ {
		seq.Advance()
	}
	if lead.offs != 1 {
		t.Fatalf("note-off did not fire across loop boundary: offs=%d", lead.offs)
	}
}

func TestResetRewindsAndRetriggers(t *testing.T) {
	kick := &countingDrum{}
	comp := &song.Composition{
		Tempo:  120,
		Rhythm: song.Rhythm{Kick: []song.HitEvent{{Time: "0:0:0"}}},
	}
	insts := map[song.Voice]*instrument.Resolved{
		song.VoiceKick: percussive(song.VoiceKick, kick),
	}
	seq := New(comp, insts, testTransport(), quietOptions())

	for i := 0; i < 10; i++ {
		seq.Advance()
	}
	seq.Reset()
	if seq.Frame() != 0 {
		t.Fatalf("frame after reset = %d", seq.Frame())
	}
	seq.Advance()
	if kick.hits != 2 {
		t.Fatalf("kick hits after reset = %d, want 2", kick.hits)
	}
}

func TestTransportFrameMath(t *testing.T) {
	tr := NewTransport(44100, 120)
	if got := tr.FrameAt(1); got != 22050 {
		t.Fatalf("FrameAt(1) = %d, want 22050", got)
	}
	if got := tr.LoopFrames(); got != 1411200 {
		t.Fatalf("LoopFrames = %d, want 1411200", got)
	}

	tr = NewTransport(44100, 90)
	if got := tr.FrameAt(1); got != 29400 {
		t.Fatalf("FrameAt(1) at 90 BPM = %d, want 29400", got)
	}

	// Zero or negative tempo falls back to 120.
	tr = NewTransport(44100, 0)
	if got := tr.BPM(); got != 120 {
		t.Fatalf("fallback BPM = %v", got)
	}
}
