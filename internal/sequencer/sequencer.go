package sequencer

import (
	"errors"
	"log"
	"sort"

	"github.com/ducemobsta/songforge/internal/instrument"
	"github.com/ducemobsta/songforge/internal/song"
)

var errEmptyNote = errors.New("event has no note")
var errBeyondLoop = errors.New("event position beyond loop region")

// Pitchless drum voices fire at their instrument's reference pitch with the
// instrument's own fixed envelope; hihat and percussion ignore event payloads
// entirely.
const (
	hitVelocity  = 1.0
	noteVelocity = 0.8 // fallback when the event omits velocity
)

type trigger struct {
	frame     int64
	inst      *instrument.Resolved
	midis     []int // nil for percussive triggers
	velocity  float64
	durFrames int64
}

type noteOff struct {
	frame int64 // absolute frame, may cross a loop boundary
	inst  instrument.Sustained
	id    int
	fired bool
}

// Options configures scheduling behavior. OnSkip is invoked for each event
// that cannot be scheduled; the default logs and moves on, so one bad event
// never silences its siblings.
type Options struct {
	OnSkip func(voice song.Voice, index int, err error)
	Logger *log.Logger
}

// Sequencer owns the compiled trigger schedule for one session and advances
// it one frame at a time while the session renders.
type Sequencer struct {
	transport  *Transport
	triggers   []trigger
	idx        int
	frame      int64
	loopFrames int64
	noteOffs   []noteOff
	skipped    int
}

// New compiles all event streams of a composition into a sorted trigger
// schedule against the transport. Construction never fails: malformed events
// are reported through Options.OnSkip and dropped individually.
func New(comp *song.Composition, insts map[song.Voice]*instrument.Resolved, tr *Transport, opts Options) *Sequencer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	onSkip := opts.OnSkip
	s := &Sequencer{
		transport:  tr,
		loopFrames: tr.LoopFrames(),
	}
	skip := func(voice song.Voice, index int, err error) {
		s.skipped++
		if onSkip != nil {
			onSkip(voice, index, err)
			return
		}
		logger.Printf("sequencer: skipping %s event %d: %v", voice, index, err)
	}

	noteStreams := []struct {
		voice  song.Voice
		events []song.NoteEvent
	}{
		{song.VoiceChords, comp.Harmony.ChordProgression},
		{song.VoiceBass, comp.Harmony.Bassline},
		{song.VoiceLead, comp.Melody.Lead},
		{song.VoiceCounterMelody, comp.Melody.CounterMelody},
		{song.VoicePads, comp.Melody.Pads},
	}
	for _, stream := range noteStreams {
		inst := insts[stream.voice]
		if inst == nil {
			continue
		}
		for i, ev := range stream.events {
			t, err := s.noteTrigger(inst, ev)
			if err != nil {
				skip(stream.voice, i, err)
				continue
			}
			s.triggers = append(s.triggers, t)
		}
	}

	hitStreams := []struct {
		voice  song.Voice
		events []song.HitEvent
	}{
		{song.VoiceKick, comp.Rhythm.Kick},
		{song.VoiceSnare, comp.Rhythm.Snare},
		{song.VoiceHihat, comp.Rhythm.Hihat},
		{song.VoicePercussion, comp.Rhythm.Percussion},
	}
	for _, stream := range hitStreams {
		inst := insts[stream.voice]
		if inst == nil {
			continue
		}
		for i, ev := range stream.events {
			t, err := s.hitTrigger(inst, ev)
			if err != nil {
				skip(stream.voice, i, err)
				continue
			}
			s.triggers = append(s.triggers, t)
		}
	}

	sort.SliceStable(s.triggers, func(i, j int) bool {
		return s.triggers[i].frame < s.triggers[j].frame
	})
	return s
}

func (s *Sequencer) noteTrigger(inst *instrument.Resolved, ev song.NoteEvent) (trigger, error) {
	if len(ev.Note) == 0 {
		return trigger{}, errEmptyNote
	}
	beats, err := song.ParsePosition(ev.Time)
	if err != nil {
		return trigger{}, err
	}
	durBeats, err := song.ParseDuration(ev.Duration)
	if err != nil {
		return trigger{}, err
	}
	midis, err := ev.Note.Midis()
	if err != nil {
		return trigger{}, err
	}
	frame := s.transport.FrameAt(beats)
	if frame >= s.loopFrames {
		return trigger{}, errBeyondLoop
	}
	vel := ev.Velocity
	if vel <= 0 {
		vel = noteVelocity
	}
	if vel > 1 {
		vel = 1
	}
	return trigger{
		frame:     frame,
		inst:      inst,
		midis:     midis,
		velocity:  vel,
		durFrames: s.transport.FrameAt(durBeats),
	}, nil
}

func (s *Sequencer) hitTrigger(inst *instrument.Resolved, ev song.HitEvent) (trigger, error) {
	beats, err := song.ParsePosition(ev.Time)
	if err != nil {
		return trigger{}, err
	}
	frame := s.transport.FrameAt(beats)
	if frame >= s.loopFrames {
		return trigger{}, errBeyondLoop
	}
	return trigger{
		frame:    frame,
		inst:     inst,
		velocity: hitVelocity,
	}, nil
}

// Advance moves the clock one frame, firing any triggers and pending
// note-offs that come due. The trigger cursor wraps at the loop boundary so
// playback repeats indefinitely.
func (s *Sequencer) Advance() {
	local := s.frame % s.loopFrames
	if local == 0 {
		s.idx = 0
	}
	for s.idx < len(s.triggers) && s.triggers[s.idx].frame <= local {
		s.fire(&s.triggers[s.idx])
		s.idx++
	}
	fired := false
	for i := range s.noteOffs {
		if !s.noteOffs[i].fired && s.noteOffs[i].frame <= s.frame {
			s.noteOffs[i].inst.NoteOff(s.noteOffs[i].id)
			s.noteOffs[i].fired = true
			fired = true
		}
	}
	if fired {
		s.compactNoteOffs()
	}
	s.frame++
}

func (s *Sequencer) fire(t *trigger) {
	switch t.inst.Kind {
	case instrument.KindPercussive:
		t.inst.Percussive.Hit(t.velocity)
	case instrument.KindSustained:
		for _, midi := range t.midis {
			id := t.inst.Sustained.NoteOn(midi, t.velocity)
			s.noteOffs = append(s.noteOffs, noteOff{
				frame: s.frame + t.durFrames,
				inst:  t.inst.Sustained,
				id:    id,
			})
		}
	}
}

func (s *Sequencer) compactNoteOffs() {
	j := 0
	for i := range s.noteOffs {
		if !s.noteOffs[i].fired {
			s.noteOffs[j] = s.noteOffs[i]
			j++
		}
	}
	s.noteOffs = s.noteOffs[:j]
}

// Reset rewinds the clock to loop start and drops pending note-offs.
func (s *Sequencer) Reset() {
	s.frame = 0
	s.idx = 0
	s.noteOffs = s.noteOffs[:0]
}

// Frame is the absolute frame count since the session started.
func (s *Sequencer) Frame() int64 { return s.frame }

// TriggerCount is the number of scheduled triggers; used for accounting in
// tests and diagnostics.
func (s *Sequencer) TriggerCount() int { return len(s.triggers) }

// SkippedCount is the number of events dropped during compilation.
func (s *Sequencer) SkippedCount() int { return s.skipped }
