package songforge

import (
	"log"
	"math"
	"sync/atomic"

	"github.com/viterin/vek/vek32"

	"github.com/ducemobsta/songforge/internal/audio"
	"github.com/ducemobsta/songforge/internal/effects"
	"github.com/ducemobsta/songforge/internal/instrument"
	"github.com/ducemobsta/songforge/internal/samples"
	"github.com/ducemobsta/songforge/internal/sequencer"
	"github.com/ducemobsta/songforge/internal/song"
)

// session is the single owned aggregate of one scheduled composition:
// resolved instruments, the compiled trigger schedule, the shared reverb send
// and the transport clock. Entering a new session replaces the previous one
// atomically; there is never additive accumulation of triggers or
// instruments.
type session struct {
	transport   *sequencer.Transport
	seq         *sequencer.Sequencer
	instruments []*instrument.Resolved
	master      *effects.Chain
	tap         *audio.Tap
	sampleTap   func([]float32)
	gain        uint64
	rewind      atomic.Bool
	disposed    atomic.Bool
}

func newSession(comp *song.Composition, smp samples.Map, sampleRate int, logger *log.Logger, onSkip func(song.Voice, int, error), tap *audio.Tap, sampleTap func([]float32)) (*session, error) {
	tr := sequencer.NewTransport(sampleRate, comp.Tempo)
	byVoice := make(map[song.Voice]*instrument.Resolved, len(song.AllVoices))
	s := &session{
		transport: tr,
		tap:       tap,
		sampleTap: sampleTap,
		gain:      math.Float64bits(1),
	}
	for _, voice := range song.AllVoices {
		inst, err := instrument.Resolve(voice, comp.Params(voice), smp[voice], sampleRate)
		if err != nil {
			// A voice that fails to build aborts the whole schedule; whatever
			// was constructed so far is released on the way out.
			s.Dispose()
			return nil, err
		}
		byVoice[voice] = inst
		s.instruments = append(s.instruments, inst)
	}
	s.master = effects.NewChain(effects.NewReverb(sampleRate, comp.MixParams.Reverb.Decay, comp.MixParams.Reverb.Wet))
	s.seq = sequencer.New(comp, byVoice, tr, sequencer.Options{Logger: logger, OnSkip: onSkip})
	return s, nil
}

// Process renders interleaved stereo frames: advance the schedule, mix every
// instrument, run the shared reverb send, then apply the master gain. Runs on
// the audio thread for live playback and on the caller for offline renders.
func (s *session) Process(dst []float32) {
	if s.disposed.Load() {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	if s.rewind.CompareAndSwap(true, false) {
		s.Reset()
	}
	frames := len(dst) / 2
	for f := 0; f < frames; f++ {
		s.seq.Advance()
		var l, r float32
		for _, inst := range s.instruments {
			il, ir := inst.Source().RenderFrame()
			l += il
			r += ir
		}
		l, r = s.master.Process(l, r)
		dst[f*2] = clampSample(l)
		dst[f*2+1] = clampSample(r)
	}
	if g := s.gainValue(); g != 1 {
		vek32.MulNumber_Inplace(dst, float32(g))
	}
	if s.tap != nil {
		s.tap.Push(dst)
	}
	if s.sampleTap != nil {
		s.sampleTap(dst)
	}
}

// RequestRewind schedules a rewind to loop start on the next rendered buffer.
// The rewind itself runs on whatever goroutine calls Process next, so control
// goroutines never touch sequencer or voice state directly.
func (s *session) RequestRewind() {
	s.rewind.Store(true)
}

// Reset rewinds the session to loop start, silencing everything mid-flight.
// Only the goroutine driving Process may call this while audio is live.
func (s *session) Reset() {
	if s.seq != nil {
		s.seq.Reset()
	}
	for _, inst := range s.instruments {
		inst.Source().Reset()
	}
	if s.master != nil {
		s.master.Reset()
	}
}

// Dispose marks the session released. The render path observes the flag and
// outputs silence, so an audio callback that loaded the session just before a
// swap never sees its state torn down mid-buffer. Safe to call repeatedly and
// on partially-constructed sessions.
func (s *session) Dispose() {
	s.disposed.Store(true)
}

func (s *session) SetGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&s.gain, math.Float64bits(gain))
}

func (s *session) gainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&s.gain))
}

func clampSample(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
