package songforge

import (
	"errors"
	"log"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ducemobsta/songforge/internal/audio"
	"github.com/ducemobsta/songforge/internal/samples"
	"github.com/ducemobsta/songforge/internal/song"
)

// DefaultSampleRate is the output rate used when no option overrides it.
const DefaultSampleRate = 44100

// ErrNothingScheduled is returned by playback and render operations invoked
// before any composition has been scheduled.
var ErrNothingScheduled = errors.New("no composition scheduled")

type PlayerOption func(*playerConfig)

type playerConfig struct {
	sampleRate int
	logger     *log.Logger
	onSkip     func(voice song.Voice, index int, err error)
	sampleTap  func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{sampleRate: DefaultSampleRate}
}

func WithSampleRate(rate int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleRate = rate
	}
}

func WithLogger(logger *log.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.logger = logger
	}
}

// WithSkipHandler installs a callback invoked once per composition event that
// failed to schedule. The callback runs during ScheduleMusic, before playback
// starts.
func WithSkipHandler(fn func(voice song.Voice, index int, err error)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.onSkip = fn
	}
}

// WithSampleTap installs a callback invoked with each rendered stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player turns scheduled compositions into looping live audio. It holds at
// most one session at a time; scheduling a new composition disposes the old
// session and builds a fresh one, so repeated schedules never accumulate
// triggers or voices.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	logger     *log.Logger
	onSkip     func(voice song.Voice, index int, err error)
	sampleTap  func([]float32)
	tap        *audio.Tap
	active     atomic.Pointer[session]
	output     *audio.Output
	comp       *song.Composition
	smp        samples.Map
	volumeDB   float64
	playing    bool
	disposed   bool
}

// playerSource feeds the audio backend from whatever session is current.
// Sessions are swapped atomically so a schedule issued mid-playback takes
// effect on the next buffer without tearing down the device.
type playerSource struct {
	active *atomic.Pointer[session]
}

func (s *playerSource) Process(dst []float32) {
	sess := s.active.Load()
	if sess == nil {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	sess.Process(dst)
}

func NewPlayer(opts ...PlayerOption) (*Player, error) {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	logger := cfg.logger
	if logger == nil {
		logger = log.New(os.Stderr, "songforge: ", log.LstdFlags)
	}
	return &Player{
		sampleRate: cfg.sampleRate,
		logger:     logger,
		onSkip:     cfg.onSkip,
		sampleTap:  cfg.sampleTap,
		tap:        audio.NewTap(),
	}, nil
}

// ScheduleMusic validates the composition, resolves every voice against the
// provided samples and compiles the loop schedule. Any previously scheduled
// composition is fully torn down first; on failure the previous session is
// left in place and the error reported.
func (p *Player) ScheduleMusic(comp *song.Composition, smp samples.Map) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return errors.New("player disposed")
	}
	if err := comp.Validate(); err != nil {
		return err
	}
	sess, err := newSession(comp, smp, p.sampleRate, p.logger, p.onSkip, p.tap, p.sampleTap)
	if err != nil {
		return err
	}
	sess.SetGain(dbToGain(p.volumeDB))
	old := p.active.Swap(sess)
	if old != nil {
		old.Dispose()
	}
	p.comp = comp
	p.smp = smp
	p.tap.Clear()
	return nil
}

// Play starts looping playback from the current position. Calling Play while
// already playing is a no-op.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return errors.New("player disposed")
	}
	if p.active.Load() == nil {
		return ErrNothingScheduled
	}
	if p.playing {
		return nil
	}
	if p.output == nil {
		out, err := audio.NewOutput(p.sampleRate, &playerSource{active: &p.active})
		if err != nil {
			return err
		}
		p.output = out
	}
	p.output.Play()
	p.playing = true
	return nil
}

// Stop halts playback and rewinds to loop start. Sounding voices are cut
// when the next buffer is rendered. Calling Stop while stopped is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.output.Pause()
	p.playing = false
	if sess := p.active.Load(); sess != nil {
		// The rewind is picked up by whichever goroutine renders the next
		// buffer; an audio callback still draining this session is never
		// mutated from here.
		sess.RequestRewind()
	}
	p.tap.Clear()
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Waveform returns the most recent rendered output as a mono snapshot,
// oldest sample first. All zeros while stopped.
func (p *Player) Waveform() []float32 {
	return p.tap.Snapshot()
}

// Level returns the peak absolute amplitude of the snapshot window.
func (p *Player) Level() float32 {
	return p.tap.Peak()
}

// SetMasterVolume sets the output gain in decibels. 0 dB is unity. Takes
// effect on the next rendered buffer.
func (p *Player) SetMasterVolume(db float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volumeDB = db
	if sess := p.active.Load(); sess != nil {
		sess.SetGain(dbToGain(db))
	}
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volumeDB
}

// Dispose stops playback, closes the output device and releases the current
// session. Safe to call repeatedly.
func (p *Player) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return
	}
	p.disposed = true
	if p.output != nil {
		p.output.Pause()
		_ = p.output.Close()
		p.output = nil
	}
	if sess := p.active.Swap(nil); sess != nil {
		sess.Dispose()
	}
	p.playing = false
	p.comp = nil
	p.smp = nil
	p.tap.Clear()
}

func dbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}
