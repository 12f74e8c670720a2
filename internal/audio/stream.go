// Package audio owns the live output device: an ebiten audio context playing
// a float32 stream pulled from the active session, plus the waveform tap used
// for visualization.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource fills dst with interleaved stereo float32 frames. It runs on
// the audio thread; implementations must not block.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to the io.Reader the audio context
// consumes (32-bit little-endian float frames).
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

var (
	contextOnce sync.Once
	context     *ebitaudio.Context
	contextRate int
)

// Initialize primes the shared output device. It is idempotent: the first
// call creates the context, later calls only verify the sample rate matches.
// Every playback entry point goes through here before touching the device.
func Initialize(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		context = ebitaudio.NewContext(sampleRate)
	})
	if contextRate != sampleRate {
		return nil, fmt.Errorf("audio device already initialized at %d Hz (requested %d Hz)", contextRate, sampleRate)
	}
	return context, nil
}

// Output streams a SampleSource to the shared output device.
type Output struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

func NewOutput(sampleRate int, source SampleSource) (*Output, error) {
	ctx, err := Initialize(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Output{player: pl, reader: reader}, nil
}

func (o *Output) Play()  { o.player.Play() }
func (o *Output) Pause() { o.player.Pause() }

func (o *Output) IsPlaying() bool { return o.player.IsPlaying() }

func (o *Output) Close() error {
	o.player.Pause()
	o.player.Close()
	return o.reader.Close()
}
