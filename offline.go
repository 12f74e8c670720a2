package songforge

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/ducemobsta/songforge/internal/samples"
	"github.com/ducemobsta/songforge/internal/song"
)

// RenderLoop renders exactly one loop of the composition offline, returning
// interleaved stereo float samples. The render runs the same per-frame path
// as live playback against a private session, so the output is deterministic
// for a given composition and sample map.
func RenderLoop(comp *song.Composition, smp samples.Map, sampleRate int) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if err := comp.Validate(); err != nil {
		return nil, err
	}
	logger := log.New(io.Discard, "", 0)
	sess, err := newSession(comp, smp, sampleRate, logger, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	defer sess.Dispose()
	frames := sess.transport.LoopFrames()
	out := make([]float32, frames*2)
	sess.Process(out)
	return out, nil
}

// Render renders one loop of the currently scheduled composition at the
// player's sample rate, independently of live playback state.
func (p *Player) Render() ([]float32, error) {
	p.mu.Lock()
	comp, smp, rate := p.comp, p.smp, p.sampleRate
	p.mu.Unlock()
	if comp == nil {
		return nil, ErrNothingScheduled
	}
	return RenderLoop(comp, smp, rate)
}

// ExportWAV renders one loop and encodes it as 16-bit PCM WAV bytes.
func (p *Player) ExportWAV() ([]byte, error) {
	buf, err := p.Render()
	if err != nil {
		return nil, err
	}
	return EncodeWAV(buf, p.sampleRate, 2), nil
}

// ExportWAVFile renders one loop and writes the WAV to path.
func (p *Player) ExportWAVFile(path string) error {
	data, err := p.ExportWAV()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
