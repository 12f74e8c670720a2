package audio

import (
	"sync"

	"github.com/viterin/vek/vek32"
)

// SnapshotSize is the number of amplitude points a waveform snapshot holds.
const SnapshotSize = 1024

// Tap records the most recent audio passing through a session so callers can
// poll a waveform snapshot at any time. Pushing happens on the audio thread;
// snapshots may be taken from any goroutine, including while playback is
// stopped (they then return the cleared frame).
type Tap struct {
	mu   sync.Mutex
	ring []float32
	pos  int
	tmp  []float32
}

func NewTap() *Tap {
	return &Tap{ring: make([]float32, SnapshotSize)}
}

// Push folds interleaved stereo frames into the ring as mono amplitudes.
func (t *Tap) Push(stereo []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i+1 < len(stereo); i += 2 {
		t.ring[t.pos] = (stereo[i] + stereo[i+1]) * 0.5
		t.pos++
		if t.pos >= len(t.ring) {
			t.pos = 0
		}
	}
}

// Snapshot returns the last SnapshotSize mono samples, oldest first.
func (t *Tap) Snapshot() []float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]float32, len(t.ring))
	n := copy(out, t.ring[t.pos:])
	copy(out[n:], t.ring[:t.pos])
	return out
}

// Peak returns the absolute peak amplitude currently in the ring.
func (t *Tap) Peak() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cap(t.tmp) < len(t.ring) {
		t.tmp = make([]float32, len(t.ring))
	}
	t.tmp = t.tmp[:len(t.ring)]
	copy(t.tmp, t.ring)
	vek32.Abs_Inplace(t.tmp)
	return vek32.Max(t.tmp)
}

// Clear zeroes the ring; called when playback stops so pollers render an
// empty frame until sound resumes.
func (t *Tap) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.ring {
		t.ring[i] = 0
	}
	t.pos = 0
}
