package effects

import "math"

// Reverb is the single global reverb send: a Schroeder topology with four
// comb filters and two allpass filters. Every instrument routes through one
// shared instance before the output sink.
type Reverb struct {
	combs   [4]combFilter
	allpass [2]allpassFilter
	wet     float32
}

type combFilter struct {
	buf []float32
	pos int
	fb  float32
}

type allpassFilter struct {
	buf []float32
	pos int
	fb  float32
}

// NewReverb creates the shared reverb unit.
// decay: RT60 decay time in seconds (the composition's reverb.decay)
// wet: wet/dry mix 0..1 (the composition's reverb.wet)
func NewReverb(sampleRate int, decay, wet float64) *Reverb {
	if decay <= 0 {
		decay = 1.5
	}
	base := sampleRate / 20
	r := &Reverb{wet: clamp(float32(wet), 0, 1)}
	// Comb delay lengths use prime-ish ratios to avoid resonances; each
	// comb's feedback is derived from the requested RT60 so the tail dies to
	// -60 dB after `decay` seconds.
	combLens := [4]int{base, base * 1117 / 1000, base * 1271 / 1000, base * 1437 / 1000}
	for i := range r.combs {
		fb := math.Pow(0.001, float64(combLens[i])/(decay*float64(sampleRate)))
		r.combs[i] = combFilter{
			buf: make([]float32, combLens[i]),
			fb:  clamp(float32(fb), 0, 0.98),
		}
	}
	apLens := [2]int{base * 347 / 1000, base * 213 / 1000}
	for i := range r.allpass {
		r.allpass[i] = allpassFilter{
			buf: make([]float32, maxInt(apLens[i], 1)),
			fb:  0.5,
		}
	}
	return r
}

func (r *Reverb) Process(l, r2 float32) (float32, float32) {
	mono := (l + r2) * 0.5
	var out float32
	for i := range r.combs {
		out += r.combs[i].process(mono)
	}
	out *= 0.25
	for i := range r.allpass {
		out = r.allpass[i].process(out)
	}
	return l*(1-r.wet) + out*r.wet, r2*(1-r.wet) + out*r.wet
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		for j := range r.combs[i].buf {
			r.combs[i].buf[j] = 0
		}
		r.combs[i].pos = 0
	}
	for i := range r.allpass {
		for j := range r.allpass[i].buf {
			r.allpass[i].buf[j] = 0
		}
		r.allpass[i].pos = 0
	}
}

func (c *combFilter) process(in float32) float32 {
	out := c.buf[c.pos]
	c.buf[c.pos] = in + out*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
