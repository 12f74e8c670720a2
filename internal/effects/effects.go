// Package effects holds the processing applied to the summed stereo mix
// after the voices are rendered.
package effects

// Send processes one frame of the mixed signal. Implementations own their
// delay state and must silence it on Reset.
type Send interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Chain is the master section: each send runs in order over the mixed frame.
// The engine builds one chain per scheduled composition, currently holding
// the shared reverb send.
type Chain struct {
	sends []Send
}

func NewChain(sends ...Send) *Chain {
	return &Chain{sends: sends}
}

func (c *Chain) Process(l, r float32) (float32, float32) {
	for _, s := range c.sends {
		l, r = s.Process(l, r)
	}
	return l, r
}

func (c *Chain) Reset() {
	for _, s := range c.sends {
		s.Reset()
	}
}

// Add appends a send to the end of the master section.
func (c *Chain) Add(s Send) {
	c.sends = append(c.sends, s)
}
