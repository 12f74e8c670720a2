package instrument

type envState int

const (
	envAttack envState = iota
	envDecay
	envSustain
	envRelease
	envOff
)

// adsr is a linear attack/decay/sustain/release envelope with times in
// seconds, advanced once per frame.
type adsr struct {
	attackSec  float64
	decaySec   float64
	sustainLvl float64
	releaseSec float64

	level float64
	state envState
}

func (e *adsr) trigger() {
	e.level = 0
	e.state = envAttack
}

func (e *adsr) release() {
	if e.state != envOff {
		e.state = envRelease
	}
}

func (e *adsr) active() bool {
	return e.state != envOff
}

func (e *adsr) advance(sampleRate float64) float64 {
	switch e.state {
	case envAttack:
		step := 1.0 / (e.attackSec * sampleRate)
		if step <= 0 {
			step = 1
		}
		e.level += step
		if e.level >= 1 {
			e.level = 1
			e.state = envDecay
		}
	case envDecay:
		step := (1 - e.sustainLvl) / (e.decaySec * sampleRate)
		if step <= 0 {
			step = 1
		}
		e.level -= step
		if e.level <= e.sustainLvl {
			e.level = e.sustainLvl
			e.state = envSustain
		}
	case envSustain:
	case envRelease:
		ref := e.sustainLvl
		if ref <= 0 {
			ref = 1
		}
		step := ref / (e.releaseSec * sampleRate)
		if step <= 0 {
			step = 1
		}
		e.level -= step
		if e.level <= 0.0001 {
			e.level = 0
			e.state = envOff
		}
	case envOff:
		e.level = 0
	}
	return e.level
}
