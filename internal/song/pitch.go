package song

import "fmt"

var semitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// MidiForPitch converts a pitch name ("C4", "F#3", "Bb2") to a MIDI note
// number. Middle C ("C4") is 60.
func MidiForPitch(name string) (int, error) {
	if len(name) < 2 {
		return 0, fmt.Errorf("malformed pitch %q", name)
	}
	base, ok := semitones[name[0]]
	if !ok {
		return 0, fmt.Errorf("malformed pitch %q: unknown note letter", name)
	}
	i := 1
	for i < len(name) {
		switch name[i] {
		case '#':
			base++
		case 'b':
			base--
		default:
			goto octave
		}
		i++
	}
octave:
	neg := false
	if i < len(name) && name[i] == '-' {
		neg = true
		i++
	}
	if i >= len(name) {
		return 0, fmt.Errorf("malformed pitch %q: missing octave", name)
	}
	oct := 0
	for ; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return 0, fmt.Errorf("malformed pitch %q: bad octave", name)
		}
		oct = oct*10 + int(name[i]-'0')
	}
	if neg {
		oct = -oct
	}
	midi := (oct+1)*12 + base
	if midi < 0 || midi > 127 {
		return 0, fmt.Errorf("pitch %q out of MIDI range", name)
	}
	return midi, nil
}

// Midis converts every pitch in the set; any malformed name fails the whole
// set, so the caller can skip the event as one unit.
func (p PitchSet) Midis() ([]int, error) {
	out := make([]int, 0, len(p))
	for _, name := range p {
		m, err := MidiForPitch(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
