package song

import (
	"fmt"
	"strconv"
	"strings"
)

// Positions are written "bars:beats:sixteenths" relative to loop start
// ("0:2:0" = third beat of the first measure). Durations use note values:
// "4n" quarter, "8n" eighth, "1m" one measure, a trailing "." dots the value
// and a trailing "t" makes it a triplet.

// ParsePosition converts a musical position into beats from loop start.
func ParsePosition(pos string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(pos), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed position %q (want bars:beats:sixteenths)", pos)
	}
	bars, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed position %q: bad bars: %w", pos, err)
	}
	beats, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed position %q: bad beats: %w", pos, err)
	}
	sixteenths := 0.0
	if len(parts) == 3 {
		sixteenths, err = strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, fmt.Errorf("malformed position %q: bad sixteenths: %w", pos, err)
		}
	}
	if bars < 0 || beats < 0 || sixteenths < 0 {
		return 0, fmt.Errorf("malformed position %q: negative component", pos)
	}
	return bars*BeatsPerMeasure + beats + sixteenths/4, nil
}

// ParseDuration converts a note-value duration into beats.
func ParseDuration(dur string) (float64, error) {
	s := strings.TrimSpace(dur)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	dotted := strings.HasSuffix(s, ".")
	s = strings.TrimSuffix(s, ".")
	triplet := false
	unit := byte(0)
	if len(s) > 0 {
		unit = s[len(s)-1]
	}
	switch unit {
	case 'n', 'm':
	case 't':
		triplet = true
	default:
		return 0, fmt.Errorf("malformed duration %q (want e.g. 4n, 8n., 2t, 1m)", dur)
	}
	v, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("malformed duration %q", dur)
	}
	var beats float64
	switch unit {
	case 'm':
		beats = float64(v) * BeatsPerMeasure
	default:
		beats = 4.0 / float64(v)
	}
	if triplet {
		beats *= 2.0 / 3.0
	}
	if dotted {
		beats *= 1.5
	}
	return beats, nil
}

// LoopBeats is the length of the fixed loop region in beats.
func LoopBeats() float64 {
	return LoopMeasures * BeatsPerMeasure
}
