package song

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidComposition = errors.New("invalid composition")

// ParseJSON decodes a composition from the collaborator's JSON schema and
// validates it.
func ParseJSON(data []byte) (*Composition, error) {
	var c Composition
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidComposition, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ParseYAML decodes a hand-authored YAML composition file and validates it.
func ParseYAML(data []byte) (*Composition, error) {
	var c Composition
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidComposition, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a composition from disk, choosing the codec by extension.
func LoadFile(path string) (*Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// Validate checks that the structurally-required event lists are present.
// Percussion and counter-melody are optional and may be absent (treated as
// empty); the required lists must exist even if empty.
func (c *Composition) Validate() error {
	required := []struct {
		name string
		list bool
	}{
		{"rhythm.kick", c.Rhythm.Kick != nil},
		{"rhythm.snare", c.Rhythm.Snare != nil},
		{"rhythm.hihat", c.Rhythm.Hihat != nil},
		{"harmony.chordProgression", c.Harmony.ChordProgression != nil},
		{"harmony.bassline", c.Harmony.Bassline != nil},
		{"melody.lead", c.Melody.Lead != nil},
		{"melody.pads", c.Melody.Pads != nil},
	}
	for _, r := range required {
		if !r.list {
			return fmt.Errorf("%w: missing required section %s", ErrInvalidComposition, r.name)
		}
	}
	if c.Tempo <= 0 {
		return fmt.Errorf("%w: tempo must be positive", ErrInvalidComposition)
	}
	return nil
}
