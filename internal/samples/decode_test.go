package samples

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ducemobsta/songforge/internal/song"
)

// pcm16WAV builds a minimal PCM16 WAV file in memory.
func pcm16WAV(sampleRate, channels int, data []int16) []byte {
	dataSize := len(data) * 2
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*channels*2))
	binary.LittleEndian.PutUint16(out[32:], uint16(channels*2))
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, v := range data {
		binary.LittleEndian.PutUint16(out[44+i*2:], uint16(v))
	}
	return out
}

func TestDecodeWAVMono(t *testing.T) {
	raw := pcm16WAV(22050, 1, []int16{16384, -16384, 0, 32767})
	smp, err := DecodeWAV(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if smp.Rate != 22050 {
		t.Fatalf("rate = %d, want 22050", smp.Rate)
	}
	if len(smp.Data) != 4 {
		t.Fatalf("len = %d, want 4", len(smp.Data))
	}
	if smp.Data[0] != 0.5 || smp.Data[1] != -0.5 {
		t.Fatalf("scaled data = %v", smp.Data)
	}
	if !smp.Valid() {
		t.Fatal("decoded sample not valid")
	}
}

func TestDecodeWAVStereoMixdown(t *testing.T) {
	// Interleaved L/R pairs; the decoder folds them to mono averages.
	raw := pcm16WAV(44100, 2, []int16{16384, -16384, 16384, 16384})
	smp, err := DecodeWAV(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if len(smp.Data) != 2 {
		t.Fatalf("len = %d, want 2", len(smp.Data))
	}
	if smp.Data[0] != 0 || smp.Data[1] != 0.5 {
		t.Fatalf("mixdown = %v, want [0 0.5]", smp.Data)
	}
}

func TestDecodeWAVRejectsEmpty(t *testing.T) {
	raw := pcm16WAV(44100, 1, nil)
	_, err := DecodeWAV(bytes.NewReader(raw))
	if !errors.Is(err, ErrEmptySample) {
		t.Fatalf("err = %v, want ErrEmptySample", err)
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kick.txt")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	raw := pcm16WAV(44100, 1, []int16{1000, 2000, 3000})
	if err := os.WriteFile(filepath.Join(dir, "kick.wav"), raw, 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 1 {
		t.Fatalf("map size = %d, want 1", len(m))
	}
	if !m[song.VoiceKick].Valid() {
		t.Fatal("kick sample invalid")
	}
	if m[song.VoiceSnare] != nil {
		t.Fatal("unexpected snare sample")
	}
}

func TestLoadDirCorruptFileFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "snare.wav"), []byte("RIFFgarbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDir(dir); err == nil {
		t.Fatal("corrupt sample should fail the load")
	}
}

func TestSampleValid(t *testing.T) {
	var nilSample *Sample
	if nilSample.Valid() {
		t.Fatal("nil sample reported valid")
	}
	if (&Sample{Rate: 44100}).Valid() {
		t.Fatal("empty sample reported valid")
	}
	if (&Sample{Data: []float32{0.1}}).Valid() {
		t.Fatal("zero-rate sample reported valid")
	}
	if !(&Sample{Data: []float32{0.1}, Rate: 44100}).Valid() {
		t.Fatal("valid sample rejected")
	}
}
