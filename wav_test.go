package songforge

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	data := []float32{0, 0, 0, 0}
	out := EncodeWAV(data, 44100, 2)

	if len(out) != 44+len(data)*2 {
		t.Fatalf("length = %d, want %d", len(out), 44+len(data)*2)
	}
	if string(out[0:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Fatal("bad RIFF/WAVE markers")
	}
	if string(out[12:16]) != "fmt " || string(out[36:40]) != "data" {
		t.Fatal("bad chunk markers")
	}
	if got := binary.LittleEndian.Uint32(out[4:]); got != uint32(36+len(data)*2) {
		t.Fatalf("riff size = %d", got)
	}
	if got := binary.LittleEndian.Uint16(out[20:]); got != 1 {
		t.Fatalf("format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(out[22:]); got != 2 {
		t.Fatalf("channels = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(out[24:]); got != 44100 {
		t.Fatalf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[28:]); got != 44100*2*2 {
		t.Fatalf("byte rate = %d", got)
	}
	if got := binary.LittleEndian.Uint16(out[32:]); got != 4 {
		t.Fatalf("block align = %d, want 4", got)
	}
	if got := binary.LittleEndian.Uint16(out[34:]); got != 16 {
		t.Fatalf("bits per sample = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(out[40:]); got != uint32(len(data)*2) {
		t.Fatalf("data size = %d", got)
	}
}

func TestEncodeWAVQuantization(t *testing.T) {
	cases := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32768},
		{0.5, 16383},
		{-0.5, -16384},
		{2, 32767},   // clamped
		{-2, -32768}, // clamped
	}
	for _, tc := range cases {
		out := EncodeWAV([]float32{tc.in}, 44100, 1)
		got := int16(binary.LittleEndian.Uint16(out[44:]))
		if got != tc.want {
			t.Fatalf("quantize(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
