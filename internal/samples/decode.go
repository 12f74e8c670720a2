package samples

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/ducemobsta/songforge/internal/song"
)

var ErrUnsupportedFormat = errors.New("unsupported sample format")

// DecodeWAV decodes a PCM WAV stream into a mono Sample.
func DecodeWAV(r io.ReadSeeker) (*Sample, error) {
	dec := wav.NewDecoder(r)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	bitDepth := int(dec.BitDepth)
	return fromIntBuffer(buf, bitDepth)
}

// fromIntBuffer converts a decoded go-audio buffer into a normalized mono
// Sample, scaling by the source bit depth.
func fromIntBuffer(buf *goaudio.IntBuffer, bitDepth int) (*Sample, error) {
	if buf == nil || len(buf.Data) == 0 {
		return nil, ErrEmptySample
	}
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(int(1) << (bitDepth - 1))
	interleaved := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		interleaved[i] = float32(v) / scale
	}
	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	return &Sample{
		Data: mixdown(interleaved, channels),
		Rate: buf.Format.SampleRate,
	}, nil
}

// DecodeMP3 decodes an MP3 stream into a mono Sample. go-mp3 always yields
// 16-bit little-endian stereo.
func DecodeMP3(r io.Reader) (*Sample, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}
	n := len(raw) / 2
	if n == 0 {
		return nil, ErrEmptySample
	}
	interleaved := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		interleaved[i] = float32(v) / 32768.0
	}
	return &Sample{
		Data: mixdown(interleaved, 2),
		Rate: dec.SampleRate(),
	}, nil
}

// DecodeOGG decodes an Ogg Vorbis stream into a mono Sample.
func DecodeOGG(r io.Reader) (*Sample, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode ogg: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptySample
	}
	return &Sample{
		Data: mixdown(data, format.Channels),
		Rate: format.SampleRate,
	}, nil
}

// LoadFile decodes one sample file, choosing the decoder by extension.
func LoadFile(path string) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return DecodeWAV(f)
	case ".mp3":
		return DecodeMP3(f)
	case ".ogg":
		return DecodeOGG(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadDir builds a sample map from a directory, looking for one file per
// voice named after it (kick.wav, snare.mp3, ...). Voices without a file are
// simply absent from the map; a file that exists but fails to decode is an
// error.
func LoadDir(dir string) (Map, error) {
	m := make(Map)
	for _, voice := range song.AllVoices {
		for _, ext := range []string{".wav", ".mp3", ".ogg"} {
			path := filepath.Join(dir, string(voice)+ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			smp, err := LoadFile(path)
			if err != nil {
				return nil, fmt.Errorf("sample %s: %w", path, err)
			}
			m[voice] = smp
			break
		}
	}
	return m, nil
}
