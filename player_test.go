package songforge

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/ducemobsta/songforge/internal/instrument"
	"github.com/ducemobsta/songforge/internal/samples"
	"github.com/ducemobsta/songforge/internal/song"
)

func newTestPlayer(t *testing.T, opts ...PlayerOption) *Player {
	t.Helper()
	opts = append([]PlayerOption{WithSampleRate(renderRate)}, opts...)
	pl, err := NewPlayer(opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pl.Dispose)
	return pl
}

func TestNewPlayerRejectsBadRate(t *testing.T) {
	if _, err := NewPlayer(WithSampleRate(0)); err == nil {
		t.Fatal("zero sample rate accepted")
	}
}

func TestRenderRequiresSchedule(t *testing.T) {
	pl := newTestPlayer(t)
	if _, err := pl.Render(); !errors.Is(err, ErrNothingScheduled) {
		t.Fatalf("err = %v, want ErrNothingScheduled", err)
	}
	if _, err := pl.ExportWAV(); !errors.Is(err, ErrNothingScheduled) {
		t.Fatalf("err = %v, want ErrNothingScheduled", err)
	}
	if err := pl.Play(); !errors.Is(err, ErrNothingScheduled) {
		t.Fatalf("err = %v, want ErrNothingScheduled", err)
	}
}

func TestScheduleMusicValidates(t *testing.T) {
	pl := newTestPlayer(t)
	comp := testComposition()
	comp.Tempo = 0
	if err := pl.ScheduleMusic(comp, nil); !errors.Is(err, song.ErrInvalidComposition) {
		t.Fatalf("err = %v, want ErrInvalidComposition", err)
	}
}

func TestScheduleMusicRejectsBadSample(t *testing.T) {
	pl := newTestPlayer(t)
	smp := samples.Map{song.VoiceKick: &samples.Sample{Rate: renderRate}}
	err := pl.ScheduleMusic(testComposition(), smp)
	if !errors.Is(err, instrument.ErrBadSample) {
		t.Fatalf("err = %v, want ErrBadSample", err)
	}
	// A failed schedule leaves nothing playable behind.
	if _, err := pl.Render(); !errors.Is(err, ErrNothingScheduled) {
		t.Fatalf("after failed schedule: %v", err)
	}
}

func TestScheduleMusicReplacesPrevious(t *testing.T) {
	pl := newTestPlayer(t)
	if err := pl.ScheduleMusic(testComposition(), nil); err != nil {
		t.Fatal(err)
	}

	second := testComposition()
	second.Tempo = 90
	if err := pl.ScheduleMusic(second, nil); err != nil {
		t.Fatal(err)
	}

	// The render reflects the latest schedule: 90 BPM stretches the loop.
	out, err := pl.Render()
	if err != nil {
		t.Fatal(err)
	}
	framesAt90 := int64(math.Round(64 * float64(renderRate) * 60 / 90))
	if int64(len(out)) != framesAt90*2 {
		t.Fatalf("render length = %d, want %d", len(out), framesAt90*2)
	}
}

func TestScheduleTwiceKeepsOnlySecondTriggers(t *testing.T) {
	pl := newTestPlayer(t)
	if err := pl.ScheduleMusic(testComposition(), nil); err != nil {
		t.Fatal(err)
	}

	second := testComposition()
	second.Rhythm.Kick = []song.HitEvent{{Time: "0:0:0"}}
	second.Rhythm.Percussion = nil
	if err := pl.ScheduleMusic(second, nil); err != nil {
		t.Fatal(err)
	}

	// The fixture has 15 events; the second composition drops one kick hit
	// and the percussion hit. Only its 13 triggers may remain scheduled.
	sess := pl.active.Load()
	if sess == nil {
		t.Fatal("no active session")
	}
	if got := sess.seq.TriggerCount(); got != 13 {
		t.Fatalf("trigger count = %d, want 13", got)
	}
}

func TestExportWAVRoundTrip(t *testing.T) {
	pl := newTestPlayer(t)
	if err := pl.ScheduleMusic(testComposition(), nil); err != nil {
		t.Fatal(err)
	}
	data, err := pl.ExportWAV()
	if err != nil {
		t.Fatal(err)
	}
	if string(data[0:4]) != "RIFF" {
		t.Fatal("missing RIFF header")
	}
	if got := binary.LittleEndian.Uint32(data[24:]); got != renderRate {
		t.Fatalf("header sample rate = %d, want %d", got, renderRate)
	}
	frames := int64(64 * float64(renderRate) * 60 / 120)
	if int64(len(data)) != 44+frames*2*2 {
		t.Fatalf("wav size = %d, want %d", len(data), 44+frames*2*2)
	}
}

func TestMasterVolumeRoundTrip(t *testing.T) {
	pl := newTestPlayer(t)
	if got := pl.MasterVolume(); got != 0 {
		t.Fatalf("default master volume = %v dB, want 0", got)
	}
	pl.SetMasterVolume(-6)
	if got := pl.MasterVolume(); got != -6 {
		t.Fatalf("master volume = %v, want -6", got)
	}
}

func TestStopBeforePlayIsNoOp(t *testing.T) {
	pl := newTestPlayer(t)
	pl.Stop()
	if pl.Playing() {
		t.Fatal("player playing after no-op stop")
	}
}

func TestWaveformWhileStopped(t *testing.T) {
	pl := newTestPlayer(t)
	if err := pl.ScheduleMusic(testComposition(), nil); err != nil {
		t.Fatal(err)
	}
	wave := pl.Waveform()
	if len(wave) == 0 {
		t.Fatal("empty waveform snapshot")
	}
	for _, v := range wave {
		if v != 0 {
			t.Fatal("stopped player should snapshot silence")
		}
	}
	if pl.Level() != 0 {
		t.Fatalf("level = %v, want 0", pl.Level())
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	pl := newTestPlayer(t)
	if err := pl.ScheduleMusic(testComposition(), nil); err != nil {
		t.Fatal(err)
	}
	pl.Dispose()
	pl.Dispose()
	if err := pl.ScheduleMusic(testComposition(), nil); err == nil {
		t.Fatal("disposed player accepted a schedule")
	}
}
