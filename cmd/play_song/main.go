package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	songforge "github.com/ducemobsta/songforge"
	"github.com/ducemobsta/songforge/internal/samples"
	"github.com/ducemobsta/songforge/internal/song"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", songforge.DefaultSampleRate, "output sample rate")
		compPath   = flag.String("file", "", "path to a composition file (.json or .yaml)")
		sampleDir  = flag.String("samples", "", "directory of per-voice sample files (kick.wav, snare.mp3, ...)")
		exportPath = flag.String("export", "", "render one loop to this WAV file instead of playing")
		volume     = flag.Float64("volume", 0, "master volume in dB (0 = unity)")
		seconds    = flag.Float64("seconds", 0, "stop after this many seconds (0 = play until interrupted)")
	)
	flag.Parse()

	if *compPath == "" {
		log.Fatal("usage: play_song -file composition.json [-samples dir] [-export out.wav]")
	}
	comp, err := song.LoadFile(*compPath)
	if err != nil {
		log.Fatal(err)
	}
	smp := samples.Map{}
	if *sampleDir != "" {
		smp, err = samples.LoadDir(*sampleDir)
		if err != nil {
			log.Fatal(err)
		}
	}

	pl, err := songforge.NewPlayer(
		songforge.WithSampleRate(*sampleRate),
		songforge.WithSkipHandler(func(voice song.Voice, index int, err error) {
			fmt.Fprintf(os.Stderr, "skipping %s event %d: %v\n", voice, index, err)
		}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer pl.Dispose()
	pl.SetMasterVolume(*volume)
	if err := pl.ScheduleMusic(comp, smp); err != nil {
		log.Fatal(err)
	}

	if *exportPath != "" {
		if err := pl.ExportWAVFile(*exportPath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s\n", *exportPath)
		return
	}

	if err := pl.Play(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("playing %q at %d BPM, ctrl-c to stop\n", comp.Theme.Title, comp.Tempo)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	if *seconds > 0 {
		select {
		case <-sig:
		case <-time.After(time.Duration(*seconds * float64(time.Second))):
		}
	} else {
		<-sig
	}
	pl.Stop()
}
