package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	songforge "github.com/ducemobsta/songforge"
	"github.com/ducemobsta/songforge/internal/samples"
	"github.com/ducemobsta/songforge/internal/song"
)

const (
	windowW = 800
	windowH = 360
	scopeH  = 240
)

var (
	bgColor    = color.RGBA{24, 24, 32, 255}
	axisColor  = color.RGBA{50, 54, 68, 180}
	waveColor  = color.RGBA{120, 220, 160, 255}
	levelColor = color.RGBA{0, 120, 200, 255}
)

type game struct {
	player *songforge.Player
	title  string
	tempo  int
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.player.Playing() {
			g.player.Stop()
		} else if err := g.player.Play(); err != nil {
			return err
		}
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	drawWaveform(screen, g.player.Waveform(), windowW, scopeH)
	drawLevel(screen, g.player.Level())
	state := "stopped"
	if g.player.Playing() {
		state = "playing"
	}
	msg := fmt.Sprintf("%s  %d BPM  [%s]  space: play/stop", g.title, g.tempo, state)
	ebitenutil.DebugPrintAt(screen, msg, 8, scopeH+48)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	return windowW, windowH
}

func drawWaveform(dst *ebiten.Image, wave []float32, width, height int) {
	midY := height / 2
	ebitenutil.DrawRect(dst, 0, float64(midY), float64(width), 1, axisColor)
	if len(wave) == 0 {
		return
	}
	prevX, prevY := 0, midY
	for px := 0; px < width; px++ {
		i := px * len(wave) / width
		y := midY - int(wave[i]*float32(midY-4))
		ebitenutil.DrawLine(dst, float64(prevX), float64(prevY), float64(px), float64(y), waveColor)
		prevX, prevY = px, y
	}
}

func drawLevel(dst *ebiten.Image, peak float32) {
	ebitenutil.DrawRect(dst, 8, scopeH+16, windowW-16, 12, axisColor)
	w := float64(peak) * float64(windowW-16)
	if w > 0 {
		ebitenutil.DrawRect(dst, 8, scopeH+16, w, 12, levelColor)
	}
}

func main() {
	var (
		compPath  = flag.String("file", "", "path to a composition file (.json or .yaml)")
		sampleDir = flag.String("samples", "", "directory of per-voice sample files")
	)
	flag.Parse()
	if *compPath == "" {
		log.Fatal("usage: play_song_ui -file composition.json [-samples dir]")
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
	pl, err := songforge.NewPlayer()
	if err != nil {
		log.Fatal(err)
	}
	defer pl.Dispose()
	if err := pl.ScheduleMusic(comp, smp); err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowTitle("songforge")
	g := &game{player: pl, title: comp.Theme.Title, tempo: comp.Tempo}
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
