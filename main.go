package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/rainscape/audio"
	"github.com/lixenwraith/rainscape/core"
	"github.com/lixenwraith/rainscape/physics"
)

const tickInterval = 50 * time.Millisecond

var surfaceKeys = map[rune]core.SurfaceType{
	'1': core.SurfaceWater,
	'2': core.SurfaceGlass,
	'3': core.SurfaceMetal,
	'4': core.SurfaceWood,
	'5': core.SurfaceConcrete,
	'6': core.SurfaceLeaves,
}

type App struct {
	screen tcell.Screen
	sys    *audio.AudioSystem
	sim    *physics.Simulator
}

func main() {
	logFile, err := os.OpenFile("rainscape.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	sys := audio.NewAudioSystem(audio.LoadConfig())
	if err := sys.Init(); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Audio init failed: %v\n", err)
		os.Exit(1)
	}
	defer sys.Dispose()

	app := &App{
		screen: screen,
		sys:    sys,
		sim:    physics.NewSimulator(physics.DefaultConfig(), uint64(time.Now().UnixNano())),
	}
	app.run()
}

func (a *App) run() {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if a.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				a.screen.Sync()
			}

		case <-ticker.C:
			a.tick()
			a.draw()
		}
	}
}

// handleKey returns true when the app should exit
func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case 'q':
			return true
		case ' ':
			a.togglePlayback()
		case 'm':
			a.sys.SetMuted(!a.sys.Muted())
		case 'f':
			a.sys.SetMuffled(!a.sys.Muffled())
		case '+', '=':
			a.sim.SetIntensity(a.sim.Intensity() + 0.1)
		case '-':
			a.sim.SetIntensity(a.sim.Intensity() - 0.1)
		default:
			if st, ok := surfaceKeys[r]; ok {
				a.sim.SetSurface(st)
			}
		}
	}
	return false
}

func (a *App) togglePlayback() {
	if a.sys.State() == core.StatePlaying {
		if err := a.sys.Stop(); err != nil {
			log.Printf("stop: %v", err)
		}
		return
	}
	if err := a.sys.Start(); err != nil {
		log.Printf("start: %v", err)
	}
}

func (a *App) tick() {
	for _, ev := range a.sim.Step(tickInterval.Seconds()) {
		a.sys.IngestCollision(ev)
	}
	a.sys.SetParticleCount(a.sim.ParticleCount())
}

func (a *App) draw() {
	a.screen.Clear()
	stats := a.sys.Stats()

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	lines := []struct {
		text  string
		style tcell.Style
	}{
		{"rainscape", style.Bold(true)},
		{"", style},
		{fmt.Sprintf("state      %s", stats.State), style},
		{fmt.Sprintf("surface    %s", a.sim.Surface()), style},
		{fmt.Sprintf("intensity  %.0f%%", a.sim.Intensity()*100), style},
		{fmt.Sprintf("particles  %d", stats.ParticleCount), style},
		{fmt.Sprintf("impacts/s  %.1f", stats.CollisionsPerSecond), style},
		{fmt.Sprintf("voices     impact %d  bubble %d", stats.ActiveImpactVoices, stats.ActiveBubbleVoices), style},
		{fmt.Sprintf("dropped    %d   stolen %d", stats.DroppedCollisions, stats.StolenVoices), style},
		{fmt.Sprintf("muted %v   muffled %v", a.sys.Muted(), a.sys.Muffled()), style},
		{"", style},
		{"space play/pause   m mute   f muffle   +/- intensity", dim},
		{"1 water  2 glass  3 metal  4 wood  5 concrete  6 leaves   q quit", dim},
	}

	for row, line := range lines {
		for col, r := range line.text {
			a.screen.SetContent(2+col, 1+row, r, nil, line.style)
		}
	}
	a.screen.Show()
}
