package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"

	"github.com/Ru51kXD/Likvi/internal/achievements"
	"github.com/Ru51kXD/Likvi/internal/config"
	"github.com/Ru51kXD/Likvi/internal/log"
	"github.com/Ru51kXD/Likvi/internal/sim"
	"github.com/Ru51kXD/Likvi/internal/world"
)

const toastFor = 3 * time.Second

type pilot struct {
	screen  tcell.Screen
	session *sim.Session
	keys    *heldKeys
	tracker *achievements.Tracker

	toast      string
	toastUntil time.Time
}

func newPilot(s *sim.Session) (*pilot, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	p := &pilot{
		screen:  screen,
		session: s,
		keys:    newHeldKeys(),
		tracker: achievements.NewTracker(),
	}
	s.SetKeySource(p.keys)
	s.Subscribe(p.onEvent)
	return p, nil
}

func (p *pilot) onEvent(ev sim.Event) {
	switch ev.Kind {
	case sim.EventStarted:
		p.notify("Flight started")
	case sim.EventCrashed:
		p.notify(fmt.Sprintf("CRASH into %s at %.1f km/h  (R to reset)", ev.Hit.Object.Name, ev.Hit.SpeedKmh))
	case sim.EventReset:
		p.notify("Reset: press any flight key to start")
	}
}

func (p *pilot) notify(msg string) {
	p.toast = msg
	p.toastUntil = time.Now().Add(toastFor)
}

// handleInput returns false when the pilot quits.
func (p *pilot) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			p.keys.press(sim.KeyLeft)
		case tcell.KeyRight:
			p.keys.press(sim.KeyRight)
		case tcell.KeyRune:
			switch r := ev.Rune(); r {
			case 'r', 'R', 'к', 'К':
				p.keys.clear()
				p.session.ResetFlight()
			case 't', 'T', 'е', 'Е':
				st := p.session.Store()
				st.SetTrajectoryEnabled(!st.TrajectoryEnabled())
			default:
				if k := sim.Key(string(r)); sim.IsControlKey(k) {
					p.keys.press(k)
				}
			}
		}
	case *tcell.EventResize:
		p.screen.Sync()
	}
	return true
}

func (p *pilot) run() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	prev := time.Now()
	for {
		select {
		case ev := <-events:
			if !p.handleInput(ev) {
				return
			}
		case now := <-ticker.C:
			p.session.Advance(now.Sub(prev))
			prev = now
			for _, a := range p.tracker.Check(p.session.Snapshot()) {
				p.notify("Achievement: " + a.Name + " - " + a.Description)
			}
			p.draw()
		}
	}
}

func (p *pilot) draw() {
	s := p.session.Snapshot()
	p.screen.Clear()

	label := tcell.StyleDefault.Foreground(tcell.ColorGray)
	value := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	phase := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	switch s.Phase {
	case sim.PhaseAwaitingStart:
		phase = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case sim.PhaseCrashed:
		phase = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	}

	rows := []struct{ k, v string }{
		{"altitude", fmt.Sprintf("%7.2f m", s.Telemetry.Altitude)},
		{"speed", fmt.Sprintf("%7.1f km/h", s.Telemetry.SpeedKmh)},
		{"vertical", fmt.Sprintf("%7.2f m/s", s.Velocity.Y())},
		{"throttle", fmt.Sprintf("%6.0f %%", s.Controls.Throttle*100)},
		{"pitch/roll", fmt.Sprintf("%6.1f° %6.1f°", sim.RadToDeg(s.Attitude.Pitch), sim.RadToDeg(s.Attitude.Roll))},
		{"heading", fmt.Sprintf("%6.1f°", heading(s.Attitude.Yaw))},
		{"position", fmt.Sprintf("%.1f, %.1f, %.1f", s.Position.X(), s.Position.Y(), s.Position.Z())},
		{"gps", fmt.Sprintf("%.6f, %.6f", s.Telemetry.Geo.Lat, s.Telemetry.Geo.Lon)},
		{"flight time", fmt.Sprintf("%7.1f s", s.Stats.FlightTime)},
		{"max altitude", fmt.Sprintf("%7.1f m", s.Stats.MaxAltitude)},
		{"distance", fmt.Sprintf("%7.1f m", s.Stats.Distance)},
		{"achievements", fmt.Sprintf("%d/%d", p.tracker.Count(), len(achievements.Table))},
	}

	drawText(p.screen, 2, 1, phase, "● "+s.Phase.String())
	for i, r := range rows {
		drawText(p.screen, 2, 3+i, label, r.k)
		drawText(p.screen, 16, 3+i, value, r.v)
	}

	y := 4 + len(rows)
	if p.session.Store().TrajectoryEnabled() {
		drawText(p.screen, 2, y, label, fmt.Sprintf("trail %d pts, %.1f m", s.Stats.Trajectory.Len(), s.Stats.Trajectory.PathLength()))
		y++
	}
	drawText(p.screen, 2, y+1, label, "Q/E throttle  W/S pitch  A/D roll  ←/→ yaw  R reset  T trail  Esc quit")

	if time.Now().Before(p.toastUntil) {
		drawText(p.screen, 2, y+3, tcell.StyleDefault.Foreground(tcell.ColorAqua), p.toast)
	}
	p.screen.Show()
}

// heading maps yaw onto a compass bearing, clockwise from north.
func heading(yaw float64) float64 {
	deg := math.Mod(-sim.RadToDeg(yaw), 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func main() {
	configPath := pflag.String("config", "", "Config file (yaml, json or toml)")
	worldPath := pflag.String("world", "", "World YAML; the built-in world when empty")
	logPath := pflag.String("log", "", "Log file; logging is off when empty")
	pflag.Parse()

	if err := run(*configPath, *worldPath, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, worldPath, logPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// stderr belongs to the terminal UI
	logger := log.NewNop()
	if logPath != "" {
		if logger, err = log.NewFile(cfg.LogLevel(), logPath); err != nil {
			return err
		}
	}
	defer logger.Sync()

	w := world.Default()
	if worldPath != "" {
		if w, err = world.LoadFile(worldPath); err != nil {
			return err
		}
	}

	p, err := newPilot(sim.NewSession(cfg.SessionOptions(w.Registry(logger), logger)))
	if err != nil {
		return err
	}
	defer p.screen.Fini()

	p.notify("Press any flight key to start")
	p.run()
	return nil
}
