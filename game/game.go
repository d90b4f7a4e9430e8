// Package game is the raylib frontend: it advances a session from the
// frame clock, renders the world read-only and routes input to the camera,
// agent selection, the target lock and perk purchases.
package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nodlets/camera"
	"github.com/pthm-cable/nodlets/fx"
	"github.com/pthm-cable/nodlets/progression"
	"github.com/pthm-cable/nodlets/session"
	"github.com/pthm-cable/nodlets/sim"
	"github.com/pthm-cable/nodlets/store"
)

// Game holds frontend state. The simulation itself lives in the session.
type Game struct {
	opts    Options
	session *session.Session
	world   *sim.World
	camera  *camera.Camera
	effects *fx.Layer

	paused   bool
	speed    int
	selected store.Handle
	showHelp bool

	choices      []progression.Perk
	choicePoints int
	message      string
	messageTTL   float32

	screenWidth, screenHeight float32
}

// New creates the frontend. rl.InitWindow must have been called.
func New(s *session.Session, opts Options) *Game {
	w := s.World()
	cfg := w.Config()
	sw, sh := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())

	g := &Game{
		opts:         opts,
		session:      s,
		world:        w,
		camera:       camera.New(sw, sh, cfg.Derived.WorldW32, cfg.Derived.WorldH32),
		effects:      fx.New(opts.EffectLimit),
		speed:        1,
		selected:     store.NoHandle,
		choicePoints: -1,
		screenWidth:  sw,
		screenHeight: sh,
	}
	if w.Hubs().Count() > 0 {
		g.camera.CenterOn(w.Hubs().X[0], w.Hubs().Y[0])
	}

	s.OnEvent = g.effects.HandleEvent
	return g
}

// Update advances the simulation by the ticks the clock has due and
// processes input. Rendering is left to Draw.
func (g *Game) Update() {
	g.handleInput()
	g.session.Perf().RecordFrame()

	dt := rl.GetFrameTime()
	if g.paused {
		// Keep the clock's reference current so unpausing does not replay the pause.
		g.session.Clock().Elapsed()
	} else {
		n := g.session.Frame()
		for i := 0; i < n*(g.speed-1); i++ {
			g.session.Step()
		}
		g.effects.Update(dt)
	}

	if g.messageTTL > 0 {
		g.messageTTL -= dt
	}
	g.refreshChoices()
}

// Tick returns the simulation tick.
func (g *Game) Tick() int32 { return g.world.Tick() }

// Unload releases frontend resources. The session is closed by its owner.
func (g *Game) Unload() {
	g.session.OnEvent = nil
}

// refreshChoices rerolls the offered perks whenever the point balance changes.
func (g *Game) refreshChoices() {
	points := g.world.Ledger().Points()
	if points == g.choicePoints {
		return
	}
	g.choicePoints = points
	g.choices = nil
	if points > 0 {
		g.choices = g.world.Choices()
	}
}

// buy spends a point on the i-th offered perk.
func (g *Game) buy(i int) {
	if i < 0 || i >= len(g.choices) {
		return
	}
	p := g.choices[i]
	if err := g.world.Unlock(p.ID); err != nil {
		g.flash(err.Error())
		slog.Warn("unlock failed", "perk", p.ID, "error", err)
		return
	}
	g.flash("Unlocked " + p.Name)
	slog.Info("perk unlocked", "perk", p.ID, "tick", g.world.Tick())
	g.choicePoints = -1
}

func (g *Game) flash(msg string) {
	g.message = msg
	g.messageTTL = 2.5
}
