package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nodlets/fx"
	"github.com/pthm-cable/nodlets/store"
)

var (
	backgroundColor = rl.NewColor(10, 14, 22, 255)
	borderColor     = rl.NewColor(60, 70, 90, 255)
	generatorColor  = rl.NewColor(102, 187, 106, 255)
	relayColor      = rl.NewColor(38, 166, 154, 255)
	cacheColor      = rl.NewColor(255, 202, 40, 255)
	packetColor     = rl.NewColor(224, 247, 250, 255)
	lockColor       = rl.NewColor(255, 82, 82, 255)
)

// Draw renders the world and HUD. It only reads simulation state.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	g.drawWorldBounds()
	g.drawInfluence()
	g.drawLinks()
	g.drawNodes()
	g.drawHubs()
	g.drawAgents()
	g.drawEffects()
	g.drawLock()
	g.drawSelection()

	g.drawHUD()
	rl.EndDrawing()
}

func (g *Game) drawWorldBounds() {
	x0, y0 := g.camera.WorldToScreen(0, 0)
	x1, y1 := g.camera.WorldToScreen(g.camera.WorldW, g.camera.WorldH)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 2, borderColor)
}

func (g *Game) drawInfluence() {
	hubs := g.world.Hubs()
	for h := 0; h < hubs.Count(); h++ {
		r := hubs.Influence[h]
		if !g.camera.IsVisible(hubs.X[h], hubs.Y[h], r) {
			continue
		}
		sx, sy := g.camera.WorldToScreen(hubs.X[h], hubs.Y[h])
		c := colorOf(hubs.Color[h])
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, g.camera.ScreenLength(r), rl.Fade(c, 0.05))
		rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, g.camera.ScreenLength(r), rl.Fade(c, 0.35))
	}
}

// drawLinks shows packets in flight as a faint line to their destination.
func (g *Game) drawLinks() {
	nodes := g.world.Nodes()
	for i := 0; i < nodes.Count(); i++ {
		if nodes.Kind[i] != store.Packet || !g.camera.IsVisible(nodes.X[i], nodes.Y[i], 4) {
			continue
		}
		sx, sy := g.camera.WorldToScreen(nodes.X[i], nodes.Y[i])
		tx, ty := g.camera.WorldToScreen(nodes.TargetX[i], nodes.TargetY[i])
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: tx, Y: ty}, rl.Fade(packetColor, 0.12))
	}
}

func (g *Game) drawNodes() {
	nodes := g.world.Nodes()
	for i := 0; i < nodes.Count(); i++ {
		x, y := nodes.X[i], nodes.Y[i]
		if !g.camera.IsVisible(x, y, 30) {
			continue
		}
		sx, sy := g.camera.WorldToScreen(x, y)
		pos := rl.Vector2{X: sx, Y: sy}

		switch {
		case nodes.Kind[i] == store.Packet:
			rl.DrawCircleV(pos, max(2, g.camera.ScreenLength(3)), packetColor)
		default:
			c := generatorColor
			base := float32(16)
			if nodes.Kind[i] == store.Relay {
				c, base = relayColor, 11
				if nodes.Regen[i] == 0 {
					c, base = cacheColor, 7
				}
			}
			fill := float32(0)
			if nodes.MaxAmount[i] > 0 {
				fill = nodes.Amount[i] / nodes.MaxAmount[i]
			}
			r := max(3, g.camera.ScreenLength(base))
			rl.DrawCircleV(pos, r, rl.Fade(c, 0.25))
			rl.DrawCircleV(pos, r*float32(math.Sqrt(float64(fill))), c)
		}
	}
}

func (g *Game) drawHubs() {
	hubs := g.world.Hubs()
	for h := 0; h < hubs.Count(); h++ {
		sx, sy := g.camera.WorldToScreen(hubs.X[h], hubs.Y[h])
		r := g.camera.ScreenLength(hubs.Size[h])
		c := colorOf(hubs.Color[h])
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, rl.Fade(c, 0.6))
		rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, r, c)
	}
}

// lead is the simulated time the clock has accumulated toward the next
// tick. Agents are drawn that far along their velocity so motion stays
// smooth between ticks.
func (g *Game) lead() float32 {
	if g.paused {
		return 0
	}
	clock := g.session.Clock()
	return float32(clock.Alpha()) * clock.DT()
}

func (g *Game) drawAgents() {
	agents := g.world.Agents()
	lead := g.lead()
	for i := 0; i < agents.Count(); i++ {
		x, y := agents.X[i]+agents.VX[i]*lead, agents.Y[i]+agents.VY[i]*lead
		if !g.camera.IsVisible(x, y, agents.Size[i]) {
			continue
		}
		sx, sy := g.camera.WorldToScreen(x, y)
		r := max(1.5, g.camera.ScreenLength(agents.Size[i]*0.5))
		c := colorOf(agents.Color[i])
		if agents.State[i] == store.Returning {
			c = rl.ColorBrightness(c, 0.4)
		}
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, c)

		// Cargo as an inner dot
		if agents.MaxCarry[i] > 0 && agents.Carried[i] > 0 {
			load := agents.Carried[i] / agents.MaxCarry[i]
			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r*0.6*load, rl.White)
		}
	}
}

func (g *Game) drawEffects() {
	g.effects.Each(func(p fx.Position, e fx.Effect) {
		t := e.Progress()
		c := rl.Fade(colorOf(e.Color), 1-t)

		sx, sy := g.camera.WorldToScreen(p.X, p.Y)
		r := g.camera.ScreenLength(e.Radius * t)
		if e.Kind == fx.Ring {
			sx, sy = g.screenWidth/2, g.screenHeight/2
			r = e.Radius * t * 3
		}
		rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, r, c)
	})
}

func (g *Game) drawLock() {
	i, ok := g.world.TargetLock()
	if !ok {
		return
	}
	nodes := g.world.Nodes()
	sx, sy := g.camera.WorldToScreen(nodes.X[i], nodes.Y[i])
	r := max(10, g.camera.ScreenLength(26))
	pulse := float32(0.6 + 0.4*math.Sin(rl.GetTime()*6))
	rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, r, rl.Fade(lockColor, pulse))
	rl.DrawLineV(rl.Vector2{X: sx - r*1.4, Y: sy}, rl.Vector2{X: sx - r*0.6, Y: sy}, lockColor)
	rl.DrawLineV(rl.Vector2{X: sx + r*0.6, Y: sy}, rl.Vector2{X: sx + r*1.4, Y: sy}, lockColor)
	rl.DrawLineV(rl.Vector2{X: sx, Y: sy - r*1.4}, rl.Vector2{X: sx, Y: sy - r*0.6}, lockColor)
	rl.DrawLineV(rl.Vector2{X: sx, Y: sy + r*0.6}, rl.Vector2{X: sx, Y: sy + r*1.4}, lockColor)
}

func (g *Game) drawSelection() {
	i, ok := g.world.Agents().Resolve(g.selected)
	if !ok {
		return
	}
	a := g.world.Agents()
	lead := g.lead()
	sx, sy := g.camera.WorldToScreen(a.X[i]+a.VX[i]*lead, a.Y[i]+a.VY[i]*lead)
	rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, max(8, g.camera.ScreenLength(a.Size[i])), rl.Yellow)

	// Line to the agent's current target
	nodes := g.world.Nodes()
	if t, ok := nodes.Resolve(a.Target[i]); ok && a.State[i] != store.Returning {
		tx, ty := g.camera.WorldToScreen(nodes.X[t], nodes.Y[t])
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: tx, Y: ty}, rl.Fade(rl.Yellow, 0.4))
	}
}

// colorOf converts a packed 0xRRGGBBAA color.
func colorOf(c uint32) rl.Color {
	return rl.NewColor(uint8(c>>24), uint8(c>>16), uint8(c>>8), uint8(c))
}
