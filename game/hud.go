package game

import (
	"fmt"

	"github.com/dustin/go-humanize"
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Perk panel layout in screen pixels.
const (
	panelWidth   = 260
	panelRow     = 54
	panelPadding = 10
)

// drawHUD renders status text, the perk panel and transient messages.
func (g *Game) drawHUD() {
	w := g.world
	led := w.Ledger()

	rl.DrawText(g.opts.Title, 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Delivered: %s  milestones %d  next %s  points %d",
		humanize.Comma(int64(led.Total())),
		led.Milestones(),
		humanize.Comma(int64(led.NextMilestone())),
		led.Points()), 10, 35, 16, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Agents: %d | Hubs: %d | Nodes: %d | Tick: %d | Speed: %dx | FPS: %d",
		w.Agents().Count(), w.Hubs().Count(), w.Nodes().Count(), w.Tick(), g.speed, rl.GetFPS()),
		10, 55, 16, rl.LightGray)

	if win, ok := g.session.LastWindow(); ok {
		rl.DrawText(fmt.Sprintf("Throughput: %.1f/s  overflow %s",
			win.Throughput, humanize.Comma(int64(win.PacketOverflow))), 10, 75, 16, rl.LightGray)
	}
	if g.paused {
		rl.DrawText("PAUSED", 10, 95, 16, rl.Yellow)
	}

	g.drawSelectedInfo()
	g.drawPerkPanel()

	if g.messageTTL > 0 {
		tw := rl.MeasureText(g.message, 18)
		rl.DrawText(g.message, int32(g.screenWidth)/2-tw/2, int32(g.screenHeight)-60, 18, rl.Yellow)
	}

	controls := "[Space] pause  [</>] speed  [LMB] select  [RMB] lock server  [C] clear  [1-5] buy perk  [H] help"
	rl.DrawText(controls, 10, int32(g.screenHeight)-25, 14, rl.Gray)
	if g.showHelp {
		g.drawHelp()
	}
}

func (g *Game) drawSelectedInfo() {
	a := g.world.Agents()
	i, ok := a.Resolve(g.selected)
	if !ok {
		return
	}
	y := int32(g.screenHeight) - 110
	rl.DrawText(fmt.Sprintf("Agent %d  hub %d  %s", i, a.Hub[i], a.State[i]), 10, y, 16, rl.Yellow)
	rl.DrawText(fmt.Sprintf("cargo %.0f / %.0f  orbit r %.0f  age %.0fs", a.Carried[i], a.MaxCarry[i], a.OrbitRadius[i], a.Age[i]),
		10, y+20, 14, rl.LightGray)
	if t, ok := g.world.Nodes().Resolve(a.Target[i]); ok {
		n := g.world.Nodes()
		rl.DrawText(fmt.Sprintf("target %s %d  stock %.0f", n.Kind[t], t, n.Amount[t]), 10, y+38, 14, rl.LightGray)
	}
}

// drawPerkPanel lists the offered perks as raygui buttons while points are available.
func (g *Game) drawPerkPanel() {
	x := g.screenWidth - panelWidth - panelPadding
	y := float32(panelPadding)

	lock := "none"
	if i, ok := g.world.TargetLock(); ok {
		lock = fmt.Sprintf("%s %d", g.world.Nodes().Kind[i], i)
	}
	gui.Label(rl.Rectangle{X: x, Y: y, Width: panelWidth, Height: 20}, "Target lock: "+lock)
	y += 24

	if len(g.choices) == 0 {
		gui.Label(rl.Rectangle{X: x, Y: y, Width: panelWidth, Height: 20},
			fmt.Sprintf("Next perk at %s", humanize.Comma(int64(g.world.Ledger().NextMilestone()))))
		return
	}

	gui.Label(rl.Rectangle{X: x, Y: y, Width: panelWidth, Height: 20},
		fmt.Sprintf("Perk points: %d", g.world.Ledger().Points()))
	y += 24
	for i, p := range g.choices {
		bounds := rl.Rectangle{X: x, Y: y, Width: panelWidth, Height: panelRow - 6}
		if gui.Button(bounds, fmt.Sprintf("[%d] %s", i+1, p.Name)) {
			g.buy(i)
		}
		rl.DrawText(p.Description, int32(x)+6, int32(y+panelRow-4), 10, rl.Gray)
		y += panelRow + 12
	}
}

// overPanel reports whether a screen point is over the perk panel, so
// clicks there do not select or lock.
func (g *Game) overPanel(sx, sy float32) bool {
	x := g.screenWidth - panelWidth - panelPadding
	h := float32(48 + len(g.choices)*(panelRow+12))
	return sx >= x && sx <= x+panelWidth && sy >= panelPadding && sy <= panelPadding+h
}

func (g *Game) drawHelp() {
	lines := []string{
		"Nodlets leave their hub, harvest servers inside its influence,",
		"catch passing packets and bring cargo home.",
		"",
		"Right-click a server to lock every hub in range onto it.",
		"Deliveries pass milestones; each milestone is one perk point.",
		"Arrows/WASD pan, wheel zooms, F follows selection, Home resets.",
	}
	x, y := int32(g.screenWidth)/2-260, int32(g.screenHeight)/2-80
	rl.DrawRectangle(x-10, y-10, 540, int32(len(lines))*20+20, rl.Fade(rl.Black, 0.8))
	for i, l := range lines {
		rl.DrawText(l, x, y+int32(i)*20, 16, rl.White)
	}
}
