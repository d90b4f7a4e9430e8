// Package termview renders a session in a terminal with tcell. One cell
// covers Scale world units horizontally and twice that vertically, to
// compensate for the aspect ratio of terminal glyphs.
package termview

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/nodlets/progression"
	"github.com/pthm-cable/nodlets/session"
	"github.com/pthm-cable/nodlets/sim"
	"github.com/pthm-cable/nodlets/store"
)

const (
	minScale   = 4
	maxScale   = 200
	frameEvery = 16 * time.Millisecond
)

var (
	styleDefault = tcell.StyleDefault
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	styleGen     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleRelay   = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleCache   = tcell.StyleDefault.Foreground(tcell.ColorGold)
	stylePacket  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleLock    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleReticle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleEdge    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// View owns the terminal screen and routes keys to the session's world.
type View struct {
	screen  tcell.Screen
	session *session.Session
	world   *sim.World

	// Camera center in world coordinates and world units per column.
	X, Y  float32
	Scale float32

	width, height int
	paused        bool
	hubCursor     int

	choices      []progression.Perk
	choicePoints int
	message      string
}

// New creates a view over an initialized screen.
func New(screen tcell.Screen, s *session.Session) *View {
	w := s.World()
	cfg := w.Config()
	v := &View{
		screen:       screen,
		session:      s,
		world:        w,
		X:            cfg.Derived.WorldW32 / 2,
		Y:            cfg.Derived.WorldH32 / 2,
		Scale:        40,
		choicePoints: -1,
	}
	v.width, v.height = screen.Size()
	if w.Hubs().Count() > 0 {
		v.X, v.Y = w.Hubs().X[0], w.Hubs().Y[0]
	}
	return v
}

// Run polls input and redraws until the user quits or ctx is done.
func (v *View) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	go v.pollEvents(ctx, events)

	ticker := time.NewTicker(frameEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok || !v.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			v.Advance()
			v.Draw()
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or ctx is
// done. events is closed on return.
func (v *View) pollEvents(ctx context.Context, events chan<- tcell.Event) {
	defer close(events)
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// Advance runs the ticks that are due, or only keeps the clock current while paused.
func (v *View) Advance() {
	if v.paused {
		v.session.Clock().Elapsed()
		return
	}
	v.session.Frame()
}

// HandleEvent applies one input event. It returns false when the user quits.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.width, v.height = v.screen.Size()
		v.screen.Sync()
	case *tcell.EventKey:
		return v.handleKey(ev)
	}
	return true
}

func (v *View) handleKey(ev *tcell.EventKey) bool {
	step := v.Scale * 4
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.pan(-step, 0)
	case tcell.KeyRight:
		v.pan(step, 0)
	case tcell.KeyUp:
		v.pan(0, -2*step)
	case tcell.KeyDown:
		v.pan(0, 2*step)
	case tcell.KeyTab:
		v.nextHub()
	case tcell.KeyRune:
		return v.handleRune(ev.Rune())
	}
	return true
}

func (v *View) handleRune(r rune) bool {
	step := v.Scale * 4
	switch r {
	case 'q':
		return false
	case 'h':
		v.pan(-step, 0)
	case 'l':
		v.pan(step, 0)
	case 'k':
		v.pan(0, -2*step)
	case 'j':
		v.pan(0, 2*step)
	case '+', '=':
		v.Scale = max(minScale, v.Scale/1.25)
	case '-':
		v.Scale = min(maxScale, v.Scale*1.25)
	case ' ':
		v.paused = !v.paused
	case 't':
		v.lockNearest()
	case 'c':
		v.world.ClearTargetLock()
		v.message = "target lock cleared"
	case '1', '2', '3', '4', '5':
		v.buy(int(r - '1'))
	}
	return true
}

func (v *View) pan(dx, dy float32) {
	cfg := v.world.Config()
	v.X = min(max(v.X+dx, 0), cfg.Derived.WorldW32)
	v.Y = min(max(v.Y+dy, 0), cfg.Derived.WorldH32)
}

func (v *View) nextHub() {
	hubs := v.world.Hubs()
	if hubs.Count() == 0 {
		return
	}
	v.hubCursor = (v.hubCursor + 1) % hubs.Count()
	v.X, v.Y = hubs.X[v.hubCursor], hubs.Y[v.hubCursor]
}

// lockNearest locks the server closest to the reticle at the view center.
func (v *View) lockNearest() {
	i := v.world.NearestServer(v.X, v.Y, v.Scale*6)
	if i == store.Invalid || !v.world.SetTargetLock(i) {
		v.message = "no server under the reticle"
		return
	}
	v.message = fmt.Sprintf("locked %s %d", v.world.Nodes().Kind[i], i)
}

func (v *View) buy(i int) {
	v.refreshChoices()
	if i < 0 || i >= len(v.choices) {
		v.message = "no perk in that slot"
		return
	}
	if err := v.world.Unlock(v.choices[i].ID); err != nil {
		v.message = err.Error()
		return
	}
	v.message = "unlocked " + v.choices[i].Name
	v.choicePoints = -1
}

func (v *View) refreshChoices() {
	points := v.world.Ledger().Points()
	if points == v.choicePoints {
		return
	}
	v.choicePoints = points
	v.choices = nil
	if points > 0 {
		v.choices = v.world.Choices()
	}
}

// worldToCell maps a world point to a screen cell. ok is false off-screen
// or on the status rows.
func (v *View) worldToCell(x, y float32) (cx, cy int, ok bool) {
	fx := (x-v.X)/v.Scale + float32(v.width)/2
	fy := (y-v.Y)/(2*v.Scale) + float32(v.height)/2
	cx, cy = int(fx), int(fy)
	if fx < 0 || fy < 0 {
		return cx, cy, false
	}
	return cx, cy, cx < v.width && cy >= 1 && cy < v.height-1
}

// Draw renders one frame.
func (v *View) Draw() {
	v.refreshChoices()
	v.screen.Clear()

	v.drawEdges()
	v.drawNodes()
	v.drawAgents()
	v.drawHubs()

	if cx, cy, ok := v.worldToCell(v.X, v.Y); ok {
		v.screen.SetContent(cx, cy, '+', nil, styleReticle)
	}
	v.drawStatus()
	v.screen.Show()
}

func (v *View) drawEdges() {
	cfg := v.world.Config()
	w, h := cfg.Derived.WorldW32, cfg.Derived.WorldH32
	x0, y0, _ := v.worldToCell(0, 0)
	x1, y1, _ := v.worldToCell(w, h)
	for x := max(x0, 0); x <= min(x1, v.width-1); x++ {
		v.put(x, y0, '─', styleEdge)
		v.put(x, y1, '─', styleEdge)
	}
	for y := max(y0, 1); y <= min(y1, v.height-2); y++ {
		v.put(x0, y, '│', styleEdge)
		v.put(x1, y, '│', styleEdge)
	}
}

func (v *View) drawNodes() {
	nodes := v.world.Nodes()
	lock, locked := v.world.TargetLock()
	for i := 0; i < nodes.Count(); i++ {
		cx, cy, ok := v.worldToCell(nodes.X[i], nodes.Y[i])
		if !ok {
			continue
		}
		switch {
		case locked && i == lock:
			v.screen.SetContent(cx, cy, '◎', nil, styleLock)
		case nodes.Kind[i] == store.Generator:
			v.screen.SetContent(cx, cy, 'G', nil, styleGen)
		case nodes.Kind[i] == store.Relay && nodes.Regen[i] == 0:
			v.screen.SetContent(cx, cy, '*', nil, styleCache)
		case nodes.Kind[i] == store.Relay:
			v.screen.SetContent(cx, cy, 'r', nil, styleRelay)
		default:
			v.screen.SetContent(cx, cy, '·', nil, stylePacket)
		}
	}
}

func (v *View) drawAgents() {
	agents := v.world.Agents()
	for i := 0; i < agents.Count(); i++ {
		cx, cy, ok := v.worldToCell(agents.X[i], agents.Y[i])
		if !ok {
			continue
		}
		ch := 'o'
		if agents.State[i] == store.Returning {
			ch = '●'
		}
		v.screen.SetContent(cx, cy, ch, nil, styleDefault.Foreground(hubColor(agents.Color[i])))
	}
}

func (v *View) drawHubs() {
	hubs := v.world.Hubs()
	for h := 0; h < hubs.Count(); h++ {
		if cx, cy, ok := v.worldToCell(hubs.X[h], hubs.Y[h]); ok {
			v.screen.SetContent(cx, cy, '@', nil, styleDefault.Foreground(hubColor(hubs.Color[h])).Bold(true))
		}
	}
}

func (v *View) drawStatus() {
	w := v.world
	led := w.Ledger()
	state := "running"
	if v.paused {
		state = "paused"
	}
	top := fmt.Sprintf(" tick %d  agents %d  nodes %d  delivered %s  milestone %d  next %s  points %d  [%s]",
		w.Tick(), w.Agents().Count(), w.Nodes().Count(),
		humanize.Comma(int64(led.Total())), led.Milestones(), humanize.Comma(int64(led.NextMilestone())), led.Points(), state)
	v.text(0, 0, top, styleStatus, true)

	bottom := " q quit  hjkl pan  +/- zoom  tab hub  t lock  c clear  space pause"
	if len(v.choices) > 0 {
		bottom = " buy:"
		for i, p := range v.choices {
			bottom += fmt.Sprintf("  %d) %s", i+1, p.Name)
		}
	}
	if v.message != "" {
		bottom += "  | " + v.message
	}
	v.text(0, v.height-1, bottom, styleStatus, true)
}

func (v *View) text(x, y int, s string, style tcell.Style, fill bool) {
	col := x
	for _, r := range s {
		if col >= v.width {
			return
		}
		v.screen.SetContent(col, y, r, nil, style)
		col++
	}
	for fill && col < v.width {
		v.screen.SetContent(col, y, ' ', nil, style)
		col++
	}
}

func (v *View) put(x, y int, r rune, style tcell.Style) {
	if x < 0 || x >= v.width || y < 1 || y >= v.height-1 {
		return
	}
	v.screen.SetContent(x, y, r, nil, style)
}

// hubColor converts a packed 0xRRGGBBAA color.
func hubColor(c uint32) tcell.Color {
	return tcell.NewRGBColor(int32(c>>24&0xFF), int32(c>>16&0xFF), int32(c>>8&0xFF))
}
