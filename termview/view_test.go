package termview

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/nodlets/config"
	"github.com/pthm-cable/nodlets/session"
)

// MockScreen records cell contents for a fixed-size terminal.
type MockScreen struct {
	tcell.Screen
	width, height int
	cells         map[[2]int]rune
	shown         int
}

func newMockScreen(w, h int) *MockScreen {
	return &MockScreen{width: w, height: h, cells: map[[2]int]rune{}}
}

func (m *MockScreen) Size() (int, int) { return m.width, m.height }
func (m *MockScreen) Clear()           { m.cells = map[[2]int]rune{} }
func (m *MockScreen) Show()            { m.shown++ }
func (m *MockScreen) Sync()            {}

func (m *MockScreen) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	m.cells[[2]int{x, y}] = mainc
}

func (m *MockScreen) count(r rune) int {
	n := 0
	for _, c := range m.cells {
		if c == r {
			n++
		}
	}
	return n
}

func (m *MockScreen) row(y int) string {
	var sb strings.Builder
	for x := 0; x < m.width; x++ {
		if r, ok := m.cells[[2]int{x, y}]; ok {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func newTestView(t *testing.T) (*View, *MockScreen) {
	t.Helper()
	s, err := session.New(config.Default(), session.Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	screen := newMockScreen(120, 40)
	return New(screen, s), screen
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }
func char(r rune) *tcell.EventKey     { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func TestDrawShowsHubAndReticle(t *testing.T) {
	v, screen := newTestView(t)
	for i := 0; i < 10; i++ {
		v.session.Step()
	}
	v.Draw()

	if screen.shown != 1 {
		t.Errorf("Show called %d times", screen.shown)
	}
	// The view starts centered on hub 0 with the reticle on top.
	if got := screen.cells[[2]int{60, 20}]; got != '+' {
		t.Errorf("center cell = %q, want reticle", got)
	}
	// Hub 1 sits 1200 units right and down: 30 columns, 15 rows.
	if got := screen.cells[[2]int{90, 35}]; got != '@' {
		t.Errorf("hub 1 cell = %q, want hub", got)
	}
	if screen.count('o')+screen.count('●') == 0 {
		t.Error("no agents drawn")
	}
	if screen.cells[[2]int{1, 0}] != 't' {
		t.Error("status line missing")
	}
	want := fmt.Sprintf("milestone %d", v.world.Ledger().Milestones())
	if status := screen.row(0); !strings.Contains(status, want) {
		t.Errorf("status line %q lacks the milestone count", status)
	}
}

func TestKeysPanZoomPause(t *testing.T) {
	v, _ := newTestView(t)
	x0, scale0 := v.X, v.Scale

	v.HandleEvent(char('l'))
	if v.X != x0+4*scale0 {
		t.Errorf("X = %v, want %v", v.X, x0+4*scale0)
	}
	v.HandleEvent(key(tcell.KeyLeft))
	if v.X != x0 {
		t.Errorf("X = %v after pan back, want %v", v.X, x0)
	}

	v.HandleEvent(char('+'))
	if v.Scale >= scale0 {
		t.Errorf("zoom in did not shrink scale: %v", v.Scale)
	}
	for i := 0; i < 50; i++ {
		v.HandleEvent(char('-'))
	}
	if v.Scale != maxScale {
		t.Errorf("scale = %v, want clamp %v", v.Scale, float32(maxScale))
	}

	v.HandleEvent(char(' '))
	if !v.paused {
		t.Error("space did not pause")
	}
	tick := v.world.Tick()
	v.Advance()
	if v.world.Tick() != tick {
		t.Error("paused view advanced the world")
	}
}

func TestPanStaysInWorld(t *testing.T) {
	v, _ := newTestView(t)
	for i := 0; i < 200; i++ {
		v.HandleEvent(char('h'))
		v.HandleEvent(char('k'))
	}
	if v.X != 0 || v.Y != 0 {
		t.Errorf("camera = (%v,%v), want (0,0)", v.X, v.Y)
	}
}

func TestLockAndClear(t *testing.T) {
	v, _ := newTestView(t)
	v.session.Step()

	c := v.world.Candidates(0)
	if len(c) == 0 {
		t.Fatal("no servers near hub 0")
	}
	n := v.world.Nodes()
	v.X, v.Y = n.X[c[0]], n.Y[c[0]]

	v.HandleEvent(char('t'))
	if _, ok := v.world.TargetLock(); !ok {
		t.Fatalf("no lock after t: %s", v.message)
	}
	v.HandleEvent(char('c'))
	if _, ok := v.world.TargetLock(); ok {
		t.Error("lock survived c")
	}
}

func TestBuyWithoutPoints(t *testing.T) {
	v, _ := newTestView(t)
	v.HandleEvent(char('1'))
	if v.message != "no perk in that slot" {
		t.Errorf("message = %q", v.message)
	}

	v.world.Ledger().Deposit(float32(v.world.Config().Progression.FirstMilestone))
	v.HandleEvent(char('1'))
	if v.world.Ledger().Points() != 0 {
		t.Errorf("points = %d after buying", v.world.Ledger().Points())
	}
}

func TestQuitKeys(t *testing.T) {
	v, _ := newTestView(t)
	for _, ev := range []*tcell.EventKey{char('q'), key(tcell.KeyEscape), key(tcell.KeyCtrlC)} {
		if v.HandleEvent(ev) {
			t.Errorf("%v did not quit", ev.Name())
		}
	}
	if !v.HandleEvent(char('x')) {
		t.Error("unbound key quit")
	}
}

func TestNextHubCycles(t *testing.T) {
	v, _ := newTestView(t)
	hubs := v.world.Hubs()
	v.HandleEvent(key(tcell.KeyTab))
	if v.X != hubs.X[1] || v.Y != hubs.Y[1] {
		t.Errorf("tab centered on (%v,%v), want hub 1", v.X, v.Y)
	}
	v.HandleEvent(key(tcell.KeyTab))
	if v.X != hubs.X[0] {
		t.Error("tab did not wrap to hub 0")
	}
}

// keyStream is a screen that always has another key pending.
type keyStream struct {
	*MockScreen
}

func (keyStream) PollEvent() tcell.Event { return char('x') }

func TestPollEventsStopsOnCancel(t *testing.T) {
	v, screen := newTestView(t)
	v.screen = keyStream{screen}

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan tcell.Event) // never read after the first event
	done := make(chan struct{})
	go func() {
		v.pollEvents(ctx, events)
		close(done)
	}()

	<-events
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pollEvents still blocked after cancel")
	}
	if _, ok := <-events; ok {
		t.Error("events not closed")
	}
}

func TestRunReturnsOnCancel(t *testing.T) {
	v, screen := newTestView(t)
	v.screen = keyStream{screen}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := v.Run(ctx); err != context.DeadlineExceeded {
		t.Errorf("Run = %v, want deadline exceeded", err)
	}
}
