package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nodlets/store"
)

// Pick radii in screen pixels.
const (
	agentPickRadius  = 16
	serverPickRadius = 40
)

// handleInput processes keyboard and mouse input. Input only writes the
// camera, the selection, the target lock and perk purchases.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.showHelp = !g.showHelp
	}

	// Simulation speed with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.speed > 1 {
		g.speed--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.speed < g.opts.MaxSpeed {
		g.speed++
	}

	// Perk purchase with number keys
	for i, key := range []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive} {
		if rl.IsKeyPressed(key) {
			g.buy(i)
		}
	}

	g.handleCameraInput()
	g.handleMouse()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.camera.Resize(w, h)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed is in screen pixels, so it feels the same at every zoom
	const panSpeed = 8.0

	if rl.IsKeyDown(rl.KeyRight) || rl.IsKeyDown(rl.KeyD) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) || rl.IsKeyDown(rl.KeyA) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) || rl.IsKeyDown(rl.KeyS) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) || rl.IsKeyDown(rl.KeyW) {
		g.camera.Pan(0, -panSpeed)
	}

	// Zoom toward the cursor with the wheel
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		g.camera.ZoomAt(m.X, m.Y, 1+wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Drag with the middle button
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		g.camera.Pan(-d.X, -d.Y)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		if i, ok := g.world.Agents().Resolve(g.selected); ok {
			g.camera.CenterOn(g.world.Agents().X[i], g.world.Agents().Y[i])
		}
	}
}

// handleMouse selects agents with the left button and locks servers with the right.
func (g *Game) handleMouse() {
	m := rl.GetMousePosition()
	if g.overPanel(m.X, m.Y) {
		return
	}
	wx, wy := g.camera.ScreenToWorld(m.X, m.Y)

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		i := g.world.SelectAgent(wx, wy, agentPickRadius/g.camera.Zoom)
		g.selected = g.world.Agents().Handle(i)
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		i := g.world.NearestServer(wx, wy, serverPickRadius/g.camera.Zoom)
		if i == store.Invalid {
			g.world.ClearTargetLock()
			return
		}
		if cur, ok := g.world.TargetLock(); ok && cur == i {
			g.world.ClearTargetLock()
			return
		}
		g.world.SetTargetLock(i)
	}

	if rl.IsKeyPressed(rl.KeyC) {
		g.world.ClearTargetLock()
		g.selected = store.NoHandle
	}
}
