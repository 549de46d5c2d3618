package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard and mouse input for the graphical mode.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Speed control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.speed > 1 {
		g.speed--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.speed < 10 {
		g.speed++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.panel.Toggle()
	}

	// Overlay toggles consume the key queue
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		g.overlays.HandleKeyPress(key)
	}

	g.handleCamera()
	g.handleSelection()
}

// handleCamera processes pan, zoom and reset.
func (g *Game) handleCamera() {
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		g.cam.Pan(-delta.X, -delta.Y)
	}

	const panSpeed = 12
	if rl.IsKeyDown(rl.KeyLeft) {
		g.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		g.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.cam.Pan(0, -panSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.cam.Pan(0, panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		if wheel > 0 {
			g.cam.ZoomBy(1.1)
		} else {
			g.cam.ZoomBy(1 / 1.1)
		}
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.cam.Reset()
	}
}

// handleResize propagates window size changes to the camera and panels.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	g.cam.Resize(float32(w), float32(h))
	g.inspector.SetPosition(w-230, 10)
	g.perfPanel.SetPosition(w-230, 220)
}
