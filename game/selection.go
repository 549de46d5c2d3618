package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// handleSelection picks the agent under the cursor on left click, or clears
// the selection when clicking empty space.
func (g *Game) handleSelection() {
	if !rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		return
	}

	mouse := rl.GetMousePosition()
	if g.panel.IsVisible() && mouse.X < 240 {
		// Left edge belongs to the control panel.
		return
	}

	wx, wy := g.cam.ScreenToWorld(mouse.X, mouse.Y)
	click := r2.Vec{X: float64(wx), Y: float64(wy)}

	pickRadius := 2 * g.cfg.Blob.Radius
	bestDistSq := pickRadius * pickRadius
	best := int32(-1)

	for i, e := range g.entities {
		pos := g.posMap.Get(e)
		d := r2.Sub(pos.Vec, click)
		if distSq := r2.Dot(d, d); distSq < bestDistSq {
			bestDistSq = distSq
			best = int32(i)
		}
	}

	g.selected = best
}
