package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/systems"
	"github.com/anka-dev/membrane/telemetry"
	"github.com/anka-dev/membrane/ui"
	"github.com/anka-dev/membrane/world"
)

var backgroundColor = rl.Color{R: 12, G: 14, B: 18, A: 255}

// Draw renders the simulation and UI.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	g.drawContainers()
	g.drawCells()
	g.drawBlobs()
	if g.overlays.IsEnabled(ui.OverlayTargets) {
		g.drawTargets()
	}
	g.drawSelectionHighlight()
	g.drawUI()

	rl.EndDrawing()
	g.perfCollector.RecordFrame()
}

// screenVec converts a world vector to screen coordinates.
func (g *Game) screenVec(v r2.Vec) rl.Vector2 {
	sx, sy := g.cam.WorldToScreen(float32(v.X), float32(v.Y))
	return rl.Vector2{X: sx, Y: sy}
}

// polarityColor maps wall polarity to its display color.
func polarityColor(p systems.Polarity) rl.Color {
	switch p {
	case systems.PolarityPermeable:
		return rl.Color{R: 90, G: 190, B: 110, A: 255}
	case systems.PolarityInward:
		return rl.Color{R: 90, G: 140, B: 230, A: 255}
	case systems.PolarityOutward:
		return rl.Color{R: 230, G: 150, B: 70, A: 255}
	default:
		return rl.Color{R: 120, G: 120, B: 130, A: 255}
	}
}

// drawContainers draws wall segments colored by polarity plus name labels.
func (g *Game) drawContainers() {
	for _, w := range g.scene.Walls() {
		start := g.screenVec(w.Start)
		end := g.screenVec(w.End)
		rl.DrawLineEx(start, end, 2, polarityColor(w.Polarity))
	}

	for _, c := range g.scene.Containers {
		label := g.screenVec(r2.Vec{X: c.Bounds.Min.X(), Y: c.Bounds.Min.Y() - 18})
		rl.DrawText(c.Name, int32(label.X), int32(label.Y), 14, rl.Gray)
	}
}

// blobColor picks the agent tint from the active color overlay.
func (g *Game) blobColor(pressure, weight float64) rl.Color {
	switch {
	case g.overlays.IsEnabled(ui.OverlayPressureColors):
		// 0.5 .. 1.5 maps blue (roomy) to red (compressed).
		t := clamp01f((pressure - 0.5) / 1.0)
		return rl.Color{
			R: uint8(60 + t*180),
			G: uint8(100 - t*40),
			B: uint8(220 - t*160),
			A: 255,
		}
	case g.overlays.IsEnabled(ui.OverlayWeightColors):
		t := clamp01f(weight / 3.0)
		return rl.Color{
			R: uint8(60 + t*180),
			G: uint8(180 - t*60),
			B: 120,
			A: 255,
		}
	default:
		return rl.Color{R: 120, G: 170, B: 200, A: 255}
	}
}

// drawCells renders the claimed polygons, filled and/or outlined.
func (g *Game) drawCells() {
	fill := g.overlays.IsEnabled(ui.OverlayCellFill)
	outline := g.overlays.IsEnabled(ui.OverlayCellOutlines)
	if !fill && !outline {
		return
	}

	cullRadius := float32(g.tessParams.InfluenceRadius())

	for _, e := range g.entities {
		pos, _, claim, cell, _, _ := g.blobMapper.Get(e)
		if len(cell.Polygon) < 3 {
			continue
		}
		if !g.cam.IsVisible(float32(pos.X), float32(pos.Y), cullRadius) {
			continue
		}

		color := g.blobColor(claim.Pressure, claim.Weight)

		if fill {
			// Triangle fans want counter-clockwise screen winding; the
			// polygons wind the other way under y-down, so reverse.
			g.fan = g.fan[:0]
			for i := len(cell.Polygon) - 1; i >= 0; i-- {
				g.fan = append(g.fan, g.screenVec(cell.Polygon[i]))
			}
			fillColor := color
			fillColor.A = 90
			if cell.Fallback {
				fillColor.A = 40
			}
			rl.DrawTriangleFan(g.fan, fillColor)
		}

		if outline {
			prev := g.screenVec(cell.Polygon[len(cell.Polygon)-1])
			for _, v := range cell.Polygon {
				cur := g.screenVec(v)
				rl.DrawLineV(prev, cur, color)
				prev = cur
			}
		}
	}
}

// drawBlobs renders agent centers and the optional velocity overlay.
func (g *Game) drawBlobs() {
	velocity := g.overlays.IsEnabled(ui.OverlayVelocity)
	radius := float32(g.cfg.Blob.Radius) * 0.35 * g.cam.Zoom

	for _, e := range g.entities {
		pos, vel, claim, _, blob, _ := g.blobMapper.Get(e)
		if !g.cam.IsVisible(float32(pos.X), float32(pos.Y), 50) {
			continue
		}

		center := g.screenVec(pos.Vec)
		color := g.blobColor(claim.Pressure, claim.Weight)
		if blob.Settled {
			color = rl.Color{R: color.R, G: color.G, B: color.B, A: 160}
		}
		rl.DrawCircleV(center, radius, color)

		if velocity {
			tip := g.screenVec(r2.Add(pos.Vec, r2.Scale(8, vel.Vec)))
			rl.DrawLineV(center, tip, rl.Yellow)
		}
	}
}

// drawTargets marks attractor points and target bounds.
func (g *Game) drawTargets() {
	for _, c := range g.scene.Containers {
		at := g.screenVec(r2.Vec{X: c.Attractor.X(), Y: c.Attractor.Y()})
		rl.DrawCircleLinesV(at, 6, rl.Magenta)
		rl.DrawLineV(
			rl.Vector2{X: at.X - 9, Y: at.Y}, rl.Vector2{X: at.X + 9, Y: at.Y}, rl.Magenta)
		rl.DrawLineV(
			rl.Vector2{X: at.X, Y: at.Y - 9}, rl.Vector2{X: at.X, Y: at.Y + 9}, rl.Magenta)
	}
}

// drawSelectionHighlight rings the selected agent.
func (g *Game) drawSelectionHighlight() {
	if g.selected < 0 || int(g.selected) >= len(g.entities) {
		return
	}
	pos := g.posMap.Get(g.entities[g.selected])
	center := g.screenVec(pos.Vec)
	rl.DrawCircleLinesV(center, float32(g.cfg.Blob.Radius)*g.cam.Zoom+4, rl.White)
}

// drawUI renders the HUD, control panel, inspector and perf panel, and
// applies panel actions.
func (g *Game) drawUI() {
	var settled, inTransit int
	query := g.blobFilter.Query()
	for query.Next() {
		pos, _, _, _, blob, target := query.Get()
		if blob.Settled {
			settled++
		}
		if target.Active && !target.Contains(pos.Vec) {
			inTransit++
		}
	}

	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())

	g.hud.Draw(ui.HUDData{
		Title:        "Membrane",
		Tick:         g.tick,
		Speed:        g.speed,
		FPS:          rl.GetFPS(),
		Paused:       g.paused,
		Population:   len(g.entities),
		Settled:      settled,
		InTransit:    inTransit,
		ScreenWidth:  screenW,
		ScreenHeight: screenH,
	})
	g.hud.DrawControls(screenW, screenH,
		"Space pause | < > speed | Tab panel | F C E W T V X overlays | Click inspect | Right-drag pan | Wheel zoom | R reset view")

	src, _ := g.panel.Selection()
	var polarities [4]string
	if c, err := g.scene.Container(src); err == nil {
		for i, p := range c.Polarities {
			polarities[i] = p.String()
		}
	}

	actions := g.panel.Draw(ui.PanelState{Speed: g.speed, Paused: g.paused, Polarities: polarities})
	g.applyPanelActions(actions)

	if g.selected >= 0 && int(g.selected) < len(g.entities) {
		g.inspector.Draw(g.inspectorData())
	}

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perfPanelData())
	}
}

// applyPanelActions carries panel interactions into the simulation.
func (g *Game) applyPanelActions(actions ui.PanelActions) {
	if actions.TogglePause {
		g.paused = !g.paused
	}
	g.speed = clampInt(actions.Speed, 1, 10)
	if actions.Pour {
		if err := g.Pour(actions.Src, actions.Dst); err != nil {
			Logf("pour failed: %v", err)
		}
	}
	if actions.CyclePolarity {
		if c, err := g.scene.Container(actions.Src); err == nil {
			next := (c.Polarities[actions.WallSide] + 1) % 4
			c.Polarities[actions.WallSide] = next
			Logf("wall %s of %s set to %s",
				world.Side(actions.WallSide), c.Name, next)
		}
	}
	if actions.Seal {
		if err := g.Seal(actions.Src); err != nil {
			Logf("seal failed: %v", err)
		}
		if err := g.Seal(actions.Dst); err != nil {
			Logf("seal failed: %v", err)
		}
	}
}

// inspectorData builds the panel view of the selected agent.
func (g *Game) inspectorData() ui.InspectorData {
	e := g.entities[g.selected]
	pos, vel, claim, cell, blob, target := g.blobMapper.Get(e)

	home := fmt.Sprintf("#%d", blob.Home)
	if c, err := g.scene.Container(int(blob.Home)); err == nil {
		home = c.Name
	}

	return ui.InspectorData{
		ID:          blob.ID,
		Container:   home,
		Weight:      claim.Weight,
		TargetArea:  claim.TargetArea,
		CurrentArea: claim.CurrentArea,
		Pressure:    claim.Pressure,
		Speed:       r2.Norm(vel.Vec),
		Settled:     blob.Settled,
		SettledFor:  blob.SettledFor,
		InTransit:   target.Active && !target.Contains(pos.Vec),
		Vertices:    len(cell.Polygon),
		Fallback:    cell.Fallback,
	}
}

// perfPanelData flattens collector stats into panel rows in phase order.
func (g *Game) perfPanelData() ui.PerfPanelData {
	stats := g.perfCollector.Stats()

	phases := []string{
		telemetry.PhaseWalls,
		telemetry.PhaseSpatialGrid,
		telemetry.PhaseForces,
		telemetry.PhaseCollision,
		telemetry.PhaseTessellation,
		telemetry.PhaseSettle,
		telemetry.PhaseTelemetry,
	}

	data := ui.PerfPanelData{
		AvgTick:        stats.AvgTickDuration,
		TicksPerSecond: stats.TicksPerSecond,
	}
	for _, name := range phases {
		data.Phases = append(data.Phases, ui.PhaseTiming{
			Name: name,
			Avg:  stats.PhaseAvg[name],
			Pct:  stats.PhasePct[name],
		})
	}
	return data
}
