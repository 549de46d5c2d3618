package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Tick         int32
	Speed        int
	FPS          int32
	Paused       bool
	Population   int
	Settled      int
	InTransit    int
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Agents: %d | Settled: %d | In transit: %d",
			data.Population, data.Settled, data.InTransit),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PhaseTiming is one row of the perf panel.
type PhaseTiming struct {
	Name string
	Avg  time.Duration
	Pct  float64
}

// PerfPanelData holds phase timing metrics for display.
type PerfPanelData struct {
	AvgTick        time.Duration
	TicksPerSecond float64
	Phases         []PhaseTiming
}

// PerfPanel renders the phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData) {
	x := p.x
	y := p.y

	rl.DrawText("Phase Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(
		fmt.Sprintf("Tick: %s (%.0f/s)", data.AvgTick.Round(time.Microsecond), data.TicksPerSecond),
		x, y, 14, rl.Yellow,
	)
	y += 16

	for _, phase := range data.Phases {
		color := rl.LightGray
		if phase.Pct > 40 {
			color = rl.Red
		} else if phase.Pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-14s %8s %5.1f%%", phase.Name, phase.Avg.Round(time.Microsecond), phase.Pct),
			x, y, 12, color,
		)
		y += 14
	}
}
