package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// PanelState is the live simulation state the control panel reflects.
// Polarities holds the source container's per-side polarity names in
// top/bottom/left/right order.
type PanelState struct {
	Speed      int
	Paused     bool
	Polarities [4]string
}

// PanelActions carries the interactions the user made this frame. The caller
// applies them; the panel itself never touches simulation state.
type PanelActions struct {
	Pour        bool
	Seal        bool
	Src, Dst    int
	Speed       int
	TogglePause bool

	// CyclePolarity asks for the next polarity on WallSide of Src.
	CyclePolarity bool
	WallSide      int
}

// ControlPanel is the raygui panel for pour gestures, wall polarity edits
// and run control.
type ControlPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	names    []string
	src, dst int
	side     int
}

// NewControlPanel creates the panel over the named containers.
func NewControlPanel(x, y, width int32, containerNames []string) *ControlPanel {
	p := &ControlPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
		names:    containerNames,
	}
	if len(containerNames) > 1 {
		p.dst = 1
	}
	return p
}

// Toggle switches panel visibility.
func (c *ControlPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlPanel) IsVisible() bool {
	return c.visible
}

// Selection returns the current source and destination container indices.
func (c *ControlPanel) Selection() (src, dst int) {
	return c.src, c.dst
}

var panelSideLabels = [4]string{"top", "bottom", "left", "right"}

// Draw renders the panel and returns the actions taken this frame.
func (c *ControlPanel) Draw(state PanelState) PanelActions {
	actions := PanelActions{Speed: state.Speed, Src: c.src, Dst: c.dst, WallSide: c.side}
	if !c.visible || len(c.names) == 0 {
		return actions
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	height := lineHeight*4 + 30*6 + padding*10
	r.DrawPanel(c.x, c.y, c.width, height)

	x := float32(c.x + padding)
	w := float32(c.width - padding*2)
	y := c.y + padding

	rl.DrawText("Pour", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	// Source and destination cycle through the containers.
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: 24},
		fmt.Sprintf("From: %s", c.names[c.src])) {
		c.src = (c.src + 1) % len(c.names)
	}
	y += 28
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: 24},
		fmt.Sprintf("Into: %s", c.names[c.dst])) {
		c.dst = (c.dst + 1) % len(c.names)
	}
	y += 28

	half := (w - 6) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 28}, "Pour") {
		actions.Pour = c.src != c.dst
	}
	if gui.Button(rl.Rectangle{X: x + half + 6, Y: float32(y), Width: half, Height: 28}, "Seal") {
		actions.Seal = true
	}
	y += 32 + padding

	// Per-wall polarity editing on the source container.
	rl.DrawText("Walls", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: 24},
		fmt.Sprintf("Side: %s", panelSideLabels[c.side])) {
		c.side = (c.side + 1) % 4
	}
	y += 28
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: 24},
		fmt.Sprintf("Polarity: %s", state.Polarities[c.side])) {
		actions.CyclePolarity = true
	}
	y += 28 + padding

	rl.DrawText("Run", c.x+padding, y, 16, rl.White)
	y += lineHeight + 2

	speed := gui.SliderBar(
		rl.Rectangle{X: x, Y: float32(y), Width: w - 36, Height: 18},
		"", fmt.Sprintf("%dx", state.Speed),
		float32(state.Speed), 1, 10,
	)
	actions.Speed = int(speed + 0.5)
	y += 24

	pauseLabel := "Pause"
	if state.Paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: 24}, pauseLabel) {
		actions.TogglePause = true
	}

	actions.Src = c.src
	actions.Dst = c.dst
	actions.WallSide = c.side
	return actions
}
