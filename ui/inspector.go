package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// InspectorData holds the display values for one selected agent.
type InspectorData struct {
	ID          uint32
	Container   string
	Weight      float64
	TargetArea  float64
	CurrentArea float64
	Pressure    float64
	Speed       float64
	Settled     bool
	SettledFor  int32
	InTransit   bool
	Vertices    int
	Fallback    bool
}

// InspectorPanel renders the selected-agent panel.
type InspectorPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspectorPanel creates an inspector panel.
func NewInspectorPanel(x, y, width int32) *InspectorPanel {
	return &InspectorPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *InspectorPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel for the given agent.
func (p *InspectorPanel) Draw(data InspectorData) {
	r := p.renderer
	padding := r.Theme.Padding
	width := p.width

	height := r.Theme.LineHeight*10 + padding*4
	r.DrawPanel(p.x, p.y, width, height)

	x := p.x + padding
	y := p.y + padding

	rl.DrawText(fmt.Sprintf("Agent %d", data.ID), x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	y = r.DrawLabelValue(x, y, "Home", data.Container)
	y = r.DrawLabelValue(x, y, "Weight", fmt.Sprintf("%.2f", data.Weight))
	y = r.DrawLabelValue(x, y, "Area", fmt.Sprintf("%.0f / %.0f", data.CurrentArea, data.TargetArea))
	y = r.DrawCenteredBar(x, y, "Pressure", float32(data.Pressure), 1.0, 1.0, width-padding*2)
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%.2f", data.Speed))

	status := "moving"
	switch {
	case data.Settled:
		status = "settled"
	case data.InTransit:
		status = "in transit"
	}
	y = r.DrawLabelValue(x, y, "Status", status)

	cell := fmt.Sprintf("%d verts", data.Vertices)
	if data.Fallback {
		cell = "fallback"
	}
	r.DrawLabelValue(x, y, "Cell", cell)
}
