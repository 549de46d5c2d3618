// Wall force field preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/wallpreview
package main

import (
	"fmt"
	"image/color"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/systems"
	"github.com/anka-dev/membrane/world"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30

	// worldSize is the square world region sampled into the preview.
	worldSize = 640
)

// FieldParams holds the wall interaction parameters under preview.
type FieldParams struct {
	WallRange     float32
	WallPush      float32
	ContactMargin float32
	OpenSide      int // 0..3 maps to world.Side, 4 = none
}

var sideLabels = [...]string{"top", "bottom", "left", "right", "none"}

func defaultParams() FieldParams {
	return FieldParams{
		WallRange:     60,
		WallPush:      2.0,
		ContactMargin: 15,
		OpenSide:      4,
	}
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Wall Force Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()

	gridSize := 256
	fieldGrid := make([]float32, gridSize*gridSize)
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	container := buildContainer(params)
	walls := container.AppendWalls(nil)
	generateField(fieldGrid, gridSize, walls, params)
	updateTexture(texture, fieldGrid, gridSize)

	needsRegen := false

	for !rl.WindowShouldClose() {
		if needsRegen {
			container = buildContainer(params)
			walls = container.AppendWalls(walls[:0])
			generateField(fieldGrid, gridSize, walls, params)
			updateTexture(texture, fieldGrid, gridSize)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(gridSize), Height: float32(gridSize)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)
		drawWalls(walls)
		drawMargin(container, params)

		// Field stats
		var minVal, maxVal float32 = 1, 0
		for _, v := range fieldGrid {
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Force magnitude min: %.3f  max: %.3f (of wall_push)", minVal, maxVal),
			15, statsY, 16, rl.DarkGray)
		rl.DrawText("Red line: hard contact margin for blocking walls", 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Wall Force Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Range slider
		rl.DrawText("wall_range (sensing distance)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newRange := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"10", "150",
			params.WallRange, 10, 150,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.WallRange), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newRange != params.WallRange {
			params.WallRange = newRange
			needsRegen = true
		}
		panelY += 35

		// Push slider
		rl.DrawText("wall_push (peak soft force)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newPush := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.5", "4.0",
			params.WallPush, 0.5, 4.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.WallPush), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newPush != params.WallPush {
			params.WallPush = newPush
			needsRegen = true
		}
		panelY += 35

		// Margin slider
		rl.DrawText("contact_margin (hard constraint)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newMargin := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"5", "40",
			params.ContactMargin, 5, 40,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.ContactMargin), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newMargin != params.ContactMargin {
			params.ContactMargin = newMargin
		}
		panelY += 45

		// Open side cycles through top/bottom/left/right/none. An opening has
		// no segment, so the field shows the gap agents pour through.
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 250, Height: 30},
			fmt.Sprintf("Open side: %s", sideLabels[params.OpenSide])) {
			params.OpenSide = (params.OpenSide + 1) % 5
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			needsRegen = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yamlLines := []string{
			"physics:",
			fmt.Sprintf("  wall_range: %.1f", params.WallRange),
			fmt.Sprintf("  wall_push: %.2f", params.WallPush),
			fmt.Sprintf("  contact_margin: %.1f", params.ContactMargin),
		}
		for _, line := range yamlLines {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		if rl.IsKeyPressed(rl.KeyC) {
			yaml := fmt.Sprintf(`physics:
  wall_range: %.1f
  wall_push: %.2f
  contact_margin: %.1f`,
				params.WallRange, params.WallPush, params.ContactMargin)
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

// buildContainer places a preview container inset from the sampled region so
// the field outside its walls is visible too.
func buildContainer(params FieldParams) *world.Container {
	c := world.NewContainer("preview", orb.Bound{
		Min: orb.Point{worldSize * 0.2, worldSize * 0.2},
		Max: orb.Point{worldSize * 0.8, worldSize * 0.8},
	})
	if params.OpenSide < 4 {
		c.Open = world.Side(params.OpenSide)
	}
	return c
}

// generateField samples the soft wall force magnitude over the world region,
// normalized by the peak push so the gradient is comparable across settings.
func generateField(grid []float32, size int, walls []systems.Wall, params FieldParams) {
	p := &systems.ForceParams{
		WallRange: float64(params.WallRange),
		WallPush:  float64(params.WallPush),
	}
	// Corners sum two walls, so normalize against twice the peak.
	norm := 2 * float64(params.WallPush)

	for y := 0; y < size; y++ {
		wy := (float64(y) + 0.5) / float64(size) * worldSize
		for x := 0; x < size; x++ {
			wx := (float64(x) + 0.5) / float64(size) * worldSize
			force := systems.WallForce(r2.Vec{X: wx, Y: wy}, walls, p)
			grid[y*size+x] = clamp01(float32(r2.Norm(force) / norm))
		}
	}
}

// previewPoint maps a world coordinate into the preview rectangle.
func previewPoint(v r2.Vec) rl.Vector2 {
	return rl.Vector2{
		X: 10 + float32(v.X/worldSize)*previewSize,
		Y: 10 + float32(v.Y/worldSize)*previewSize,
	}
}

func drawWalls(walls []systems.Wall) {
	for _, w := range walls {
		rl.DrawLineEx(previewPoint(w.Start), previewPoint(w.End), 2, rl.White)
	}
}

// drawMargin traces the hard-contact distance inside each wall.
func drawMargin(c *world.Container, params FieldParams) {
	m := float64(params.ContactMargin)
	b := c.Bounds
	inset := [4]r2.Vec{
		{X: b.Min.X() + m, Y: b.Min.Y() + m},
		{X: b.Max.X() - m, Y: b.Min.Y() + m},
		{X: b.Max.X() - m, Y: b.Max.Y() - m},
		{X: b.Min.X() + m, Y: b.Max.Y() - m},
	}
	for i := range inset {
		a := previewPoint(inset[i])
		bb := previewPoint(inset[(i+1)%4])
		rl.DrawLineV(a, bb, rl.Red)
	}
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// updateTexture updates the GPU texture from the grid values.
func updateTexture(texture rl.Texture2D, grid []float32, size int) {
	pixels := make([]color.RGBA, size*size)
	for i, v := range grid {
		// Color gradient: dark blue -> cyan -> yellow -> white
		var r, g, b uint8
		if v < 0.25 {
			t := v / 0.25
			r = uint8(10 + t*30)
			g = uint8(20 + t*60)
			b = uint8(60 + t*100)
		} else if v < 0.5 {
			t := (v - 0.25) / 0.25
			r = uint8(40 + t*20)
			g = uint8(80 + t*120)
			b = uint8(160 + t*40)
		} else if v < 0.75 {
			t := (v - 0.5) / 0.25
			r = uint8(60 + t*140)
			g = uint8(200 - t*40)
			b = uint8(200 - t*150)
		} else {
			t := (v - 0.75) / 0.25
			r = uint8(200 + t*55)
			g = uint8(160 + t*95)
			b = uint8(50 + t*205)
		}
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}
