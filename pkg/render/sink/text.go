package sink

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/camera"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/canvas"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// CellAspect is the width of a terminal cell divided by its height.
const CellAspect = 0.5

// faintOpacity is the label opacity below which text is drawn faint.
const faintOpacity = 0.5

type TextOption func(*textRenderer)

type textRenderer struct {
	scene  sceneConfig
	canvas *canvas.Canvas
}

// WithTextCamera sets the view.
func WithTextCamera(c camera.Camera) TextOption { return func(r *textRenderer) { r.scene.cam = c } }

// WithTextAxes toggles the axes helper.
func WithTextAxes(show bool) TextOption { return func(r *textRenderer) { r.scene.axes = show } }

// WithCanvas draws into an existing canvas instead of allocating one. The
// canvas is cleared first.
func WithCanvas(c *canvas.Canvas) TextOption { return func(r *textRenderer) { r.canvas = c } }

// RenderText draws f onto a width x height character canvas.
func RenderText(f playback.Frame, width, height int, opts ...TextOption) *canvas.Canvas {
	r := textRenderer{scene: defaultScene()}
	for _, opt := range opts {
		opt(&r)
	}
	c := r.canvas
	if c == nil || c.Width() != width || c.Height() != height {
		c = canvas.New(width, height)
	} else {
		c.Clear()
	}

	pr := r.scene.cam.Projector(camera.Viewport{Width: float64(width), Height: float64(height), PixelAspect: CellAspect})
	for _, p := range r.scene.build(f, pr) {
		switch p.kind {
		case primAxis:
			c.LineF(p.pts[0].X, p.pts[0].Y, p.pts[1].X, p.pts[1].Y, canvas.Axis)
		case primOrigin:
			c.Set(cell(p.pts[0].X), cell(p.pts[0].Y), '+', canvas.Origin)
		case primShaft:
			c.LineF(p.pts[0].X, p.pts[0].Y, p.pts[1].X, p.pts[1].Y, categoryClass(p.cat))
		case primHead:
			c.Set(cell(p.pts[0].X), cell(p.pts[0].Y), '*', categoryClass(p.cat))
		case primLabel:
			class := categoryClass(p.cat)
			if p.opacity < faintOpacity {
				class = canvas.Faint
			}
			c.Text(cell(p.pts[0].X), cell(p.pts[0].Y), p.text, class)
		}
	}
	return c
}

// cell rounds a projected coordinate. Values the grid cannot hold map to -1.
func cell(v float64) int {
	if math.IsNaN(v) || math.Abs(v) > 1e6 {
		return -1
	}
	return int(math.Round(v))
}

func categoryClass(c trajectory.Category) canvas.Class {
	if c == trajectory.Input {
		return canvas.Input
	}
	return canvas.Output
}

// TextStyles is the terminal palette for [canvas.Canvas.Styled].
func TextStyles() map[canvas.Class]lipgloss.Style {
	return map[canvas.Class]lipgloss.Style{
		canvas.Axis:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		canvas.Origin: lipgloss.NewStyle().Foreground(lipgloss.Color(render.OriginColor)).Bold(true),
		canvas.Input:  lipgloss.NewStyle().Foreground(lipgloss.Color(render.InputColor)),
		canvas.Output: lipgloss.NewStyle().Foreground(lipgloss.Color(render.OutputColor)),
		canvas.Text:   lipgloss.NewStyle().Bold(true),
		canvas.Faint:  lipgloss.NewStyle().Faint(true),
	}
}
