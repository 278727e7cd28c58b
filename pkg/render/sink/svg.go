package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/camera"
)

// Default SVG canvas size in pixels.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scene         sceneConfig
	width, height float64
	background    string
	hud           bool
}

// WithCamera sets the view. The default camera sits at (5, 5, 5).
func WithCamera(c camera.Camera) SVGOption { return func(r *svgRenderer) { r.scene.cam = c } }

// WithSize sets the canvas size in pixels.
func WithSize(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

// WithoutAxes hides the axes helper and origin marker.
func WithoutAxes() SVGOption { return func(r *svgRenderer) { r.scene.axes = false } }

// WithBackground sets the fill behind the scene. Empty means transparent.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithHUD prints the playback state in the bottom-left corner.
func WithHUD() SVGOption { return func(r *svgRenderer) { r.hud = true } }

// WithFontSize sets the label font size in model units.
func WithFontSize(size float64) SVGOption {
	return func(r *svgRenderer) {
		if size > 0 {
			r.scene.fontSize = size
		}
	}
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		scene:      defaultScene(),
		width:      DefaultWidth,
		height:     DefaultHeight,
		background: render.BackgroundColor,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.width <= 0 {
		r.width = DefaultWidth
	}
	if r.height <= 0 {
		r.height = DefaultHeight
	}
	return r
}

// RenderSVG draws f as a standalone SVG document.
func RenderSVG(f playback.Frame, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	pr := r.scene.cam.Projector(camera.Viewport{Width: r.width, Height: r.height, PixelAspect: 1})
	prims := r.scene.build(f, pr)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)
	buf.WriteString(`  <style>text { font-family: ui-monospace, Menlo, monospace; text-anchor: middle; dominant-baseline: middle; }</style>` + "\n")
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}

	for _, p := range prims {
		renderPrim(&buf, p)
	}
	if r.hud {
		renderHUD(&buf, f, r.height)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderPrim(buf *bytes.Buffer, p prim) {
	switch p.kind {
	case primAxis:
		fmt.Fprintf(buf, `  <line class="axis" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1" opacity="0.6"/>`+"\n",
			p.pts[0].X, p.pts[0].Y, p.pts[1].X, p.pts[1].Y, p.color)
	case primOrigin:
		fmt.Fprintf(buf, `  <circle class="origin" cx="%.2f" cy="%.2f" r="3" fill="%s"/>`+"\n", p.pts[0].X, p.pts[0].Y, p.color)
	case primShaft:
		fmt.Fprintf(buf, `  <line class="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="2"/>`+"\n",
			segClass(p), p.pts[0].X, p.pts[0].Y, p.pts[1].X, p.pts[1].Y, p.color)
	case primHead:
		fmt.Fprintf(buf, `  <polygon class="%s head" points="%.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="%s"/>`+"\n",
			segClass(p), p.pts[0].X, p.pts[0].Y, p.pts[1].X, p.pts[1].Y, p.pts[2].X, p.pts[2].Y, p.color)
	case primLabel:
		fmt.Fprintf(buf, `  <text class="label %s" x="%.2f" y="%.2f" font-size="%.2f" fill="%s" opacity="%.3f">`,
			p.cat, p.pts[0].X, p.pts[0].Y, p.size, p.color, p.opacity)
		xml.EscapeText(buf, []byte(p.text))
		buf.WriteString("</text>\n")
	}
}

func segClass(p prim) string {
	if p.growing {
		return "segment " + p.cat.String() + " growing"
	}
	return "segment " + p.cat.String()
}

func renderHUD(buf *bytes.Buffer, f playback.Frame, height float64) {
	st := f.State
	fmt.Fprintf(buf, `  <text class="hud" x="12" y="%.2f" font-size="12" fill="#aaaaaa" style="text-anchor: start">`, height-14)
	fmt.Fprintf(buf, "%d/%d %s %.0f%% %gx", st.VisibleOutputCount, f.Total, st.Phase, st.Progress*100, st.Speed)
	buf.WriteString("</text>\n")
}
