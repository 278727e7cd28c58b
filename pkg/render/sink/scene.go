package sink

import (
	"cmp"
	"math"
	"slices"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/camera"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

const (
	// DefaultAxisLength matches a two-unit axes helper.
	DefaultAxisLength = 2.0
	// DefaultLabelLift is how far labels float above their anchor.
	DefaultLabelLift = 0.2

	maxHeadLength = 0.15
	headRatio     = 0.1
	headWidth     = 0.4
)

type primKind int

const (
	primAxis primKind = iota
	primShaft
	primHead
	primLabel
	primOrigin
)

// prim is one projected primitive.
type prim struct {
	kind    primKind
	color   string
	pts     []camera.Point
	depth   float64
	text    string
	size    float64
	opacity float64
	growing bool
	cat     trajectory.Category
}

// sceneConfig is shared by the SVG and text renderers.
type sceneConfig struct {
	cam       camera.Camera
	axes      bool
	axisLen   float64
	labelLift float64
	fontSize  float64
}

func defaultScene() sceneConfig {
	return sceneConfig{
		cam:       camera.Default(),
		axes:      true,
		axisLen:   DefaultAxisLength,
		labelLift: DefaultLabelLift,
		fontSize:  trajectory.DefaultFontSize,
	}
}

// ArrowHead returns the base center of the head on seg and its length and
// half width in model units. ok is false for zero-length segments.
func ArrowHead(seg trajectory.Segment) (base trajectory.Vec3, length, halfWidth float64, ok bool) {
	d := seg.End.Sub(seg.Start)
	l := d.Length()
	if l == 0 {
		return trajectory.Vec3{}, 0, 0, false
	}
	length = min(l*headRatio, maxHeadLength)
	base = seg.End.Sub(d.Scale(length / l))
	return base, length, length * headWidth / 2, true
}

// build projects the frame into primitives sorted far-to-near.
func (s sceneConfig) build(f playback.Frame, pr camera.Projector) []prim {
	var prims []prim
	add := func(p prim) {
		for _, pt := range p.pts {
			if !pt.Visible {
				return
			}
		}
		prims = append(prims, p)
	}

	if s.axes {
		o := pr.Project(trajectory.Origin)
		for _, ax := range []struct {
			dir   trajectory.Vec3
			color string
		}{
			{trajectory.Vec3{X: s.axisLen}, render.AxisXColor},
			{trajectory.Vec3{Y: s.axisLen}, render.AxisYColor},
			{trajectory.Vec3{Z: s.axisLen}, render.AxisZColor},
		} {
			e := pr.Project(ax.dir)
			add(prim{kind: primAxis, color: ax.color, pts: []camera.Point{o, e}, depth: (o.Depth + e.Depth) / 2})
		}
		add(prim{kind: primOrigin, color: render.OriginColor, pts: []camera.Point{o}, depth: o.Depth})
	}

	for _, seg := range f.Segments {
		color := render.CategoryColor(seg.Category)
		base, length, half, ok := ArrowHead(seg.Segment)
		if !ok {
			continue
		}
		a, b := pr.Project(seg.Start), pr.Project(base)
		add(prim{kind: primShaft, color: color, pts: []camera.Point{a, b}, depth: (a.Depth + b.Depth) / 2, growing: seg.Growing, cat: seg.Category})

		tip := pr.Project(seg.End)
		bp := pr.Project(base)
		if !tip.Visible || !bp.Visible {
			continue
		}
		// Head width is measured against the head length on screen.
		hl := math.Hypot(tip.X-bp.X, tip.Y-bp.Y)
		if hl == 0 {
			continue
		}
		w := hl * half / length
		nx, ny := -(tip.Y-bp.Y)/hl, (tip.X-bp.X)/hl
		l := camera.Point{X: bp.X + nx*w, Y: bp.Y + ny*w, Depth: bp.Depth, Visible: true}
		r := camera.Point{X: bp.X - nx*w, Y: bp.Y - ny*w, Depth: bp.Depth, Visible: true}
		add(prim{kind: primHead, color: color, pts: []camera.Point{tip, l, r}, depth: tip.Depth, growing: seg.Growing, cat: seg.Category})
	}

	for _, lbl := range f.Labels {
		if lbl.Opacity <= 0 || lbl.Scale <= 0 {
			continue
		}
		p := pr.Project(lbl.Position.Add(trajectory.Vec3{Y: s.labelLift}))
		add(prim{
			kind:    primLabel,
			color:   render.CategoryColor(lbl.Category),
			pts:     []camera.Point{p},
			depth:   p.Depth,
			text:    lbl.Text,
			size:    s.fontSize * lbl.Scale * pr.PixelsPerUnit(p.Depth),
			opacity: lbl.Opacity,
			cat:     lbl.Category,
		})
	}

	slices.SortStableFunc(prims, func(a, b prim) int {
		return cmp.Compare(b.depth, a.depth)
	})
	return prims
}
