// Package camera projects model space onto a 2D viewport.
//
// The camera orbits a target point. Azimuth turns around the world Y axis
// and Polar is measured from +Y, so the default camera at (5, 5, 5) looks
// down at the origin from above the first octant. Polar is clamped to
// [MinPolar, MaxPolar] so the view never flips over the poles.
package camera

import (
	"math"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// Defaults for a scene whose vectors span a few units around the origin.
const (
	DefaultFOV  = 50.0
	MinPolar    = 10 * math.Pi / 180
	MaxPolar    = 170 * math.Pi / 180
	MinDistance = 1.0
	MaxDistance = 100.0
	Near        = 0.1
)

var up = trajectory.Vec3{Y: 1}

// Camera is a perspective orbit camera. FOV is the vertical field of view in
// degrees.
type Camera struct {
	Target   trajectory.Vec3
	Distance float64
	Azimuth  float64
	Polar    float64
	FOV      float64
}

// Default returns the camera at (5, 5, 5) looking at the origin.
func Default() Camera {
	return LookFrom(trajectory.Vec3{X: 5, Y: 5, Z: 5}, trajectory.Origin)
}

// LookFrom returns a camera placed at eye looking at target.
func LookFrom(eye, target trajectory.Vec3) Camera {
	d := eye.Sub(target)
	dist := d.Length()
	c := Camera{Target: target, Distance: dist, FOV: DefaultFOV}
	if dist == 0 {
		c.Distance = MinDistance
		c.Polar = math.Pi / 2
		return c
	}
	c.Polar = math.Acos(d.Y / dist)
	c.Azimuth = math.Atan2(d.X, d.Z)
	c.clamp()
	return c
}

// Position returns the eye point.
func (c Camera) Position() trajectory.Vec3 {
	s := math.Sin(c.Polar)
	return c.Target.Add(trajectory.Vec3{
		X: c.Distance * s * math.Sin(c.Azimuth),
		Y: c.Distance * math.Cos(c.Polar),
		Z: c.Distance * s * math.Cos(c.Azimuth),
	})
}

// Orbit rotates the camera by the given angles in radians.
func (c *Camera) Orbit(dAzimuth, dPolar float64) {
	c.Azimuth = math.Mod(c.Azimuth+dAzimuth, 2*math.Pi)
	c.Polar += dPolar
	c.clamp()
}

// Zoom multiplies the distance by factor. Factors below 1 move closer.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	c.Distance *= factor
	c.clamp()
}

func (c *Camera) clamp() {
	c.Polar = min(max(c.Polar, MinPolar), MaxPolar)
	c.Distance = min(max(c.Distance, MinDistance), MaxDistance)
	if c.FOV <= 0 || c.FOV >= 180 {
		c.FOV = DefaultFOV
	}
}

// Viewport is the drawing surface. PixelAspect is the width of one pixel
// divided by its height: 1 for SVG, about 0.5 for terminal cells.
type Viewport struct {
	Width       float64
	Height      float64
	PixelAspect float64
}

// Point is a projected position. Depth is the distance along the view
// direction; larger is farther. Visible is false behind the near plane.
type Point struct {
	X, Y    float64
	Depth   float64
	Visible bool
}

// basis returns the camera's right, up and forward unit vectors.
func (c Camera) basis() (right, camUp, forward trajectory.Vec3) {
	forward = c.Target.Sub(c.Position()).Normalize()
	right = forward.Cross(up).Normalize()
	if right.IsZero() {
		right = trajectory.Vec3{X: 1}
	}
	camUp = right.Cross(forward)
	return right, camUp, forward
}

// Projector projects many points with a fixed camera and viewport.
type Projector struct {
	eye                   trajectory.Vec3
	right, camUp, forward trajectory.Vec3
	focal, aspect         float64
	width, height         float64
}

// Projector precomputes the view basis for vp.
func (c Camera) Projector(vp Viewport) Projector {
	if vp.PixelAspect <= 0 {
		vp.PixelAspect = 1
	}
	r, u, f := c.basis()
	aspect := 1.0
	if vp.Height > 0 {
		aspect = vp.Width * vp.PixelAspect / vp.Height
	}
	return Projector{
		eye:     c.Position(),
		right:   r,
		camUp:   u,
		forward: f,
		focal:   1 / math.Tan(c.FOV*math.Pi/360),
		aspect:  aspect,
		width:   vp.Width,
		height:  vp.Height,
	}
}

// Project maps p to viewport coordinates with the origin at the top left.
func (pr Projector) Project(p trajectory.Vec3) Point {
	d := p.Sub(pr.eye)
	x, y, z := d.Dot(pr.right), d.Dot(pr.camUp), d.Dot(pr.forward)
	if z < Near {
		return Point{Depth: z}
	}
	ndcX := x / z * pr.focal / pr.aspect
	ndcY := y / z * pr.focal
	return Point{
		X:       (ndcX + 1) / 2 * pr.width,
		Y:       (1 - ndcY) / 2 * pr.height,
		Depth:   z,
		Visible: true,
	}
}

// PixelsPerUnit returns how many viewport pixels one model unit spans
// vertically at the given depth.
func (pr Projector) PixelsPerUnit(depth float64) float64 {
	if depth < Near {
		return 0
	}
	return pr.focal / depth * pr.height / 2
}

// Project is a convenience for a single point.
func (c Camera) Project(p trajectory.Vec3, vp Viewport) Point {
	return c.Projector(vp).Project(p)
}
