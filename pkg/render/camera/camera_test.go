package camera

import (
	"math"
	"testing"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDefaultPosition(t *testing.T) {
	c := Default()
	p := c.Position()
	if !near(p.X, 5) || !near(p.Y, 5) || !near(p.Z, 5) {
		t.Errorf("Position() = %v, want (5, 5, 5)", p)
	}
	if !near(c.Distance, math.Sqrt(75)) {
		t.Errorf("Distance = %v, want sqrt(75)", c.Distance)
	}
	if c.FOV != DefaultFOV {
		t.Errorf("FOV = %v, want %v", c.FOV, DefaultFOV)
	}
}

func TestProjectOrientation(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}
	pr := Default().Projector(vp)

	center := pr.Project(trajectory.Origin)
	if !center.Visible || !near(center.X, 400) || !near(center.Y, 300) {
		t.Fatalf("origin projects to %+v, want viewport center", center)
	}

	tests := []struct {
		name  string
		p     trajectory.Vec3
		check func(Point) bool
	}{
		{"up is up", trajectory.Vec3{Y: 1}, func(p Point) bool { return p.Y < center.Y && near(p.X, center.X) }},
		{"right is right", trajectory.Vec3{X: 1, Z: -1}, func(p Point) bool { return p.X > center.X }},
		{"toward camera is nearer", trajectory.Vec3{X: 1, Y: 1, Z: 1}, func(p Point) bool { return p.Depth < center.Depth }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pr.Project(tt.p)
			if !got.Visible || !tt.check(got) {
				t.Errorf("Project(%v) = %+v", tt.p, got)
			}
		})
	}
}

func TestProjectBehindCamera(t *testing.T) {
	got := Default().Project(trajectory.Vec3{X: 10, Y: 10, Z: 10}, Viewport{Width: 100, Height: 100})
	if got.Visible {
		t.Errorf("point behind the camera reported visible: %+v", got)
	}
}

func TestPixelAspect(t *testing.T) {
	c := Default()
	p := trajectory.Vec3{X: 1, Z: -1}
	square := c.Project(p, Viewport{Width: 100, Height: 100, PixelAspect: 1})
	cells := c.Project(p, Viewport{Width: 100, Height: 100, PixelAspect: 0.5})
	// Narrow cells need twice the columns for the same horizontal extent.
	if !near(cells.X-50, 2*(square.X-50)) {
		t.Errorf("cell offset = %v, square offset = %v", cells.X-50, square.X-50)
	}
}

func TestOrbitClampsPolar(t *testing.T) {
	c := Default()
	c.Orbit(0, -10)
	if c.Polar != MinPolar {
		t.Errorf("Polar = %v, want %v", c.Polar, MinPolar)
	}
	c.Orbit(0, 10)
	if c.Polar != MaxPolar {
		t.Errorf("Polar = %v, want %v", c.Polar, MaxPolar)
	}
}

func TestOrbitKeepsDistance(t *testing.T) {
	c := Default()
	c.Orbit(1.3, 0.2)
	if got := c.Position().Sub(c.Target).Length(); !near(got, c.Distance) {
		t.Errorf("eye distance = %v, want %v", got, c.Distance)
	}
}

func TestZoom(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		want   float64
	}{
		{"closer", 0.5, math.Sqrt(75) * 0.5},
		{"clamped near", 0.001, MinDistance},
		{"clamped far", 1000, MaxDistance},
		{"ignored zero", 0, math.Sqrt(75)},
		{"ignored nan", math.NaN(), math.Sqrt(75)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			c.Zoom(tt.factor)
			if !near(c.Distance, tt.want) {
				t.Errorf("Distance = %v, want %v", c.Distance, tt.want)
			}
		})
	}
}

func TestLookFromDegenerate(t *testing.T) {
	c := LookFrom(trajectory.Origin, trajectory.Origin)
	if c.Distance != MinDistance {
		t.Errorf("Distance = %v, want %v", c.Distance, MinDistance)
	}
	if got := c.Project(trajectory.Vec3{Z: -5}, Viewport{Width: 10, Height: 10}); math.IsNaN(got.X) {
		t.Errorf("projection produced NaN")
	}
}
