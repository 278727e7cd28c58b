package sink

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/canvas"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func seg(x0, y0, z0, x1, y1, z1 float64, c trajectory.Category) playback.FrameSegment {
	return playback.FrameSegment{Segment: trajectory.Segment{
		Start:    trajectory.Vec3{X: x0, Y: y0, Z: z0},
		End:      trajectory.Vec3{X: x1, Y: y1, Z: z1},
		Category: c,
	}}
}

func label(text string, x, y, z float64, c trajectory.Category) playback.FrameLabel {
	return playback.FrameLabel{
		LabelPlacement: trajectory.LabelPlacement{Text: text, Position: trajectory.Vec3{X: x, Y: y, Z: z}, Category: c},
		Opacity:        1,
		Scale:          1,
	}
}

func testFrame() playback.Frame {
	return playback.Frame{
		Segments: []playback.FrameSegment{
			seg(0, 0, 0, 2, 0, 0, trajectory.Input),
			seg(2, 0, 0, 2, 0, 0, trajectory.Input),
			seg(2, 0, 0, 2, 1, 0, trajectory.Output),
		},
		Labels: []playback.FrameLabel{
			label("I", 1, 0, 0, trajectory.Input),
			label("cats", 2, 0.5, 0, trajectory.Output),
		},
		State: playback.State{VisibleOutputCount: 1, Phase: playback.Idle, Progress: 1, Speed: 1},
		Total: 1,
	}
}

func TestArrowHead(t *testing.T) {
	tests := []struct {
		name      string
		end       trajectory.Vec3
		wantLen   float64
		wantBaseX float64
		wantOK    bool
	}{
		{"short", trajectory.Vec3{X: 1}, 0.1, 0.9, true},
		{"capped", trajectory.Vec3{X: 3}, 0.15, 2.85, true},
		{"zero", trajectory.Vec3{}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, l, half, ok := ArrowHead(trajectory.Segment{End: tt.end})
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !near(l, tt.wantLen) || !near(base.X, tt.wantBaseX) {
				t.Errorf("length = %v base = %v, want %v at x=%v", l, base, tt.wantLen, tt.wantBaseX)
			}
			if !near(half, 0.2*l) {
				t.Errorf("half width = %v, want %v", half, 0.2*l)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testFrame()))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.0 600.0"`) {
		t.Errorf("unexpected header: %.80s", svg)
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("missing closing tag")
	}
	// The zero-length segment draws nothing.
	if got := strings.Count(svg, `<line class="segment`); got != 2 {
		t.Errorf("segment shafts = %d, want 2", got)
	}
	if got := strings.Count(svg, `<polygon class="segment`); got != 2 {
		t.Errorf("arrowheads = %d, want 2", got)
	}
	for _, want := range []string{render.InputColor, render.OutputColor, ">cats</text>", `class="axis"`, `class="origin"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestRenderSVGOptions(t *testing.T) {
	f := testFrame()
	f.Labels = append(f.Labels, label("<b>&", 0, 0, 1, trajectory.Output))

	svg := string(RenderSVG(f, WithoutAxes(), WithSize(320, 240), WithHUD(), WithBackground("")))
	if strings.Contains(svg, `class="axis"`) || strings.Contains(svg, `class="origin"`) {
		t.Error("axes drawn despite WithoutAxes")
	}
	if strings.Contains(svg, "<rect") {
		t.Error("background drawn despite empty color")
	}
	if !strings.Contains(svg, `viewBox="0 0 320.0 240.0"`) {
		t.Error("size option ignored")
	}
	if !strings.Contains(svg, "&lt;b&gt;&amp;") {
		t.Error("label text not escaped")
	}
	if !strings.Contains(svg, "1/1 idle") {
		t.Error("HUD missing")
	}
}

func TestRenderSVGDepthOrder(t *testing.T) {
	f := playback.Frame{Labels: []playback.FrameLabel{
		label("near", 2, 0, 2, trajectory.Input),
		label("far", -2, 0, -2, trajectory.Input),
	}}
	svg := string(RenderSVG(f, WithoutAxes()))
	if strings.Index(svg, ">far<") > strings.Index(svg, ">near<") {
		t.Error("far label painted after near label")
	}
}

func TestRenderSVGHidesInvisibleLabels(t *testing.T) {
	f := playback.Frame{Labels: []playback.FrameLabel{label("gone", 0, 0, 0, trajectory.Input)}}
	f.Labels[0].Opacity = 0
	if strings.Contains(string(RenderSVG(f)), "gone") {
		t.Error("zero-opacity label drawn")
	}
}

func TestRenderJSON(t *testing.T) {
	tokens := []trajectory.TokenVector{{Token: "I", Destination: trajectory.Vec3{X: 2}, IsInput: true}}
	data, err := RenderJSON(testFrame(), WithJSONTokens(tokens), WithJSONSession("abc"))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out struct {
		Session  string              `json:"session"`
		Segments []json.RawMessage   `json:"segments"`
		Labels   []json.RawMessage   `json:"labels"`
		Arrows   []jsonArrow         `json:"arrows"`
		Tokens   []trajectory.Record `json:"tokens"`
		Total    int                 `json:"total"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Session != "abc" || out.Total != 1 {
		t.Errorf("session = %q total = %d", out.Session, out.Total)
	}
	if len(out.Segments) != 3 || len(out.Labels) != 2 {
		t.Errorf("segments = %d labels = %d, want 3 and 2", len(out.Segments), len(out.Labels))
	}
	if len(out.Arrows) != 2 {
		t.Errorf("arrows = %d, want 2", len(out.Arrows))
	}
	if len(out.Tokens) != 1 || out.Tokens[0].Token != "I" {
		t.Errorf("tokens = %+v", out.Tokens)
	}
}

func TestRenderJSONEmptyFrame(t *testing.T) {
	data, err := RenderJSON(playback.Frame{}, WithJSONCompact())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "\n") {
		t.Error("compact output contains newline")
	}
	for _, want := range []string{`"segments":[]`, `"labels":[]`, `"arrows":[]`} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %s: %s", want, s)
		}
	}
	if strings.Contains(s, "tokens") || strings.Contains(s, "session") {
		t.Errorf("unexpected optional fields: %s", s)
	}
}

func TestRenderText(t *testing.T) {
	f := playback.Frame{
		Segments: []playback.FrameSegment{seg(0, 0, 0, 2, 0, 0, trajectory.Input)},
		Labels:   []playback.FrameLabel{label("cats", 0, 0, 2, trajectory.Output)},
	}
	c := RenderText(f, 80, 24, WithTextAxes(false))
	if c.Width() != 80 || c.Height() != 24 {
		t.Fatalf("canvas = %dx%d", c.Width(), c.Height())
	}
	out := c.String()
	if !strings.Contains(out, "cats") {
		t.Errorf("label missing:\n%s", out)
	}
	if !strings.Contains(out, "*") {
		t.Errorf("arrowhead missing:\n%s", out)
	}

	var inputs int
	for y := range c.Height() {
		for x := range c.Width() {
			if c.At(x, y).Class == canvas.Input {
				inputs++
			}
		}
	}
	if inputs < 3 {
		t.Errorf("input cells = %d, want a drawn shaft", inputs)
	}
}

func TestRenderTextReusesCanvas(t *testing.T) {
	c := canvas.New(40, 12)
	c.Text(20, 6, "stale", canvas.Text)
	got := RenderText(playback.Frame{}, 40, 12, WithCanvas(c), WithTextAxes(false))
	if got != c {
		t.Error("canvas not reused")
	}
	if strings.Contains(got.String(), "stale") {
		t.Error("canvas not cleared")
	}
}

func TestRenderTextFaintGatheringLabel(t *testing.T) {
	l := label("fade", 0, 0, 0, trajectory.Input)
	l.Opacity = 0.3
	c := RenderText(playback.Frame{Labels: []playback.FrameLabel{l}}, 40, 12, WithTextAxes(false))
	found := false
	for y := range c.Height() {
		for x := range c.Width() {
			if cell := c.At(x, y); cell.Ch == 'f' && cell.Class == canvas.Faint {
				found = true
			}
		}
	}
	if !found {
		t.Error("low-opacity label not drawn faint")
	}
}
