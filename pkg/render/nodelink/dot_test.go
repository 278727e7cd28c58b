package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

func sampleTokens() []trajectory.TokenVector {
	return []trajectory.TokenVector{
		{Token: "I", Destination: trajectory.Vec3{X: 1}, IsInput: true},
		{Token: "like", Destination: trajectory.Vec3{X: 1}, IsInput: true},
		{Token: "cats", Destination: trajectory.Vec3{X: 1, Y: 2}, IsInput: false},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleTokens(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`"origin" [label="", shape=point`,
		`"t0" [label="I", fillcolor="` + render.InputColor + `"];`,
		`"t2" [label="cats", fillcolor="` + render.OutputColor + `"];`,
		`"origin" -> "t0";`,
		`"t0" -> "t1" [style=dashed];`,
		`"t1" -> "t2";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if got := strings.Count(dot, "->"); got != 3 {
		t.Errorf("edges = %d, want 3", got)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sampleTokens(), Options{Detailed: true})
	for _, want := range []string{
		`label="I\n(1.000, 0.000, 0.000)"`,
		`"t0" -> "t1" [style=dashed, label="0.000"];`,
		`"t1" -> "t2" [label="2.000"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTBlankToken(t *testing.T) {
	dot := ToDOT([]trajectory.TokenVector{{Token: " "}}, Options{})
	if !strings.Contains(dot, `[label="\" \""`) {
		t.Errorf("blank token not quoted:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(nil, Options{})
	if strings.Contains(dot, "->") {
		t.Errorf("empty stream has edges:\n%s", dot)
	}
	if !strings.Contains(dot, `"origin"`) {
		t.Error("origin node missing")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox was modified")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz render in short mode")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(sampleTokens(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("root tag not normalized: %.120s", s)
	}
	if !strings.Contains(s, "cats") {
		t.Error("token label missing from SVG")
	}
}
