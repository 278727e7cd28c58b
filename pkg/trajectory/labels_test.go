package trajectory

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeLabelsMidpoint(t *testing.T) {
	labels := ComputeLabels([]TokenVector{tv("hello", 2, 0, 0, true)})
	if len(labels) != 1 {
		t.Fatalf("got %d labels, want 1", len(labels))
	}
	if labels[0].Position != (Vec3{1, 0, 0}) {
		t.Errorf("position = %v, want (1,0,0)", labels[0].Position)
	}
	if labels[0].Text != "hello" || labels[0].Category != Input {
		t.Errorf("label = %+v", labels[0])
	}
}

func TestComputeLabelsZeroRunGrouping(t *testing.T) {
	// All three tokens sit on the origin, so the whole stream is one
	// zero-length run: one input group and one output group.
	tokens := []TokenVector{
		tv("a", 0, 0, 0, true),
		tv("b", 0, 0, 0, false),
		tv("c", 0, 0, 0, false),
	}
	labels := ComputeLabels(tokens)
	if len(labels) != 2 {
		t.Fatalf("got %d labels, want 2: %+v", len(labels), labels)
	}
	if labels[0].Text != "a" || labels[0].Category != Input {
		t.Errorf("first group = %+v, want input \"a\"", labels[0])
	}
	if labels[1].Text != "b c" || labels[1].Category != Output {
		t.Errorf("second group = %+v, want output \"b c\"", labels[1])
	}

	// widths: "a" = 0.09, "b c" = 3*0.09 + 0.045 = 0.315, gap = 0.045
	total := 0.09 + 0.045 + 0.315
	left := -total / 2
	wantA := left + 0.09/2
	wantBC := left + 0.09 + 0.045 + 0.315/2
	if !approx(labels[0].Position.X, wantA) {
		t.Errorf("group a x = %v, want %v", labels[0].Position.X, wantA)
	}
	if !approx(labels[1].Position.X, wantBC) {
		t.Errorf("group b c x = %v, want %v", labels[1].Position.X, wantBC)
	}
	if labels[0].Position.X >= labels[1].Position.X {
		t.Error("groups should be laid out left to right")
	}
	for _, l := range labels {
		if l.Position.Y != 0 || l.Position.Z != 0 {
			t.Errorf("label %q left the shared point plane: %v", l.Text, l.Position)
		}
	}
	center := (labels[0].Position.X - 0.09/2 + labels[1].Position.X + 0.315/2) / 2
	if !approx(center, 0) {
		t.Errorf("row center = %v, want 0", center)
	}
}

func TestComputeLabelsRunAfterAnchor(t *testing.T) {
	d := Vec3{1, 2, 3}
	tokens := []TokenVector{
		{Token: "x", Destination: d, IsInput: true},
		{Token: "a", Destination: d, IsInput: true},
		{Token: "b", Destination: d, IsInput: false},
		{Token: "c", Destination: d, IsInput: false},
		tv("next", 5, 2, 3, false),
	}
	labels := ComputeLabels(tokens)
	if len(labels) != 4 {
		t.Fatalf("got %d labels, want 4: %+v", len(labels), labels)
	}
	if labels[0].Position != Midpoint(Origin, d) {
		t.Errorf("first label = %v, want midpoint", labels[0].Position)
	}
	if labels[1].Text != "a" || labels[2].Text != "b c" {
		t.Errorf("run groups = %q, %q", labels[1].Text, labels[2].Text)
	}
	for _, l := range labels[1:3] {
		if l.Position.Y != d.Y || l.Position.Z != d.Z {
			t.Errorf("group %q off anchor: %v", l.Text, l.Position)
		}
	}
	// The run does not move the anchor: "next" starts at d.
	if want := Midpoint(d, Vec3{5, 2, 3}); labels[3].Position != want {
		t.Errorf("label after run = %v, want %v", labels[3].Position, want)
	}
}

func TestComputeLabelsExactEquality(t *testing.T) {
	tokens := []TokenVector{
		tv("a", 1, 0, 0, true),
		tv("b", 1+1e-12, 0, 0, true),
	}
	labels := ComputeLabels(tokens)
	if len(labels) != 2 {
		t.Fatalf("near-equal destinations must not merge, got %d labels", len(labels))
	}
}

func TestComputeLabelsWidthFunc(t *testing.T) {
	calls := 0
	fixed := func(text string, words int) float64 {
		calls++
		return 1
	}
	tokens := []TokenVector{
		tv("a", 0, 0, 0, true),
		tv("b", 0, 0, 0, false),
	}
	labels := ComputeLabels(tokens, WithWidthFunc(fixed), WithFontSize(1))
	if calls != 2 {
		t.Errorf("width func called %d times, want 2", calls)
	}
	// total = 1 + 0.3 + 1
	if !approx(labels[0].Position.X, -0.65) || !approx(labels[1].Position.X, 0.65) {
		t.Errorf("positions = %v, %v", labels[0].Position, labels[1].Position)
	}
}

func TestMonospaceWidth(t *testing.T) {
	w := MonospaceWidth(0.15)
	tests := []struct {
		text  string
		words int
		want  float64
	}{
		{"a", 1, 0.09},
		{"b c", 2, 3*0.09 + 0.045},
		{"", 0, 0},
		{"héllo", 1, 5 * 0.09},
	}
	for _, tt := range tests {
		if got := w(tt.text, tt.words); !approx(got, tt.want) {
			t.Errorf("width(%q, %d) = %v, want %v", tt.text, tt.words, got, tt.want)
		}
	}
}

func TestComputeLabelsEmpty(t *testing.T) {
	if got := ComputeLabels(nil); len(got) != 0 {
		t.Errorf("ComputeLabels(nil) = %v, want empty", got)
	}
}
