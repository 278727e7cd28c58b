package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// OriginID is the DOT node ID of the origin.
const OriginID = "origin"

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds destinations to node labels and lengths to edges.
	// When false, only the token text is shown.
	Detailed bool
}

// NodeID returns the DOT node ID of token i.
func NodeID(i int) string { return "t" + strconv.Itoa(i) }

// ToDOT converts a token stream to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(tokens []trajectory.TokenVector, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#888888\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=\"\", shape=point, width=0.15, fillcolor=%q, color=%q];\n",
		OriginID, render.OriginColor, render.OriginColor)
	for i, t := range tokens {
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n",
			NodeID(i), fmtLabel(t, opts.Detailed), render.CategoryColor(t.Category()))
	}

	buf.WriteString("\n")
	prev := OriginID
	for i, span := range trajectory.Spans(tokens) {
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", prev, NodeID(i), fmtEdgeAttrs(span, opts.Detailed))
		prev = NodeID(i)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(t trajectory.TokenVector, detailed bool) string {
	text := t.Token
	if strings.TrimSpace(text) == "" {
		text = strconv.Quote(text)
	}
	if !detailed {
		return text
	}
	return text + "\n" + t.Destination.String()
}

func fmtEdgeAttrs(s trajectory.Span, detailed bool) string {
	var attrs []string
	if s.IsZero() {
		attrs = append(attrs, "style=dashed")
	}
	if detailed {
		attrs = append(attrs, fmt.Sprintf("label=%q", fmt.Sprintf("%.3f", s.End.Sub(s.Start).Length())))
	}
	if len(attrs) == 0 {
		return ""
	}
	return " [" + strings.Join(attrs, ", ") + "]"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's root tag with one whose viewBox
// starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
