// Package nodelink renders a token stream as a flat chain diagram.
//
// # Overview
//
// The 3D view hides tokens that share an anchor, because their vectors have
// zero length. The node-link view shows every token as a box in stream
// order, linked from the origin, so stacked tokens are easy to read.
//
// # Usage
//
//	dot := nodelink.ToDOT(tokens, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # DOT Format
//
// The generated DOT lays the chain out left to right (rankdir=LR). Nodes are
// filled with their category color. Edges of zero-length vectors are dashed.
// With Detailed set, labels carry the destination and edges the vector
// length.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
