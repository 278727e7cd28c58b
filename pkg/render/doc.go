// Package render provides render surfaces for token trajectories.
//
// # Overview
//
// The playback package produces a [playback.Frame] per tick: segments and
// labels in model space. The subpackages draw frames:
//
//   - [camera]: orbit camera projecting model space to a viewport
//   - [canvas]: character grid used by the terminal player
//   - [sink]: SVG snapshots, JSON frame dumps and terminal canvases
//   - [nodelink]: the token chain as a Graphviz digraph
//
// This package holds what they share: the category palette and SVG
// conversion to PDF and PNG.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(frame, sink.WithSize(1024, 768))
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
package render
