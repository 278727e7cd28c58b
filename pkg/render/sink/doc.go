// Package sink draws [playback.Frame] values.
//
// # Output Formats
//
//   - [RenderSVG]: a perspective snapshot with arrows, labels and axes
//   - [RenderJSON]: the frame in model space, for other renderers
//   - [RenderText]: a character canvas for the terminal player
//
// SVG and text share the same scene: every primitive is projected through
// a [camera.Camera] and painted far-to-near. Arrowheads are sized relative
// to their vector (length min(0.1*len, 0.15), width 0.4*length), and labels
// are lifted [DefaultLabelLift] model units above their anchor.
//
// # Conversion
//
// SVG output can be converted with [render.ToPDF] or [render.ToPNG].
package sink
