// Package trajectory turns an ordered token stream into drawable geometry.
//
// # Overview
//
// A language-model exchange is a sequence of tokens, each carrying a 3D
// destination point. Token i's vector starts where token i-1 ended (the
// origin for the first token), so the stream reads as one continuous path
// through space. This package converts that path into two render inputs:
//
//   - [Segment]: one line per token, from its start anchor to its destination
//   - [LabelPlacement]: where to draw token text, merged when tokens overlap
//
// Everything here is a pure function of its arguments. Nothing is cached and
// nothing is shared, so the functions are safe to call from any goroutine.
//
// # Segments
//
// [ComputeSegments] is a scan over the stream. [Spans] exposes the same
// (start, end) recurrence on its own:
//
//	segs := trajectory.ComputeSegments(tokens)
//	// segs[i].Start == segs[i-1].End for every i > 0
//
// # Labels
//
// Tokens with a non-zero vector get a label at the vector midpoint. Tokens
// whose vector has zero length (the destination equals the start exactly)
// would otherwise stack on one point, so [ComputeLabels] collects each such
// run, splits it into consecutive same-category groups, joins every group's
// text with spaces and lays the groups out side by side, centered on the
// shared point.
//
// Group widths come from a [WidthFunc]. The default, [MonospaceWidth], is a
// fixed-pitch estimate; a real text-measurement backend can be plugged in with
// [WithWidthFunc] without touching the grouping logic.
//
// # Wire records
//
// Token sources deliver [Record] values with a raw coordinate list.
// [FromRecords] validates them and degrades malformed entries (too few
// coordinates, NaN, infinities) to zero-length tokens instead of failing the
// whole stream.
package trajectory
