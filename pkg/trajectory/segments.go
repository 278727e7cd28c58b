package trajectory

// Span is the (start, end) pair of one token's vector.
type Span struct {
	Start Vec3 `json:"start"`
	End   Vec3 `json:"end"`
}

// IsZero reports whether the span has zero length (start equals end exactly).
func (s Span) IsZero() bool { return s.End.Sub(s.Start).IsZero() }

// Segment is a drawable vector for one token.
type Segment struct {
	Start    Vec3     `json:"start"`
	End      Vec3     `json:"end"`
	Category Category `json:"category"`
}

// Length returns the distance from Start to End.
func (s Segment) Length() float64 { return s.End.Sub(s.Start).Length() }

// Spans scans tokens into their (start, end) pairs: span 0 starts at
// [Origin], span i starts at token i-1's destination.
func Spans(tokens []TokenVector) []Span {
	spans := make([]Span, len(tokens))
	start := Origin
	for i, t := range tokens {
		spans[i] = Span{Start: start, End: t.Destination}
		start = t.Destination
	}
	return spans
}

// ComputeSegments returns one segment per token, colored by category.
// An empty stream yields an empty result.
func ComputeSegments(tokens []TokenVector) []Segment {
	segs := make([]Segment, len(tokens))
	for i, sp := range Spans(tokens) {
		segs[i] = Segment{Start: sp.Start, End: sp.End, Category: tokens[i].Category()}
	}
	return segs
}

// LastAnchor returns the point where the next token's vector would start:
// the last token's destination, or [Origin] for an empty stream.
func LastAnchor(tokens []TokenVector) Vec3 {
	if len(tokens) == 0 {
		return Origin
	}
	return tokens[len(tokens)-1].Destination
}
