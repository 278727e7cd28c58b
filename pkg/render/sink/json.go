package sink

import (
	"encoding/json"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	tokens  []trajectory.TokenVector
	compact bool
	id      string
}

// WithJSONTokens includes the token stream as wire records.
func WithJSONTokens(tokens []trajectory.TokenVector) JSONOption {
	return func(r *jsonRenderer) { r.tokens = tokens }
}

// WithJSONCompact emits a single line, for JSON-lines streams.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONSession tags the output with a session ID.
func WithJSONSession(id string) JSONOption { return func(r *jsonRenderer) { r.id = id } }

type jsonOutput struct {
	Session string `json:"session,omitempty"`
	playback.Frame
	Arrows []jsonArrow         `json:"arrows"`
	Tokens []trajectory.Record `json:"tokens,omitempty"`
}

// jsonArrow is the arrowhead geometry for a segment, so consumers without
// their own arrow math draw the same heads as the SVG sink.
type jsonArrow struct {
	Base      trajectory.Vec3 `json:"base"`
	Tip       trajectory.Vec3 `json:"tip"`
	Length    float64         `json:"length"`
	HalfWidth float64         `json:"half_width"`
}

// RenderJSON exports f in model space. Zero-length segments have no arrow.
// It returns an error only if marshaling fails.
func RenderJSON(f playback.Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Session: r.id,
		Frame:   f,
		Arrows:  make([]jsonArrow, 0, len(f.Segments)),
	}
	if out.Segments == nil {
		out.Segments = []playback.FrameSegment{}
	}
	if out.Labels == nil {
		out.Labels = []playback.FrameLabel{}
	}
	for _, seg := range f.Segments {
		if base, length, half, ok := ArrowHead(seg.Segment); ok {
			out.Arrows = append(out.Arrows, jsonArrow{Base: base, Tip: seg.End, Length: length, HalfWidth: half})
		}
	}
	if r.tokens != nil {
		out.Tokens = trajectory.ToRecords(r.tokens)
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
