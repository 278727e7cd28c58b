package playback

import "github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"

// FrameSegment is a vector to draw. Growing marks the partial vector of the
// token currently being revealed.
type FrameSegment struct {
	trajectory.Segment
	Growing bool `json:"growing,omitempty"`
}

// FrameLabel is a label to draw. Renderers billboard the text toward the
// camera and apply Opacity and Scale.
type FrameLabel struct {
	trajectory.LabelPlacement
	Opacity   float64 `json:"opacity"`
	Scale     float64 `json:"scale"`
	Gathering bool    `json:"gathering,omitempty"`
}

// Frame is everything a render surface needs for one tick.
type Frame struct {
	Segments []FrameSegment `json:"segments"`
	Labels   []FrameLabel   `json:"labels"`
	State    State          `json:"state"`
	Total    int            `json:"total"`
}

// GatherOpacity is the opacity of a converging label at gather progress p:
// 0.7 until p reaches 0.9, then fading linearly to 0 at p = 1.
func GatherOpacity(p float64) float64 {
	if p < 0.9 {
		return 0.7
	}
	return clamp01((1 - p) * 7)
}

// GatherScale is the scale of a converging label at gather progress p:
// 1 until p reaches 0.8, then shrinking linearly to 0 at p = 1.
func GatherScale(p float64) float64 {
	if p < 0.8 {
		return 1
	}
	return clamp01(1 - (p-0.8)*5)
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// Compose builds the frame for tokens in state st.
//
// The settled prefix is every token before the (count+1)-th output token, or
// the whole stream once all outputs are settled. Its segments are always
// drawn. Its labels are drawn at rest except while gathering, when they and
// the incoming token's label (starting at the previous anchor) converge on
// the midpoint of the incoming vector. While growing, the incoming vector is
// drawn partially and its label is withheld until it settles.
func Compose(tokens []trajectory.TokenVector, st State, labelOpts ...trajectory.LabelOption) Frame {
	outputs := trajectory.OutputIndices(tokens)
	count := min(max(st.VisibleOutputCount, 0), len(outputs))

	settledEnd := len(tokens)
	incoming := -1
	if count < len(outputs) {
		incoming = outputs[count]
		settledEnd = incoming
	}
	settled := tokens[:settledEnd]

	f := Frame{
		Segments: make([]FrameSegment, 0, settledEnd+1),
		Labels:   []FrameLabel{},
		State:    st,
		Total:    len(outputs),
	}
	for _, seg := range trajectory.ComputeSegments(settled) {
		f.Segments = append(f.Segments, FrameSegment{Segment: seg})
	}
	labels := trajectory.ComputeLabels(settled, labelOpts...)

	if incoming < 0 || st.Phase == Idle {
		f.Labels = restingLabels(labels)
		return f
	}

	anchor := trajectory.LastAnchor(settled)
	next := tokens[incoming]

	switch st.Phase {
	case Gathering:
		p := clamp01(st.Progress)
		target := trajectory.Midpoint(anchor, next.Destination)
		opacity, scale := GatherOpacity(p), GatherScale(p)
		labels = append(labels, trajectory.LabelPlacement{
			Text:     next.Token,
			Position: anchor,
			Category: next.Category(),
		})
		for _, l := range labels {
			l.Position = trajectory.Lerp(l.Position, target, p)
			f.Labels = append(f.Labels, FrameLabel{
				LabelPlacement: l,
				Opacity:        opacity,
				Scale:          scale,
				Gathering:      true,
			})
		}

	case Growing:
		p := clamp01(st.Progress)
		f.Segments = append(f.Segments, FrameSegment{
			Segment: trajectory.Segment{
				Start:    anchor,
				End:      trajectory.Lerp(anchor, next.Destination, p),
				Category: next.Category(),
			},
			Growing: true,
		})
		f.Labels = restingLabels(labels)
	}
	return f
}

func restingLabels(labels []trajectory.LabelPlacement) []FrameLabel {
	out := make([]FrameLabel, len(labels))
	for i, l := range labels {
		out[i] = FrameLabel{LabelPlacement: l, Opacity: 1, Scale: 1}
	}
	return out
}
