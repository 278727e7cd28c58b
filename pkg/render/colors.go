package render

import "github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"

// Category colors.
const (
	InputColor  = "#52c41a"
	OutputColor = "#ff4d4f"
)

// Scene colors.
const (
	BackgroundColor = "#0f1115"
	OriginColor     = "#ffffff"
	AxisXColor      = "#ff6b6b"
	AxisYColor      = "#51cf66"
	AxisZColor      = "#4dabf7"
)

// CategoryColor returns the hex color for c.
func CategoryColor(c trajectory.Category) string {
	if c == trajectory.Input {
		return InputColor
	}
	return OutputColor
}
