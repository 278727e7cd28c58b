package playback

import (
	"fmt"
	"time"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// Phase is the animation phase of the next output token.
type Phase int

const (
	Idle Phase = iota
	Gathering
	Growing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Gathering:
		return "gathering"
	case Growing:
		return "growing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// State is a snapshot of a Sequencer.
//
// Phase != Idle implies VisibleOutputCount < total output tokens.
type State struct {
	VisibleOutputCount int     `json:"visible_output_count"`
	Phase              Phase   `json:"phase"`
	Progress           float64 `json:"progress"`
	Playing            bool    `json:"playing"`
	Speed              float64 `json:"speed"`
}

// PauseMode selects what Pause does to a phase already in flight.
type PauseMode int

const (
	// PauseFinishStep lets the in-flight gather and grow complete, then
	// stops before the next cycle.
	PauseFinishStep PauseMode = iota
	// PauseFreeze holds progress where it is until Play.
	PauseFreeze
)

func (m PauseMode) String() string {
	switch m {
	case PauseFinishStep:
		return "finish-step"
	case PauseFreeze:
		return "freeze"
	default:
		return fmt.Sprintf("pausemode(%d)", int(m))
	}
}

// ParsePauseMode parses "finish-step" or "freeze".
func ParsePauseMode(s string) (PauseMode, error) {
	switch s {
	case "", "finish-step":
		return PauseFinishStep, nil
	case "freeze":
		return PauseFreeze, nil
	}
	return 0, fmt.Errorf("unknown pause mode %q", s)
}

// Default timing. At 60 ticks per second and speed 1 a gather takes 20 ticks
// and a grow 25.
const (
	DefaultGatherStep   = 0.05
	DefaultGrowStep     = 0.04
	DefaultStartDelay   = 300 * time.Millisecond
	DefaultTickInterval = time.Second / 60
	DefaultSpeed        = 1.0
)

// Options configures a Sequencer.
type Options struct {
	GatherStep   float64       // progress per tick while gathering, at speed 1
	GrowStep     float64       // progress per tick while growing, at speed 1
	StartDelay   time.Duration // idle wait before a new cycle, at speed 1; negative for none
	TickInterval time.Duration // wall time represented by one tick
	Speed        float64       // initial speed multiplier
	PauseMode    PauseMode

	// LabelOptions are passed to trajectory.ComputeLabels when composing
	// frames.
	LabelOptions []trajectory.LabelOption
}

// DefaultOptions returns the reference timing.
func DefaultOptions() Options {
	var o Options
	o.SetDefaults()
	return o
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.GatherStep <= 0 {
		o.GatherStep = DefaultGatherStep
	}
	if o.GrowStep <= 0 {
		o.GrowStep = DefaultGrowStep
	}
	if o.StartDelay == 0 {
		o.StartDelay = DefaultStartDelay
	}
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.Speed <= 0 {
		o.Speed = DefaultSpeed
	}
}
