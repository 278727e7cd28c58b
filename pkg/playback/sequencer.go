package playback

import (
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// progressEpsilon absorbs float accumulation so that 20 steps of 0.05 finish
// a phase in exactly 20 ticks.
const progressEpsilon = 1e-9

// delayEpsilon is in seconds. It covers time.Second/60 truncating to
// 16.666666ms, so that 18 ticks still wait out a 300ms start delay.
const delayEpsilon = 1e-6

// Sequencer is the gather → grow state machine for one token stream.
// It is not safe for concurrent use; see [Driver].
type Sequencer struct {
	tokens  []trajectory.TokenVector
	outputs []int
	opts    Options

	state    State
	idleWait float64 // seconds of start delay accumulated, speed-scaled
}

// New creates a sequencer for tokens in the initial state
// {0, Idle, progress 0, not playing}.
func New(tokens []trajectory.TokenVector, opts Options) *Sequencer {
	opts.SetDefaults()
	return &Sequencer{
		tokens:  tokens,
		outputs: trajectory.OutputIndices(tokens),
		opts:    opts,
		state:   State{Phase: Idle, Speed: opts.Speed},
	}
}

// State returns a snapshot of the current state.
func (s *Sequencer) State() State { return s.state }

// Total returns the number of output tokens.
func (s *Sequencer) Total() int { return len(s.outputs) }

// Tokens returns the token stream the sequencer was built from.
func (s *Sequencer) Tokens() []trajectory.TokenVector { return s.tokens }

// Options returns the effective options.
func (s *Sequencer) Options() Options { return s.opts }

// Done reports whether every output token is settled.
func (s *Sequencer) Done() bool {
	return s.state.VisibleOutputCount == len(s.outputs) && s.state.Phase == Idle
}

// Tick advances the state machine by one tick and reports whether the
// visible state changed. Idle ticks spent waiting out the start delay do not
// count as a change.
func (s *Sequencer) Tick() bool {
	st := &s.state
	speed := st.Speed

	switch st.Phase {
	case Idle:
		if !st.Playing || st.VisibleOutputCount >= len(s.outputs) {
			s.idleWait = 0
			return false
		}
		s.idleWait += s.opts.TickInterval.Seconds() * speed
		if s.idleWait+delayEpsilon < s.opts.StartDelay.Seconds() {
			return false
		}
		s.idleWait = 0
		st.Phase = Gathering
		st.Progress = 0
		return true

	case Gathering:
		if s.frozen() {
			return false
		}
		st.Progress += s.opts.GatherStep * speed
		if st.Progress+progressEpsilon >= 1 {
			st.Phase = Growing
			st.Progress = 0
		}
		return true

	case Growing:
		if s.frozen() {
			return false
		}
		st.Progress += s.opts.GrowStep * speed
		if st.Progress+progressEpsilon >= 1 {
			st.VisibleOutputCount++
			st.Phase = Idle
			st.Progress = 1
			if st.VisibleOutputCount >= len(s.outputs) {
				st.Playing = false
			}
		}
		return true
	}
	return false
}

func (s *Sequencer) frozen() bool {
	return !s.state.Playing && s.opts.PauseMode == PauseFreeze
}

// Play turns autoplay on. If every output token is already shown, playback
// restarts from zero. Play is a no-op when already playing or when the
// stream has no output tokens.
func (s *Sequencer) Play() {
	if s.state.Playing || len(s.outputs) == 0 {
		return
	}
	if s.state.VisibleOutputCount == len(s.outputs) {
		s.state.VisibleOutputCount = 0
		s.state.Phase = Idle
		s.state.Progress = 0
	}
	s.state.Playing = true
}

// Pause turns autoplay off. Phase and progress are kept; whether an
// in-flight phase keeps advancing depends on [Options.PauseMode].
func (s *Sequencer) Pause() {
	s.state.Playing = false
	s.idleWait = 0
}

// Toggle calls Pause when playing and Play otherwise.
func (s *Sequencer) Toggle() {
	if s.state.Playing {
		s.Pause()
	} else {
		s.Play()
	}
}

// Seek jumps to n settled output tokens, stopping autoplay and discarding
// any in-flight phase. n outside [0, Total] is rejected with an
// INVALID_INPUT error and the state is left unchanged.
func (s *Sequencer) Seek(n int) error {
	if n < 0 || n > len(s.outputs) {
		return errors.New(errors.ErrCodeInvalidInput, "seek %d out of range [0, %d]", n, len(s.outputs))
	}
	s.state.VisibleOutputCount = n
	s.state.Phase = Idle
	s.state.Progress = 0
	s.state.Playing = false
	s.idleWait = 0
	return nil
}

// SetSpeed sets the speed multiplier used from the next tick on. Progress
// already accumulated is not rescaled. Non-positive or non-finite values are
// rejected.
func (s *Sequencer) SetSpeed(m float64) error {
	if err := errors.ValidateSpeed(m); err != nil {
		return err
	}
	s.state.Speed = m
	return nil
}

// Reset is Seek(0).
func (s *Sequencer) Reset() {
	_ = s.Seek(0)
}

// Frame composes the current render output.
func (s *Sequencer) Frame() Frame {
	return Compose(s.tokens, s.state, s.opts.LabelOptions...)
}
