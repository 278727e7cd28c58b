// Package playback sequences the reveal of output tokens.
//
// # Overview
//
// A [Sequencer] owns the animation state of one visualization session: how
// many output tokens are settled, which phase the next token is in, the
// progress through that phase, whether autoplay is on and at what speed.
// Each output token is revealed in two phases:
//
//   - Gathering: every visible label, plus the label of the incoming token,
//     converges on the midpoint of the incoming token's vector and fades out.
//   - Growing: the incoming token's vector extends from its start to its
//     destination.
//
// When Growing completes the token is settled and the sequencer returns to
// Idle. With autoplay on, the next cycle starts after [Options.StartDelay].
//
// # Ticks
//
// The Sequencer is a pure state machine advanced by [Sequencer.Tick]. It is
// not safe for concurrent use. A [Driver] owns the single ticker that feeds
// it, serializes transport calls with ticks, and publishes a [Frame] to a
// [FrameSink] after every visible change.
//
// # Frames
//
// [Compose] turns a token stream and a [State] into a [Frame]: the segments
// and labels a render surface should draw right now, with per-label opacity
// and scale for the gather animation.
package playback
