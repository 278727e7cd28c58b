package playback

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/observability"
)

// FrameSink receives a frame after every visible change. It is called with
// the driver's lock held and must not call back into the Driver.
type FrameSink func(Frame)

// Driver owns the single ticker that advances a Sequencer.
//
// Start and Stop are idempotent. Transport calls made through the Driver are
// serialized with ticks, and every Start bumps a generation counter so that a
// tick from a superseded loop is dropped instead of mutating fresh state.
type Driver struct {
	mu       sync.Mutex
	seq      *Sequencer
	sink     FrameSink
	logger   *log.Logger
	interval time.Duration

	ctx    context.Context
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDriver creates a stopped driver for seq. A nil sink discards frames and
// a nil logger discards log output.
func NewDriver(seq *Sequencer, sink FrameSink, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Driver{
		seq:      seq,
		sink:     sink,
		logger:   logger,
		interval: seq.Options().TickInterval,
		ctx:      context.Background(),
	}
}

// Start launches the tick loop. It returns false if the loop is already
// running. The loop stops when ctx is cancelled or Stop is called.
func (d *Driver) Start(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	d.gen++
	d.ctx = ctx
	d.cancel = cancel
	d.done = make(chan struct{})
	go d.loop(ctx, d.gen, d.done)

	d.logger.Debug("driver started", "interval", d.interval, "outputs", d.seq.Total())
	d.publish()
	return true
}

// Stop cancels the tick loop and waits for it to exit. Stopping a stopped
// driver is a no-op.
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.gen++
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	d.logger.Debug("driver stopped")
}

// Running reports whether the tick loop is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

func (d *Driver) loop(ctx context.Context, gen uint64, done chan struct{}) {
	ticker := time.NewTicker(d.interval)
	defer func() {
		ticker.Stop()
		d.mu.Lock()
		if d.gen == gen {
			d.cancel, d.done = nil, nil
		}
		d.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(gen)
		}
	}
}

func (d *Driver) tick(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return
	}
	d.stepLocked()
}

// Step advances the sequencer by one tick outside the ticker. It is meant
// for headless rendering and tests, where wall-clock pacing is unwanted.
func (d *Driver) Step() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stepLocked()
}

func (d *Driver) stepLocked() {
	before := d.seq.State()
	if d.seq.Tick() {
		d.report(before, d.seq.State())
		d.publish()
	}
}

// Play turns autoplay on.
func (d *Driver) Play() { d.apply(func(s *Sequencer) error { s.Play(); return nil }) }

// Pause turns autoplay off.
func (d *Driver) Pause() { d.apply(func(s *Sequencer) error { s.Pause(); return nil }) }

// Toggle flips autoplay.
func (d *Driver) Toggle() { d.apply(func(s *Sequencer) error { s.Toggle(); return nil }) }

// Reset returns to zero settled tokens.
func (d *Driver) Reset() { d.apply(func(s *Sequencer) error { s.Reset(); return nil }) }

// Seek jumps to n settled tokens. See [Sequencer.Seek].
func (d *Driver) Seek(n int) error { return d.apply(func(s *Sequencer) error { return s.Seek(n) }) }

// SetSpeed changes the speed multiplier. See [Sequencer.SetSpeed].
func (d *Driver) SetSpeed(m float64) error {
	return d.apply(func(s *Sequencer) error { return s.SetSpeed(m) })
}

func (d *Driver) apply(fn func(*Sequencer) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	before := d.seq.State()
	if err := fn(d.seq); err != nil {
		return err
	}
	after := d.seq.State()
	if after != before {
		d.report(before, after)
		d.publish()
	}
	return nil
}

// State returns a snapshot of the sequencer state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq.State()
}

// Frame composes the current frame.
func (d *Driver) Frame() Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq.Frame()
}

// Total returns the number of output tokens.
func (d *Driver) Total() int { return d.seq.Total() }

// Done reports whether every output token is settled.
func (d *Driver) Done() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq.Done()
}

func (d *Driver) publish() {
	if d.sink != nil {
		d.sink(d.seq.Frame())
	}
}

func (d *Driver) report(before, after State) {
	hooks := observability.Playback()
	total := d.seq.Total()

	if before.Phase != after.Phase {
		hooks.OnPhaseChange(d.ctx, before.Phase.String(), after.Phase.String(), after.VisibleOutputCount, total)
	}
	if before.Phase == Growing && after.Phase == Idle && after.VisibleOutputCount == before.VisibleOutputCount+1 {
		hooks.OnStepSettled(d.ctx, after.VisibleOutputCount, total)
		d.logger.Debug("token settled", "visible", after.VisibleOutputCount, "total", total)
	}
	if before.Playing && !after.Playing && after.VisibleOutputCount == total && total > 0 {
		hooks.OnFinished(d.ctx, total)
		d.logger.Debug("playback finished", "total", total)
	}
}
