package playback

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func fastOptions() Options {
	opts := DefaultOptions()
	opts.TickInterval = time.Millisecond
	opts.StartDelay = -1
	opts.GatherStep = 0.5
	opts.GrowStep = 0.5
	return opts
}

func TestDriverStartStopIdempotent(t *testing.T) {
	d := NewDriver(New(stream(), fastOptions()), nil, nil)

	if d.Running() {
		t.Fatal("new driver should be stopped")
	}
	if !d.Start(context.Background()) {
		t.Fatal("first Start should launch the loop")
	}
	if d.Start(context.Background()) {
		t.Error("second Start should be a no-op")
	}
	if !d.Running() {
		t.Error("driver should be running after Start")
	}

	d.Stop()
	d.Stop()
	if d.Running() {
		t.Error("driver should be stopped after Stop")
	}

	if !d.Start(context.Background()) {
		t.Error("Start after Stop should relaunch the loop")
	}
	d.Stop()
}

func TestDriverPlaysToCompletion(t *testing.T) {
	done := make(chan struct{})
	var closed atomic.Bool
	var frames atomic.Int64

	d := NewDriver(New(stream(), fastOptions()), func(f Frame) {
		frames.Add(1)
		if f.State.VisibleOutputCount == f.Total && !f.State.Playing && f.Total > 0 &&
			f.State.Phase == Idle && closed.CompareAndSwap(false, true) {
			close(done)
		}
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Stop()
	d.Play()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("playback did not finish, state = %+v", d.State())
	}
	if !d.Done() {
		t.Error("Done() = false after finishing")
	}
	if frames.Load() == 0 {
		t.Error("sink received no frames")
	}
}

func TestDriverContextCancelStopsLoop(t *testing.T) {
	d := NewDriver(New(stream(), fastOptions()), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for d.Running() {
		if time.Now().After(deadline) {
			t.Fatal("loop did not exit after context cancel")
		}
		time.Sleep(time.Millisecond)
	}
	if !d.Start(context.Background()) {
		t.Error("Start after cancel should relaunch the loop")
	}
	d.Stop()
}

func TestDriverDropsStaleTicks(t *testing.T) {
	d := NewDriver(New(stream(), fastOptions()), nil, nil)
	d.Play()

	d.mu.Lock()
	stale := d.gen
	d.gen++
	d.mu.Unlock()

	before := d.State()
	for range 10 {
		d.tick(stale)
	}
	if d.State() != before {
		t.Errorf("stale ticks mutated state: %+v -> %+v", before, d.State())
	}

	d.Step()
	if d.State() == before {
		t.Error("Step should advance the sequencer")
	}
}

func TestDriverSeekPublishes(t *testing.T) {
	var last atomic.Value
	d := NewDriver(New(stream(), DefaultOptions()), func(f Frame) { last.Store(f) }, nil)

	if err := d.Seek(2); err != nil {
		t.Fatal(err)
	}
	f, ok := last.Load().(Frame)
	if !ok {
		t.Fatal("Seek did not publish a frame")
	}
	if f.State.VisibleOutputCount != 2 {
		t.Errorf("published count = %d, want 2", f.State.VisibleOutputCount)
	}

	if err := d.Seek(9); err == nil {
		t.Error("Seek(9) should be rejected")
	}
	if err := d.SetSpeed(-2); err == nil {
		t.Error("SetSpeed(-2) should be rejected")
	}
	if d.State().VisibleOutputCount != 2 {
		t.Error("rejected calls changed state")
	}
}

func TestDriverSeekWhileRunning(t *testing.T) {
	d := NewDriver(New(stream(), fastOptions()), nil, nil)
	d.Start(context.Background())
	defer d.Stop()
	d.Play()
	time.Sleep(5 * time.Millisecond)

	if err := d.Seek(1); err != nil {
		t.Fatal(err)
	}
	st := d.State()
	if st.VisibleOutputCount != 1 || st.Playing {
		t.Errorf("state after Seek = %+v, want count 1 and paused", st)
	}
	time.Sleep(10 * time.Millisecond)
	if got := d.State(); got.VisibleOutputCount != 1 || got.Phase != Idle {
		t.Errorf("ticks moved a paused, seeked driver: %+v", got)
	}
}
