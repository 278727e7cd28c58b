package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Playback hooks
	p := NoopPlaybackHooks{}
	p.OnPhaseChange(ctx, "idle", "gathering", 0, 3)
	p.OnStepSettled(ctx, 1, 3)
	p.OnFinished(ctx, 3)

	// Source hooks
	s := NoopSourceHooks{}
	s.OnFetchStart(ctx, "synthetic", "hello world")
	s.OnFetchComplete(ctx, "synthetic", 19, 0, time.Millisecond, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "visualize")
	c.OnCacheMiss(ctx, "visualize")
	c.OnCacheSet(ctx, "visualize", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "localhost:8080", "/api/visualize")
	h.OnResponse(ctx, "POST", "localhost:8080", "/api/visualize", 200, time.Second)
	h.OnError(ctx, "POST", "localhost:8080", "/api/visualize", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Playback().(NoopPlaybackHooks); !ok {
		t.Error("Playback() should return NoopPlaybackHooks by default")
	}
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("Source() should return NoopSourceHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPlayback := &testPlaybackHooks{}
	SetPlaybackHooks(customPlayback)
	if Playback() != customPlayback {
		t.Error("SetPlaybackHooks should set custom hooks")
	}

	customSource := &testSourceHooks{}
	SetSourceHooks(customSource)
	if Source() != customSource {
		t.Error("SetSourceHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Playback().(NoopPlaybackHooks); !ok {
		t.Error("Reset() should restore NoopPlaybackHooks")
	}
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("Reset() should restore NoopSourceHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPlaybackHooks{}
	SetPlaybackHooks(custom)

	// Setting nil should be ignored
	SetPlaybackHooks(nil)

	if Playback() != custom {
		t.Error("SetPlaybackHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPlaybackHooks struct{ NoopPlaybackHooks }
type testSourceHooks struct{ NoopSourceHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
