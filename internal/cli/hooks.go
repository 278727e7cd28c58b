package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/observability"
)

// logHooks writes observability events to the debug log.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.PlaybackHooks = (*logHooks)(nil)
	_ observability.SourceHooks   = (*logHooks)(nil)
	_ observability.CacheHooks    = (*logHooks)(nil)
	_ observability.HTTPHooks     = (*logHooks)(nil)
)

func (h *logHooks) OnPhaseChange(_ context.Context, from, to string, visible, total int) {
	h.logger.Debug("phase", "from", from, "to", to, "visible", visible, "total", total)
}

func (h *logHooks) OnStepSettled(_ context.Context, visible, total int) {
	h.logger.Debug("step settled", "visible", visible, "total", total)
}

func (h *logHooks) OnFinished(_ context.Context, total int) {
	h.logger.Debug("playback finished", "total", total)
}

func (h *logHooks) OnFetchStart(_ context.Context, source, input string) {
	h.logger.Debug("fetch", "source", source, "chars", len([]rune(input)))
}

func (h *logHooks) OnFetchComplete(_ context.Context, source string, tokens, malformed int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "source", source, "duration", d, "err", err)
		return
	}
	h.logger.Debug("fetched", "source", source, "tokens", tokens, "malformed", malformed, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
