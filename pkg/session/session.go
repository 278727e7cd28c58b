// Package session manages visualization sessions.
//
// A session is one submitted input: its fetched token stream and the
// [playback.Driver] animating it. The [Manager] keeps at most one live
// session. Submitting new input fetches the stream first and only then tears
// down the previous driver, so a failed fetch leaves the current session
// playing. When several submissions overlap, only the latest one installs
// its session; older ones fail with [ErrSuperseded].
//
// # Usage
//
//	m := session.NewManager(src, session.Options{Autoplay: true}, sink, logger)
//	defer m.Close()
//
//	sess, err := m.Submit(ctx, "The quick brown fox")
//	if err != nil {
//	    return err
//	}
//	sess.Driver.Pause()
package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperrors "github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/source"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/store"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// Sentinel errors for session operations.
var (
	// ErrSuperseded is returned when a newer submission finished first.
	ErrSuperseded = errors.New("submission superseded by newer input")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session manager closed")
)

// Session is one visualization: a token stream and its driver.
type Session struct {
	ID        string                   `json:"id"`
	Input     string                   `json:"input"`
	Source    string                   `json:"source"`
	Tokens    []trajectory.TokenVector `json:"tokens"`
	Malformed int                      `json:"malformed,omitempty"`
	Cached    bool                     `json:"cached,omitempty"`
	CreatedAt time.Time                `json:"created_at"`

	Driver *playback.Driver `json:"-"`
}

// FrameSink receives frames tagged with the id of the session that produced
// them. It is called from the driver goroutine with the driver lock held and
// must not call back into the Manager or the Driver.
type FrameSink func(sessionID string, f playback.Frame)

// Options configures a Manager.
type Options struct {
	Playback playback.Options
	Autoplay bool        // start playing as soon as a session is installed
	Archive  store.Store // optional; fetched streams are saved under the session id
}

// Manager owns the live session.
type Manager struct {
	src    source.Source
	opts   Options
	sink   FrameSink
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	current   *Session
	submitted uint64
	closed    bool
}

// NewManager creates a manager fetching from src. sink and logger may be nil.
func NewManager(src source.Source, opts Options, sink FrameSink, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		src:    src,
		opts:   opts,
		sink:   sink,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Submit fetches the stream for input and installs it as the live session,
// stopping the previous driver. On error the previous session is kept.
func (m *Manager) Submit(ctx context.Context, input string) (*Session, error) {
	ticket, err := m.nextTicket()
	if err != nil {
		return nil, err
	}

	res, err := m.src.Fetch(ctx, input)
	if err != nil {
		m.logger.Warn("fetch failed", "source", m.src.Name(), "err", err)
		return nil, err
	}
	if res.Malformed > 0 {
		m.logger.Warn("malformed token records", "count", res.Malformed, "tokens", len(res.Tokens))
	}

	sess := m.newSession(res.ID, input, m.src.Name(), res.Tokens)
	sess.Malformed = res.Malformed
	sess.Cached = res.Cached
	if err := m.install(ticket, sess); err != nil {
		return nil, err
	}
	m.archive(ctx, sess)
	return sess, nil
}

// Replay installs an archived trajectory as the live session.
func (m *Manager) Replay(ctx context.Context, id string) (*Session, error) {
	if m.opts.Archive == nil {
		return nil, apperrors.New(apperrors.ErrCodeUnsupported, "cannot replay %q: no archive configured", id)
	}
	ticket, err := m.nextTicket()
	if err != nil {
		return nil, err
	}
	t, err := m.opts.Archive.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess := m.newSession(t.ID, t.Input, t.Source, t.Tokens)
	if err := m.install(ticket, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Load installs an already fetched stream as the live session.
func (m *Manager) Load(input string, tokens []trajectory.TokenVector) (*Session, error) {
	ticket, err := m.nextTicket()
	if err != nil {
		return nil, err
	}
	sess := m.newSession("", input, "inline", tokens)
	if err := m.install(ticket, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Current returns the live session, or nil before the first successful
// submission.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Close stops the live driver. Later submissions fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.current != nil {
		m.current.Driver.Stop()
	}
	m.cancel()
	return nil
}

func (m *Manager) nextTicket() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	m.submitted++
	return m.submitted, nil
}

func (m *Manager) newSession(id, input, src string, tokens []trajectory.TokenVector) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	sess := &Session{
		ID:        id,
		Input:     input,
		Source:    src,
		Tokens:    tokens,
		CreatedAt: time.Now().UTC(),
	}
	var sink playback.FrameSink
	if m.sink != nil {
		sink = func(f playback.Frame) { m.sink(id, f) }
	}
	seq := playback.New(tokens, m.opts.Playback)
	sess.Driver = playback.NewDriver(seq, sink, m.logger.With("session", shortID(id)))
	return sess
}

// install swaps in sess if its ticket is still the latest.
func (m *Manager) install(ticket uint64, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if ticket != m.submitted {
		m.logger.Debug("discarding superseded submission", "session", shortID(sess.ID))
		return ErrSuperseded
	}
	if m.current != nil {
		m.current.Driver.Stop()
	}
	m.current = sess
	sess.Driver.Start(m.ctx)
	if m.opts.Autoplay {
		sess.Driver.Play()
	}
	m.logger.Info("session ready",
		"session", shortID(sess.ID),
		"source", sess.Source,
		"tokens", len(sess.Tokens),
		"outputs", sess.Driver.Total())
	return nil
}

func (m *Manager) archive(ctx context.Context, sess *Session) {
	if m.opts.Archive == nil {
		return
	}
	t := &store.Trajectory{
		ID:        sess.ID,
		Input:     sess.Input,
		Source:    sess.Source,
		Tokens:    sess.Tokens,
		CreatedAt: sess.CreatedAt,
	}
	if err := m.opts.Archive.Put(ctx, t); err != nil {
		m.logger.Warn("archive failed", "session", shortID(sess.ID), "err", err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
