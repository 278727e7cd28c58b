package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/session"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/source"
)

func TestFrameNotifierCoalesces(t *testing.T) {
	n := newFrameNotifier()
	n.sink("a", playback.Frame{})
	n.sink("b", playback.Frame{})
	n.sink("c", playback.Frame{})

	msg := n.wait()()
	if got := msg.(frameMsg).id; got != "c" {
		t.Errorf("pending wake-up = %q, want the latest session %q", got, "c")
	}
	select {
	case id := <-n:
		t.Errorf("notifier held a second wake-up %q", id)
	default:
	}
}

// newTestPlayer loads a synthetic stream into a paused manager.
func newTestPlayer(t *testing.T) (PlayerModel, *session.Manager) {
	t.Helper()
	src := source.NewSynthetic(42)
	res, err := src.Fetch(context.Background(), "Hello world")
	if err != nil {
		t.Fatal(err)
	}

	notify := newFrameNotifier()
	mgr := session.NewManager(src, session.Options{Playback: playback.DefaultOptions()}, notify.sink, nil)
	t.Cleanup(func() { mgr.Close() })
	if _, err := mgr.Load("Hello world", res.Tokens); err != nil {
		t.Fatal(err)
	}
	return NewPlayerModel(context.Background(), mgr, notify), mgr
}

func press(m PlayerModel, keys ...tea.KeyMsg) PlayerModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(PlayerModel)
	}
	return m
}

// runCmd runs cmd, expanding batches, and returns the messages it produced.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, runCmd(c)...)
	}
	return out
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestPlayerStartsAtPromptWithoutSession(t *testing.T) {
	mgr := session.NewManager(source.NewSynthetic(1), session.Options{}, nil, nil)
	defer mgr.Close()

	m := NewPlayerModel(context.Background(), mgr, newFrameNotifier())
	if !m.editing {
		t.Error("player without a session should start in the prompt")
	}
	if !strings.Contains(m.View(), "no data yet") {
		t.Error("empty player should say there is no data")
	}
}

func TestPlayerTransportKeys(t *testing.T) {
	m, mgr := newTestPlayer(t)
	total := mgr.Current().Driver.Total()
	if total == 0 {
		t.Fatal("synthetic stream has no outputs")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnd})
	if got := m.frame.State.VisibleOutputCount; got != total {
		t.Errorf("end: visible = %d, want %d", got, total)
	}

	m = press(m, runes("h"))
	if got := m.frame.State.VisibleOutputCount; got != total-1 {
		t.Errorf("step back: visible = %d, want %d", got, total-1)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyHome})
	if got := m.frame.State.VisibleOutputCount; got != 0 {
		t.Errorf("home: visible = %d, want 0", got)
	}

	// Stepping back from zero stays at zero without an error.
	m = press(m, runes("h"))
	if m.err != nil || m.frame.State.VisibleOutputCount != 0 {
		t.Errorf("step back at 0: visible %d, err %v", m.frame.State.VisibleOutputCount, m.err)
	}

	m = press(m, runes("+"), runes("+"))
	if got := m.frame.State.Speed; got != 4 {
		t.Errorf("speed after two increases = %g, want 4", got)
	}
	m = press(m, runes("-"), runes("-"), runes("-"), runes("-"), runes("-"))
	if got := m.frame.State.Speed; got != minSpeed {
		t.Errorf("speed is clamped at %g, got %g", minSpeed, got)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.frame.State.Playing {
		t.Error("space should start playback")
	}
	m = press(m, runes("p"))
	if m.frame.State.Playing {
		t.Error("p should pause playback")
	}
}

func TestPlayerCameraKeys(t *testing.T) {
	m, _ := newTestPlayer(t)
	before := m.cam

	m = press(m, runes("d"), runes("x"))
	if m.cam == before {
		t.Error("orbit and zoom keys should move the camera")
	}
	m = press(m, runes("c"))
	if m.cam != before {
		t.Error("c should reset the camera")
	}

	axes := m.axes
	m = press(m, runes("g"))
	if m.axes == axes {
		t.Error("g should toggle the axes")
	}
}

func TestPlayerPromptEditing(t *testing.T) {
	m, _ := newTestPlayer(t)

	m = press(m, runes("i"))
	if !m.editing || !m.input.Focused() {
		t.Fatal("i should open and focus the prompt")
	}
	if got := m.input.Value(); got != "Hello world" {
		t.Errorf("prompt = %q, want the current input", got)
	}

	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	m = press(m, tea.KeyMsg{Type: tea.KeyBackspace}, runes("D"), space, runes("!"))
	if got := m.input.Value(); got != "Hello worlD !" {
		t.Errorf("prompt = %q", got)
	}

	// Keys that would drive playback are text while editing.
	m = press(m, runes("q"))
	if got := m.input.Value(); got != "Hello worlD !q" {
		t.Errorf("prompt = %q, want q typed", got)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.editing || m.input.Focused() {
		t.Error("esc should leave the prompt when a session exists")
	}
}

func TestPlayerPromptCursor(t *testing.T) {
	m, _ := newTestPlayer(t)
	m = press(m, runes("i"))

	m = press(m, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyLeft}, runes("X"))
	if got := m.input.Value(); got != "Hello worXld" {
		t.Errorf("insert after moving left: prompt = %q", got)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnd}, tea.KeyMsg{Type: tea.KeyCtrlW})
	if got := strings.TrimSpace(m.input.Value()); got != "Hello" {
		t.Errorf("ctrl+w: prompt = %q, want the last word deleted", got)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlU})
	if got := m.input.Value(); got != "" {
		t.Errorf("ctrl+u: prompt = %q, want empty", got)
	}
	// The first placeholder rune is drawn under the cursor.
	if !strings.Contains(m.View(), "ype a prompt") {
		t.Error("empty prompt should show the placeholder")
	}
}

func TestPlayerRejectsBlankSubmission(t *testing.T) {
	m, _ := newTestPlayer(t)
	m = press(m, runes("i"))
	m.input.SetValue("   ")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(PlayerModel)
	if cmd != nil || m.submitting {
		t.Error("blank input should not be submitted")
	}
	if m.err == nil {
		t.Error("blank input should report an error")
	}
}

func TestPlayerSubmit(t *testing.T) {
	m, mgr := newTestPlayer(t)
	oldID := mgr.Current().ID

	m = press(m, runes("i"))
	m.input.SetValue("A new prompt")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(PlayerModel)
	if cmd == nil || !m.submitting {
		t.Fatal("enter should start a submission")
	}

	done := make(chan []tea.Msg, 1)
	go func() { done <- runCmd(cmd) }()
	var msgs []tea.Msg
	select {
	case msgs = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("submission did not finish")
	}

	var spun bool
	for _, msg := range msgs {
		if _, ok := msg.(spinner.TickMsg); ok {
			spun = true
		}
		next, _ = m.Update(msg)
		m = next.(PlayerModel)
	}
	if !spun {
		t.Error("submission should start the spinner")
	}
	if m.submitting {
		t.Error("player still submitting after the result arrived")
	}
	if m.err != nil {
		t.Fatalf("submission error: %v", m.err)
	}
	if m.sessionID == oldID || m.sessionID != mgr.Current().ID {
		t.Errorf("player shows session %q, manager has %q", m.sessionID, mgr.Current().ID)
	}
	if m.lastInput != "A new prompt" {
		t.Errorf("lastInput = %q", m.lastInput)
	}
}

func TestPlayerIgnoresStaleFrames(t *testing.T) {
	m, _ := newTestPlayer(t)
	m = press(m, tea.KeyMsg{Type: tea.KeyEnd})
	want := m.frame.State.VisibleOutputCount

	next, _ := m.Update(frameMsg{id: "someone-else"})
	m = next.(PlayerModel)
	if m.frame.State.VisibleOutputCount != want {
		t.Error("a frame from another session should not replace the view")
	}
}

func TestPlayerView(t *testing.T) {
	m, _ := newTestPlayer(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = next.(PlayerModel)

	view := m.View()
	for _, want := range []string{"Hello world", "space play/pause", "inline"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if lines := strings.Count(view, "\n") + 1; lines > 20 {
		t.Errorf("view has %d lines, window has 20", lines)
	}
}
