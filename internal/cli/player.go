package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/camera"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/canvas"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/sink"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/session"
)

// Player chrome.
const (
	playerChromeLines = 4 // prompt, blank, status, help
	orbitStep         = math.Pi / 12
	zoomStep          = 1.15
	minSpeed          = 0.25
	maxSpeed          = 8
)

var (
	playerPromptStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	playerInputStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	playerErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Messages
// =============================================================================

// frameMsg reports a new frame from the driver of session id.
type frameMsg struct{ id string }

// submittedMsg carries the result of a submission.
type submittedMsg struct {
	sess *session.Session
	err  error
}

// frameNotifier coalesces driver frames into at most one pending wake-up,
// tagged with the session that produced it.
type frameNotifier chan string

func newFrameNotifier() frameNotifier { return make(frameNotifier, 1) }

// sink is the session.FrameSink. It never blocks the driver.
func (n frameNotifier) sink(id string, _ playback.Frame) {
	for {
		select {
		case n <- id:
			return
		default:
		}
		select {
		case <-n:
		default:
		}
	}
}

func (n frameNotifier) wait() tea.Cmd {
	return func() tea.Msg { return frameMsg{id: <-n} }
}

// =============================================================================
// PlayerModel - Interactive animation player
// =============================================================================

// PlayerModel is the bubbletea model for the terminal player. It renders the
// live session of a session.Manager and forwards transport keys to its
// driver.
type PlayerModel struct {
	ctx    context.Context
	mgr    *session.Manager
	notify frameNotifier

	sessionID string
	frame     playback.Frame
	hasFrame  bool

	cam    camera.Camera
	axes   bool
	canvas *canvas.Canvas
	styles map[canvas.Class]lipgloss.Style

	editing    bool
	input      textinput.Model
	spin       spinner.Model
	lastInput  string
	submitting bool
	status     string
	err        error
}

// NewPlayerModel creates a player for mgr. Frames published by mgr's
// drivers must be routed to notify.sink.
func NewPlayerModel(ctx context.Context, mgr *session.Manager, notify frameNotifier) PlayerModel {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "type a prompt and press enter"
	input.CharLimit = apperrors.MaxInputRunes
	input.TextStyle = playerInputStyle

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = styleIconSpinner

	m := PlayerModel{
		ctx:    ctx,
		mgr:    mgr,
		notify: notify,
		cam:    camera.Default(),
		axes:   true,
		canvas: canvas.New(80, 20),
		styles: sink.TextStyles(),
		input:  input,
		spin:   spin,
	}
	if sess := mgr.Current(); sess != nil {
		m.adopt(sess)
	} else {
		m.editing = true
		m.input.Focus()
	}
	return m
}

func (m PlayerModel) Init() tea.Cmd {
	return tea.Batch(m.notify.wait(), textinput.Blink)
}

func (m PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if sess := m.mgr.Current(); sess != nil && msg.id == sess.ID && msg.id == m.sessionID {
			m.frame = sess.Driver.Frame()
			m.hasFrame = true
		}
		return m, m.notify.wait()

	case submittedMsg:
		m.submitting = false
		if errors.Is(msg.err, session.ErrSuperseded) {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.adopt(msg.sess)
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.canvas = canvas.New(max(msg.Width, 10), max(msg.Height-playerChromeLines, 3))
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updatePrompt(msg)
		}
		return m.updateTransport(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updatePrompt handles submit and cancel; every other key edits the line.
func (m PlayerModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.sessionID != "" {
			m.editing = false
			m.input.Blur()
		}
		return m, nil
	case tea.KeyEnter:
		text, err := apperrors.NormalizeInput(m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.editing = false
		m.input.Blur()
		m.submitting = true
		m.lastInput = text
		return m, tea.Batch(m.submit(text), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateTransport maps keys to driver and camera controls.
func (m PlayerModel) updateTransport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "i", "/":
		m.editing = true
		m.input.SetValue(m.lastInput)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "a":
		m.cam.Orbit(-orbitStep, 0)
	case "d":
		m.cam.Orbit(orbitStep, 0)
	case "w":
		m.cam.Orbit(0, -orbitStep)
	case "s":
		m.cam.Orbit(0, orbitStep)
	case "z":
		m.cam.Zoom(1 / zoomStep)
	case "x":
		m.cam.Zoom(zoomStep)
	case "c":
		m.cam = camera.Default()
	case "g":
		m.axes = !m.axes
	}

	sess := m.mgr.Current()
	if sess == nil || sess.ID != m.sessionID {
		return m, nil
	}
	d := sess.Driver
	var err error
	switch msg.String() {
	case " ", "p":
		d.Toggle()
	case "r":
		d.Reset()
	case "left", "h":
		err = d.Seek(max(d.State().VisibleOutputCount-1, 0))
	case "right", "l":
		err = d.Seek(min(d.State().VisibleOutputCount+1, d.Total()))
	case "home", "0":
		err = d.Seek(0)
	case "end", "$":
		err = d.Seek(d.Total())
	case "+", "=":
		err = d.SetSpeed(min(d.State().Speed*2, maxSpeed))
	case "-", "_":
		err = d.SetSpeed(max(d.State().Speed/2, minSpeed))
	}
	m.err = err
	m.frame = d.Frame()
	m.hasFrame = true
	return m, nil
}

func (m PlayerModel) submit(text string) tea.Cmd {
	return func() tea.Msg {
		sess, err := m.mgr.Submit(m.ctx, text)
		return submittedMsg{sess: sess, err: err}
	}
}

// adopt makes sess the displayed session.
func (m *PlayerModel) adopt(sess *session.Session) {
	m.sessionID = sess.ID
	m.lastInput = sess.Input
	m.frame = sess.Driver.Frame()
	m.hasFrame = true
	m.status = fmt.Sprintf("%s · %s", sess.Source, statsLine(len(sess.Tokens), sess.Driver.Total()))
	if sess.Malformed > 0 {
		m.status += fmt.Sprintf(" · %d malformed", sess.Malformed)
	}
	if sess.Cached {
		m.status += " · " + iconCached
	}
}

func (m PlayerModel) View() string {
	var b strings.Builder

	b.WriteString(playerPromptStyle.Render(iconInfo + " "))
	switch {
	case m.editing:
		b.WriteString(m.input.View())
	case m.submitting:
		b.WriteString(m.spin.View() + " " + StyleDim.Render("fetching "+m.lastInput+"..."))
	default:
		b.WriteString(playerInputStyle.Render(m.lastInput))
	}
	b.WriteString("\n")

	if m.hasFrame {
		c := sink.RenderText(m.frame, m.canvas.Width(), m.canvas.Height(),
			sink.WithTextCamera(m.cam),
			sink.WithTextAxes(m.axes),
			sink.WithCanvas(m.canvas))
		b.WriteString(c.Styled(m.styles))
	} else {
		b.WriteString(StyleDim.Render("no data yet: type a prompt and press enter"))
		b.WriteString(strings.Repeat("\n", max(m.canvas.Height()-1, 0)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(m.helpLine()))
	return b.String()
}

func (m PlayerModel) statusLine() string {
	if m.err != nil {
		return playerErrorStyle.Render(iconError + " " + apperrors.UserMessage(m.err))
	}
	if !m.hasFrame {
		return StyleDim.Render(m.status)
	}
	st := m.frame.State
	mode := "paused"
	if st.Playing {
		mode = "playing"
	}
	parts := []string{
		StyleNumber.Render(fmt.Sprintf("%d/%d", st.VisibleOutputCount, m.frame.Total)),
		fmt.Sprintf("%s %3.0f%%", st.Phase, st.Progress*100),
		mode,
		fmt.Sprintf("%gx", st.Speed),
	}
	if m.status != "" {
		parts = append(parts, StyleDim.Render(m.status))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func (m PlayerModel) helpLine() string {
	if m.editing {
		return "enter submit  ←/→ move  ctrl+w delete word  ctrl+u clear  esc cancel  ctrl+c quit"
	}
	return "space play/pause  ←/→ step  home/end  +/- speed  r reset  wasd orbit  z/x zoom  g axes  i input  q quit"
}
