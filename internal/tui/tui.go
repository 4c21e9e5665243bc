// Package tui renders the login screen: a credential form centered over an
// optional background animation captured from an external command.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/pink10000/rintty/internal/animation"
	"github.com/pink10000/rintty/internal/auth"
	"github.com/pink10000/rintty/internal/config"
	"github.com/pink10000/rintty/internal/logging"
	"github.com/pink10000/rintty/internal/vt"
)

const (
	formHeight   = 8
	minFormWidth = 30
)

// Options configures one run of the login screen.
type Options struct {
	// Animation is the background command line; empty disables it.
	Animation string
	// ShowPassword renders the password in plain text instead of masking.
	ShowPassword bool
	// PAMService names the PAM stack used for verification.
	PAMService string
	// TickInterval is the animation drain/redraw cadence.
	TickInterval time.Duration
	// TestMode allows leaving the form with Esc/Ctrl+C. On a real TTY the
	// form never exits; it loops back after a failed attempt.
	TestMode bool

	Logger logging.Logger
}

// Result reports how the login screen ended.
type Result struct {
	Authenticated bool
	Username      string
}

type tickMsg time.Time

type authMsg struct {
	username string
	err      error
}

type focusField int

const (
	focusUsername focusField = iota
	focusPassword
)

type model struct {
	opts Options

	width  int
	height int
	ready  bool

	username textinput.Model
	password textinput.Model
	focus    focusField

	anim        *animation.Animation
	animStarted bool

	authBusy bool
	notice   string

	result Result
}

func newModel(opts Options) *model {
	if opts.Logger == nil {
		opts.Logger = logging.NoOp{}
	}
	if opts.PAMService == "" {
		opts.PAMService = "login"
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 33 * time.Millisecond
	}

	username := textinput.New()
	username.CharLimit = 256
	username.Focus()

	password := textinput.New()
	password.CharLimit = 256
	if !opts.ShowPassword {
		password.EchoMode = textinput.EchoPassword
		password.EchoCharacter = '*'
	}

	return &model{
		opts:     opts,
		username: username,
		password: password,
		focus:    focusUsername,
	}
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func authenticate(service, username, password string) tea.Cmd {
	return func() tea.Msg {
		return authMsg{username: username, err: auth.Authenticate(service, username, password)}
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick(m.opts.TickInterval))
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// The animation's pseudo-terminal is sized once, at the first known
		// geometry. Later size changes clip instead of resizing.
		if !m.animStarted {
			m.animStarted = true
			if command, args := config.SplitCommand(m.opts.Animation); command != "" {
				m.anim = animation.New(m.opts.Logger, command, args, m.width, m.height)
			}
		}
		return m, nil

	case tickMsg:
		m.anim.Update()
		return m, tick(m.opts.TickInterval)

	case authMsg:
		m.authBusy = false
		if msg.err == nil {
			m.opts.Logger.Info("login succeeded", logging.Field("user", msg.username))
			m.result = Result{Authenticated: true, Username: msg.username}
			return m, tea.Quit
		}
		m.opts.Logger.Warn("login failed",
			logging.Field("user", msg.username), logging.Field("err", msg.err))
		m.notice = "Login incorrect"
		m.username.Reset()
		m.password.Reset()
		m.setFocus(focusUsername)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.updateFields(msg)
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.authBusy {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		if m.opts.TestMode {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyTab, tea.KeyDown, tea.KeyShiftTab, tea.KeyUp:
		m.setFocus(m.focus.next())
		return m, nil

	case tea.KeyEnter:
		user := strings.TrimSpace(m.username.Value())
		pass := m.password.Value()
		if user == "" {
			m.setFocus(focusUsername)
			return m, nil
		}
		if pass == "" {
			m.setFocus(focusPassword)
			return m, nil
		}
		m.authBusy = true
		m.notice = ""
		return m, authenticate(m.opts.PAMService, user, pass)
	}

	return m, m.updateFields(msg)
}

func (m *model) updateFields(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.username, cmd = m.username.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (f focusField) next() focusField {
	if f == focusUsername {
		return focusPassword
	}
	return focusUsername
}

func (m *model) setFocus(f focusField) {
	m.focus = f
	if f == focusUsername {
		m.username.Focus()
		m.password.Blur()
		return
	}
	m.password.Focus()
	m.username.Blur()
}

func (m *model) View() string {
	if !m.ready {
		return ""
	}
	frame := vt.NewBuffer(m.width, m.height)
	m.anim.Render(frame)
	m.drawForm(frame)
	return renderFrame(frame)
}

// formRect centers the login panel, mirroring the 15%-but-at-least-30-cells
// width rule of the reference layout.
func (m *model) formRect() (x, y, w, h int) {
	w = m.width * 15 / 100
	if w < minFormWidth {
		w = minFormWidth
	}
	if w > m.width {
		w = m.width
	}
	h = formHeight
	x = (m.width - w) / 2
	y = (m.height - h) / 2
	if y < 0 {
		y = 0
	}
	return x, y, w, h
}

func (m *model) drawForm(frame *vt.Buffer) {
	fx, fy, fw, fh := m.formRect()

	base := vt.DefaultStyle()
	focused := vt.Style{Fg: vt.ColorMagenta, Bg: vt.ColorDefault}

	drawBox(frame, fx, fy, fw, fh, base)
	drawText(frame, fx+2, fy, fw-4, " Login ", base)

	innerX := fx + 2
	innerW := fw - 4

	m.drawField(frame, innerX, fy+1, innerW, "Username",
		m.username.Value(), m.username.Position(), m.focus == focusUsername, base, focused)
	m.drawField(frame, innerX, fy+4, innerW, "Password",
		m.displayPassword(), m.password.Position(), m.focus == focusPassword, base, focused)

	if notice := m.currentNotice(); notice != "" {
		style := vt.Style{Fg: vt.ColorRed, Bg: vt.ColorDefault}
		if m.authBusy {
			style.Fg = vt.ColorYellow
		}
		nx := fx + (fw-len(notice))/2
		if nx < 0 {
			nx = 0
		}
		drawText(frame, nx, fy+fh, len(notice), notice, style)
	}
}

func (m *model) currentNotice() string {
	if m.authBusy {
		return "Authenticating..."
	}
	return m.notice
}

func (m *model) displayPassword() string {
	value := m.password.Value()
	if m.opts.ShowPassword {
		return value
	}
	return strings.Repeat("*", len([]rune(value)))
}

// drawField renders one bordered three-row input box with its label in the
// top border and a reverse-video cursor cell when focused.
func (m *model) drawField(frame *vt.Buffer, x, y, w int, label, value string, cursor int, active bool, base, focused vt.Style) {
	style := base
	if active {
		style = focused
	}
	drawBox(frame, x, y, w, 3, style)
	drawText(frame, x+1, y, w-2, label, style)

	capacity := w - 2
	visible := lastN(value, capacity)
	drawText(frame, x+1, y+1, capacity, visible, base)

	if active && !m.authBusy {
		offset := len([]rune(value)) - len([]rune(visible))
		col := cursor - offset
		if col >= 0 && col < capacity {
			cur := frame.Cell(x+1+col, y+1)
			cur.Style.Attrs |= vt.AttrReverse
			frame.SetCell(x+1+col, y+1, cur)
		}
	}
}

// Run drives the login screen until a successful authentication, or until
// the user leaves it in test mode. The background animation's child
// process is torn down on every path out, including program errors.
func Run(ctx context.Context, opts Options) (Result, error) {
	// Pin the color profile up front: the captured screen only ever needs
	// the base ANSI palette, and profile probing would write queries into
	// the terminal the form owns.
	lipgloss.SetColorProfile(termenv.ANSI)
	lipgloss.SetHasDarkBackground(true)

	m := newModel(opts)
	defer func() { m.anim.Close() }()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	out, err := p.Run()
	if err != nil {
		return Result{}, err
	}
	if final, ok := out.(*model); ok {
		return final.result, nil
	}
	return m.result, nil
}
