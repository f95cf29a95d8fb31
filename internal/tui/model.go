// Package tui hosts the typing-speed overlay in a Bubble Tea program.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typetrack/internal/indicator"
	"github.com/verte-zerg/typetrack/internal/keyfilter"
	"github.com/verte-zerg/typetrack/internal/logging"
	"github.com/verte-zerg/typetrack/internal/model"
	"github.com/verte-zerg/typetrack/internal/position"
	"github.com/verte-zerg/typetrack/internal/richeditor"
	"github.com/verte-zerg/typetrack/internal/session"
	"github.com/verte-zerg/typetrack/internal/stats"
)

// Mode selects the page the host renders.
type Mode int

// Host modes.
const (
	PageMode Mode = iota
	EditorMode
)

func (m Mode) String() string {
	if m == EditorMode {
		return "editor"
	}
	return "page"
}

const (
	maxFieldWidth = 60
	minFieldWidth = 12
	areaRows      = 4
	editorRows    = 10
	sampleLimit   = 40
	trendWindow   = 3
)

var (
	titleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	fieldStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E")).Padding(0, fieldPadding)
	focusedFieldStyle = fieldStyle.BorderForeground(lipgloss.Color("#F0F0F0"))
	focusedLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Underline(true)
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// SettingsSource returns the current settings snapshot.
type SettingsSource interface {
	Current() model.Settings
}

// Options configure the host model.
type Options struct {
	Mode     Mode
	Settings SettingsSource
	Logger   *slog.Logger
	// Clock overrides the event-loop clock; tests use a manual one.
	Clock  session.Clock
	Attach richeditor.Options
}

// SettingsMsg carries a pushed settings snapshot into the event loop.
type SettingsMsg struct {
	Settings model.Settings
}

type expireMsg struct {
	fire func()
}

type attachMsg struct {
	result richeditor.Result
	err    error
}

// Model implements the Bubble Tea overlay host.
type Model struct {
	ctx      context.Context
	mode     Mode
	settings SettingsSource
	log      *slog.Logger
	clock    session.Clock
	attach   richeditor.Options
	send     atomic.Pointer[func(tea.Msg)]

	width  int
	height int
	ready  atomic.Bool

	fields []field
	focus  int
	editor *areaField

	overlay *indicator.Overlay
	pointer *position.PointerTracker
	tracker *session.Tracker
	filter  func(keyfilter.KeyEvent) bool

	attachState string
	samples     *stats.Samples
	lastWPM     int
	hasLast     bool
}

// NewModel constructs the host. In editor mode the tracker is created only
// after the editor caret has been located.
func NewModel(ctx context.Context, opts Options) *Model {
	m := &Model{
		ctx:      ctx,
		mode:     opts.Mode,
		settings: opts.Settings,
		log:      logging.Component(opts.Logger, "tui"),
		clock:    opts.Clock,
		attach:   opts.Attach,
		overlay:  indicator.New(),
		pointer:  &position.PointerTracker{},
		samples:  stats.NewSamples(sampleLimit),
	}
	if m.clock == nil {
		m.clock = session.DispatchClock{Dispatch: m.dispatch}
	}
	m.overlay.ApplySettings(m.settings.Current())

	switch m.mode {
	case EditorMode:
		m.editor = newAreaField("Start writing your document...", editorRows)
		m.fields = []field{m.editor}
		m.filter = keyfilter.Editor{Settings: m.settings}.Accept
		m.attachState = "attaching"
	default:
		name := newInputField("Name")
		notes := newAreaField("Notes", areaRows)
		reset := &buttonField{label: "[ Clear ]"}
		reset.onPress = func() {
			name.input.Reset()
			notes.area.Reset()
		}
		m.fields = []field{name, notes, reset}
		m.filter = keyfilter.Page{Settings: m.settings}.Accept
		m.startTracker(position.NewPageResolver(position.Cells, m.pointer, position.CellLayout))
	}
	m.fields[0].Focus()
	return m
}

// SetSender wires program.Send so timer callbacks run on the event loop.
func (m *Model) SetSender(send func(tea.Msg)) {
	m.send.Store(&send)
}

func (m *Model) dispatch(fire func()) {
	send := m.send.Load()
	if send == nil {
		m.log.Warn("dropping timer callback before the program started")
		return
	}
	(*send)(expireMsg{fire: fire})
}

func (m *Model) startTracker(resolver position.Resolver) {
	m.tracker = session.NewTracker(m.overlay, resolver, m.settings, m.clock, m.log)
	m.tracker.OnReading(func(wpm int) {
		m.samples.Add(wpm)
	})
	m.tracker.OnExpire(func(final session.State) {
		if final.HasWPM {
			m.lastWPM = final.WPM
			m.hasLast = true
		}
		m.samples.Reset()
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.mode != EditorMode {
		return nil
	}
	return m.attachCmd()
}

func (m *Model) attachCmd() tea.Cmd {
	return func() tea.Msg {
		res, err := richeditor.Attach(m.ctx, richeditor.LocatorFunc(m.locateEditor), m.attach, m.log)
		return attachMsg{result: res, err: err}
	}
}

func (m *Model) locateEditor() (position.CaretSource, bool) {
	if !m.ready.Load() {
		return nil, false
	}
	return editorCaret{editor: m.editor}, true
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil
	case SettingsMsg:
		m.overlay.ApplySettings(msg.Settings)
		return m, nil
	case expireMsg:
		msg.fire()
		return m, nil
	case attachMsg:
		m.handleAttach(msg)
		return m, nil
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleAttach(msg attachMsg) {
	if msg.err != nil || msg.result.Outcome != richeditor.Attached {
		m.attachState = "unavailable"
		return
	}
	m.attachState = "attached"
	m.startTracker(position.NewEditorResolver(msg.result.Container, m.pointer, position.EditorCellLayout))
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return tea.Quit
	case tea.KeyTab:
		return m.moveFocus(1)
	case tea.KeyShiftTab:
		return m.moveFocus(-1)
	}
	target := m.fields[m.focus]
	cmd := target.Update(msg)
	ev := keyfilter.KeyEvent{Key: keyValue(msg), Target: target, Source: keyfilter.SourceDocument}
	if m.mode == EditorMode {
		ev.Source = keyfilter.SourceEditorSurface
	}
	if m.tracker != nil && m.filter(ev) {
		m.tracker.OnCharacterTyped(target)
	}
	return cmd
}

// keyValue maps a key message to the value a page key event would carry.
// Pasted and alt-modified runes never map to a single character.
func keyValue(msg tea.KeyMsg) string {
	switch {
	case msg.Type == tea.KeySpace && !msg.Alt:
		return " "
	case msg.Type == tea.KeyRunes && !msg.Alt && !msg.Paste && len(msg.Runes) == 1:
		return string(msg.Runes[0])
	default:
		return msg.String()
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := model.Point{X: float64(msg.X), Y: float64(msg.Y)}
	m.pointer.Move(p)
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		for i, f := range m.fields {
			if r, ok := f.BoundingRect(); ok && contains(r, p) {
				m.setFocus(i)
				break
			}
		}
	}
	if m.tracker != nil {
		m.tracker.OnPointerMoved(m.fields[m.focus])
	}
}

func contains(r model.Rect, p model.Point) bool {
	return p.X >= r.Left && p.X < r.Right() && p.Y >= r.Top && p.Y < r.Bottom()
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	n := len(m.fields)
	return m.setFocus(((m.focus+delta)%n + n) % n)
}

func (m *Model) setFocus(i int) tea.Cmd {
	if i == m.focus {
		return nil
	}
	m.fields[m.focus].Blur()
	m.focus = i
	return m.fields[i].Focus()
}

// layout assigns every field its box. Fields stack below a one-row header;
// the last row is the footer.
func (m *Model) layout() {
	width := min(maxFieldWidth, m.width)
	if width < minFieldWidth {
		width = minFieldWidth
	}
	top := 1.0
	for _, f := range m.fields {
		height := 1 + 2*fieldBorder
		switch v := f.(type) {
		case *areaField:
			height = v.rows + 2*fieldBorder
		case *buttonField:
			f.SetRect(model.Rect{Left: 0, Top: top, Width: float64(lipgloss.Width(v.label) + 2*fieldInset), Height: float64(height)})
			top += float64(height)
			continue
		}
		f.SetRect(model.Rect{Left: 0, Top: top, Width: float64(width), Height: float64(height)})
		top += float64(height)
	}
	m.overlay.SetViewport(model.Size{Width: float64(m.width), Height: float64(m.height)})
	m.ready.Store(true)
}

// View implements tea.Model.
func (m *Model) View() string {
	rows := []string{titleStyle.Render(m.title())}
	for i, f := range m.fields {
		style := fieldStyle
		if i == m.focus {
			style = focusedFieldStyle
		}
		if r, ok := f.BoundingRect(); ok {
			style = style.Width(int(r.Width) - 2*fieldBorder)
		}
		rows = append(rows, style.Render(f.View()))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if m.height > 0 {
		lines := strings.Split(body, "\n")
		for len(lines) < m.height-1 {
			lines = append(lines, "")
		}
		if len(lines) > m.height-1 {
			lines = lines[:max(m.height-1, 0)]
		}
		body = strings.Join(append(lines, m.renderFooter()), "\n")
	}
	return m.overlay.Composite(body)
}

func (m *Model) title() string {
	if m.mode == EditorMode {
		return "typetrack · editor"
	}
	return "typetrack · type in any field"
}

func (m *Model) renderFooter() string {
	s := m.settings.Current()
	segments := []string{fmt.Sprintf("%s · %s", m.mode, s.Anchor)}
	if !s.Enabled {
		segments = append(segments, "paused")
	}
	if m.mode == EditorMode {
		segments = append(segments, "editor "+m.attachState)
	}
	if m.samples.Len() > 0 {
		segments = append(segments, "live "+m.samples.Trend(trendWindow))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("last %d wpm", m.lastWPM))
	}
	segments = append(segments, "tab next · esc quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}
