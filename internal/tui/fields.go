package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typetrack/internal/model"
	"github.com/verte-zerg/typetrack/internal/position"
)

// Every field is drawn inside a rounded border with one cell of horizontal
// padding, so content starts two cells in from the box edge.
const (
	fieldBorder  = 1
	fieldPadding = 1
	fieldInset   = fieldBorder + fieldPadding
)

// field is a focusable element of the host page.
type field interface {
	position.Element
	Focus() tea.Cmd
	Blur()
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetRect(r model.Rect)
}

// placed carries the on-screen box every field shares.
type placed struct {
	rect model.Rect
	laid bool
}

func (p *placed) SetRect(r model.Rect) {
	p.rect = r
	p.laid = true
}

func (p *placed) BoundingRect() (model.Rect, bool) {
	return p.rect, p.laid
}

func (p *placed) innerWidth() int {
	w := int(p.rect.Width) - 2*fieldInset
	if w < 1 {
		w = 1
	}
	return w
}

// inputField is a single-line text input.
type inputField struct {
	placed
	input textinput.Model
}

func newInputField(placeholder string) *inputField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	return &inputField{input: ti}
}

func (f *inputField) Kind() position.Kind { return position.KindInput }
func (f *inputField) InputType() string   { return "text" }
func (f *inputField) Value() string       { return f.input.Value() }
func (f *inputField) SelectionEnd() int   { return f.input.Position() }

func (f *inputField) Metrics() position.BoxMetrics {
	return position.BoxMetrics{
		PaddingLeft: fieldPadding,
		BorderLeft:  fieldBorder,
		BorderTop:   fieldBorder,
		ScrollLeft:  f.scrollLeft(),
	}
}

// scrollLeft approximates how far the input has scrolled to keep the
// cursor cell on screen.
func (f *inputField) scrollLeft() float64 {
	runes := []rune(f.input.Value())
	end := f.input.Position()
	if end > len(runes) {
		end = len(runes)
	}
	width := runewidth.StringWidth(string(runes[:end]))
	visible := f.innerWidth() - 1
	if width <= visible {
		return 0
	}
	return float64(width - visible)
}

func (f *inputField) SetRect(r model.Rect) {
	f.placed.SetRect(r)
	f.input.Width = f.innerWidth() - 1
}

func (f *inputField) Focus() tea.Cmd { return f.input.Focus() }
func (f *inputField) Blur()          { f.input.Blur() }

func (f *inputField) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (f *inputField) View() string { return f.input.View() }

// areaField is a multi-line text area.
type areaField struct {
	placed
	area textarea.Model
	rows int
}

func newAreaField(placeholder string, rows int) *areaField {
	ta := textarea.New()
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.Placeholder = placeholder
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.SetHeight(rows)
	return &areaField{area: ta, rows: rows}
}

func (f *areaField) Kind() position.Kind { return position.KindTextArea }
func (f *areaField) InputType() string   { return "" }
func (f *areaField) Value() string       { return f.area.Value() }

// SelectionEnd converts the cursor row and column into a rune offset.
func (f *areaField) SelectionEnd() int {
	lines := strings.Split(f.area.Value(), "\n")
	row := f.area.Line()
	if row >= len(lines) {
		row = len(lines) - 1
	}
	offset := 0
	for _, line := range lines[:row] {
		offset += len([]rune(line)) + 1
	}
	return offset + min(f.column(), len([]rune(lines[row])))
}

func (f *areaField) column() int {
	info := f.area.LineInfo()
	return info.StartColumn + info.ColumnOffset
}

func (f *areaField) Metrics() position.BoxMetrics {
	scroll := f.area.Line() - (f.rows - 1)
	if scroll < 0 {
		scroll = 0
	}
	return position.BoxMetrics{
		PaddingLeft: fieldPadding,
		BorderLeft:  fieldBorder,
		BorderTop:   fieldBorder,
		ScrollTop:   float64(scroll),
		LineHeight:  1,
	}
}

func (f *areaField) SetRect(r model.Rect) {
	f.placed.SetRect(r)
	f.area.SetWidth(f.innerWidth())
}

func (f *areaField) Focus() tea.Cmd { return f.area.Focus() }
func (f *areaField) Blur()          { f.area.Blur() }

func (f *areaField) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.area, cmd = f.area.Update(msg)
	return cmd
}

func (f *areaField) View() string { return f.area.View() }

// caret returns the on-screen cell of the text cursor.
func (f *areaField) caret() (model.Rect, bool) {
	if !f.laid {
		return model.Rect{}, false
	}
	m := f.Metrics()
	lines := strings.Split(f.area.Value(), "\n")
	row := min(f.area.Line(), len(lines)-1)
	col := min(f.column(), len([]rune(lines[row])))
	x := f.rect.Left + fieldInset + float64(runewidth.StringWidth(string([]rune(lines[row])[:col])))
	y := f.rect.Top + fieldBorder + float64(row) - m.ScrollTop
	return model.Rect{Left: x, Top: y, Width: 1, Height: 1}, true
}

// buttonField is a focusable control that does not accept text.
type buttonField struct {
	placed
	label   string
	focused bool
	onPress func()
}

func (f *buttonField) Kind() position.Kind { return position.KindOther }

func (f *buttonField) Focus() tea.Cmd {
	f.focused = true
	return nil
}

func (f *buttonField) Blur() { f.focused = false }

func (f *buttonField) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !f.focused {
		return nil
	}
	if (key.Type == tea.KeyEnter || key.Type == tea.KeySpace) && f.onPress != nil {
		f.onPress()
	}
	return nil
}

func (f *buttonField) View() string {
	if f.focused {
		return focusedLabelStyle.Render(f.label)
	}
	return f.label
}

// caretElement is the caret a rich editor maintains for itself.
type caretElement struct {
	editor *areaField
}

func (c caretElement) Kind() position.Kind { return position.KindCaret }

func (c caretElement) BoundingRect() (model.Rect, bool) {
	return c.editor.caret()
}

// editorCaret exposes the editor caret once the editor has been laid out.
type editorCaret struct {
	editor *areaField
}

func (e editorCaret) Caret() (position.Element, bool) {
	if !e.editor.laid {
		return nil, false
	}
	return caretElement{editor: e.editor}, true
}
