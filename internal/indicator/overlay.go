// Package indicator draws the typing-speed box over the host frame.
package indicator

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/verte-zerg/typetrack/internal/model"
)

// boldFontSize is the smallest font size rendered bold; terminals have a
// single glyph size.
const boldFontSize = 18

// Overlay is the single indicator surface. It is not safe for concurrent
// use; the host mutates it from its event loop.
type Overlay struct {
	visible  bool
	text     string
	pos      model.Point
	viewport model.Size
	style    lipgloss.Style
}

// New returns a hidden overlay styled with the default settings.
func New() *Overlay {
	o := &Overlay{}
	o.ApplySettings(model.DefaultSettings())
	return o
}

// Show makes the overlay visible.
func (o *Overlay) Show() { o.visible = true }

// Hide hides the overlay.
func (o *Overlay) Hide() { o.visible = false }

// Visible reports whether the overlay is shown.
func (o *Overlay) Visible() bool { return o.visible }

// SetText replaces the overlay text.
func (o *Overlay) SetText(text string) { o.text = text }

// Text returns the overlay text.
func (o *Overlay) Text() string { return o.text }

// MoveTo sets the top-left corner in viewport cells.
func (o *Overlay) MoveTo(p model.Point) { o.pos = p }

// Position returns the last position set by MoveTo.
func (o *Overlay) Position() model.Point { return o.pos }

// Size returns the rendered box size for the current text.
func (o *Overlay) Size() model.Size {
	box := o.box()
	return model.Size{
		Width:  float64(lipgloss.Width(box)),
		Height: float64(lipgloss.Height(box)),
	}
}

// Viewport returns the host viewport size.
func (o *Overlay) Viewport() model.Size { return o.viewport }

// SetViewport records the host viewport size.
func (o *Overlay) SetViewport(size model.Size) { o.viewport = size }

// ApplySettings restyles the overlay from a settings snapshot.
func (o *Overlay) ApplySettings(s model.Settings) {
	style := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(lipgloss.Color(s.TextColor)).
		Background(lipgloss.Color(blend(s.BackgroundColor, s.Opacity)))
	if s.FontSize >= boldFontSize {
		style = style.Bold(true)
	}
	o.style = style
}

// Render returns the styled box, or "" while hidden.
func (o *Overlay) Render() string {
	if !o.visible {
		return ""
	}
	return o.box()
}

func (o *Overlay) box() string {
	return o.style.Render(o.text)
}

// Composite draws the visible overlay onto base, a rendered frame. Rows
// missing from base are padded up to the viewport height; cells outside the
// frame are cropped.
func (o *Overlay) Composite(base string) string {
	box := o.Render()
	if box == "" {
		return base
	}
	lines := strings.Split(base, "\n")
	x := int(math.Round(o.pos.X))
	y := int(math.Round(o.pos.Y))
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	for len(lines) < int(o.viewport.Height) && len(lines) <= y {
		lines = append(lines, "")
	}
	for i, row := range strings.Split(box, "\n") {
		at := y + i
		if at >= len(lines) {
			break
		}
		lines[at] = overlayLine(lines[at], row, x, int(o.viewport.Width))
	}
	return strings.Join(lines, "\n")
}

func overlayLine(line, row string, x, maxWidth int) string {
	left := ansi.Truncate(line, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	rowWidth := ansi.StringWidth(row)
	if maxWidth > 0 && x+rowWidth > maxWidth {
		row = ansi.Truncate(row, maxWidth-x, "")
		rowWidth = ansi.StringWidth(row)
	}
	right := ansi.TruncateLeft(line, x+rowWidth, "")
	return left + "\x1b[0m" + row + right
}

// blend fades a #RRGGBB color toward black by opacity percent. Invalid
// colors are returned unchanged.
func blend(hex string, opacity int) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 100 {
		opacity = 100
	}
	return colorful.Color{}.BlendRgb(c, float64(opacity)/100).Hex()
}
