package position

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typetrack/internal/model"
)

// Measurer reports the rendered width of text in a given font.
type Measurer interface {
	Measure(text string, font model.Font) float64
}

// Monospace measures text on a fixed advance grid. Each terminal cell is
// Advance times the font size wide; a zero Advance or font size measures in
// cells. East Asian wide runes take two cells.
type Monospace struct {
	Advance float64
}

// Cells measures in terminal cells.
var Cells = Monospace{}

// Measure implements Measurer.
func (m Monospace) Measure(text string, font model.Font) float64 {
	if text == "" {
		return 0
	}
	cell := 1.0
	if m.Advance > 0 && font.Size > 0 {
		cell = m.Advance * font.Size
	}
	width := float64(runewidth.StringWidth(text)) * cell
	if font.LetterSpacing != 0 {
		width += font.LetterSpacing * float64(utf8.RuneCountInString(text))
	}
	return width
}

// CaretPoint locates the text caret inside el.
//
// Text controls are measured with a mirror: the value up to the selection
// end is measured in the control's font and offset by the content box.
// Contenteditable regions use their collapsed selection box, falling back to
// the element box when the selection is degenerate. Caret elements report
// their own box.
func CaretPoint(el Element, m Measurer) (model.Point, bool) {
	if el == nil {
		return model.Point{}, false
	}
	switch v := el.(type) {
	case TextControl:
		return textControlCaret(v, m)
	case Editable:
		if sel, ok := v.SelectionRect(); ok && !sel.Degenerate() {
			return model.Point{X: sel.Left, Y: sel.Top}, true
		}
		rect, ok := v.BoundingRect()
		if !ok {
			return model.Point{}, false
		}
		return model.Point{X: rect.Left, Y: rect.Top}, true
	}
	if el.Kind() == KindCaret {
		rect, ok := el.BoundingRect()
		if !ok {
			return model.Point{}, false
		}
		return model.Point{X: rect.Left, Y: rect.Top}, true
	}
	return model.Point{}, false
}

func textControlCaret(tc TextControl, m Measurer) (model.Point, bool) {
	rect, ok := tc.BoundingRect()
	if !ok {
		return model.Point{}, false
	}
	if m == nil {
		m = Cells
	}
	runes := []rune(tc.Value())
	end := tc.SelectionEnd()
	if end < 0 {
		end = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	prefix := string(runes[:end])
	metrics := tc.Metrics()

	y := rect.Top
	if tc.Kind() == KindTextArea && metrics.LineHeight > 0 {
		row := strings.Count(prefix, "\n")
		if idx := strings.LastIndexByte(prefix, '\n'); idx >= 0 {
			prefix = prefix[idx+1:]
		}
		y = rect.Top + metrics.BorderTop + metrics.PaddingTop + float64(row)*metrics.LineHeight - metrics.ScrollTop
	}
	x := rect.Left + metrics.PaddingLeft + metrics.BorderLeft + m.Measure(prefix, metrics.Font) - metrics.ScrollLeft
	return model.Point{X: x, Y: y}, true
}
