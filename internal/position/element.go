// Package position resolves where the typing-speed indicator is drawn.
//
// Hosts describe their page through the Element interfaces below; a
// Resolver turns the configured anchor mode plus the element that is
// receiving input into viewport coordinates.
package position

import "github.com/verte-zerg/typetrack/internal/model"

// Kind classifies page elements.
type Kind int

// Element kinds.
const (
	KindOther Kind = iota
	KindInput
	KindTextArea
	KindContentEditable
	KindCaret
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTextArea:
		return "textarea"
	case KindContentEditable:
		return "contenteditable"
	case KindCaret:
		return "caret"
	default:
		return "other"
	}
}

// Element is the geometry view of a page element.
type Element interface {
	Kind() Kind
	// BoundingRect reports false when the element has no layout yet.
	BoundingRect() (model.Rect, bool)
}

// BoxMetrics describes the content box and font of a text control.
type BoxMetrics struct {
	PaddingLeft float64
	PaddingTop  float64
	BorderLeft  float64
	BorderTop   float64
	ScrollLeft  float64
	ScrollTop   float64
	// LineHeight enables multi-line caret placement for textareas.
	LineHeight float64
	Font       model.Font
}

// TextControl is a native single-line input or a textarea.
type TextControl interface {
	Element
	InputType() string
	Value() string
	// SelectionEnd is a rune offset into Value.
	SelectionEnd() int
	Metrics() BoxMetrics
}

// Editable is a contenteditable region with a live selection.
type Editable interface {
	Element
	// SelectionRect returns the selection collapsed to its end point.
	SelectionRect() (model.Rect, bool)
}

// CaretSource exposes the caret element a rich editor maintains.
type CaretSource interface {
	Caret() (Element, bool)
}
