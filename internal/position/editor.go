package position

import "github.com/verte-zerg/typetrack/internal/model"

// EditorResolver places the indicator for a rich editor that maintains its
// own caret element. The request target is ignored; every element-relative
// mode hangs off the editor caret.
type EditorResolver struct {
	source  CaretSource
	pointer *PointerTracker
	layout  Layout
}

// NewEditorResolver builds a rich-editor resolver.
func NewEditorResolver(source CaretSource, pointer *PointerTracker, layout Layout) *EditorResolver {
	return &EditorResolver{source: source, pointer: pointer, layout: layout}
}

// Resolve implements Resolver.
func (r *EditorResolver) Resolve(req Request) model.Point {
	return resolve(r, r.pointer, r.layout, req)
}

func (r *EditorResolver) caretRect() (model.Rect, bool) {
	if r.source == nil {
		return model.Rect{}, false
	}
	el, ok := r.source.Caret()
	if !ok || el == nil {
		return model.Rect{}, false
	}
	return el.BoundingRect()
}

func (r *EditorResolver) caret(Element) (model.Point, bool) {
	rect, ok := r.caretRect()
	if !ok {
		return model.Point{}, false
	}
	return model.Point{X: rect.Left, Y: rect.Top}, true
}

func (r *EditorResolver) anchorRect(Element) (model.Rect, bool) {
	return r.caretRect()
}
