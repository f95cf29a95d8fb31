package position

import "github.com/verte-zerg/typetrack/internal/model"

// PageResolver places the indicator on a generic page, measuring the caret
// inside whichever text-entry element has focus.
type PageResolver struct {
	measurer Measurer
	pointer  *PointerTracker
	layout   Layout
}

// NewPageResolver builds a generic-page resolver.
func NewPageResolver(m Measurer, pointer *PointerTracker, layout Layout) *PageResolver {
	if m == nil {
		m = Cells
	}
	return &PageResolver{measurer: m, pointer: pointer, layout: layout}
}

// Resolve implements Resolver.
func (r *PageResolver) Resolve(req Request) model.Point {
	return resolve(r, r.pointer, r.layout, req)
}

func (r *PageResolver) caret(target Element) (model.Point, bool) {
	return CaretPoint(target, r.measurer)
}

func (r *PageResolver) anchorRect(target Element) (model.Rect, bool) {
	if target == nil {
		return model.Rect{}, false
	}
	return target.BoundingRect()
}
