package position

import "github.com/verte-zerg/typetrack/internal/model"

// PointerTracker remembers the last pointer position across resolutions.
type PointerTracker struct {
	last model.Point
	seen bool
}

// Move records a pointer-move event.
func (t *PointerTracker) Move(p model.Point) {
	t.last = p
	t.seen = true
}

// Last returns the last known pointer position, if any was seen.
func (t *PointerTracker) Last() (model.Point, bool) {
	return t.last, t.seen
}
