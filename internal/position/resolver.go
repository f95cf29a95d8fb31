package position

import "github.com/verte-zerg/typetrack/internal/model"

// Request is everything a resolver needs for one placement.
type Request struct {
	Mode model.AnchorMode
	// Target is the element receiving input; it may be nil.
	Target   Element
	Viewport model.Size
	// Box is the indicator size used for corner placement and clamping.
	Box model.Size
}

// Resolver turns an anchor mode and input context into indicator coordinates.
// Resolve has no side effects: equal requests give equal points.
type Resolver interface {
	Resolve(req Request) model.Point
}

// Layout holds the distances used by every strategy.
type Layout struct {
	// Margin is the horizontal and bottom distance of corner placements.
	Margin float64
	// TopMargin is the distance of top corners from the viewport top.
	TopMargin float64
	// AboveGap is how far above the anchor box the indicator sits.
	AboveGap float64
	// BelowGap is how far below the anchor box the indicator sits.
	BelowGap float64
	// CaretDX and CaretDY shift caret and pointer placements right and up.
	CaretDX float64
	CaretDY float64
}

// PixelLayout matches a browser page measured in CSS pixels.
var PixelLayout = Layout{Margin: 10, TopMargin: 10, AboveGap: 40, BelowGap: 20, CaretDX: 10, CaretDY: 30}

// EditorPixelLayout keeps top corners clear of a rich editor toolbar.
var EditorPixelLayout = Layout{Margin: 10, TopMargin: 60, AboveGap: 40, BelowGap: 20, CaretDX: 10, CaretDY: 30}

// CellLayout matches a terminal screen measured in cells.
var CellLayout = Layout{Margin: 1, TopMargin: 0, AboveGap: 1, BelowGap: 0, CaretDX: 1, CaretDY: 1}

// EditorCellLayout keeps top corners clear of a one-row editor header.
var EditorCellLayout = Layout{Margin: 1, TopMargin: 1, AboveGap: 1, BelowGap: 0, CaretDX: 1, CaretDY: 1}

// strategy supplies the variant-specific geometry reads.
type strategy interface {
	caret(target Element) (model.Point, bool)
	anchorRect(target Element) (model.Rect, bool)
}

func resolve(s strategy, pointer *PointerTracker, l Layout, req Request) model.Point {
	var (
		p  model.Point
		ok bool
	)
	switch req.Mode {
	case model.AnchorTextCursor:
		var c model.Point
		if c, ok = s.caret(req.Target); ok {
			p = model.Point{X: c.X + l.CaretDX, Y: c.Y - l.CaretDY}
		}
	case model.AnchorMouse:
		if pointer != nil {
			var c model.Point
			if c, ok = pointer.Last(); ok {
				p = model.Point{X: c.X + l.CaretDX, Y: c.Y - l.CaretDY}
			}
		}
	case model.AnchorAbove:
		var r model.Rect
		if r, ok = s.anchorRect(req.Target); ok {
			p = model.Point{X: r.Left, Y: r.Top - l.AboveGap}
		}
	case model.AnchorBottom:
		var r model.Rect
		if r, ok = s.anchorRect(req.Target); ok {
			p = model.Point{X: r.Left, Y: r.Bottom() + l.BelowGap}
		}
	case model.AnchorTopLeft, model.AnchorTopRight, model.AnchorBottomLeft, model.AnchorBottomRight:
		return clamp(corner(req.Mode, l, req), req)
	}
	if !ok {
		p = fallback(req.Mode, l, req)
	}
	return clamp(p, req)
}

func corner(mode model.AnchorMode, l Layout, req Request) model.Point {
	left := l.Margin
	right := req.Viewport.Width - l.Margin - req.Box.Width
	top := l.TopMargin
	bottom := req.Viewport.Height - l.Margin - req.Box.Height
	switch mode {
	case model.AnchorTopLeft:
		return model.Point{X: left, Y: top}
	case model.AnchorBottomLeft:
		return model.Point{X: left, Y: bottom}
	case model.AnchorBottomRight:
		return model.Point{X: right, Y: bottom}
	default:
		return model.Point{X: right, Y: top}
	}
}

func fallback(mode model.AnchorMode, l Layout, req Request) model.Point {
	if mode == model.AnchorBottom {
		return corner(model.AnchorBottomRight, l, req)
	}
	return corner(model.AnchorTopRight, l, req)
}

// clamp keeps the indicator inside the viewport. A zero viewport dimension
// only clamps that axis at zero.
func clamp(p model.Point, req Request) model.Point {
	if maxX := req.Viewport.Width - req.Box.Width; req.Viewport.Width > 0 && p.X > maxX {
		p.X = maxX
	}
	if maxY := req.Viewport.Height - req.Box.Height; req.Viewport.Height > 0 && p.Y > maxY {
		p.Y = maxY
	}
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
	return p
}
