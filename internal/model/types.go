// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// AnchorMode selects where the indicator is drawn.
type AnchorMode string

// Anchor modes.
const (
	AnchorTextCursor  AnchorMode = "textCursor"
	AnchorMouse       AnchorMode = "mouse"
	AnchorAbove       AnchorMode = "above"
	AnchorBottom      AnchorMode = "bottom"
	AnchorTopLeft     AnchorMode = "topLeft"
	AnchorTopRight    AnchorMode = "topRight"
	AnchorBottomLeft  AnchorMode = "bottomLeft"
	AnchorBottomRight AnchorMode = "bottomRight"
)

// legacyMouseMode is the value older settings stores used for pointer anchoring.
const legacyMouseMode = "cursor"

// AnchorModes lists every supported mode in display order.
var AnchorModes = []AnchorMode{
	AnchorTextCursor,
	AnchorMouse,
	AnchorAbove,
	AnchorBottom,
	AnchorTopLeft,
	AnchorTopRight,
	AnchorBottomLeft,
	AnchorBottomRight,
}

// ParseAnchorMode parses a raw setting value into a known AnchorMode.
func ParseAnchorMode(raw string) (AnchorMode, bool) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, legacyMouseMode) {
		return AnchorMouse, true
	}
	for _, mode := range AnchorModes {
		if strings.EqualFold(raw, string(mode)) {
			return mode, true
		}
	}
	return "", false
}

// Dynamic reports whether the mode follows input on every keystroke.
func (m AnchorMode) Dynamic() bool {
	return m == AnchorTextCursor || m == AnchorMouse
}

// Corner reports whether the mode is a fixed viewport corner.
func (m AnchorMode) Corner() bool {
	switch m {
	case AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight:
		return true
	default:
		return false
	}
}

// Settings is a read-only snapshot of the overlay configuration.
type Settings struct {
	Timeout         time.Duration
	Anchor          AnchorMode
	Enabled         bool
	MinChars        int
	FontSize        int
	BackgroundColor string
	Opacity         int
	TextColor       string
}

// Default settings values.
const (
	DefaultTimeout         = 1000 * time.Millisecond
	DefaultAnchor          = AnchorTextCursor
	DefaultMinChars        = 1
	DefaultFontSize        = 14
	DefaultBackgroundColor = "#FF0000"
	DefaultOpacity         = 80
	DefaultTextColor       = "#ffffff"
)

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Timeout:         DefaultTimeout,
		Anchor:          DefaultAnchor,
		Enabled:         true,
		MinChars:        DefaultMinChars,
		FontSize:        DefaultFontSize,
		BackgroundColor: DefaultBackgroundColor,
		Opacity:         DefaultOpacity,
		TextColor:       DefaultTextColor,
	}
}

// Point is a position in viewport coordinates.
type Point struct {
	X float64
	Y float64
}

// Size is a width and height in viewport units.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned bounding box in viewport coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Degenerate reports whether the box is empty and pinned to the origin,
// which is what an unreliable selection range reports.
func (r Rect) Degenerate() bool {
	return r.Left == 0 && r.Top == 0 && r.Width == 0 && r.Height == 0
}

// Font carries the metrics a text mirror needs.
type Font struct {
	Family        string
	Size          float64
	Weight        int
	LetterSpacing float64
}
