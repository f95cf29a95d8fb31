// Package keyfilter decides which keystrokes feed the session tracker.
package keyfilter

import (
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/typetrack/internal/model"
	"github.com/verte-zerg/typetrack/internal/position"
)

// Source identifies the document a key event was dispatched in.
type Source int

// Event sources.
const (
	SourceDocument Source = iota
	SourceEditorSurface
	SourceOther
)

// KeyEvent is a keydown as seen by a host page.
type KeyEvent struct {
	// Key is the produced key value, e.g. "a", " " or "Shift".
	Key    string
	Target position.Element
	Source Source
}

// SettingsSource returns the current settings snapshot.
type SettingsSource interface {
	Current() model.Settings
}

var nonTextInputTypes = map[string]struct{}{
	"button":   {},
	"submit":   {},
	"reset":    {},
	"checkbox": {},
	"radio":    {},
	"file":     {},
}

// IsPrintable reports whether key produces exactly one visible character.
func IsPrintable(key string) bool {
	return utf8.RuneCountInString(key) == 1
}

// IsTextEntry reports whether el accepts typed text.
func IsTextEntry(el position.Element) bool {
	if el == nil {
		return false
	}
	switch el.Kind() {
	case position.KindTextArea, position.KindContentEditable:
		return true
	case position.KindInput:
		control, ok := el.(position.TextControl)
		if !ok {
			return true
		}
		_, excluded := nonTextInputTypes[strings.ToLower(control.InputType())]
		return !excluded
	default:
		return false
	}
}

// Page filters keystrokes on a generic page.
type Page struct {
	Settings SettingsSource
}

// Accept reports whether ev should reach the tracker.
func (p Page) Accept(ev KeyEvent) bool {
	return enabled(p.Settings) && IsPrintable(ev.Key) && IsTextEntry(ev.Target)
}

// Editor filters keystrokes surfaced by a rich editor's input surface, with
// the top-level document as fallback.
type Editor struct {
	Settings SettingsSource
}

// Accept reports whether ev should reach the tracker.
func (e Editor) Accept(ev KeyEvent) bool {
	if ev.Source != SourceEditorSurface && ev.Source != SourceDocument {
		return false
	}
	return enabled(e.Settings) && IsPrintable(ev.Key)
}

func enabled(src SettingsSource) bool {
	if src == nil {
		return false
	}
	return src.Current().Enabled
}
