package keyfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/typetrack/internal/model"
	"github.com/verte-zerg/typetrack/internal/position"
)

type element struct {
	kind      position.Kind
	inputType string
}

func (e element) Kind() position.Kind              { return e.kind }
func (e element) BoundingRect() (model.Rect, bool) { return model.Rect{}, false }
func (e element) InputType() string                { return e.inputType }
func (e element) Value() string                    { return "" }
func (e element) SelectionEnd() int                { return 0 }
func (e element) Metrics() position.BoxMetrics     { return position.BoxMetrics{} }

type bareElement struct{ kind position.Kind }

func (e bareElement) Kind() position.Kind              { return e.kind }
func (e bareElement) BoundingRect() (model.Rect, bool) { return model.Rect{}, false }

type settings struct{ enabled bool }

func (s settings) Current() model.Settings {
	out := model.DefaultSettings()
	out.Enabled = s.enabled
	return out
}

func TestIsPrintable(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"a", true},
		{" ", true},
		{"é", true},
		{"字", true},
		{"", false},
		{"Shift", false},
		{"ArrowLeft", false},
		{"Backspace", false},
		{"ab", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPrintable(tt.key))
		})
	}
}

func TestIsTextEntry(t *testing.T) {
	tests := []struct {
		name string
		el   position.Element
		want bool
	}{
		{"nil", nil, false},
		{"text input", element{kind: position.KindInput, inputType: "text"}, true},
		{"email input", element{kind: position.KindInput, inputType: "email"}, true},
		{"search input", element{kind: position.KindInput, inputType: "search"}, true},
		{"button", element{kind: position.KindInput, inputType: "button"}, false},
		{"submit upper", element{kind: position.KindInput, inputType: "SUBMIT"}, false},
		{"checkbox", element{kind: position.KindInput, inputType: "checkbox"}, false},
		{"radio", element{kind: position.KindInput, inputType: "radio"}, false},
		{"file", element{kind: position.KindInput, inputType: "file"}, false},
		{"reset", element{kind: position.KindInput, inputType: "reset"}, false},
		{"textarea", element{kind: position.KindTextArea}, true},
		{"contenteditable", bareElement{kind: position.KindContentEditable}, true},
		{"plain block", bareElement{kind: position.KindOther}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTextEntry(tt.el))
		})
	}
}

func TestPageAccept(t *testing.T) {
	input := element{kind: position.KindInput, inputType: "text"}
	page := Page{Settings: settings{enabled: true}}

	assert.True(t, page.Accept(KeyEvent{Key: "x", Target: input}))
	assert.False(t, page.Accept(KeyEvent{Key: "Enter", Target: input}))
	assert.False(t, page.Accept(KeyEvent{Key: "x", Target: bareElement{kind: position.KindOther}}))
	assert.False(t, page.Accept(KeyEvent{Key: "x"}))

	disabled := Page{Settings: settings{enabled: false}}
	assert.False(t, disabled.Accept(KeyEvent{Key: "x", Target: input}))
	assert.False(t, Page{}.Accept(KeyEvent{Key: "x", Target: input}))
}

func TestEditorAccept(t *testing.T) {
	editor := Editor{Settings: settings{enabled: true}}

	assert.True(t, editor.Accept(KeyEvent{Key: "x", Source: SourceEditorSurface}))
	assert.True(t, editor.Accept(KeyEvent{Key: "x", Source: SourceDocument}))
	assert.False(t, editor.Accept(KeyEvent{Key: "x", Source: SourceOther}))
	assert.False(t, editor.Accept(KeyEvent{Key: "Tab", Source: SourceEditorSurface}))

	disabled := Editor{Settings: settings{enabled: false}}
	assert.False(t, disabled.Accept(KeyEvent{Key: "x", Source: SourceEditorSurface}))
}
