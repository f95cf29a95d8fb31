package model

import "testing"

func TestParseAnchorMode(t *testing.T) {
	tests := []struct {
		raw  string
		want AnchorMode
		ok   bool
	}{
		{"textCursor", AnchorTextCursor, true},
		{"TEXTCURSOR", AnchorTextCursor, true},
		{" bottomRight ", AnchorBottomRight, true},
		{"mouse", AnchorMouse, true},
		{"cursor", AnchorMouse, true},
		{"middle", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseAnchorMode(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("expected (%q, %v), got (%q, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestAnchorModeClasses(t *testing.T) {
	for _, mode := range AnchorModes {
		dynamic := mode == AnchorTextCursor || mode == AnchorMouse
		if mode.Dynamic() != dynamic {
			t.Fatalf("unexpected Dynamic() for %s", mode)
		}
		if mode.Dynamic() && mode.Corner() {
			t.Fatalf("mode %s cannot be both dynamic and a corner", mode)
		}
	}
	if !AnchorBottomLeft.Corner() || AnchorAbove.Corner() {
		t.Fatalf("unexpected Corner() classification")
	}
}

func TestRectDegenerate(t *testing.T) {
	if !(Rect{}).Degenerate() {
		t.Fatalf("expected zero rect to be degenerate")
	}
	if (Rect{Left: 0, Top: 0, Width: 0, Height: 12}).Degenerate() {
		t.Fatalf("expected collapsed caret box with height to be usable")
	}
}
