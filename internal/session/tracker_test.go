package session

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typetrack/internal/model"
	"github.com/verte-zerg/typetrack/internal/position"
)

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock fires due timers in order while advancing. With leakyStop set,
// Stop is recorded but the timer still fires, like a coarse host timer.
type fakeClock struct {
	now       time.Time
	timers    []*fakeTimer
	leakyStop bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	timer := &fakeTimer{at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) Advance(d time.Duration) {
	target := c.now.Add(d)
	for {
		due := c.due(target)
		if due == nil {
			break
		}
		c.now = due.at
		due.fired = true
		due.fn()
	}
	c.now = target
}

func (c *fakeClock) due(target time.Time) *fakeTimer {
	pending := make([]*fakeTimer, 0, len(c.timers))
	for _, timer := range c.timers {
		if timer.fired || (timer.stopped && !c.leakyStop) {
			continue
		}
		if !timer.at.After(target) {
			pending = append(pending, timer)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].at.Before(pending[j].at) })
	return pending[0]
}

func (c *fakeClock) pending() int {
	n := 0
	for _, timer := range c.timers {
		if !timer.fired && !timer.stopped {
			n++
		}
	}
	return n
}

type fakeIndicator struct {
	visible bool
	text    string
	pos     model.Point
	moves   int
}

func (f *fakeIndicator) Show()               { f.visible = true }
func (f *fakeIndicator) Hide()               { f.visible = false }
func (f *fakeIndicator) Visible() bool       { return f.visible }
func (f *fakeIndicator) SetText(text string) { f.text = text }

func (f *fakeIndicator) MoveTo(p model.Point) {
	f.pos = p
	f.moves++
}

func (f *fakeIndicator) Size() model.Size     { return model.Size{Width: 7, Height: 1} }
func (f *fakeIndicator) Viewport() model.Size { return model.Size{Width: 80, Height: 24} }

type countingResolver struct {
	calls   int
	lastReq position.Request
}

func (r *countingResolver) Resolve(req position.Request) model.Point {
	r.calls++
	r.lastReq = req
	return model.Point{X: float64(r.calls), Y: 2}
}

type staticSettings struct {
	s model.Settings
}

func (s *staticSettings) Current() model.Settings { return s.s }

type harness struct {
	clock     *fakeClock
	indicator *fakeIndicator
	resolver  *countingResolver
	settings  *staticSettings
	tracker   *Tracker
}

func newHarness(mutate func(*model.Settings)) *harness {
	s := model.DefaultSettings()
	if mutate != nil {
		mutate(&s)
	}
	h := &harness{
		clock:     newFakeClock(),
		indicator: &fakeIndicator{},
		resolver:  &countingResolver{},
		settings:  &staticSettings{s: s},
	}
	h.tracker = NewTracker(h.indicator, h.resolver, h.settings, h.clock, nil)
	return h
}

func (h *harness) typeAt(offsets ...time.Duration) {
	start := h.clock.now
	for _, off := range offsets {
		h.clock.Advance(start.Add(off).Sub(h.clock.now))
		h.tracker.OnCharacterTyped(nil)
	}
}

func TestFirstKeystrokeArmsWithoutRate(t *testing.T) {
	h := newHarness(nil)
	h.indicator.visible = true
	h.tracker.OnCharacterTyped(nil)

	st := h.tracker.State()
	assert.True(t, st.Active)
	assert.Equal(t, 0, st.CharCount)
	assert.NotEmpty(t, st.ID)
	assert.False(t, h.indicator.visible)
	assert.Equal(t, Placeholder, h.indicator.text)
	assert.Equal(t, 1, h.resolver.calls)
	assert.Equal(t, 1, h.clock.pending())
}

func TestWPMOverOneMinute(t *testing.T) {
	h := newHarness(func(s *model.Settings) { s.Timeout = 10 * time.Second })
	h.tracker.OnCharacterTyped(nil)
	step := 60 * time.Second / 25
	for i := 0; i < 25; i++ {
		h.clock.Advance(step)
		h.tracker.OnCharacterTyped(nil)
	}
	st := h.tracker.State()
	require.Equal(t, 25, st.CharCount)
	assert.Equal(t, 5, st.WPM)
	assert.True(t, h.indicator.visible)
	assert.Equal(t, "5 wpm", h.indicator.text)
}

func TestSessionExpiresAfterTimeout(t *testing.T) {
	h := newHarness(func(s *model.Settings) { s.Timeout = 500 * time.Millisecond })
	h.typeAt(0)
	h.clock.Advance(600 * time.Millisecond)

	st := h.tracker.State()
	assert.False(t, st.Active)
	assert.Equal(t, 0, st.CharCount)
	assert.False(t, h.indicator.visible)
}

func TestKeystrokesReArmExpiry(t *testing.T) {
	h := newHarness(func(s *model.Settings) { s.Timeout = 500 * time.Millisecond })
	start := h.clock.now
	h.typeAt(0, 400*time.Millisecond, 800*time.Millisecond)

	h.clock.Advance(start.Add(1200 * time.Millisecond).Sub(h.clock.now))
	assert.True(t, h.tracker.State().Active)
	assert.True(t, h.indicator.visible)

	h.clock.Advance(99 * time.Millisecond)
	assert.True(t, h.tracker.State().Active)

	h.clock.Advance(2 * time.Millisecond)
	assert.False(t, h.tracker.State().Active)
	assert.False(t, h.indicator.visible)
	assert.Equal(t, 0, h.clock.pending())
}

func TestDisablingStopsCountingButExpiryStillFires(t *testing.T) {
	h := newHarness(func(s *model.Settings) { s.Timeout = 500 * time.Millisecond })
	h.typeAt(0, 100*time.Millisecond)
	require.Equal(t, 1, h.tracker.State().CharCount)

	h.settings.s.Enabled = false
	h.clock.Advance(100 * time.Millisecond)
	h.tracker.OnCharacterTyped(nil)
	assert.Equal(t, 1, h.tracker.State().CharCount)
	assert.True(t, h.tracker.State().Active)

	h.clock.Advance(450 * time.Millisecond)
	assert.False(t, h.tracker.State().Active)
	assert.False(t, h.indicator.visible)
}

func TestDisabledNeverStartsSession(t *testing.T) {
	h := newHarness(func(s *model.Settings) { s.Enabled = false })
	h.tracker.OnCharacterTyped(nil)
	assert.False(t, h.tracker.State().Active)
	assert.Equal(t, 0, h.clock.pending())
	assert.Equal(t, 0, h.resolver.calls)
}

func TestZeroElapsedDoesNotDisplay(t *testing.T) {
	h := newHarness(nil)
	h.tracker.OnCharacterTyped(nil)
	h.tracker.OnCharacterTyped(nil)

	st := h.tracker.State()
	assert.Equal(t, 1, st.CharCount)
	assert.False(t, st.HasWPM)
	assert.False(t, h.indicator.visible)
	assert.Equal(t, Placeholder, h.indicator.text)
}

func TestMinCharsThreshold(t *testing.T) {
	h := newHarness(func(s *model.Settings) { s.MinChars = 3 })
	h.tracker.OnCharacterTyped(nil)
	for i := 1; i <= 3; i++ {
		h.clock.Advance(100 * time.Millisecond)
		h.tracker.OnCharacterTyped(nil)
		assert.Equal(t, i >= 3, h.indicator.visible, "after %d chars", i)
	}
}

func TestDynamicModesReResolvePerKeystroke(t *testing.T) {
	tests := []struct {
		mode  model.AnchorMode
		calls int
	}{
		{model.AnchorTextCursor, 4},
		{model.AnchorMouse, 4},
		{model.AnchorAbove, 1},
		{model.AnchorBottom, 1},
		{model.AnchorTopLeft, 1},
		{model.AnchorBottomRight, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			h := newHarness(func(s *model.Settings) { s.Anchor = tt.mode })
			h.typeAt(0, 50*time.Millisecond, 100*time.Millisecond, 150*time.Millisecond)
			assert.Equal(t, tt.calls, h.resolver.calls)
			assert.Equal(t, tt.mode, h.resolver.lastReq.Mode)
			assert.Equal(t, model.Size{Width: 80, Height: 24}, h.resolver.lastReq.Viewport)
		})
	}
}

func TestPointerMoveFollowsOnlyWhenVisible(t *testing.T) {
	h := newHarness(func(s *model.Settings) { s.Anchor = model.AnchorMouse })
	h.tracker.OnPointerMoved(nil)
	assert.Equal(t, 0, h.resolver.calls)

	h.typeAt(0)
	h.tracker.OnPointerMoved(nil)
	assert.Equal(t, 1, h.resolver.calls, "hidden indicator must not follow the pointer")

	h.typeAt(100 * time.Millisecond)
	require.True(t, h.indicator.visible)
	before := h.resolver.calls
	h.tracker.OnPointerMoved(nil)
	assert.Equal(t, before+1, h.resolver.calls)

	h.settings.s.Anchor = model.AnchorTopLeft
	h.tracker.OnPointerMoved(nil)
	assert.Equal(t, before+1, h.resolver.calls)
}

func TestStaleExpiryIsIgnored(t *testing.T) {
	h := newHarness(func(s *model.Settings) { s.Timeout = 500 * time.Millisecond })
	h.clock.leakyStop = true
	h.typeAt(0, 300*time.Millisecond)

	h.clock.Advance(250 * time.Millisecond)
	assert.True(t, h.tracker.State().Active, "first expiry was replaced and must not end the session")

	h.clock.Advance(300 * time.Millisecond)
	assert.False(t, h.tracker.State().Active)
}

func TestHooks(t *testing.T) {
	h := newHarness(func(s *model.Settings) { s.Timeout = 500 * time.Millisecond })
	var readings []int
	var expired []State
	h.tracker.OnReading(func(wpm int) { readings = append(readings, wpm) })
	h.tracker.OnExpire(func(st State) { expired = append(expired, st) })

	h.typeAt(0, 200*time.Millisecond, 400*time.Millisecond)
	h.clock.Advance(time.Second)

	require.Len(t, readings, 2)
	assert.Equal(t, 60, readings[0])
	require.Len(t, expired, 1)
	assert.Equal(t, 2, expired[0].CharCount)
}

type panickingResolver struct{}

func (panickingResolver) Resolve(position.Request) model.Point { panic("layout exploded") }

func TestHandlerRecoversFromPanics(t *testing.T) {
	h := newHarness(nil)
	h.tracker.resolver = panickingResolver{}
	assert.NotPanics(t, func() { h.tracker.OnCharacterTyped(nil) })
	h.tracker.resolver = h.resolver
	assert.NotPanics(t, func() { _ = h.tracker.State() })
}
