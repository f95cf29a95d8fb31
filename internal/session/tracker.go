// Package session tracks typing bursts and reports their speed.
//
// A session starts on the first printable keystroke after idle, counts every
// following keystroke, and expires after the configured inactivity timeout.
// Each keystroke replaces the pending expiry; a stale expiry that still fires
// is recognised by its token and ignored.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typetrack/internal/logging"
	"github.com/verte-zerg/typetrack/internal/model"
	"github.com/verte-zerg/typetrack/internal/position"
	"github.com/verte-zerg/typetrack/internal/stats"
)

// Placeholder is the indicator text before a rate is known.
const Placeholder = "- wpm"

// Indicator is the on-screen surface the tracker drives.
type Indicator interface {
	Show()
	Hide()
	Visible() bool
	SetText(text string)
	MoveTo(p model.Point)
	Size() model.Size
	Viewport() model.Size
}

// SettingsSource returns the settings snapshot for the current event.
type SettingsSource interface {
	Current() model.Settings
}

// State is a copy of the session fields.
type State struct {
	Active    bool
	ID        string
	StartTime time.Time
	CharCount int
	WPM       int
	HasWPM    bool
}

// Tracker owns the typing-session state machine.
type Tracker struct {
	indicator Indicator
	resolver  position.Resolver
	settings  SettingsSource
	clock     Clock
	log       *slog.Logger

	mu        sync.Mutex
	state     State
	expiry    Timer
	token     uint64
	onExpire  []func(State)
	onReading []func(wpm int)
}

// NewTracker builds an idle tracker. A nil clock uses the system clock.
func NewTracker(indicator Indicator, resolver position.Resolver, settings SettingsSource, clock Clock, log *slog.Logger) *Tracker {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Tracker{
		indicator: indicator,
		resolver:  resolver,
		settings:  settings,
		clock:     clock,
		log:       logging.Component(log, "session"),
	}
}

// OnExpire registers fn to run after a session expires, with its final state.
func (t *Tracker) OnExpire(fn func(State)) {
	t.mu.Lock()
	t.onExpire = append(t.onExpire, fn)
	t.mu.Unlock()
}

// OnReading registers fn to run for every computed rate.
func (t *Tracker) OnReading(fn func(wpm int)) {
	t.mu.Lock()
	t.onReading = append(t.onReading, fn)
	t.mu.Unlock()
}

// State returns a copy of the current session.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// OnCharacterTyped handles one accepted printable keystroke typed into target.
func (t *Tracker) OnCharacterTyped(target position.Element) {
	defer t.recoverHandler("keystroke")

	s := t.settings.Current()
	if !s.Enabled {
		return
	}
	startedID, readings, wpm := t.typed(s, target)
	if startedID != "" {
		t.log.Debug("session started", "session", startedID, "anchor", s.Anchor)
		return
	}
	for _, fn := range readings {
		fn(wpm)
	}
}

// typed applies one keystroke. It returns the new session id when the
// keystroke started a session, otherwise the reading hooks to run.
func (t *Tracker) typed(s model.Settings, target position.Element) (string, []func(int), int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if !t.state.Active {
		t.state = State{
			Active:    true,
			ID:        uuid.NewString(),
			StartTime: now,
		}
		t.place(s, target)
		t.indicator.Hide()
		t.indicator.SetText(Placeholder)
		t.arm(s.Timeout)
		return t.state.ID, nil, 0
	}

	t.state.CharCount++
	if s.Anchor.Dynamic() {
		t.place(s, target)
	}
	var readings []func(int)
	wpm, ok := stats.WPM(t.state.CharCount, now.Sub(t.state.StartTime))
	if ok {
		t.state.WPM = wpm
		t.state.HasWPM = true
		if t.state.CharCount >= s.MinChars {
			t.indicator.Show()
			t.indicator.SetText(fmt.Sprintf("%d wpm", wpm))
		}
		readings = append(readings, t.onReading...)
	}
	t.arm(s.Timeout)
	return "", readings, wpm
}

// OnPointerMoved re-places the indicator while it follows the pointer.
func (t *Tracker) OnPointerMoved(target position.Element) {
	defer t.recoverHandler("pointer")

	s := t.settings.Current()
	if s.Anchor != model.AnchorMouse {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Active || !t.indicator.Visible() {
		return
	}
	t.place(s, target)
}

// place resolves and applies the indicator position. Callers hold mu.
func (t *Tracker) place(s model.Settings, target position.Element) {
	p := t.resolver.Resolve(position.Request{
		Mode:     s.Anchor,
		Target:   target,
		Viewport: t.indicator.Viewport(),
		Box:      t.indicator.Size(),
	})
	t.indicator.MoveTo(p)
}

// arm replaces the pending expiry. Callers hold mu.
func (t *Tracker) arm(timeout time.Duration) {
	if timeout <= 0 {
		timeout = model.DefaultTimeout
	}
	if t.expiry != nil {
		t.expiry.Stop()
	}
	t.token++
	token := t.token
	t.expiry = t.clock.AfterFunc(timeout, func() {
		t.expire(token)
	})
}

func (t *Tracker) expire(token uint64) {
	defer t.recoverHandler("expiry")

	final, hooks, ok := t.takeExpired(token)
	if !ok {
		return
	}
	t.log.Debug("session expired", "session", final.ID, "chars", final.CharCount, "wpm", final.WPM)
	for _, fn := range hooks {
		fn(final)
	}
}

// takeExpired resets the session if token is still the pending expiry.
func (t *Tracker) takeExpired(token uint64) (State, []func(State), bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token != t.token || !t.state.Active {
		return State{}, nil, false
	}
	final := t.state
	t.state = State{}
	t.expiry = nil
	t.indicator.Hide()
	return final, append([]func(State){}, t.onExpire...), true
}

func (t *Tracker) recoverHandler(event string) {
	if r := recover(); r != nil {
		t.log.Error("recovered from panic in event handler", "event", event, "panic", r)
	}
}
