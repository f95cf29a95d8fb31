// Package settings holds the live overlay configuration.
//
// A Manager layers built-in defaults, the config file, the persisted store
// and per-run overrides (later layers win) into a model.Settings snapshot. Consumers read a
// fresh snapshot per event through Current and receive pushed changes
// through Subscribe.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/verte-zerg/typetrack/internal/logging"
	"github.com/verte-zerg/typetrack/internal/model"
)

// KV is the persisted key-value store behind the settings.
type KV interface {
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Manager owns the settings snapshot and its subscribers.
type Manager struct {
	kv  KV
	log *slog.Logger

	mu       sync.RWMutex
	file     map[string]string
	stored   map[string]string
	override map[string]string
	current  model.Settings

	subMu  sync.Mutex
	subs   map[int]func(model.Settings)
	nextID int
}

// Load builds a Manager. It never fails: unreadable or malformed
// configuration falls back to defaults and is logged. kv may be nil for a
// memory-only manager.
func Load(ctx context.Context, kv KV, fileValues map[string]string, log *slog.Logger) *Manager {
	m := &Manager{
		kv:       kv,
		log:      logging.Component(log, "settings"),
		file:     copyValues(fileValues),
		stored:   map[string]string{},
		override: map[string]string{},
		subs:     map[int]func(model.Settings){},
	}
	if kv != nil {
		stored, err := kv.All(ctx)
		if err != nil {
			m.log.Error("failed to read settings store, using defaults", "err", err)
		} else {
			m.stored = stored
		}
	}
	m.migrate(ctx)
	m.mu.Lock()
	m.current = m.rebuildLocked()
	m.mu.Unlock()
	return m
}

// Current returns the snapshot valid for the event being handled.
func (m *Manager) Current() model.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Values returns the effective raw values of every setting.
func (m *Manager) Values() map[string]string {
	return Format(m.Current())
}

// Subscribe registers fn for change notifications and returns its cancel func.
func (m *Manager) Subscribe(fn func(model.Settings)) func() {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()
	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// Set validates, persists and publishes a single setting.
func (m *Manager) Set(ctx context.Context, key, raw string) error {
	value, err := Normalize(key, raw)
	if err != nil {
		return err
	}
	if m.kv != nil {
		if err := m.kv.Set(ctx, map[string]string{key: value}); err != nil {
			return fmt.Errorf("failed to store setting %s: %w", key, err)
		}
	}
	m.mu.Lock()
	m.stored[key] = value
	snap := m.rebuildLocked()
	m.current = snap
	m.mu.Unlock()

	m.log.Info("setting changed", "key", key, "value", value)
	m.publish(snap)
	return nil
}

// Reset removes every persisted setting so file and default values apply.
func (m *Manager) Reset(ctx context.Context) error {
	keys := Keys()
	if m.kv != nil {
		if err := m.kv.Delete(ctx, keys...); err != nil {
			return fmt.Errorf("failed to reset settings: %w", err)
		}
	}
	m.mu.Lock()
	for _, key := range keys {
		delete(m.stored, key)
	}
	snap := m.rebuildLocked()
	m.current = snap
	m.mu.Unlock()

	m.log.Info("settings reset")
	m.publish(snap)
	return nil
}

// Apply replaces the externally pushed file layer and publishes the result.
func (m *Manager) Apply(fileValues map[string]string) {
	m.mu.Lock()
	m.file = copyValues(fileValues)
	snap := m.rebuildLocked()
	changed := snap != m.current
	m.current = snap
	m.mu.Unlock()

	if !changed {
		return
	}
	m.log.Info("settings reloaded")
	m.publish(snap)
}

// Override sets run-scoped values that win over every other layer and are
// never persisted.
func (m *Manager) Override(values map[string]string) error {
	normalized := make(map[string]string, len(values))
	for key, raw := range values {
		value, err := Normalize(key, raw)
		if err != nil {
			return err
		}
		normalized[key] = value
	}
	m.mu.Lock()
	for key, value := range normalized {
		m.override[key] = value
	}
	snap := m.rebuildLocked()
	changed := snap != m.current
	m.current = snap
	m.mu.Unlock()

	if changed {
		m.publish(snap)
	}
	return nil
}

func (m *Manager) rebuildLocked() model.Settings {
	merged := copyValues(m.file)
	for _, layer := range []map[string]string{m.stored, m.override} {
		for key, value := range layer {
			merged[key] = value
		}
	}
	snap, problems := parse(merged)
	keys := make([]string, 0, len(problems))
	for key := range problems {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		m.log.Warn("ignoring malformed setting", "key", key, "value", merged[key], "err", problems[key])
	}
	return snap
}

func (m *Manager) publish(snap model.Settings) {
	m.subMu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(model.Settings), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}
