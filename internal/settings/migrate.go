package settings

import (
	"context"

	"github.com/verte-zerg/typetrack/internal/model"
)

const migrationTextCursor = "migration_v1_textCursor"

// Old default positions rewritten to the caret-following mode.
var legacyDefaultPositions = map[string]struct{}{
	"above":  {},
	"cursor": {},
}

// migrate runs one-shot store migrations. Only stored values are rewritten;
// the config file stays authoritative for its own layer. Failures are logged
// and leave the in-memory layer migrated anyway.
func (m *Manager) migrate(ctx context.Context) {
	if m.stored[migrationTextCursor] == "true" {
		return
	}
	updates := map[string]string{migrationTextCursor: "true"}

	if position, ok := m.stored[KeyPosition]; ok {
		if _, legacy := legacyDefaultPositions[position]; legacy {
			updates[KeyPosition] = string(model.AnchorTextCursor)
			m.log.Info("migrated legacy popup position", "from", position, "to", model.AnchorTextCursor)
		}
	}

	for key, value := range updates {
		m.stored[key] = value
	}
	if m.kv == nil {
		return
	}
	if err := m.kv.Set(ctx, updates); err != nil {
		m.log.Error("failed to persist settings migration", "err", err)
	}
}
