package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "typetrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	_, ok, err := st.Get(ctx, "timeout")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Set(ctx, map[string]string{"timeout": "500", "popupPosition": "mouse"}))
	require.NoError(t, st.Set(ctx, map[string]string{"timeout": "750"}))

	value, ok, err := st.Get(ctx, "timeout")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "750", value)

	all, err := st.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"timeout": "750", "popupPosition": "mouse"}, all)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)
	require.NoError(t, st.Set(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, st.Delete(ctx, "a", "missing"))

	all, err := st.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b": "2"}, all)
}

func TestReopenKeepsValues(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "typetrack.db")
	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Set(ctx, map[string]string{"extensionEnabled": "false"}))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	value, ok, err := st.Get(ctx, "extensionEnabled")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "false", value)
}
