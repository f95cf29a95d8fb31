package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typetrack/internal/config"
	"github.com/verte-zerg/typetrack/internal/model"
	"github.com/verte-zerg/typetrack/internal/settings"
)

func TestDefaultConfigTemplatesDecodeEmpty(t *testing.T) {
	for _, name := range []string{"config.toml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "typetrack", name)
			require.NoError(t, writeDefaultConfig(path))

			cfg, err := config.LoadConfig(path)
			require.NoError(t, err)
			assert.Empty(t, cfg.Overlay.Values())
		})
	}
}

func TestWriteDefaultConfigKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[overlay]\ntimeout = 250\n"), 0o644))
	require.NoError(t, writeDefaultConfig(path))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{settings.KeyTimeout: "250"}, cfg.Overlay.Values())
}

func TestRunOverridesOnlyChangedFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--timeout", "300"}))
	assert.Equal(t, map[string]string{settings.KeyTimeout: "300"}, runOverrides(cmd))

	cmd = newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--position", "bottomLeft"}))
	assert.Equal(t, map[string]string{settings.KeyPosition: "bottomLeft"}, runOverrides(cmd))
}

func TestPrintSettings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSettings(&buf, settings.Format(model.DefaultSettings())))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(settings.Keys())+1)
	assert.True(t, strings.HasPrefix(lines[0], "Key"))
	assert.Contains(t, buf.String(), "popupPosition")
	assert.Contains(t, buf.String(), "textCursor")
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolateDirs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func TestMalformedConfigFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"broken toml", "config.toml", "[overlay\ntimeout =\n"},
		{"mistyped toml", "config.toml", "[overlay]\ntimeout = \"abc\"\n"},
		{"broken yaml", "config.yaml", "overlay: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolateDirs(t)
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			out, err := runRoot(t, "--config", path, "settings", "list")
			require.NoError(t, err)
			assert.Contains(t, out, string(model.DefaultAnchor))
			assert.Contains(t, out, "1000")
		})
	}
}

func TestUnavailableStoreKeepsReadsWorking(t *testing.T) {
	dir := isolateDirs(t)
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	t.Setenv("XDG_DATA_HOME", blocker)
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[overlay]\ntimeout = 250\n"), 0o644))

	out, err := runRoot(t, "--config", cfg, "settings", "get", settings.KeyTimeout)
	require.NoError(t, err)
	assert.Equal(t, "250\n", out)

	_, err = runRoot(t, "--config", cfg, "settings", "set", settings.KeyTimeout, "300")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open db")
}
