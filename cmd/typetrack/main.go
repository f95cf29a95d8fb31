// Package main provides the CLI entrypoint for typetrack.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typetrack/internal/config"
	"github.com/verte-zerg/typetrack/internal/logging"
	"github.com/verte-zerg/typetrack/internal/model"
	"github.com/verte-zerg/typetrack/internal/settings"
	"github.com/verte-zerg/typetrack/internal/stats"
	"github.com/verte-zerg/typetrack/internal/store"
	"github.com/verte-zerg/typetrack/internal/tui"
)

var (
	configPath string

	runEditor   bool
	runPosition string
	runTimeout  int
	logLevel    string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typetrack",
		Short:         "Live typing-speed overlay",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runOverlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file (.toml, .yaml or .yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&runEditor, "editor", false, "host a rich editor instead of a form page")
	rootCmd.Flags().StringVar(&runPosition, "position", string(model.DefaultAnchor), "indicator position for this run")
	rootCmd.Flags().IntVar(&runTimeout, "timeout", int(model.DefaultTimeout.Milliseconds()), "session inactivity timeout in ms for this run")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSettingsCmd())

	return rootCmd
}

func runOverlayCmd(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("typetrack needs an interactive terminal")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr, log, cleanup, err := openSettings(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := mgr.Override(runOverrides(cmd)); err != nil {
		return err
	}
	if err := mgr.WatchFile(ctx, configPath); err != nil {
		log.Warn("config hot reload disabled", "path", configPath, "err", err)
	}

	mode := tui.PageMode
	if runEditor {
		mode = tui.EditorMode
	}
	m := tui.NewModel(ctx, tui.Options{
		Mode:     mode,
		Settings: mgr,
		Logger:   log,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	m.SetSender(program.Send)
	unsubscribe := mgr.Subscribe(func(s model.Settings) {
		program.Send(tui.SettingsMsg{Settings: s})
	})
	defer unsubscribe()

	log.Info("overlay started", "mode", mode.String(), "anchor", mgr.Current().Anchor)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// runOverrides collects the flags the user set explicitly on this run.
func runOverrides(cmd *cobra.Command) map[string]string {
	out := map[string]string{}
	applyStringOverride(cmd, "position", settings.KeyPosition, runPosition, out)
	applyIntOverride(cmd, "timeout", settings.KeyTimeout, runTimeout, out)
	return out
}

func openLogger(cmd *cobra.Command, fileLog config.LogConfig) (*slog.Logger, io.Closer, error) {
	cfg := logging.DefaultConfig(config.DefaultLogPath())
	applyStringConfig(cmd, "log-level", &logLevel, fileLog.Level)
	cfg.Level = logLevel
	if fileLog.Format != nil {
		cfg.Format = *fileLog.Format
	}
	if fileLog.Output != nil {
		cfg.Output = *fileLog.Output
	}
	if fileLog.File != nil {
		cfg.FilePath = *fileLog.File
	}
	log, closer, err := logging.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return log, closer, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	if err := writeDefaultConfig(configPath); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], configPath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeDefaultConfig creates path from the template unless it already exists.
func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate(path)), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change stored settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSettings(cmd, false, func(mgr *settings.Manager) error {
				return printSettings(cmd.OutOrStdout(), mgr.Values())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one effective setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd, false, func(mgr *settings.Manager) error {
				value, ok := mgr.Values()[args[0]]
				if !ok {
					return fmt.Errorf("%w %q (known: %s)", settings.ErrUnknownKey, args[0], strings.Join(settings.Keys(), ", "))
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), value); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd, true, func(mgr *settings.Manager) error {
				return mgr.Set(cmd.Context(), args[0], args[1])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Remove stored settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSettings(cmd, true, func(mgr *settings.Manager) error {
				return mgr.Reset(cmd.Context())
			})
		},
	})
	return cmd
}

func withSettings(cmd *cobra.Command, requireStore bool, fn func(mgr *settings.Manager) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	mgr, _, cleanup, err := openSettings(ctx, cmd, requireStore)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(mgr)
}

// openSettings builds the settings manager. A config file that cannot be
// decoded and a store that cannot be opened both fall back to defaults;
// requireStore turns the latter into an error for commands that persist.
func openSettings(ctx context.Context, cmd *cobra.Command, requireStore bool) (*settings.Manager, *slog.Logger, func(), error) {
	fileCfg, cfgErr := config.LoadConfig(configPath)
	if cfgErr != nil {
		fileCfg = config.FileConfig{}
	}
	log, closeLog, err := openLogger(cmd, fileCfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfgErr != nil {
		log.Warn("ignoring unreadable config, using defaults", "path", configPath, "err", cfgErr)
	}

	var kv settings.KV
	closeStore := func() {}
	st, err := store.Open(config.DefaultDBPath())
	switch {
	case err == nil:
		kv = st
		closeStore = func() { closeQuietly(st, "db") }
	case requireStore:
		closeQuietly(closeLog, "log")
		return nil, nil, nil, fmt.Errorf("failed to open db: %w", err)
	default:
		log.Warn("settings store unavailable, changes will not persist", "err", err)
	}

	cleanup := func() {
		closeStore()
		closeQuietly(closeLog, "log")
	}
	return settings.Load(ctx, kv, fileCfg.Overlay.Values(), log), log, cleanup, nil
}

func printSettings(w io.Writer, values map[string]string) error {
	rows := make([][]string, 0, len(values))
	for _, key := range settings.Keys() {
		rows = append(rows, []string{key, values[key]})
	}
	table := stats.Table{Headers: []string{"Key", "Value"}, Rows: rows, MaxWidth: terminalWidth(w)}
	return table.Write(w)
}

// terminalWidth reports the column count of w, or 0 when w is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringOverride(cmd *cobra.Command, name, key, value string, out map[string]string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	out[key] = value
}

func applyIntOverride(cmd *cobra.Command, name, key string, value int, out map[string]string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	out[key] = strconv.Itoa(value)
}

func defaultConfigTemplate(path string) string {
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		return defaultYAMLTemplate()
	}
	return fmt.Sprintf(`# typetrack configuration
# Uncomment a value to enable it. Stored settings (typetrack settings set)
# override this file; CLI flags override both for a single run.

[overlay]
# timeout = %d                # Session inactivity timeout in ms
# position = %q       # One of: %s
# enabled = true               # Track typing at all
# min-chars = %d                # Characters before the rate is shown
# font-size = %d               # Font size; 18 and up renders bold
# background-color = %q  # Indicator background
# opacity = %d                 # Background opacity (0-100)
# text-color = %q        # Indicator text

[log]
# level = "info"               # debug, info, warn, error
# format = "text"              # text or json
# output = "file"              # file, stderr or discard
# file = %q
`,
		model.DefaultTimeout.Milliseconds(),
		model.DefaultAnchor,
		anchorNames(),
		model.DefaultMinChars,
		model.DefaultFontSize,
		model.DefaultBackgroundColor,
		model.DefaultOpacity,
		model.DefaultTextColor,
		config.DefaultLogPath(),
	)
}

func defaultYAMLTemplate() string {
	return fmt.Sprintf(`# typetrack configuration
# Uncomment a value to enable it.

overlay:
  # timeout: %d
  # position: %s
  # enabled: true
  # min-chars: %d
  # font-size: %d
  # background-color: "%s"
  # opacity: %d
  # text-color: "%s"

log:
  # level: info
  # format: text
  # output: file
`,
		model.DefaultTimeout.Milliseconds(),
		model.DefaultAnchor,
		model.DefaultMinChars,
		model.DefaultFontSize,
		model.DefaultBackgroundColor,
		model.DefaultOpacity,
		model.DefaultTextColor,
	)
}

func anchorNames() string {
	names := make([]string, 0, len(model.AnchorModes))
	for _, mode := range model.AnchorModes {
		names = append(names, string(mode))
	}
	return strings.Join(names, ", ")
}

func closeQuietly(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		logErrf("failed to close %s: %v\n", what, err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
