package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/tasklist/internal/app"
	"github.com/evanschultz/tasklist/internal/config"
	"github.com/evanschultz/tasklist/internal/domain"
	"github.com/evanschultz/tasklist/internal/platform"
	"github.com/evanschultz/tasklist/internal/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

// program is the part of tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// clipboardWriter backs the yank key.
var clipboardWriter tui.ClipboardFunc = clipboard.WriteAll

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
	appName    string
	devMode    bool
}

// run builds the command tree and executes args through fang, which renders
// errors on stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TASKLIST_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultApp := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv("TASKLIST_APP_NAME")); envApp != "" {
		defaultApp = envApp
	}

	root := &cobra.Command{
		Use:   "tasklist",
		Short: "A terminal task list with filters and a creation form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), *opts, stderr)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&opts.appName, "app", defaultApp, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(newPathsCmd(opts, stdout))
	root.AddCommand(newListCmd(opts, stdout))
	return root
}

func newPathsCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, err := resolvePaths(*opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", resolveConfigPath(*opts, paths))
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

func resolvePaths(opts rootOptions) (platform.Paths, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return platform.Paths{}, fmt.Errorf("resolve paths: %w", err)
	}
	return paths, nil
}

// resolveConfigPath prefers --config, then TASKLIST_CONFIG, then the platform default.
func resolveConfigPath(opts rootOptions, paths platform.Paths) string {
	if path := strings.TrimSpace(opts.configPath); path != "" {
		return path
	}
	if envPath := strings.TrimSpace(os.Getenv("TASKLIST_CONFIG")); envPath != "" {
		return envPath
	}
	return paths.ConfigPath
}

// runTUI starts the program and, when enabled, the config watcher.
func runTUI(ctx context.Context, opts rootOptions, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	paths, err := resolvePaths(opts)
	if err != nil {
		return err
	}
	configPath := resolveConfigPath(opts, paths)
	defaultCfg := config.Default()
	cfg, err := config.Load(configPath, defaultCfg)
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, paths.LogDir, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	// Runtime logs stay in the dev-file sink while the TUI owns the terminal.
	logger.SetConsoleEnabled(false)
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "log_dir", paths.LogDir)
	logger.Info("configuration loaded", "config_path", configPath, "log_level", cfg.Logging.Level, "watch_config", cfg.UI.WatchConfig)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	runtimeCfg := toTUIRuntimeConfig(cfg)
	container := app.NewContainer(app.SeedTasks(), app.ContainerConfig{
		IDGen:  uuid.NewString,
		Logger: logger,
		Labels: runtimeCfg.Labels,
		Badges: runtimeCfg.Badges,
	})
	m := tui.NewModel(
		container,
		tui.WithRuntimeConfig(runtimeCfg),
		tui.WithReloadConfigCallback(func() (tui.RuntimeConfig, error) {
			logger.Info("runtime config reload requested", "config_path", configPath)
			reloaded, err := loadRuntimeConfig(configPath, defaultCfg)
			if err != nil {
				logger.Error("runtime config reload failed", "config_path", configPath, "err", err)
				return tui.RuntimeConfig{}, err
			}
			logger.Info("runtime config reload complete", "config_path", configPath)
			return reloaded, nil
		}),
		tui.WithClipboard(clipboardWriter),
	)
	defer m.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	p := programFactory(m)
	g, gctx := errgroup.WithContext(runCtx)

	logger.Info("starting tui program loop", "tasks", len(container.Tasks()))
	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			logger.Error("tui program terminated with error", "err", err)
			return fmt.Errorf("run tui program: %w", err)
		}
		return nil
	})
	if cfg.UI.WatchConfig {
		// Watcher failures are logged and never end the program.
		g.Go(func() error {
			logger.Info("watching config file", "config_path", configPath)
			err := config.Watch(gctx, configPath, func() {
				logger.Info("config file changed", "config_path", configPath)
				reloaded, err := loadRuntimeConfig(configPath, defaultCfg)
				if err != nil {
					logger.Warn("config file reload failed", "config_path", configPath, "err", err)
				}
				p.Send(tui.ConfigReloadedMsg{Config: reloaded, Err: err})
			})
			if err != nil {
				logger.Warn("config watcher stopped", "config_path", configPath, "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// loadRuntimeConfig loads the runtime-configurable settings from disk.
func loadRuntimeConfig(configPath string, defaults config.Config) (tui.RuntimeConfig, error) {
	cfg, err := config.Load(configPath, defaults)
	if err != nil {
		return tui.RuntimeConfig{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	return toTUIRuntimeConfig(cfg), nil
}

// toTUIRuntimeConfig maps persisted config values into runtime model options.
func toTUIRuntimeConfig(cfg config.Config) tui.RuntimeConfig {
	return tui.RuntimeConfig{
		Labels: app.StatusLabels{
			domain.StatusAll: cfg.Labels.All,
			domain.StatusFilter(domain.StatusCompleted): cfg.Labels.Completed,
			domain.StatusFilter(domain.StatusPending):   cfg.Labels.Pending,
			domain.StatusFilter(domain.StatusPlanned):   cfg.Labels.Planned,
		},
		Badges: app.BadgeClasses{
			domain.StatusCompleted: cfg.Badges.Completed,
			domain.StatusPending:   cfg.Badges.Pending,
			domain.StatusPlanned:   cfg.Badges.Planned,
			"":                     cfg.Badges.Neutral,
		},
		ShowFilters:          cfg.UI.ShowFilters,
		MarkdownDescriptions: cfg.UI.MarkdownDescriptions,
		Keys: tui.KeyConfig{
			NewTask:       cfg.Keys.NewTask,
			ClearFilters:  cfg.Keys.ClearFilters,
			ToggleFilters: cfg.Keys.ToggleFilters,
			Yank:          cfg.Keys.Yank,
		},
	}
}

// runtimeLogger fans runtime events out to a styled console sink and an
// optional logfmt dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger configures runtime log sinks. The dev-file sink is only
// opened in dev mode; defaultDir is used when cfg names no directory.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, defaultDir string, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})
	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	devLogPath, err := devLogFilePath(cfg.DevFile.Dir, defaultDir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

// DevLogPath returns the active dev log file path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

func (l *runtimeLogger) active() []*charmLog.Logger {
	if l == nil {
		return nil
	}
	out := make([]*charmLog.Logger, 0, len(l.sinks))
	for _, sink := range l.sinks {
		if sink == nil || (sink == l.consoleSink && !l.consoleEnabled) {
			continue
		}
		out = append(out, sink)
	}
	return out
}

func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	for _, sink := range l.active() {
		sink.Debug(msg, keyvals...)
	}
}

func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	for _, sink := range l.active() {
		sink.Info(msg, keyvals...)
	}
}

func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	for _, sink := range l.active() {
		sink.Warn(msg, keyvals...)
	}
}

func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	for _, sink := range l.active() {
		sink.Error(msg, keyvals...)
	}
}

// devLogFilePath resolves the per-day dev log file. Relative directories are
// taken from the working directory.
func devLogFilePath(configDir, defaultDir, appName string, now time.Time) (string, error) {
	baseDir := strings.TrimSpace(configDir)
	if baseDir == "" {
		baseDir = strings.TrimSpace(defaultDir)
	}
	if baseDir == "" {
		return "", fmt.Errorf("no log directory")
	}
	if !filepath.IsAbs(baseDir) {
		abs, err := filepath.Abs(baseDir)
		if err != nil {
			return "", fmt.Errorf("resolve log dir: %w", err)
		}
		baseDir = abs
	}
	fileName := fmt.Sprintf("%s-%s.log", sanitizeLogFileStem(appName), now.Format("20060102"))
	return filepath.Join(filepath.Clean(baseDir), fileName), nil
}

// sanitizeLogFileStem normalizes app names into safe file-name segments.
func sanitizeLogFileStem(appName string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem := strings.Trim(replacer.Replace(strings.TrimSpace(appName)), "-")
	if stem == "" {
		return platform.DefaultAppName
	}
	return stem
}
