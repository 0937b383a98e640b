package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/evanschultz/tasklist/internal/config"
	"github.com/evanschultz/tasklist/internal/domain"
	"github.com/evanschultz/tasklist/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("TASKLIST_DEV_MODE", "false")
	_ = os.Unsetenv("TASKLIST_CONFIG")
	_ = os.Unsetenv("TASKLIST_APP_NAME")
	os.Exit(m.Run())
}

// fakeProgram returns immediately.
type fakeProgram struct {
	runErr error
}

func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

func (fakeProgram) Send(tea.Msg) {}

// watchingProgram rewrites the config file, slower than the watcher settle
// delay, until the watcher reports back.
type watchingProgram struct {
	configPath string
	content    string

	mu   sync.Mutex
	sent []tea.Msg
	got  chan struct{}
	once sync.Once
}

func (p *watchingProgram) Run() (tea.Model, error) {
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-p.got:
			return nil, nil
		case <-deadline:
			return nil, errors.New("no reload message before deadline")
		case <-tick.C:
			if err := os.WriteFile(p.configPath, []byte(p.content), 0o644); err != nil {
				return nil, err
			}
		}
	}
}

func (p *watchingProgram) Send(msg tea.Msg) {
	p.mu.Lock()
	p.sent = append(p.sent, msg)
	p.mu.Unlock()
	p.once.Do(func() { close(p.got) })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func stubProgram(t *testing.T, p program) *[]tea.Model {
	t.Helper()
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	models := []tea.Model{}
	programFactory = func(m tea.Model) program {
		models = append(models, m)
		return p
	}
	return &models
}

// TestRunVersion verifies fang wires the version flag.
func TestRunVersion(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunStartsProgram verifies the root command hands a tui.Model to the program.
func TestRunStartsProgram(t *testing.T) {
	models := stubProgram(t, fakeProgram{})
	cfgPath := filepath.Join(t.TempDir(), "missing.toml")
	if err := run(context.Background(), []string{"--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if len(*models) != 1 {
		t.Fatalf("expected one program, got %d", len(*models))
	}
	if _, ok := (*models)[0].(tui.Model); !ok {
		t.Fatalf("expected tui.Model, got %T", (*models)[0])
	}
}

// TestRunProgramError verifies program failures are wrapped.
func TestRunProgramError(t *testing.T) {
	stubProgram(t, fakeProgram{runErr: errors.New("tty gone")})
	cfgPath := filepath.Join(t.TempDir(), "missing.toml")
	err := run(context.Background(), []string{"--config", cfgPath}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "run tui program: tty gone") {
		t.Fatalf("expected wrapped program error, got %v", err)
	}
}

// TestRunConfigEnvOverride verifies TASKLIST_CONFIG is honoured.
func TestRunConfigEnvOverride(t *testing.T) {
	stubProgram(t, fakeProgram{})
	cfgPath := writeConfig(t, "[logging]\nlevel = \"loud\"\n")
	t.Setenv("TASKLIST_CONFIG", cfgPath)
	err := run(context.Background(), nil, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), cfgPath) {
		t.Fatalf("expected env config to be loaded and rejected, got %v", err)
	}
}

// TestRunRejectsInvalidLoggingLevelFromConfig verifies config validation errors surface.
func TestRunRejectsInvalidLoggingLevelFromConfig(t *testing.T) {
	stubProgram(t, fakeProgram{})
	cfgPath := writeConfig(t, "[logging]\nlevel = \"verbose\"\n")
	err := run(context.Background(), []string{"--config", cfgPath}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "invalid logging.level") {
		t.Fatalf("expected logging level error, got %v", err)
	}
}

// TestRunInvalidFlag verifies unknown flags fail.
func TestRunInvalidFlag(t *testing.T) {
	if err := run(context.Background(), []string{"--bogus"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

// TestRunUnknownCommand verifies stray arguments fail.
func TestRunUnknownCommand(t *testing.T) {
	stubProgram(t, fakeProgram{})
	if err := run(context.Background(), []string{"wat"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

// TestRunPathsCommand verifies resolved paths are printed.
func TestRunPathsCommand(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"--app", "tlx", "--dev", "paths"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	output := out.String()
	for _, want := range []string{"app: tlx", "dev_mode: true", "tlx-dev", "log_dir:"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in paths output, got %q", want, output)
		}
	}
}

// TestRunListCommand verifies the table honours filters and config labels.
func TestRunListCommand(t *testing.T) {
	cfgPath := writeConfig(t, "[labels]\ncompleted = \"Done\"\n")

	var out strings.Builder
	if err := run(context.Background(), []string{"--config", cfgPath, "list"}, &out, io.Discard); err != nil {
		t.Fatalf("run(list) error = %v", err)
	}
	output := ansi.Strip(out.String())
	for _, want := range []string{"NAME", "Zrobić zakupy spożywcze", "Opłacić rachunki", "Urodziny mamy", "Done", "3 of 3 tasks"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in list output, got\n%s", want, output)
		}
	}

	out.Reset()
	if err := run(context.Background(), []string{"--config", cfgPath, "list", "--name", " ZAKUP ", "--status", "completed"}, &out, io.Discard); err != nil {
		t.Fatalf("run(list filtered) error = %v", err)
	}
	output = ansi.Strip(out.String())
	if !strings.Contains(output, "1 of 3 tasks") || strings.Contains(output, "Urodziny") {
		t.Fatalf("unexpected filtered output\n%s", output)
	}

	out.Reset()
	if err := run(context.Background(), []string{"--config", cfgPath, "list", "--date", "2030-01-01"}, &out, io.Discard); err != nil {
		t.Fatalf("run(list empty) error = %v", err)
	}
	if !strings.Contains(ansi.Strip(out.String()), "0 of 3 tasks") {
		t.Fatalf("expected empty result, got\n%s", out.String())
	}

	err := run(context.Background(), []string{"--config", cfgPath, "list", "--status", "someday"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "invalid --status") {
		t.Fatalf("expected invalid status error, got %v", err)
	}
}

// TestRunDevModeWritesLogFile verifies the dev-file sink receives runtime logs.
func TestRunDevModeWritesLogFile(t *testing.T) {
	stubProgram(t, fakeProgram{})
	logDir := t.TempDir()
	cfgPath := writeConfig(t, fmt.Sprintf("[logging]\nlevel = \"debug\"\n[logging.dev_file]\nenabled = true\ndir = %q\n", logDir))

	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--dev", "--config", cfgPath}, io.Discard, &stderr); err != nil {
		t.Fatalf("run(dev) error = %v", err)
	}
	matches, err := filepath.Glob(filepath.Join(logDir, "tasklist-*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one dev log file, got %v (%v)", matches, err)
	}
	content, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"startup configuration resolved", "command flow complete"} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected %q in dev log, got %q", want, string(content))
		}
	}
	if strings.Contains(stderr.String(), "startup configuration resolved") {
		t.Fatalf("expected console sink muted during tui, got %q", stderr.String())
	}
}

// TestRunWatchConfigSendsReload verifies file edits reach the program as ConfigReloadedMsg.
func TestRunWatchConfigSendsReload(t *testing.T) {
	content := "[ui]\nwatch_config = true\n[labels]\ncompleted = \"Done\"\n"
	cfgPath := writeConfig(t, "[ui]\nwatch_config = true\n")
	p := &watchingProgram{configPath: cfgPath, content: content, got: make(chan struct{})}
	stubProgram(t, p)

	if err := run(context.Background(), []string{"--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(watch) error = %v", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sent) == 0 {
		t.Fatal("expected at least one message")
	}
	msg, ok := p.sent[0].(tui.ConfigReloadedMsg)
	if !ok {
		t.Fatalf("expected ConfigReloadedMsg, got %T", p.sent[0])
	}
	if msg.Err != nil {
		t.Fatalf("unexpected reload error %v", msg.Err)
	}
	if got := msg.Config.Labels[domain.StatusFilter(domain.StatusCompleted)]; got != "Done" {
		t.Fatalf("expected reloaded label, got %q", got)
	}
}

// TestParseBoolEnv verifies env parsing.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("TASKLIST_TEST_BOOL", "true")
	if v, ok := parseBoolEnv("TASKLIST_TEST_BOOL"); !ok || !v {
		t.Fatalf("expected true/ok, got %t/%t", v, ok)
	}
	t.Setenv("TASKLIST_TEST_BOOL", "nope")
	if _, ok := parseBoolEnv("TASKLIST_TEST_BOOL"); ok {
		t.Fatal("expected invalid bool to be ignored")
	}
	t.Setenv("TASKLIST_TEST_BOOL", "")
	if _, ok := parseBoolEnv("TASKLIST_TEST_BOOL"); ok {
		t.Fatal("expected empty bool to be ignored")
	}
}

// TestParseStatusFilter verifies case-insensitive status flags.
func TestParseStatusFilter(t *testing.T) {
	cases := map[string]domain.StatusFilter{
		"":          domain.StatusAll,
		"ALL":       domain.StatusAll,
		"pending":   domain.StatusFilter(domain.StatusPending),
		" Planned ": domain.StatusFilter(domain.StatusPlanned),
	}
	for raw, want := range cases {
		got, err := parseStatusFilter(raw)
		if err != nil || got != want {
			t.Fatalf("parseStatusFilter(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := parseStatusFilter("done"); err == nil {
		t.Fatal("expected unknown status error")
	}
}

// TestLoadRuntimeConfigMapsRuntimeFields verifies config-to-runtime mapping.
func TestLoadRuntimeConfigMapsRuntimeFields(t *testing.T) {
	cfgPath := writeConfig(t, `
[badges]
neutral = "99"
pending = "33"

[ui]
show_filters = false
markdown_descriptions = false

[keys]
new_task = "a"
yank = "Y"
`)
	got, err := loadRuntimeConfig(cfgPath, config.Default())
	if err != nil {
		t.Fatalf("loadRuntimeConfig() error = %v", err)
	}
	if got.ShowFilters || got.MarkdownDescriptions {
		t.Fatalf("expected ui toggles off, got %#v", got)
	}
	if got.Keys.NewTask != "a" || got.Keys.Yank != "Y" || got.Keys.ClearFilters != "c" {
		t.Fatalf("unexpected keys %#v", got.Keys)
	}
	if got.Badges.Class(domain.StatusPending) != "33" || got.Badges.Class(domain.Status("Archived")) != "99" {
		t.Fatalf("unexpected badges %#v", got.Badges)
	}
	if got.Labels.Label(domain.StatusAll) != "All" {
		t.Fatalf("unexpected labels %#v", got.Labels)
	}

	if _, err := loadRuntimeConfig(writeConfig(t, "[labels]\nall = \" \"\n"), config.Default()); err == nil {
		t.Fatal("expected blank label to be rejected")
	}
}

// TestRuntimeLoggerCanMuteConsoleSink verifies console muting.
func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	logger, err := newRuntimeLogger(&console, "tasklist", false, config.Default().Logging, t.TempDir(), func() time.Time {
		return time.Date(2025, 5, 12, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	if logger.DevLogPath() != "" {
		t.Fatal("expected no dev log outside dev mode")
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Debug("hidden")
	logger.Warn("after")

	out := console.String()
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("expected console output, got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug filtered at info level, got %q", out)
	}

	var nilLogger *runtimeLogger
	nilLogger.Info("ignored")
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("expected nil logger close to succeed, got %v", err)
	}
}

// TestRuntimeLoggerRejectsUnknownLevel verifies level parsing.
func TestRuntimeLoggerRejectsUnknownLevel(t *testing.T) {
	cfg := config.Default().Logging
	cfg.Level = "chatty"
	if _, err := newRuntimeLogger(io.Discard, "tasklist", false, cfg, "", nil); err == nil {
		t.Fatal("expected level parse error")
	}
}

// TestDevLogFilePath verifies directory defaulting and file naming.
func TestDevLogFilePath(t *testing.T) {
	now := time.Date(2025, 5, 12, 12, 0, 0, 0, time.UTC)
	defaultDir := t.TempDir()

	got, err := devLogFilePath("", defaultDir, "my app", now)
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	if want := filepath.Join(defaultDir, "my-app-20250512.log"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got, err = devLogFilePath("logs", defaultDir, "tasklist", now)
	if err != nil {
		t.Fatalf("devLogFilePath(relative) error = %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(filepath.Dir(got)) != "logs" {
		t.Fatalf("expected absolute path under logs, got %q", got)
	}

	if _, err := devLogFilePath("", " ", "tasklist", now); err == nil {
		t.Fatal("expected error without any directory")
	}
}

// TestSanitizeLogFileStem verifies file-name normalization.
func TestSanitizeLogFileStem(t *testing.T) {
	cases := map[string]string{
		"tasklist":  "tasklist",
		" a/b:c ":   "a-b-c",
		"--":        "tasklist",
		"":          "tasklist",
		"my app\\x": "my-app-x",
	}
	for in, want := range cases {
		if got := sanitizeLogFileStem(in); got != want {
			t.Fatalf("sanitizeLogFileStem(%q) = %q, want %q", in, got, want)
		}
	}
}
