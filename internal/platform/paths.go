package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Paths holds the resolved per-app locations.
type Paths struct {
	ConfigPath string
	DataDir    string
	LogDir     string
}

// Options selects the app name and dev-mode suffix.
type Options struct {
	AppName string
	DevMode bool
}

// Bases are the per-user roots that app directories are joined onto.
type Bases struct {
	Home   string
	Config string
	Data   string
}

// DefaultAppName is used when no app name is configured.
const DefaultAppName = "tasklist"

func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths for the current OS and environment.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = DefaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}
	bases, err := userBases()
	if err != nil {
		return Paths{}, err
	}
	env := map[string]string{}
	for _, name := range []string{"XDG_CONFIG_HOME", "XDG_DATA_HOME", "XDG_STATE_HOME", "APPDATA", "LOCALAPPDATA"} {
		env[name] = os.Getenv(name)
	}
	return PathsFor(runtime.GOOS, env, bases, appName)
}

func userBases() (Bases, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Bases{}, fmt.Errorf("user home dir: %w", err)
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Bases{}, fmt.Errorf("user config dir: %w", err)
	}
	return Bases{Home: home, Config: configDir, Data: configDir}, nil
}

// PathsFor resolves paths for goos from explicit inputs. env overrides the
// bases following each platform's conventions.
func PathsFor(goos string, env map[string]string, bases Bases, appName string) (Paths, error) {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}
	if bases.Home == "" || bases.Config == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	if bases.Data == "" {
		bases.Data = bases.Config
	}
	lookup := func(name, fallback string) string {
		if v := strings.TrimSpace(env[name]); v != "" {
			return v
		}
		return fallback
	}

	var configBase, dataDir, logDir string
	switch goos {
	case "linux":
		configBase = lookup("XDG_CONFIG_HOME", bases.Config)
		dataDir = filepath.Join(lookup("XDG_DATA_HOME", filepath.Join(bases.Home, ".local", "share")), appName)
		logDir = filepath.Join(lookup("XDG_STATE_HOME", filepath.Join(bases.Home, ".local", "state")), appName, "log")
	case "darwin":
		configBase = bases.Config
		dataDir = filepath.Join(bases.Data, appName)
		logDir = filepath.Join(bases.Home, "Library", "Logs", appName)
	case "windows":
		configBase = lookup("APPDATA", bases.Config)
		dataDir = filepath.Join(lookup("LOCALAPPDATA", bases.Data), appName)
		logDir = filepath.Join(dataDir, "logs")
	default:
		configBase = bases.Config
		dataDir = filepath.Join(bases.Data, appName)
		logDir = filepath.Join(dataDir, "log")
	}

	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    dataDir,
		LogDir:     logDir,
	}, nil
}
