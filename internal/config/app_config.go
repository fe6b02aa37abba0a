package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"github.com/shaharia-lab/wasmdev/internal/envmode"
)

// AppConfig holds all process-level configuration loaded from environment variables.
type AppConfig struct {
	// NodeEnv is the environment mode. It takes precedence over --mode.
	NodeEnv string `envconfig:"NODE_ENV"`

	// Host is the interface the shim server binds to. Defaults to localhost.
	Host string `envconfig:"WASMDEV_HOST" default:"localhost"`

	// Port is the shim server port. Defaults to 9090.
	Port int `envconfig:"PORT" default:"9090"`

	// DocRoot is the directory the shim server serves. Defaults to dist.
	DocRoot string `envconfig:"WASMDEV_DOCROOT" default:"dist"`

	// ProjectFile is the YAML project file, relative to the project root.
	ProjectFile string `envconfig:"WASMDEV_CONFIG" default:"wasmdev.yaml"`

	// DataDir holds logs. Defaults to ~/.wasmdev.
	DataDir string `envconfig:"WASMDEV_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.wasmdev if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".wasmdev")
	}
	return &c, nil
}

// Mode resolves the environment mode against the --mode flag value.
func (c *AppConfig) Mode(flag string) envmode.Mode {
	return envmode.Resolve(c.NodeEnv, flag)
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory (~/.wasmdev/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ProjectFilePath resolves the project file against root.
func (c *AppConfig) ProjectFilePath(root string) string {
	if filepath.IsAbs(c.ProjectFile) {
		return c.ProjectFile
	}
	return filepath.Join(root, c.ProjectFile)
}
