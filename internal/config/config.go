package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	ObjectsDir string `toml:"objects_dir"`
	LogDir     string `toml:"log_dir"`
}

// API contains the HTTP listener configuration.
type API struct {
	Bind          string `toml:"bind"`
	PublicBaseURL string `toml:"public_base_url"`
	Token         string `toml:"token"`
}

// Storage contains configuration for the blob object store.
type Storage struct {
	Backend string `toml:"backend"`
	Bucket  string `toml:"bucket"`
	Region  string `toml:"region"`
}

// Recognizer contains configuration for label detection.
type Recognizer struct {
	Backend       string  `toml:"backend"`
	MaxBlobMiB    int     `toml:"max_blob_mib"`
	MaxLabels     int     `toml:"max_labels"`
	MinConfidence float64 `toml:"min_confidence"`
}

// Callback contains configuration for result delivery.
type Callback struct {
	RequestTimeout int `toml:"request_timeout"`
}

// Workflow contains configuration for recognition workflow timing.
type Workflow struct {
	UploadWindow int `toml:"upload_window"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Lens.
//
// Configuration sections by subsystem:
//   - Paths: data, object, and log directories
//   - API: HTTP bind address, public base URL, and bearer token
//   - Storage: blob object store backend (local directory or S3)
//   - Recognizer: detection backend and content limits
//   - Callback: result delivery timeout
//   - Workflow: upload watchdog window
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	API        API        `toml:"api"`
	Storage    Storage    `toml:"storage"`
	Recognizer Recognizer `toml:"recognizer"`
	Callback   Callback   `toml:"callback"`
	Workflow   Workflow   `toml:"workflow"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lens/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/lens/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lens.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// DatabasePath returns the location of the blob record database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "lens.db")
}

// EnsureDirectories creates required directories for daemon operation.
// ObjectsDir is only needed by the local storage backend.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir}
	if c.Storage.Backend == StorageBackendLocal {
		dirs = append(dirs, c.Paths.ObjectsDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
