package testsupport

import (
	"path/filepath"
	"testing"

	"lens/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults to the local storage backend and the sniff recognizer so tests
// never touch the network.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.ObjectsDir = filepath.Join(base, "objects")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.API.Bind = "127.0.0.1:0"
	cfg.API.PublicBaseURL = "http://127.0.0.1:0"
	cfg.Storage.Backend = config.StorageBackendLocal
	cfg.Recognizer.Backend = config.RecognizerBackendSniff

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithToken sets the API bearer token on the test config.
func WithToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.API.Token = token
	}
}

// WithUploadWindow overrides the upload watchdog window in seconds.
func WithUploadWindow(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.UploadWindow = seconds
	}
}

// WithMaxBlobMiB overrides the recognizer size limit.
func WithMaxBlobMiB(mib int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Recognizer.MaxBlobMiB = mib
	}
}

// WithCallbackTimeout overrides the callback request timeout in seconds.
func WithCallbackTimeout(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Callback.RequestTimeout = seconds
	}
}
