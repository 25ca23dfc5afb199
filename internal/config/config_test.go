package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lens/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "lens")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.ObjectsDir != filepath.Join(wantData, "objects") {
		t.Fatalf("unexpected objects dir: %q", cfg.Paths.ObjectsDir)
	}
	if cfg.API.Bind != "127.0.0.1:7414" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if cfg.API.PublicBaseURL != "http://127.0.0.1:7414" {
		t.Fatalf("unexpected public base url: %q", cfg.API.PublicBaseURL)
	}
	if cfg.Storage.Backend != config.StorageBackendLocal {
		t.Fatalf("expected local storage by default, got %q", cfg.Storage.Backend)
	}
	if cfg.Recognizer.Backend != config.RecognizerBackendSniff {
		t.Fatalf("expected sniff recognizer by default, got %q", cfg.Recognizer.Backend)
	}
	if cfg.Recognizer.MaxBlobMiB != 15 {
		t.Fatalf("unexpected max blob size: %d", cfg.Recognizer.MaxBlobMiB)
	}
	if cfg.Workflow.UploadWindow != 300 {
		t.Fatalf("unexpected upload window: %d", cfg.Workflow.UploadWindow)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "lens.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.ObjectsDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lens.toml")

	type payload struct {
		API struct {
			Bind          string `toml:"bind"`
			PublicBaseURL string `toml:"public_base_url"`
		} `toml:"api"`
		Recognizer struct {
			MaxBlobMiB int `toml:"max_blob_mib"`
		} `toml:"recognizer"`
		Workflow struct {
			UploadWindow int `toml:"upload_window"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.API.Bind = "0.0.0.0:9000"
	custom.API.PublicBaseURL = "https://lens.example.com/"
	custom.Recognizer.MaxBlobMiB = 4
	custom.Workflow.UploadWindow = 60
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.API.Bind != "0.0.0.0:9000" {
		t.Fatalf("expected bind from file, got %q", cfg.API.Bind)
	}
	if cfg.API.PublicBaseURL != "https://lens.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.PublicBaseURL)
	}
	if cfg.Recognizer.MaxBlobMiB != 4 {
		t.Fatalf("expected max blob override, got %d", cfg.Recognizer.MaxBlobMiB)
	}
	if cfg.Workflow.UploadWindow != 60 {
		t.Fatalf("expected upload window override, got %d", cfg.Workflow.UploadWindow)
	}
}

func TestTokenEnvFallback(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("LENS_API_TOKEN", "env-token")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.Token != "env-token" {
		t.Fatalf("expected token from env, got %q", cfg.API.Token)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "upload_window") {
		t.Fatalf("sample config missing upload_window: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Storage.Backend != config.StorageBackendLocal {
		t.Fatalf("expected sample to document local backend, got %q", cfg.Storage.Backend)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "zero upload window", mutate: func(c *config.Config) { c.Workflow.UploadWindow = 0 }},
		{name: "zero callback timeout", mutate: func(c *config.Config) { c.Callback.RequestTimeout = 0 }},
		{name: "unknown storage backend", mutate: func(c *config.Config) { c.Storage.Backend = "ftp" }},
		{name: "s3 without bucket", mutate: func(c *config.Config) {
			c.Storage.Backend = config.StorageBackendS3
			c.Storage.Region = "us-east-1"
		}},
		{name: "rekognition without s3", mutate: func(c *config.Config) {
			c.Recognizer.Backend = config.RecognizerBackendRekognition
		}},
		{name: "negative confidence", mutate: func(c *config.Config) { c.Recognizer.MinConfidence = -1 }},
		{name: "confidence above range", mutate: func(c *config.Config) { c.Recognizer.MinConfidence = 101 }},
		{name: "zero max labels", mutate: func(c *config.Config) { c.Recognizer.MaxLabels = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateAcceptsS3Rekognition(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = config.StorageBackendS3
	cfg.Storage.Bucket = "lens-blobs"
	cfg.Storage.Region = "us-east-1"
	cfg.Recognizer.Backend = config.RecognizerBackendRekognition
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
