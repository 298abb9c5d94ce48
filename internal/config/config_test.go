package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testdataDir returns the absolute path to the testdata/config directory.
func testdataDir(t *testing.T) string {
	t.Helper()
	// Navigate from internal/config/ up to project root, then into testdata/config.
	dir, err := filepath.Abs(filepath.Join("..", "..", "testdata", "config"))
	if err != nil {
		t.Fatalf("failed to resolve testdata dir: %v", err)
	}
	return dir
}

// writeTempFile creates a temporary file with the given content and returns its path.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file %s: %v", path, err)
	}
	return path
}

func Test_LoadConfig_Cases(t *testing.T) {
	tests := []struct {
		name        string
		setupPath   func(t *testing.T) string
		wantErr     bool
		errContains string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid config loads all fields",
			setupPath: func(t *testing.T) string {
				t.Helper()
				return filepath.Join(testdataDir(t), "valid.yaml")
			},
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg == nil {
					t.Fatal("expected non-nil config")
				}
				if cfg.Server.Port != 9090 {
					t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
				}
				if cfg.Server.AuthToken != "test-secret-token" {
					t.Errorf("Server.AuthToken = %q, want %q", cfg.Server.AuthToken, "test-secret-token")
				}
				if cfg.Server.Transport != TransportHTTP {
					t.Errorf("Server.Transport = %q, want %q", cfg.Server.Transport, TransportHTTP)
				}
				if cfg.Manager.BaseURL != "http://docker-manager.local:5000" {
					t.Errorf("Manager.BaseURL = %q", cfg.Manager.BaseURL)
				}
				if cfg.Manager.Token != "manager-token" {
					t.Errorf("Manager.Token = %q, want %q", cfg.Manager.Token, "manager-token")
				}
				if cfg.Manager.Timeout != 45 {
					t.Errorf("Manager.Timeout = %d, want 45", cfg.Manager.Timeout)
				}
				wantAllow := []string{"web*", "db"}
				if len(cfg.Safety.Containers.Allowlist) != len(wantAllow) {
					t.Errorf("Safety.Containers.Allowlist = %v, want %v", cfg.Safety.Containers.Allowlist, wantAllow)
				} else {
					for i, v := range wantAllow {
						if cfg.Safety.Containers.Allowlist[i] != v {
							t.Errorf("Safety.Containers.Allowlist[%d] = %q, want %q", i, cfg.Safety.Containers.Allowlist[i], v)
						}
					}
				}
				if len(cfg.Safety.Containers.Denylist) != 1 || cfg.Safety.Containers.Denylist[0] != "docker-manager" {
					t.Errorf("Safety.Containers.Denylist = %v, want [docker-manager]", cfg.Safety.Containers.Denylist)
				}
				if len(cfg.Safety.Networks.Allowlist) != 0 {
					t.Errorf("Safety.Networks.Allowlist = %v, want empty", cfg.Safety.Networks.Allowlist)
				}
				if len(cfg.Safety.Networks.Denylist) != 2 {
					t.Errorf("Safety.Networks.Denylist = %v, want [host bridge]", cfg.Safety.Networks.Denylist)
				}
				if !cfg.Audit.Enabled {
					t.Error("Audit.Enabled = false, want true")
				}
				if cfg.Audit.LogPath != "/tmp/docker-mcp-audit.log" {
					t.Errorf("Audit.LogPath = %q", cfg.Audit.LogPath)
				}
				if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
					t.Errorf("Log = %+v, want debug/json", cfg.Log)
				}
			},
		},
		{
			name: "partial config keeps defaults for absent keys",
			setupPath: func(t *testing.T) string {
				t.Helper()
				return filepath.Join(testdataDir(t), "partial.yaml")
			},
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Manager.BaseURL != "https://manager.example.com" {
					t.Errorf("Manager.BaseURL = %q", cfg.Manager.BaseURL)
				}
				if cfg.Server.Port != 8080 {
					t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
				}
				if cfg.Server.Transport != TransportStdio {
					t.Errorf("Server.Transport = %q, want default %q", cfg.Server.Transport, TransportStdio)
				}
				if cfg.Log.Level != "info" {
					t.Errorf("Log.Level = %q, want default info", cfg.Log.Level)
				}
			},
		},
		{
			name: "missing file returns error",
			setupPath: func(t *testing.T) string {
				t.Helper()
				return "/nonexistent/path/config.yaml"
			},
			wantErr:     true,
			errContains: "no such file",
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg != nil {
					t.Error("expected nil config for missing file")
				}
			},
		},
		{
			name: "invalid YAML returns unmarshal error",
			setupPath: func(t *testing.T) string {
				t.Helper()
				return filepath.Join(testdataDir(t), "invalid.yaml")
			},
			wantErr:     true,
			errContains: "unmarshal",
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg != nil {
					t.Error("expected nil config for invalid YAML")
				}
			},
		},
		{
			name: "empty file returns defaults",
			setupPath: func(t *testing.T) string {
				t.Helper()
				return writeTempFile(t, "empty.yaml", "")
			},
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg == nil {
					t.Fatal("expected non-nil config for empty file")
				}
				if cfg.Server.Port != 8080 {
					t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
				}
				if cfg.Manager.BaseURL != "" {
					t.Errorf("Manager.BaseURL = %q, want empty", cfg.Manager.BaseURL)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setupPath(t)
			cfg, err := LoadConfig(path)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.errContains)) {
					t.Errorf("error = %q, want it to contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func Test_DefaultConfig_DistinctInstances(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	if a == b {
		t.Fatal("DefaultConfig() returned the same pointer twice")
	}
	a.Server.Port = 1
	if b.Server.Port != 8080 {
		t.Errorf("mutating one default changed another: Port = %d", b.Server.Port)
	}
}

func Test_Validate_Cases(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		wantErr     bool
		errContains string
	}{
		{
			name: "stdio with http base URL",
			mutate: func(cfg *Config) {
				cfg.Manager.BaseURL = "http://127.0.0.1:5000"
			},
		},
		{
			name: "http transport with https base URL",
			mutate: func(cfg *Config) {
				cfg.Manager.BaseURL = "https://manager.example.com/prefix"
				cfg.Server.Transport = TransportHTTP
			},
		},
		{
			name:        "missing base URL",
			mutate:      func(cfg *Config) {},
			wantErr:     true,
			errContains: "base_url is required",
		},
		{
			name: "relative base URL",
			mutate: func(cfg *Config) {
				cfg.Manager.BaseURL = "docker-manager:5000"
			},
			wantErr:     true,
			errContains: "absolute http(s) URL",
		},
		{
			name: "unsupported scheme",
			mutate: func(cfg *Config) {
				cfg.Manager.BaseURL = "ftp://manager"
			},
			wantErr:     true,
			errContains: "absolute http(s) URL",
		},
		{
			name: "unknown transport",
			mutate: func(cfg *Config) {
				cfg.Manager.BaseURL = "http://manager"
				cfg.Server.Transport = "sse"
			},
			wantErr:     true,
			errContains: "unknown transport",
		},
		{
			name: "http transport with invalid port",
			mutate: func(cfg *Config) {
				cfg.Manager.BaseURL = "http://manager"
				cfg.Server.Transport = TransportHTTP
				cfg.Server.Port = 70000
			},
			wantErr:     true,
			errContains: "invalid port",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Manager.BaseURL = "http://manager"
				cfg.Manager.Timeout = -1
			},
			wantErr:     true,
			errContains: "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error = %q, want it to contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
