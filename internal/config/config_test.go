package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cryptogamefiverse/nftdash/internal/constants"
	"github.com/cryptogamefiverse/nftdash/internal/models"
	"github.com/cryptogamefiverse/nftdash/internal/table"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.BaseURL != "https://api.opensea.io" {
		t.Errorf("expected default BaseURL to be https://api.opensea.io, got %s", cfg.BaseURL)
	}
	if len(cfg.Collections) != 15 {
		t.Errorf("expected 15 default collections, got %d", len(cfg.Collections))
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("expected default MaxRetries to be 0, got %d", cfg.MaxRetries)
	}
	if cfg.PageSize != 10 {
		t.Errorf("expected default PageSize to be 10, got %d", cfg.PageSize)
	}
	if cfg.SortKey != "volume" || cfg.SortDirection != "asc" {
		t.Errorf("expected default sort volume/asc, got %s/%s", cfg.SortKey, cfg.SortDirection)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}

	// defaults must not alias the package-level slug list
	cfg.Collections[0] = "changed"
	if constants.DefaultCollections[0] == "changed" {
		t.Error("NewConfig shares its Collections slice with constants.DefaultCollections")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nftdash", "config")

	cfg := NewConfig()
	cfg.APIKey = "test-api-key-12345"
	cfg.Collections = []string{"doodles-official", "meebits"}
	cfg.ProxyMode = "basic"
	cfg.ProxyHost = "proxy.internal"
	cfg.ProxyPort = 3128
	cfg.ProxyUser = "alice"
	cfg.ProxyPassword = "secret"
	cfg.RatePerSecond = 2.5
	cfg.MaxConcurrent = 4
	cfg.PageSize = 25
	cfg.Dense = true
	cfg.Window = "seven_day"
	cfg.SortKey = "floorPrice"
	cfg.SortDirection = "desc"
	cfg.AWSRegion = "eu-west-1"

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
	if perm := info.Mode().Perm(); runtime.GOOS != "windows" && perm != 0600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// the proxy password is never persisted
	want := *cfg
	want.ProxyPassword = ""
	if diff := cmp.Diff(&want, loaded); diff != "" {
		t.Errorf("loaded config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.BaseURL != constants.DefaultBaseURL {
		t.Errorf("expected defaults for missing file, got BaseURL %s", cfg.BaseURL)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	content := `[opensea]
collections = cyberkongz,veefriends cyberkongz

[view]
window = thirty_day
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff([]string{"cyberkongz", "veefriends"}, cfg.Collections); diff != "" {
		t.Errorf("collections mismatch (-want +got):\n%s", diff)
	}
	if cfg.Window != "thirty_day" {
		t.Errorf("Window = %s, want thirty_day", cfg.Window)
	}
	if cfg.PageSize != 10 {
		t.Errorf("unset page_size should keep default 10, got %d", cfg.PageSize)
	}
}

func TestLoadInvalidINI(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(configPath, []byte("[opensea\nbase_url"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected error for malformed ini file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid defaults", func(c *Config) {}, nil},
		{"missing base url", func(c *Config) { c.BaseURL = " " }, ErrMissingBaseURL},
		{"no collections", func(c *Config) { c.Collections = nil }, ErrNoCollections},
		{"bad proxy mode", func(c *Config) { c.ProxyMode = "socks" }, ErrInvalidProxyMode},
		{"ntlm without host", func(c *Config) { c.ProxyMode = "ntlm" }, ErrMissingProxyHost},
		{"system proxy without host", func(c *Config) { c.ProxyMode = "system" }, nil},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }, ErrInvalidTimeout},
		{"too many retries", func(c *Config) { c.MaxRetries = 11 }, ErrInvalidMaxRetries},
		{"negative rate", func(c *Config) { c.RatePerSecond = -1 }, ErrInvalidRate},
		{"negative concurrency", func(c *Config) { c.MaxConcurrent = -2 }, ErrInvalidMaxConcurrent},
		{"page size 20", func(c *Config) { c.PageSize = 20 }, ErrInvalidPageSize},
		{"unknown window", func(c *Config) { c.Window = "yearly" }, ErrInvalidWindow},
		{"window label", func(c *Config) { c.Window = "7d" }, nil},
		{"unknown sort key", func(c *Config) { c.SortKey = "rarity" }, ErrInvalidSortKey},
		{"bad direction", func(c *Config) { c.SortDirection = "up" }, ErrInvalidSortDirection},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestViewOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.PageSize = 50
	cfg.Dense = true
	cfg.Window = "30d"
	cfg.SortKey = "name"
	cfg.SortDirection = "desc"

	opts, err := cfg.ViewOptions()
	if err != nil {
		t.Fatalf("ViewOptions failed: %v", err)
	}

	v := table.NewView(opts...)
	if v.Page.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", v.Page.PageSize)
	}
	if !v.Dense {
		t.Error("Dense = false, want true")
	}
	if v.Window != models.WindowThirtyDay {
		t.Errorf("Window = %s, want thirty_day", v.Window)
	}
	if v.Sort != (table.SortSpec{Key: table.KeyName, Direction: table.Descending}) {
		t.Errorf("Sort = %v, want name/desc", v.Sort)
	}

	cfg.SortKey = "rarity"
	if _, err := cfg.ViewOptions(); !errors.Is(err, ErrInvalidSortKey) {
		t.Errorf("expected ErrInvalidSortKey, got %v", err)
	}
}

func TestParseCollections(t *testing.T) {
	got := ParseCollections(" meebits,, doodles-official\tmeebits\ncool-cats-nft ")
	want := []string{"meebits", "doodles-official", "meebits", "cool-cats-nft"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseCollections mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveAPIKeySource(t *testing.T) {
	cfg := NewConfig()
	cfg.APIKey = "from-config"

	t.Setenv(constants.APIKeyEnvVar, "")
	t.Setenv(constants.FallbackAPIKeyEnvVar, "from-fallback")

	tests := []struct {
		name       string
		flag       string
		env        string
		cfg        *Config
		wantKey    string
		wantSource string
	}{
		{"flag wins", "from-flag", "from-env", cfg, "from-flag", "flag"},
		{"env beats config", "", "from-env", cfg, "from-env", "environment"},
		{"config beats fallback", "", "", cfg, "from-config", "config"},
		{"fallback env", "", "", NewConfig(), "from-fallback", "fallback-environment"},
		{"nil config", "", "", nil, "from-fallback", "fallback-environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(constants.APIKeyEnvVar, tt.env)
			key, source := ResolveAPIKeySource(tt.flag, tt.cfg)
			if key != tt.wantKey || source != tt.wantSource {
				t.Errorf("ResolveAPIKeySource() = (%q, %q), want (%q, %q)", key, source, tt.wantKey, tt.wantSource)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "(not set)"},
		{"abc", "****"},
		{"0123456789abcdef", "****cdef"},
	}
	for _, tt := range tests {
		if got := MaskAPIKey(tt.in); got != tt.want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
