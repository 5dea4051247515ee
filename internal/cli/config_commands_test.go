package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cryptogamefiverse/nftdash/internal/config"
	"github.com/cryptogamefiverse/nftdash/internal/models"
	"github.com/cryptogamefiverse/nftdash/internal/table"
)

// TestConfigCmd tests the config command group
func TestConfigCmd(t *testing.T) {
	cmd := newConfigCmd()
	if cmd.Use != "config" {
		t.Errorf("Expected Use='config', got '%s'", cmd.Use)
	}

	expectedSubs := []string{"init", "show", "test", "path"}
	subcommands := cmd.Commands()
	if len(subcommands) != len(expectedSubs) {
		t.Errorf("Expected %d subcommands, got %d", len(expectedSubs), len(subcommands))
	}

	found := make(map[string]bool)
	for _, sub := range subcommands {
		found[sub.Name()] = true
		if sub.Short == "" {
			t.Errorf("Subcommand '%s' has no short description", sub.Name())
		}
		if sub.RunE == nil {
			t.Errorf("Subcommand '%s' has no RunE", sub.Name())
		}
	}
	for _, expected := range expectedSubs {
		if !found[expected] {
			t.Errorf("Subcommand '%s' not found", expected)
		}
	}

	if newConfigInitCmd().Flags().Lookup("force") == nil {
		t.Error("--force flag not found")
	}
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	AddCommands(root)

	for _, name := range []string{"view", "list", "serve", "export", "config", "completion"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

// TestConfigInit drives the interactive setup with scripted answers
func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	input := strings.Join([]string{
		"secret-key-1234", // api key
		"",                // base url
		"doodles-official, azuki",
		"25",
		"7",  // invalid window, asked again
		"7d", // window
		"n",  // proxy
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := runConfigInit(strings.NewReader(input), &out, path, false); err != nil {
		t.Fatalf("runConfigInit failed: %v", err)
	}
	if !strings.Contains(out.String(), "Configuration saved to") {
		t.Errorf("missing confirmation in output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Error:") {
		t.Error("invalid window was not reported")
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.APIKey != "secret-key-1234" {
		t.Errorf("APIKey mismatch: got '%s'", cfg.APIKey)
	}
	if cfg.BaseURL != config.NewConfig().BaseURL {
		t.Errorf("BaseURL should keep the default, got '%s'", cfg.BaseURL)
	}
	if got := strings.Join(cfg.Collections, ","); got != "doodles-official,azuki" {
		t.Errorf("Collections mismatch: got %s", got)
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize mismatch: got %d", cfg.PageSize)
	}
	if cfg.Window != string(models.WindowSevenDay) {
		t.Errorf("Window mismatch: got %s", cfg.Window)
	}
	if cfg.ProxyMode != "no-proxy" {
		t.Errorf("ProxyMode mismatch: got %s", cfg.ProxyMode)
	}
}

func TestConfigInitKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("[opensea]\napi_key = keep\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runConfigInit(strings.NewReader(""), &out, path, false); err != nil {
		t.Fatalf("runConfigInit failed: %v", err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("expected existing-config notice, got:\n%s", out.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "keep") {
		t.Error("existing config was overwritten without --force")
	}
}

func TestPrintConfigMasksKey(t *testing.T) {
	cfg := config.NewConfig()
	cfg.APIKey = "abcdefgh9876"

	var out bytes.Buffer
	printConfig(&out, cfg, filepath.Join(t.TempDir(), "missing"))

	if strings.Contains(out.String(), "abcdefgh") {
		t.Error("API key printed in clear")
	}
	if !strings.Contains(out.String(), "****9876") {
		t.Errorf("masked key not shown:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "file does not exist") {
		t.Error("missing file not reported")
	}
}

func TestApplyListOptions(t *testing.T) {
	base := table.NewView()

	tests := []struct {
		name    string
		opts    listOptions
		check   func(t *testing.T, v table.View)
		wantErr bool
	}{
		{
			name: "no overrides",
			opts: listOptions{},
			check: func(t *testing.T, v table.View) {
				if v.Sort != table.DefaultSort {
					t.Errorf("sort changed: %+v", v.Sort)
				}
			},
		},
		{
			name: "sort descending",
			opts: listOptions{sortKey: "floorPrice", desc: true},
			check: func(t *testing.T, v table.View) {
				if v.Sort.Key != table.KeyFloorPrice || v.Sort.Direction != table.Descending {
					t.Errorf("unexpected sort %+v", v.Sort)
				}
			},
		},
		{
			name: "desc keeps default key",
			opts: listOptions{desc: true},
			check: func(t *testing.T, v table.View) {
				if v.Sort.Key != table.DefaultSort.Key || v.Sort.Direction != table.Descending {
					t.Errorf("unexpected sort %+v", v.Sort)
				}
			},
		},
		{
			name: "window page size and density",
			opts: listOptions{window: "30d", pageSize: 50, dense: true},
			check: func(t *testing.T, v table.View) {
				if v.Window != models.WindowThirtyDay {
					t.Errorf("window = %s", v.Window)
				}
				if v.Page.PageSize != 50 {
					t.Errorf("page size = %d", v.Page.PageSize)
				}
				if !v.Dense {
					t.Error("dense not set")
				}
			},
		},
		{name: "unknown sort key", opts: listOptions{sortKey: "rarity"}, wantErr: true},
		{name: "unknown window", opts: listOptions{window: "1y"}, wantErr: true},
		{name: "invalid page size", opts: listOptions{pageSize: 7}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := applyListOptions(base, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("applyListOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, v)
			}
		})
	}
}
