// Package config provides configuration management for nftdash.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/cryptogamefiverse/nftdash/internal/constants"
	"github.com/cryptogamefiverse/nftdash/internal/models"
	"github.com/cryptogamefiverse/nftdash/internal/table"
)

// Config is the dashboard configuration.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\nftdash\config
//   - Unix: ~/.config/nftdash/config
//
// INI format:
//
//	[opensea]
//	base_url = https://api.opensea.io
//	api_key = <key>
//	collections = boredapeyachtclub, doodles-official, meebits
//
//	[http]
//	proxy_mode = no-proxy
//	timeout_seconds = 30
//	max_retries = 0
//	rate_per_second = 0
//	burst = 1
//	max_concurrent = 0
//
//	[view]
//	page_size = 10
//	dense = false
//	window = one_day
//	sort_key = volume
//	sort_direction = asc
//
//	[server]
//	addr = 127.0.0.1:8089
//
//	[export]
//	azure_account_url = https://<account>.blob.core.windows.net
//	aws_region = us-east-1
//
//	[logging]
//	level = info
//	file =
type Config struct {
	// [opensea]
	BaseURL     string
	APIKey      string
	Collections []string

	// [http]
	ProxyMode      string // "no-proxy", "system", "basic", "ntlm"
	ProxyHost      string
	ProxyPort      int
	ProxyUser      string
	ProxyPassword  string // never written back to disk
	NoProxy        string // Comma-separated list of hosts to bypass proxy
	ProxyWarmup    bool
	TimeoutSeconds int
	MaxRetries     int
	RatePerSecond  float64 // 0 disables client-side rate limiting
	Burst          int
	MaxConcurrent  int // 0 means one goroutine per collection

	// [view]
	PageSize      int
	Dense         bool
	Window        string
	SortKey       string
	SortDirection string

	// [server]
	ServerAddr string

	// [export]
	AzureAccountURL string
	AWSRegion       string

	// [logging]
	LogLevel string
	LogFile  string
}

// Validation errors
var (
	ErrMissingBaseURL       = errors.New("opensea base_url is required")
	ErrNoCollections        = errors.New("at least one collection slug is required")
	ErrInvalidProxyMode     = errors.New("proxy_mode must be one of no-proxy, system, basic, ntlm")
	ErrMissingProxyHost     = errors.New("proxy_host is required for basic and ntlm proxy modes")
	ErrInvalidTimeout       = errors.New("timeout_seconds must be between 1 and 600")
	ErrInvalidMaxRetries    = errors.New("max_retries must be between 0 and 10")
	ErrInvalidRate          = errors.New("rate_per_second must not be negative")
	ErrInvalidMaxConcurrent = errors.New("max_concurrent must not be negative")
	ErrInvalidPageSize      = errors.New("page_size must be 10, 25 or 50")
	ErrInvalidWindow        = errors.New("window must be one_day, seven_day or thirty_day")
	ErrInvalidSortKey       = errors.New("sort_key is not a table column")
	ErrInvalidSortDirection = errors.New("sort_direction must be asc or desc")
	ErrInvalidLogLevel      = errors.New("logging level must be debug, info, warn or error")
	ErrMissingAzureAccount  = errors.New("export azure_account_url is required for azblob:// destinations")
)

var proxyModes = []string{"no-proxy", "system", "basic", "ntlm"}

// ConfigDirectory returns the nftdash configuration directory.
func ConfigDirectory() (string, error) {
	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		return filepath.Join(userProfile, ".config", constants.AppName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", constants.AppName), nil
}

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:        constants.DefaultBaseURL,
		Collections:    append([]string(nil), constants.DefaultCollections...),
		ProxyMode:      "no-proxy",
		TimeoutSeconds: int(constants.DefaultHTTPTimeout / time.Second),
		MaxRetries:     constants.DefaultMaxRetries,
		Burst:          1,
		PageSize:       table.DefaultPageSize,
		Window:         string(models.WindowOneDay),
		SortKey:        string(table.DefaultSort.Key),
		SortDirection:  string(table.DefaultSort.Direction),
		ServerAddr:     constants.DefaultServerAddr,
		LogLevel:       "info",
	}
}

// Load loads configuration from an INI file.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	osSection := iniFile.Section("opensea")
	cfg.BaseURL = osSection.Key("base_url").MustString(cfg.BaseURL)
	cfg.APIKey = osSection.Key("api_key").String()
	if osSection.HasKey("collections") {
		cfg.Collections = ParseCollections(osSection.Key("collections").String())
	}

	httpSection := iniFile.Section("http")
	cfg.ProxyMode = httpSection.Key("proxy_mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = httpSection.Key("proxy_host").String()
	cfg.ProxyPort = httpSection.Key("proxy_port").MustInt(0)
	cfg.ProxyUser = httpSection.Key("proxy_user").String()
	cfg.ProxyPassword = httpSection.Key("proxy_password").String()
	cfg.NoProxy = httpSection.Key("no_proxy").String()
	cfg.ProxyWarmup = httpSection.Key("proxy_warmup").MustBool(false)
	cfg.TimeoutSeconds = httpSection.Key("timeout_seconds").MustInt(cfg.TimeoutSeconds)
	cfg.MaxRetries = httpSection.Key("max_retries").MustInt(cfg.MaxRetries)
	cfg.RatePerSecond = httpSection.Key("rate_per_second").MustFloat64(0)
	cfg.Burst = httpSection.Key("burst").MustInt(cfg.Burst)
	cfg.MaxConcurrent = httpSection.Key("max_concurrent").MustInt(0)

	viewSection := iniFile.Section("view")
	cfg.PageSize = viewSection.Key("page_size").MustInt(cfg.PageSize)
	cfg.Dense = viewSection.Key("dense").MustBool(false)
	cfg.Window = viewSection.Key("window").MustString(cfg.Window)
	cfg.SortKey = viewSection.Key("sort_key").MustString(cfg.SortKey)
	cfg.SortDirection = viewSection.Key("sort_direction").MustString(cfg.SortDirection)

	cfg.ServerAddr = iniFile.Section("server").Key("addr").MustString(cfg.ServerAddr)

	exportSection := iniFile.Section("export")
	cfg.AzureAccountURL = exportSection.Key("azure_account_url").String()
	cfg.AWSRegion = exportSection.Key("aws_region").String()

	logSection := iniFile.Section("logging")
	cfg.LogLevel = logSection.Key("level").MustString(cfg.LogLevel)
	cfg.LogFile = logSection.Key("file").String()

	return cfg, nil
}

// Save writes configuration to an INI file.
// Creates parent directories if they don't exist. The API key is stored in
// the file with owner-only permissions; the proxy password is not stored.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	sections := []struct {
		name   string
		values [][2]string
	}{
		{"opensea", [][2]string{
			{"base_url", cfg.BaseURL},
			{"api_key", cfg.APIKey},
			{"collections", strings.Join(cfg.Collections, ", ")},
		}},
		{"http", [][2]string{
			{"proxy_mode", cfg.ProxyMode},
			{"proxy_host", cfg.ProxyHost},
			{"proxy_port", strconv.Itoa(cfg.ProxyPort)},
			{"proxy_user", cfg.ProxyUser},
			{"no_proxy", cfg.NoProxy},
			{"proxy_warmup", strconv.FormatBool(cfg.ProxyWarmup)},
			{"timeout_seconds", strconv.Itoa(cfg.TimeoutSeconds)},
			{"max_retries", strconv.Itoa(cfg.MaxRetries)},
			{"rate_per_second", strconv.FormatFloat(cfg.RatePerSecond, 'f', -1, 64)},
			{"burst", strconv.Itoa(cfg.Burst)},
			{"max_concurrent", strconv.Itoa(cfg.MaxConcurrent)},
		}},
		{"view", [][2]string{
			{"page_size", strconv.Itoa(cfg.PageSize)},
			{"dense", strconv.FormatBool(cfg.Dense)},
			{"window", cfg.Window},
			{"sort_key", cfg.SortKey},
			{"sort_direction", cfg.SortDirection},
		}},
		{"server", [][2]string{
			{"addr", cfg.ServerAddr},
		}},
		{"export", [][2]string{
			{"azure_account_url", cfg.AzureAccountURL},
			{"aws_region", cfg.AWSRegion},
		}},
		{"logging", [][2]string{
			{"level", cfg.LogLevel},
			{"file", cfg.LogFile},
		}},
	}

	for _, s := range sections {
		section, err := iniFile.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		for _, kv := range s.values {
			section.Key(kv[0]).SetValue(kv[1])
		}
	}

	// temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// ParseCollections splits a comma or whitespace separated slug list,
// dropping empties. Repeated slugs are kept; each one is fetched.
func ParseCollections(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// Validate checks the configuration and returns the first problem found.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	if len(cfg.Collections) == 0 {
		return ErrNoCollections
	}

	mode := strings.ToLower(cfg.ProxyMode)
	if mode == "" {
		mode = "no-proxy"
	}
	valid := false
	for _, m := range proxyModes {
		if mode == m {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidProxyMode
	}
	if (mode == "basic" || mode == "ntlm") && strings.TrimSpace(cfg.ProxyHost) == "" {
		return ErrMissingProxyHost
	}

	if cfg.TimeoutSeconds < 1 || cfg.TimeoutSeconds > 600 {
		return ErrInvalidTimeout
	}
	if cfg.MaxRetries < 0 || cfg.MaxRetries > constants.MaxRetriesLimit {
		return ErrInvalidMaxRetries
	}
	if cfg.RatePerSecond < 0 {
		return ErrInvalidRate
	}
	if cfg.MaxConcurrent < 0 {
		return ErrInvalidMaxConcurrent
	}

	if table.ValidatePageSize(cfg.PageSize) != nil {
		return ErrInvalidPageSize
	}
	if _, err := models.ParseWindow(cfg.Window); err != nil {
		return ErrInvalidWindow
	}
	if _, err := table.ParseSortKey(cfg.SortKey); err != nil {
		return ErrInvalidSortKey
	}
	if _, err := table.ParseDirection(cfg.SortDirection); err != nil {
		return ErrInvalidSortDirection
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}

// Timeout returns the per-request timeout.
func (cfg *Config) Timeout() time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return constants.DefaultHTTPTimeout
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// ViewOptions converts the [view] section into initial table options.
// Call Validate first; invalid values here are reported as errors.
func (cfg *Config) ViewOptions() ([]table.Option, error) {
	window, err := models.ParseWindow(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	key, err := table.ParseSortKey(cfg.SortKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSortKey, err)
	}
	dir, err := table.ParseDirection(cfg.SortDirection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSortDirection, err)
	}
	if err := table.ValidatePageSize(cfg.PageSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPageSize, err)
	}

	return []table.Option{
		table.WithSort(table.SortSpec{Key: key, Direction: dir}),
		table.WithPageSize(cfg.PageSize),
		table.WithDense(cfg.Dense),
		table.WithWindow(window),
	}, nil
}
