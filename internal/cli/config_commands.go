// Package cli provides configuration management commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cryptogamefiverse/nftdash/internal/config"
	"github.com/cryptogamefiverse/nftdash/internal/models"
	"github.com/cryptogamefiverse/nftdash/internal/table"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nftdash configuration",
		Long: `Configuration management commands for nftdash.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Fetch one collection with the current configuration
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// configPath returns --config or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for nftdash.

The configuration is saved to ~/.config/nftdash/config with owner-only
permissions. Press Enter to keep the default shown in brackets.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			return runConfigInit(cmd.InOrStdin(), cmd.OutOrStdout(), path, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

func runConfigInit(in io.Reader, out io.Writer, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
			fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
			return nil
		}
	}

	fmt.Fprintln(out, "nftdash Configuration Setup")
	fmt.Fprintln(out, "===========================")
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)
	ask := func(prompt, def string) string {
		if def != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, def)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			return def
		}
		return input
	}

	cfg := config.NewConfig()

	cfg.APIKey = ask("OpenSea API key (optional)", "")
	cfg.BaseURL = ask("API base URL", cfg.BaseURL)
	if slugs := config.ParseCollections(ask("Collections (comma-separated)", strings.Join(cfg.Collections, ", "))); len(slugs) > 0 {
		cfg.Collections = slugs
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Table Settings (press Enter for defaults)")
	fmt.Fprintln(out, "-----------------------------------------")

	for {
		input := ask("Rows per page (10, 25, 50)", strconv.Itoa(cfg.PageSize))
		size, err := strconv.Atoi(input)
		if err == nil && table.ValidatePageSize(size) == nil {
			cfg.PageSize = size
			break
		}
		fmt.Fprintln(out, "  Error: rows per page must be 10, 25 or 50")
	}

	for {
		input := ask("Time window (24h, 7d, 30d)", cfg.Window)
		w, err := models.ParseWindow(input)
		if err == nil {
			cfg.Window = string(w)
			break
		}
		fmt.Fprintln(out, "  Error:", err)
	}

	fmt.Fprintln(out)
	proxyInput := strings.ToLower(ask("Configure proxy? [y/N]", ""))
	if proxyInput == "y" || proxyInput == "yes" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
		cfg.ProxyMode = ask("Proxy mode", "system")
		if cfg.ProxyMode == "basic" || cfg.ProxyMode == "ntlm" {
			cfg.ProxyHost = ask("Proxy host", "")
			if v, err := strconv.Atoi(ask("Proxy port", "8080")); err == nil && v > 0 {
				cfg.ProxyPort = v
			}
			cfg.ProxyUser = ask("Proxy user", "")
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	GetLogger().Info().Str("path", path).Msg("Configuration saved")

	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ Configuration saved to: %s\n", path)
	if cfg.ProxyUser != "" {
		fmt.Fprintln(out, "  The proxy password is not stored; you will be asked for it on each run.")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Test your configuration with: nftdash config test")
	return nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/nftdash/config)
  2. Environment variables (NFTDASH_API_KEY, OPENSEA_API_KEY)
  3. Command-line flags (--api-key, --api-url, --collections)

Priority: flags > environment > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if apiBaseURL != "" {
				cfg.BaseURL = apiBaseURL
			}
			if collections != "" {
				cfg.Collections = config.ParseCollections(collections)
			}
			cfg.APIKey = config.ResolveAPIKey(apiKey, cfg)

			printConfig(cmd.OutOrStdout(), cfg, path)
			return nil
		},
	}

	return cmd
}

func printConfig(out io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(out, "Current Configuration")
	fmt.Fprintln(out, "=====================")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "OpenSea:")
	fmt.Fprintf(out, "  Base URL:    %s\n", cfg.BaseURL)
	fmt.Fprintf(out, "  API Key:     %s\n", config.MaskAPIKey(cfg.APIKey))
	fmt.Fprintf(out, "  Collections: %s (%d)\n", strings.Join(cfg.Collections, ", "), len(cfg.Collections))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "HTTP:")
	fmt.Fprintf(out, "  Proxy Mode:     %s\n", cfg.ProxyMode)
	if cfg.ProxyHost != "" {
		fmt.Fprintf(out, "  Proxy Host:     %s:%d\n", cfg.ProxyHost, cfg.ProxyPort)
	}
	fmt.Fprintf(out, "  Timeout:        %s\n", cfg.Timeout())
	fmt.Fprintf(out, "  Max Retries:    %d\n", cfg.MaxRetries)
	if cfg.RatePerSecond > 0 {
		fmt.Fprintf(out, "  Rate Limit:     %g/s (burst %d)\n", cfg.RatePerSecond, cfg.Burst)
	} else {
		fmt.Fprintln(out, "  Rate Limit:     off")
	}
	if cfg.MaxConcurrent > 0 {
		fmt.Fprintf(out, "  Max Concurrent: %d\n", cfg.MaxConcurrent)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Table:")
	fmt.Fprintf(out, "  Rows per page: %d\n", cfg.PageSize)
	fmt.Fprintf(out, "  Dense:         %t\n", cfg.Dense)
	fmt.Fprintf(out, "  Window:        %s\n", cfg.Window)
	fmt.Fprintf(out, "  Sort:          %s %s\n", cfg.SortKey, cfg.SortDirection)
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Server address: %s\n", cfg.ServerAddr)
	fmt.Fprintf(out, "Log level:      %s\n", cfg.LogLevel)
	fmt.Fprintf(out, "Log file:       %s\n", cfg.LogFilePath())
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Configuration file: %s\n", path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(out, "  (file does not exist - using defaults)")
	}
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test API connection",
		Long: `Fetch the first configured collection with the current configuration.

Use this to verify your API key, proxy settings and network connectivity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runConfigTest(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	return cmd
}

func runConfigTest(parent context.Context, out io.Writer, cfg *config.Config) error {
	s, err := newSession(cfg, nil)
	if err != nil {
		return err
	}

	slug := cfg.Collections[0]
	fmt.Fprintf(out, "API URL:    %s\n", s.client.BaseURL())
	fmt.Fprintf(out, "Collection: %s\n", slug)
	fmt.Fprintln(out, "Testing connection...")
	fmt.Fprintln(out)

	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()

	row, err := s.client.FetchRow(ctx, slug)
	if err != nil {
		GetLogger().Error().Err(err).Msg("Connection test failed")
		fmt.Fprintln(out, "✗ Connection FAILED")
		fmt.Fprintf(out, "  Error: %v\n", err)
		return fmt.Errorf("connection test failed")
	}

	GetLogger().Info().Msg("Connection test successful")

	fmt.Fprintln(out, "✓ Connection SUCCESSFUL")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Name:        %s\n", row.Name)
	fmt.Fprintf(out, "  Floor price: %s\n", row.FloorPrice.String())
	fmt.Fprintf(out, "  Owners:      %s\n", row.NumOwners.String())
	return nil
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path, err := configPath()
			if err != nil {
				return err
			}
			if cfgFile == "" {
				fmt.Fprintln(out, "Default configuration path:")
			} else {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			}
			fmt.Fprintf(out, "  %s\n", path)
			fmt.Fprintln(out)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: ✓ File exists")
				fmt.Fprintf(out, "Size:     %d bytes\n", info.Size())
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: nftdash config init")
			}
			return nil
		},
	}

	return cmd
}
