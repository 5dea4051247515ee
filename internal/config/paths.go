package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/cryptogamefiverse/nftdash/internal/constants"
)

// LogDirectory returns the directory for log files written while the
// terminal UI owns the screen.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\nftdash\logs
//   - Unix: ~/.config/nftdash/logs
func LogDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), constants.AppName+"-logs")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, constants.AppName, "logs")
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), constants.AppName+"-logs")
	}
	return filepath.Join(configDir, constants.AppName, "logs")
}

// DefaultLogFile is the log file used when [logging] file is unset.
func DefaultLogFile() string {
	return filepath.Join(LogDirectory(), constants.AppName+".log")
}

// LogFilePath returns the configured log file, or the default one.
func (cfg *Config) LogFilePath() string {
	if cfg.LogFile != "" {
		return cfg.LogFile
	}
	return DefaultLogFile()
}
