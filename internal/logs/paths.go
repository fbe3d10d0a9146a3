package logs

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	osWindows = "windows"
	osDarwin  = "darwin"
	osLinux   = "linux"
)

// LogDir returns the standard log directory for the current OS.
func LogDir() (string, error) {
	switch runtime.GOOS {
	case osWindows:
		return windowsLogDir()
	case osDarwin:
		return macOSLogDir()
	case osLinux:
		return linuxLogDir()
	default:
		return defaultLogDir()
	}
}

// windowsLogDir uses %LOCALAPPDATA%\gumcp\logs.
func windowsLogDir() (string, error) {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return defaultLogDir()
		}
		localAppData = filepath.Join(userProfile, "AppData", "Local")
	}
	return filepath.Join(localAppData, "gumcp", "logs"), nil
}

// macOSLogDir uses ~/Library/Logs/gumcp.
func macOSLogDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultLogDir()
	}
	return filepath.Join(homeDir, "Library", "Logs", "gumcp"), nil
}

// linuxLogDir follows the XDG state directory; root installs log to
// /var/log/gumcp.
func linuxLogDir() (string, error) {
	if os.Getuid() == 0 {
		return "/var/log/gumcp", nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultLogDir()
	}

	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		stateDir = filepath.Join(homeDir, ".local", "state")
	}
	return filepath.Join(stateDir, "gumcp", "logs"), nil
}

func defaultLogDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "gumcp", "logs"), nil
	}
	return filepath.Join(homeDir, ".gumcp", "logs"), nil
}

// LogFilePath resolves the full path for a log file, creating the directory.
// An empty logDir falls back to the OS standard location; a leading ~/ is
// expanded.
func LogFilePath(logDir, filename string) (string, error) {
	if logDir == "" {
		var err error
		if logDir, err = LogDir(); err != nil {
			return "", err
		}
	} else if strings.HasPrefix(logDir, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		logDir = filepath.Join(homeDir, logDir[2:])
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(logDir, filename), nil
}
