package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "tradfri-bridge"
	configFile = "config.yaml"
)

// GetConfigDir returns the OS-appropriate configuration directory for
// the application:
//   - Linux: $XDG_CONFIG_HOME/tradfri-bridge or $HOME/.config/tradfri-bridge
//   - macOS: $HOME/.config/tradfri-bridge
//   - Windows: %LOCALAPPDATA%\tradfri-bridge
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	default:
		// Linux, macOS and other Unix-like systems: XDG convention
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads the configuration from path. When path is empty the
// default location is used; a missing file at the default location is
// not an error and yields the defaults.
func Load(path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	f := Default()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return f, nil
}

// Validate checks settings that would otherwise only fail at startup.
func (f *File) Validate() error {
	if f.Broker.URL == "" {
		return fmt.Errorf("broker url is required")
	}
	if (f.Gateway.PSKIdentity == "") != (f.Gateway.PSK == "") {
		return fmt.Errorf("gateway psk_identity and psk must be set together")
	}
	if f.Bridge.PingInterval != 0 && f.Bridge.PingTimeout != 0 &&
		f.Bridge.PingInterval <= f.Bridge.PingTimeout {
		return fmt.Errorf("ping_interval (%s) must exceed ping_timeout (%s)",
			f.Bridge.PingInterval, f.Bridge.PingTimeout)
	}
	return nil
}
