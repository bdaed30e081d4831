// Package settings persists user preferences to a YAML file.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings is everything the app persists between runs. Hotkey and
// autostart fields are stored on behalf of the desktop shell; this core
// only reads the storage-related ones.
type Settings struct {
	RecordingsDir     string `mapstructure:"recordings_dir"`
	IndexPath         string `mapstructure:"index_path"`
	RetentionDays     int    `mapstructure:"retention_days"`
	PurgeOnStart      bool   `mapstructure:"purge_on_start"`
	AutostartEnabled  bool   `mapstructure:"autostart_enabled"`
	AutoinsertEnabled bool   `mapstructure:"autoinsert_enabled"`
	HotkeyAccelerator string `mapstructure:"hotkey_accelerator"`
}

// Default returns the settings used when no file exists yet. Recordings
// live under the user config dir alongside the index.
func Default() Settings {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	dataDir := filepath.Join(base, "kiklet")
	return Settings{
		RecordingsDir: filepath.Join(dataDir, "recordings"),
		IndexPath:     filepath.Join(dataDir, "recordings.db"),
		RetentionDays: 30,
		PurgeOnStart:  true,
	}
}

// DefaultPath returns the standard settings file location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "kiklet", "settings.yaml")
}

// Load reads settings from path, filling unset keys with defaults. A
// missing file is not an error; it just yields the defaults.
func Load(path string) (Settings, error) {
	def := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("recordings_dir", def.RecordingsDir)
	v.SetDefault("index_path", def.IndexPath)
	v.SetDefault("retention_days", def.RetentionDays)
	v.SetDefault("purge_on_start", def.PurgeOnStart)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects values the rest of the app cannot work with.
func (s Settings) Validate() error {
	if s.RecordingsDir == "" {
		return fmt.Errorf("settings: recordings_dir must not be empty")
	}
	if s.IndexPath == "" {
		return fmt.Errorf("settings: index_path must not be empty")
	}
	if s.RetentionDays < 0 {
		return fmt.Errorf("settings: retention_days must not be negative, got %d", s.RetentionDays)
	}
	return nil
}

// Save writes the settings to path as YAML, creating the directory if
// needed.
func Save(s Settings, path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("recordings_dir", s.RecordingsDir)
	v.Set("index_path", s.IndexPath)
	v.Set("retention_days", s.RetentionDays)
	v.Set("purge_on_start", s.PurgeOnStart)
	v.Set("autostart_enabled", s.AutostartEnabled)
	v.Set("autoinsert_enabled", s.AutoinsertEnabled)
	v.Set("hotkey_accelerator", s.HotkeyAccelerator)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}
