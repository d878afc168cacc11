// Package asmconfig is the TOML-backed settings file for the assembler
// driver and its inspector tool: maximum errors before abort, the
// default DS fill byte, which octal sigil variant a source file may use,
// and how many ROMX banks a project declares, plus cmd/gbinspect's
// display preferences. Grounded on the teacher's config/config.go --
// same struct-of-sections-with-toml-tags shape, the same DefaultConfig/
// Load/LoadFrom/Save/SaveTo pairing, and the same GOOS-switched
// GetConfigPath/GetLogPath -- with the sections' contents replaced for
// this domain (no execution/trace/statistics settings, since there is
// nothing here that runs).
package asmconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the settings for the driver and cmd/gbinspect. Only
// Assembly.BankCount is read by the commands; MaxErrors, DefaultFill,
// OctalSigil and the Inspector settings are loaded and saved, but nothing
// consults them (DS fills with 0x00 unless given a fill value, and the
// lexer accepts both octal sigils).
type Config struct {
	Assembly struct {
		MaxErrors   int    `toml:"max_errors"`
		DefaultFill int    `toml:"default_fill"`
		OctalSigil  string `toml:"octal_sigil"` // "&" or "0o"
		BankCount   int    `toml:"bank_count"`  // bounds the ROMX BANK[n] range: n must be < BankCount
	} `toml:"assembly"`

	Inspector struct {
		ColorOutput  bool `toml:"color_output"`
		BytesPerLine int  `toml:"bytes_per_line"`
	} `toml:"inspector"`
}

// DefaultConfig returns a Config with every setting at its default.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Assembly.MaxErrors = 50
	cfg.Assembly.DefaultFill = 0x00
	cfg.Assembly.OctalSigil = "&"
	cfg.Assembly.BankCount = 2

	cfg.Inspector.ColorOutput = true
	cfg.Inspector.BytesPerLine = 16
	return cfg
}

// GetConfigPath returns the platform-specific config file location.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "gbz80asm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gbz80asm.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "gbz80asm")

	default:
		return "gbz80asm.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "gbz80asm.toml"
	}
	return filepath.Join(configDir, "config.toml")
}

// Load reads the config file at its default platform location.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads the config file at path, falling back to defaults when
// it does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes c to the default platform location.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes c as TOML to path, creating its parent directory.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user-supplied config path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
