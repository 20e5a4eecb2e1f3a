// Package config loads the achtool workspace configuration from a
// .achtool.yml file, with environment expansion and defaults for every
// field a fresh checkout needs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the workspace configuration file.
	FileName = ".achtool.yml"

	// EnvInstallPath overrides platform.install_path when set.
	EnvInstallPath = "ACHTOOL_INSTALL_PATH"
)

// Config is the full achtool configuration.
type Config struct {
	Version  string         `yaml:"version"`
	Platform PlatformConfig `yaml:"platform"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Icons    IconsConfig    `yaml:"icons"`
	Engine   EngineConfig   `yaml:"engine"`
}

// PlatformConfig locates the platform installation and selects the
// localization language for schema display strings.
type PlatformConfig struct {
	InstallPath string `yaml:"install_path"`
	Language    string `yaml:"language"`
}

// LedgerConfig controls the persisted progress document.
type LedgerConfig struct {
	Path     string `yaml:"path"`
	ScanMode string `yaml:"scan_mode"`
}

// IconsConfig controls achievement icon downloads.
type IconsConfig struct {
	BaseURL string `yaml:"base_url"`
}

// EngineConfig tunes the cooperative tick loop.
type EngineConfig struct {
	TickIntervalMS int `yaml:"tick_interval_ms"`
}

// Defaults returns the configuration a fresh workspace starts from.
func Defaults() *Config {
	return &Config{
		Version: "0.1.0",
		Platform: PlatformConfig{
			Language: "english",
		},
		Ledger: LedgerConfig{
			Path:     filepath.Join(".achtool", "ledger.json"),
			ScanMode: "full",
		},
		Icons: IconsConfig{
			BaseURL: "https://cdn.cloudflare.steamstatic.com/steamcommunity/public/images/apps",
		},
		Engine: EngineConfig{
			TickIntervalMS: 500,
		},
	}
}

// Loader reads and writes the workspace configuration file.
type Loader struct {
	workDir  string
	filePath string
}

// NewLoader creates a loader rooted at workDir.
func NewLoader(workDir string) *Loader {
	return &Loader{
		workDir:  workDir,
		filePath: filepath.Join(workDir, FileName),
	}
}

// Load reads the configuration file. A missing file is an error; use
// LoadOrDefault when absence should fall back to defaults. Values run
// through environment variable expansion, and relative paths resolve
// against the loader's work directory.
func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", l.filePath)
		}
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	l.applyEnv(cfg)
	l.resolvePaths(cfg)
	return cfg, nil
}

// LoadOrDefault reads the configuration file, falling back to defaults
// when it does not exist.
func (l *Loader) LoadOrDefault() (*Config, error) {
	if _, err := os.Stat(l.filePath); os.IsNotExist(err) {
		cfg := Defaults()
		l.applyEnv(cfg)
		l.resolvePaths(cfg)
		return cfg, nil
	}
	return l.Load()
}

// Save writes the configuration back to the workspace file.
func (l *Loader) Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}
	if err := os.WriteFile(l.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	return nil
}

func (l *Loader) applyEnv(cfg *Config) {
	if v := os.Getenv(EnvInstallPath); v != "" {
		cfg.Platform.InstallPath = v
	}
}

func (l *Loader) resolvePaths(cfg *Config) {
	if cfg.Ledger.Path != "" && !filepath.IsAbs(cfg.Ledger.Path) {
		cfg.Ledger.Path = filepath.Join(l.workDir, cfg.Ledger.Path)
	}
}

// Template returns a commented starter configuration for achtool init.
func Template() string {
	return `# achtool Configuration
version: "0.1.0"

platform:
  # Platform installation directory holding the cached schema blobs.
  # The ` + EnvInstallPath + ` environment variable overrides this.
  install_path: ""
  # Localization language for achievement names and descriptions.
  language: english

ledger:
  # Progress document, rewritten after every store.
  path: .achtool/ledger.json
  scan_mode: full

icons:
  base_url: https://cdn.cloudflare.steamstatic.com/steamcommunity/public/images/apps

engine:
  # Cooperative tick cadence for timed unlocks and icon completions.
  tick_interval_ms: 500
`
}
