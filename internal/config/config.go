package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for salvage.
type Config struct {
	ClaudeDir string         `toml:"claude_dir"`
	BaseDir   string         `toml:"base_dir"`
	LogDir    string         `toml:"log_dir"`
	Recovery  RecoveryConfig `toml:"recovery"`
	Scan      ScanConfig     `toml:"scan"`
}

// RecoveryConfig holds the defaults for the recover command.
type RecoveryConfig struct {
	TargetDir         string `toml:"target_dir"` // empty means in place
	PreserveStructure bool   `toml:"preserve_structure"`
	Force             bool   `toml:"force"`
	Backups           bool   `toml:"backups"`
}

// ScanConfig holds the defaults for listing recoverable files.
type ScanConfig struct {
	FileType   string   `toml:"file_type"`
	Limit      int      `toml:"limit"` // 0 means unlimited
	Ignore     []string `toml:"ignore"`
	IgnoreFile string   `toml:"ignore_file,omitempty"` // gitignore-style pattern file
}

// DefaultLimit is the number of files scan shows unless told otherwise.
const DefaultLimit = 50

// NewConfig creates a Config with default values rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		ClaudeDir: filepath.Join("~", ".claude"),
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		Recovery: RecoveryConfig{
			TargetDir:         "./recovered-files",
			PreserveStructure: true,
			Backups:           true,
		},
		Scan: ScanConfig{
			Limit:  DefaultLimit,
			Ignore: []string{},
		},
	}
}

// ProjectsDir returns the directory holding one subdirectory per project.
func (c *Config) ProjectsDir() (string, error) {
	dir, err := ExpandHome(c.ClaudeDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "projects"), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader on top of defaults, so keys
// missing from the file keep their default value.
func (m *Manager) Read(r io.Reader, defaults *Config) (*Config, error) {
	cfg := *defaults
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path, using the
// defaults for baseDir for anything the file leaves out.
func ReadFromFile(path, baseDir string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f, NewConfig(baseDir))
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path. A missing file is not an error: the
// defaults for baseDir are returned instead.
func Load(path, baseDir string) (*Config, error) {
	cfg, err := ReadFromFile(path, baseDir)
	if errors.Is(err, fs.ErrNotExist) {
		return NewConfig(baseDir), nil
	}
	return cfg, err
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
