// Package config loads ~/.config/contextflow/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the directory under the user config dir that holds every
	// contextflow file.
	AppDir = "contextflow"

	fileName = "config.yaml"
)

const defaultConfigYAML = `# contextflow configuration

# SQLite database holding the snapshot and settings.
# Leave empty for ~/.config/contextflow/contextflow.db
db_path: ""

# Where log output goes while the terminal UI is running.
# Leave empty for ~/.config/contextflow/contextflow.log
log_file: ""

# Snapshot row inside the database. Change it to keep a separate set of data.
slot: context_flow_db_v1
`

// Config is the on-disk configuration. Empty paths mean "use the default".
type Config struct {
	DBPath  string `yaml:"db_path"`
	LogFile string `yaml:"log_file"`
	Slot    string `yaml:"slot"`

	dir string
}

func defaults(dir string) Config {
	return Config{
		DBPath:  filepath.Join(dir, "contextflow.db"),
		LogFile: filepath.Join(dir, "contextflow.log"),
		Slot:    "context_flow_db_v1",
		dir:     dir,
	}
}

// Dir returns ~/.config/contextflow.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, AppDir), nil
}

// Path returns the location of config.yaml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the config file from the default location.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads dir/config.yaml. A missing file yields the defaults; empty
// fields in the file fall back to them too.
func LoadFrom(dir string) (Config, error) {
	cfg := defaults(dir)
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if file.DBPath != "" {
		cfg.DBPath = expandHome(file.DBPath)
	}
	if file.LogFile != "" {
		cfg.LogFile = expandHome(file.LogFile)
	}
	if file.Slot != "" {
		cfg.Slot = file.Slot
	}
	return cfg, nil
}

// Init writes the commented default config into dir unless one exists.
// It returns the file path and whether it was created.
func Init(dir string) (string, bool, error) {
	path := filepath.Join(dir, fileName)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return "", false, fmt.Errorf("write config: %w", err)
	}
	return path, true, nil
}

// Save writes cfg to its directory as YAML.
func (c Config) Save() error {
	if c.dir == "" {
		return errors.New("save config: no directory")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(filepath.Join(c.dir, fileName), data, 0o644)
}

func expandHome(p string) string {
	if len(p) < 2 || p[:2] != "~/" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
