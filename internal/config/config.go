package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/taluka/internal/api"
)

const (
	dirName        = ".taluka"
	configFileName = "config.yaml"
	logFileName    = "taluka.log"
)

// Environment overrides.
const (
	EnvAPIURL   = "TALUKA_API_URL"
	EnvTimeout  = "TALUKA_TIMEOUT"
	EnvTheme    = "TALUKA_THEME"
	EnvLogFile  = "TALUKA_LOG_FILE"
	EnvLogLevel = "TALUKA_LOG_LEVEL"
	EnvNoColor  = "NO_COLOR"
)

// Config is everything the binary needs before it talks to the backend.
type Config struct {
	APIURL   string        `yaml:"api_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Theme    string        `yaml:"theme"`
	LogFile  string        `yaml:"log_file"`
	LogLevel string        `yaml:"log_level"`
	NoColor  bool          `yaml:"no_color"`
}

// Default is the built-in configuration.
func Default() Config {
	return Config{
		APIURL:   api.DefaultBaseURL,
		Timeout:  10 * time.Second,
		Theme:    "classic",
		LogLevel: "info",
	}
}

// Dir is ~/.taluka.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// DefaultPath is ~/.taluka/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DefaultLogFile is ~/.taluka/taluka.log.
func DefaultLogFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// Load layers defaults, the YAML file, .env and the environment.
// An empty path means the default file, which may be missing; an explicit
// path must exist. The result is not validated: callers apply their flags
// first and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	// .env never overrides variables already set in the process.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile returns the defaults overlaid with path alone, ignoring .env and
// the environment. A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := readFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the client cannot work with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("config: api_url is empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("config: api_url %q must start with http:// or https://", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Save writes c as YAML, creating the directory with 0700.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		cfg.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	// no-color.org: any non-empty value disables colour
	if os.Getenv(EnvNoColor) != "" {
		cfg.NoColor = true
	}
	return nil
}
