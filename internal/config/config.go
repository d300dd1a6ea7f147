package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// TokenEnv is the environment variable consulted for the GitHub token when
// the config file does not carry one. Keeping the token out of the file is
// the recommended setup.
const TokenEnv = "SCHEDCAL_GITHUB_TOKEN"

// GitHubConfig identifies the versioned CSV blob holding the schedule.
type GitHubConfig struct {
	// Owner/Repo name the repository, Path the CSV file inside it.
	Owner  string `yaml:"owner" json:"owner"`
	Repo   string `yaml:"repo" json:"repo"`
	Path   string `yaml:"path" json:"path"`
	Branch string `yaml:"branch" json:"branch"`

	// Token is the API token. Empty means read-only mode: reads fall back
	// to the public raw mirror and writes are refused.
	Token string `yaml:"token,omitempty" json:"-"`

	// APIBase / RawBase allow pointing at a GitHub Enterprise instance or a
	// test server. Defaults target github.com.
	APIBase string `yaml:"api_base,omitempty" json:"api_base,omitempty"`
	RawBase string `yaml:"raw_base,omitempty" json:"raw_base,omitempty"`
}

// TokenPresent reports whether a write credential is configured.
func (g GitHubConfig) TokenPresent() bool {
	return g.Token != ""
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used when resolving relative date
	// phrases like "today" (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// GitHub locates the schedule CSV.
	GitHub GitHubConfig `yaml:"github" json:"github"`

	// CommitMessage is the default commit message for writes when the
	// triggering operation does not provide its own.
	CommitMessage string `yaml:"commit_message" json:"commit_message"`

	// TranscribeCmd is an external command (argv) producing a transcript on
	// stdout, used for voice input. Empty disables voice input.
	TranscribeCmd []string `yaml:"transcribe_cmd,omitempty" json:"transcribe_cmd,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:   "127.0.0.1:8080",
		Timezone: "Local",
		GitHub: GitHubConfig{
			Path:    "schedule.csv",
			Branch:  "main",
			APIBase: "https://api.github.com",
			RawBase: "https://raw.githubusercontent.com",
		},
		CommitMessage: "Update schedule",
		LogLevel:      "info",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.GitHub.Path == "" {
		c.GitHub.Path = "schedule.csv"
	}
	if c.GitHub.Branch == "" {
		c.GitHub.Branch = "main"
	}
	if c.GitHub.APIBase == "" {
		c.GitHub.APIBase = "https://api.github.com"
	}
	if c.GitHub.RawBase == "" {
		c.GitHub.RawBase = "https://raw.githubusercontent.com"
	}
	if c.CommitMessage == "" {
		c.CommitMessage = "Update schedule"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	// Token from environment wins over the file; this keeps secrets out of
	// the on-disk config.
	if env := os.Getenv(TokenEnv); env != "" {
		c.GitHub.Token = env
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file. Save before Normalize
			// so an env-sourced token never lands on disk.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			cfg.Normalize()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600 (the file may hold a token).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".schedcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Location resolves the configured timezone, falling back to time.Local on
// any failure.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
