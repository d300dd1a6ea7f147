// Package cli implements the schedcal subcommands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"schedcal/internal/config"
	appLog "schedcal/internal/log"
	"schedcal/internal/nlp"
	"schedcal/internal/sched"
	"schedcal/internal/store"
)

// configPath is the value of the persistent --config flag, shared by all
// subcommands. Empty means the default location.
var configPath string

// ConfigPathFlag returns a pointer for the root command to bind --config to.
func ConfigPathFlag() *string {
	return &configPath
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "schedcal.yaml"
	}
	return filepath.Join(home, ".config", "schedcal", "config.yaml")
}

// loadConfig loads (or creates on first run) the configuration and applies
// the log level.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = defaultConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	if cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
		return nil, fmt.Errorf("config %s: github.owner and github.repo must be set", path)
	}
	return cfg, nil
}

// buildService wires the store client and sync service from config.
func buildService(cfg *config.Config) *sched.Service {
	client := store.New(store.Options{
		Owner:   cfg.GitHub.Owner,
		Repo:    cfg.GitHub.Repo,
		Path:    cfg.GitHub.Path,
		Branch:  cfg.GitHub.Branch,
		Token:   cfg.GitHub.Token,
		APIBase: cfg.GitHub.APIBase,
		RawBase: cfg.GitHub.RawBase,
	})
	parser := nlp.NewParser(cfg.Location())
	svc := sched.New(client, parser)
	svc.DefaultMessage = cfg.CommitMessage
	return svc
}

// setup is the common prologue of every subcommand.
func setup() (*config.Config, *sched.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, buildService(cfg), nil
}
