package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	apiclient "github.com/ws-flare/ws-flare-graphql/pkg/api/client"
)

type cliConfig struct {
	APIBaseURL  string `json:"api_base_url"`
	AccessToken string `json:"access_token"`
	Username    string `json:"username,omitempty"`
}

func loadConfig() (cliConfig, error) {
	path, err := configPath()
	if err != nil {
		return cliConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cliConfig{APIBaseURL: apiclient.DefaultBaseURL}, nil
		}
		return cliConfig{}, err
	}
	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, err
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = apiclient.DefaultBaseURL
	}
	return cfg, nil
}

func saveConfig(cfg cliConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func configPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "ws-flare", "config.json"), nil
}
