// Package config loads the client configuration from an optional YAML file
// overlaid with RIDE_-prefixed environment variables.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const envPrefix = "RIDE_"

type Config struct {
	AppName string `koanf:"app_name"`

	Backend struct {
		BaseURL string `koanf:"base_url"`
	} `koanf:"backend"`

	// Credential is the static application credential presented at the
	// token exchange endpoint. It authenticates the client application,
	// not a user.
	Credential struct {
		Key      string `koanf:"key"`
		Password string `koanf:"password"`
	} `koanf:"credential"`

	Verifier struct {
		APIKey string `koanf:"api_key"`
		// ChallengeToken is a pre-obtained anti-abuse challenge token for
		// headless use (e.g. provider test phone numbers).
		ChallengeToken string `koanf:"challenge_token"`
		ContainerID    string `koanf:"container_id"`
	} `koanf:"verifier"`

	Push struct {
		VAPIDKey string `koanf:"vapid_key"`
	} `koanf:"push"`

	Storage struct {
		// Path is the durable tier's data directory; empty means in-memory.
		Path string `koanf:"path"`
	} `koanf:"storage"`
}

// Load reads path (skipped when empty or missing) and applies environment
// overrides: RIDE_BACKEND_BASE_URL maps to backend.base_url, and so on.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrap(err, "[config.Load] file")
			}
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		// app_name is a top-level key, not a section.
		if key == "app_name" {
			return key
		}
		return strings.Replace(key, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "[config.Load] env")
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "[config.Load] unmarshal")
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.AppName = "ridecli"
	cfg.Backend.BaseURL = "https://api.ridebook.example"
	cfg.Verifier.ContainerID = "recaptcha-container"
	return cfg
}
