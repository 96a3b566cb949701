package config

import "fmt"

type QueueConfig struct {
	// Enabled controls whether committed events are published to the broker.
	// The journal in mongo stays authoritative either way.
	Enabled  bool   `mapstructure:"enabled"`
	Url      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Exchange string `mapstructure:"exchange"`
}

func (cfg *QueueConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Url == "" {
		return fmt.Errorf("queue url is required")
	}
	if cfg.User == "" {
		return fmt.Errorf("queue user is required")
	}
	if cfg.Password == "" {
		return fmt.Errorf("queue password is required")
	}
	if cfg.Exchange == "" {
		return fmt.Errorf("queue exchange is required")
	}

	return nil
}
