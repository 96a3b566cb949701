package config

import (
	"errors"
	"time"
)

type PollerConfig struct {
	PoolPollingInterval time.Duration `mapstructure:"pool-polling-interval"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.PoolPollingInterval <= 0 {
		return errors.New("pool-polling-interval must be positive")
	}

	return nil
}
