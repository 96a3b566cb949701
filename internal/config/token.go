package config

import (
	"fmt"
	"time"
)

const (
	TokenBackendMemory   = "memory"
	TokenBackendEthereum = "ethereum"
)

type TokenConfig struct {
	// Backend selects the token implementation: "ethereum" talks to a
	// deployed ERC-20 contract, "memory" runs an in-process ledger for
	// local development.
	Backend         string        `mapstructure:"backend"`
	RPCAddr         string        `mapstructure:"rpc-addr"`
	ContractAddress string        `mapstructure:"contract-address"`
	ChainID         int64         `mapstructure:"chain-id"`
	PrivateKey      string        `mapstructure:"private-key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetryTimes   uint          `mapstructure:"max-retry-times"`
	RetryInterval   time.Duration `mapstructure:"retry-interval"`
}

func (cfg *TokenConfig) Validate() error {
	switch cfg.Backend {
	case TokenBackendMemory:
		return nil
	case TokenBackendEthereum:
	default:
		return fmt.Errorf("unknown token backend %q", cfg.Backend)
	}

	if cfg.RPCAddr == "" {
		return fmt.Errorf("token rpc address is required")
	}
	if cfg.ContractAddress == "" {
		return fmt.Errorf("token contract address is required")
	}
	if cfg.ChainID == 0 {
		return fmt.Errorf("token chain id is required")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("token timeout is required")
	}
	if cfg.MaxRetryTimes == 0 {
		return fmt.Errorf("token max-retry-times is required")
	}
	if cfg.RetryInterval <= 0 {
		return fmt.Errorf("token retry-interval is required")
	}

	return nil
}
