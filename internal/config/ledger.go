package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

type LedgerConfig struct {
	// OwnerAddress holds the administrative role: pause, pool changes and
	// ownership transfers.
	OwnerAddress string `mapstructure:"owner-address"`
	// PoolAddress receives stake deposits and funds settlements.
	PoolAddress string `mapstructure:"pool-address"`
	// AccountAddress is the address the ledger transacts as. For the
	// ethereum token backend it must match the configured signing key.
	AccountAddress string `mapstructure:"account-address"`
}

func (cfg *LedgerConfig) Validate() error {
	for name, addr := range map[string]string{
		"owner-address":   cfg.OwnerAddress,
		"pool-address":    cfg.PoolAddress,
		"account-address": cfg.AccountAddress,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("ledger %s is not a valid hex address: %q", name, addr)
		}
	}

	return nil
}

func (cfg *LedgerConfig) Owner() common.Address {
	return common.HexToAddress(cfg.OwnerAddress)
}

func (cfg *LedgerConfig) Pool() common.Address {
	return common.HexToAddress(cfg.PoolAddress)
}

func (cfg *LedgerConfig) Account() common.Address {
	return common.HexToAddress(cfg.AccountAddress)
}
