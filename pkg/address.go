package pkg

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

func ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid hex address: %s", address)
	}

	return nil
}
