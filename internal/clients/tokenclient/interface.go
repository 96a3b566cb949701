package tokenclient

import (
	"context"
	"errors"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// ErrInsufficientAllowance is returned by TransferFrom when the spender's
// allowance from the source account does not cover the amount.
var ErrInsufficientAllowance = errors.New("transfer amount exceeds allowance")

// ErrInsufficientBalance is returned when the source account's balance does
// not cover the amount.
var ErrInsufficientBalance = errors.New("transfer amount exceeds balance")

// TokenPort is the capability interface to the external PGold token ledger.
// Amounts are base units at the token's fixed 4-decimal scale. The token's
// own semantics are consumed, never reimplemented; the staking ledger only
// moves funds through this interface.
type TokenPort interface {
	BalanceOf(ctx context.Context, account common.Address) (math.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (math.Int, error)
	// Approve sets the allowance from the client's own account to spender.
	Approve(ctx context.Context, spender common.Address, amount math.Int) error
	// Transfer moves amount from the client's own account to the recipient.
	Transfer(ctx context.Context, to common.Address, amount math.Int) error
	TransferFrom(ctx context.Context, from, to common.Address, amount math.Int) error
}
