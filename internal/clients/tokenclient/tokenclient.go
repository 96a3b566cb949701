package tokenclient

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"

	"github.com/pgold-labs/staking-ledger/internal/config"
)

// erc20ABI is the standard EIP-20 surface the ledger consumes. The token
// contract itself is external and assumed correct.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

// ERC20Client implements TokenPort against a deployed ERC-20 token through an
// Ethereum JSON-RPC node. Reads are retried on transient failures; state
// transitions are sent once and waited for inclusion.
type ERC20Client struct {
	cfg      *config.TokenConfig
	contract *bind.BoundContract
	backend  *ethclient.Client
	auth     *bind.TransactOpts
	account  common.Address
}

func NewERC20Client(cfg *config.TokenConfig) (*ERC20Client, error) {
	client, err := ethclient.Dial(cfg.RPCAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial token rpc node: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 abi: %w", err)
	}

	contractAddr := common.HexToAddress(cfg.ContractAddress)
	contract := bind.NewBoundContract(contractAddr, parsed, client, client, client)

	c := &ERC20Client{
		cfg:      cfg,
		contract: contract,
		backend:  client,
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse token signing key: %w", err)
		}
		auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
		if err != nil {
			return nil, fmt.Errorf("failed to create transactor: %w", err)
		}
		c.auth = auth
		c.account = crypto.PubkeyToAddress(key.PublicKey)
	}

	return c, nil
}

// Account returns the address the client signs transactions as. Zero when no
// signing key is configured (read-only client).
func (c *ERC20Client) Account() common.Address {
	return c.account
}

func (c *ERC20Client) BalanceOf(ctx context.Context, account common.Address) (math.Int, error) {
	out, err := clientCallWithRetry(func() (*big.Int, error) {
		var results []any
		callErr := c.contract.Call(&bind.CallOpts{Context: ctx}, &results, "balanceOf", account)
		if callErr != nil {
			return nil, callErr
		}
		return *abi.ConvertType(results[0], new(*big.Int)).(**big.Int), nil
	}, c.cfg)
	if err != nil {
		return math.ZeroInt(), fmt.Errorf("failed to query token balance: %w", err)
	}
	return math.NewIntFromBigInt(out), nil
}

func (c *ERC20Client) Allowance(ctx context.Context, owner, spender common.Address) (math.Int, error) {
	out, err := clientCallWithRetry(func() (*big.Int, error) {
		var results []any
		callErr := c.contract.Call(&bind.CallOpts{Context: ctx}, &results, "allowance", owner, spender)
		if callErr != nil {
			return nil, callErr
		}
		return *abi.ConvertType(results[0], new(*big.Int)).(**big.Int), nil
	}, c.cfg)
	if err != nil {
		return math.ZeroInt(), fmt.Errorf("failed to query token allowance: %w", err)
	}
	return math.NewIntFromBigInt(out), nil
}

func (c *ERC20Client) Approve(ctx context.Context, spender common.Address, amount math.Int) error {
	return c.transact(ctx, "approve", spender, amount.BigInt())
}

func (c *ERC20Client) Transfer(ctx context.Context, to common.Address, amount math.Int) error {
	return c.transact(ctx, "transfer", to, amount.BigInt())
}

func (c *ERC20Client) TransferFrom(ctx context.Context, from, to common.Address, amount math.Int) error {
	// The token reverts without a typed reason, so sufficiency is checked
	// upfront to report the distinct failure cases.
	allowed, err := c.Allowance(ctx, from, c.account)
	if err != nil {
		return err
	}
	if allowed.LT(amount) {
		return ErrInsufficientAllowance
	}
	balance, err := c.BalanceOf(ctx, from)
	if err != nil {
		return err
	}
	if balance.LT(amount) {
		return ErrInsufficientBalance
	}

	return c.transact(ctx, "transferFrom", from, to, amount.BigInt())
}

func (c *ERC20Client) transact(ctx context.Context, method string, params ...any) error {
	if c.auth == nil {
		return fmt.Errorf("token client has no signing key configured, cannot call %s", method)
	}

	opts := *c.auth
	opts.Context = ctx

	tx, err := c.contract.Transact(&opts, method, params...)
	if err != nil {
		return fmt.Errorf("failed to send token %s transaction: %w", method, err)
	}

	log.Ctx(ctx).Debug().
		Str("method", method).
		Str("tx_hash", tx.Hash().Hex()).
		Msg("waiting for token transaction inclusion")

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return fmt.Errorf("failed while waiting for token %s transaction: %w", method, err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return fmt.Errorf("token %s transaction %s reverted", method, tx.Hash().Hex())
	}
	return nil
}

func clientCallWithRetry[T any](
	call retry.RetryableFuncWithData[T], cfg *config.TokenConfig,
) (T, error) {
	result, err := retry.DoWithData(call, retry.Attempts(cfg.MaxRetryTimes), retry.Delay(cfg.RetryInterval), retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxRetryTimes).
				Err(err).
				Msg("failed to call the token rpc node")
		}))
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
